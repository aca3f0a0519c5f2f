package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"artmarket/web/db"
)

func ListNotifications(c *gin.Context) {
	user, _ := currentUser(c)

	var notifications []db.Notification
	err := db.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func MarkNotificationRead(c *gin.Context) {
	user, _ := currentUser(c)

	result := db.DB.Model(&db.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Update("read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func MarkAllNotificationsRead(c *gin.Context) {
	user, _ := currentUser(c)

	err := db.DB.Model(&db.Notification{}).
		Where("user_id = ? AND `read` = ?", user.ID, false).
		Update("read", true).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
