package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"artmarket/notify"
	"artmarket/web/db"
)

var allowedOrderStatuses = map[string]bool{
	db.OrderStatusPaid:      true,
	db.OrderStatusShipped:   true,
	db.OrderStatusDelivered: true,
	db.OrderStatusCancelled: true,
}

func AdminListOrders(c *gin.Context) {
	query := db.DB.Order("created_at DESC").Preload("Items")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []db.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func UpdateOrderStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if c.Bind(&body) != nil || !allowedOrderStatuses[body.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
		return
	}

	var order db.Order
	if err := db.DB.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	updates := map[string]any{"status": body.Status}
	if body.Status == db.OrderStatusShipped && order.ShippedAt == nil {
		now := time.Now()
		updates["shipped_at"] = &now
	}

	if err := db.DB.Model(&order).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	notifyEvent(notify.Event{
		Type:    notify.TypeOrderStatus,
		UserID:  order.UserID,
		Message: "Your order " + order.ID + " is now " + body.Status + ".",
	})

	c.JSON(http.StatusOK, order)
}

// ConfirmPickup records who collected a pickup order at the shop and moves it
// to picked_up. Requires the collector's name and national ID number.
func ConfirmPickup(c *gin.Context) {
	var body struct {
		Name     string `json:"name"`
		IDNumber string `json:"id_number"`
	}
	if c.Bind(&body) != nil || body.Name == "" || body.IDNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and id_number are required"})
		return
	}

	var order db.Order
	if err := db.DB.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.Status == db.OrderStatusPickedUp {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order has already been picked up"})
		return
	}
	if order.Status != db.OrderStatusPaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only paid orders can be picked up"})
		return
	}

	now := time.Now()
	updates := map[string]any{
		"status":             db.OrderStatusPickedUp,
		"picked_up_by_name":  body.Name,
		"picked_up_by_id_no": body.IDNumber,
		"picked_up_at":       &now,
	}
	if err := db.DB.Model(&order).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	notifyEvent(notify.Event{
		Type:    notify.TypeOrderStatus,
		UserID:  order.UserID,
		Message: "Your order " + order.ID + " has been picked up.",
	})

	c.JSON(http.StatusOK, order)
}

// DeactivateArtist hides an artist and all their artworks from the catalog.
// Stock is zeroed in the same transaction so a checkout racing this change
// fails the stock check instead of selling a delisted piece.
func DeactivateArtist(c *gin.Context) {
	var artist db.Artist
	if err := db.DB.First(&artist, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artist not found"})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&artist).Update("active", false).Error; err != nil {
			return err
		}
		return tx.Model(&db.Artwork{}).
			Where("artist_id = ?", artist.ID).
			Updates(map[string]any{"active": false, "stock_quantity": 0}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate artist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Artist deactivated"})
}

// ActivateArtist restores the artist and their artworks to the catalog.
// Stock stays at whatever it was; restocking is a separate edit.
func ActivateArtist(c *gin.Context) {
	var artist db.Artist
	if err := db.DB.First(&artist, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artist not found"})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&artist).Update("active", true).Error; err != nil {
			return err
		}
		return tx.Model(&db.Artwork{}).
			Where("artist_id = ?", artist.ID).
			Update("active", true).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate artist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Artist activated"})
}
