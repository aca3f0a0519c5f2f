package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"artmarket/web/db"
)

func ListDeliveryOptions(c *gin.Context) {
	var options []db.DeliveryOption
	err := db.DB.Where("active = ?", true).Order("sort_order, name").Find(&options).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch delivery options"})
		return
	}
	c.JSON(http.StatusOK, options)
}

func CreateDeliveryOption(c *gin.Context) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Fee         string `json:"fee"`
		SortOrder   int    `json:"sort_order"`
	}
	if c.Bind(&body) != nil || body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and fee are required"})
		return
	}

	fee, err := decimal.NewFromString(body.Fee)
	if err != nil || fee.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fee"})
		return
	}

	option := db.DeliveryOption{
		ID:          uuid.New().String(),
		Name:        body.Name,
		Description: body.Description,
		Fee:         fee,
		Active:      true,
		SortOrder:   body.SortOrder,
	}
	if err := db.DB.Create(&option).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create delivery option"})
		return
	}
	c.JSON(http.StatusCreated, option)
}
