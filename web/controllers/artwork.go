package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"artmarket/web/db"
)

// ListArtworks returns active artworks from active artists, newest first.
func ListArtworks(c *gin.Context) {
	var artworks []db.Artwork
	err := db.DB.
		Joins("JOIN artists ON artists.id = artworks.artist_id AND artists.active = ?", true).
		Where("artworks.active = ?", true).
		Order("artworks.created_at DESC").
		Preload("Artist").
		Find(&artworks).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch artworks"})
		return
	}
	c.JSON(http.StatusOK, artworks)
}

func GetArtwork(c *gin.Context) {
	var artwork db.Artwork
	err := db.DB.Preload("Artist").First(&artwork, "id = ?", c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}
	c.JSON(http.StatusOK, artwork)
}

func CreateArtwork(c *gin.Context) {
	var body struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		Price         string `json:"price"`
		StockQuantity int    `json:"stock_quantity"`
		ImageURL      string `json:"image_url"`
		ArtistID      string `json:"artist_id"`
	}

	if c.Bind(&body) != nil || body.Name == "" || body.ArtistID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, price and artist_id are required"})
		return
	}

	price, err := decimal.NewFromString(body.Price)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}

	var artist db.Artist
	if err := db.DB.First(&artist, "id = ?", body.ArtistID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artist not found"})
		return
	}

	artwork := db.Artwork{
		ID:            uuid.New().String(),
		Name:          body.Name,
		Description:   body.Description,
		Price:         price,
		StockQuantity: body.StockQuantity,
		Active:        true,
		ImageURL:      body.ImageURL,
		ArtistID:      body.ArtistID,
	}
	if err := db.DB.Create(&artwork).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create artwork"})
		return
	}
	c.JSON(http.StatusCreated, artwork)
}

func UpdateArtwork(c *gin.Context) {
	var artwork db.Artwork
	if err := db.DB.First(&artwork, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}

	var body struct {
		Name          *string `json:"name"`
		Description   *string `json:"description"`
		Price         *string `json:"price"`
		StockQuantity *int    `json:"stock_quantity"`
		Active        *bool   `json:"active"`
		ImageURL      *string `json:"image_url"`
	}
	if c.Bind(&body) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	updates := map[string]any{}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Price != nil {
		price, err := decimal.NewFromString(*body.Price)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}
		updates["price"] = price
	}
	if body.StockQuantity != nil {
		if *body.StockQuantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Stock cannot be negative"})
			return
		}
		updates["stock_quantity"] = *body.StockQuantity
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if body.ImageURL != nil {
		updates["image_url"] = *body.ImageURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, artwork)
		return
	}

	if err := db.DB.Model(&artwork).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update artwork"})
		return
	}
	c.JSON(http.StatusOK, artwork)
}

func DeleteArtwork(c *gin.Context) {
	result := db.DB.Delete(&db.Artwork{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete artwork"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Artwork deleted"})
}
