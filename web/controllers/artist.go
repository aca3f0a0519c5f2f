package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"artmarket/web/db"
)

func ListArtists(c *gin.Context) {
	var artists []db.Artist
	if err := db.DB.Where("active = ?", true).Order("name").Find(&artists).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch artists"})
		return
	}
	c.JSON(http.StatusOK, artists)
}

func GetArtist(c *gin.Context) {
	var artist db.Artist
	err := db.DB.Preload("Artworks", "active = ?", true).First(&artist, "id = ?", c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artist not found"})
		return
	}
	c.JSON(http.StatusOK, artist)
}

func CreateArtist(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
	}
	if c.Bind(&body) != nil || body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	artist := db.Artist{
		ID:     uuid.New().String(),
		Name:   body.Name,
		Bio:    body.Bio,
		Active: true,
	}
	if err := db.DB.Create(&artist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create artist"})
		return
	}
	c.JSON(http.StatusCreated, artist)
}
