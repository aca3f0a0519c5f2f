package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"artmarket/web/db"
)

func getOrCreateCart(userID string) (db.Cart, error) {
	var cart db.Cart
	err := db.DB.Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return cart, nil
	}
	cart = db.Cart{ID: uuid.New().String(), UserID: userID}
	if err := db.DB.Create(&cart).Error; err != nil {
		return db.Cart{}, err
	}
	return cart, nil
}

func loadCartResponse(c *gin.Context, cartID string) {
	var cart db.Cart
	err := db.DB.Preload("Items").Preload("Items.Artwork").First(&cart, "id = ?", cartID).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

func GetCart(c *gin.Context) {
	user, _ := currentUser(c)
	cart, err := getOrCreateCart(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create cart"})
		return
	}
	loadCartResponse(c, cart.ID)
}

func AddToCart(c *gin.Context) {
	user, _ := currentUser(c)

	var body struct {
		ArtworkID string `json:"artwork_id"`
		Quantity  int    `json:"quantity"`
	}
	if c.Bind(&body) != nil || body.ArtworkID == "" || body.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "artwork_id and a positive quantity are required"})
		return
	}

	cart, err := getOrCreateCart(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create cart"})
		return
	}

	var artwork db.Artwork
	if err := db.DB.First(&artwork, "id = ?", body.ArtworkID).Error; err != nil || !artwork.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}

	var item db.CartItem
	err = db.DB.Where("cart_id = ? AND artwork_id = ?", cart.ID, body.ArtworkID).First(&item).Error
	if err == nil {
		newQuantity := item.Quantity + body.Quantity
		if artwork.StockQuantity < newQuantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock"})
			return
		}
		if err := db.DB.Model(&item).Update("quantity", newQuantity).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
	} else {
		if artwork.StockQuantity < body.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock"})
			return
		}
		item = db.CartItem{
			ID:        uuid.New().String(),
			CartID:    cart.ID,
			ArtworkID: body.ArtworkID,
			Quantity:  body.Quantity,
		}
		if err := db.DB.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
	}

	loadCartResponse(c, cart.ID)
}

func UpdateCartItem(c *gin.Context) {
	user, _ := currentUser(c)

	var body struct {
		Quantity int `json:"quantity"`
	}
	if c.Bind(&body) != nil || body.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be positive; use DELETE to remove the item"})
		return
	}

	cart, err := getOrCreateCart(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create cart"})
		return
	}

	var item db.CartItem
	if err := db.DB.Where("id = ? AND cart_id = ?", c.Param("id"), cart.ID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	var artwork db.Artwork
	if err := db.DB.First(&artwork, "id = ?", item.ArtworkID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}
	if artwork.StockQuantity < body.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock"})
		return
	}

	if err := db.DB.Model(&item).Update("quantity", body.Quantity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
		return
	}
	loadCartResponse(c, cart.ID)
}

func RemoveCartItem(c *gin.Context) {
	user, _ := currentUser(c)

	cart, err := getOrCreateCart(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create cart"})
		return
	}

	result := db.DB.Where("id = ? AND cart_id = ?", c.Param("id"), cart.ID).Delete(&db.CartItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}
	loadCartResponse(c, cart.ID)
}
