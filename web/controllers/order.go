package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"artmarket/payment"
	"artmarket/web/db"
)

// Checkout starts an M-Pesa STK push for the caller's cart. The response only
// confirms the push was sent; the final outcome arrives through the gateway
// callback and is read via the payment status endpoint.
func Checkout(c *gin.Context) {
	user, _ := currentUser(c)

	var body struct {
		PhoneNumber      string `json:"phone_number"`
		DeliveryOptionID string `json:"delivery_option_id"`
	}
	if c.Bind(&body) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	res, err := Pay.Initiate(c.Request.Context(), user.ID, body.PhoneNumber, body.DeliveryOptionID)
	if err != nil {
		var verr *payment.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
			return
		}
		var gerr *payment.GatewayError
		if errors.As(err, &gerr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment request could not be sent. Please try again."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Payment request sent. Enter your M-Pesa PIN on your phone.",
		"transaction_id":      res.TransactionID,
		"checkout_request_id": res.CheckoutRequestID,
	})
}

func ListOrders(c *gin.Context) {
	user, _ := currentUser(c)

	var orders []db.Order
	err := db.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func GetOrder(c *gin.Context) {
	user, _ := currentUser(c)

	var order db.Order
	err := db.DB.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Preload("Items").
		First(&order).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// OrderPickupQR renders a QR code for the order id, shown at the pickup
// counter so staff can pull up the order without typing.
func OrderPickupQR(c *gin.Context) {
	user, _ := currentUser(c)

	var order db.Order
	err := db.DB.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&order).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	png, err := qrcode.Encode(order.ID, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
