package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"artmarket/payment"
)

// DarajaCallback receives the asynchronous STK push result. The gateway
// retries on anything but a success acknowledgement, so this always answers
// 200 with ResultCode 0 regardless of what reconciliation decided; a payload
// we cannot use is logged and dropped.
func DarajaCallback(c *gin.Context) {
	ack := gin.H{"ResultCode": 0, "ResultDesc": "Accepted"}

	var envelope payment.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		log.Printf("daraja callback: unreadable payload: %v", err)
		c.JSON(http.StatusOK, ack)
		return
	}

	res := Pay.HandleCallback(c.Request.Context(), &envelope.Body.StkCallback)
	if !res.Matched {
		log.Printf("daraja callback: no transaction for CheckoutRequestID %q",
			envelope.Body.StkCallback.CheckoutRequestID)
	}

	c.JSON(http.StatusOK, ack)
}

// PaymentStatus is polled by the client after checkout until the transaction
// reaches a terminal state.
func PaymentStatus(c *gin.Context) {
	user, _ := currentUser(c)

	info, err := Pay.PollStatus(c.Request.Context(), c.Param("checkoutRequestId"), user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment status"})
		return
	}

	resp := gin.H{
		"status":  info.Status,
		"message": info.Message,
	}
	if info.OrderID != "" {
		resp["order_id"] = info.OrderID
	}
	c.JSON(http.StatusOK, resp)
}
