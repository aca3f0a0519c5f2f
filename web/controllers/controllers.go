package controllers

import (
	"github.com/gin-gonic/gin"

	"artmarket/notify"
	"artmarket/payment"
	"artmarket/web/db"
)

// Pay is the checkout/payment processor, wired in main.
var Pay *payment.Processor

// Notifier receives order lifecycle events from admin actions, wired in main.
var Notifier notify.Sink

func currentUser(c *gin.Context) (db.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return db.User{}, false
	}
	user, ok := v.(db.User)
	return user, ok
}

func notifyEvent(e notify.Event) {
	if Notifier != nil {
		Notifier.Notify(e)
	}
}
