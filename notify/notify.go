// Package notify delivers order and payment events to users and operators.
// Sinks are invoked after the triggering database transaction has committed.
package notify

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"artmarket/web/db"
)

const (
	TypeOrderCreated  = "order_created"
	TypeOrderStatus   = "order_status"
	TypePaymentFailed = "payment_failed"
)

// Event is one notification. UserID is empty for operator-facing events
// (e.g. a materialization failure that needs manual reconciliation).
type Event struct {
	Type    string
	UserID  string
	Message string
}

type Sink interface {
	Notify(e Event)
}

// DBSink persists events as notification rows read by the notification
// endpoints.
type DBSink struct {
	DB *gorm.DB
}

func (s *DBSink) Notify(e Event) {
	n := db.Notification{
		ID:      uuid.New().String(),
		Type:    e.Type,
		Message: e.Message,
	}
	if e.UserID != "" {
		n.UserID = &e.UserID
	}
	if err := s.DB.Create(&n).Error; err != nil {
		log.Println("notify: failed to store notification:", err)
	}
}

// MultiSink fans an event out to every sink.
type MultiSink []Sink

func (m MultiSink) Notify(e Event) {
	for _, s := range m {
		s.Notify(e)
	}
}
