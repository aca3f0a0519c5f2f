// Package payment implements the checkout-to-payment reconciliation pipeline:
// the payment transaction state machine and the order materializer it drives.
//
// No stock is reserved at checkout. Initiate freezes a priced snapshot of the
// cart into a PaymentTransaction row and fires an STK push; the outcome
// arrives later on the gateway callback, which HandleCallback reconciles
// against the stored transaction. The durable transaction row is the single
// source of truth for whether a checkout has been fulfilled; there is no
// in-memory pending-checkout state.
package payment

import (
	"gorm.io/gorm"

	"artmarket/notify"
)

// DefaultPickupAddress is used as the order's shipping/billing address when
// the buyer has no address on file (in-person pickup at the gallery).
const DefaultPickupAddress = "Pickup at Dynamic Mall, Shop M90, CBD, Nairobi"

type Processor struct {
	DB       *gorm.DB
	Gateway  Gateway
	Notifier notify.Sink
	Codes    CodeTable

	PickupAddress string
}

func New(gdb *gorm.DB, gw Gateway, sink notify.Sink) *Processor {
	return &Processor{
		DB:            gdb,
		Gateway:       gw,
		Notifier:      sink,
		Codes:         CodeTableFromEnv(),
		PickupAddress: DefaultPickupAddress,
	}
}

func (p *Processor) notify(e notify.Event) {
	if p.Notifier != nil {
		p.Notifier.Notify(e)
	}
}
