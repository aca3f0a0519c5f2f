package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artmarket/notify"
	"artmarket/web/db"
)

// CallbackEnvelope is the Daraja STK callback payload as delivered over HTTP.
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string      `json:"MerchantRequestID"`
	CheckoutRequestID string      `json:"CheckoutRequestID"`
	ResultCode        json.Number `json:"ResultCode"`
	ResultDesc        string      `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []MetadataItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type MetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

// CallbackResult describes what HandleCallback did, for logging and tests.
// The HTTP layer acknowledges the gateway with a fixed success response no
// matter what this says.
type CallbackResult struct {
	Matched   bool
	Duplicate bool
	Status    Status
	OrderID   string
}

// HandleCallback reconciles an asynchronous gateway callback against the
// pending transaction identified by CheckoutRequestID. Delivery is
// at-least-once and concurrent deliveries for the same id are possible: the
// transaction row is locked FOR UPDATE for the whole decision, and a
// transaction already in a terminal state is left untouched.
func (p *Processor) HandleCallback(ctx context.Context, cb *StkCallback) CallbackResult {
	var res CallbackResult

	if cb == nil || cb.CheckoutRequestID == "" {
		log.Println("payment: callback without CheckoutRequestID, ignoring")
		return res
	}

	var orderID string
	var fulfillErr error

	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn db.PaymentTransaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("checkout_request_id = ?", cb.CheckoutRequestID).
			First(&txn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Stray or retried callback for an unknown transaction. Expected
			// with at-least-once delivery; acknowledge and move on.
			return nil
		}
		if err != nil {
			return err
		}
		res.Matched = true

		if cur := Status(txn.Status); cur.IsTerminal() {
			res.Duplicate = true
			res.Status = cur
			return nil
		}

		if code := cb.ResultCode.String(); code != "0" {
			st := p.Codes.Classify(code)
			res.Status = st
			return setStatus(tx, txn.ID, st,
				fmt.Sprintf("result code %s: %s", code, cb.ResultDesc))
		}

		// Success reported. A success callback without proof of payment is a
		// processing failure, never a success.
		md := metadataMap(cb.CallbackMetadata.Item)
		receipt, ok := extractReceipt(md)
		if !ok {
			res.Status = StatusFailedMissingReceipt
			return setStatus(tx, txn.ID, StatusFailedMissingReceipt,
				"MpesaReceiptNumber missing from successful callback")
		}
		paid, perr := extractAmount(md)
		if perr != nil {
			res.Status = StatusFailedProcessing
			return setStatus(tx, txn.ID, StatusFailedProcessing,
				"invalid amount in callback metadata: "+perr.Error())
		}
		if paid.LessThan(txn.Amount) {
			res.Status = StatusFailedUnderpaid
			return setStatus(tx, txn.ID, StatusFailedUnderpaid,
				fmt.Sprintf("paid %s of expected %s", paid, txn.Amount))
		}

		oid, ferr := p.fulfill(tx, &txn, receipt)
		if ferr != nil {
			fulfillErr = ferr
			return ferr // roll back the whole unit
		}
		orderID = oid
		res.Status = StatusSuccessful
		return nil
	})

	if err == nil {
		if res.Status == StatusSuccessful {
			res.OrderID = orderID
			p.notify(notify.Event{
				Type:    notify.TypeOrderCreated,
				UserID:  "",
				Message: fmt.Sprintf("New paid order %s (checkout %s)", orderID, cb.CheckoutRequestID),
			})
			p.notifyUserOrderCreated(ctx, cb.CheckoutRequestID, orderID)
		}
		return res
	}

	if fulfillErr != nil {
		// The payment is captured but the order could not be created. Latch
		// the terminal failure and alert an operator; there is no automatic
		// retry or refund.
		log.Printf("payment: materialization failed for checkout %s: %v", cb.CheckoutRequestID, fulfillErr)
		res.Status = StatusFailedProcessing
		p.latchProcessingFailure(ctx, cb.CheckoutRequestID, fulfillErr)
		p.notify(notify.Event{
			Type:    notify.TypePaymentFailed,
			Message: fmt.Sprintf("Manual reconciliation needed for checkout %s: %v", cb.CheckoutRequestID, fulfillErr),
		})
		return res
	}

	log.Printf("payment: error processing callback for checkout %s: %v", cb.CheckoutRequestID, err)
	return res
}

// latchProcessingFailure records failed_processing_error for the transaction
// unless a concurrent callback already closed it.
func (p *Processor) latchProcessingFailure(ctx context.Context, checkoutRequestID string, cause error) {
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn db.PaymentTransaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("checkout_request_id = ?", checkoutRequestID).
			First(&txn).Error; err != nil {
			return err
		}
		if Status(txn.Status).IsTerminal() {
			return nil
		}
		return setStatus(tx, txn.ID, StatusFailedProcessing, "order creation error: "+cause.Error())
	})
	if err != nil {
		log.Printf("payment: failed to record processing error for checkout %s: %v", checkoutRequestID, err)
	}
}

func (p *Processor) notifyUserOrderCreated(ctx context.Context, checkoutRequestID, orderID string) {
	var txn db.PaymentTransaction
	if err := p.DB.WithContext(ctx).
		Where("checkout_request_id = ?", checkoutRequestID).
		First(&txn).Error; err != nil {
		return
	}
	p.notify(notify.Event{
		Type:    notify.TypeOrderCreated,
		UserID:  txn.UserID,
		Message: fmt.Sprintf("Payment received. Your order %s has been created.", orderID),
	})
}

func metadataMap(items []MetadataItem) map[string]any {
	md := make(map[string]any, len(items))
	for _, it := range items {
		if it.Name != "" && it.Value != nil {
			md[it.Name] = it.Value
		}
	}
	return md
}

func extractReceipt(md map[string]any) (string, bool) {
	v, ok := md["MpesaReceiptNumber"]
	if !ok {
		return "", false
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return "", false
	}
	return s, true
}

func extractAmount(md map[string]any) (decimal.Decimal, error) {
	v, ok := md["Amount"]
	if !ok {
		return decimal.Zero, errors.New("Amount missing from callback metadata")
	}
	d, err := decimal.NewFromString(fmt.Sprintf("%v", v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable Amount %q", fmt.Sprintf("%v", v))
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative Amount %s", d)
	}
	return d, nil
}
