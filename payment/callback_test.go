package payment

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"artmarket/notify"
)

const testSnapshot = `[{"artwork_id":"art-1","name":"Sunset","quantity":1,"price_at_purchase":"1500"}]`

func txnColumns() []string {
	return []string{
		"id", "checkout_request_id", "user_id", "cart_id", "amount",
		"phone_number", "status", "gateway_description", "cart_items_snapshot",
		"selected_delivery_option_id", "applied_delivery_fee",
	}
}

func pendingTxnRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows(txnColumns()).AddRow(
		"txn-1", "ws_CO_1", "user-1", "cart-1", "1500.00",
		"254712345678", status, "", testSnapshot, nil, nil,
	)
}

func successCallback() *StkCallback {
	cb := &StkCallback{
		CheckoutRequestID: "ws_CO_1",
		ResultCode:        json.Number("0"),
		ResultDesc:        "The service request is processed successfully.",
	}
	cb.CallbackMetadata.Item = []MetadataItem{
		{Name: "Amount", Value: 1500.0},
		{Name: "MpesaReceiptNumber", Value: "SFC123XYZ"},
		{Name: "PhoneNumber", Value: 254712345678.0},
	}
	return cb
}

func TestHandleCallbackUnmatched(t *testing.T) {
	p, mock, sink := newTestProcessor(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(txnColumns()))
	mock.ExpectCommit()

	res := p.HandleCallback(context.Background(), &StkCallback{
		CheckoutRequestID: "ws_CO_unknown",
		ResultCode:        json.Number("0"),
	})

	if res.Matched {
		t.Error("expected unmatched result")
	}
	if len(sink.events) != 0 {
		t.Errorf("expected no notifications, got %d", len(sink.events))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHandleCallbackEmptyID(t *testing.T) {
	p, mock, _ := newTestProcessor(t)

	res := p.HandleCallback(context.Background(), &StkCallback{})
	if res.Matched {
		t.Error("expected unmatched result for empty CheckoutRequestID")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no database access expected: %v", err)
	}
}

func TestHandleCallbackDuplicateTerminal(t *testing.T) {
	p, mock, sink := newTestProcessor(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(pendingTxnRow(string(StatusSuccessful)))
	mock.ExpectCommit()

	res := p.HandleCallback(context.Background(), successCallback())

	if !res.Matched || !res.Duplicate {
		t.Errorf("expected matched duplicate, got %+v", res)
	}
	if res.Status != StatusSuccessful {
		t.Errorf("status = %s, want successful", res.Status)
	}
	if len(sink.events) != 0 {
		t.Errorf("duplicate must not notify, got %d events", len(sink.events))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHandleCallbackUserCancelled(t *testing.T) {
	p, mock, _ := newTestProcessor(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(pendingTxnRow(string(StatusPendingConfirmation)))
	mock.ExpectExec("UPDATE `payment_transactions` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cb := &StkCallback{
		CheckoutRequestID: "ws_CO_1",
		ResultCode:        json.Number("1032"),
		ResultDesc:        "Request cancelled by user",
	}
	res := p.HandleCallback(context.Background(), cb)

	if res.Status != StatusCancelledByUser {
		t.Errorf("status = %s, want cancelled_by_user", res.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHandleCallbackMissingReceipt(t *testing.T) {
	p, mock, _ := newTestProcessor(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(pendingTxnRow(string(StatusPendingConfirmation)))
	mock.ExpectExec("UPDATE `payment_transactions` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cb := successCallback()
	cb.CallbackMetadata.Item = []MetadataItem{{Name: "Amount", Value: 1500.0}}

	res := p.HandleCallback(context.Background(), cb)
	if res.Status != StatusFailedMissingReceipt {
		t.Errorf("status = %s, want failed_missing_receipt", res.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHandleCallbackUnderpaid(t *testing.T) {
	p, mock, _ := newTestProcessor(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(pendingTxnRow(string(StatusPendingConfirmation)))
	mock.ExpectExec("UPDATE `payment_transactions` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cb := successCallback()
	cb.CallbackMetadata.Item = []MetadataItem{
		{Name: "Amount", Value: 100.0},
		{Name: "MpesaReceiptNumber", Value: "SFC123XYZ"},
	}

	res := p.HandleCallback(context.Background(), cb)
	if res.Status != StatusFailedUnderpaid {
		t.Errorf("status = %s, want failed_underpaid", res.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHandleCallbackSuccessMaterializesOrder(t *testing.T) {
	p, mock, sink := newTestProcessor(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(pendingTxnRow(string(StatusPendingConfirmation)))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "address"}).
			AddRow("user-1", "12 Riverside Drive, Nairobi"))
	mock.ExpectExec("INSERT INTO `orders`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `artworks`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock_quantity", "active", "artist_id"}).
			AddRow("art-1", "Sunset", "1500.00", 3, true, "artist-1"))
	mock.ExpectExec("UPDATE `artworks` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `order_items`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM `cart_items`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `payment_transactions` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// post-commit user notification re-reads the transaction
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`").
		WillReturnRows(pendingTxnRow(string(StatusSuccessful)))

	res := p.HandleCallback(context.Background(), successCallback())

	if res.Status != StatusSuccessful {
		t.Fatalf("status = %s, want successful", res.Status)
	}
	if res.OrderID == "" {
		t.Error("expected an order id")
	}
	if len(sink.events) != 2 {
		t.Fatalf("expected operator and user notifications, got %d", len(sink.events))
	}
	if sink.events[0].Type != notify.TypeOrderCreated || sink.events[0].UserID != "" {
		t.Errorf("first event should be the operator order_created, got %+v", sink.events[0])
	}
	if sink.events[1].UserID != "user-1" {
		t.Errorf("second event should target the buyer, got %+v", sink.events[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHandleCallbackStockRaceLatchesProcessingFailure(t *testing.T) {
	p, mock, sink := newTestProcessor(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(pendingTxnRow(string(StatusPendingConfirmation)))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "address"}).AddRow("user-1", ""))
	mock.ExpectExec("INSERT INTO `orders`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `artworks`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock_quantity", "active", "artist_id"}).
			AddRow("art-1", "Sunset", "1500.00", 0, true, "artist-1"))
	mock.ExpectRollback()

	// failure latch runs in its own transaction
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(pendingTxnRow(string(StatusPendingConfirmation)))
	mock.ExpectExec("UPDATE `payment_transactions` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res := p.HandleCallback(context.Background(), successCallback())

	if res.Status != StatusFailedProcessing {
		t.Fatalf("status = %s, want failed_processing_error", res.Status)
	}
	if len(sink.events) != 1 || sink.events[0].Type != notify.TypePaymentFailed {
		t.Fatalf("expected one operator payment_failed event, got %+v", sink.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		value   any
		want    string
		wantErr bool
	}{
		{1500.0, "1500", false},
		{"2200.50", "2200.5", false},
		{json.Number("100"), "100", false},
		{-1.0, "", true},
		{"not a number", "", true},
	}
	for _, c := range cases {
		got, err := extractAmount(map[string]any{"Amount": c.value})
		if c.wantErr {
			if err == nil {
				t.Errorf("extractAmount(%v) expected error", c.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("extractAmount(%v) unexpected error: %v", c.value, err)
			continue
		}
		if got.String() != c.want {
			t.Errorf("extractAmount(%v) = %s, want %s", c.value, got, c.want)
		}
	}

	if _, err := extractAmount(map[string]any{}); err == nil {
		t.Error("missing Amount should be an error")
	}
}
