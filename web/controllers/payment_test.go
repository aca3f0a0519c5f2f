package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"artmarket/payment"
)

func newCallbackRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	Pay = payment.New(gdb, nil, nil)

	r := gin.New()
	r.POST("/api/payments/callback", DarajaCallback)
	return r, mock
}

func postCallback(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func assertAck(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		ResultCode int    `json:"ResultCode"`
		ResultDesc string `json:"ResultDesc"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unreadable ack: %v", err)
	}
	if resp.ResultCode != 0 {
		t.Errorf("ResultCode = %d, want 0", resp.ResultCode)
	}
}

func TestDarajaCallbackAcksGarbage(t *testing.T) {
	r, mock := newCallbackRouter(t)

	assertAck(t, postCallback(r, "this is not json"))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no database access expected: %v", err)
	}
}

func TestDarajaCallbackAcksUnknownCheckout(t *testing.T) {
	r, mock := newCallbackRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))
	mock.ExpectCommit()

	body := `{"Body":{"stkCallback":{"MerchantRequestID":"mr-1","CheckoutRequestID":"ws_CO_unknown","ResultCode":0,"ResultDesc":"ok"}}}`
	assertAck(t, postCallback(r, body))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDarajaCallbackAcksDuplicate(t *testing.T) {
	r, mock := newCallbackRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `payment_transactions`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "checkout_request_id", "user_id", "status", "amount"}).
			AddRow("txn-1", "ws_CO_1", "user-1", "successful", "1500.00"))
	mock.ExpectCommit()

	body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_1","ResultCode":0,"ResultDesc":"ok"}}}`
	assertAck(t, postCallback(r, body))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
