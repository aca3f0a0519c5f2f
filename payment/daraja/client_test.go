package daraja

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	password, timestamp := Password("174379", "secret", at)

	assert.Equal(t, "20240102150405", timestamp)
	assert.Equal(t, "MTc0Mzc5c2VjcmV0MjAyNDAxMDIxNTA0MDU=", password)
}

func newTestClient(authURL, pushURL string) *Client {
	return &Client{
		AuthURL:         authURL,
		STKPushURL:      pushURL,
		ConsumerKey:     "key",
		ConsumerSecret:  "secret",
		Shortcode:       "174379",
		Passkey:         "passkey",
		CallbackURL:     "https://example.com/api/payments/callback",
		TransactionType: "CustomerPayBillOnline",
		HTTP:            &http.Client{Timeout: 5 * time.Second},
	}
}

func TestInitiateSTKPush(t *testing.T) {
	var authCalls int
	var gotPush stkPushRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/", func(w http.ResponseWriter, r *http.Request) {
		authCalls++
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "token-1",
			"expires_in":   "3599",
		})
	})
	mux.HandleFunc("/stkpush", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPush))
		json.NewEncoder(w).Encode(map[string]string{
			"MerchantRequestID":   "mr-1",
			"CheckoutRequestID":   "ws_CO_1",
			"ResponseCode":        "0",
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage":     "Success. Request accepted for processing",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv.URL+"/oauth/", srv.URL+"/stkpush")

	res, err := c.InitiateSTKPush(context.Background(), "254712345678", 2200, "txn-1", "purchase")
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	assert.Equal(t, "ws_CO_1", res.CheckoutRequestID)

	assert.Equal(t, "174379", gotPush.BusinessShortCode)
	assert.Equal(t, int64(2200), gotPush.Amount)
	assert.Equal(t, "254712345678", gotPush.PartyA)
	assert.Equal(t, "174379", gotPush.PartyB)
	assert.Equal(t, "https://example.com/api/payments/callback", gotPush.CallBackURL)
	assert.Equal(t, "txn-1", gotPush.AccountReference)

	// second push reuses the cached token
	_, err = c.InitiateSTKPush(context.Background(), "254712345678", 100, "txn-2", "purchase")
	require.NoError(t, err)
	assert.Equal(t, 1, authCalls)
}

func TestInitiateSTKPushRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "token-1", "expires_in": "3599"})
	})
	mux.HandleFunc("/stkpush", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"errorMessage": "Invalid PhoneNumber"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv.URL+"/oauth/", srv.URL+"/stkpush")

	_, err := c.InitiateSTKPush(context.Background(), "123", 100, "txn-1", "purchase")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid PhoneNumber")
}

func TestAccessTokenAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	_, err := c.accessToken(context.Background())
	require.Error(t, err)
}
