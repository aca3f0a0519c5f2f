// Package daraja is the M-Pesa Daraja gateway adapter: OAuth token handling
// and the STK push request. The asynchronous callback it triggers is decoded
// and reconciled by the payment package.
package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"artmarket/payment"
)

const (
	sandboxAuthURL    = "https://sandbox.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials"
	sandboxSTKPushURL = "https://sandbox.safaricom.co.ke/mpesa/stkpush/v1/processrequest"

	productionAuthURL    = "https://api.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials"
	productionSTKPushURL = "https://api.safaricom.co.ke/mpesa/stkpush/v1/processrequest"

	timestampLayout = "20060102150405"
)

type Client struct {
	AuthURL         string
	STKPushURL      string
	ConsumerKey     string
	ConsumerSecret  string
	Shortcode       string
	Passkey         string
	CallbackURL     string
	TransactionType string

	HTTP *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClientFromEnv() *Client {
	authURL, stkURL := sandboxAuthURL, sandboxSTKPushURL
	if os.Getenv("DARAJA_ENVIRONMENT") == "production" {
		authURL, stkURL = productionAuthURL, productionSTKPushURL
	}

	txnType := os.Getenv("DARAJA_TRANSACTION_TYPE")
	if txnType == "" {
		txnType = "CustomerPayBillOnline"
	}

	return &Client{
		AuthURL:         authURL,
		STKPushURL:      stkURL,
		ConsumerKey:     os.Getenv("DARAJA_CONSUMER_KEY"),
		ConsumerSecret:  os.Getenv("DARAJA_CONSUMER_SECRET"),
		Shortcode:       os.Getenv("DARAJA_SHORTCODE"),
		Passkey:         os.Getenv("DARAJA_PASSKEY"),
		CallbackURL:     strings.TrimRight(os.Getenv("DARAJA_CALLBACK_URL_BASE"), "/") + "/api/payments/callback",
		TransactionType: txnType,
		HTTP:            &http.Client{Timeout: 30 * time.Second},
	}
}

// Password is the Base64-encoded shortcode+passkey+timestamp credential the
// STK push API requires.
func Password(shortcode, passkey string, t time.Time) (password, timestamp string) {
	timestamp = t.Format(timestampLayout)
	password = base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
	return password, timestamp
}

// accessToken returns a cached OAuth token, fetching a new one when the cache
// is empty or within a minute of expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.AuthURL, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.ConsumerKey, c.ConsumerSecret)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("daraja auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("daraja auth returned %s: %s", resp.Status, body)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decoding daraja auth response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("daraja auth response missing access_token")
	}

	expiresIn, err := strconv.Atoi(tokenResp.ExpiresIn)
	if err != nil || expiresIn <= 0 {
		expiresIn = 3599
	}

	c.token = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn-60) * time.Second)
	return c.token, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

func (c *Client) InitiateSTKPush(ctx context.Context, phoneNumber string, amount int64, accountRef, description string) (*payment.PushResult, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	password, timestamp := Password(c.Shortcode, c.Passkey, time.Now())
	payloadBytes, err := json.Marshal(stkPushRequest{
		BusinessShortCode: c.Shortcode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   c.TransactionType,
		Amount:            amount,
		PartyA:            phoneNumber,
		PartyB:            c.Shortcode,
		PhoneNumber:       phoneNumber,
		CallBackURL:       c.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.STKPushURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stk push request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			ErrorMessage string `json:"errorMessage"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.ErrorMessage != "" {
			return nil, fmt.Errorf("stk push rejected: %s", errResp.ErrorMessage)
		}
		return nil, fmt.Errorf("stk push returned %s: %s", resp.Status, body)
	}

	var pushResp struct {
		MerchantRequestID   string `json:"MerchantRequestID"`
		CheckoutRequestID   string `json:"CheckoutRequestID"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
		CustomerMessage     string `json:"CustomerMessage"`
	}
	if err := json.Unmarshal(body, &pushResp); err != nil {
		return nil, fmt.Errorf("decoding stk push response: %w", err)
	}

	return &payment.PushResult{
		MerchantRequestID:   pushResp.MerchantRequestID,
		CheckoutRequestID:   pushResp.CheckoutRequestID,
		ResponseCode:        pushResp.ResponseCode,
		ResponseDescription: pushResp.ResponseDescription,
		CustomerMessage:     pushResp.CustomerMessage,
	}, nil
}
