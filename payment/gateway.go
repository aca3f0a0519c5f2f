package payment

import "context"

// PushResult is the gateway's synchronous answer to an STK push request.
type PushResult struct {
	MerchantRequestID   string
	CheckoutRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
}

// Accepted reports whether the gateway accepted the push request for
// processing. Acceptance is not payment: the outcome arrives later on the
// callback.
func (r *PushResult) Accepted() bool {
	return r != nil && r.ResponseCode == "0"
}

// Gateway initiates the mobile-money push request. The amount is in whole
// currency units (see GatewayAmount); accountRef is the merchant-side
// reference (the transaction id) echoed back on the user's statement.
type Gateway interface {
	InitiateSTKPush(ctx context.Context, phoneNumber string, amount int64, accountRef, description string) (*PushResult, error)
}
