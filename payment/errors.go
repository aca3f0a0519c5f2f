package payment

import "fmt"

// ValidationError rejects a checkout at the boundary, before any transaction
// row is written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// GatewayError reports that the push request was rejected or errored. The
// transaction has already been recorded in failed_stk_initiation when this is
// returned.
type GatewayError struct {
	Description string
}

func (e *GatewayError) Error() string {
	return "payment gateway rejected the push request: " + e.Description
}

// FulfillError aborts materialization. ArtworkID identifies the offending row
// for a stock-race failure; it is empty for other failures.
type FulfillError struct {
	ArtworkID string
	Reason    string
}

func (e *FulfillError) Error() string {
	if e.ArtworkID != "" {
		return fmt.Sprintf("order fulfillment failed for artwork %s: %s", e.ArtworkID, e.Reason)
	}
	return "order fulfillment failed: " + e.Reason
}
