package payment

// Status is the state of a PaymentTransaction. The two pending states are the
// only non-terminal ones; once a transaction reaches a terminal state it never
// changes again.
type Status string

const (
	StatusPendingSTKInitiation Status = "pending_stk_initiation"
	StatusFailedSTKInitiation  Status = "failed_stk_initiation"
	StatusPendingConfirmation  Status = "pending_confirmation"

	StatusSuccessful           Status = "successful"
	StatusCancelledByUser      Status = "cancelled_by_user"
	StatusFailedDaraja         Status = "failed_daraja"
	StatusFailedTimeout        Status = "failed_timeout"
	StatusFailedUnderpaid      Status = "failed_underpaid"
	StatusFailedMissingReceipt Status = "failed_missing_receipt"
	StatusFailedProcessing     Status = "failed_processing_error"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusPendingSTKInitiation, StatusPendingConfirmation:
		return false
	}
	return true
}

func (s Status) String() string {
	return string(s)
}

// StatusMessage is the user-facing description returned by the status poll
// endpoint.
func StatusMessage(s Status) string {
	switch s {
	case StatusPendingSTKInitiation:
		return "Payment is being initiated."
	case StatusPendingConfirmation:
		return "Waiting for you to authorize the payment on your phone."
	case StatusSuccessful:
		return "Payment received. Your order has been created."
	case StatusCancelledByUser:
		return "You cancelled the payment request."
	case StatusFailedTimeout:
		return "The payment request timed out before it was authorized."
	case StatusFailedUnderpaid:
		return "The amount paid was less than the order total. Please contact support."
	case StatusFailedMissingReceipt:
		return "Payment confirmation was incomplete. Please contact support."
	case StatusFailedProcessing:
		return "Payment was received but the order could not be created. Please contact support."
	case StatusFailedSTKInitiation, StatusFailedDaraja:
		return "The payment could not be completed."
	}
	return "Unknown payment status."
}
