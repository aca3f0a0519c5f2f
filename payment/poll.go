package payment

import (
	"context"

	"artmarket/web/db"
)

type StatusInfo struct {
	Status  Status
	Message string
	OrderID string
}

// PollStatus looks up the transaction by correlation id, scoped to the owning
// user. Returns gorm.ErrRecordNotFound if no matching transaction exists.
func (p *Processor) PollStatus(ctx context.Context, checkoutRequestID, userID string) (*StatusInfo, error) {
	var txn db.PaymentTransaction
	err := p.DB.WithContext(ctx).
		Where("checkout_request_id = ? AND user_id = ?", checkoutRequestID, userID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}

	info := &StatusInfo{
		Status:  Status(txn.Status),
		Message: StatusMessage(Status(txn.Status)),
	}

	if info.Status == StatusSuccessful {
		var order db.Order
		if err := p.DB.WithContext(ctx).
			Where("payment_transaction_id = ?", txn.ID).
			First(&order).Error; err == nil {
			info.OrderID = order.ID
		}
	}

	return info, nil
}
