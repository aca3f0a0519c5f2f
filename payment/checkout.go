package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"artmarket/web/db"
)

type InitiateResult struct {
	TransactionID       string
	CheckoutRequestID   string
	ResponseDescription string
}

// Initiate validates the user's cart, freezes a priced snapshot into a new
// PaymentTransaction, and fires the STK push. Pricing always comes from the
// live artwork and delivery data at this moment; the snapshot is immutable
// afterwards.
//
// Validation failures (*ValidationError) are rejected before any transaction
// row is written. A gateway rejection is recorded as failed_stk_initiation
// and returned as *GatewayError.
func (p *Processor) Initiate(ctx context.Context, userID, phoneNumber, deliveryOptionID string) (*InitiateResult, error) {
	if err := ValidatePhone(phoneNumber); err != nil {
		return nil, err
	}

	gdb := p.DB.WithContext(ctx)

	var cart db.Cart
	if err := gdb.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, validationErrorf("your cart is empty")
		}
		return nil, err
	}

	var cartItems []db.CartItem
	if err := gdb.Where("cart_id = ?", cart.ID).Find(&cartItems).Error; err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, validationErrorf("your cart is empty")
	}

	snapshot := make([]SnapshotItem, 0, len(cartItems))
	for _, ci := range cartItems {
		var art db.Artwork
		if err := gdb.Where("id = ?", ci.ArtworkID).First(&art).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, validationErrorf("an item in your cart is no longer available")
			}
			return nil, err
		}
		if !art.Active {
			return nil, validationErrorf("'%s' is no longer available", art.Name)
		}
		var artist db.Artist
		if err := gdb.Where("id = ?", art.ArtistID).First(&artist).Error; err != nil || !artist.Active {
			if err != nil && err != gorm.ErrRecordNotFound {
				return nil, err
			}
			return nil, validationErrorf("'%s' is no longer available", art.Name)
		}
		if art.StockQuantity < ci.Quantity {
			return nil, validationErrorf("insufficient stock for '%s', available: %d", art.Name, art.StockQuantity)
		}
		snapshot = append(snapshot, SnapshotItem{
			ArtworkID:       art.ID,
			Name:            art.Name,
			Quantity:        ci.Quantity,
			PriceAtPurchase: art.Price,
		})
	}

	deliveryFee := decimal.Zero
	var selectedDeliveryID *string
	var appliedFee *decimal.Decimal
	if deliveryOptionID != "" {
		var opt db.DeliveryOption
		if err := gdb.Where("id = ?", deliveryOptionID).First(&opt).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, validationErrorf("invalid delivery option")
			}
			return nil, err
		}
		if !opt.Active {
			return nil, validationErrorf("invalid delivery option")
		}
		deliveryFee = opt.Fee
		selectedDeliveryID = &opt.ID
		appliedFee = &opt.Fee
	}

	total := SnapshotTotal(snapshot, deliveryFee)
	if !total.IsPositive() {
		return nil, validationErrorf("cart total must be positive")
	}

	rawSnapshot, err := encodeSnapshot(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encoding cart snapshot: %w", err)
	}

	txn := db.PaymentTransaction{
		ID:                       uuid.New().String(),
		UserID:                   userID,
		CartID:                   &cart.ID,
		Amount:                   total,
		PhoneNumber:              phoneNumber,
		Status:                   StatusPendingSTKInitiation.String(),
		CartItemsSnapshot:        rawSnapshot,
		SelectedDeliveryOptionID: selectedDeliveryID,
		AppliedDeliveryFee:       appliedFee,
	}
	if err := gdb.Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("creating payment transaction: %w", err)
	}

	res, pushErr := p.Gateway.InitiateSTKPush(ctx, phoneNumber, GatewayAmount(total), txn.ID,
		fmt.Sprintf("Artmarket purchase %s", txn.ID[:8]))
	if pushErr != nil || !res.Accepted() || res.CheckoutRequestID == "" {
		desc := describePushFailure(res, pushErr)
		if err := setStatus(gdb, txn.ID, StatusFailedSTKInitiation, desc); err != nil {
			return nil, fmt.Errorf("recording failed initiation for transaction %s: %w", txn.ID, err)
		}
		return nil, &GatewayError{Description: desc}
	}

	// A CheckoutRequestID collision here is a gateway bug, not a user error;
	// the unique index turns it into a hard failure.
	err = gdb.Model(&db.PaymentTransaction{}).Where("id = ?", txn.ID).
		Updates(map[string]any{
			"checkout_request_id": res.CheckoutRequestID,
			"status":              StatusPendingConfirmation.String(),
			"gateway_description": res.ResponseDescription,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("recording gateway correlation id for transaction %s: %w", txn.ID, err)
	}

	return &InitiateResult{
		TransactionID:       txn.ID,
		CheckoutRequestID:   res.CheckoutRequestID,
		ResponseDescription: res.ResponseDescription,
	}, nil
}

func describePushFailure(res *PushResult, err error) string {
	switch {
	case err != nil:
		return "push request failed: " + err.Error()
	case res != nil && !res.Accepted():
		return fmt.Sprintf("push request rejected, code %s: %s", res.ResponseCode, res.ResponseDescription)
	default:
		return "push request accepted without a CheckoutRequestID"
	}
}

// setStatus writes a status transition plus its gateway description. Callers
// are responsible for the terminal-state latch; this is a plain write.
func setStatus(tx *gorm.DB, id string, st Status, desc string) error {
	return tx.Model(&db.PaymentTransaction{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":              st.String(),
			"gateway_description": desc,
		}).Error
}
