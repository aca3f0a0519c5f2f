package payment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artmarket/web/db"
)

// fulfill converts a transaction confirmed paid-in-full into a durable Order,
// exactly once, inside the caller's database transaction: order row, order
// items at snapshot prices, stock decrements under row locks, cart cleanup,
// and the successful status latch all commit or roll back together.
func (p *Processor) fulfill(tx *gorm.DB, txn *db.PaymentTransaction, receipt string) (string, error) {
	items, err := DecodeSnapshot(txn.CartItemsSnapshot)
	if err != nil || len(items) == 0 {
		return "", &FulfillError{Reason: "cart items snapshot missing or unreadable"}
	}

	// Addresses come from the buyer's current profile, or the pickup
	// placeholder when none is set.
	address := p.PickupAddress
	var user db.User
	if err := tx.Where("id = ?", txn.UserID).First(&user).Error; err == nil && user.Address != "" {
		address = user.Address
	}

	deliveryFee := decimal.Zero
	if txn.AppliedDeliveryFee != nil {
		deliveryFee = *txn.AppliedDeliveryFee
	}

	order := db.Order{
		ID:                   uuid.New().String(),
		UserID:               txn.UserID,
		TotalPrice:           txn.Amount,
		Status:               db.OrderStatusPaid,
		ShippingAddress:      address,
		BillingAddress:       address,
		PaymentGatewayRef:    receipt,
		DeliveryOptionID:     txn.SelectedDeliveryOptionID,
		DeliveryFee:          deliveryFee,
		PaymentTransactionID: &txn.ID,
	}
	if err := tx.Create(&order).Error; err != nil {
		return "", fmt.Errorf("creating order: %w", err)
	}

	for _, it := range items {
		var art db.Artwork
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", it.ArtworkID).
			First(&art).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &FulfillError{ArtworkID: it.ArtworkID, Reason: "artwork not found"}
		}
		if err != nil {
			return "", err
		}
		// Deactivated since initiation counts as a stock failure; the admin
		// deactivation cascade zeroes stock, this covers the window before
		// the cascade lands.
		if !art.Active {
			return "", &FulfillError{ArtworkID: it.ArtworkID, Reason: "artwork is no longer available"}
		}
		if art.StockQuantity < it.Quantity {
			return "", &FulfillError{
				ArtworkID: it.ArtworkID,
				Reason:    fmt.Sprintf("insufficient stock, available: %d, requested: %d", art.StockQuantity, it.Quantity),
			}
		}

		err = tx.Model(&db.Artwork{}).Where("id = ?", art.ID).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity)).Error
		if err != nil {
			return "", fmt.Errorf("decrementing stock for artwork %s: %w", art.ID, err)
		}

		oi := db.OrderItem{
			ID:              uuid.New().String(),
			OrderID:         order.ID,
			ArtworkID:       it.ArtworkID,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
		}
		if err := tx.Create(&oi).Error; err != nil {
			return "", fmt.Errorf("creating order item for artwork %s: %w", it.ArtworkID, err)
		}
	}

	if txn.CartID != nil {
		if err := tx.Where("cart_id = ?", *txn.CartID).Delete(&db.CartItem{}).Error; err != nil {
			return "", fmt.Errorf("clearing cart %s: %w", *txn.CartID, err)
		}
	}

	if err := setStatus(tx, txn.ID, StatusSuccessful, "payment received, order created"); err != nil {
		return "", fmt.Errorf("marking transaction successful: %w", err)
	}

	return order.ID, nil
}
