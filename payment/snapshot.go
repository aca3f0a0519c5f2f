package payment

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// SnapshotItem is one line of the cart snapshot frozen at checkout initiation.
// PriceAtPurchase is the live artwork price at that moment; later catalog
// changes never affect it.
type SnapshotItem struct {
	ArtworkID       string          `json:"artwork_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

func encodeSnapshot(items []SnapshotItem) (string, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func DecodeSnapshot(raw string) ([]SnapshotItem, error) {
	var items []SnapshotItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SnapshotTotal is sum(quantity * price) + delivery fee. The transaction
// amount is computed from this exactly once, at initiation.
func SnapshotTotal(items []SnapshotItem, deliveryFee decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.PriceAtPurchase.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Add(deliveryFee)
}

// GatewayAmount converts a decimal total to the whole-shilling amount sent to
// Daraja, which only accepts integers. Fractional totals are rounded UP so
// that a fully-authorized payment can never come back below the recorded
// transaction amount because of rounding alone.
func GatewayAmount(total decimal.Decimal) int64 {
	return total.Ceil().IntPart()
}
