package db

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Email        string `gorm:"unique;type:varchar(120);not null"`
	PasswordHash string `gorm:"type:varchar(128);not null"`
	Name         string `gorm:"type:varchar(100)"`
	Address      string `gorm:"type:text"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time

	Orders []Order `gorm:"foreignKey:UserID"`
}

type Artist struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string `gorm:"type:varchar(150);not null"`
	Bio       string `gorm:"type:text"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Artworks []Artwork `gorm:"foreignKey:ArtistID"`
}

type Artwork struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"`
	Name          string          `gorm:"type:varchar(255);not null"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockQuantity int             `gorm:"not null;default:1"`
	Active        bool            `gorm:"not null;default:true"`
	ImageURL      string          `gorm:"type:varchar(255)"`
	ArtistID      string          `gorm:"type:varchar(36);not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Artist *Artist `gorm:"foreignKey:ArtistID"`
}

type Cart struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []CartItem `gorm:"foreignKey:CartID"`
}

type CartItem struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	CartID    string `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_artwork"`
	ArtworkID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_artwork"`
	Quantity  int    `gorm:"not null;default:1"`

	Artwork *Artwork `gorm:"foreignKey:ArtworkID"`
}

type DeliveryOption struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Description string          `gorm:"type:text"`
	Fee         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Active      bool            `gorm:"not null;default:true"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// PaymentTransaction is the durable record of one checkout attempt. It is the
// single source of truth for whether a checkout has been fulfilled; rows are
// never deleted.
type PaymentTransaction struct {
	ID                string  `gorm:"primaryKey;type:varchar(36)"`
	CheckoutRequestID *string `gorm:"type:varchar(100);uniqueIndex"`
	UserID            string  `gorm:"type:varchar(36);not null;index"`
	CartID            *string `gorm:"type:varchar(36)"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PhoneNumber       string          `gorm:"type:varchar(15)"`
	Status            string          `gorm:"type:varchar(50);not null"`
	GatewayDescription string         `gorm:"column:gateway_description;type:text"`
	// CartItemsSnapshot is the serialized item snapshot frozen at initiation;
	// materialization reads this, never the live cart.
	CartItemsSnapshot        string  `gorm:"type:text"`
	SelectedDeliveryOptionID *string `gorm:"type:varchar(36)"`
	AppliedDeliveryFee       *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusPickedUp  = "picked_up"
)

type Order struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)"`
	UserID            string          `gorm:"type:varchar(36);not null;index"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status            string          `gorm:"type:varchar(50);not null;default:pending"`
	ShippingAddress   string          `gorm:"type:text"`
	BillingAddress    string          `gorm:"type:text"`
	PaymentGatewayRef string          `gorm:"type:varchar(255)"`
	DeliveryOptionID  *string         `gorm:"type:varchar(36)"`
	DeliveryFee       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PickedUpByName    string          `gorm:"type:varchar(150)"`
	PickedUpByIDNo    string          `gorm:"type:varchar(50)"`
	PickedUpAt        *time.Time
	// Set once by the materializer, never reassigned. One order per
	// successful transaction.
	PaymentTransactionID *string `gorm:"type:varchar(36);index"`
	ShippedAt            *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	OrderID   string `gorm:"type:varchar(36);not null;index"`
	ArtworkID string `gorm:"type:varchar(36);not null"`
	Quantity  int    `gorm:"not null"`
	// Price copied from the transaction snapshot, not the live artwork price.
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

type Notification struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	UserID    *string `gorm:"type:varchar(36);index"` // nil = operator notification
	Type      string  `gorm:"type:varchar(50);not null"`
	Message   string  `gorm:"type:text;not null"`
	Read      bool    `gorm:"not null;default:false"`
	CreatedAt time.Time
}
