package models

import "time"

// OrderStatus is stored as a plain string so that values written by older
// clients survive; the known set lives here and nowhere else.
type OrderStatus string

const (
	StatusNotProcess OrderStatus = "Not Process"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

func KnownStatuses() []OrderStatus {
	return []OrderStatus{
		StatusNotProcess,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
	}
}

func (s OrderStatus) Known() bool {
	for _, k := range KnownStatuses() {
		if s == k {
			return true
		}
	}
	return false
}

// CanTransition is deliberately permissive: any status may move to any
// other. Admin tooling relies on that, so restrictions belong here if they
// are ever added.
func CanTransition(from, to OrderStatus) bool {
	return true
}

// PaymentResult keeps the gateway outcome next to the order row.
type PaymentResult struct {
	Success       bool    `json:"success"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

// OrderProduct is an explicit join row instead of many2many: the same
// product may appear twice in one order (carts are not deduplicated).
type OrderProduct struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"order_id"`
	ProductID uint    `gorm:"not null"                 json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Product   Product `gorm:"foreignKey:ProductID"     json:"product"`
}

type Order struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"              json:"id"`
	BuyerID   uint           `gorm:"index;not null"                        json:"buyer_id"`
	Buyer     User           `gorm:"foreignKey:BuyerID"                    json:"buyer"`
	Items     []OrderProduct `gorm:"foreignKey:OrderID"                    json:"products"`
	Status    OrderStatus    `gorm:"not null;default:'Not Process'"        json:"status"`
	Payment   PaymentResult  `gorm:"embedded;embeddedPrefix:payment_"      json:"payment"`
	CreatedAt time.Time      `json:"created_at"`
}
