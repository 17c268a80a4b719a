package models

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusDelivered = "delivered"
)

var orderStatusRank = map[string]int{
	OrderStatusPending:   0,
	OrderStatusPreparing: 1,
	OrderStatusDelivered: 2,
}

type Order struct {
	Base
	SessionID string      `gorm:"type:varchar(36);index;not null"`
	Status    string      `gorm:"type:varchar(20);not null;index"`
	Total     float64     `gorm:"type:decimal(10,2);not null"`
	Items     []OrderItem `gorm:"foreignKey:OrderID"`
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	_, ok := orderStatusRank[s]
	return ok
}

// OrderStatusRegresses reports whether moving from -> to goes backwards.
func OrderStatusRegresses(from, to string) bool {
	return orderStatusRank[to] < orderStatusRank[from]
}
