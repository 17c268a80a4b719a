package models

type OrderItem struct {
	Base
	OrderID    string `gorm:"type:varchar(36);index;not null"`
	Order      Order  `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	MenuItemID string `gorm:"type:varchar(36);index;not null"`
	// Position is the line's index within its order, in the order it was placed.
	Position int `gorm:"not null;default:0"`
	Quantity int `gorm:"not null"`
	// Price is the catalog price at the moment the order was placed.
	Price float64 `gorm:"type:decimal(10,2);not null"`
}
