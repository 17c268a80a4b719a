package models

type Table struct {
	Base
	TableNumber  int        `gorm:"not null;uniqueIndex:idx_restaurant_table_number"`
	RestaurantID string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_restaurant_table_number"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	QRCode       string     `gorm:"type:varchar(255)"`
}
