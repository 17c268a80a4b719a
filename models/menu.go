package models

type MenuItem struct {
	Base
	RestaurantID string  `gorm:"type:varchar(36);index;not null"`
	Name         string  `gorm:"type:varchar(255);not null"`
	Description  string  `gorm:"type:text"`
	Price        float64 `gorm:"type:decimal(10,2);not null"`
	Category     string  `gorm:"type:varchar(100);not null"`
	ImageURL     string  `gorm:"type:varchar(255)"`
	IsAvailable  bool    `gorm:"not null"`
}
