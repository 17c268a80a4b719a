package models

import "time"

const (
	CoasterEmpty = "empty"
	CoasterLow   = "low"
	CoasterHalf  = "half"
	CoasterFull  = "full"
)

// Coaster is the weight-sensing beer mat (Bierdeckel) on a table.
type Coaster struct {
	Base
	TableID      string    `gorm:"type:varchar(36);uniqueIndex;not null"`
	RestaurantID string    `gorm:"type:varchar(36);index;not null"`
	Weight       float64   `gorm:"not null"`
	Status       string    `gorm:"type:varchar(10);not null"`
	LastUpdated  time.Time `gorm:"not null"`
}

func (Coaster) TableName() string {
	return "bierdeckel"
}

// CoasterStatus maps a weight in grams to a fill level.
func CoasterStatus(weight float64) string {
	switch {
	case weight < 50:
		return CoasterEmpty
	case weight < 200:
		return CoasterLow
	case weight < 350:
		return CoasterHalf
	default:
		return CoasterFull
	}
}
