package models

import "time"

// TableSession is one guest's visit, opened by scanning a table's QR code.
// Sessions are closed, never deleted.
type TableSession struct {
	Base
	TableID      string     `gorm:"type:varchar(36);index;not null"`
	Table        Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	RestaurantID string     `gorm:"type:varchar(36);index;not null"`
	IsActive     bool       `gorm:"not null;index"`
	GroupID      *string    `gorm:"type:varchar(36);index"`
	DrinkReady   bool       `gorm:"not null"`
	ClosedAt     *time.Time
}
