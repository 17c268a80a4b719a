package models

const (
	PaymentTypeSingle = "single"
	PaymentTypeGroup  = "group"

	PaymentStatusPending   = "pending"
	PaymentStatusRequested = "requested"
	PaymentStatusCompleted = "completed"
)

// Payment represents money settled against a session's bill, or a guest's
// request to pay (status requested, amount 0).
type Payment struct {
	Base
	SessionID   string  `gorm:"type:varchar(36);index;not null"`
	Amount      float64 `gorm:"type:decimal(10,2);not null"`
	PaymentType string  `gorm:"type:varchar(10);not null"`
	Status      string  `gorm:"type:varchar(15);not null;index"`
}
