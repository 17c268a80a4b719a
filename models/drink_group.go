package models

const (
	GroupStatusActive = "active"
	GroupStatusClosed = "closed"

	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

type DrinkGroup struct {
	Base
	InviteCode   string `gorm:"type:varchar(20);uniqueIndex;not null"`
	RestaurantID string `gorm:"type:varchar(36);index;not null"`
	Status       string `gorm:"type:varchar(10);not null"`
}

type Invitation struct {
	Base
	FromSessionID string `gorm:"type:varchar(36);index;not null"`
	ToSessionID   string `gorm:"type:varchar(36);index;not null"`
	GroupID       string `gorm:"type:varchar(36);index;not null"`
	Status        string `gorm:"type:varchar(10);not null"`
}
