package models

const (
	ServiceCallOpen       = "open"
	ServiceCallInProgress = "in_progress"
	ServiceCallDone       = "done"
)

type ServiceCall struct {
	Base
	SessionID    string `gorm:"type:varchar(36);index;not null"`
	RestaurantID string `gorm:"type:varchar(36);index;not null"`
	RequestType  string `gorm:"type:varchar(50);not null"`
	Message      string `gorm:"type:text"`
	Status       string `gorm:"type:varchar(15);not null;index"`
}

func ValidServiceCallStatus(s string) bool {
	switch s {
	case ServiceCallOpen, ServiceCallInProgress, ServiceCallDone:
		return true
	}
	return false
}
