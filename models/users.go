package models

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	Base
	Username     string     `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Role         string     `gorm:"type:varchar(20);not null"`
	RestaurantID string     `gorm:"type:varchar(36);index;not null"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// CanManageStaff reports whether the role may create accounts for its restaurant.
func CanManageStaff(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}
