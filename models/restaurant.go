package models

type Restaurant struct {
	Base
	Name    string `gorm:"type:varchar(255);not null"`
	Address string `gorm:"type:varchar(255)"`
	LogoURL string `gorm:"type:varchar(255)"`
}
