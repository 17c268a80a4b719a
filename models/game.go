package models

import "time"

const (
	GameTypeDrinkRace = "drink_race"

	// GameStatusWaiting is reserved; games are created active.
	GameStatusWaiting  = "waiting"
	GameStatusActive   = "active"
	GameStatusFinished = "finished"
)

type Game struct {
	Base
	// SessionID is the first participant, kept as nominal owner.
	SessionID      string       `gorm:"type:varchar(36);index;not null"`
	MenuItemID     string       `gorm:"type:varchar(36);not null"`
	GameType       string       `gorm:"type:varchar(20);not null"`
	Status         string       `gorm:"type:varchar(10);not null"`
	LoserSessionID *string      `gorm:"type:varchar(36)"`
	FinishedAt     *time.Time
	Players        []GamePlayer `gorm:"foreignKey:GameID"`
}

type GamePlayer struct {
	Base
	GameID     string `gorm:"type:varchar(36);index;not null"`
	SessionID  string `gorm:"type:varchar(36);index;not null"`
	Finished   bool   `gorm:"not null"`
	FinishedAt *time.Time
}
