package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// Models lists every persisted entity in creation order.
func Models() []interface{} {
	return []interface{}{
		&models.Restaurant{},
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.DrinkGroup{},
		&models.Invitation{},
		&models.Game{},
		&models.GamePlayer{},
		&models.ServiceCall{},
		&models.Coaster{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Infof("database schema up to date (%d tables)", len(Models()))
	return nil
}
