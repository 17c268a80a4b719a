package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierdeckel/bierdeckel-api/models"
)

func TestMigrateCreatesEveryTable(t *testing.T) {
	db, err := OpenMemory(t.Name())
	require.NoError(t, err)

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasTable("bierdeckel"))
}

func TestMigrateIsRepeatable(t *testing.T) {
	db, err := OpenMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
}

func TestTableNumberUniquePerRestaurant(t *testing.T) {
	db, err := OpenMemory(t.Name())
	require.NoError(t, err)

	r := models.Restaurant{Name: "Zum Anker"}
	require.NoError(t, db.Create(&r).Error)
	require.NoError(t, db.Omit("Restaurant").Create(&models.Table{TableNumber: 5, RestaurantID: r.ID}).Error)
	assert.Error(t, db.Omit("Restaurant").Create(&models.Table{TableNumber: 5, RestaurantID: r.ID}).Error)
}
