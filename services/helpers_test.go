package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/database"
	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type fixture struct {
	db         *gorm.DB
	svc        *Services
	restaurant models.Restaurant
	tables     map[int]models.Table
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T, notifier events.Notifier) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:     db,
		svc:    New(db, notifier, utils.NewTokenManager("test-secret", time.Hour), "https://bierdeckel.test"),
		tables: map[int]models.Table{},
	}
	f.restaurant = models.Restaurant{Name: "Zum Goldenen Anker", Address: "Hafenstr. 1"}
	require.NoError(t, db.Create(&f.restaurant).Error)
	return f
}

func (f *fixture) table(t *testing.T, number int) models.Table {
	t.Helper()
	if tbl, ok := f.tables[number]; ok {
		return tbl
	}
	resp, err := f.svc.Restaurants.CreateTable(context.Background(), f.restaurant.ID, number)
	require.NoError(t, err)
	tbl := models.Table{Base: models.Base{ID: resp.ID}, TableNumber: number, RestaurantID: f.restaurant.ID}
	f.tables[number] = tbl
	return tbl
}

func (f *fixture) menuItem(t *testing.T, name string, price float64) models.MenuItem {
	t.Helper()
	item := models.MenuItem{
		RestaurantID: f.restaurant.ID,
		Name:         name,
		Price:        price,
		Category:     "Drinks",
		IsAvailable:  true,
	}
	require.NoError(t, f.db.Create(&item).Error)
	return item
}

// session scans the QR code of a table, creating the table on first use.
func (f *fixture) session(t *testing.T, tableNumber int) dto.SessionResponse {
	t.Helper()
	f.table(t, tableNumber)
	s, err := f.svc.Sessions.Scan(context.Background(), f.restaurant.ID, tableNumber)
	require.NoError(t, err)
	return s
}

func (f *fixture) deliveredOrder(t *testing.T, sessionID string, lines ...OrderLine) dto.OrderResponse {
	t.Helper()
	ctx := context.Background()
	order, err := f.svc.Orders.Place(ctx, sessionID, lines)
	require.NoError(t, err)
	order, err = f.svc.Orders.UpdateStatus(ctx, f.restaurant.ID, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	return order
}

func (f *fixture) bill(t *testing.T, sessionID string) dto.Bill {
	t.Helper()
	bill, err := f.svc.Payments.Bill(context.Background(), sessionID)
	require.NoError(t, err)
	return bill
}

// eventOfType matches events.Event values by their type.
type eventOfType struct {
	types map[events.Type]bool
	not   bool
}

func isEvent(types ...events.Type) gomock.Matcher {
	m := eventOfType{types: map[events.Type]bool{}}
	for _, tp := range types {
		m.types[tp] = true
	}
	return m
}

func notEvent(types ...events.Type) gomock.Matcher {
	m := isEvent(types...).(eventOfType)
	m.not = true
	return m
}

func (m eventOfType) Matches(x any) bool {
	ev, ok := x.(events.Event)
	if !ok {
		return false
	}
	return m.types[ev.Type] != m.not
}

func (m eventOfType) String() string {
	names := make([]string, 0, len(m.types))
	for tp := range m.types {
		names = append(names, string(tp))
	}
	if m.not {
		return fmt.Sprintf("event not in %v", names)
	}
	return fmt.Sprintf("event in %v", names)
}
