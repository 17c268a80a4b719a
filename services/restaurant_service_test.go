package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierdeckel/bierdeckel-api/dto"
)

func TestCreateTable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	table, err := f.svc.Restaurants.CreateTable(ctx, f.restaurant.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, "https://bierdeckel.test/r/"+f.restaurant.ID+"/table/5", table.QRCode)

	_, err = f.svc.Restaurants.CreateTable(ctx, f.restaurant.ID, 5)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Restaurants.CreateTable(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Restaurants.CreateTable(ctx, f.restaurant.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	tables, err := f.svc.Restaurants.ListTables(ctx, f.restaurant.ID)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

func TestMenuGroupsAvailableItems(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	price := func(p float64) *float64 { return &p }
	no := false

	_, err := f.svc.Restaurants.CreateMenuItem(ctx, f.restaurant.ID, dto.CreateMenuItemRequest{Name: "Helles", Price: price(4.5), Category: "Bier"})
	require.NoError(t, err)
	_, err = f.svc.Restaurants.CreateMenuItem(ctx, f.restaurant.ID, dto.CreateMenuItemRequest{Name: "Dunkel", Price: price(4.8), Category: "Bier"})
	require.NoError(t, err)
	_, err = f.svc.Restaurants.CreateMenuItem(ctx, f.restaurant.ID, dto.CreateMenuItemRequest{Name: "Brezel", Price: price(3), Category: "Snacks"})
	require.NoError(t, err)
	_, err = f.svc.Restaurants.CreateMenuItem(ctx, f.restaurant.ID, dto.CreateMenuItemRequest{Name: "Obatzda", Price: price(6), Category: "Snacks", IsAvailable: &no})
	require.NoError(t, err)

	menu, err := f.svc.Restaurants.Menu(ctx, f.restaurant.ID)
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "Bier", menu[0].Category)
	assert.Len(t, menu[0].Items, 2)
	assert.Equal(t, "Snacks", menu[1].Category)
	require.Len(t, menu[1].Items, 1)
	assert.Equal(t, "Brezel", menu[1].Items[0].Name)

	_, err = f.svc.Restaurants.CreateMenuItem(ctx, f.restaurant.ID, dto.CreateMenuItemRequest{Name: "Gratis", Price: price(-1), Category: "Bier"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateMenuItem(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	item := f.menuItem(t, "Helles", 4.5)
	off := false
	name := "Helles 0,5"

	got, err := f.svc.Restaurants.UpdateMenuItem(ctx, f.restaurant.ID, item.ID, dto.UpdateMenuItemRequest{Name: &name, IsAvailable: &off})
	require.NoError(t, err)
	assert.Equal(t, "Helles 0,5", got.Name)
	assert.False(t, got.IsAvailable)
	assert.Equal(t, 4.5, got.Price)

	_, err = f.svc.Restaurants.UpdateMenuItem(ctx, "other", item.ID, dto.UpdateMenuItemRequest{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Restaurants.UpdateMenuItem(ctx, f.restaurant.ID, "missing", dto.UpdateMenuItemRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	beer := f.menuItem(t, "Beer", 5)
	a := f.session(t, 1)
	f.session(t, 2)
	closed := f.session(t, 2)
	_, err := f.svc.Sessions.Close(ctx, closed.ID)
	require.NoError(t, err)

	_, err = f.svc.Orders.Place(ctx, a.ID, []OrderLine{{MenuItemID: beer.ID, Quantity: 3}})
	require.NoError(t, err)
	f.deliveredOrder(t, a.ID, OrderLine{MenuItemID: beer.ID, Quantity: 1})
	_, err = f.svc.ServiceCalls.Create(ctx, a.ID, "waiter", "")
	require.NoError(t, err)

	board, err := f.svc.Restaurants.Dashboard(ctx, f.restaurant.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)

	first := board[0]
	assert.Equal(t, 1, first.TableNumber)
	require.Len(t, first.ActiveSessions, 1)
	assert.Equal(t, 1, first.ActiveSessions[0].OpenOrders)
	assert.Equal(t, 20.0, first.ActiveSessions[0].Total)
	assert.Equal(t, 20.0, first.ActiveSessions[0].Remaining)
	assert.Equal(t, 1, first.OpenServiceRequests)

	assert.Len(t, board[1].ActiveSessions, 1, "closed sessions are not shown")
}
