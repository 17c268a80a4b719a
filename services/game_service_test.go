package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/events/mocks"
	"github.com/bierdeckel/bierdeckel-api/models"
)

type gameTable struct {
	f     *fixture
	beer  models.MenuItem
	ids   []string
	order map[string]string
}

// newGameTable opens one session per table number and has a 2x beer order
// delivered to each of them.
func newGameTable(t *testing.T, f *fixture, tables ...int) *gameTable {
	t.Helper()
	g := &gameTable{f: f, beer: f.menuItem(t, "Beer", 5), order: map[string]string{}}
	for _, n := range tables {
		s := f.session(t, n)
		o := f.deliveredOrder(t, s.ID, OrderLine{MenuItemID: g.beer.ID, Quantity: 2})
		g.ids = append(g.ids, s.ID)
		g.order[s.ID] = o.ID
	}
	return g
}

func (g *gameTable) ordersOf(t *testing.T, sessionID string) []models.Order {
	t.Helper()
	var orders []models.Order
	require.NoError(t, g.f.db.Preload("Items").Where("session_id = ?", sessionID).Order("created_at, id").Find(&orders).Error)
	return orders
}

func TestCreateGameValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	g := newGameTable(t, f, 1, 2)
	thirsty := f.session(t, 3)
	water := f.menuItem(t, "Water", 2)

	_, err := f.svc.Games.Create(ctx, g.ids[:1], g.beer.ID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Games.Create(ctx, []string{g.ids[0], g.ids[0]}, g.beer.ID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Games.Create(ctx, g.ids, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Games.Create(ctx, []string{g.ids[0], "missing"}, g.beer.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Games.Create(ctx, []string{g.ids[0], thirsty.ID}, g.beer.ID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Games.Create(ctx, g.ids, water.ID)
	assert.ErrorIs(t, err, ErrValidation)

	var games int64
	f.db.Model(&models.Game{}).Count(&games)
	assert.Zero(t, games)
}

func TestCreateAndGetGame(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	g := newGameTable(t, f, 1, 2, 3)

	game, err := f.svc.Games.Create(ctx, g.ids, g.beer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusActive, game.Status)
	assert.Equal(t, models.GameTypeDrinkRace, game.GameType)
	assert.Equal(t, "Beer", game.Drink)
	assert.Len(t, game.Players, 3)

	got, err := f.svc.Games.Get(ctx, game.GameID)
	require.NoError(t, err)
	assert.Equal(t, g.beer.ID, got.MenuItemID)
	assert.Nil(t, got.LoserSessionID)
	for _, p := range got.Players {
		assert.False(t, p.Finished)
	}

	_, err = f.svc.Games.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestThreePlayerSettlement(t *testing.T) {
	cases := map[string][2]int{
		"a_then_b": {0, 1},
		"b_then_a": {1, 0},
	}
	for name, order := range cases {
		order := order
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()
			g := newGameTable(t, f, 1, 2, 3)
			a, b, c := g.ids[0], g.ids[1], g.ids[2]

			game, err := f.svc.Games.Create(ctx, g.ids, g.beer.ID)
			require.NoError(t, err)

			first, err := f.svc.Games.Finish(ctx, game.GameID, g.ids[order[0]])
			require.NoError(t, err)
			assert.Equal(t, models.GameStatusActive, first.GameStatus)
			assert.Equal(t, 2, first.RemainingPlayers)

			res, err := f.svc.Games.Finish(ctx, game.GameID, g.ids[order[1]])
			require.NoError(t, err)
			assert.Equal(t, models.GameStatusFinished, res.GameStatus)
			assert.Equal(t, c, res.LoserSessionID)
			assert.Equal(t, 10.0, res.ExtraCost)

			// one rebooked drink per winner on the loser
			loserOrders := g.ordersOf(t, c)
			require.Len(t, loserOrders, 3)
			for _, o := range loserOrders[1:] {
				assert.Equal(t, models.OrderStatusDelivered, o.Status)
				assert.Equal(t, 5.0, o.Total)
				require.Len(t, o.Items, 1)
				assert.Equal(t, 1, o.Items[0].Quantity)
				assert.Equal(t, g.beer.ID, o.Items[0].MenuItemID)
			}
			assert.Equal(t, 20.0, f.bill(t, c).Total)

			// each winner lost one item, priced at its unit price
			for _, w := range []string{a, b} {
				orders := g.ordersOf(t, w)
				require.Len(t, orders, 1)
				assert.Empty(t, orders[0].Items)
				assert.Equal(t, 5.0, orders[0].Total)
			}

			got, err := f.svc.Games.Get(ctx, game.GameID)
			require.NoError(t, err)
			assert.Equal(t, models.GameStatusFinished, got.Status)
			require.NotNil(t, got.LoserSessionID)
			assert.Equal(t, c, *got.LoserSessionID)
			assert.NotNil(t, got.FinishedAt)
		})
	}
}

func TestSettlementUsesFirstDeliveredItem(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	g := newGameTable(t, f, 1, 2)
	winner, loser := g.ids[0], g.ids[1]

	// the winner's oldest delivered order holds a beer, so that is what gets
	// rebooked even though a pricier drink came later
	wine := f.menuItem(t, "Wine", 9)
	f.deliveredOrder(t, winner, OrderLine{MenuItemID: wine.ID, Quantity: 1})

	_, err := f.svc.Games.Create(ctx, g.ids, wine.ID)
	require.ErrorIs(t, err, ErrValidation, "loser never had wine")

	game, err := f.svc.Games.Create(ctx, g.ids, g.beer.ID)
	require.NoError(t, err)
	res, err := f.svc.Games.Finish(ctx, game.GameID, winner)
	require.NoError(t, err)
	assert.Equal(t, loser, res.LoserSessionID)
	assert.Equal(t, 5.0, res.ExtraCost)

	bill := f.bill(t, winner)
	assert.Equal(t, 14.0, bill.Total)
}

// Within one order the first line placed is the one rebooked, however the
// items' ids happen to sort.
func TestSettlementTakesFirstLineOfOrder(t *testing.T) {
	for round := 0; round < 10; round++ {
		t.Run(fmt.Sprintf("round_%d", round), func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()
			pretzel := f.menuItem(t, "Pretzel", 3)
			beer := f.menuItem(t, "Beer", 5)
			winner := f.session(t, 1)
			loser := f.session(t, 2)

			placed := f.deliveredOrder(t, winner.ID,
				OrderLine{MenuItemID: pretzel.ID, Quantity: 1},
				OrderLine{MenuItemID: beer.ID, Quantity: 1},
			)
			f.deliveredOrder(t, loser.ID, OrderLine{MenuItemID: beer.ID, Quantity: 1})

			listed, err := f.svc.Orders.Get(ctx, placed.ID)
			require.NoError(t, err)
			require.Len(t, listed.Items, 2)
			assert.Equal(t, "Pretzel", listed.Items[0].Name)
			assert.Equal(t, "Beer", listed.Items[1].Name)

			game, err := f.svc.Games.Create(ctx, []string{winner.ID, loser.ID}, beer.ID)
			require.NoError(t, err)
			res, err := f.svc.Games.Finish(ctx, game.GameID, winner.ID)
			require.NoError(t, err)
			assert.Equal(t, loser.ID, res.LoserSessionID)
			assert.Equal(t, 3.0, res.ExtraCost)

			g := &gameTable{f: f}
			loserOrders := g.ordersOf(t, loser.ID)
			require.Len(t, loserOrders, 2)
			rebooked := loserOrders[1]
			assert.Equal(t, models.OrderStatusDelivered, rebooked.Status)
			assert.Equal(t, 3.0, rebooked.Total)
			require.Len(t, rebooked.Items, 1)
			assert.Equal(t, pretzel.ID, rebooked.Items[0].MenuItemID)
			assert.Equal(t, 1, rebooked.Items[0].Quantity)
			assert.Equal(t, 3.0, rebooked.Items[0].Price)

			winnerOrder, err := f.svc.Orders.Get(ctx, placed.ID)
			require.NoError(t, err)
			require.Len(t, winnerOrder.Items, 1)
			assert.Equal(t, beer.ID, winnerOrder.Items[0].MenuItemID)
			assert.Equal(t, 5.0, winnerOrder.Total)
		})
	}
}

func TestFinishRejectsGameWithoutUnfinishedPlayers(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	solo := f.session(t, 1)
	beer := f.menuItem(t, "Beer", 5)

	// creation never allows this; the row is written directly
	game := models.Game{
		SessionID:  solo.ID,
		MenuItemID: beer.ID,
		GameType:   models.GameTypeDrinkRace,
		Status:     models.GameStatusActive,
		Players:    []models.GamePlayer{{SessionID: solo.ID}},
	}
	require.NoError(t, f.db.Create(&game).Error)

	res, err := f.svc.Games.Finish(ctx, game.ID, solo.ID)
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Empty(t, res.GameStatus)

	var player models.GamePlayer
	require.NoError(t, f.db.First(&player, "game_id = ?", game.ID).Error)
	assert.False(t, player.Finished, "the failed finish is rolled back")

	got, err := f.svc.Games.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusActive, got.Status)
}

func TestFinishErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	g := newGameTable(t, f, 1, 2, 3)
	outsider := f.session(t, 4)

	game, err := f.svc.Games.Create(ctx, g.ids, g.beer.ID)
	require.NoError(t, err)

	_, err = f.svc.Games.Finish(ctx, "missing", g.ids[0])
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Games.Finish(ctx, game.GameID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Games.Finish(ctx, game.GameID, g.ids[0])
	require.NoError(t, err)
	_, err = f.svc.Games.Finish(ctx, game.GameID, g.ids[0])
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Games.Finish(ctx, game.GameID, g.ids[1])
	require.NoError(t, err)
	_, err = f.svc.Games.Finish(ctx, game.GameID, g.ids[2])
	assert.ErrorIs(t, err, ErrConflict, "game is over")
}

func TestConcurrentFinishSettlesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), isEvent(events.GameFinished)).Return(nil).Times(1)
	notifier.EXPECT().Notify(gomock.Any(), notEvent(events.GameFinished)).Return(nil).AnyTimes()

	f := newFixture(t, notifier)
	ctx := context.Background()
	g := newGameTable(t, f, 1, 2, 3)

	game, err := f.svc.Games.Create(ctx, g.ids, g.beer.ID)
	require.NoError(t, err)
	_, err = f.svc.Games.Finish(ctx, game.GameID, g.ids[0])
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		finished []string
		failures []error
	)
	for _, id := range g.ids[1:] {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			res, err := f.svc.Games.Finish(ctx, game.GameID, sessionID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			finished = append(finished, res.LoserSessionID)
		}(id)
	}
	wg.Wait()

	require.Len(t, finished, 1)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrConflict)

	loser := finished[0]
	assert.Contains(t, g.ids[1:], loser)
	assert.Len(t, g.ordersOf(t, loser), 3, "original order plus one per winner")

	var rebooked int64
	f.db.Model(&models.Order{}).Where("total = ? AND session_id = ?", 5, loser).Count(&rebooked)
	assert.Equal(t, int64(2), rebooked)
}

func TestKeyedMutexReleasesKeys(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("g-1")
	done := make(chan struct{})
	go func() {
		u := k.Lock("g-1")
		u()
		close(done)
	}()
	other := k.Lock("g-2")
	other()
	unlock()
	<-done

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}
