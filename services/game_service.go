package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// GameService runs drink races. The last player to finish pays for one
// drink of every other player.
type GameService struct {
	db       *gorm.DB
	notifier events.Notifier
	locks    *keyedMutex
}

func NewGameService(db *gorm.DB, notifier events.Notifier) *GameService {
	return &GameService{db: db, notifier: orNop(notifier), locks: newKeyedMutex()}
}

// Create starts a game between sessions that each already had the wagered
// drink delivered. The first session is recorded as the game's owner.
func (s *GameService) Create(ctx context.Context, sessionIDs []string, menuItemID string) (dto.GameResponse, error) {
	if len(sessionIDs) < 2 {
		return dto.GameResponse{}, invalid("a game needs at least 2 players")
	}
	seen := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		if seen[id] {
			return dto.GameResponse{}, invalid("session %s is listed twice", id)
		}
		seen[id] = true
	}

	var (
		game models.Game
		item models.MenuItem
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", menuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("menu item %s not found", menuItemID)
			}
			return fmt.Errorf("load menu item %s: %w", menuItemID, err)
		}

		for _, id := range sessionIDs {
			if _, err := findActiveSession(tx, id); err != nil {
				return err
			}
			var delivered int64
			if err := tx.Model(&models.OrderItem{}).
				Joins("JOIN orders ON orders.id = order_items.order_id").
				Where("orders.session_id = ? AND orders.status = ? AND order_items.menu_item_id = ?",
					id, models.OrderStatusDelivered, menuItemID).
				Count(&delivered).Error; err != nil {
				return fmt.Errorf("check delivered drinks of %s: %w", id, err)
			}
			if delivered == 0 {
				return invalid("session %s has no delivered %s yet", id, item.Name)
			}
		}

		game = models.Game{
			SessionID:  sessionIDs[0],
			MenuItemID: menuItemID,
			GameType:   models.GameTypeDrinkRace,
			Status:     models.GameStatusActive,
		}
		for _, id := range sessionIDs {
			game.Players = append(game.Players, models.GamePlayer{SessionID: id, Finished: false})
		}
		if err := tx.Create(&game).Error; err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.GameResponse{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"game_id": game.ID,
		"players": len(sessionIDs),
		"drink":   item.Name,
	}).Info("game started")
	view := gameView(&game)
	view.Drink = item.Name
	return view, nil
}

func (s *GameService) Get(ctx context.Context, gameID string) (dto.GameResponse, error) {
	var game models.Game
	err := s.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&game, "id = ?", gameID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GameResponse{}, notFound("game %s not found", gameID)
		}
		return dto.GameResponse{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	return gameView(&game), nil
}

// Finish marks a player as done. When only one player is left, that player
// loses and the game is settled in the same transaction.
//
// Calls for the same game are serialized in process, and the game only moves
// to finished through a conditional update, so a game is settled at most once.
func (s *GameService) Finish(ctx context.Context, gameID, sessionID string) (dto.FinishResult, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	var result dto.FinishResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, "id = ?", gameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("game %s not found", gameID)
			}
			return fmt.Errorf("load game %s: %w", gameID, err)
		}
		if game.Status == models.GameStatusFinished {
			return conflict("game %s is already finished", gameID)
		}

		var player models.GamePlayer
		if err := tx.Where("game_id = ? AND session_id = ?", gameID, sessionID).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("session %s is not playing game %s", sessionID, gameID)
			}
			return fmt.Errorf("load player: %w", err)
		}
		if player.Finished {
			return conflict("session %s already finished game %s", sessionID, gameID)
		}

		now := time.Now().UTC()
		res := tx.Model(&models.GamePlayer{}).
			Where("id = ? AND finished = ?", player.ID, false).
			Updates(map[string]interface{}{"finished": true, "finished_at": now})
		if res.Error != nil {
			return fmt.Errorf("mark player finished: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return conflict("session %s already finished game %s", sessionID, gameID)
		}

		var unfinished []models.GamePlayer
		if err := tx.Where("game_id = ? AND finished = ?", gameID, false).
			Order("created_at, id").
			Find(&unfinished).Error; err != nil {
			return fmt.Errorf("list unfinished players: %w", err)
		}
		if len(unfinished) == 0 {
			return fmt.Errorf("game %s is active but has no unfinished player", gameID)
		}
		if len(unfinished) > 1 {
			result = dto.FinishResult{GameStatus: models.GameStatusActive, RemainingPlayers: len(unfinished)}
			return nil
		}

		loser := unfinished[0].SessionID
		res = tx.Model(&models.Game{}).
			Where("id = ? AND status = ?", gameID, models.GameStatusActive).
			Updates(map[string]interface{}{
				"status":           models.GameStatusFinished,
				"loser_session_id": loser,
				"finished_at":      now,
			})
		if res.Error != nil {
			return fmt.Errorf("finish game: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return conflict("game %s is already finished", gameID)
		}

		extra, err := settle(tx, gameID, loser)
		if err != nil {
			return err
		}
		result = dto.FinishResult{
			GameStatus:       models.GameStatusFinished,
			RemainingPlayers: 1,
			LoserSessionID:   loser,
			ExtraCost:        extra,
		}
		return nil
	})
	if err != nil {
		return dto.FinishResult{}, err
	}
	if result.GameStatus != models.GameStatusFinished {
		return result, nil
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"game_id":    gameID,
		"loser":      result.LoserSessionID,
		"extra_cost": utils.FormatCurrency(result.ExtraCost),
	}).Info("game finished")
	if loser, err := findSession(s.db.WithContext(ctx), result.LoserSessionID); err == nil {
		notify(ctx, s.notifier, events.GameFinished, loser.RestaurantID, struct {
			GameID string `json:"game_id"`
			dto.FinishResult
		}{gameID, result})
	}
	return result, nil
}

// settle rebooks one drink of every winner onto the loser. The drink is the
// first item of the winner's oldest delivered order, whatever was wagered.
// It is billed to the loser as a new delivered order and taken off the
// winner's order at its unit price.
func settle(tx *gorm.DB, gameID, loserSessionID string) (float64, error) {
	var winners []models.GamePlayer
	if err := tx.Where("game_id = ? AND finished = ?", gameID, true).
		Order("created_at, id").
		Find(&winners).Error; err != nil {
		return 0, fmt.Errorf("list winners: %w", err)
	}

	var (
		extra  float64
		drinks []models.OrderItem
	)
	for _, w := range winners {
		var drink models.OrderItem
		err := tx.Select("order_items.*").
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.session_id = ? AND orders.status = ?", w.SessionID, models.OrderStatusDelivered).
			Order("orders.created_at, orders.id, order_items.position, order_items.created_at, order_items.id").
			Take(&drink).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("find drink of %s: %w", w.SessionID, err)
		}
		drinks = append(drinks, drink)

		rebooked := models.Order{
			SessionID: loserSessionID,
			Status:    models.OrderStatusDelivered,
			Total:     drink.Price,
			Items: []models.OrderItem{{
				MenuItemID: drink.MenuItemID,
				Position:   0,
				Quantity:   1,
				Price:      drink.Price,
			}},
		}
		if err := tx.Create(&rebooked).Error; err != nil {
			return 0, fmt.Errorf("bill drink to loser: %w", err)
		}
		extra += drink.Price
	}

	for _, drink := range drinks {
		if err := tx.Delete(&models.OrderItem{}, "id = ?", drink.ID).Error; err != nil {
			return 0, fmt.Errorf("remove winner drink: %w", err)
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", drink.OrderID).
			Update("total", gorm.Expr("total - ?", drink.Price)).Error; err != nil {
			return 0, fmt.Errorf("reduce winner order total: %w", err)
		}
	}
	return utils.RoundMoney(extra), nil
}

func gameView(g *models.Game) dto.GameResponse {
	players := make([]dto.GamePlayerResponse, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, dto.GamePlayerResponse{
			SessionID:  p.SessionID,
			Finished:   p.Finished,
			FinishedAt: p.FinishedAt,
		})
	}
	return dto.GameResponse{
		GameID:         g.ID,
		GameType:       g.GameType,
		MenuItemID:     g.MenuItemID,
		Status:         g.Status,
		LoserSessionID: g.LoserSessionID,
		FinishedAt:     g.FinishedAt,
		Players:        players,
	}
}
