package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// notify publishes an event after the surrounding transaction committed.
// Delivery problems are logged and never reach the caller.
func notify(ctx context.Context, n events.Notifier, t events.Type, restaurantID string, data interface{}) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, events.New(t, restaurantID, data)); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"event":         t,
			"restaurant_id": restaurantID,
		}).Errorf("notify: %v", err)
	}
}

func orNop(n events.Notifier) events.Notifier {
	if n == nil {
		return events.Nop{}
	}
	return n
}

func findSession(tx *gorm.DB, id string) (*models.TableSession, error) {
	var session models.TableSession
	if err := tx.Preload("Table").First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("session %s not found", id)
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return &session, nil
}

func findActiveSession(tx *gorm.DB, id string) (*models.TableSession, error) {
	session, err := findSession(tx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, notFound("session %s not found or closed", id)
	}
	return session, nil
}

func findRestaurant(tx *gorm.DB, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := tx.First(&restaurant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("restaurant %s not found", id)
		}
		return nil, fmt.Errorf("load restaurant %s: %w", id, err)
	}
	return &restaurant, nil
}

// sessionBalance is the only place the outstanding amount of a session is
// computed: remaining = sum of order totals - sum of completed payments.
func sessionBalance(tx *gorm.DB, sessionID string) (dto.Bill, error) {
	var total, paid float64
	if err := tx.Model(&models.Order{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error; err != nil {
		return dto.Bill{}, fmt.Errorf("sum orders of %s: %w", sessionID, err)
	}
	if err := tx.Model(&models.Payment{}).
		Where("session_id = ? AND status = ?", sessionID, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error; err != nil {
		return dto.Bill{}, fmt.Errorf("sum payments of %s: %w", sessionID, err)
	}
	total = utils.RoundMoney(total)
	paid = utils.RoundMoney(paid)
	return dto.Bill{
		SessionID:   sessionID,
		Total:       total,
		AlreadyPaid: paid,
		Remaining:   utils.RoundMoney(total - paid),
	}, nil
}

func sessionView(s *models.TableSession) dto.SessionResponse {
	return dto.SessionResponse{
		ID:           s.ID,
		TableID:      s.TableID,
		TableNumber:  s.Table.TableNumber,
		RestaurantID: s.RestaurantID,
		IsActive:     s.IsActive,
		GroupID:      s.GroupID,
		DrinkReady:   s.DrinkReady,
		CreatedAt:    s.CreatedAt,
		ClosedAt:     s.ClosedAt,
	}
}

// keyedMutex hands out one mutex per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
