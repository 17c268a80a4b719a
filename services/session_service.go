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

// SessionService handles the life of a guest session, from the QR scan to
// closing it.
type SessionService struct {
	db       *gorm.DB
	notifier events.Notifier
}

func NewSessionService(db *gorm.DB, notifier events.Notifier) *SessionService {
	return &SessionService{db: db, notifier: orNop(notifier)}
}

// Scan opens a new session on the table with the given number. Every scan
// creates its own session.
func (s *SessionService) Scan(ctx context.Context, restaurantID string, tableNumber int) (dto.SessionResponse, error) {
	var session models.TableSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRestaurant(tx, restaurantID); err != nil {
			return err
		}
		var table models.Table
		if err := tx.Where("restaurant_id = ? AND table_number = ?", restaurantID, tableNumber).First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("table %d not found in restaurant %s", tableNumber, restaurantID)
			}
			return fmt.Errorf("load table %d: %w", tableNumber, err)
		}

		session = models.TableSession{
			TableID:      table.ID,
			RestaurantID: restaurantID,
			IsActive:     true,
			DrinkReady:   false,
		}
		if err := tx.Omit("Table").Create(&session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		session.Table = table
		return nil
	})
	if err != nil {
		return dto.SessionResponse{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"session_id":   session.ID,
		"table_number": tableNumber,
	}).Info("session opened")
	view := sessionView(&session)
	notify(ctx, s.notifier, events.SessionOpened, restaurantID, view)
	return view, nil
}

func (s *SessionService) Get(ctx context.Context, sessionID string) (dto.SessionResponse, error) {
	session, err := findSession(s.db.WithContext(ctx), sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	return sessionView(session), nil
}

// Close ends a session for good. A session that still belongs to a drink
// group leaves it first.
func (s *SessionService) Close(ctx context.Context, sessionID string) (dto.SessionResponse, error) {
	var session *models.TableSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = findSession(tx, sessionID)
		if err != nil {
			return err
		}
		if !session.IsActive {
			return conflict("session %s is already closed", sessionID)
		}
		if session.GroupID != nil {
			if err := leaveGroup(tx, session); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND is_active = ?", sessionID, true).
			Updates(map[string]interface{}{"is_active": false, "closed_at": now})
		if res.Error != nil {
			return fmt.Errorf("close session %s: %w", sessionID, res.Error)
		}
		if res.RowsAffected != 1 {
			return conflict("session %s is already closed", sessionID)
		}
		session.IsActive = false
		session.ClosedAt = &now
		return nil
	})
	if err != nil {
		return dto.SessionResponse{}, err
	}

	utils.InfoLogger.WithField("session_id", sessionID).Info("session closed")
	view := sessionView(session)
	notify(ctx, s.notifier, events.SessionClosed, session.RestaurantID, view)
	return view, nil
}

func (s *SessionService) ToggleDrinkReady(ctx context.Context, sessionID string) (dto.DrinkReadyResponse, error) {
	var session *models.TableSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = findActiveSession(tx, sessionID); err != nil {
			return err
		}
		session.DrinkReady = !session.DrinkReady
		if err := tx.Model(&models.TableSession{}).Where("id = ?", sessionID).
			Update("drink_ready", session.DrinkReady).Error; err != nil {
			return fmt.Errorf("toggle drink ready: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.DrinkReadyResponse{}, err
	}
	return dto.DrinkReadyResponse{
		SessionID:   session.ID,
		TableNumber: session.Table.TableNumber,
		DrinkReady:  session.DrinkReady,
		CreatedAt:   session.CreatedAt,
	}, nil
}

// ListDrinkReady lists the active sessions of a restaurant that are open to
// drink invitations.
func (s *SessionService) ListDrinkReady(ctx context.Context, restaurantID string) ([]dto.DrinkReadyResponse, error) {
	var sessions []models.TableSession
	if err := s.db.WithContext(ctx).Preload("Table").
		Where("restaurant_id = ? AND is_active = ? AND drink_ready = ?", restaurantID, true, true).
		Order("created_at, id").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list drink-ready sessions: %w", err)
	}

	result := make([]dto.DrinkReadyResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, dto.DrinkReadyResponse{
			SessionID:   session.ID,
			TableNumber: session.Table.TableNumber,
			DrinkReady:  true,
			CreatedAt:   session.CreatedAt,
		})
	}
	return result, nil
}
