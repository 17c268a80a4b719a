package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// ServiceCallService handles guests calling for a waiter.
type ServiceCallService struct {
	db       *gorm.DB
	notifier events.Notifier
}

func NewServiceCallService(db *gorm.DB, notifier events.Notifier) *ServiceCallService {
	return &ServiceCallService{db: db, notifier: orNop(notifier)}
}

func (s *ServiceCallService) Create(ctx context.Context, sessionID, requestType, message string) (dto.ServiceCallResponse, error) {
	requestType = strings.TrimSpace(requestType)
	if requestType == "" {
		return dto.ServiceCallResponse{}, invalid("request type is required")
	}

	var (
		session *models.TableSession
		call    models.ServiceCall
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = findActiveSession(tx, sessionID); err != nil {
			return err
		}
		call = models.ServiceCall{
			SessionID:    sessionID,
			RestaurantID: session.RestaurantID,
			RequestType:  requestType,
			Message:      message,
			Status:       models.ServiceCallOpen,
		}
		if err := tx.Create(&call).Error; err != nil {
			return fmt.Errorf("create service call: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.ServiceCallResponse{}, err
	}

	view := serviceCallView(&call, session.Table.TableNumber)
	utils.InfoLogger.WithFields(logrus.Fields{
		"table_number": view.TableNumber,
		"request_type": requestType,
	}).Info("service requested")
	notify(ctx, s.notifier, events.ServiceRequested, session.RestaurantID, view)
	return view, nil
}

// ListOpen returns the calls of a restaurant that are not done yet.
func (s *ServiceCallService) ListOpen(ctx context.Context, restaurantID string) ([]dto.ServiceCallResponse, error) {
	db := s.db.WithContext(ctx)
	var calls []models.ServiceCall
	if err := db.Where("restaurant_id = ? AND status <> ?", restaurantID, models.ServiceCallDone).
		Order("created_at, id").
		Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("list service calls: %w", err)
	}

	result := make([]dto.ServiceCallResponse, 0, len(calls))
	for i := range calls {
		tableNumber := 0
		if session, err := findSession(db, calls[i].SessionID); err == nil {
			tableNumber = session.Table.TableNumber
		}
		result = append(result, serviceCallView(&calls[i], tableNumber))
	}
	return result, nil
}

// UpdateStatus sets the status of a call of the staff member's restaurant.
// The last write wins.
func (s *ServiceCallService) UpdateStatus(ctx context.Context, restaurantID, callID, status string) (dto.ServiceCallResponse, error) {
	if !models.ValidServiceCallStatus(status) {
		return dto.ServiceCallResponse{}, invalid("unknown service call status %q", status)
	}

	db := s.db.WithContext(ctx)
	var call models.ServiceCall
	if err := db.First(&call, "id = ?", callID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ServiceCallResponse{}, notFound("service call %s not found", callID)
		}
		return dto.ServiceCallResponse{}, fmt.Errorf("load service call %s: %w", callID, err)
	}
	if call.RestaurantID != restaurantID {
		return dto.ServiceCallResponse{}, forbidden("service call %s belongs to another restaurant", callID)
	}
	if err := db.Model(&models.ServiceCall{}).Where("id = ?", callID).Update("status", status).Error; err != nil {
		return dto.ServiceCallResponse{}, fmt.Errorf("update service call: %w", err)
	}
	call.Status = status

	view := serviceCallView(&call, 0)
	notify(ctx, s.notifier, events.ServiceStatusChanged, call.RestaurantID, view)
	return view, nil
}

func serviceCallView(c *models.ServiceCall, tableNumber int) dto.ServiceCallResponse {
	return dto.ServiceCallResponse{
		ID:          c.ID,
		SessionID:   c.SessionID,
		TableNumber: tableNumber,
		RequestType: c.RequestType,
		Message:     c.Message,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
}
