package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// PaymentService settles session bills and records payment requests.
type PaymentService struct {
	db       *gorm.DB
	notifier events.Notifier
}

func NewPaymentService(db *gorm.DB, notifier events.Notifier) *PaymentService {
	return &PaymentService{db: db, notifier: orNop(notifier)}
}

// Bill returns total, already paid and remaining for a session.
func (s *PaymentService) Bill(ctx context.Context, sessionID string) (dto.Bill, error) {
	db := s.db.WithContext(ctx)
	if _, err := findSession(db, sessionID); err != nil {
		return dto.Bill{}, err
	}
	return sessionBalance(db, sessionID)
}

// PaySingle settles everything a session still owes in one payment. Nothing
// is recorded when the bill is already settled.
func (s *PaymentService) PaySingle(ctx context.Context, sessionID string) (dto.PaymentResponse, error) {
	var (
		session *models.TableSession
		resp    dto.PaymentResponse
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = findActiveSession(tx, sessionID); err != nil {
			return err
		}
		bill, err := sessionBalance(tx, sessionID)
		if err != nil {
			return err
		}
		if bill.Remaining <= 0 {
			resp = dto.PaymentResponse{
				SessionID:   sessionID,
				PaymentType: models.PaymentTypeSingle,
				AlreadyPaid: true,
			}
			return nil
		}

		payment := models.Payment{
			SessionID:   sessionID,
			Amount:      bill.Remaining,
			PaymentType: models.PaymentTypeSingle,
			Status:      models.PaymentStatusCompleted,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		resp = paymentView(&payment)
		return nil
	})
	if err != nil {
		return dto.PaymentResponse{}, err
	}
	if resp.AlreadyPaid {
		return resp, nil
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"payment_id": resp.PaymentID,
		"session_id": sessionID,
		"amount":     utils.FormatCurrency(resp.Amount),
	}).Info("session paid")
	notify(ctx, s.notifier, events.PaymentCompleted, session.RestaurantID, resp)
	return resp, nil
}

// PayGroup pays the remaining bill of every listed session, each with its
// own completed payment. Settled sessions are skipped; an unknown session
// aborts the whole call.
func (s *PaymentService) PayGroup(ctx context.Context, sessionIDs []string) (dto.GroupPaymentResponse, error) {
	if len(sessionIDs) == 0 {
		return dto.GroupPaymentResponse{}, invalid("no sessions to pay for")
	}

	resp := dto.GroupPaymentResponse{
		PaymentType: models.PaymentTypeGroup,
		Status:      models.PaymentStatusCompleted,
		Sessions:    []dto.PaymentResponse{},
	}
	restaurants := make(map[string]string)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range sessionIDs {
			session, err := findSession(tx, id)
			if err != nil {
				return err
			}
			bill, err := sessionBalance(tx, id)
			if err != nil {
				return err
			}
			if bill.Remaining <= 0 {
				continue
			}

			payment := models.Payment{
				SessionID:   id,
				Amount:      bill.Remaining,
				PaymentType: models.PaymentTypeGroup,
				Status:      models.PaymentStatusCompleted,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return fmt.Errorf("create group payment for %s: %w", id, err)
			}
			resp.Total += payment.Amount
			resp.Sessions = append(resp.Sessions, paymentView(&payment))
			restaurants[payment.ID] = session.RestaurantID
		}
		return nil
	})
	if err != nil {
		return dto.GroupPaymentResponse{}, err
	}

	resp.Total = utils.RoundMoney(resp.Total)
	if resp.Total <= 0 {
		resp.AlreadyPaid = true
		return resp, nil
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"sessions": len(resp.Sessions),
		"total":    utils.FormatCurrency(resp.Total),
	}).Info("group paid")
	for _, p := range resp.Sessions {
		notify(ctx, s.notifier, events.PaymentCompleted, restaurants[p.PaymentID], p)
	}
	return resp, nil
}

// RequestPayment records that the guests want to pay and tells the staff.
func (s *PaymentService) RequestPayment(ctx context.Context, sessionID string) (dto.PaymentResponse, error) {
	var (
		session *models.TableSession
		payment models.Payment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = findActiveSession(tx, sessionID); err != nil {
			return err
		}
		payment = models.Payment{
			SessionID:   sessionID,
			Amount:      0,
			PaymentType: models.PaymentTypeSingle,
			Status:      models.PaymentStatusRequested,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment request: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	resp := paymentView(&payment)
	notify(ctx, s.notifier, events.PaymentRequested, session.RestaurantID, dto.PaymentRequestResponse{
		PaymentID:   payment.ID,
		SessionID:   sessionID,
		TableNumber: session.Table.TableNumber,
		CreatedAt:   payment.CreatedAt,
	})
	return resp, nil
}

// ListPaymentRequests returns the open payment requests of a restaurant's
// active sessions together with what each session currently owes.
func (s *PaymentService) ListPaymentRequests(ctx context.Context, restaurantID string) ([]dto.PaymentRequestResponse, error) {
	db := s.db.WithContext(ctx)
	var requests []models.Payment
	if err := db.Select("payments.*").
		Joins("JOIN table_sessions ON table_sessions.id = payments.session_id").
		Where("table_sessions.restaurant_id = ? AND table_sessions.is_active = ? AND payments.status = ?",
			restaurantID, true, models.PaymentStatusRequested).
		Order("payments.created_at, payments.id").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list payment requests: %w", err)
	}

	result := make([]dto.PaymentRequestResponse, 0, len(requests))
	for _, r := range requests {
		session, err := findSession(db, r.SessionID)
		if err != nil {
			return nil, err
		}
		bill, err := sessionBalance(db, r.SessionID)
		if err != nil {
			return nil, err
		}
		result = append(result, dto.PaymentRequestResponse{
			PaymentID:   r.ID,
			SessionID:   r.SessionID,
			TableNumber: session.Table.TableNumber,
			OpenAmount:  bill.Remaining,
			CreatedAt:   r.CreatedAt,
		})
	}
	return result, nil
}

func paymentView(p *models.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		PaymentID:   p.ID,
		SessionID:   p.SessionID,
		Amount:      p.Amount,
		PaymentType: p.PaymentType,
		Status:      p.Status,
	}
}
