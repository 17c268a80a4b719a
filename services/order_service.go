package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// OrderLine is one requested menu item and how many of it.
type OrderLine struct {
	MenuItemID string
	Quantity   int
}

type OrderService struct {
	db       *gorm.DB
	notifier events.Notifier
}

func NewOrderService(db *gorm.DB, notifier events.Notifier) *OrderService {
	return &OrderService{db: db, notifier: orNop(notifier)}
}

// Place creates an order for an active session. Prices are copied from the
// menu at this moment; a failing line leaves nothing behind.
func (s *OrderService) Place(ctx context.Context, sessionID string, lines []OrderLine) (dto.OrderResponse, error) {
	if len(lines) == 0 {
		return dto.OrderResponse{}, invalid("an order needs at least one item")
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return dto.OrderResponse{}, invalid("quantity of %s must be at least 1", line.MenuItemID)
		}
	}

	var (
		session *models.TableSession
		view    dto.OrderResponse
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = findActiveSession(tx, sessionID); err != nil {
			return err
		}

		order := models.Order{SessionID: sessionID, Status: models.OrderStatusPending}
		names := make(map[string]string, len(lines))
		var total float64
		for i, line := range lines {
			var item models.MenuItem
			if err := tx.First(&item, "id = ?", line.MenuItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("menu item %s not found", line.MenuItemID)
				}
				return fmt.Errorf("load menu item %s: %w", line.MenuItemID, err)
			}
			if item.RestaurantID != session.RestaurantID {
				return notFound("menu item %s not found", line.MenuItemID)
			}
			if !item.IsAvailable {
				return unavailable("%s is not available", item.Name)
			}
			total += item.Price * float64(line.Quantity)
			names[item.ID] = item.Name
			order.Items = append(order.Items, models.OrderItem{
				MenuItemID: item.ID,
				Position:   i,
				Quantity:   line.Quantity,
				Price:      item.Price,
			})
		}
		order.Total = utils.RoundMoney(total)

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		view = orderView(&order, names, session.Table.TableNumber)
		return nil
	})
	if err != nil {
		return dto.OrderResponse{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":   view.ID,
		"session_id": sessionID,
		"total":      view.Total,
	}).Info("order placed")
	notify(ctx, s.notifier, events.OrderPlaced, session.RestaurantID, view)
	return view, nil
}

func (s *OrderService) Get(ctx context.Context, orderID string) (dto.OrderResponse, error) {
	db := s.db.WithContext(ctx)
	var order models.Order
	if err := db.Preload("Items", orderItemsInPlaceOrder).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OrderResponse{}, notFound("order %s not found", orderID)
		}
		return dto.OrderResponse{}, fmt.Errorf("load order %s: %w", orderID, err)
	}
	names, err := menuNames(db, []models.Order{order})
	if err != nil {
		return dto.OrderResponse{}, err
	}
	return orderView(&order, names, 0), nil
}

func (s *OrderService) ListForSession(ctx context.Context, sessionID string) ([]dto.OrderResponse, error) {
	db := s.db.WithContext(ctx)
	session, err := findSession(db, sessionID)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := db.Preload("Items", orderItemsInPlaceOrder).
		Where("session_id = ?", sessionID).
		Order("created_at, id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders of %s: %w", sessionID, err)
	}
	names, err := menuNames(db, orders)
	if err != nil {
		return nil, err
	}

	result := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, orderView(&orders[i], names, session.Table.TableNumber))
	}
	return result, nil
}

// ListOpen returns the undelivered orders of a restaurant's active sessions,
// oldest first, for the kitchen.
func (s *OrderService) ListOpen(ctx context.Context, restaurantID string) ([]dto.OrderResponse, error) {
	db := s.db.WithContext(ctx)
	var orders []models.Order
	if err := db.Preload("Items", orderItemsInPlaceOrder).
		Select("orders.*").
		Joins("JOIN table_sessions ON table_sessions.id = orders.session_id").
		Where("table_sessions.restaurant_id = ? AND table_sessions.is_active = ? AND orders.status <> ?",
			restaurantID, true, models.OrderStatusDelivered).
		Order("orders.created_at, orders.id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	names, err := menuNames(db, orders)
	if err != nil {
		return nil, err
	}
	tableNumbers, err := tableNumbersBySession(db, orders)
	if err != nil {
		return nil, err
	}

	result := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, orderView(&orders[i], names, tableNumbers[orders[i].SessionID]))
	}
	return result, nil
}

// UpdateStatus moves an order of the staff member's restaurant forward
// through pending, preparing and delivered. Setting the current status again
// is accepted.
func (s *OrderService) UpdateStatus(ctx context.Context, restaurantID, orderID, status string) (dto.OrderResponse, error) {
	if !models.ValidOrderStatus(status) {
		return dto.OrderResponse{}, invalid("unknown order status %q", status)
	}

	var (
		order   models.Order
		session *models.TableSession
		from    string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items", orderItemsInPlaceOrder).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("order %s not found", orderID)
			}
			return fmt.Errorf("load order %s: %w", orderID, err)
		}
		var err error
		if session, err = findSession(tx, order.SessionID); err != nil {
			return err
		}
		if session.RestaurantID != restaurantID {
			return forbidden("order %s belongs to another restaurant", orderID)
		}
		if models.OrderStatusRegresses(order.Status, status) {
			return conflict("order %s cannot go back from %s to %s", orderID, order.Status, status)
		}
		from = order.Status
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error; err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return dto.OrderResponse{}, err
	}

	names, err := menuNames(s.db.WithContext(ctx), []models.Order{order})
	if err != nil {
		return dto.OrderResponse{}, err
	}
	view := orderView(&order, names, session.Table.TableNumber)

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     from,
		"to":       status,
	}).Info("order status changed")
	notify(ctx, s.notifier, events.OrderStatusChanged, session.RestaurantID, view)
	return view, nil
}

func orderItemsInPlaceOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position, created_at, id")
}

// menuNames resolves the menu item names of all items in the given orders.
func menuNames(db *gorm.DB, orders []models.Order) (map[string]string, error) {
	var ids []string
	for _, o := range orders {
		for _, it := range o.Items {
			ids = append(ids, it.MenuItemID)
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var items []models.MenuItem
	if err := db.Select("id", "name").Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load menu names: %w", err)
	}
	for _, it := range items {
		names[it.ID] = it.Name
	}
	return names, nil
}

func tableNumbersBySession(db *gorm.DB, orders []models.Order) (map[string]int, error) {
	var ids []string
	for _, o := range orders {
		ids = append(ids, o.SessionID)
	}
	numbers := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return numbers, nil
	}

	var sessions []models.TableSession
	if err := db.Preload("Table").Where("id IN ?", ids).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	for _, session := range sessions {
		numbers[session.ID] = session.Table.TableNumber
	}
	return numbers, nil
}

func orderView(o *models.Order, names map[string]string, tableNumber int) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		name, ok := names[it.MenuItemID]
		if !ok {
			name = "unknown"
		}
		items = append(items, dto.OrderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       name,
			Quantity:   it.Quantity,
			Price:      it.Price,
			Subtotal:   utils.RoundMoney(it.Price * float64(it.Quantity)),
		})
	}
	return dto.OrderResponse{
		ID:          o.ID,
		SessionID:   o.SessionID,
		TableNumber: tableNumber,
		Status:      o.Status,
		Total:       o.Total,
		Items:       items,
		CreatedAt:   o.CreatedAt,
	}
}
