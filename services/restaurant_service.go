package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// RestaurantService covers what staff set up for a restaurant: tables, the
// menu and the live dashboard.
type RestaurantService struct {
	db            *gorm.DB
	publicBaseURL string
}

func NewRestaurantService(db *gorm.DB, publicBaseURL string) *RestaurantService {
	return &RestaurantService{db: db, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *RestaurantService) Get(ctx context.Context, restaurantID string) (dto.RestaurantResponse, error) {
	restaurant, err := findRestaurant(s.db.WithContext(ctx), restaurantID)
	if err != nil {
		return dto.RestaurantResponse{}, err
	}
	return restaurantView(restaurant), nil
}

// TableURL is the address encoded in a table's QR code.
func (s *RestaurantService) TableURL(restaurantID string, tableNumber int) string {
	return fmt.Sprintf("%s/r/%s/table/%d", s.publicBaseURL, restaurantID, tableNumber)
}

func (s *RestaurantService) CreateTable(ctx context.Context, restaurantID string, tableNumber int) (dto.TableResponse, error) {
	if tableNumber < 1 {
		return dto.TableResponse{}, invalid("table number must be positive")
	}

	var table models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRestaurant(tx, restaurantID); err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&models.Table{}).
			Where("restaurant_id = ? AND table_number = ?", restaurantID, tableNumber).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check table number: %w", err)
		}
		if existing > 0 {
			return conflict("table %d already exists", tableNumber)
		}

		table = models.Table{
			TableNumber:  tableNumber,
			RestaurantID: restaurantID,
			QRCode:       s.TableURL(restaurantID, tableNumber),
		}
		if err := tx.Omit("Restaurant").Create(&table).Error; err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.TableResponse{}, err
	}
	return tableView(&table), nil
}

func (s *RestaurantService) ListTables(ctx context.Context, restaurantID string) ([]dto.TableResponse, error) {
	db := s.db.WithContext(ctx)
	if _, err := findRestaurant(db, restaurantID); err != nil {
		return nil, err
	}
	var tables []models.Table
	if err := db.Where("restaurant_id = ?", restaurantID).Order("table_number").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	result := make([]dto.TableResponse, 0, len(tables))
	for i := range tables {
		result = append(result, tableView(&tables[i]))
	}
	return result, nil
}

func (s *RestaurantService) CreateMenuItem(ctx context.Context, restaurantID string, req dto.CreateMenuItemRequest) (dto.MenuItemResponse, error) {
	if req.Price == nil || *req.Price < 0 {
		return dto.MenuItemResponse{}, invalid("price must be zero or more")
	}

	item := models.MenuItem{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        utils.RoundMoney(*req.Price),
		Category:     req.Category,
		ImageURL:     req.ImageURL,
		IsAvailable:  req.IsAvailable == nil || *req.IsAvailable,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRestaurant(tx, restaurantID); err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("create menu item: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.MenuItemResponse{}, err
	}
	return menuItemView(&item), nil
}

// UpdateMenuItem changes the given fields of a menu item. Orders already
// placed keep the price they were placed at.
func (s *RestaurantService) UpdateMenuItem(ctx context.Context, restaurantID, itemID string, req dto.UpdateMenuItemRequest) (dto.MenuItemResponse, error) {
	var item models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("menu item %s not found", itemID)
			}
			return fmt.Errorf("load menu item %s: %w", itemID, err)
		}
		if item.RestaurantID != restaurantID {
			return forbidden("menu item %s belongs to another restaurant", itemID)
		}

		changes := map[string]interface{}{}
		if req.Name != nil {
			changes["name"] = *req.Name
			item.Name = *req.Name
		}
		if req.Description != nil {
			changes["description"] = *req.Description
			item.Description = *req.Description
		}
		if req.Price != nil {
			if *req.Price < 0 {
				return invalid("price must be zero or more")
			}
			item.Price = utils.RoundMoney(*req.Price)
			changes["price"] = item.Price
		}
		if req.Category != nil {
			changes["category"] = *req.Category
			item.Category = *req.Category
		}
		if req.ImageURL != nil {
			changes["image_url"] = *req.ImageURL
			item.ImageURL = *req.ImageURL
		}
		if req.IsAvailable != nil {
			changes["is_available"] = *req.IsAvailable
			item.IsAvailable = *req.IsAvailable
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&models.MenuItem{}).Where("id = ?", itemID).Updates(changes).Error; err != nil {
			return fmt.Errorf("update menu item: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.MenuItemResponse{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"menu_item_id": itemID, "price": item.Price}).Info("menu item updated")
	return menuItemView(&item), nil
}

// Menu returns the available items of a restaurant grouped by category.
func (s *RestaurantService) Menu(ctx context.Context, restaurantID string) ([]dto.MenuCategory, error) {
	db := s.db.WithContext(ctx)
	if _, err := findRestaurant(db, restaurantID); err != nil {
		return nil, err
	}

	var items []models.MenuItem
	if err := db.Where("restaurant_id = ? AND is_available = ?", restaurantID, true).
		Order("category, name, id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}

	menu := []dto.MenuCategory{}
	index := map[string]int{}
	for i := range items {
		pos, ok := index[items[i].Category]
		if !ok {
			pos = len(menu)
			index[items[i].Category] = pos
			menu = append(menu, dto.MenuCategory{Category: items[i].Category})
		}
		menu[pos].Items = append(menu[pos].Items, menuItemView(&items[i]))
	}
	return menu, nil
}

// Dashboard summarizes every table of a restaurant for the staff.
func (s *RestaurantService) Dashboard(ctx context.Context, restaurantID string) ([]dto.DashboardTable, error) {
	db := s.db.WithContext(ctx)
	if _, err := findRestaurant(db, restaurantID); err != nil {
		return nil, err
	}

	var tables []models.Table
	if err := db.Where("restaurant_id = ?", restaurantID).Order("table_number").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	result := make([]dto.DashboardTable, 0, len(tables))
	for _, table := range tables {
		var sessions []models.TableSession
		if err := db.Where("table_id = ? AND is_active = ?", table.ID, true).
			Order("created_at, id").
			Find(&sessions).Error; err != nil {
			return nil, fmt.Errorf("list sessions of table %d: %w", table.TableNumber, err)
		}

		entry := dto.DashboardTable{
			TableID:        table.ID,
			TableNumber:    table.TableNumber,
			ActiveSessions: make([]dto.DashboardSession, 0, len(sessions)),
		}
		for _, session := range sessions {
			bill, err := sessionBalance(db, session.ID)
			if err != nil {
				return nil, err
			}
			var openOrders int64
			if err := db.Model(&models.Order{}).
				Where("session_id = ? AND status <> ?", session.ID, models.OrderStatusDelivered).
				Count(&openOrders).Error; err != nil {
				return nil, fmt.Errorf("count open orders: %w", err)
			}
			var openCalls int64
			if err := db.Model(&models.ServiceCall{}).
				Where("session_id = ? AND status <> ?", session.ID, models.ServiceCallDone).
				Count(&openCalls).Error; err != nil {
				return nil, fmt.Errorf("count service calls: %w", err)
			}

			entry.OpenServiceRequests += int(openCalls)
			entry.ActiveSessions = append(entry.ActiveSessions, dto.DashboardSession{
				SessionID:  session.ID,
				OpenOrders: int(openOrders),
				Total:      bill.Total,
				Paid:       bill.AlreadyPaid,
				Remaining:  bill.Remaining,
				DrinkReady: session.DrinkReady,
				InGroup:    session.GroupID != nil,
			})
		}
		result = append(result, entry)
	}
	return result, nil
}

func restaurantView(r *models.Restaurant) dto.RestaurantResponse {
	return dto.RestaurantResponse{
		ID:        r.ID,
		Name:      r.Name,
		Address:   r.Address,
		LogoURL:   r.LogoURL,
		CreatedAt: r.CreatedAt,
	}
}

func tableView(t *models.Table) dto.TableResponse {
	return dto.TableResponse{
		ID:           t.ID,
		TableNumber:  t.TableNumber,
		RestaurantID: t.RestaurantID,
		QRCode:       t.QRCode,
	}
}

func menuItemView(m *models.MenuItem) dto.MenuItemResponse {
	return dto.MenuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		ImageURL:    m.ImageURL,
		IsAvailable: m.IsAvailable,
	}
}
