package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/models"
)

const coasterNoData = "no_data"

// CoasterService stores the readings of the weight-sensing coasters.
type CoasterService struct {
	db       *gorm.DB
	notifier events.Notifier
}

func NewCoasterService(db *gorm.DB, notifier events.Notifier) *CoasterService {
	return &CoasterService{db: db, notifier: orNop(notifier)}
}

// UpdateWeight records the latest weight of a table's coaster, creating the
// coaster on its first reading.
func (s *CoasterService) UpdateWeight(ctx context.Context, tableID string, weight float64) (dto.CoasterResponse, error) {
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return dto.CoasterResponse{}, invalid("weight must be a non-negative number")
	}

	var (
		table   models.Table
		coaster models.Coaster
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&table, "id = ?", tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("table %s not found", tableID)
			}
			return fmt.Errorf("load table %s: %w", tableID, err)
		}

		reading := models.Coaster{
			TableID:      tableID,
			RestaurantID: table.RestaurantID,
			Weight:       weight,
			Status:       models.CoasterStatus(weight),
			LastUpdated:  time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "table_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"weight", "status", "last_updated"}),
		}).Create(&reading).Error; err != nil {
			return fmt.Errorf("store coaster reading: %w", err)
		}
		if err := tx.First(&coaster, "table_id = ?", tableID).Error; err != nil {
			return fmt.Errorf("reload coaster: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.CoasterResponse{}, err
	}

	view := coasterView(&coaster, table.TableNumber)
	notify(ctx, s.notifier, events.CoasterUpdated, table.RestaurantID, view)
	return view, nil
}

// Get returns the last reading of a table's coaster, or status no_data when
// it never reported.
func (s *CoasterService) Get(ctx context.Context, tableID string) (dto.CoasterResponse, error) {
	var coaster models.Coaster
	err := s.db.WithContext(ctx).First(&coaster, "table_id = ?", tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CoasterResponse{TableID: tableID, Status: coasterNoData}, nil
	}
	if err != nil {
		return dto.CoasterResponse{}, fmt.Errorf("load coaster of %s: %w", tableID, err)
	}
	return coasterView(&coaster, 0), nil
}

func (s *CoasterService) ListForRestaurant(ctx context.Context, restaurantID string) ([]dto.CoasterResponse, error) {
	db := s.db.WithContext(ctx)
	var coasters []models.Coaster
	if err := db.Where("restaurant_id = ?", restaurantID).Order("table_id").Find(&coasters).Error; err != nil {
		return nil, fmt.Errorf("list coasters: %w", err)
	}

	var tables []models.Table
	if err := db.Where("restaurant_id = ?", restaurantID).Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	numbers := make(map[string]int, len(tables))
	for _, t := range tables {
		numbers[t.ID] = t.TableNumber
	}

	result := make([]dto.CoasterResponse, 0, len(coasters))
	for i := range coasters {
		result = append(result, coasterView(&coasters[i], numbers[coasters[i].TableID]))
	}
	return result, nil
}

func coasterView(c *models.Coaster, tableNumber int) dto.CoasterResponse {
	weight := c.Weight
	updated := c.LastUpdated
	return dto.CoasterResponse{
		TableID:     c.TableID,
		TableNumber: tableNumber,
		Weight:      &weight,
		Status:      c.Status,
		LastUpdated: &updated,
	}
}
