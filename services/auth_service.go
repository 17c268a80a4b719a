package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// AuthService registers staff accounts and issues their bearer tokens.
type AuthService struct {
	db     *gorm.DB
	tokens *utils.TokenManager
	cost   int
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager) *AuthService {
	return &AuthService{db: db, tokens: tokens, cost: bcrypt.DefaultCost}
}

// RegisterOwner creates a restaurant and its owner account together.
func (s *AuthService) RegisterOwner(ctx context.Context, req dto.RegisterOwnerRequest) (dto.RegisterOwnerResponse, error) {
	hash, err := s.hash(req.Password)
	if err != nil {
		return dto.RegisterOwnerResponse{}, err
	}

	var (
		restaurant models.Restaurant
		user       models.User
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUsernameFree(tx, req.Username); err != nil {
			return err
		}
		restaurant = models.Restaurant{Name: req.RestaurantName, Address: req.Address, LogoURL: req.LogoURL}
		if err := tx.Create(&restaurant).Error; err != nil {
			return fmt.Errorf("create restaurant: %w", err)
		}
		user = models.User{
			Username:     req.Username,
			PasswordHash: hash,
			Role:         models.RoleOwner,
			RestaurantID: restaurant.ID,
		}
		if err := tx.Omit("Restaurant").Create(&user).Error; err != nil {
			return fmt.Errorf("create owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.RegisterOwnerResponse{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurant.ID,
		"username":      user.Username,
	}).Info("restaurant registered")
	return dto.RegisterOwnerResponse{Restaurant: restaurantView(&restaurant), User: userView(&user)}, nil
}

// RegisterStaff adds a staff or admin account to an existing restaurant.
func (s *AuthService) RegisterStaff(ctx context.Context, restaurantID string, req dto.RegisterStaffRequest) (dto.UserResponse, error) {
	if req.Role != models.RoleStaff && req.Role != models.RoleAdmin {
		return dto.UserResponse{}, invalid("role must be staff or admin")
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRestaurant(tx, restaurantID); err != nil {
			return err
		}
		if err := ensureUsernameFree(tx, req.Username); err != nil {
			return err
		}
		user = models.User{
			Username:     req.Username,
			PasswordHash: hash,
			Role:         req.Role,
			RestaurantID: restaurantID,
		}
		if err := tx.Omit("Restaurant").Create(&user).Error; err != nil {
			return fmt.Errorf("create staff: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.UserResponse{}, err
	}
	return userView(&user), nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.LoginResponse{}, unauthorized("invalid username or password")
	}
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.InfoLogger.WithField("username", user.Username).Warn("failed login")
		return dto.LoginResponse{}, unauthorized("invalid username or password")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role, user.RestaurantID)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	return dto.LoginResponse{
		Token:        token,
		ExpiresAt:    expiresAt,
		UserID:       user.ID,
		Role:         user.Role,
		RestaurantID: user.RestaurantID,
	}, nil
}

// Authenticate verifies a bearer token and that its user still exists. The
// returned error is one of the utils.ErrToken* values.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.CustomClaims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND restaurant_id = ?", claims.UserID, claims.RestaurantID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("look up token user: %w", err)
	}
	if count == 0 {
		return nil, utils.ErrTokenUserMissing
	}
	return claims, nil
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", invalid("password cannot be used: %v", err)
	}
	return string(hash), nil
}

func ensureUsernameFree(tx *gorm.DB, username string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return conflict("username %s is already taken", username)
	}
	return nil
}

func userView(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Role:         u.Role,
		RestaurantID: u.RestaurantID,
	}
}
