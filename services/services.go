package services

import (
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// Services bundles every service the HTTP layer needs.
type Services struct {
	Auth         *AuthService
	Restaurants  *RestaurantService
	Sessions     *SessionService
	Orders       *OrderService
	Payments     *PaymentService
	Groups       *GroupService
	Games        *GameService
	Coasters     *CoasterService
	ServiceCalls *ServiceCallService
}

func New(db *gorm.DB, notifier events.Notifier, tokens *utils.TokenManager, publicBaseURL string) *Services {
	return &Services{
		Auth:         NewAuthService(db, tokens),
		Restaurants:  NewRestaurantService(db, publicBaseURL),
		Sessions:     NewSessionService(db, notifier),
		Orders:       NewOrderService(db, notifier),
		Payments:     NewPaymentService(db, notifier),
		Groups:       NewGroupService(db),
		Games:        NewGameService(db, notifier),
		Coasters:     NewCoasterService(db, notifier),
		ServiceCalls: NewServiceCallService(db, notifier),
	}
}
