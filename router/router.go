package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/config"
	"github.com/bierdeckel/bierdeckel-api/controllers"
	"github.com/bierdeckel/bierdeckel-api/hub"
	"github.com/bierdeckel/bierdeckel-api/middlewares"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/services"
)

func SetupRouter(cfg *config.Config, db *gorm.DB, svc *services.Services, h *hub.Hub) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())

	authCtrl := controllers.NewAuthController(svc.Auth)
	restaurantCtrl := controllers.NewRestaurantController(svc.Restaurants)
	sessionCtrl := controllers.NewSessionController(svc.Sessions)
	orderCtrl := controllers.NewOrderController(svc.Orders)
	paymentCtrl := controllers.NewPaymentController(svc.Payments)
	groupCtrl := controllers.NewGroupController(svc.Groups)
	gameCtrl := controllers.NewGameController(svc.Games)
	coasterCtrl := controllers.NewCoasterController(svc.Coasters)
	serviceCallCtrl := controllers.NewServiceCallController(svc.ServiceCalls)
	socketCtrl := controllers.NewStaffSocketController(h, cfg.CORSOrigin)
	healthCtrl := controllers.NewHealthController(db)

	requireAuth := middlewares.AuthMiddleware(svc.Auth)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", controllers.Ping)
	r.GET("/health", healthCtrl.Health)

	limiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	authGroup := r.Group("/auth")
	authGroup.Use(limiter.RateLimit())
	{
		authGroup.POST("/register-owner", authCtrl.RegisterOwner)
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/register-staff/:restaurant_id",
			requireAuth,
			middlewares.RestaurantScope("restaurant_id"),
			middlewares.RoleCheck(models.RoleOwner, models.RoleAdmin),
			authCtrl.RegisterStaff,
		)
	}

	r.GET("/restaurant/:restaurant_id", restaurantCtrl.GetRestaurant)
	r.GET("/restaurant/:restaurant_id/tables", restaurantCtrl.ListTables)
	r.GET("/restaurant/:restaurant_id/menu", restaurantCtrl.GetMenu)
	r.GET("/restaurant/:restaurant_id/drink-ready", sessionCtrl.ListDrinkReady)

	// QR code entry point
	r.POST("/r/:restaurant_id/table/:table_number/scan", sessionCtrl.Scan)

	session := r.Group("/session/:session_id")
	{
		session.GET("", sessionCtrl.GetSession)
		session.PUT("/close", sessionCtrl.CloseSession)
		session.PUT("/drink-ready", sessionCtrl.ToggleDrinkReady)

		session.POST("/order", orderCtrl.PlaceOrder)
		session.GET("/orders", orderCtrl.ListSessionOrders)

		session.GET("/bill", paymentCtrl.GetBill)
		session.POST("/pay", paymentCtrl.PaySingle)
		session.POST("/payment-request", paymentCtrl.RequestPayment)

		session.POST("/create-group", groupCtrl.CreateGroup)
		session.POST("/join/:code", groupCtrl.JoinGroup)
		session.POST("/invite/:target_session_id", groupCtrl.Invite)
		session.GET("/invitations", groupCtrl.ListInvitations)
		session.PUT("/leave-group", groupCtrl.LeaveGroup)

		session.POST("/service-request", serviceCallCtrl.CreateServiceCall)
	}

	r.GET("/order/:order_id", orderCtrl.GetOrder)
	r.POST("/pay/group", paymentCtrl.PayGroup)

	r.PUT("/invitation/:invitation_id/accept", groupCtrl.AcceptInvitation)
	r.PUT("/invitation/:invitation_id/decline", groupCtrl.DeclineInvitation)
	r.GET("/group/:group_id", groupCtrl.GetGroup)

	r.POST("/game/create", gameCtrl.CreateGame)
	r.POST("/game/:game_id/finish", gameCtrl.FinishGame)
	r.GET("/game/:game_id", gameCtrl.GetGame)

	// Coaster devices post their readings without a token.
	r.POST("/bierdeckel/update", coasterCtrl.UpdateWeight)
	r.GET("/bierdeckel/:table_id", coasterCtrl.GetCoaster)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := r.Group("/restaurant/:restaurant_id")
	staff.Use(requireAuth, middlewares.RestaurantScope("restaurant_id"))
	{
		staff.POST("/table", restaurantCtrl.CreateTable)
		staff.POST("/menu", restaurantCtrl.CreateMenuItem)
		staff.GET("/orders", orderCtrl.ListOpenOrders)
		staff.GET("/payment-requests", paymentCtrl.ListPaymentRequests)
		staff.GET("/bierdeckel", coasterCtrl.ListCoasters)
		staff.GET("/service-requests", serviceCallCtrl.ListOpenServiceCalls)
		staff.GET("/dashboard", restaurantCtrl.Dashboard)
	}

	// The restaurant comes from the token on these.
	r.PUT("/order/:order_id/status/:status", requireAuth, orderCtrl.UpdateOrderStatus)
	r.PUT("/menu/:item_id", requireAuth, restaurantCtrl.UpdateMenuItem)
	r.PUT("/service-request/:call_id/status/:status", requireAuth, serviceCallCtrl.UpdateServiceCallStatus)

	r.GET("/ws/staff", middlewares.WebSocketAuthMiddleware(svc.Auth), socketCtrl.Connect)

	return r
}
