package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/bierdeckel/bierdeckel-api/hub"
	"github.com/bierdeckel/bierdeckel-api/middlewares"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

// StaffSocketController streams restaurant events to logged-in staff.
type StaffSocketController struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewStaffSocketController(h *hub.Hub, allowedOrigin string) *StaffSocketController {
	return &StaffSocketController{
		hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

func (sc *StaffSocketController) Connect(c *gin.Context) {
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := sc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.InfoLogger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	sc.hub.Register(ws, claims.RestaurantID, claims.Role)
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": claims.RestaurantID,
		"role":          claims.Role,
	}).Info("staff socket connected")

	// Clients only listen; reads keep the connection alive until it drops.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	sc.hub.Unregister(ws)
}
