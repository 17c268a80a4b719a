package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type SessionController struct {
	svc *services.SessionService
}

func NewSessionController(svc *services.SessionService) *SessionController {
	return &SessionController{svc: svc}
}

// Scan opens a new guest session at the scanned table.
func (sc *SessionController) Scan(c *gin.Context) {
	tableNumber, ok := intParam(c, "table_number")
	if !ok {
		return
	}

	resp, err := sc.svc.Scan(c.Request.Context(), c.Param("restaurant_id"), tableNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Session started", resp)
}

func (sc *SessionController) GetSession(c *gin.Context) {
	resp, err := sc.svc.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session", resp)
}

func (sc *SessionController) CloseSession(c *gin.Context) {
	resp, err := sc.svc.Close(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session closed", resp)
}

func (sc *SessionController) ToggleDrinkReady(c *gin.Context) {
	resp, err := sc.svc.ToggleDrinkReady(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Drink readiness updated", resp)
}

func (sc *SessionController) ListDrinkReady(c *gin.Context) {
	resp, err := sc.svc.ListDrinkReady(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Drink-ready sessions", resp)
}
