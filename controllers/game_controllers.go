package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type GameController struct {
	svc *services.GameService
}

func NewGameController(svc *services.GameService) *GameController {
	return &GameController{svc: svc}
}

func (gc *GameController) CreateGame(c *gin.Context) {
	var req dto.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := gc.svc.Create(c.Request.Context(), req.SessionIDs, req.MenuItemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Game started", resp)
}

// FinishGame marks one player as done. The last player left loses.
func (gc *GameController) FinishGame(c *gin.Context) {
	var req dto.FinishGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := gc.svc.Finish(c.Request.Context(), c.Param("game_id"), req.SessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Player finished", resp)
}

func (gc *GameController) GetGame(c *gin.Context) {
	resp, err := gc.svc.Get(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Game", resp)
}
