package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type AuthController struct {
	svc *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{svc: svc}
}

// RegisterOwner creates a restaurant together with its owner account.
func (ac *AuthController) RegisterOwner(c *gin.Context) {
	var req dto.RegisterOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := ac.svc.RegisterOwner(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Restaurant registered", resp)
}

func (ac *AuthController) RegisterStaff(c *gin.Context) {
	var req dto.RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := ac.svc.RegisterStaff(c.Request.Context(), c.Param("restaurant_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Staff account created", resp)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := ac.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", resp)
}
