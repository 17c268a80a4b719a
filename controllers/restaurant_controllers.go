package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/middlewares"
	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type RestaurantController struct {
	svc *services.RestaurantService
}

func NewRestaurantController(svc *services.RestaurantService) *RestaurantController {
	return &RestaurantController{svc: svc}
}

func (rc *RestaurantController) GetRestaurant(c *gin.Context) {
	resp, err := rc.svc.Get(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant", resp)
}

// CreateTable adds a table and returns the URL its QR code should encode.
func (rc *RestaurantController) CreateTable(c *gin.Context) {
	var req dto.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := rc.svc.CreateTable(c.Request.Context(), c.Param("restaurant_id"), req.TableNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", resp)
}

func (rc *RestaurantController) ListTables(c *gin.Context) {
	resp, err := rc.svc.ListTables(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", resp)
}

func (rc *RestaurantController) CreateMenuItem(c *gin.Context) {
	var req dto.CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := rc.svc.CreateMenuItem(c.Request.Context(), c.Param("restaurant_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", resp)
}

// UpdateMenuItem edits an item of the caller's own restaurant.
func (rc *RestaurantController) UpdateMenuItem(c *gin.Context) {
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, utils.ErrTokenMissing)
		return
	}

	var req dto.UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := rc.svc.UpdateMenuItem(c.Request.Context(), claims.RestaurantID, c.Param("item_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", resp)
}

// GetMenu lists available items grouped by category.
func (rc *RestaurantController) GetMenu(c *gin.Context) {
	resp, err := rc.svc.Menu(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", resp)
}

func (rc *RestaurantController) Dashboard(c *gin.Context) {
	resp, err := rc.svc.Dashboard(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard", resp)
}
