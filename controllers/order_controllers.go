package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/middlewares"
	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type OrderController struct {
	svc *services.OrderService
}

func NewOrderController(svc *services.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		qty := 1
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		lines = append(lines, services.OrderLine{MenuItemID: item.MenuItemID, Quantity: qty})
	}

	resp, err := oc.svc.Place(c.Request.Context(), c.Param("session_id"), lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", resp)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	resp, err := oc.svc.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order", resp)
}

func (oc *OrderController) ListSessionOrders(c *gin.Context) {
	resp, err := oc.svc.ListForSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders of session", resp)
}

// ListOpenOrders is the kitchen view: everything not yet delivered.
func (oc *OrderController) ListOpenOrders(c *gin.Context) {
	resp, err := oc.svc.ListOpen(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Open orders", resp)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, utils.ErrTokenMissing)
		return
	}

	resp, err := oc.svc.UpdateStatus(c.Request.Context(), claims.RestaurantID, c.Param("order_id"), c.Param("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", resp)
}
