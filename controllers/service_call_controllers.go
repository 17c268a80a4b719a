package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/middlewares"
	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type ServiceCallController struct {
	svc *services.ServiceCallService
}

func NewServiceCallController(svc *services.ServiceCallService) *ServiceCallController {
	return &ServiceCallController{svc: svc}
}

func (sc *ServiceCallController) CreateServiceCall(c *gin.Context) {
	var req dto.ServiceCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := sc.svc.Create(c.Request.Context(), c.Param("session_id"), req.RequestType, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Service requested", resp)
}

func (sc *ServiceCallController) ListOpenServiceCalls(c *gin.Context) {
	resp, err := sc.svc.ListOpen(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Open service requests", resp)
}

func (sc *ServiceCallController) UpdateServiceCallStatus(c *gin.Context) {
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, utils.ErrTokenMissing)
		return
	}

	resp, err := sc.svc.UpdateStatus(c.Request.Context(), claims.RestaurantID, c.Param("call_id"), c.Param("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service request updated", resp)
}
