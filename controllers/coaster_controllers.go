package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type CoasterController struct {
	svc *services.CoasterService
}

func NewCoasterController(svc *services.CoasterService) *CoasterController {
	return &CoasterController{svc: svc}
}

// UpdateWeight receives a reading from a table's smart coaster.
func (cc *CoasterController) UpdateWeight(c *gin.Context) {
	var req dto.CoasterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := cc.svc.UpdateWeight(c.Request.Context(), req.TableID, *req.Weight)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Coaster updated", resp)
}

func (cc *CoasterController) GetCoaster(c *gin.Context) {
	resp, err := cc.svc.Get(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Coaster", resp)
}

func (cc *CoasterController) ListCoasters(c *gin.Context) {
	resp, err := cc.svc.ListForRestaurant(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Coasters", resp)
}
