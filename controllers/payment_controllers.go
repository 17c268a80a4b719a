package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type PaymentController struct {
	svc *services.PaymentService
}

func NewPaymentController(svc *services.PaymentService) *PaymentController {
	return &PaymentController{svc: svc}
}

func (pc *PaymentController) GetBill(c *gin.Context) {
	resp, err := pc.svc.Bill(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill", resp)
}

// PaySingle settles the remaining amount of one session.
func (pc *PaymentController) PaySingle(c *gin.Context) {
	resp, err := pc.svc.PaySingle(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	msg := "Payment completed"
	if resp.AlreadyPaid {
		msg = "Session already paid"
	}
	utils.RespondJSON(c, http.StatusOK, msg, resp)
}

func (pc *PaymentController) PayGroup(c *gin.Context) {
	var req dto.GroupPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := pc.svc.PayGroup(c.Request.Context(), req.SessionIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	msg := "Group payment completed"
	if resp.AlreadyPaid {
		msg = "Sessions already paid"
	}
	utils.RespondJSON(c, http.StatusOK, msg, resp)
}

func (pc *PaymentController) RequestPayment(c *gin.Context) {
	resp, err := pc.svc.RequestPayment(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment requested", resp)
}

func (pc *PaymentController) ListPaymentRequests(c *gin.Context) {
	resp, err := pc.svc.ListPaymentRequests(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment requests", resp)
}
