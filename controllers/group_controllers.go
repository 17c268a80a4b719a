package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type GroupController struct {
	svc *services.GroupService
}

func NewGroupController(svc *services.GroupService) *GroupController {
	return &GroupController{svc: svc}
}

func (gc *GroupController) CreateGroup(c *gin.Context) {
	resp, err := gc.svc.Create(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Group created", resp)
}

func (gc *GroupController) JoinGroup(c *gin.Context) {
	resp, err := gc.svc.Join(c.Request.Context(), c.Param("session_id"), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Joined group", resp)
}

func (gc *GroupController) Invite(c *gin.Context) {
	resp, err := gc.svc.Invite(c.Request.Context(), c.Param("session_id"), c.Param("target_session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Invitation sent", resp)
}

// ListInvitations returns the pending invitations addressed to the session.
func (gc *GroupController) ListInvitations(c *gin.Context) {
	resp, err := gc.svc.ListInvitations(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invitations", resp)
}

func (gc *GroupController) AcceptInvitation(c *gin.Context) {
	resp, err := gc.svc.Accept(c.Request.Context(), c.Param("invitation_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invitation accepted", resp)
}

func (gc *GroupController) DeclineInvitation(c *gin.Context) {
	resp, err := gc.svc.Decline(c.Request.Context(), c.Param("invitation_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invitation declined", resp)
}

func (gc *GroupController) LeaveGroup(c *gin.Context) {
	if err := gc.svc.Leave(c.Request.Context(), c.Param("session_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Left group", nil)
}

func (gc *GroupController) GetGroup(c *gin.Context) {
	resp, err := gc.svc.Get(c.Request.Context(), c.Param("group_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Group", resp)
}
