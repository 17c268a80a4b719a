package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GroupService runs drink groups: creating and joining them, invitations,
// and leaving.
type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

// InviteCode builds a code of the form T<table number>-XXXX.
func InviteCode(tableNumber int) (string, error) {
	suffix := make([]byte, 4)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		suffix[i] = inviteAlphabet[n.Int64()]
	}
	return fmt.Sprintf("T%d-%s", tableNumber, suffix), nil
}

func (s *GroupService) Create(ctx context.Context, sessionID string) (dto.GroupResponse, error) {
	var group *models.DrinkGroup
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := findActiveSession(tx, sessionID)
		if err != nil {
			return err
		}
		if session.GroupID != nil {
			return conflict("session %s is already in a group", sessionID)
		}
		group, err = createGroup(tx, session)
		return err
	})
	if err != nil {
		return dto.GroupResponse{}, err
	}
	return dto.GroupResponse{GroupID: group.ID, InviteCode: group.InviteCode, Status: group.Status}, nil
}

// Join puts a session into the active group behind an invite code.
func (s *GroupService) Join(ctx context.Context, sessionID, code string) (dto.GroupResponse, error) {
	var group models.DrinkGroup
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := findActiveSession(tx, sessionID)
		if err != nil {
			return err
		}
		if session.GroupID != nil {
			return conflict("session %s is already in a group", sessionID)
		}
		if err := tx.Where("invite_code = ? AND status = ?", code, models.GroupStatusActive).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("no active group with code %s", code)
			}
			return fmt.Errorf("load group %s: %w", code, err)
		}
		return setGroup(tx, sessionID, &group.ID)
	})
	if err != nil {
		return dto.GroupResponse{}, err
	}
	return dto.GroupResponse{GroupID: group.ID, InviteCode: group.InviteCode, Status: group.Status}, nil
}

// Invite asks a drink-ready session to join the inviter's group. An inviter
// without a group gets a new one.
func (s *GroupService) Invite(ctx context.Context, fromSessionID, toSessionID string) (dto.InvitationResponse, error) {
	if fromSessionID == toSessionID {
		return dto.InvitationResponse{}, invalid("a session cannot invite itself")
	}

	var (
		from       *models.TableSession
		invitation models.Invitation
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if from, err = findActiveSession(tx, fromSessionID); err != nil {
			return err
		}
		to, err := findSession(tx, toSessionID)
		if err != nil && KindOf(err) != KindNotFound {
			return err
		}
		if err != nil || !to.IsActive || !to.DrinkReady {
			return notFound("session %s not found or not ready to drink", toSessionID)
		}

		if from.GroupID == nil {
			group, err := createGroup(tx, from)
			if err != nil {
				return err
			}
			from.GroupID = &group.ID
		}

		invitation = models.Invitation{
			FromSessionID: fromSessionID,
			ToSessionID:   toSessionID,
			GroupID:       *from.GroupID,
			Status:        models.InvitationPending,
		}
		if err := tx.Create(&invitation).Error; err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.InvitationResponse{}, err
	}
	return invitationView(&invitation, from.Table.TableNumber), nil
}

// ListInvitations returns the pending invitations addressed to a session.
func (s *GroupService) ListInvitations(ctx context.Context, sessionID string) ([]dto.InvitationResponse, error) {
	db := s.db.WithContext(ctx)
	if _, err := findSession(db, sessionID); err != nil {
		return nil, err
	}

	var invitations []models.Invitation
	if err := db.Where("to_session_id = ? AND status = ?", sessionID, models.InvitationPending).
		Order("created_at, id").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	result := make([]dto.InvitationResponse, 0, len(invitations))
	for i := range invitations {
		from, err := findSession(db, invitations[i].FromSessionID)
		if err != nil {
			return nil, err
		}
		result = append(result, invitationView(&invitations[i], from.Table.TableNumber))
	}
	return result, nil
}

// Accept moves the invited session into the invitation's group. A membership
// the session still had is replaced.
func (s *GroupService) Accept(ctx context.Context, invitationID string) (dto.InvitationResponse, error) {
	var invitation models.Invitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findPendingInvitation(tx, invitationID, &invitation); err != nil {
			return err
		}

		var group models.DrinkGroup
		if err := tx.First(&group, "id = ?", invitation.GroupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("group %s not found", invitation.GroupID)
			}
			return fmt.Errorf("load group: %w", err)
		}
		if group.Status != models.GroupStatusActive {
			return conflict("group %s is closed", group.ID)
		}

		invitee, err := findActiveSession(tx, invitation.ToSessionID)
		if err != nil {
			return err
		}
		previous := invitee.GroupID
		if err := setGroup(tx, invitee.ID, &group.ID); err != nil {
			return err
		}
		if previous != nil && *previous != group.ID {
			utils.InfoLogger.WithFields(logrus.Fields{
				"session_id":     invitee.ID,
				"previous_group": *previous,
				"group_id":       group.ID,
			}).Warn("session switched drink group")
			if err := closeGroupIfEmpty(tx, *previous); err != nil {
				return err
			}
		}

		return answerInvitation(tx, &invitation, models.InvitationAccepted)
	})
	if err != nil {
		return dto.InvitationResponse{}, err
	}
	return invitationView(&invitation, 0), nil
}

func (s *GroupService) Decline(ctx context.Context, invitationID string) (dto.InvitationResponse, error) {
	var invitation models.Invitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findPendingInvitation(tx, invitationID, &invitation); err != nil {
			return err
		}
		return answerInvitation(tx, &invitation, models.InvitationDeclined)
	})
	if err != nil {
		return dto.InvitationResponse{}, err
	}
	return invitationView(&invitation, 0), nil
}

func (s *GroupService) Leave(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := findSession(tx, sessionID)
		if err != nil {
			return err
		}
		if session.GroupID == nil {
			return conflict("session %s is not in a group", sessionID)
		}
		return leaveGroup(tx, session)
	})
}

// Get returns a group with its active members.
func (s *GroupService) Get(ctx context.Context, groupID string) (dto.GroupResponse, error) {
	db := s.db.WithContext(ctx)
	var group models.DrinkGroup
	if err := db.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, notFound("group %s not found", groupID)
		}
		return dto.GroupResponse{}, fmt.Errorf("load group %s: %w", groupID, err)
	}

	var members []models.TableSession
	if err := db.Preload("Table").
		Where("group_id = ? AND is_active = ?", groupID, true).
		Order("created_at, id").
		Find(&members).Error; err != nil {
		return dto.GroupResponse{}, fmt.Errorf("list group members: %w", err)
	}

	resp := dto.GroupResponse{
		GroupID:    group.ID,
		InviteCode: group.InviteCode,
		Status:     group.Status,
		Members:    make([]dto.GroupMember, 0, len(members)),
	}
	for _, m := range members {
		resp.Members = append(resp.Members, dto.GroupMember{SessionID: m.ID, TableNumber: m.Table.TableNumber})
	}
	return resp, nil
}

func createGroup(tx *gorm.DB, owner *models.TableSession) (*models.DrinkGroup, error) {
	code, err := InviteCode(owner.Table.TableNumber)
	if err != nil {
		return nil, err
	}
	group := &models.DrinkGroup{
		InviteCode:   code,
		RestaurantID: owner.RestaurantID,
		Status:       models.GroupStatusActive,
	}
	if err := tx.Create(group).Error; err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	if err := setGroup(tx, owner.ID, &group.ID); err != nil {
		return nil, err
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"group_id":    group.ID,
		"invite_code": code,
		"session_id":  owner.ID,
	}).Info("drink group created")
	return group, nil
}

func setGroup(tx *gorm.DB, sessionID string, groupID *string) error {
	if err := tx.Model(&models.TableSession{}).Where("id = ?", sessionID).Update("group_id", groupID).Error; err != nil {
		return fmt.Errorf("set group of %s: %w", sessionID, err)
	}
	return nil
}

// leaveGroup clears the session's membership and closes the group once no
// active member is left.
func leaveGroup(tx *gorm.DB, session *models.TableSession) error {
	groupID := *session.GroupID
	if err := setGroup(tx, session.ID, nil); err != nil {
		return err
	}
	session.GroupID = nil
	return closeGroupIfEmpty(tx, groupID)
}

func closeGroupIfEmpty(tx *gorm.DB, groupID string) error {
	var members int64
	if err := tx.Model(&models.TableSession{}).
		Where("group_id = ? AND is_active = ?", groupID, true).
		Count(&members).Error; err != nil {
		return fmt.Errorf("count group members: %w", err)
	}
	if members > 0 {
		return nil
	}
	if err := tx.Model(&models.DrinkGroup{}).
		Where("id = ? AND status = ?", groupID, models.GroupStatusActive).
		Update("status", models.GroupStatusClosed).Error; err != nil {
		return fmt.Errorf("close group %s: %w", groupID, err)
	}
	utils.InfoLogger.WithField("group_id", groupID).Info("drink group closed")
	return nil
}

func findPendingInvitation(tx *gorm.DB, id string, invitation *models.Invitation) error {
	if err := tx.First(invitation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("invitation %s not found", id)
		}
		return fmt.Errorf("load invitation %s: %w", id, err)
	}
	if invitation.Status != models.InvitationPending {
		return conflict("invitation %s was already %s", id, invitation.Status)
	}
	return nil
}

func answerInvitation(tx *gorm.DB, invitation *models.Invitation, status string) error {
	res := tx.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("answer invitation: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return conflict("invitation %s was already answered", invitation.ID)
	}
	invitation.Status = status
	return nil
}

func invitationView(inv *models.Invitation, fromTable int) dto.InvitationResponse {
	return dto.InvitationResponse{
		InvitationID: inv.ID,
		FromSession:  inv.FromSessionID,
		FromTable:    fromTable,
		ToSession:    inv.ToSessionID,
		GroupID:      inv.GroupID,
		Status:       inv.Status,
		CreatedAt:    inv.CreatedAt,
	}
}
