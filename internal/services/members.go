package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// MemberService handles invitation semantics and member listing. The
// route layer has already resolved the caller's role: inviting requires
// OWNER or CONTRIBUTOR, listing any member.
type MemberService struct {
	db *gorm.DB
}

func NewMemberService(database *gorm.DB) *MemberService {
	return &MemberService{db: database}
}

type InviteInput struct {
	Email string      `json:"email" binding:"required,email"`
	Role  models.Role `json:"role" binding:"required,oneof=OWNER CONTRIBUTOR VIEWER"`
}

type InviteResponse struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// Invite creates a membership for the user with the given email.
// Inviting the owner or an existing member is a conflict; the composite
// unique index turns a lost race into the same conflict.
func (s *MemberService) Invite(project *models.Project, input InviteInput) (*InviteResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var target models.User

	if err := s.db.Where("email = ?", email).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User with this email not found")
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	if project.OwnerID == target.ID {
		return nil, apperr.Conflict("User is already the project owner")
	}

	var existing models.Membership

	err := s.db.Where("user_id = ? AND project_id = ?", target.ID, project.ID).First(&existing).Error

	if err == nil {
		return nil, apperr.Conflict("User is already a member of this project")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking membership: %w", err)
	}

	membership := models.Membership{
		UserID:    target.ID,
		ProjectID: project.ID,
		Role:      input.Role,
	}

	if err := s.db.Create(&membership).Error; err != nil {
		if errIsDuplicate(err) {
			return nil, apperr.Conflict("User is already a member of this project")
		}
		return nil, fmt.Errorf("creating membership: %w", err)
	}

	return &InviteResponse{Email: target.Email, Role: input.Role}, nil
}

// Members returns the owner first (role forced to OWNER, joinedAt the
// project's creation time) followed by all membership rows.
func (s *MemberService) Members(project *models.Project) ([]MemberResponse, error) {
	var owner models.User

	if err := s.db.First(&owner, project.OwnerID).Error; err != nil {
		return nil, fmt.Errorf("loading owner: %w", err)
	}

	var memberships []models.Membership

	err := s.db.Preload("User").
		Where("project_id = ?", project.ID).
		Order("created_at ASC").
		Find(&memberships).Error

	if err != nil {
		return nil, fmt.Errorf("loading memberships: %w", err)
	}

	members := make([]MemberResponse, 0, len(memberships)+1)

	members = append(members, MemberResponse{
		ID:       owner.ID,
		Name:     owner.Name,
		Email:    owner.Email,
		Role:     models.RoleOwner,
		JoinedAt: project.CreatedAt,
	})

	for _, membership := range memberships {
		members = append(members, MemberResponse{
			ID:       membership.User.ID,
			Name:     membership.User.Name,
			Email:    membership.User.Email,
			Role:     membership.Role,
			JoinedAt: membership.CreatedAt,
		})
	}

	return members, nil
}
