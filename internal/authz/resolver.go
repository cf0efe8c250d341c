// Package authz resolves a user's effective role in a project and
// enforces per-operation role allow-lists.
//
// Ownership is derived from Project.OwnerID and is never represented as
// a Membership row; an explicit OWNER membership in legacy data is
// ignored for owner checks because the owner comparison runs first.
package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// Resolve computes the caller's effective role in a project.
//
// It loads the project and, when the caller is not the owner, the
// caller's single membership row. A missing project yields NotFound; a
// caller with neither ownership nor a membership yields Forbidden.
func Resolve(database *gorm.DB, userID, projectID uint) (models.Role, *models.Project, error) {
	var project models.Project

	if err := database.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.NotFound("Project not found")
		}
		return "", nil, fmt.Errorf("loading project %d: %w", projectID, err)
	}

	if project.OwnerID == userID {
		return models.RoleOwner, &project, nil
	}

	var membership models.Membership

	err := database.Where("user_id = ? AND project_id = ?", userID, projectID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.Forbidden("You are not a member of this project")
		}
		return "", nil, fmt.Errorf("loading membership: %w", err)
	}

	return membership.Role, &project, nil
}

// RequireRole checks an effective role against an allow-list. An empty
// allow-list admits any member (read access).
func RequireRole(role models.Role, allowed ...models.Role) error {
	if len(allowed) == 0 {
		return nil
	}

	for _, candidate := range allowed {
		if role == candidate {
			return nil
		}
	}

	names := make([]string, len(allowed))
	for i, candidate := range allowed {
		names[i] = string(candidate)
	}

	return apperr.Forbidden("Insufficient permissions. Required roles: " + strings.Join(names, ", "))
}

// ResolveRequired combines Resolve and RequireRole.
func ResolveRequired(database *gorm.DB, userID, projectID uint, allowed ...models.Role) (models.Role, *models.Project, error) {
	role, project, err := Resolve(database, userID, projectID)

	if err != nil {
		return "", nil, err
	}

	if err := RequireRole(role, allowed...); err != nil {
		return "", nil, err
	}

	return role, project, nil
}
