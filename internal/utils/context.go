package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("user not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// GetResolvedProject returns the project and role attached by the
// project-access middleware, avoiding a second lookup in handlers.
func GetResolvedProject(ctx *gin.Context) (*models.Project, models.Role, error) {
	value, exists := ctx.Get(types.ContextProjectKey)

	if !exists {
		return nil, "", fmt.Errorf("project not resolved")
	}

	project, ok := value.(*models.Project)

	if !ok {
		return nil, "", fmt.Errorf("invalid project type in context")
	}

	roleValue, exists := ctx.Get(types.ContextRoleKey)

	if !exists {
		return nil, "", fmt.Errorf("project role not resolved")
	}

	role, ok := roleValue.(models.Role)

	if !ok {
		return nil, "", fmt.Errorf("invalid role type in context")
	}

	return project, role, nil
}

func ParseID(ctx *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 32)

	if err != nil {
		return 0, fmt.Errorf("invalid %s", param)
	}

	return uint(id), nil
}
