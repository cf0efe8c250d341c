package authz

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/gorm"
)

// ProjectAccess resolves the caller's role for the project in the :id
// route param and enforces the given allow-list. The resolved role and
// project are attached to the request context so handlers do not look
// the project up again.
func ProjectAccess(database *gorm.DB, allowed ...models.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, err := utils.GetCurrentUserID(ctx)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		projectID, err := utils.ParseID(ctx, "id")

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		role, project, err := ResolveRequired(database, userID, projectID, allowed...)

		if err != nil {
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, apperr.ErrForbidden):
				ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			default:
				log.Printf("Failed to resolve project access: %v", err)
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		ctx.Set(types.ContextProjectKey, project)
		ctx.Set(types.ContextRoleKey, role)
		ctx.Next()
	}
}
