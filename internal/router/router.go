package router

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

// New wires the HTTP surface. Role allow-lists for project-scoped
// routes are declared here, next to the routes they guard.
func New(database *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(database)
	projectHandler := handlers.NewProjectHandler(services.NewProjectService(database), services.NewMemberService(database))
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(database))
	tagHandler := handlers.NewTagHandler(services.NewTagService(database))
	aiHandler := handlers.NewAIHandler(services.NewAIService(database, os.Getenv("OPENAI_API_KEY")))

	requireAuth := middleware.Auth(database)
	anyMember := authz.ProjectAccess(database)
	ownerOnly := authz.ProjectAccess(database, models.RoleOwner)
	writers := authz.ProjectAccess(database, models.RoleOwner, models.RoleContributor)

	r.GET("/health", handlers.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	projects := r.Group("/projects", requireAuth)
	{
		projects.POST("", projectHandler.Create)
		projects.GET("", projectHandler.List)
		projects.GET("/paginated", projectHandler.ListPaginated)
		projects.GET("/:id", anyMember, projectHandler.Get)
		projects.PATCH("/:id", ownerOnly, projectHandler.Update)
		projects.DELETE("/:id", ownerOnly, projectHandler.Delete)

		projects.POST("/:id/invite", writers, projectHandler.Invite)
		projects.GET("/:id/members", anyMember, projectHandler.Members)

		projects.POST("/:id/tags", writers, tagHandler.AddToProject)
		projects.DELETE("/:id/tags/:tagId", writers, tagHandler.RemoveFromProject)
		projects.GET("/:id/tags", anyMember, tagHandler.ListForProject)

		projects.POST("/:id/tasks", writers, taskHandler.Create)
		projects.GET("/:id/tasks", anyMember, taskHandler.List)
	}

	tasks := r.Group("/tasks", requireAuth)
	{
		tasks.PATCH("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	tags := r.Group("/tags", requireAuth)
	{
		tags.POST("", tagHandler.Create)
		tags.GET("", tagHandler.List)
		tags.GET("/:id", tagHandler.Get)
		tags.PATCH("/:id", tagHandler.Update)
		tags.DELETE("/:id", tagHandler.Delete)
	}

	ai := r.Group("/ai", requireAuth)
	{
		ai.POST("/suggest-tags", aiHandler.SuggestTags)
		ai.GET("/analyze-project/:id", aiHandler.AnalyzeProject)
		ai.GET("/project-summary/:id", aiHandler.ProjectSummary)
	}

	return r
}
