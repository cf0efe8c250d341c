package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type AIHandler struct {
	ai *services.AIService
}

func NewAIHandler(ai *services.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

type SuggestTagsRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *AIHandler) SuggestTags(ctx *gin.Context) {
	var req SuggestTagsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestions, err := h.ai.SuggestTags(req.Content)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *AIHandler) AnalyzeProject(ctx *gin.Context) {
	projectID, err := utils.ParseID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	analysis, err := h.ai.AnalyzeProject(projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, analysis)
}

func (h *AIHandler) ProjectSummary(ctx *gin.Context) {
	projectID, err := utils.ParseID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	summary, err := h.ai.ProjectSummary(projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"summary": summary})
}
