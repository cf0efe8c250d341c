package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// AIService is a thin pass-through to the OpenAI chat-completions API.
// A missing API key degrades every operation to an Unavailable error;
// upstream failures never crash the caller.
type AIService struct {
	db      *gorm.DB
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewAIService(database *gorm.DB, apiKey string) *AIService {
	return &AIService{
		db:      database,
		apiKey:  apiKey,
		baseURL: defaultOpenAIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (s *AIService) SetBaseURL(url string) { s.baseURL = strings.TrimRight(url, "/") }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type ProjectAnalysis struct {
	HealthScore             int      `json:"healthScore"`
	RiskFactors             []string `json:"riskFactors"`
	Recommendations         []string `json:"recommendations"`
	PredictedCompletionDate string   `json:"predictedCompletionDate"`
	Bottlenecks             []string `json:"bottlenecks"`
}

// SuggestTags asks the model for 3-5 tags for the given content, seeded
// with existing tag names for context. Upstream or parse failures
// degrade to an empty suggestion list.
func (s *AIService) SuggestTags(content string) ([]string, error) {
	if s.apiKey == "" {
		return nil, apperr.Unavailable("AI features are not available. OpenAI API key not configured.")
	}

	var existing []models.Tag

	if err := s.db.Select("name").Limit(50).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}

	names := make([]string, len(existing))
	for i, tag := range existing {
		names[i] = tag.Name
	}

	prompt := fmt.Sprintf(`Analyze this content and suggest 3-5 relevant tags:

Content: %q

Existing tags in system: %s

Rules:
1. Prefer existing tags when relevant
2. Suggest new tags only if they add significant value
3. Keep tags lowercase and concise
4. Focus on technology, domain, and priority tags

Return only a JSON object with a tags array: {"tags": ["tag1", "tag2", "tag3"]}`,
		content, strings.Join(names, ", "))

	raw, err := s.complete(chatCompletionRequest{
		Model: "gpt-3.5-turbo",
		Messages: []chatMessage{
			{Role: "system", Content: "You are a tagging expert. Return only a JSON object with a tags array."},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.3,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	})

	if err != nil {
		log.Printf("Tag suggestion failed: %v", err)
		return []string{}, nil
	}

	var parsed struct {
		Tags []string `json:"tags"`
	}

	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("Failed to parse tag suggestions: %v", err)
		return []string{}, nil
	}

	if parsed.Tags == nil {
		return []string{}, nil
	}

	return parsed.Tags, nil
}

// AnalyzeProject returns model-generated health insights for a project.
func (s *AIService) AnalyzeProject(projectID uint) (*ProjectAnalysis, error) {
	if s.apiKey == "" {
		return nil, apperr.Unavailable("AI features are not available. OpenAI API key not configured.")
	}

	project, tasks, err := s.loadProject(projectID)

	if err != nil {
		return nil, err
	}

	var memberCount int64

	if err := s.db.Model(&models.Membership{}).Where("project_id = ?", projectID).Count(&memberCount).Error; err != nil {
		return nil, fmt.Errorf("counting members: %w", err)
	}

	summary := map[string]interface{}{
		"name":         project.Name,
		"description":  project.Description,
		"createdAt":    project.CreatedAt,
		"tasksCount":   len(tasks),
		"membersCount": memberCount,
		"tasks":        tasks,
	}

	payload, _ := json.MarshalIndent(summary, "", "  ")

	prompt := fmt.Sprintf(`Analyze this project data and provide insights:

%s

Provide analysis in JSON format:
{
  "healthScore": number (0-100),
  "riskFactors": ["risk 1", "risk 2"],
  "recommendations": ["recommendation 1", "recommendation 2"],
  "predictedCompletionDate": "YYYY-MM-DD",
  "bottlenecks": ["bottleneck 1", "bottleneck 2"]
}

Base your analysis on task distribution, timeline, and project scope.`, payload)

	raw, err := s.complete(chatCompletionRequest{
		Model: "gpt-3.5-turbo",
		Messages: []chatMessage{
			{Role: "system", Content: "You are a project management expert. Analyze project data and provide insights in JSON format."},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.5,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	})

	if err != nil {
		log.Printf("Project analysis failed: %v", err)
		return nil, apperr.Invalid("Failed to analyze project. Please try again later.")
	}

	var analysis ProjectAnalysis

	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		log.Printf("Failed to parse project analysis: %v", err)
		return nil, apperr.Invalid("Failed to analyze project. Please try again later.")
	}

	return sanitizeAnalysis(analysis), nil
}

// ProjectSummary returns a short model-generated executive summary.
func (s *AIService) ProjectSummary(projectID uint) (string, error) {
	if s.apiKey == "" {
		return "", apperr.Unavailable("AI features are not available. OpenAI API key not configured.")
	}

	project, tasks, err := s.loadProject(projectID)

	if err != nil {
		return "", err
	}

	tagNames, err := s.projectTagNames(projectID)

	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Generate a concise project summary for:

Project: %s
Description: %s
Tasks: %d
Tags: %s

Provide a 2-3 sentence executive summary focusing on goals, progress, and key technologies.`,
		project.Name, project.Description, len(tasks), strings.Join(tagNames, ", "))

	raw, err := s.complete(chatCompletionRequest{
		Model: "gpt-3.5-turbo",
		Messages: []chatMessage{
			{Role: "system", Content: "You are a technical writer. Create concise, professional project summaries."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})

	if err != nil {
		log.Printf("Project summary failed: %v", err)
		return "", apperr.Invalid("Failed to generate project summary. Please try again later.")
	}

	summary := strings.TrimSpace(raw)

	if summary == "" {
		summary = "Unable to generate summary"
	}

	return summary, nil
}

func (s *AIService) loadProject(projectID uint) (*models.Project, []TaskResponse, error) {
	var project models.Project

	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound(fmt.Sprintf("Project with ID %d not found", projectID))
		}
		return nil, nil, fmt.Errorf("loading project: %w", err)
	}

	var tasks []models.Task

	if err := s.db.Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return nil, nil, fmt.Errorf("loading tasks: %w", err)
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskResponse(task))
	}

	return &project, responses, nil
}

func (s *AIService) projectTagNames(projectID uint) ([]string, error) {
	var projectTags []models.ProjectTag

	err := s.db.Preload("Tag").Where("project_id = ?", projectID).Find(&projectTags).Error

	if err != nil {
		return nil, fmt.Errorf("loading project tags: %w", err)
	}

	names := make([]string, 0, len(projectTags))
	for _, pt := range projectTags {
		names = append(names, pt.Tag.Name)
	}

	return names, nil
}

// complete issues one chat-completion call and returns the first
// choice's content. Single attempt, no retries.
func (s *AIService) complete(request chatCompletionRequest) (string, error) {
	body, err := json.Marshal(request)

	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))

	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)

	if err != nil {
		return "", fmt.Errorf("calling OpenAI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse

	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

func sanitizeAnalysis(analysis ProjectAnalysis) *ProjectAnalysis {
	if analysis.HealthScore < 0 {
		analysis.HealthScore = 0
	}

	if analysis.HealthScore > 100 {
		analysis.HealthScore = 100
	}

	if analysis.HealthScore == 0 {
		analysis.HealthScore = 75
	}

	if analysis.RiskFactors == nil {
		analysis.RiskFactors = []string{}
	}

	if analysis.Recommendations == nil {
		analysis.Recommendations = []string{}
	}

	if analysis.Bottlenecks == nil {
		analysis.Bottlenecks = []string{}
	}

	if analysis.PredictedCompletionDate == "" {
		analysis.PredictedCompletionDate = time.Now().Add(30 * 24 * time.Hour).Format("2006-01-02")
	}

	return &analysis
}
