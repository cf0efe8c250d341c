package services

import (
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
)

type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TagSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

type ProjectResponse struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	Owner       UserSummary  `json:"owner"`
	UserRole    models.Role  `json:"userRole"`
	MemberCount int          `json:"memberCount"`
	Tags        []TagSummary `json:"tags,omitempty"`
}

type MemberResponse struct {
	ID       uint        `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	JoinedAt time.Time   `json:"joinedAt"`
}

type TaskResponse struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       models.TaskStatus `json:"status"`
	ProjectID    uint              `json:"projectId"`
	AssignedToID *uint             `json:"assignedToId"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

type TagResponse struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Color       string       `json:"color,omitempty"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	CreatedBy   *UserSummary `json:"createdBy,omitempty"`
}

func userSummary(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func tagSummary(t models.Tag) TagSummary {
	return TagSummary{ID: t.ID, Name: t.Name, Color: t.Color, Description: t.Description}
}

func taskResponse(t models.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		ProjectID:    t.ProjectID,
		AssignedToID: t.AssignedToID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
