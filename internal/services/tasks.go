package services

import (
	"errors"
	"fmt"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// TaskService implements task CRUD scoped to a project. Create and list
// are gated at the route layer; update and remove discover the project
// from the task and resolve the caller's role themselves.
type TaskService struct {
	db *gorm.DB
}

func NewTaskService(database *gorm.DB) *TaskService {
	return &TaskService{db: database}
}

type CreateTaskInput struct {
	Title        string            `json:"title" binding:"required"`
	Description  string            `json:"description"`
	Status       models.TaskStatus `json:"status" binding:"omitempty,oneof=TODO DOING DONE"`
	AssignedToID *uint             `json:"assignedToId"`
}

type UpdateTaskInput struct {
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	Status       *models.TaskStatus `json:"status" binding:"omitempty,oneof=TODO DOING DONE"`
	AssignedToID *uint              `json:"assignedToId"`
}

func (s *TaskService) Create(projectID uint, input CreateTaskInput) (*TaskResponse, error) {
	if input.AssignedToID != nil {
		if err := s.checkAssignee(projectID, *input.AssignedToID); err != nil {
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}

	task := models.Task{
		Title:        input.Title,
		Description:  input.Description,
		Status:       status,
		ProjectID:    projectID,
		AssignedToID: input.AssignedToID,
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	response := taskResponse(task)
	return &response, nil
}

// FindAll lists a project's tasks in creation order. A dangling
// assignee reference is returned as-is.
func (s *TaskService) FindAll(projectID uint) ([]TaskResponse, error) {
	var tasks []models.Task

	err := s.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&tasks).Error

	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskResponse(task))
	}

	return responses, nil
}

func (s *TaskService) Update(callerID, taskID uint, input UpdateTaskInput) (*TaskResponse, error) {
	task, err := s.loadForWrite(callerID, taskID)

	if err != nil {
		return nil, err
	}

	if input.AssignedToID != nil {
		if err := s.checkAssignee(task.ProjectID, *input.AssignedToID); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})

	if input.Title != nil {
		updates["title"] = *input.Title
	}

	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, apperr.Invalid("Invalid task status")
		}
		updates["status"] = *input.Status
	}

	if input.AssignedToID != nil {
		updates["assigned_to_id"] = *input.AssignedToID
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating task: %w", err)
		}
	}

	var fresh models.Task

	if err := s.db.First(&fresh, taskID).Error; err != nil {
		return nil, fmt.Errorf("reloading task: %w", err)
	}

	response := taskResponse(fresh)
	return &response, nil
}

func (s *TaskService) Remove(callerID, taskID uint) error {
	task, err := s.loadForWrite(callerID, taskID)

	if err != nil {
		return err
	}

	if err := s.db.Delete(task).Error; err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	return nil
}

// loadForWrite loads the task and requires the caller to be OWNER or
// CONTRIBUTOR in its project.
func (s *TaskService) loadForWrite(callerID, taskID uint) (*models.Task, error) {
	var task models.Task

	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}

	_, _, err := authz.ResolveRequired(s.db, callerID, task.ProjectID, models.RoleOwner, models.RoleContributor)

	if err != nil {
		return nil, err
	}

	return &task, nil
}

// checkAssignee requires a membership row for the assignee. The owner
// has no row and is therefore not assignable.
func (s *TaskService) checkAssignee(projectID, assigneeID uint) error {
	var membership models.Membership

	err := s.db.Where("project_id = ? AND user_id = ?", projectID, assigneeID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Assigned user is not a project member")
		}
		return fmt.Errorf("checking assignee: %w", err)
	}

	return nil
}
