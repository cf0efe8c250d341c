package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// TagService implements tag lifecycle and project association. Tag
// mutation is gated by creator identity, not project roles; association
// operations are gated at the route layer.
type TagService struct {
	db *gorm.DB
}

func NewTagService(database *gorm.DB) *TagService {
	return &TagService{db: database}
}

type CreateTagInput struct {
	Name        string `json:"name" binding:"required"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type UpdateTagInput struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

type ProjectTagsResponse struct {
	ID   uint         `json:"id"`
	Name string       `json:"name"`
	Tags []TagSummary `json:"tags"`
}

func (s *TagService) Create(creatorID uint, input CreateTagInput) (*TagResponse, error) {
	name := normalizeTagName(input.Name)

	if name == "" {
		return nil, apperr.Invalid("Tag name must not be empty")
	}

	var existing models.Tag

	err := s.db.Where("name = ?", name).First(&existing).Error

	if err == nil {
		return nil, apperr.Invalid(fmt.Sprintf("Tag with name %q already exists", input.Name))
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking tag name: %w", err)
	}

	tag := models.Tag{
		Name:        name,
		Color:       input.Color,
		Description: input.Description,
		CreatedByID: creatorID,
	}

	if err := s.db.Create(&tag).Error; err != nil {
		if errIsDuplicate(err) {
			return nil, apperr.Invalid(fmt.Sprintf("Tag with name %q already exists", input.Name))
		}
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	return s.FindOne(tag.ID)
}

func (s *TagService) FindAll() ([]TagResponse, error) {
	var tags []models.Tag

	if err := s.db.Preload("CreatedBy").Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	responses := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		responses = append(responses, tagResponse(tag))
	}

	return responses, nil
}

func (s *TagService) FindOne(id uint) (*TagResponse, error) {
	var tag models.Tag

	if err := s.db.Preload("CreatedBy").First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("Tag with ID %d not found", id))
		}
		return nil, fmt.Errorf("loading tag: %w", err)
	}

	response := tagResponse(tag)
	return &response, nil
}

// Update patches a tag; only its creator may do so, regardless of any
// project role. A rename re-checks uniqueness excluding the tag itself.
func (s *TagService) Update(callerID, id uint, input UpdateTagInput) (*TagResponse, error) {
	tag, err := s.loadOwned(callerID, id, "update")

	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if input.Name != nil {
		name := normalizeTagName(*input.Name)

		if name == "" {
			return nil, apperr.Invalid("Tag name must not be empty")
		}

		var duplicate models.Tag

		err := s.db.Where("name = ? AND id <> ?", name, id).First(&duplicate).Error

		if err == nil {
			return nil, apperr.Invalid(fmt.Sprintf("Tag with name %q already exists", *input.Name))
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("checking tag name: %w", err)
		}

		updates["name"] = name
	}

	if input.Color != nil {
		updates["color"] = *input.Color
	}

	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(tag).Updates(updates).Error; err != nil {
			if errIsDuplicate(err) {
				return nil, apperr.Invalid("Tag name already exists")
			}
			return nil, fmt.Errorf("updating tag: %w", err)
		}
	}

	return s.FindOne(id)
}

// Remove deletes a tag and its project associations. Creator-only.
func (s *TagService) Remove(callerID, id uint) error {
	tag, err := s.loadOwned(callerID, id, "delete")

	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.ProjectTag{}).Error; err != nil {
			return fmt.Errorf("deleting tag associations: %w", err)
		}

		if err := tx.Delete(tag).Error; err != nil {
			return fmt.Errorf("deleting tag: %w", err)
		}

		return nil
	})
}

// AddTagsToProject associates the subset of tagIDs not already attached
// to the project. All ids must exist; it is a conflict only when every
// requested tag is already associated.
func (s *TagService) AddTagsToProject(projectID uint, tagIDs []uint) (*ProjectTagsResponse, error) {
	if len(tagIDs) == 0 {
		return nil, apperr.Invalid("At least one tag ID is required")
	}

	var existing []models.Tag

	if err := s.db.Where("id IN ?", tagIDs).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}

	found := make(map[uint]bool, len(existing))
	for _, tag := range existing {
		found[tag.ID] = true
	}

	var missing []string
	for _, id := range tagIDs {
		if !found[id] {
			missing = append(missing, strconv.FormatUint(uint64(id), 10))
		}
	}

	if len(missing) > 0 {
		return nil, apperr.NotFound("Tags not found: " + strings.Join(missing, ", "))
	}

	var current []models.ProjectTag

	if err := s.db.Where("project_id = ?", projectID).Find(&current).Error; err != nil {
		return nil, fmt.Errorf("loading project tags: %w", err)
	}

	attached := make(map[uint]bool, len(current))
	for _, pt := range current {
		attached[pt.TagID] = true
	}

	var fresh []models.ProjectTag
	for _, id := range tagIDs {
		if !attached[id] {
			fresh = append(fresh, models.ProjectTag{ProjectID: projectID, TagID: id})
		}
	}

	if len(fresh) == 0 {
		return nil, apperr.Conflict("All specified tags are already added to this project")
	}

	if err := s.db.Create(&fresh).Error; err != nil {
		if errIsDuplicate(err) {
			return nil, apperr.Conflict("Tag is already added to this project")
		}
		return nil, fmt.Errorf("adding tags to project: %w", err)
	}

	return s.projectWithTags(projectID)
}

// RemoveTagFromProject deletes one association; NotFound if absent.
func (s *TagService) RemoveTagFromProject(projectID, tagID uint) (*ProjectTagsResponse, error) {
	var projectTag models.ProjectTag

	err := s.db.Where("project_id = ? AND tag_id = ?", projectID, tagID).First(&projectTag).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Tag is not associated with this project")
		}
		return nil, fmt.Errorf("loading project tag: %w", err)
	}

	if err := s.db.Delete(&projectTag).Error; err != nil {
		return nil, fmt.Errorf("removing tag from project: %w", err)
	}

	return s.projectWithTags(projectID)
}

// ListForProject returns a project's tags with creator info.
func (s *TagService) ListForProject(projectID uint) ([]TagResponse, error) {
	var project models.Project

	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("Project with ID %d not found", projectID))
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}

	var projectTags []models.ProjectTag

	err := s.db.Preload("Tag.CreatedBy").Where("project_id = ?", projectID).Find(&projectTags).Error

	if err != nil {
		return nil, fmt.Errorf("loading project tags: %w", err)
	}

	responses := make([]TagResponse, 0, len(projectTags))
	for _, pt := range projectTags {
		responses = append(responses, tagResponse(pt.Tag))
	}

	return responses, nil
}

func (s *TagService) loadOwned(callerID, id uint, action string) (*models.Tag, error) {
	var tag models.Tag

	if err := s.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("Tag with ID %d not found", id))
		}
		return nil, fmt.Errorf("loading tag: %w", err)
	}

	if tag.CreatedByID != callerID {
		return nil, apperr.Forbidden(fmt.Sprintf("You can only %s tags you created", action))
	}

	return &tag, nil
}

func (s *TagService) projectWithTags(projectID uint) (*ProjectTagsResponse, error) {
	var project models.Project

	err := s.db.Preload("ProjectTags.Tag").First(&project, projectID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Project not found")
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}

	tags := make([]TagSummary, 0, len(project.ProjectTags))
	for _, pt := range project.ProjectTags {
		tags = append(tags, tagSummary(pt.Tag))
	}

	return &ProjectTagsResponse{ID: project.ID, Name: project.Name, Tags: tags}, nil
}

func tagResponse(tag models.Tag) TagResponse {
	response := TagResponse{
		ID:          tag.ID,
		Name:        tag.Name,
		Color:       tag.Color,
		Description: tag.Description,
		CreatedAt:   tag.CreatedAt,
	}

	if tag.CreatedBy.ID != 0 {
		creator := userSummary(tag.CreatedBy)
		response.CreatedBy = &creator
	}

	return response
}

func normalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
