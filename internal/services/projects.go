package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// ProjectService implements project CRUD and the paginated, filterable
// listing. Role checks for single-project operations happen at the
// route layer; list operations filter by the caller's access instead.
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(database *gorm.DB) *ProjectService {
	return &ProjectService{db: database}
}

type CreateProjectInput struct {
	Name        string `json:"name" binding:"required,min=3"`
	Description string `json:"description"`
}

type UpdateProjectInput struct {
	Name        *string `json:"name" binding:"omitempty,min=3"`
	Description *string `json:"description"`
}

type PaginationQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Sort   string `form:"sort" binding:"omitempty,oneof=name createdAt memberCount"`
	Order  string `form:"order" binding:"omitempty,oneof=asc desc"`
	Search string `form:"search"`
	Tags   string `form:"tags"`
}

type PaginationMeta struct {
	CurrentPage     int   `json:"currentPage"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

type PaginatedProjects struct {
	Data []ProjectResponse `json:"data"`
	Meta PaginationMeta    `json:"meta"`
}

func (s *ProjectService) Create(userID uint, input CreateProjectInput) (*ProjectResponse, error) {
	project := models.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     userID,
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	if err := s.db.First(&project.Owner, userID).Error; err != nil {
		return nil, fmt.Errorf("loading owner: %w", err)
	}

	return &ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
		Owner:       userSummary(project.Owner),
		UserRole:    models.RoleOwner,
		MemberCount: 1,
	}, nil
}

// Get shapes the response for a project the route layer has already
// resolved access to. MemberCount is membership rows plus the owner.
func (s *ProjectService) Get(project *models.Project, role models.Role) (*ProjectResponse, error) {
	var owner models.User

	if err := s.db.First(&owner, project.OwnerID).Error; err != nil {
		return nil, fmt.Errorf("loading owner: %w", err)
	}

	count, err := s.membershipCount(project.ID)

	if err != nil {
		return nil, err
	}

	return &ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
		Owner:       userSummary(owner),
		UserRole:    role,
		MemberCount: count + 1,
	}, nil
}

// Update applies a partial patch. The route layer guarantees the caller
// is the owner.
func (s *ProjectService) Update(project *models.Project, input UpdateProjectInput) (*ProjectResponse, error) {
	updates := make(map[string]interface{})

	if input.Name != nil {
		updates["name"] = *input.Name
	}

	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating project: %w", err)
		}
	}

	var fresh models.Project

	if err := s.db.First(&fresh, project.ID).Error; err != nil {
		return nil, fmt.Errorf("reloading project: %w", err)
	}

	return s.Get(&fresh, models.RoleOwner)
}

// Delete removes a project and cascades to its memberships, tasks and
// tag associations in one transaction. Tags themselves survive.
func (s *ProjectService) Delete(projectID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Membership{}).Error; err != nil {
			return fmt.Errorf("deleting memberships: %w", err)
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("deleting tasks: %w", err)
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error; err != nil {
			return fmt.Errorf("deleting project tags: %w", err)
		}

		if err := tx.Delete(&models.Project{}, projectID).Error; err != nil {
			return fmt.Errorf("deleting project: %w", err)
		}

		return nil
	})
}

// List returns every project the user owns or is a member of, newest
// first, optionally filtered by a comma-separated tag name set.
func (s *ProjectService) List(userID uint, tagsCSV string) ([]ProjectResponse, error) {
	query := s.baseListQuery(userID, "", normalizeTagNames(tagsCSV)).Order("projects.created_at DESC")

	var projects []models.Project

	if err := query.Preload("Owner").Preload("ProjectTags.Tag").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	return s.buildProjectResponses(userID, projects)
}

// ListPaginated composes the same base filter with search, tag
// filtering, sorting and pagination metadata.
func (s *ProjectService) ListPaginated(userID uint, q PaginationQuery) (*PaginatedProjects, error) {
	page := q.Page
	if page == 0 {
		page = 1
	}

	limit := q.Limit
	if limit == 0 {
		limit = 10
	}

	order := q.Order
	if order == "" {
		order = "desc"
	} else if order != "asc" && order != "desc" {
		return nil, apperr.Invalid("order must be asc or desc")
	}

	tagNames := normalizeTagNames(q.Tags)

	var totalItems int64

	if err := s.baseListQuery(userID, q.Search, tagNames).Count(&totalItems).Error; err != nil {
		return nil, fmt.Errorf("counting projects: %w", err)
	}

	query := s.baseListQuery(userID, q.Search, tagNames)

	switch q.Sort {
	case "name":
		query = query.Order("projects.name " + order)
	case "memberCount":
		// Sorts on the raw membership-row count; the displayed
		// memberCount adds one for the owner.
		query = query.Order("(SELECT COUNT(*) FROM memberships WHERE memberships.project_id = projects.id) " + order)
	default:
		query = query.Order("projects.created_at " + order)
	}

	var projects []models.Project

	err := query.
		Preload("Owner").
		Preload("ProjectTags.Tag").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&projects).Error

	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	data, err := s.buildProjectResponses(userID, projects)

	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))

	return &PaginatedProjects{
		Data: data,
		Meta: PaginationMeta{
			CurrentPage:     page,
			ItemsPerPage:    limit,
			TotalItems:      totalItems,
			TotalPages:      totalPages,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}, nil
}

// baseListQuery filters to projects the user owns or holds a membership
// in, with optional search and tag-name filters ANDed on top. A project
// matches the tag filter when it has ANY of the given tags.
func (s *ProjectService) baseListQuery(userID uint, search string, tagNames []string) *gorm.DB {
	query := s.db.Model(&models.Project{}).
		Where("(projects.owner_id = ? OR EXISTS (SELECT 1 FROM memberships WHERE memberships.project_id = projects.id AND memberships.user_id = ?))", userID, userID)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(projects.name) LIKE ? OR LOWER(projects.description) LIKE ?)", pattern, pattern)
	}

	if len(tagNames) > 0 {
		query = query.Where("EXISTS (SELECT 1 FROM project_tags JOIN tags ON tags.id = project_tags.tag_id WHERE project_tags.project_id = projects.id AND tags.name IN ?)", tagNames)
	}

	return query
}

func (s *ProjectService) buildProjectResponses(userID uint, projects []models.Project) ([]ProjectResponse, error) {
	if len(projects) == 0 {
		return []ProjectResponse{}, nil
	}

	ids := make([]uint, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	counts, err := s.membershipCounts(ids)

	if err != nil {
		return nil, err
	}

	roles, err := s.membershipRoles(userID, ids)

	if err != nil {
		return nil, err
	}

	responses := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		role := models.RoleOwner
		if project.OwnerID != userID {
			role = roles[project.ID]
		}

		tags := make([]TagSummary, 0, len(project.ProjectTags))
		for _, pt := range project.ProjectTags {
			tags = append(tags, tagSummary(pt.Tag))
		}

		responses = append(responses, ProjectResponse{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
			CreatedAt:   project.CreatedAt,
			Owner:       userSummary(project.Owner),
			UserRole:    role,
			MemberCount: counts[project.ID] + 1,
			Tags:        tags,
		})
	}

	return responses, nil
}

func (s *ProjectService) membershipCount(projectID uint) (int, error) {
	var count int64

	err := s.db.Model(&models.Membership{}).Where("project_id = ?", projectID).Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("counting memberships: %w", err)
	}

	return int(count), nil
}

func (s *ProjectService) membershipCounts(projectIDs []uint) (map[uint]int, error) {
	var rows []struct {
		ProjectID uint
		Total     int
	}

	err := s.db.Model(&models.Membership{}).
		Select("project_id, COUNT(*) AS total").
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("counting memberships: %w", err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.ProjectID] = row.Total
	}

	return counts, nil
}

func (s *ProjectService) membershipRoles(userID uint, projectIDs []uint) (map[uint]models.Role, error) {
	var memberships []models.Membership

	err := s.db.Where("user_id = ? AND project_id IN ?", userID, projectIDs).Find(&memberships).Error

	if err != nil {
		return nil, fmt.Errorf("loading membership roles: %w", err)
	}

	roles := make(map[uint]models.Role, len(memberships))
	for _, membership := range memberships {
		roles[membership.ProjectID] = membership.Role
	}

	return roles, nil
}

// normalizeTagNames splits a comma-separated list into lower-cased,
// trimmed names, dropping empties.
func normalizeTagNames(csv string) []string {
	if csv == "" {
		return nil
	}

	parts := strings.Split(csv, ",")
	names := make([]string, 0, len(parts))

	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}

// errIsDuplicate reports whether err is a storage-level uniqueness
// violation, the arbiter for concurrent duplicate inserts.
func errIsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
