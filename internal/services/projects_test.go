package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/models"
)

func TestCreateProjectOwnerOnly(t *testing.T) {
	database := newTestDB(t)
	owner := createUser(t, database, "alice")
	svc := NewProjectService(database)

	project, err := svc.Create(owner.ID, CreateProjectInput{Name: "platform", Description: "core services"})

	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, project.UserRole)
	assert.Equal(t, 1, project.MemberCount)
	assert.Equal(t, owner.ID, project.Owner.ID)

	// No membership row is created for the owner.
	var count int64
	require.NoError(t, database.Model(&models.Membership{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetProjectMemberCount(t *testing.T) {
	database := newTestDB(t)
	owner := createUser(t, database, "alice")
	member := createUser(t, database, "bob")
	project := createProject(t, database, owner.ID, "platform")
	addMember(t, database, member.ID, project.ID, models.RoleViewer)

	svc := NewProjectService(database)

	response, err := svc.Get(&project, models.RoleOwner)

	require.NoError(t, err)
	assert.Equal(t, 2, response.MemberCount)
	assert.Equal(t, models.RoleOwner, response.UserRole)
}

func TestUpdateProjectPartialPatch(t *testing.T) {
	database := newTestDB(t)
	owner := createUser(t, database, "alice")
	project := createProject(t, database, owner.ID, "platform")
	require.NoError(t, database.Model(&project).Update("description", "old").Error)

	svc := NewProjectService(database)
	name := "platform-v2"

	response, err := svc.Update(&project, UpdateProjectInput{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "platform-v2", response.Name)
	assert.Equal(t, "old", response.Description)
}

func TestDeleteProjectCascades(t *testing.T) {
	database := newTestDB(t)
	owner := createUser(t, database, "alice")
	member := createUser(t, database, "bob")
	project := createProject(t, database, owner.ID, "platform")
	addMember(t, database, member.ID, project.ID, models.RoleContributor)
	tag := createTag(t, database, owner.ID, "infra")

	require.NoError(t, database.Create(&models.Task{Title: "setup", ProjectID: project.ID, Status: models.TaskStatusTodo}).Error)
	require.NoError(t, database.Create(&models.ProjectTag{ProjectID: project.ID, TagID: tag.ID}).Error)

	svc := NewProjectService(database)

	require.NoError(t, svc.Delete(project.ID))

	var memberships, tasks, projectTags, tags int64
	require.NoError(t, database.Model(&models.Membership{}).Where("project_id = ?", project.ID).Count(&memberships).Error)
	require.NoError(t, database.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&tasks).Error)
	require.NoError(t, database.Model(&models.ProjectTag{}).Where("project_id = ?", project.ID).Count(&projectTags).Error)
	require.NoError(t, database.Model(&models.Tag{}).Count(&tags).Error)

	assert.Zero(t, memberships)
	assert.Zero(t, tasks)
	assert.Zero(t, projectTags)
	assert.EqualValues(t, 1, tags, "tags survive project deletion")

	var deleted models.Project
	assert.Error(t, database.First(&deleted, project.ID).Error)
}

func TestListOnlyAccessibleProjects(t *testing.T) {
	database := newTestDB(t)
	alice := createUser(t, database, "alice")
	bob := createUser(t, database, "bob")

	owned := createProject(t, database, alice.ID, "owned")
	shared := createProject(t, database, bob.ID, "shared")
	createProject(t, database, bob.ID, "private")
	addMember(t, database, alice.ID, shared.ID, models.RoleViewer)

	svc := NewProjectService(database)

	projects, err := svc.List(alice.ID, "")

	require.NoError(t, err)
	require.Len(t, projects, 2)

	byID := make(map[uint]ProjectResponse)
	for _, p := range projects {
		byID[p.ID] = p
	}

	assert.Equal(t, models.RoleOwner, byID[owned.ID].UserRole)
	assert.Equal(t, models.RoleViewer, byID[shared.ID].UserRole)
}

func TestListTagFilterMatchesAny(t *testing.T) {
	database := newTestDB(t)
	alice := createUser(t, database, "alice")

	p1 := createProject(t, database, alice.ID, "one")
	p2 := createProject(t, database, alice.ID, "two")
	createProject(t, database, alice.ID, "three")

	urgent := createTag(t, database, alice.ID, "urgent")
	backend := createTag(t, database, alice.ID, "backend")

	require.NoError(t, database.Create(&models.ProjectTag{ProjectID: p1.ID, TagID: urgent.ID}).Error)
	require.NoError(t, database.Create(&models.ProjectTag{ProjectID: p2.ID, TagID: backend.ID}).Error)

	svc := NewProjectService(database)

	// OR semantics: a project matches if it has ANY listed tag.
	projects, err := svc.List(alice.ID, " Urgent , backend")

	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestListPaginatedMeta(t *testing.T) {
	database := newTestDB(t)
	alice := createUser(t, database, "alice")

	for i := 0; i < 25; i++ {
		createProject(t, database, alice.ID, fmt.Sprintf("project-%02d", i))
	}

	svc := NewProjectService(database)

	page, err := svc.ListPaginated(alice.ID, PaginationQuery{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.EqualValues(t, 25, page.Meta.TotalItems)
	assert.Equal(t, 3, page.Meta.TotalPages)
	assert.True(t, page.Meta.HasNextPage)
	assert.True(t, page.Meta.HasPreviousPage)
	assert.LessOrEqual(t, len(page.Data), 10)
}

func TestListPaginatedDefaults(t *testing.T) {
	database := newTestDB(t)
	alice := createUser(t, database, "alice")
	createProject(t, database, alice.ID, "solo")

	svc := NewProjectService(database)

	page, err := svc.ListPaginated(alice.ID, PaginationQuery{})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.CurrentPage)
	assert.Equal(t, 10, page.Meta.ItemsPerPage)
	assert.Equal(t, 1, page.Meta.TotalPages)
	assert.False(t, page.Meta.HasNextPage)
	assert.False(t, page.Meta.HasPreviousPage)
}

func TestListPaginatedSearch(t *testing.T) {
	database := newTestDB(t)
	alice := createUser(t, database, "alice")

	createProject(t, database, alice.ID, "Payment Gateway")
	billing := createProject(t, database, alice.ID, "Internal Tools")
	require.NoError(t, database.Model(&billing).Update("description", "billing dashboard").Error)
	createProject(t, database, alice.ID, "Website")

	svc := NewProjectService(database)

	page, err := svc.ListPaginated(alice.ID, PaginationQuery{Search: "PAYMENT"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Payment Gateway", page.Data[0].Name)

	// Search also matches descriptions.
	page, err = svc.ListPaginated(alice.ID, PaginationQuery{Search: "Billing"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Internal Tools", page.Data[0].Name)
}

// Sorting by memberCount uses the raw membership-row count while the
// displayed memberCount includes the owner. The 4-row project sorts
// first under desc even though both numbers shift by one on display.
func TestListPaginatedSortByMemberCount(t *testing.T) {
	database := newTestDB(t)
	alice := createUser(t, database, "alice")

	small := createProject(t, database, alice.ID, "small")
	big := createProject(t, database, alice.ID, "big")

	for i := 0; i < 2; i++ {
		u := createUser(t, database, fmt.Sprintf("small-%d", i))
		addMember(t, database, u.ID, small.ID, models.RoleViewer)
	}

	for i := 0; i < 4; i++ {
		u := createUser(t, database, fmt.Sprintf("big-%d", i))
		addMember(t, database, u.ID, big.ID, models.RoleViewer)
	}

	svc := NewProjectService(database)

	page, err := svc.ListPaginated(alice.ID, PaginationQuery{Sort: "memberCount", Order: "desc"})

	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "big", page.Data[0].Name)
	assert.Equal(t, 5, page.Data[0].MemberCount)
	assert.Equal(t, "small", page.Data[1].Name)
	assert.Equal(t, 3, page.Data[1].MemberCount)
}

func TestListPaginatedSortByName(t *testing.T) {
	database := newTestDB(t)
	alice := createUser(t, database, "alice")

	createProject(t, database, alice.ID, "zebra")
	createProject(t, database, alice.ID, "alpha")

	svc := NewProjectService(database)

	page, err := svc.ListPaginated(alice.ID, PaginationQuery{Sort: "name", Order: "asc"})

	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "alpha", page.Data[0].Name)
}

func TestListPaginatedIncludesTagsAndRoles(t *testing.T) {
	database := newTestDB(t)
	alice := createUser(t, database, "alice")
	bob := createUser(t, database, "bob")

	project := createProject(t, database, bob.ID, "shared")
	addMember(t, database, alice.ID, project.ID, models.RoleContributor)

	tag := createTag(t, database, bob.ID, "infra")
	require.NoError(t, database.Create(&models.ProjectTag{ProjectID: project.ID, TagID: tag.ID}).Error)

	svc := NewProjectService(database)

	page, err := svc.ListPaginated(alice.ID, PaginationQuery{})

	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, models.RoleContributor, page.Data[0].UserRole)
	require.Len(t, page.Data[0].Tags, 1)
	assert.Equal(t, "infra", page.Data[0].Tags[0].Name)
	assert.Equal(t, bob.ID, page.Data[0].Owner.ID)
}
