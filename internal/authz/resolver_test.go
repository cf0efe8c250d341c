package authz

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(database))

	return database
}

func seedProject(t *testing.T, database *gorm.DB) (owner, contributor, viewer, outsider models.User, project models.Project) {
	t.Helper()

	owner = models.User{Name: "owner", Email: "owner@example.com", PasswordHash: "x"}
	contributor = models.User{Name: "contributor", Email: "contributor@example.com", PasswordHash: "x"}
	viewer = models.User{Name: "viewer", Email: "viewer@example.com", PasswordHash: "x"}
	outsider = models.User{Name: "outsider", Email: "outsider@example.com", PasswordHash: "x"}

	for _, u := range []*models.User{&owner, &contributor, &viewer, &outsider} {
		require.NoError(t, database.Create(u).Error)
	}

	project = models.Project{Name: "backend", OwnerID: owner.ID}
	require.NoError(t, database.Create(&project).Error)

	require.NoError(t, database.Create(&models.Membership{
		UserID: contributor.ID, ProjectID: project.ID, Role: models.RoleContributor,
	}).Error)
	require.NoError(t, database.Create(&models.Membership{
		UserID: viewer.ID, ProjectID: project.ID, Role: models.RoleViewer,
	}).Error)

	return
}

func TestResolveOwner(t *testing.T) {
	database := newTestDB(t)
	owner, _, _, _, project := seedProject(t, database)

	role, resolved, err := Resolve(database, owner.ID, project.ID)

	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)
	assert.Equal(t, project.ID, resolved.ID)
}

func TestResolveMembershipRole(t *testing.T) {
	database := newTestDB(t)
	_, contributor, viewer, _, project := seedProject(t, database)

	role, _, err := Resolve(database, contributor.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleContributor, role)

	role, _, err = Resolve(database, viewer.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, role)
}

func TestResolveOutsiderForbidden(t *testing.T) {
	database := newTestDB(t)
	_, _, _, outsider, project := seedProject(t, database)

	_, _, err := Resolve(database, outsider.ID, project.ID)

	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestResolveMissingProjectNotFound(t *testing.T) {
	database := newTestDB(t)
	owner, _, _, _, _ := seedProject(t, database)

	_, _, err := Resolve(database, owner.ID, 9999)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// A stray explicit OWNER membership row (legacy seed data) must never
// shadow the derived owner check.
func TestResolveIgnoresExplicitOwnerRow(t *testing.T) {
	database := newTestDB(t)
	owner, _, _, _, project := seedProject(t, database)

	require.NoError(t, database.Create(&models.Membership{
		UserID: owner.ID, ProjectID: project.ID, Role: models.RoleViewer,
	}).Error)

	role, _, err := Resolve(database, owner.ID, project.ID)

	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    models.Role
		allowed []models.Role
		wantErr bool
	}{
		{"empty allow-list admits any member", models.RoleViewer, nil, false},
		{"role in list", models.RoleContributor, []models.Role{models.RoleOwner, models.RoleContributor}, false},
		{"role not in list", models.RoleViewer, []models.Role{models.RoleOwner, models.RoleContributor}, true},
		{"owner only", models.RoleContributor, []models.Role{models.RoleOwner}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(tt.role, tt.allowed...)

			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrForbidden)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveRequired(t *testing.T) {
	database := newTestDB(t)
	_, _, viewer, _, project := seedProject(t, database)

	_, _, err := ResolveRequired(database, viewer.ID, project.ID, models.RoleOwner, models.RoleContributor)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	role, _, err := ResolveRequired(database, viewer.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, role)
}
