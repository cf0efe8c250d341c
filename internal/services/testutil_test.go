package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		// The sqlite driver returns timestamps in UTC; stamp rows in UTC
		// so values compare equal after a round trip.
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)

	// A second connection would see a different in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(database))

	return database
}

func createUser(t *testing.T, database *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
	}
	require.NoError(t, database.Create(&user).Error)

	return user
}

func createProject(t *testing.T, database *gorm.DB, ownerID uint, name string) models.Project {
	t.Helper()

	project := models.Project{Name: name, OwnerID: ownerID}
	require.NoError(t, database.Create(&project).Error)

	return project
}

func addMember(t *testing.T, database *gorm.DB, userID, projectID uint, role models.Role) models.Membership {
	t.Helper()

	membership := models.Membership{UserID: userID, ProjectID: projectID, Role: role}
	require.NoError(t, database.Create(&membership).Error)

	return membership
}

func createTag(t *testing.T, database *gorm.DB, creatorID uint, name string) models.Tag {
	t.Helper()

	tag := models.Tag{Name: name, CreatedByID: creatorID}
	require.NoError(t, database.Create(&tag).Error)

	return tag
}
