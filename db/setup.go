package db

import (
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the database and returns the handle. The caller owns the
// connection for the life of the process and injects it everywhere a
// query is issued.
func Connect(dsn string) (*gorm.DB, error) {
	// TranslateError turns driver uniqueness violations into
	// gorm.ErrDuplicatedKey, which the services surface as Conflict.
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

func Migrate(database *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Project{},
		&models.Membership{},
		&models.Task{},
		&models.Tag{},
		&models.ProjectTag{},
	}

	migrator := database.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := database.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}
