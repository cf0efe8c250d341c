package models

import "time"

// ProjectTag associates a tag with a project. The composite unique index
// is the arbiter for concurrent duplicate associations.
type ProjectTag struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	ProjectID uint `gorm:"not null;uniqueIndex:idx_project_tag"`
	TagID     uint `gorm:"not null;uniqueIndex:idx_project_tag"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tag     Tag     `gorm:"foreignKey:TagID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
