package models

import "time"

// Tag names are stored normalized (lower-cased, trimmed); uniqueness is
// enforced on the normalized form. Hard deletes keep the unique index
// re-satisfiable when a name is recreated.
type Tag struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name        string `gorm:"uniqueIndex;not null"`
	Color       string
	Description string
	CreatedByID uint `gorm:"not null;index"`

	// Relationships
	CreatedBy   User         `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ProjectTags []ProjectTag `gorm:"foreignKey:TagID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
