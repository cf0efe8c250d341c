package models

import "time"

// Membership links a non-owner user to a project with a role. Hard
// deletes only: the composite unique index must stay re-satisfiable
// after a row is removed.
type Membership struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	UserID    uint `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_user_project"`
	Role      Role `gorm:"not null"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
