package models

import "gorm.io/gorm"

type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "TODO"
	TaskStatusDoing TaskStatus = "DOING"
	TaskStatusDone  TaskStatus = "DONE"
)

func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Status      TaskStatus `gorm:"not null;default:'TODO'"`
	ProjectID   uint       `gorm:"not null;index"`

	// AssignedToID may dangle: a member who loses access is not
	// retroactively unassigned.
	AssignedToID *uint

	// Relationships
	Project    Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AssignedTo *User   `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
