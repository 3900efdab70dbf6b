package models

import "time"

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Task struct {
	ID          uint         `gorm:"primaryKey"`
	Title       string       `gorm:"size:200;not null"`
	Description string       `gorm:"size:2000"`
	DueDate     *time.Time   `gorm:"index"`
	Priority    TaskPriority `gorm:"size:10;not null;default:low"`
	Status      TaskStatus   `gorm:"size:20;not null;default:pending"`

	AssignedToID *uint `gorm:"index"`
	AssignedTo   *User
	CreatedByID  uint `gorm:"index;not null"`
	CreatedBy    User

	// Set on every task created through an "assign to all employees" request.
	// The fan-out creates one independent row per employee, never a shared one.
	IsAssignedToAll bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
