package domain

import (
	"errors"
	"time"
)

// MilestoneStatus represents the payment state of a milestone.
type MilestoneStatus string

const (
	MilestonePending MilestoneStatus = "pending"
	MilestonePaid    MilestoneStatus = "paid"
	MilestoneOverdue MilestoneStatus = "overdue"
)

var ErrMilestoneNotFound = errors.New("milestone not found")
var ErrMilestoneAlreadyPaid = errors.New("milestone already paid")

// PaymentMilestone is one scheduled partial payment tied to a project. The
// full set for a project is written once at proposal creation and never
// recomputed; only its status changes afterwards.
type PaymentMilestone struct {
	ID          string          `json:"id" bson:"_id,omitempty"`
	ProjectID   string          `json:"project_id" bson:"project_id"`
	Title       string          `json:"title" bson:"title"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
	Amount      float64         `json:"amount" bson:"amount"`
	DueDate     *time.Time      `json:"due_date,omitempty" bson:"due_date,omitempty"`
	Status      MilestoneStatus `json:"status" bson:"status"`
	PaidAt      *time.Time      `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
}
