package domain

import (
	"errors"
	"time"
)

// ProjectStatus represents the operational state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCancelled ProjectStatus = "cancelled"
)

// projectTransitions defines the allowed state machine transitions.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectActive: {ProjectCompleted, ProjectOnHold, ProjectCancelled},
	ProjectOnHold: {ProjectActive, ProjectCancelled},
}

var ErrProjectNotFound = errors.New("project not found")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	for _, allowed := range projectTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Project is the operational counterpart of a proposal. Every proposal created
// through the creation flow spawns exactly one project with the same client
// and budget.
type Project struct {
	ID         string        `json:"id" bson:"_id,omitempty"`
	UserID     string        `json:"user_id" bson:"user_id"`
	ClientID   string        `json:"client_id" bson:"client_id"`
	ProposalID string        `json:"proposal_id,omitempty" bson:"proposal_id,omitempty"`
	Name       string        `json:"name" bson:"name"`
	Budget     float64       `json:"budget" bson:"budget"`
	Status     ProjectStatus `json:"status" bson:"status"`
	StartDate  *time.Time    `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate    *time.Time    `json:"end_date,omitempty" bson:"end_date,omitempty"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
}
