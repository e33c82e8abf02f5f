package dto

import "github.com/yigit/examportal/internal/app/models"

// OutcomeStatus describes what happened to a single analyzed entity
type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created"
	OutcomeReused  OutcomeStatus = "reused"
	OutcomeFailed  OutcomeStatus = "failed"
)

// FailureSeverity distinguishes collected failures from ones that stop the pass
type FailureSeverity string

const (
	SeveritySoft FailureSeverity = "soft"
	SeverityHard FailureSeverity = "hard"
)

// EntityOutcome is the per-entity result of a reconciliation pass
type EntityOutcome struct {
	EntityID     string            `json:"entityId"`
	Type         models.EntityType `json:"type"`
	Name         string            `json:"name"`
	Status       OutcomeStatus     `json:"status"`
	PersistentID string            `json:"persistentId,omitempty"`
	Severity     FailureSeverity   `json:"severity,omitempty"`
	Reason       string            `json:"reason,omitempty"`
}

// FabricatedEntity records an ancestor created on behalf of an orphan program
type FabricatedEntity struct {
	Type         models.EntityType `json:"type"`
	Name         string            `json:"name"`
	PersistentID string            `json:"persistentId"`
	ForEntityID  string            `json:"forEntityId"`
}

// ImportResult is returned by every reconciliation call.
// Success implies the whole batch was committed.
type ImportResult struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Created    int                `json:"created"`
	Reused     int                `json:"reused"`
	Outcomes   []EntityOutcome    `json:"outcomes,omitempty"`
	Fabricated []FabricatedEntity `json:"fabricated,omitempty"`
}
