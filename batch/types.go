// Package batch defines the domain model for electronic batch records:
// the record itself, its lifecycle status machine, and the adapter that
// seeds records from QMIB templates.
package batch

import "time"

// Status represents the lifecycle state of a batch execution.
type Status string

const (
	// StatusPlanned indicates the batch is defined but not yet executing.
	StatusPlanned Status = "planned"

	// StatusInProgress indicates the batch is currently executing.
	StatusInProgress Status = "in_progress"

	// StatusCompleted indicates the batch finished normally.
	StatusCompleted Status = "completed"

	// StatusHalted indicates the batch was stopped before completion.
	StatusHalted Status = "halted"

	// StatusAborted indicates the batch was cancelled.
	StatusAborted Status = "aborted"
)

// Valid reports whether s is a member of the status enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusHalted, StatusAborted:
		return true
	}
	return false
}

// Terminal reports whether s ends a batch execution.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusHalted, StatusAborted:
		return true
	}
	return false
}

// Record is a batch execution record tracked by EBR.
//
// BatchID is the immutable identity key; an upsert with an existing id
// replaces every other field but never the id. StartedAt is set only when
// transitioning into in_progress; CompletedAt only when transitioning into a
// terminal status.
type Record struct {
	BatchID     string     `json:"batch_id"`
	RecipeID    string     `json:"recipe_id"`
	Status      Status     `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Data holds free-form contextual scalars captured during the batch.
	Data Data `json:"data"`

	// Equipment lists equipment identifiers involved in the batch.
	// Order is significant as provided; duplicates are allowed.
	Equipment []string `json:"equipment"`
}

// EquipmentState is a snapshot of a single equipment item as reported by QMIB.
type EquipmentState struct {
	EquipmentID string    `json:"equipment_id"`
	Status      string    `json:"status"`
	MeasuredAt  time.Time `json:"measured_at"`
	Attributes  Data      `json:"attributes"`
}

// EventAcknowledgement is the payload for acknowledging a QMIB event or
// alarm. Transient: relayed to QMIB, never persisted locally.
type EventAcknowledgement struct {
	EventID        string    `json:"event_id"`
	AcknowledgedBy string    `json:"acknowledged_by"`
	Comment        *string   `json:"comment,omitempty"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
}
