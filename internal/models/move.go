package models

import (
	"encoding/json"
	"time"
)

// MoveStatus enumerates the lifecycle states of a single defrag move.
type MoveStatus string

const (
	MovePending  MoveStatus = "pending"
	MoveApproved MoveStatus = "approved"
	MoveRejected MoveStatus = "rejected"
	MoveApplied  MoveStatus = "applied"
)

// MoveAction is a user decision applied to a pending move.
type MoveAction string

const (
	ActionApprove MoveAction = "approve"
	ActionReject  MoveAction = "reject"
)

// Valid reports whether the action is one the ledger accepts.
func (a MoveAction) Valid() bool {
	return a == ActionApprove || a == ActionReject
}

// DefragMove is a single suggested booking relocation. The payload is an
// opaque document produced by the analysis run; the ledger only ever reads
// the move's date range out of it, everything else is passed through for
// presentation.
//
// Once IsProcessed or IsRejected is set the move is finalized and no further
// transition is legal.
type DefragMove struct {
	AnalyzedAt        time.Time       `json:"analyzed_at"`
	CreatedAt         time.Time       `json:"created_at"`
	MoveFrom          time.Time       `json:"move_from"`
	MoveTo            time.Time       `json:"move_to"`
	SuggestedBy       *string         `json:"suggested_by,omitempty"`
	SuggestedAt       *time.Time      `json:"suggested_at,omitempty"`
	ApprovedBy        *string         `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	RejectedBy        *string         `json:"rejected_by,omitempty"`
	RejectedAt        *time.Time      `json:"rejected_at,omitempty"`
	ProcessedBy       *string         `json:"processed_by,omitempty"`
	ProcessedAt       *time.Time      `json:"processed_at,omitempty"`
	BatchID           *int64          `json:"batch_id,omitempty"`
	PropertyCode      string          `json:"property_code"`
	Status            MoveStatus      `json:"status"`
	HolidayPeriodName string          `json:"holiday_period_name,omitempty"`
	HolidayType       string          `json:"holiday_type,omitempty"`
	Payload           json.RawMessage `json:"payload,omitempty"`
	ID                int64           `json:"id"`
	HolidayImportance int             `json:"holiday_importance,omitempty"`
	IsProcessed       bool            `json:"is_processed"`
	IsRejected        bool            `json:"is_rejected"`
	IsHolidayMove     bool            `json:"is_holiday_move"`
}

// Finalized reports whether the move has reached a terminal state.
func (m *DefragMove) Finalized() bool {
	return m.IsProcessed || m.IsRejected
}

// RawMove is a candidate move as supplied by the analysis run, before it is
// attached to a batch. MoveFrom/MoveTo bound the date range the relocation
// touches; Payload carries the rest of the suggestion untouched.
type RawMove struct {
	AnalyzedAt  time.Time       `json:"analyzed_at"`
	MoveFrom    time.Time       `json:"move_from"`
	MoveTo      time.Time       `json:"move_to"`
	SuggestedBy string          `json:"suggested_by,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}
