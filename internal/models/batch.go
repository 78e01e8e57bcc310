package models

import (
	"math"
	"time"
)

// BatchStatus enumerates the lifecycle states of a move batch.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// MoveBatch groups the defrag moves produced by one analysis run for one
// property and carries the aggregate approval/rejection counters.
// Invariant: ProcessedMoves + RejectedMoves <= TotalMoves.
type MoveBatch struct {
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	PropertyCode   string      `json:"property_code"`
	CreatedBy      string      `json:"created_by"`
	Status         BatchStatus `json:"status"`
	ID             int64       `json:"id"`
	TotalMoves     int         `json:"total_moves"`
	ProcessedMoves int         `json:"processed_moves"`
	RejectedMoves  int         `json:"rejected_moves"`
}

// IsComplete reports whether every move in the batch has been finalized.
func (b *MoveBatch) IsComplete() bool {
	return b.ProcessedMoves+b.RejectedMoves >= b.TotalMoves
}

// CompletionPercentage returns how far through approval the batch is,
// rounded to one decimal place. A batch with no moves is 0% complete.
func (b *MoveBatch) CompletionPercentage() float64 {
	if b.TotalMoves == 0 {
		return 0
	}
	pct := float64(b.ProcessedMoves+b.RejectedMoves) / float64(b.TotalMoves) * 100
	return math.Round(pct*10) / 10
}

// NextStatus derives the batch status from its counters. Pending until the
// first move is finalized, processing while partially done, completed once
// every move has been approved or rejected.
func (b *MoveBatch) NextStatus() BatchStatus {
	done := b.ProcessedMoves + b.RejectedMoves
	switch {
	case b.IsComplete():
		return BatchCompleted
	case done > 0:
		return BatchProcessing
	default:
		return BatchPending
	}
}
