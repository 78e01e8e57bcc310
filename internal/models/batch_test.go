package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveBatch_CompletionPercentage(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		processed int
		rejected  int
		want      float64
	}{
		{name: "empty batch", total: 0, processed: 0, rejected: 0, want: 0},
		{name: "nothing finalized", total: 4, processed: 0, rejected: 0, want: 0},
		{name: "half done", total: 4, processed: 1, rejected: 1, want: 50.0},
		{name: "two of three rounds to one decimal", total: 3, processed: 1, rejected: 1, want: 66.7},
		{name: "one of three", total: 3, processed: 1, rejected: 0, want: 33.3},
		{name: "all done", total: 3, processed: 2, rejected: 1, want: 100.0},
		{name: "one of seven", total: 7, processed: 1, rejected: 0, want: 14.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &MoveBatch{
				TotalMoves:     tt.total,
				ProcessedMoves: tt.processed,
				RejectedMoves:  tt.rejected,
			}
			assert.Equal(t, tt.want, b.CompletionPercentage())
		})
	}
}

func TestMoveBatch_IsComplete(t *testing.T) {
	b := &MoveBatch{TotalMoves: 3, ProcessedMoves: 2, RejectedMoves: 0}
	assert.False(t, b.IsComplete())

	b.RejectedMoves = 1
	assert.True(t, b.IsComplete())
}

func TestMoveBatch_NextStatus(t *testing.T) {
	b := &MoveBatch{TotalMoves: 3}
	assert.Equal(t, BatchPending, b.NextStatus())

	b.ProcessedMoves = 1
	assert.Equal(t, BatchProcessing, b.NextStatus())

	b.RejectedMoves = 2
	assert.Equal(t, BatchCompleted, b.NextStatus())
}
