package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreThreshold_Next(t *testing.T) {
	st := NewScoreThreshold(8, 2, 0.1)

	tests := []struct {
		name     string
		snapshot Snapshot
		want     Decision
	}{
		{
			name:     "flat and score at entry buys ten percent of equity",
			snapshot: Snapshot{Close: 50, Score: 8, Equity: 100000},
			want:     Decision{Action: Buy, Size: 200},
		},
		{
			name:     "flat and score below entry holds",
			snapshot: Snapshot{Close: 50, Score: 7.9, Equity: 100000},
			want:     Decision{Action: Hold},
		},
		{
			name:     "long and score at exit closes",
			snapshot: Snapshot{Close: 50, Score: 2, Equity: 100000, Position: 200},
			want:     Decision{Action: Close},
		},
		{
			name:     "long and high score keeps position",
			snapshot: Snapshot{Close: 50, Score: 9, Equity: 100000, Position: 200},
			want:     Decision{Action: Hold},
		},
		{
			name:     "zero close never sizes an order",
			snapshot: Snapshot{Close: 0, Score: 9, Equity: 100000},
			want:     Decision{Action: Hold},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := st.Next(tt.snapshot)
			assert.Equal(t, tt.want.Action, got.Action)
			assert.InDelta(t, tt.want.Size, got.Size, 1e-9)
		})
	}
}

func TestScoreThreshold_DefaultFraction(t *testing.T) {
	st := NewScoreThreshold(6, 3, 0)
	assert.Equal(t, 0.1, st.PositionFraction)
	assert.Equal(t, "score_threshold(entry=6,exit=3)", st.Name())
}
