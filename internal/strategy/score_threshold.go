package strategy

import "fmt"

// ScoreThreshold goes long when the signal score reaches EntryScore and closes
// the position when it falls to ExitScore.
type ScoreThreshold struct {
	EntryScore       float64
	ExitScore        float64
	PositionFraction float64
}

func NewScoreThreshold(entry, exit, fraction float64) *ScoreThreshold {
	if fraction <= 0 {
		fraction = 0.1
	}
	return &ScoreThreshold{EntryScore: entry, ExitScore: exit, PositionFraction: fraction}
}

func (st *ScoreThreshold) Name() string {
	return fmt.Sprintf("score_threshold(entry=%g,exit=%g)", st.EntryScore, st.ExitScore)
}

func (st *ScoreThreshold) Next(s Snapshot) Decision {
	if s.Position == 0 {
		if s.Score >= st.EntryScore && s.Close > 0 {
			return Decision{Action: Buy, Size: s.Equity * st.PositionFraction / s.Close}
		}
		return Decision{Action: Hold}
	}
	if s.Score <= st.ExitScore {
		return Decision{Action: Close}
	}
	return Decision{Action: Hold}
}
