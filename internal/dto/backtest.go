package dto

type BacktestRequest struct {
	File             string    `json:"file"`
	Cash             float64   `json:"cash" validate:"gte=0"`
	Commission       float64   `json:"commission" validate:"gte=0,lt=1"`
	Slippage         float64   `json:"slippage" validate:"gte=0,lt=1"`
	PositionFraction float64   `json:"position_fraction" validate:"gte=0,lte=1"`
	EntryScores      []float64 `json:"entry_scores"`
	ExitScores       []float64 `json:"exit_scores"`
}
