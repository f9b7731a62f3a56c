package domain

import "game_arena/internal/domain/game"

// RecommendedMove is one ranked engine suggestion. Pass is encoded as (-1,-1).
type RecommendedMove struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Winrate   float64 `json:"winrate"`
	ScoreLead float64 `json:"scoreLead"`
	Order     int     `json:"order"`
}

func (m RecommendedMove) Point() game.Point {
	return game.Point{X: m.X, Y: m.Y}
}

func (m RecommendedMove) IsPass() bool {
	return m.Point().IsPass()
}

// AnalysisResult is what the game server gets back from the analysis collaborator.
type AnalysisResult struct {
	BlackConfirmed []game.Point      `json:"blackConfirmed"`
	WhiteConfirmed []game.Point      `json:"whiteConfirmed"`
	BlackLikely    []game.Point      `json:"blackLikely"`
	WhiteLikely    []game.Point      `json:"whiteLikely"`
	Ownership      [][]float64       `json:"ownership"` // [y][x], +1 black .. -1 white
	Recommended    []RecommendedMove `json:"recommended"`
	ScoreLead      float64           `json:"scoreLead"`
	Winrate        float64           `json:"winrate"`
}

type AnalyzeOptions struct {
	MaxVisits int
}

const (
	ConfirmedThreshold = 0.85
	LikelyThreshold    = 0.5
)
