package domain

// AnalysisRequest is one query line for the `katago analysis` engine.
type AnalysisRequest struct {
	ID               string      `json:"id"`
	InitialStones    [][2]string `json:"initialStones,omitempty"` // [["B","D4"], ["W","Q16"], ...]
	InitialPlayer    string      `json:"initialPlayer,omitempty"`
	Moves            [][2]string `json:"moves"`
	Rules            string      `json:"rules"`
	Komi             float64     `json:"komi"`
	BoardXSize       int         `json:"boardXSize"`
	BoardYSize       int         `json:"boardYSize"`
	MaxVisits        int         `json:"maxVisits,omitempty"`
	IncludeOwnership bool        `json:"includeOwnership,omitempty"`
}

// AnalysisResponse is the engine's answer to an AnalysisRequest with the same ID.
type AnalysisResponse struct {
	ID             string     `json:"id"`
	TurnNumber     int        `json:"turnNumber"`
	IsDuringSearch bool       `json:"isDuringSearch"`
	RootInfo       RootInfo   `json:"rootInfo"`
	MoveInfos      []MoveInfo `json:"moveInfos"`
	// Ownership is row-major from the top-left; the engine runs with reportAnalysisWinratesAs = BLACK,
	// so +1 means black.
	Ownership []float64 `json:"ownership,omitempty"`
	Error     string    `json:"error,omitempty"`
}

type RootInfo struct {
	CurrentPlayer string  `json:"currentPlayer"` // "W" or "B"
	Winrate       float64 `json:"winrate"`
	ScoreLead     float64 `json:"scoreLead"`
	ScoreSelfplay float64 `json:"scoreSelfplay"`
	ScoreStdev    float64 `json:"scoreStdev"`
	Utility       float64 `json:"utility"`
	Visits        int     `json:"visits"`
}

type MoveInfo struct {
	Move      string   `json:"move"`
	Winrate   float64  `json:"winrate"`
	Visits    int      `json:"visits"`
	ScoreLead float64  `json:"scoreLead"`
	Order     int      `json:"order"`
	PV        []string `json:"pv"`
}
