package summary

import (
	"context"
	"time"

	"go.uber.org/zap"

	"game_arena/internal/domain"
	"game_arena/internal/domain/game"
	"game_arena/internal/usecase/board"
)

const (
	scoringVisits = 200
	// basePoint is awarded for every opponent base stone captured.
	basePoint = 5
)

type Analyzer interface {
	Analyze(ctx context.Context, s *game.Session, opts domain.AnalyzeOptions) (domain.AnalysisResult, error)
}

type Scorer struct {
	analyzer Analyzer
	timeout  time.Duration
	log      *zap.SugaredLogger
}

func NewScorer(analyzer Analyzer, timeout time.Duration, log *zap.SugaredLogger) *Scorer {
	return &Scorer{analyzer: analyzer, timeout: timeout, log: log}
}

// Score computes the final breakdown of a Go-family board: territory, captures and
// dead stones from the ownership map, plus base and hidden bonuses, komi to white.
// Without a usable ownership map it falls back to flood-fill area counting.
func (sc *Scorer) Score(ctx context.Context, s *game.Session) map[game.Color]game.ScoreBreakdown {
	out := map[game.Color]game.ScoreBreakdown{game.Black: {}, game.White: {}}

	if own, ok := sc.ownership(ctx, s); ok {
		for y := range s.Board {
			for x := range s.Board[y] {
				v := own[y][x]
				owner := game.Empty
				switch {
				case v >= domain.LikelyThreshold:
					owner = game.Black
				case v <= -domain.LikelyThreshold:
					owner = game.White
				}
				if owner == game.Empty {
					continue
				}
				sb := out[owner]
				switch s.Board[y][x] {
				case game.Empty:
					sb.Territory++
				case owner.Opponent():
					sb.DeadStones++
					sb.Territory++
				}
				out[owner] = sb
			}
		}
	} else {
		for c, ac := range board.AreaScore(s.Board) {
			sb := out[c]
			sb.Territory = float64(ac.Territory)
			out[c] = sb
		}
	}

	for _, c := range []game.Color{game.Black, game.White} {
		sb := out[c]
		sb.Captures = float64(s.Captures[c])
		if s.Base != nil {
			sb.BaseBonus = float64(s.Base.Captured[c] * basePoint)
		}
		if s.Hidden != nil {
			sb.HiddenBonus = float64(s.Hidden.Captured[c])
		}
		if c == game.White {
			sb.Komi = s.Settings.Komi
		}
		sb.Total = sb.Territory + sb.Captures + sb.DeadStones + sb.BaseBonus + sb.HiddenBonus + sb.Komi
		out[c] = sb
	}
	return out
}

func (sc *Scorer) ownership(ctx context.Context, s *game.Session) ([][]float64, bool) {
	if sc.analyzer == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, sc.timeout)
	defer cancel()

	res, err := sc.analyzer.Analyze(ctx, s, domain.AnalyzeOptions{MaxVisits: scoringVisits})
	if err != nil {
		sc.log.Warnw("ownership analysis failed, counting area", "session", s.ID, "error", err)
		return nil, false
	}
	if len(res.Ownership) != s.Board.Size() {
		sc.log.Warnw("ownership map does not match board", "session", s.ID, "rows", len(res.Ownership))
		return nil, false
	}
	for _, row := range res.Ownership {
		if len(row) != s.Board.Size() {
			return nil, false
		}
	}
	return res.Ownership, true
}

// Counters is the breakdown of modes that end on a capture count rather than territory.
func Counters(s *game.Session) map[game.Color]game.ScoreBreakdown {
	out := make(map[game.Color]game.ScoreBreakdown, 2)
	for _, c := range []game.Color{game.Black, game.White} {
		n := float64(s.Captures[c])
		out[c] = game.ScoreBreakdown{Captures: n, Total: n}
	}
	return out
}
