package ai

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"game_arena/internal/domain"
	"game_arena/internal/domain/game"
	"game_arena/internal/metrics"
	"game_arena/internal/usecase/board"
)

// Analyzer is the analysis collaborator. It can be slow and its answer may be
// stale relative to the session it was asked about.
type Analyzer interface {
	Analyze(ctx context.Context, s *game.Session, opts domain.AnalyzeOptions) (domain.AnalysisResult, error)
}

var visitsByDifficulty = [...]int{1, 2, 5, 10, 25, 50, 100, 200, 400, 800}

// MaxVisits maps difficulty 1..10 to a search budget.
func MaxVisits(difficulty int) int {
	i := min(max(difficulty, 1), len(visitsByDifficulty)) - 1
	return visitsByDifficulty[i]
}

type StrategicBot struct {
	analyzer Analyzer
	fallback *HeuristicBot
	timeout  time.Duration
	log      *zap.SugaredLogger
}

func NewStrategicBot(analyzer Analyzer, fallback *HeuristicBot, timeout time.Duration, log *zap.SugaredLogger) *StrategicBot {
	return &StrategicBot{analyzer: analyzer, fallback: fallback, timeout: timeout, log: log}
}

// Decide asks for ranked suggestions and plays the first that is still legal.
// When the analysis fails or times out the heuristic bot plays instead.
func (b *StrategicBot) Decide(ctx context.Context, s *game.Session, me game.Color, difficulty int) Decision {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	res, err := b.analyzer.Analyze(ctx, s, domain.AnalyzeOptions{MaxVisits: MaxVisits(difficulty)})
	if err != nil {
		b.log.Warnw("analysis unavailable, falling back to heuristic play", "session", s.ID, "error", err)
		metrics.AIDecisions.WithLabelValues("strategic", "fallback").Inc()
		return b.fallback.Decide(s, me, difficulty)
	}
	d := b.Reconcile(s, me, res.Recommended)
	metrics.AIDecisions.WithLabelValues("strategic", d.Step).Inc()
	return d
}

// Reconcile validates suggestions in rank order against the authoritative board.
func (b *StrategicBot) Reconcile(s *game.Session, me game.Color, recs []domain.RecommendedMove) Decision {
	ranked := append([]domain.RecommendedMove(nil), recs...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Order < ranked[j].Order })

	size := s.Board.Size()
	index := len(s.MoveHistory)
	for _, rec := range ranked {
		if rec.IsPass() {
			if p, ok := captureInsteadOfPass(s, me); ok {
				b.log.Infow("overriding suggested pass with a capture", "session", s.ID, "move", board.ToGTP(p, size))
				return move(p, "pass_override")
			}
			return passDecision
		}
		res := board.AttemptMove(s.Board, game.Move{X: rec.X, Y: rec.Y, Color: me}, s.Ko, index, board.Options{})
		if !res.Valid {
			b.log.Warnw("rejected engine suggestion", "session", s.ID, "move", board.ToGTP(rec.Point(), size), "order", rec.Order, "reason", res.Reason)
			continue
		}
		return move(rec.Point(), "suggestion")
	}

	legal := board.LegalPoints(s.Board, me, s.Ko, index)
	if len(legal) > 0 {
		if p, ok := captureInsteadOfPass(s, me); ok {
			return move(p, "scan")
		}
		return move(legal[b.fallback.rnd.Intn(len(legal))], "scan")
	}
	b.log.Warnw("no legal move left for strategic AI, resigning", "session", s.ID, "color", me.String())
	return Decision{Kind: KindResign, Step: "resign"}
}

// captureInsteadOfPass finds a legal move that takes away an opponent group's last liberty.
func captureInsteadOfPass(s *game.Session, me game.Color) (game.Point, bool) {
	index := len(s.MoveHistory)
	best, bestN := game.Point{}, 0
	for _, p := range board.Liberties(s.Board, me.Opponent()) {
		res := board.AttemptMove(s.Board, game.Move{X: p.X, Y: p.Y, Color: me}, s.Ko, index, board.Options{})
		if res.Valid && len(res.Captured) > bestN {
			best, bestN = p, len(res.Captured)
		}
	}
	return best, bestN > 0
}
