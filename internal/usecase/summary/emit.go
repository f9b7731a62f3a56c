package summary

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"game_arena/internal/domain/game"
	"game_arena/internal/metrics"
	"game_arena/internal/usecase/record"
)

// Publisher hands summary records to the reward pipeline.
type Publisher interface {
	Publish(ctx context.Context, records []game.SummaryRecord) error
}

// Archive keeps finished sessions. Writes are keyed by session id so a retry
// overwrites instead of duplicating.
type Archive interface {
	Archive(ctx context.Context, s *game.Session, records []game.SummaryRecord, sgf string) error
}

// Build returns one record per participant. It is pure: currencies, XP and
// ratings are the reward pipeline's business.
func Build(s *game.Session) []game.SummaryRecord {
	if s.Result == nil {
		return nil
	}
	scores := s.Result.Scores
	if scores == nil {
		scores = Counters(s)
	}
	noContest := s.Result.Reason == game.ReasonNoContest
	out := make([]game.SummaryRecord, 0, 2)
	for _, p := range s.Participants() {
		c := s.ColorOf(p.UserID)
		out = append(out, game.SummaryRecord{
			SessionID: s.ID,
			Mode:      s.Mode,
			UserID:    p.UserID,
			Color:     c,
			Winner:    s.Result.Winner,
			WinnerID:  s.Result.WinnerID,
			WinReason: s.Result.Reason,
			Won:       !noContest && s.Result.Winner == c,
			NoContest: noContest,
			Score:     scores[c],
			Opponent:  scores[c.Opponent()],
			Moves:     len(s.MoveHistory),
		})
	}
	return out
}

type Emitter struct {
	pub     Publisher
	archive Archive
	log     *zap.SugaredLogger
}

func NewEmitter(pub Publisher, archive Archive, log *zap.SugaredLogger) *Emitter {
	return &Emitter{pub: pub, archive: archive, log: log}
}

// Emit archives and publishes the summary of a terminal session and returns the
// session flagged as emitted. A session already flagged is returned untouched
// without publishing. On error the flag stays unset so the next tick retries.
func (e *Emitter) Emit(ctx context.Context, s *game.Session) (*game.Session, error) {
	if s.StatsUpdated {
		return s, nil
	}
	if !s.Status.IsTerminal() || s.Result == nil {
		return nil, fmt.Errorf("emit summary for %s in status %s", s.ID, s.Status)
	}
	records := Build(s)
	sgfText, _ := record.Encode(s)

	if e.archive != nil {
		if err := e.archive.Archive(ctx, s, records, sgfText); err != nil {
			return nil, fmt.Errorf("archive session %s: %w", s.ID, err)
		}
	}
	if err := e.pub.Publish(ctx, records); err != nil {
		return nil, fmt.Errorf("publish summary %s: %w", s.ID, err)
	}

	next := s.Clone()
	next.StatsUpdated = true
	next.Version++
	metrics.Summaries.Inc()
	e.log.Infow("summary emitted", "session", s.ID, "winner", s.Result.Winner.String(), "reason", s.Result.Reason)
	return next, nil
}
