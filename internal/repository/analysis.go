package repo

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"game_arena/internal/domain"
	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/usecase/board"
	"game_arena/microservices/analysisrpc"
)

// AnalysisRepository asks the analysis microservice about a session's position.
type AnalysisRepository struct {
	client *analysisrpc.AnalysisClient
	log    *zap.SugaredLogger
}

func NewAnalysisRepository(conn grpc.ClientConnInterface, log *zap.SugaredLogger) *AnalysisRepository {
	return &AnalysisRepository{client: analysisrpc.NewAnalysisClient(conn), log: log}
}

func gtpColor(c game.Color) string {
	if c == game.White {
		return "W"
	}
	return "B"
}

// requestFor sends the current position as setup stones, so captures, missiles
// and hidden stones need no replay on the engine side.
func requestFor(s *game.Session, opts domain.AnalyzeOptions) domain.AnalysisRequest {
	size := s.Board.Size()
	req := domain.AnalysisRequest{
		InitialPlayer: gtpColor(s.Current),
		Moves:         [][2]string{},
		Rules:         "chinese",
		Komi:          s.Settings.Komi,
		BoardXSize:    size,
		BoardYSize:    size,
		MaxVisits:     opts.MaxVisits,
	}
	for y := range s.Board {
		for x, c := range s.Board[y] {
			if c == game.Empty {
				continue
			}
			req.InitialStones = append(req.InitialStones, [2]string{gtpColor(c), board.ToGTP(game.Point{X: x, Y: y}, size)})
		}
	}
	return req
}

func (a *AnalysisRepository) Analyze(ctx context.Context, s *game.Session, opts domain.AnalyzeOptions) (domain.AnalysisResult, error) {
	in, err := analysisrpc.ToStruct(requestFor(s, opts))
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	out, err := a.client.Analyze(ctx, in)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", errs.ErrAnalysisUnavailable, err)
	}
	var resp domain.AnalysisResponse
	if err := analysisrpc.FromStruct(out, &resp); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: decode: %v", errs.ErrAnalysisUnavailable, err)
	}
	return a.toResult(s, resp), nil
}

func (a *AnalysisRepository) toResult(s *game.Session, resp domain.AnalysisResponse) domain.AnalysisResult {
	size := s.Board.Size()
	res := domain.AnalysisResult{
		ScoreLead: resp.RootInfo.ScoreLead,
		Winrate:   resp.RootInfo.Winrate,
	}

	if len(resp.Ownership) == size*size {
		res.Ownership = make([][]float64, size)
		for y := 0; y < size; y++ {
			res.Ownership[y] = resp.Ownership[y*size : (y+1)*size]
			for x, v := range res.Ownership[y] {
				p := game.Point{X: x, Y: y}
				switch {
				case v >= domain.ConfirmedThreshold:
					res.BlackConfirmed = append(res.BlackConfirmed, p)
				case v >= domain.LikelyThreshold:
					res.BlackLikely = append(res.BlackLikely, p)
				case v <= -domain.ConfirmedThreshold:
					res.WhiteConfirmed = append(res.WhiteConfirmed, p)
				case v <= -domain.LikelyThreshold:
					res.WhiteLikely = append(res.WhiteLikely, p)
				}
			}
		}
	}

	for _, mi := range resp.MoveInfos {
		p, err := board.FromGTP(mi.Move, size)
		if err != nil {
			a.log.Warnw("skipping unparsable engine move", "session", s.ID, "move", mi.Move, "error", err)
			continue
		}
		res.Recommended = append(res.Recommended, domain.RecommendedMove{
			X:         p.X,
			Y:         p.Y,
			Winrate:   mi.Winrate,
			ScoreLead: mi.ScoreLead,
			Order:     mi.Order,
		})
	}
	return res
}
