package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"game_arena/internal/domain"
	"game_arena/microservices/analysisrpc"
)

type KatagoStore interface {
	Query(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResponse, error)
}

// AnalysisUseCase serves analysis queries from the game server.
type AnalysisUseCase struct {
	store KatagoStore
	log   *zap.SugaredLogger
}

func NewAnalysisUseCase(store KatagoStore, log *zap.SugaredLogger) *AnalysisUseCase {
	return &AnalysisUseCase{store: store, log: log}
}

func (k *AnalysisUseCase) Analyze(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req domain.AnalysisRequest
	if err := analysisrpc.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode query: %v", err)
	}
	if req.BoardXSize <= 0 || req.BoardYSize <= 0 {
		return nil, status.Error(codes.InvalidArgument, "board size required")
	}
	req.IncludeOwnership = true

	resp, err := k.store.Query(ctx, req)
	if err != nil {
		k.log.Errorw("analysis query failed", "id", req.ID, "error", err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, status.FromContextError(err).Err()
		}
		return nil, status.Errorf(codes.Unavailable, "analysis failed: %v", err)
	}
	k.log.Debugw("analysis done", "id", req.ID, "visits", resp.RootInfo.Visits)
	return analysisrpc.ToStruct(resp)
}
