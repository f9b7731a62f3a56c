package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"game_arena/internal/bootstrap"
	"game_arena/microservices/analysisrpc"
	"game_arena/microservices/repository"
	"game_arena/microservices/usecase"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Errorw("failed to setup configuration", "error", err)
		return
	}

	lis, err := net.Listen("tcp", cfg.AnalysisListenAddr)
	if err != nil {
		logger.Fatalw("cant listen port", "addr", cfg.AnalysisListenAddr, "error", err)
	}

	engine, err := repository.NewKatagoClient(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to start katago", "error", err)
	}
	defer engine.Close()

	server := grpc.NewServer()
	analysisrpc.RegisterAnalysisServer(server, usecase.NewAnalysisUseCase(engine, logger))

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down analysis server")
		server.GracefulStop()
	}()

	logger.Infow("starting analysis server", "addr", cfg.AnalysisListenAddr)
	if err := server.Serve(lis); err != nil {
		logger.Errorw("analysis server stopped", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	return logger.Sugar()
}
