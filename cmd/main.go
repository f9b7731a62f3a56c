package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"game_arena/internal/adapters"
	"game_arena/internal/bootstrap"
	authDelivery "game_arena/internal/delivery/auth"
	gameDelivery "game_arena/internal/delivery/game"
	katagoDelivery "game_arena/internal/delivery/katago"
	ownMiddleware "game_arena/internal/middleware"
	repo "game_arena/internal/repository"
	"game_arena/internal/usecase/ai"
	"game_arena/internal/usecase/engine"
	gameuc "game_arena/internal/usecase/game"
	"game_arena/internal/usecase/loop"
	"game_arena/internal/usecase/summary"
)

type mainDeliveryHandler struct {
	auth   *authDelivery.AuthHandler
	katago *katagoDelivery.KatagoHandler
	game   *gameDelivery.GameHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		NewLogger("info").Errorw("failed to setup configuration", "error", err)
		return
	}
	logger := NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.mongoAdapter.Close(context.Background())
	defer databaseAdapters.redisAdapter.Close(context.Background())

	analysisConn, err := grpc.NewClient(cfg.AnalysisGrpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Fatalw("failed to dial analysis service", "addr", cfg.AnalysisGrpcAddr, "error", err)
	}
	defer analysisConn.Close()

	redisClient := databaseAdapters.redisAdapter.GetClient()
	mongoDB := databaseAdapters.mongoAdapter.Database

	sessions := repo.NewSessionRepository(redisClient, logger)
	presence := repo.NewRedisPresence(redisClient)
	archive := repo.NewMongoArchive(mongoDB, logger)
	analysis := repo.NewAnalysisRepository(analysisConn, logger)

	rnd := engine.NewLockedRand(time.Now().UnixNano())
	machine := engine.NewMachine(engine.Config{
		HeartbeatTimeout:    cfg.HeartbeatTimeout(),
		DisconnectGrace:     cfg.DisconnectGrace(),
		DisconnectForfeit:   cfg.DisconnectForfeitCount,
		NoContestMoveWindow: cfg.NoContestMoveWindow,
		NoContestOffer:      cfg.NoContestOffer(),
		PhaseTimeout:        cfg.PhaseTimeout(),
		ItemUseTimeout:      cfg.ItemUseTimeout(),
	}, logger, rnd)

	heuristic := ai.NewHeuristicBot(ai.ProbabilityGate(rnd), rnd)
	player := ai.NewPlayer(heuristic, ai.NewStrategicBot(analysis, heuristic, cfg.AnalysisTimeout(), logger), rnd, logger)
	scorer := summary.NewScorer(analysis, cfg.AnalysisTimeout(), logger)
	emitter := summary.NewEmitter(repo.NewRedisSummaryPublisher(redisClient, cfg.SummaryChannel, logger), archive, logger)

	gameUC := gameuc.NewGameUseCase(sessions, presence, repo.NewMongoUserDirectory(mongoDB, logger), archive, machine, logger)
	serverLoop := loop.NewLoop(sessions, presence, gameUC, machine, player, scorer, emitter, cfg.TickInterval(), logger)

	restored, err := sessions.LoadActiveSessions(ctx)
	if err != nil {
		logger.Fatalw("failed to load active sessions", "error", err)
	}
	logger.Infow("active sessions restored", "count", len(restored))

	handlers := &mainDeliveryHandler{
		auth:   authDelivery.NewAuthHandler(repo.NewRedisLoginSessions(redisClient), logger),
		katago: katagoDelivery.NewKatagoHandler(gameUC, analysis, cfg.AnalysisTimeout(), logger),
		game:   gameDelivery.NewGameHandler(gameUC, logger),
	}
	r := chi.NewRouter()
	handlers.Router(r, cfg.IsLocalCors)

	server := &http.Server{Addr: ":" + cfg.ServerPort, Handler: r}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		serverLoop.Run(ctx)
	}()

	go func() {
		<-ctx.Done()
		logger.Info("received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("http shutdown failed", "error", err)
		}
	}()

	logger.Infow("server is running", "port", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("failed to start server", "error", err)
	}
	<-loopDone
}

func NewLogger(level string) *zap.SugaredLogger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Middleware)
		r.Delete("/logout", h.auth.Logout)
		h.game.Routes(r)
		r.Get("/games/{id}/analysis", h.katago.HandleAnalyze)
	})
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatalw("failed to initialize mongo", "error", err)
	}

	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatalw("failed to initialize redis", "error", err)
	}

	log.Info("database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}
