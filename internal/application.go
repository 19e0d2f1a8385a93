package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/config"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-ai/internal/service"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-ai/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-ai/transport/rest"
	"github.com/rocketscienceinc/tictactoe-ai/transport/websocket"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	game  repository.GameRepository
	score repository.ScoreRepository
	close func()
}

// RunApp - runs the application until SIGINT/SIGTERM or a server failure.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := newRepositories(ctx, log, conf)
	if err != nil {
		return err
	}
	defer repos.close()

	gameController := tictactoe.NewGameController(service.NewBotService(logger))
	gameUseCase := usecase.NewGameUseCase(
		logger,
		service.NewGameService(repos.game),
		service.NewScoreService(repos.score),
		gameController,
		conf.Bot.ThinkingDelay,
	)

	wsServer := websocket.New(logger, gameUseCase)

	router := rest.NewRouter(rest.NewHandlers(logger, gameUseCase))
	router.Handle("/ws", wsServer)

	srv := &http.Server{
		Addr:              ":" + conf.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	errg.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		wsServer.Close()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}

		return nil
	})

	return errg.Wait()
}

func newRepositories(ctx context.Context, log *slog.Logger, conf *config.Config) (*repositories, error) {
	switch conf.Storage {
	case config.StorageMemory:
		return &repositories{
			game:  repository.NewMemoryGameRepository(),
			score: repository.NewMemoryScoreRepository(),
			close: func() {},
		}, nil
	case config.StorageRedis:
		addr := conf.Redis.GetRedisAddr()
		if addr == "" {
			return nil, apperror.ErrEmptyRedisAddr
		}

		client, err := storage.NewRedisStorage(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return &repositories{
			game:  repository.NewGameRepository(client, conf.SessionTTL),
			score: repository.NewScoreRepository(client, conf.SessionTTL),
			close: func() {
				if err := client.Close(); err != nil {
					log.Error("could not close redis storage", "error", err)
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownStorage, conf.Storage)
	}
}
