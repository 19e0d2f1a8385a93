package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

type GameUseCase interface {
	NewSession(ctx context.Context) (*entity.Game, *entity.Score, error)

	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	GetScore(ctx context.Context, gameID string) (*entity.Score, error)

	MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error)
	ResetGame(ctx context.Context, gameID string) (*entity.Game, error)

	EndSession(ctx context.Context, gameID string) error
}

type gameService interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, gameID string) error
}

type scoreService interface {
	CreateScore(ctx context.Context, sessionID string) (*entity.Score, error)
	GetScore(ctx context.Context, sessionID string) (*entity.Score, error)
	RecordResult(ctx context.Context, game *entity.Game) (*entity.Score, error)
	KeepAlive(ctx context.Context, sessionID string) error
	DeleteScore(ctx context.Context, sessionID string) error
}

type gameController interface {
	HumanTurn(game *entity.Game, cell int) error
	BotTurn(game *entity.Game) error
}

// sessionLocks is the number of mutexes session ids are hashed onto. Unrelated sessions may
// share a mutex; memory stays fixed however many ids are seen.
const sessionLocks = 256

type gameUseCase struct {
	logger *slog.Logger

	gameService  gameService
	scoreService scoreService
	controller   gameController

	thinkingDelay time.Duration
	locks         [sessionLocks]sync.Mutex
}

// NewGameUseCase - thinkingDelay is waited between the human's move and the bot's reply.
func NewGameUseCase(
	logger *slog.Logger,
	gameService gameService,
	scoreService scoreService,
	controller gameController,
	thinkingDelay time.Duration,
) GameUseCase {
	return &gameUseCase{
		logger:        logger.With("component", "game"),
		gameService:   gameService,
		scoreService:  scoreService,
		controller:    controller,
		thinkingDelay: thinkingDelay,
	}
}

func (that *gameUseCase) NewSession(ctx context.Context) (*entity.Game, *entity.Score, error) {
	game, err := that.gameService.CreateGame(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create game: %w", err)
	}

	score, err := that.scoreService.CreateScore(ctx, game.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create score: %w", err)
	}

	that.logger.Info("session started", "game_id", game.ID)

	return game, score, nil
}

func (that *gameUseCase) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) GetScore(ctx context.Context, gameID string) (*entity.Score, error) {
	score, err := that.scoreService.GetScore(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	return score, nil
}

// MakeTurn - applies the human's move, waits the thinking delay and applies the bot's reply.
// Nothing is stored unless both moves succeeded. A finished round is counted before the game is
// saved, and counting is idempotent, so retrying after any failure counts it exactly once.
func (that *gameUseCase) MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "game_id", gameID)

	unlock := that.lock(gameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err = that.controller.HumanTurn(game, cell); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if game.IsBotTurn() {
		if err = that.think(ctx); err != nil {
			return nil, err
		}

		if err = that.controller.BotTurn(game); err != nil {
			return nil, fmt.Errorf("failed to make bot turn: %w", err)
		}
	}

	if err = that.scoreService.KeepAlive(ctx, gameID); err != nil {
		return nil, fmt.Errorf("failed to keep session alive: %w", err)
	}

	if game.IsFinished() {
		score, err := that.scoreService.RecordResult(ctx, game)
		if err != nil {
			return nil, fmt.Errorf("failed to record result: %w", err)
		}

		log.Info("game finished", "winner", game.Winner, "round", game.Round, "score", score)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// ResetGame - replaces the board with an empty one. The score is kept.
func (that *gameUseCase) ResetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	unlock := that.lock(gameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	game.Reset()

	if err = that.scoreService.KeepAlive(ctx, gameID); err != nil {
		return nil, fmt.Errorf("failed to keep session alive: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// EndSession - removes the game and its score.
func (that *gameUseCase) EndSession(ctx context.Context, gameID string) error {
	unlock := that.lock(gameID)
	defer unlock()

	if err := that.gameService.DeleteGame(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if err := that.scoreService.DeleteScore(ctx, gameID); err != nil && !errors.Is(err, apperror.ErrScoreNotFound) {
		return fmt.Errorf("failed to delete score: %w", err)
	}

	that.logger.Info("session ended", "game_id", gameID)

	return nil
}

func (that *gameUseCase) lockFor(gameID string) *sync.Mutex {
	return &that.locks[xxhash.Sum64String(gameID)%sessionLocks]
}

func (that *gameUseCase) lock(gameID string) func() {
	mu := that.lockFor(gameID)
	mu.Lock()

	return mu.Unlock
}

func (that *gameUseCase) think(ctx context.Context) error {
	if that.thinkingDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(that.thinkingDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", apperror.ErrThinkingAborted, ctx.Err())
	case <-timer.C:
		return nil
	}
}
