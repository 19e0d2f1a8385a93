package repository

import (
	"context"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

// In-memory repositories for running without redis. Values are copied on the way in and out,
// so callers never share state with the store. Entries do not expire.

type memGame struct {
	games *xsync.MapOf[string, entity.Game]
}

func NewMemoryGameRepository() GameRepository {
	return &memGame{
		games: xsync.NewMapOf[string, entity.Game](),
	}
}

func (that *memGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.games.Store(game.ID, cloneGame(game))

	return nil
}

func (that *memGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	game, ok := that.games.Load(id)
	if !ok {
		return &entity.Game{}, apperror.ErrGameNotFound
	}

	game = cloneGame(&game)

	return &game, nil
}

func (that *memGame) DeleteByID(_ context.Context, id string) error {
	if _, ok := that.games.LoadAndDelete(id); !ok {
		return apperror.ErrGameNotFound
	}

	return nil
}

func cloneGame(game *entity.Game) entity.Game {
	clone := *game
	clone.Line = slices.Clone(game.Line)

	return clone
}

type memScore struct {
	scores *xsync.MapOf[string, entity.Score]
}

func NewMemoryScoreRepository() ScoreRepository {
	return &memScore{
		scores: xsync.NewMapOf[string, entity.Score](),
	}
}

func (that *memScore) Save(_ context.Context, sessionID string, score *entity.Score) error {
	that.scores.Store(sessionID, *score)

	return nil
}

func (that *memScore) GetByID(_ context.Context, sessionID string) (*entity.Score, error) {
	score, ok := that.scores.Load(sessionID)
	if !ok {
		return &entity.Score{}, apperror.ErrScoreNotFound
	}

	return &score, nil
}

func (that *memScore) Touch(_ context.Context, sessionID string) error {
	if _, ok := that.scores.Load(sessionID); !ok {
		return apperror.ErrScoreNotFound
	}

	return nil
}

func (that *memScore) DeleteByID(_ context.Context, sessionID string) error {
	if _, ok := that.scores.LoadAndDelete(sessionID); !ok {
		return apperror.ErrScoreNotFound
	}

	return nil
}
