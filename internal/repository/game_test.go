package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/engine"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGameRepository(t *testing.T) {
	ctx, st := suite.New(t)

	testGameRepository(ctx, t, NewGameRepository(st.Storage, time.Minute))

	t.Run("Keys expire with the session ttl", func(t *testing.T) {
		gameRepo := NewGameRepository(st.Storage, time.Minute)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, entity.NewGame("ttl")))

		ttl, err := st.Storage.TTL(ctx, "game:ttl").Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})
}

func TestMemoryGameRepository(t *testing.T) {
	testGameRepository(context.Background(), t, NewMemoryGameRepository())

	t.Run("Stored game is a copy", func(t *testing.T) {
		ctx := context.Background()
		gameRepo := NewMemoryGameRepository()

		// Given: a stored finished game
		game := entity.NewGame("copy")
		game.Board = engine.MustParseBoard("XXXOO....")
		require.NoError(t, game.UpdateGameState())
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: the caller keeps mutating its game
		game.Line[0] = 8
		game.Board[8] = engine.O

		// Then: the stored game is unaffected
		stored, err := gameRepo.GetByID(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, stored.Line)
		assert.Equal(t, engine.Empty, stored.Board[8])
	})
}

func testGameRepository(ctx context.Context, t *testing.T, gameRepo GameRepository) {
	t.Helper()

	t.Run("CreateOrUpdate_And_GetByID", func(t *testing.T) {
		// Given: a game with a move played
		game := entity.NewGame("123")
		require.NoError(t, game.MakeTurn(entity.HumanMark, 4))

		// When: the game is stored and read back
		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		assert.Equal(t, game, retrievedGame)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Empty(t, retrievedGame.ID)
	})

	t.Run("DeleteByID_Success", func(t *testing.T) {
		game := entity.NewGame("456")
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: DeleteByID is called with existing ID
		require.NoError(t, gameRepo.DeleteByID(ctx, game.ID))

		// Then: the game is gone
		_, err := gameRepo.GetByID(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		err := gameRepo.DeleteByID(ctx, "9999999")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
