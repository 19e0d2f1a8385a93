package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/engine"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
	"github.com/rocketscienceinc/tictactoe-ai/internal/service"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errStorageIsFull = errors.New("storage is full")

func newTestUseCase(t *testing.T, delay time.Duration) GameUseCase {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewGameUseCase(
		logger,
		service.NewGameService(repository.NewMemoryGameRepository()),
		service.NewScoreService(repository.NewMemoryScoreRepository()),
		tictactoe.NewGameController(service.NewBotService(logger)),
		delay,
	)
}

type mockGameService struct {
	mock.Mock
}

func (that *mockGameService) CreateGame(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	return that.Called(ctx, game).Error(0)
}

func (that *mockGameService) DeleteGame(ctx context.Context, gameID string) error {
	return that.Called(ctx, gameID).Error(0)
}

// flakyScores fails the first failures calls to RecordResult and counts KeepAlive calls.
type flakyScores struct {
	service.ScoreService

	failures   int
	keepAlives int
}

func (that *flakyScores) RecordResult(ctx context.Context, game *entity.Game) (*entity.Score, error) {
	if that.failures > 0 {
		that.failures--
		return nil, errStorageIsFull
	}

	return that.ScoreService.RecordResult(ctx, game)
}

func (that *flakyScores) KeepAlive(ctx context.Context, sessionID string) error {
	that.keepAlives++
	return that.ScoreService.KeepAlive(ctx, sessionID)
}

// flakyGames fails the first failures saves of a finished game.
type flakyGames struct {
	service.GameService

	failures int
}

func (that *flakyGames) UpdateGame(ctx context.Context, game *entity.Game) error {
	if game.IsFinished() && that.failures > 0 {
		that.failures--
		return errStorageIsFull
	}

	return that.GameService.UpdateGame(ctx, game)
}

func newUseCaseWith(gameSvc gameService, scoreSvc scoreService) GameUseCase {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewGameUseCase(logger, gameSvc, scoreSvc, tictactoe.NewGameController(service.NewBotService(logger)), 0)
}

// playOut plays the first free cell until the game ends, retrying a turn that failed with
// errStorageIsFull.
func playOut(ctx context.Context, t *testing.T, useCase GameUseCase, game *entity.Game) (*entity.Game, int) {
	t.Helper()

	var failed int
	for game.IsOngoing() {
		next, err := useCase.MakeTurn(ctx, game.ID, game.Board.EmptyCells()[0])
		if errors.Is(err, errStorageIsFull) {
			failed++

			// the failed turn left no trace
			stored, err := useCase.GetGame(ctx, game.ID)
			require.NoError(t, err)
			require.Equal(t, game, stored)

			continue
		}

		require.NoError(t, err)
		game = next
	}

	return game, failed
}

func TestGameUseCase_NewSession(t *testing.T) {
	ctx := context.Background()
	useCase := newTestUseCase(t, 0)

	// When: a session starts
	game, score, err := useCase.NewSession(ctx)

	// Then: the board is empty, the human moves first and the score is zero
	require.NoError(t, err)
	assert.NotEmpty(t, game.ID)
	assert.Equal(t, engine.Board{}, game.Board)
	assert.Equal(t, entity.HumanMark, game.Turn)
	assert.Equal(t, &entity.Score{}, score)
}

func TestGameUseCase_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Bot answers the human move", func(t *testing.T) {
		// Given: a fresh session
		useCase := newTestUseCase(t, 0)
		game, _, err := useCase.NewSession(ctx)
		require.NoError(t, err)

		// When: the human takes a corner
		game, err = useCase.MakeTurn(ctx, game.ID, 0)

		// Then: the bot answers in the centre, the only reply that does not lose
		require.NoError(t, err)
		assert.Equal(t, engine.MustParseBoard("X...O...."), game.Board)
		assert.Equal(t, entity.HumanMark, game.Turn)
		assert.Equal(t, 4, game.LastMove)

		stored, err := useCase.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, game, stored)
	})

	t.Run("Score is recorded once per finished game", func(t *testing.T) {
		// Given: a session where the human always takes the first free cell
		useCase := newTestUseCase(t, 0)
		game, _, err := useCase.NewSession(ctx)
		require.NoError(t, err)

		// When: the game is played to the end
		for game.IsOngoing() {
			game, err = useCase.MakeTurn(ctx, game.ID, game.Board.EmptyCells()[0])
			require.NoError(t, err)
		}

		// Then: the human did not win and exactly one game was recorded
		assert.NotEqual(t, entity.PlayerX, game.Winner)

		score, err := useCase.GetScore(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, score.Games())
		assert.Zero(t, score.Human)

		// When: the human keeps clicking on the finished board
		_, err = useCase.MakeTurn(ctx, game.ID, 0)

		// Then: the move is refused and the score does not change
		require.ErrorIs(t, err, apperror.ErrGameFinished)

		again, err := useCase.GetScore(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, score, again)
	})

	t.Run("Occupied cell", func(t *testing.T) {
		useCase := newTestUseCase(t, 0)
		game, _, err := useCase.NewSession(ctx)
		require.NoError(t, err)

		game, err = useCase.MakeTurn(ctx, game.ID, 0)
		require.NoError(t, err)

		_, err = useCase.MakeTurn(ctx, game.ID, game.LastMove)

		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Unknown game", func(t *testing.T) {
		useCase := newTestUseCase(t, 0)

		_, err := useCase.MakeTurn(ctx, "missing", 0)

		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Canceled thinking leaves the stored game untouched", func(t *testing.T) {
		// Given: a bot that thinks for a long time
		useCase := newTestUseCase(t, time.Hour)
		game, _, err := useCase.NewSession(ctx)
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		// When: the request is canceled while the bot thinks
		_, err = useCase.MakeTurn(canceled, game.ID, 4)

		// Then: the turn is aborted and neither move was stored
		require.ErrorIs(t, err, apperror.ErrThinkingAborted)
		require.ErrorIs(t, err, context.Canceled)

		stored, err := useCase.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, engine.Board{}, stored.Board)
	})

	t.Run("Storage failure on update", func(t *testing.T) {
		logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
		gameSvc := &mockGameService{}
		scoreSvc := service.NewScoreService(repository.NewMemoryScoreRepository())
		_, err := scoreSvc.CreateScore(ctx, "g1")
		require.NoError(t, err)

		useCase := NewGameUseCase(
			logger,
			gameSvc,
			scoreSvc,
			tictactoe.NewGameController(service.NewBotService(logger)),
			0,
		)

		gameSvc.On("GetGameByID", mock.Anything, "g1").Return(entity.NewGame("g1"), nil).Once()
		gameSvc.On("UpdateGame", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errStorageIsFull).Once()

		_, err = useCase.MakeTurn(ctx, "g1", 4)

		require.ErrorIs(t, err, errStorageIsFull)
		gameSvc.AssertExpectations(t)
	})
}

func TestGameUseCase_FailedFinishIsCountedOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("Score write fails", func(t *testing.T) {
		// Given: a score store that fails when the finished round is recorded
		scores := &flakyScores{ScoreService: service.NewScoreService(repository.NewMemoryScoreRepository()), failures: 1}
		useCase := newUseCaseWith(service.NewGameService(repository.NewMemoryGameRepository()), scores)

		game, _, err := useCase.NewSession(ctx)
		require.NoError(t, err)

		// When: the game is played out and the failed turn is retried
		game, failed := playOut(ctx, t, useCase, game)

		// Then: the game is stored as finished and counted once
		assert.Equal(t, 1, failed)
		assert.True(t, game.IsFinished())

		score, err := useCase.GetScore(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, score.Games())
	})

	t.Run("Game write fails", func(t *testing.T) {
		// Given: a game store that fails to save the finished game
		games := &flakyGames{GameService: service.NewGameService(repository.NewMemoryGameRepository()), failures: 1}
		useCase := newUseCaseWith(games, service.NewScoreService(repository.NewMemoryScoreRepository()))

		game, _, err := useCase.NewSession(ctx)
		require.NoError(t, err)

		// When: the game is played out and the failed turn is retried
		game, failed := playOut(ctx, t, useCase, game)

		// Then: the round recorded before the failure is not counted a second time
		assert.Equal(t, 1, failed)
		assert.True(t, game.IsFinished())

		score, err := useCase.GetScore(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, score.Games())
	})

	t.Run("Next round is counted again", func(t *testing.T) {
		useCase := newTestUseCase(t, 0)
		game, _, err := useCase.NewSession(ctx)
		require.NoError(t, err)

		game, _ = playOut(ctx, t, useCase, game)
		game, err = useCase.ResetGame(ctx, game.ID)
		require.NoError(t, err)
		playOut(ctx, t, useCase, game)

		score, err := useCase.GetScore(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, score.Games())
	})
}

func TestGameUseCase_ScoreLivesWithTheGame(t *testing.T) {
	ctx := context.Background()
	scores := &flakyScores{ScoreService: service.NewScoreService(repository.NewMemoryScoreRepository())}
	useCase := newUseCaseWith(service.NewGameService(repository.NewMemoryGameRepository()), scores)

	game, _, err := useCase.NewSession(ctx)
	require.NoError(t, err)

	// When: the game is written by a turn and a reset
	_, err = useCase.MakeTurn(ctx, game.ID, 0)
	require.NoError(t, err)
	_, err = useCase.ResetGame(ctx, game.ID)
	require.NoError(t, err)

	// Then: the score was refreshed with every write
	assert.Equal(t, 2, scores.keepAlives)
}

func TestGameUseCase_MissingScoreStoresNothing(t *testing.T) {
	ctx := context.Background()
	scoreRepo := repository.NewMemoryScoreRepository()
	useCase := newUseCaseWith(service.NewGameService(repository.NewMemoryGameRepository()), service.NewScoreService(scoreRepo))

	// Given: a session whose score has expired
	game, _, err := useCase.NewSession(ctx)
	require.NoError(t, err)
	require.NoError(t, scoreRepo.DeleteByID(ctx, game.ID))

	// When: the human plays
	_, err = useCase.MakeTurn(ctx, game.ID, 0)

	// Then: the turn fails and the game is unchanged
	require.ErrorIs(t, err, apperror.ErrScoreNotFound)

	stored, err := useCase.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.Board{}, stored.Board)
}

func TestGameUseCase_EndSession(t *testing.T) {
	ctx := context.Background()
	useCase := newTestUseCase(t, 0)

	game, _, err := useCase.NewSession(ctx)
	require.NoError(t, err)

	// When: the session ends
	require.NoError(t, useCase.EndSession(ctx, game.ID))

	// Then: neither the game nor the score is left
	_, err = useCase.GetGame(ctx, game.ID)
	require.ErrorIs(t, err, apperror.ErrGameNotFound)

	_, err = useCase.GetScore(ctx, game.ID)
	require.ErrorIs(t, err, apperror.ErrScoreNotFound)

	assert.ErrorIs(t, useCase.EndSession(ctx, game.ID), apperror.ErrGameNotFound)
}

func TestGameUseCase_SessionLocks(t *testing.T) {
	ctx := context.Background()
	useCase := newTestUseCase(t, 0).(*gameUseCase)

	assert.Same(t, useCase.lockFor("a"), useCase.lockFor("a"))

	// When: turns are sent for many unknown sessions
	for i := 0; i < 10000; i++ {
		_, err := useCase.MakeTurn(ctx, strconv.Itoa(i), 0)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	}

	// Then: every lock was released and none was allocated per id
	for i := range useCase.locks {
		require.True(t, useCase.locks[i].TryLock())
		useCase.locks[i].Unlock()
	}
}

func TestGameUseCase_ConcurrentTurns(t *testing.T) {
	ctx := context.Background()
	useCase := newTestUseCase(t, 0)
	game, _, err := useCase.NewSession(ctx)
	require.NoError(t, err)

	// When: several requests race on the same session
	var wg sync.WaitGroup
	for cell := 0; cell < engine.BoardSize; cell++ {
		cell := cell
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = useCase.MakeTurn(ctx, game.ID, cell)
		}()
	}
	wg.Wait()

	// Then: every accepted human move got exactly one reply
	stored, err := useCase.GetGame(ctx, game.ID)
	require.NoError(t, err)

	var xs, os int
	for _, cell := range stored.Board {
		switch cell {
		case engine.X:
			xs++
		case engine.O:
			os++
		}
	}

	assert.Positive(t, xs)
	assert.Contains(t, []int{0, 1}, xs-os)

	score, err := useCase.GetScore(ctx, game.ID)
	require.NoError(t, err)
	if stored.IsFinished() {
		assert.Equal(t, 1, score.Games())
	} else {
		assert.Zero(t, score.Games())
	}
}

func TestGameUseCase_ResetGame(t *testing.T) {
	ctx := context.Background()
	useCase := newTestUseCase(t, 0)

	// Given: a finished game
	game, _, err := useCase.NewSession(ctx)
	require.NoError(t, err)

	for game.IsOngoing() {
		game, err = useCase.MakeTurn(ctx, game.ID, game.Board.EmptyCells()[0])
		require.NoError(t, err)
	}

	// When: the board is reset
	game, err = useCase.ResetGame(ctx, game.ID)
	require.NoError(t, err)

	// Then: the board is empty, the same session continues and the score survives
	assert.Equal(t, engine.Board{}, game.Board)
	assert.True(t, game.IsOngoing())

	score, err := useCase.GetScore(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, score.Games())

	_, err = useCase.MakeTurn(ctx, game.ID, 4)
	assert.NoError(t, err)
}
