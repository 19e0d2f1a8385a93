package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/engine"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	// HumanMark always opens the game, BotMark answers.
	HumanMark = engine.X
	BotMark   = engine.O

	// NoMove marks a game without any move yet.
	NoMove = -1
)

type Game struct {
	ID       string       `json:"id"`
	Board    engine.Board `json:"board"`
	Winner   string       `json:"winner"`
	Line     []int        `json:"line,omitempty"`
	Status   string       `json:"status"`
	Turn     engine.Cell  `json:"player_turn"`
	LastMove int          `json:"last_move"`
	// Round counts resets, so each played game of a session has its own number.
	Round int `json:"round"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:       id,
		Board:    engine.Board{},
		Turn:     HumanMark,
		Status:   StatusOngoing,
		LastMove: NoMove,
	}
}

// Reset - discards the board and starts the next round with the human to move.
func (that *Game) Reset() {
	round := that.Round + 1

	*that = *NewGame(that.ID)
	that.Round = round
}

// Result evaluates the current board.
func (that *Game) Result() (engine.Result, error) {
	result, err := engine.Evaluate(that.Board)
	if err != nil {
		return engine.Result{}, fmt.Errorf("failed to evaluate board: %w", err)
	}

	return result, nil
}

func (that *Game) UpdateGameState() error {
	result, err := that.Result()
	if err != nil {
		return err
	}

	switch result.Outcome {
	// one player wins
	case engine.Win:
		that.Winner = result.Winner.String()
		that.Line = result.Line[:]
		that.Status = StatusFinished
		that.Turn = engine.Empty
	// tie
	case engine.Draw:
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = engine.Empty
	// game continue
	case engine.None:
		that.Status = StatusOngoing
	}

	return nil
}

func (that *Game) MakeTurn(mark engine.Cell, cell int) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != engine.Empty {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = mark
	that.LastMove = cell
	that.Turn = mark.Opponent()

	return that.UpdateGameState()
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsBotTurn() bool {
	return that.IsOngoing() && that.Turn == BotMark
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", apperror.ErrUnknownStatus, that.Status)
	}
}
