package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// BoardSize is the number of cells on the 3x3 board.
const BoardSize = 9

var (
	// ErrInvalidCell is returned for a cell value other than Empty, X or O.
	ErrInvalidCell = errors.New("invalid cell value")
	// ErrInvalidMark is returned when a player's mark is required and Empty or garbage is given.
	ErrInvalidMark = errors.New("invalid mark")
	// ErrBoardSize is returned for a board that does not have exactly BoardSize cells.
	ErrBoardSize = errors.New("board must have exactly 9 cells")
)

// Cell is the content of a single board square.
type Cell uint8

const (
	Empty Cell = iota
	X          // human
	O          // bot
)

// IsValid reports whether the cell is Empty, X or O.
func (that Cell) IsValid() bool {
	return that == Empty || that == X || that == O
}

// IsMark reports whether the cell holds a player's mark.
func (that Cell) IsMark() bool {
	return that == X || that == O
}

// Opponent returns the other player's mark. Empty stays Empty.
func (that Cell) Opponent() Cell {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (that Cell) String() string {
	switch that {
	case X:
		return "X"
	case O:
		return "O"
	case Empty:
		return ""
	default:
		return fmt.Sprintf("Cell(%d)", uint8(that))
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	if !that.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCell, that)
	}

	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	cell, err := ParseCell(string(text))
	if err != nil {
		return err
	}

	*that = cell

	return nil
}

// ParseCell - accepts "X", "O" and "" (or "." / "_" / " ") for an empty cell.
func ParseCell(s string) (Cell, error) {
	switch strings.ToUpper(s) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	case "", ".", "_", " ":
		return Empty, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrInvalidCell, s)
	}
}

// ParseMark is ParseCell restricted to player marks.
func ParseMark(s string) (Cell, error) {
	cell, err := ParseCell(s)
	if err != nil {
		return Empty, err
	}

	if !cell.IsMark() {
		return Empty, fmt.Errorf("%w: %q", ErrInvalidMark, s)
	}

	return cell, nil
}

// Board is a row-major 3x3 grid: row = index / 3, col = index % 3.
type Board [BoardSize]Cell

// NewBoard builds a board from a slice that must hold exactly 9 valid cells.
func NewBoard(cells []Cell) (Board, error) {
	var board Board

	if len(cells) != BoardSize {
		return board, fmt.Errorf("%w: got %d", ErrBoardSize, len(cells))
	}

	copy(board[:], cells)

	if err := board.Validate(); err != nil {
		return Board{}, err
	}

	return board, nil
}

// ParseBoard - parses the compact form produced by Board.String, e.g. "XX.OO....".
func ParseBoard(s string) (Board, error) {
	runes := []rune(s)
	if len(runes) != BoardSize {
		return Board{}, fmt.Errorf("%w: got %d", ErrBoardSize, len(runes))
	}

	var board Board
	for i, r := range runes {
		cell, err := ParseCell(string(r))
		if err != nil {
			return Board{}, fmt.Errorf("cell %d: %w", i, err)
		}

		board[i] = cell
	}

	return board, nil
}

// MustParseBoard is ParseBoard for fixtures; it panics on malformed input.
func MustParseBoard(s string) Board {
	board, err := ParseBoard(s)
	if err != nil {
		panic(err)
	}

	return board
}

func (that Board) String() string {
	var sb strings.Builder
	for _, cell := range that {
		if cell == Empty {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(cell.String())
	}

	return sb.String()
}

// Validate returns ErrInvalidCell for the first cell outside {Empty, X, O}.
func (that Board) Validate() error {
	for i, cell := range that {
		if !cell.IsValid() {
			return fmt.Errorf("%w: %d at cell %d", ErrInvalidCell, cell, i)
		}
	}

	return nil
}

func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == Empty {
			cells = append(cells, i)
		}
	}

	return cells
}

// Filled returns the number of marks on the board.
func (that Board) Filled() int {
	filled := 0
	for _, cell := range that {
		if cell != Empty {
			filled++
		}
	}

	return filled
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// Next returns the mark to move assuming X opened the game.
func (that Board) Next() Cell {
	var xs, os int
	for _, cell := range that {
		switch cell {
		case X:
			xs++
		case O:
			os++
		}
	}

	if xs > os {
		return O
	}

	return X
}

// Swapped returns a copy with every X replaced by O and vice versa.
func (that Board) Swapped() Board {
	for i, cell := range that {
		that[i] = cell.Opponent()
	}

	return that
}

func (that Board) MarshalJSON() ([]byte, error) {
	if err := that.Validate(); err != nil {
		return nil, err
	}

	return json.Marshal([BoardSize]Cell(that))
}

func (that *Board) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("%w: got null", ErrBoardSize)
	}

	var cells []Cell
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("failed to decode board: %w", err)
	}

	board, err := NewBoard(cells)
	if err != nil {
		return err
	}

	*that = board

	return nil
}
