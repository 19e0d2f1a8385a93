package engine

// Outcome is the terminal state of a board.
type Outcome uint8

const (
	None Outcome = iota // game continues
	Win
	Draw
)

func (that Outcome) String() string {
	switch that {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "none"
	}
}

// Line is an index triple that wins when uniformly occupied.
type Line [3]int

// lines are scanned in this order: rows top to bottom, columns left to right, diagonals.
var lines = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Lines returns a copy of the winning lines in scan order.
func Lines() [8]Line {
	return lines
}

// Result - the verdict for a board. Winner and Line are set only when Outcome is Win.
type Result struct {
	Outcome Outcome
	Winner  Cell
	Line    Line
}

func (that Result) IsTerminal() bool {
	return that.Outcome != None
}

// Evaluate reports the first complete line in scan order, a draw for a full board, or None.
func Evaluate(board Board) (Result, error) {
	if err := board.Validate(); err != nil {
		return Result{}, err
	}

	return evaluate(&board), nil
}

func evaluate(board *Board) Result {
	for _, line := range lines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != Empty && a == b && b == c {
			return Result{Outcome: Win, Winner: a, Line: line}
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range board {
		if cell == Empty {
			return Result{Outcome: None}
		}
	}

	return Result{Outcome: Draw}
}
