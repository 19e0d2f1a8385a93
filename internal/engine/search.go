package engine

import (
	"errors"
	"fmt"
)

const (
	// winScore is reduced by the search depth so faster wins and slower losses score better.
	winScore = 10
	infinity = 1000
)

// ErrNoMoveAvailable is returned for a board that is full or already won.
var ErrNoMoveAvailable = errors.New("no move available")

// Move is a chosen cell together with the minimax score it achieved from O's perspective.
type Move struct {
	Cell  int
	Score int
}

// Stats describes the work done by one search.
type Stats struct {
	Nodes int
}

// BestMove returns the optimal cell for mark. Scores are always from O's point of view, so O
// takes the highest scoring cell and X the lowest; ties go to the lowest index.
// The caller's board is never modified.
func BestMove(board Board, mark Cell) (Move, error) {
	move, _, err := Search(board, mark)

	return move, err
}

// Search is BestMove that also reports how many positions were visited.
func Search(board Board, mark Cell) (Move, Stats, error) {
	s := &searcher{prune: true}
	move, err := s.bestMove(board, mark)

	return move, Stats{Nodes: s.nodes}, err
}

type searcher struct {
	prune bool
	nodes int
}

// bestMove works on its own copy of the board; every minimax call restores the cells it
// touched before returning.
func (that *searcher) bestMove(board Board, mark Cell) (Move, error) {
	if !mark.IsMark() {
		return Move{}, fmt.Errorf("%w: %s", ErrInvalidMark, mark)
	}

	if err := board.Validate(); err != nil {
		return Move{}, err
	}

	if evaluate(&board).IsTerminal() {
		return Move{}, ErrNoMoveAvailable
	}

	maximizing := mark == O

	best := Move{Cell: -1, Score: infinity}
	if maximizing {
		best.Score = -infinity
	}

	for i := range board {
		if board[i] != Empty {
			continue
		}

		board[i] = mark
		score := that.minimax(&board, 0, !maximizing, -infinity, infinity)
		board[i] = Empty

		if (maximizing && score > best.Score) || (!maximizing && score < best.Score) {
			best = Move{Cell: i, Score: score}
		}
	}

	return best, nil
}

// minimax scores the position after depth plies of the current search. alpha is the best
// score O can already guarantee, beta the best X can.
func (that *searcher) minimax(board *Board, depth int, maximizing bool, alpha, beta int) int {
	that.nodes++

	switch result := evaluate(board); result.Outcome {
	case Win:
		if result.Winner == O {
			return winScore - depth
		}
		return depth - winScore
	case Draw:
		return 0
	case None:
	}

	if maximizing {
		best := -infinity
		for i := range board {
			if board[i] != Empty {
				continue
			}

			board[i] = O
			best = max(best, that.minimax(board, depth+1, false, alpha, beta))
			board[i] = Empty

			alpha = max(alpha, best)
			if that.prune && beta <= alpha {
				break
			}
		}

		return best
	}

	best := infinity
	for i := range board {
		if board[i] != Empty {
			continue
		}

		board[i] = X
		best = min(best, that.minimax(board, depth+1, true, alpha, beta))
		board[i] = Empty

		beta = min(beta, best)
		if that.prune && beta <= alpha {
			break
		}
	}

	return best
}
