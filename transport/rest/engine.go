package rest

import (
	"fmt"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-ai/internal/engine"
)

type boardRequest struct {
	Board *engine.Board `json:"board"`
	Mark  *engine.Cell  `json:"mark"`
}

func (that *Handlers) decodeBoardRequest(r *http.Request) (*boardRequest, error) {
	var req boardRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	if req.Board == nil {
		return nil, &badRequestError{err: fmt.Errorf("%w: board is missing", engine.ErrBoardSize)}
	}

	return &req, nil
}

// Evaluate - reports the verdict for a board snapshot without touching any session.
func (that *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	req, err := that.decodeBoardRequest(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	result, err := engine.Evaluate(*req.Board)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, newResultResponse(result))
}

// BestMove - searches a board snapshot. Without a mark the side to move is inferred from the counts.
func (that *Handlers) BestMove(w http.ResponseWriter, r *http.Request) {
	req, err := that.decodeBoardRequest(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	mark := req.Board.Next()
	if req.Mark != nil {
		mark = *req.Mark
	}

	move, stats, err := engine.Search(*req.Board, mark)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, moveResponse{Cell: move.Cell, Score: move.Score, Nodes: stats.Nodes})
}
