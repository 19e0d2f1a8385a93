package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/engine"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

type errorResponse struct {
	Error string `json:"error"`
}

type gameResponse struct {
	Game  *entity.Game  `json:"game"`
	Score *entity.Score `json:"score,omitempty"`
}

type resultResponse struct {
	Outcome string       `json:"outcome"`
	Winner  engine.Cell  `json:"winner,omitempty"`
	Line    *engine.Line `json:"line,omitempty"`
}

func newResultResponse(result engine.Result) resultResponse {
	resp := resultResponse{
		Outcome: result.Outcome.String(),
	}

	if result.Outcome == engine.Win {
		resp.Winner = result.Winner
		resp.Line = &result.Line
	}

	return resp
}

type moveResponse struct {
	Cell  int `json:"cell"`
	Score int `json:"score"`
	Nodes int `json:"nodes"`
}

func errorStatus(err error) int {
	var badRequest *badRequestError

	switch {
	case errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrGameNotFound),
		errors.Is(err, apperror.ErrScoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotYourTurn):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, engine.ErrBoardSize),
		errors.Is(err, engine.ErrInvalidCell),
		errors.Is(err, engine.ErrInvalidMark):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNoMoveAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrThinkingAborted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (that *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: msg})
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &badRequestError{err: err}
	}

	return nil
}

type badRequestError struct {
	err error
}

func (that *badRequestError) Error() string {
	return "invalid request body: " + that.err.Error()
}

func (that *badRequestError) Unwrap() error {
	return that.err
}
