package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

var errCellRequired = errors.New("cell is required")

type turnRequest struct {
	Cell *int `json:"cell"`
}

func (that *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	game, score, err := that.gameUseCase.NewSession(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, gameResponse{Game: game, Score: score})
}

func (that *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

// MakeTurn - plays the human's cell; the response already contains the bot's reply.
func (that *Handlers) MakeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decodeJSON(r, &req); err != nil {
		that.writeError(w, r, err)
		return
	}

	if req.Cell == nil {
		that.writeError(w, r, &badRequestError{err: errCellRequired})
		return
	}

	gameID := chi.URLParam(r, "id")

	game, err := that.gameUseCase.MakeTurn(r.Context(), gameID, *req.Cell)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	resp := gameResponse{Game: game}

	if game.IsFinished() {
		score, err := that.gameUseCase.GetScore(r.Context(), gameID)
		if err != nil {
			that.writeError(w, r, err)
			return
		}

		resp.Score = score
	}

	that.writeJSON(w, http.StatusOK, resp)
}

func (that *Handlers) ResetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.ResetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *Handlers) GetScore(w http.ResponseWriter, r *http.Request) {
	score, err := that.gameUseCase.GetScore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, score)
}

// DeleteGame - ends the session: the game and its score are removed.
func (that *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
