package rest

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

type gameUseCase interface {
	NewSession(ctx context.Context) (*entity.Game, *entity.Score, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	GetScore(ctx context.Context, gameID string) (*entity.Score, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error)
	ResetGame(ctx context.Context, gameID string) (*entity.Game, error)
	EndSession(ctx context.Context, gameID string) error
}

type Handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func NewHandlers(logger *slog.Logger, gameUseCase gameUseCase) *Handlers {
	return &Handlers{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
	}
}

// NewRouter wires the REST routes. Callers may mount more handlers on the returned router.
func NewRouter(h *Handlers) chi.Router {
	r := chi.NewRouter()

	r.Get("/ping", h.Ping)

	r.Post("/games", h.CreateGame)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", h.GetGame)
		r.Delete("/", h.DeleteGame)
		r.Post("/turn", h.MakeTurn)
		r.Post("/reset", h.ResetGame)
		r.Get("/score", h.GetScore)
	})

	r.Route("/engine", func(r chi.Router) {
		r.Post("/evaluate", h.Evaluate)
		r.Post("/move", h.BestMove)
	})

	return r
}
