package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-ai/internal/engine"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	MakeTurn(game *entity.Game) error
}

type botService struct {
	logger *slog.Logger
	mark   engine.Cell
}

func NewBotService(logger *slog.Logger) BotService {
	return &botService{
		logger: logger.With("component", "bot"),
		mark:   entity.BotMark,
	}
}

// MakeTurn - places the bot's mark on the cell chosen by the minimax search.
func (that *botService) MakeTurn(game *entity.Game) error {
	log := that.logger.With("method", "MakeTurn", "game_id", game.ID)

	move, stats, err := engine.Search(game.Board, that.mark)
	if errors.Is(err, engine.ErrNoMoveAvailable) {
		return ErrNoAvailableMoves
	}

	if err != nil {
		return fmt.Errorf("failed to search move: %w", err)
	}

	log.Debug("move chosen", "cell", move.Cell, "score", move.Score, "nodes", stats.Nodes)

	if err = game.MakeTurn(that.mark, move.Cell); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}
