package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

type botPlayer interface {
	MakeTurn(game *entity.Game) error
}

// GameController applies the human's move and the bot's reply to a game.
type GameController struct {
	bot botPlayer
}

func NewGameController(bot botPlayer) *GameController {
	return &GameController{
		bot: bot,
	}
}

// HumanTurn - places the human's mark and re-evaluates the board.
func (that *GameController) HumanTurn(game *entity.Game, cell int) error {
	if err := game.MakeTurn(entity.HumanMark, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	return nil
}

// BotTurn - lets the bot answer if the game is still going. A finished game is left as is.
func (that *GameController) BotTurn(game *entity.Game) error {
	if !game.IsBotTurn() {
		return nil
	}

	if err := that.bot.MakeTurn(game); err != nil {
		return fmt.Errorf("bot turn: %w", err)
	}

	return nil
}
