package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

const (
	actionGameNew    = "game:new"
	actionGameGet    = "game:get"
	actionGameTurn   = "game:turn"
	actionGameReset  = "game:reset"
	actionGameScore  = "game:score"
	actionGameDelete = "game:delete"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	GameID string `json:"game_id"`
	Cell   *int   `json:"cell,omitempty"`
}

type ResponsePayload struct {
	GameID string        `json:"game_id,omitempty"`
	Game   *entity.Game  `json:"game,omitempty"`
	Score  *entity.Score `json:"score,omitempty"`
	Error  string        `json:"error,omitempty"`
}
