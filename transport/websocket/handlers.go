package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
)

func decodePayload(msg *Message) (*RequestPayload, error) {
	var payload RequestPayload

	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}

	return &payload, nil
}

// clientError hides storage failures from the client; domain errors are sent as is.
func (that *Server) clientError(action string, err error) string {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound),
		errors.Is(err, apperror.ErrScoreNotFound),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrThinkingAborted):
		return err.Error()
	default:
		that.logger.Error("action failed", "action", action, "error", err)
		return "internal error"
	}
}

func (that *Server) handleNewGame(ctx context.Context, conn *websocket.Conn, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	game, score, err := that.gameUseCase.NewSession(ctx)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, that.clientError(msg.Action, err))
	}

	log.Debug("new game", "game_id", game.ID)

	return that.sendMessage(conn, msg.Action, ResponsePayload{Game: game, Score: score})
}

func (that *Server) handleGetGame(ctx context.Context, conn *websocket.Conn, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	game, err := that.gameUseCase.GetGame(ctx, payload.GameID)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, that.clientError(msg.Action, err))
	}

	score, err := that.gameUseCase.GetScore(ctx, payload.GameID)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, that.clientError(msg.Action, err))
	}

	return that.sendMessage(conn, msg.Action, ResponsePayload{Game: game, Score: score})
}

func (that *Server) handleGameTurn(ctx context.Context, conn *websocket.Conn, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Cell == nil {
		log.Debug("cell is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "cell is required")
	}

	game, err := that.gameUseCase.MakeTurn(ctx, payload.GameID, *payload.Cell)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, that.clientError(msg.Action, err))
	}

	resp := ResponsePayload{Game: game}

	if game.IsFinished() {
		if resp.Score, err = that.gameUseCase.GetScore(ctx, game.ID); err != nil {
			return that.sendErrorResponse(conn, msg.Action, that.clientError(msg.Action, err))
		}
	}

	return that.sendMessage(conn, msg.Action, resp)
}

func (that *Server) handleResetGame(ctx context.Context, conn *websocket.Conn, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	game, err := that.gameUseCase.ResetGame(ctx, payload.GameID)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, that.clientError(msg.Action, err))
	}

	return that.sendMessage(conn, msg.Action, ResponsePayload{Game: game})
}

func (that *Server) handleGetScore(ctx context.Context, conn *websocket.Conn, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	score, err := that.gameUseCase.GetScore(ctx, payload.GameID)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, that.clientError(msg.Action, err))
	}

	return that.sendMessage(conn, msg.Action, ResponsePayload{Score: score})
}

func (that *Server) handleDeleteGame(ctx context.Context, conn *websocket.Conn, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if err = that.gameUseCase.EndSession(ctx, payload.GameID); err != nil {
		return that.sendErrorResponse(conn, msg.Action, that.clientError(msg.Action, err))
	}

	return that.sendMessage(conn, msg.Action, ResponsePayload{GameID: payload.GameID})
}
