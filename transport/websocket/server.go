package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

const (
	maxMessageSize = 4096
	writeTimeout   = 10 * time.Second
)

var ErrUnknownAction = errors.New("unknown action")

type gameUseCase interface {
	NewSession(ctx context.Context) (*entity.Game, *entity.Score, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	GetScore(ctx context.Context, gameID string) (*entity.Score, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error)
	ResetGame(ctx context.Context, gameID string) (*entity.Game, error)
	EndSession(ctx context.Context, gameID string) error
}

type handlerFunc func(ctx context.Context, conn *websocket.Conn, msg *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers    map[string]handlerFunc
	connections *xsync.MapOf[*websocket.Conn, struct{}]
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers:    make(map[string]handlerFunc),
		connections: xsync.NewMapOf[*websocket.Conn, struct{}](),
	}

	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameGet] = server.handleGetGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameReset] = server.handleResetGame
	server.handlers[actionGameScore] = server.handleGetScore
	server.handlers[actionGameDelete] = server.handleDeleteGame

	return server
}

// ServeHTTP - upgrades the connection and serves messages until the client goes away.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP", "remote", r.RemoteAddr)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	that.connections.Store(conn, struct{}{})
	defer func() {
		that.connections.Delete(conn)
		conn.Close()
	}()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(r.Context(), conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// Close - closes every open connection. http.Server.Shutdown does not track upgraded connections.
func (that *Server) Close() {
	that.connections.Range(func(conn *websocket.Conn, _ struct{}) bool {
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		conn.Close()

		return true
	})
}

func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("failed to read message: %w", err)
			}

			return nil
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			if err = that.sendErrorResponse(conn, "", "invalid message"); err != nil {
				return err
			}

			continue
		}

		if err = that.processMessage(ctx, conn, &msg); err != nil {
			return err
		}
	}
}

// processMessage - dispatches a message to its action handler.
func (that *Server) processMessage(ctx context.Context, conn *websocket.Conn, msg *Message) error {
	handler, ok := that.handlers[msg.Action]
	if !ok {
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("%v: %s", ErrUnknownAction, msg.Action))
	}

	return handler(ctx, conn, msg)
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload ResponsePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = conn.WriteJSON(Message{Action: action, Payload: data}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *websocket.Conn, action, errMsg string) error {
	return that.sendMessage(conn, action, ResponsePayload{Error: errMsg})
}
