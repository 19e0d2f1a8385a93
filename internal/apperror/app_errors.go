package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrGameNotFound    = errors.New("game not found")
	ErrScoreNotFound   = errors.New("score not found")
	ErrUnknownStatus   = errors.New("unknown game status")
	ErrUnknownStorage  = errors.New("unknown storage type")
	ErrEmptyRedisAddr  = errors.New("redis address string is empty")
	ErrThinkingAborted = errors.New("bot turn canceled")
)
