package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

type ScoreService interface {
	CreateScore(ctx context.Context, sessionID string) (*entity.Score, error)
	GetScore(ctx context.Context, sessionID string) (*entity.Score, error)
	RecordResult(ctx context.Context, game *entity.Game) (*entity.Score, error)
	KeepAlive(ctx context.Context, sessionID string) error
	DeleteScore(ctx context.Context, sessionID string) error
}

type scoreRepo interface {
	Save(ctx context.Context, sessionID string, score *entity.Score) error
	GetByID(ctx context.Context, sessionID string) (*entity.Score, error)
	Touch(ctx context.Context, sessionID string) error
	DeleteByID(ctx context.Context, sessionID string) error
}

type scoreService struct {
	scoreRepo scoreRepo
}

func NewScoreService(scoreRepo scoreRepo) ScoreService {
	return &scoreService{
		scoreRepo: scoreRepo,
	}
}

func (that *scoreService) CreateScore(ctx context.Context, sessionID string) (*entity.Score, error) {
	score := &entity.Score{}

	if err := that.scoreRepo.Save(ctx, sessionID, score); err != nil {
		return nil, fmt.Errorf("failed to create score: %w", err)
	}

	return score, nil
}

func (that *scoreService) GetScore(ctx context.Context, sessionID string) (*entity.Score, error) {
	score, err := that.scoreRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve score from storage: %w", err)
	}

	return score, nil
}

// RecordResult - adds a finished game to the session's score. Games still in play and rounds
// already counted are ignored.
func (that *scoreService) RecordResult(ctx context.Context, game *entity.Game) (*entity.Score, error) {
	score, err := that.GetScore(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	if !score.Record(game) {
		return score, nil
	}

	if err = that.scoreRepo.Save(ctx, game.ID, score); err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	return score, nil
}

// KeepAlive - extends the score's lifetime along with the game's.
func (that *scoreService) KeepAlive(ctx context.Context, sessionID string) error {
	if err := that.scoreRepo.Touch(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to refresh score: %w", err)
	}

	return nil
}

func (that *scoreService) DeleteScore(ctx context.Context, sessionID string) error {
	if err := that.scoreRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete score: %w", err)
	}

	return nil
}
