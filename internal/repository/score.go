package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

type ScoreRepository interface {
	Save(ctx context.Context, sessionID string, score *entity.Score) error
	GetByID(ctx context.Context, sessionID string) (*entity.Score, error)
	Touch(ctx context.Context, sessionID string) error
	DeleteByID(ctx context.Context, sessionID string) error
}

type dbScore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScoreRepository(client *redis.Client, ttl time.Duration) ScoreRepository {
	return &dbScore{
		client: client,
		ttl:    ttl,
	}
}

func scoreKey(sessionID string) string {
	return "score:" + sessionID
}

func (that *dbScore) Save(ctx context.Context, sessionID string, score *entity.Score) error {
	scoreJSON, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("could not marshal score: %w", err)
	}

	if err = that.client.Set(ctx, scoreKey(sessionID), scoreJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set score: %w", err)
	}

	return nil
}

func (that *dbScore) GetByID(ctx context.Context, sessionID string) (*entity.Score, error) {
	response, err := that.client.Get(ctx, scoreKey(sessionID)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Score{}, apperror.ErrScoreNotFound
	}

	if err != nil {
		return &entity.Score{}, fmt.Errorf("failed to get score by id: %w", err)
	}

	var score entity.Score
	if err = json.Unmarshal([]byte(response), &score); err != nil {
		return &entity.Score{}, fmt.Errorf("failed to unmarshal score: %w", err)
	}

	return &score, nil
}

// Touch restarts the key's ttl so the score lives as long as the game it belongs to.
func (that *dbScore) Touch(ctx context.Context, sessionID string) error {
	var (
		found bool
		err   error
	)

	if that.ttl > 0 {
		found, err = that.client.Expire(ctx, scoreKey(sessionID), that.ttl).Result()
	} else {
		var n int64
		n, err = that.client.Exists(ctx, scoreKey(sessionID)).Result()
		found = n > 0
	}

	if err != nil {
		return fmt.Errorf("failed to refresh score ttl: %w", err)
	}

	if !found {
		return apperror.ErrScoreNotFound
	}

	return nil
}

func (that *dbScore) DeleteByID(ctx context.Context, sessionID string) error {
	deleted, err := that.client.Del(ctx, scoreKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete score by ID: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrScoreNotFound
	}

	return nil
}
