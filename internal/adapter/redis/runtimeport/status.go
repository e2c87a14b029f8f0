package runtimeport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/ports/secondary"
	"gitlab.com/interp-bridge.net/internal/domain"
)

const (
	statusKey        = "interpreter:status"
	statusExpiration = 24 * time.Hour
)

var _ secondary.RuntimeStatusRepository = (*StatusRepository)(nil)

// StatusRepository implements the RuntimeStatusRepository interface with Redis
type StatusRepository struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewStatusRepository creates a new Redis runtime status repository
func NewStatusRepository(redisClient *redis.Client, logger primary.Logger) *StatusRepository {
	return &StatusRepository{
		redisClient: redisClient,
		logger:      logger,
	}
}

// SaveStatus records the current runtime status
func (r *StatusRepository) SaveStatus(ctx context.Context, status *domain.RuntimeStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal runtime status: %w", err)
	}

	if err := r.redisClient.Set(ctx, statusKey, data, statusExpiration).Err(); err != nil {
		return fmt.Errorf("failed to store runtime status: %w", err)
	}
	return nil
}

// GetStatus retrieves the last recorded runtime status. Returns nil when
// nothing has been recorded yet.
func (r *StatusRepository) GetStatus(ctx context.Context) (*domain.RuntimeStatus, error) {
	data, err := r.redisClient.Get(ctx, statusKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve runtime status: %w", err)
	}

	var status domain.RuntimeStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal runtime status: %w", err)
	}
	return &status, nil
}
