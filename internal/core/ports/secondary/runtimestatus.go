package secondary

import (
	"context"

	"gitlab.com/interp-bridge.net/internal/domain"
)

// RuntimeStatusRepository stores the supervised interpreter's lifecycle
// status for external health tooling. Implementations must tolerate being
// called from the supervisor's monitor goroutine.
type RuntimeStatusRepository interface {
	// SaveStatus records the current runtime status
	SaveStatus(ctx context.Context, status *domain.RuntimeStatus) error

	// GetStatus retrieves the last recorded runtime status
	GetStatus(ctx context.Context) (*domain.RuntimeStatus, error)
}
