package repo

import (
	"context"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
)

// SessionRepository defines the persistence interface for Session entities.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *entity.Session) error
	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*entity.Session, error)
	// Update replaces an existing session.
	Update(ctx context.Context, session *entity.Session) error
	// Delete removes a session by ID.
	Delete(ctx context.Context, id string) error
	// List returns all sessions, most recently updated first.
	List(ctx context.Context) ([]*entity.Session, error)
}
