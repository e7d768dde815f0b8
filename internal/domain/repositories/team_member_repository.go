package repositories

import (
	"context"
	"io"

	"cafe-team.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// TeamMemberRepository is the record store for team members.
type TeamMemberRepository interface {
	List(ctx context.Context, filter entities.TeamMemberFilter) ([]*entities.TeamMember, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error)
	Create(ctx context.Context, input *entities.TeamMemberInput) (*entities.TeamMember, error)
	Update(ctx context.Context, id uuid.UUID, patch *entities.TeamMemberPatch) (*entities.TeamMember, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter entities.TeamMemberFilter) (int64, error)
	// Flip negates a boolean column in a single statement and returns the updated row.
	Flip(ctx context.Context, id uuid.UUID, field entities.ToggleField) (*entities.TeamMember, error)
	// NextDisplayOrder allocates the next order through the store-side function.
	NextDisplayOrder(ctx context.Context) (int, error)
	// MaxDisplayOrder returns the highest order in use, or 0 for an empty table.
	MaxDisplayOrder(ctx context.Context) (int, error)
	// Reorder applies every (ids[i], orders[i]) pair atomically.
	Reorder(ctx context.Context, ids []uuid.UUID, orders []int) error
}

// ImageStorage is the object bucket that holds member portraits.
type ImageStorage interface {
	// Upload writes the object, replacing an existing one when upsert is set.
	Upload(ctx context.Context, key string, r io.Reader, upsert bool) error
	// Remove deletes the object. A missing object is not an error.
	Remove(ctx context.Context, key string) error
	// PublicURL builds the deterministic public URL for key.
	PublicURL(key string) string
}
