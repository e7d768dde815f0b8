package state

import (
	"context"
	"io"
	"strings"
	"sync"

	"cafe-team.backend/internal/domain/entities"
	"cafe-team.backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TeamService is the subset of the team data service the admin console uses.
type TeamService interface {
	ListAll(ctx context.Context) ([]*entities.TeamMember, error)
	Create(ctx context.Context, input *entities.TeamMemberInput) (*entities.TeamMember, error)
	Update(ctx context.Context, id uuid.UUID, patch *entities.TeamMemberPatch) (*entities.TeamMember, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleFeatured(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error)
	UploadImage(ctx context.Context, filename string, r io.Reader, memberID *uuid.UUID) (string, error)
	DeleteImage(ctx context.Context, key string) error
	GetNextDisplayOrder(ctx context.Context) (int, error)
	Reorder(ctx context.Context, ids []uuid.UUID, orders []int) error
}

// Mutation failure messages recorded in the error slot.
const (
	MsgLoadFailed     = "Failed to load team members"
	MsgCreateFailed   = "Failed to create team member"
	MsgUpdateFailed   = "Failed to update team member"
	MsgDeleteFailed   = "Failed to delete team member"
	MsgFeaturedFailed = "Failed to update featured status"
	MsgActiveFailed   = "Failed to update active status"
	MsgUploadFailed   = "Failed to upload image"
	MsgImageDelFailed = "Failed to delete image"
	MsgReorderFailed  = "Failed to reorder team members"
)

// AdminTeam is the admin console's cache of every team member.
// Mutations run one at a time per instance and reconcile the cache from
// the record the service returns.
type AdminTeam struct {
	svc TeamService
	ops sync.Mutex
	q   *query[[]*entities.TeamMember]
}

// NewAdminTeam creates an admin container. Call Mount to load it.
func NewAdminTeam(svc TeamService) *AdminTeam {
	return &AdminTeam{
		svc: svc,
		q:   newQuery(MsgLoadFailed, svc.ListAll),
	}
}

// Mount performs the initial load.
func (a *AdminTeam) Mount(ctx context.Context) error {
	return a.Refetch(ctx)
}

// Refetch reloads the whole list.
func (a *AdminTeam) Refetch(ctx context.Context) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	return a.q.load(ctx)
}

// Close discards results that arrive afterwards and rejects new calls.
func (a *AdminTeam) Close() { a.q.close() }

func (a *AdminTeam) Loading() bool  { return a.q.isLoading() }
func (a *AdminTeam) Error() string  { return a.q.errorMessage() }
func (a *AdminTeam) Status() Status { return a.q.status() }

// Members returns a copy of the cache in display order.
func (a *AdminTeam) Members() []*entities.TeamMember {
	return a.filter(func(*entities.TeamMember) bool { return true })
}

// ActiveMembers returns cached members with active set.
func (a *AdminTeam) ActiveMembers() []*entities.TeamMember {
	return a.filter(func(m *entities.TeamMember) bool { return m.Active })
}

// FeaturedMembers returns cached members that are featured and active.
func (a *AdminTeam) FeaturedMembers() []*entities.TeamMember {
	return a.filter(func(m *entities.TeamMember) bool { return m.EffectivelyFeatured() })
}

// MembersByPosition returns active members whose position contains
// position, ignoring case.
func (a *AdminTeam) MembersByPosition(position string) []*entities.TeamMember {
	needle := strings.ToLower(position)
	return a.filter(func(m *entities.TeamMember) bool {
		return m.Active && strings.Contains(strings.ToLower(m.Position), needle)
	})
}

// Member returns a copy of the cached member with id.
func (a *AdminTeam) Member(id uuid.UUID) (*entities.TeamMember, bool) {
	var out *entities.TeamMember
	a.q.read(func(members []*entities.TeamMember) {
		if i := indexOf(members, id); i >= 0 {
			out = members[i].Clone()
		}
	})
	return out, out != nil
}

func (a *AdminTeam) filter(keep func(*entities.TeamMember) bool) []*entities.TeamMember {
	out := []*entities.TeamMember{}
	a.q.read(func(members []*entities.TeamMember) {
		for _, m := range members {
			if keep(m) {
				out = append(out, m.Clone())
			}
		}
	})
	return out
}

// Create adds a member and inserts it into the cache in display order.
func (a *AdminTeam) Create(ctx context.Context, input *entities.TeamMemberInput) (*entities.TeamMember, error) {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.begin(); err != nil {
		return nil, err
	}

	member, err := a.svc.Create(ctx, input)
	if err != nil {
		return nil, a.fail(MsgCreateFailed, err)
	}

	a.reconcile(func(members []*entities.TeamMember) []*entities.TeamMember {
		members = append(members, member.Clone())
		entities.SortTeamMembers(members)
		return members
	})
	return member, nil
}

// Update applies patch and replaces the cached entry.
func (a *AdminTeam) Update(ctx context.Context, id uuid.UUID, patch *entities.TeamMemberPatch) (*entities.TeamMember, error) {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.begin(); err != nil {
		return nil, err
	}

	member, err := a.svc.Update(ctx, id, patch)
	if err != nil {
		return nil, a.fail(MsgUpdateFailed, err)
	}

	a.reconcile(func(members []*entities.TeamMember) []*entities.TeamMember {
		members = replace(members, member)
		entities.SortTeamMembers(members)
		return members
	})
	return member, nil
}

// Delete removes the member, then its stored portrait. A portrait that
// cannot be removed is logged and does not fail the delete.
func (a *AdminTeam) Delete(ctx context.Context, id uuid.UUID) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.begin(); err != nil {
		return err
	}

	var imageKey string
	a.q.read(func(members []*entities.TeamMember) {
		if i := indexOf(members, id); i >= 0 {
			imageKey = members[i].ImageFilePath
		}
	})

	if err := a.svc.Delete(ctx, id); err != nil {
		return a.fail(MsgDeleteFailed, err)
	}

	a.reconcile(func(members []*entities.TeamMember) []*entities.TeamMember {
		if i := indexOf(members, id); i >= 0 {
			members = append(members[:i], members[i+1:]...)
		}
		return members
	})

	if imageKey != "" {
		if err := a.svc.DeleteImage(ctx, imageKey); err != nil {
			logger.Warn(ctx, "Failed to remove image of deleted team member",
				zap.String("id", id.String()), zap.String("key", imageKey), zap.Error(err))
		}
	}
	return nil
}

// ToggleFeatured flips featured and replaces the cached entry.
func (a *AdminTeam) ToggleFeatured(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error) {
	return a.toggle(ctx, id, a.svc.ToggleFeatured, MsgFeaturedFailed)
}

// ToggleActive flips active and replaces the cached entry.
func (a *AdminTeam) ToggleActive(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error) {
	return a.toggle(ctx, id, a.svc.ToggleActive, MsgActiveFailed)
}

func (a *AdminTeam) toggle(
	ctx context.Context,
	id uuid.UUID,
	flip func(context.Context, uuid.UUID) (*entities.TeamMember, error),
	failure string,
) (*entities.TeamMember, error) {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.begin(); err != nil {
		return nil, err
	}

	member, err := flip(ctx, id)
	if err != nil {
		return nil, a.fail(failure, err)
	}

	// toggles never change display order, so no re-sort
	a.reconcile(func(members []*entities.TeamMember) []*entities.TeamMember {
		return replace(members, member)
	})
	return member, nil
}

// UploadImage stores a portrait and returns its storage key.
func (a *AdminTeam) UploadImage(ctx context.Context, filename string, r io.Reader, memberID *uuid.UUID) (string, error) {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.begin(); err != nil {
		return "", err
	}

	key, err := a.svc.UploadImage(ctx, filename, r, memberID)
	if err != nil {
		return "", a.fail(MsgUploadFailed, err)
	}
	return key, nil
}

// DeleteImage removes a stored portrait.
func (a *AdminTeam) DeleteImage(ctx context.Context, key string) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.begin(); err != nil {
		return err
	}

	if err := a.svc.DeleteImage(ctx, key); err != nil {
		return a.fail(MsgImageDelFailed, err)
	}
	return nil
}

// Reorder applies the new orders, then reloads the list since every
// cached order may be stale.
func (a *AdminTeam) Reorder(ctx context.Context, ids []uuid.UUID, orders []int) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.begin(); err != nil {
		return err
	}

	if err := a.svc.Reorder(ctx, ids, orders); err != nil {
		return a.fail(MsgReorderFailed, err)
	}
	// the new orders are stored; a failed reload keeps the load message
	return a.q.load(ctx)
}

// NextDisplayOrder asks the service first and falls back to one past the
// highest cached order, or 1 for an empty cache. It never fails.
func (a *AdminTeam) NextDisplayOrder(ctx context.Context) int {
	next, err := a.svc.GetNextDisplayOrder(ctx)
	if err == nil {
		return next
	}
	logger.Warn(ctx, "Falling back to cached display order", zap.Error(err))

	highest := 0
	a.q.read(func(members []*entities.TeamMember) {
		for _, m := range members {
			if m.DisplayOrder > highest {
				highest = m.DisplayOrder
			}
		}
	})
	return highest + 1
}

// begin clears the previous error before a mutation.
func (a *AdminTeam) begin() error {
	a.q.mu.Lock()
	defer a.q.mu.Unlock()
	if a.q.closed {
		return ErrClosed
	}
	a.q.err = ""
	return nil
}

// fail records message unless the container has been closed and returns err.
func (a *AdminTeam) fail(message string, err error) error {
	a.q.mu.Lock()
	defer a.q.mu.Unlock()
	if !a.q.closed {
		a.q.err = message
	}
	return err
}

func (a *AdminTeam) reconcile(f func([]*entities.TeamMember) []*entities.TeamMember) {
	a.q.mu.Lock()
	defer a.q.mu.Unlock()
	if a.q.closed {
		return
	}
	a.q.data = f(a.q.data)
}

func indexOf(members []*entities.TeamMember, id uuid.UUID) int {
	for i, m := range members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func replace(members []*entities.TeamMember, member *entities.TeamMember) []*entities.TeamMember {
	if i := indexOf(members, member.ID); i >= 0 {
		members[i] = member.Clone()
	}
	return members
}
