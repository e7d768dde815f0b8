package state

import (
	"context"

	"cafe-team.backend/internal/domain/entities"
	domainerrors "cafe-team.backend/internal/domain/errors"
	"github.com/google/uuid"
)

// ActiveLister reads the members shown on the public team page.
type ActiveLister interface {
	ListActive(ctx context.Context) ([]*entities.TeamMember, error)
}

// FeaturedLister reads the members promoted on the home page.
type FeaturedLister interface {
	ListFeatured(ctx context.Context) ([]*entities.TeamMember, error)
}

// StatsReader reads dashboard counts.
type StatsReader interface {
	GetStats(ctx context.Context) (*entities.TeamStats, error)
}

// MemberReader reads a single member.
type MemberReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error)
}

// MemberList is a read-only cached member list.
type MemberList struct {
	q *query[[]*entities.TeamMember]
}

// NewPublicTeam creates the active member list used by the public pages.
func NewPublicTeam(svc ActiveLister) *MemberList {
	return &MemberList{q: newQuery("Failed to load team members", svc.ListActive)}
}

// NewFeaturedTeam creates the featured member list.
func NewFeaturedTeam(svc FeaturedLister) *MemberList {
	return &MemberList{q: newQuery("Failed to load featured team members", svc.ListFeatured)}
}

// Mount performs the initial load.
func (l *MemberList) Mount(ctx context.Context) error { return l.q.load(ctx) }

// Refetch reloads the list.
func (l *MemberList) Refetch(ctx context.Context) error { return l.q.load(ctx) }

// Close discards any result still in flight.
func (l *MemberList) Close() { l.q.close() }

// Members returns a copy of the cached list.
func (l *MemberList) Members() []*entities.TeamMember {
	var out []*entities.TeamMember
	l.q.read(func(members []*entities.TeamMember) {
		out = cloneMembers(members)
	})
	return out
}

func (l *MemberList) Loading() bool  { return l.q.isLoading() }
func (l *MemberList) Error() string  { return l.q.errorMessage() }
func (l *MemberList) Status() Status { return l.q.status() }

// Stats caches the dashboard counts.
type Stats struct {
	q *query[entities.TeamStats]
}

// NewStats creates a stats container.
func NewStats(svc StatsReader) *Stats {
	return &Stats{q: newQuery("Failed to load team statistics", func(ctx context.Context) (entities.TeamStats, error) {
		s, err := svc.GetStats(ctx)
		if err != nil {
			return entities.TeamStats{}, err
		}
		return *s, nil
	})}
}

func (s *Stats) Mount(ctx context.Context) error   { return s.q.load(ctx) }
func (s *Stats) Refetch(ctx context.Context) error { return s.q.load(ctx) }
func (s *Stats) Close()                            { s.q.close() }
func (s *Stats) Loading() bool                     { return s.q.isLoading() }
func (s *Stats) Error() string                     { return s.q.errorMessage() }
func (s *Stats) Status() Status                    { return s.q.status() }

// Stats returns the cached counts; zero until the first load succeeds.
func (s *Stats) Stats() entities.TeamStats {
	var out entities.TeamStats
	s.q.read(func(v entities.TeamStats) { out = v })
	return out
}

// MemberView caches one member by id. A missing member leaves the view
// empty without an error.
type MemberView struct {
	id uuid.UUID
	q  *query[*entities.TeamMember]
}

// NewMemberView creates a view of id. uuid.Nil yields an idle, empty view.
func NewMemberView(svc MemberReader, id uuid.UUID) *MemberView {
	v := &MemberView{id: id}
	v.q = newQuery("Failed to load team member", func(ctx context.Context) (*entities.TeamMember, error) {
		if v.id == uuid.Nil {
			return nil, nil
		}
		m, err := svc.GetByID(ctx, v.id)
		if domainerrors.IsNotFound(err) {
			return nil, nil
		}
		return m, err
	})
	if id == uuid.Nil {
		v.q.loading = false
	}
	return v
}

func (v *MemberView) Mount(ctx context.Context) error   { return v.q.load(ctx) }
func (v *MemberView) Refetch(ctx context.Context) error { return v.q.load(ctx) }
func (v *MemberView) Close()                            { v.q.close() }
func (v *MemberView) Loading() bool                     { return v.q.isLoading() }
func (v *MemberView) Error() string                     { return v.q.errorMessage() }
func (v *MemberView) Status() Status                    { return v.q.status() }

// Member returns a copy of the cached member, or nil.
func (v *MemberView) Member() *entities.TeamMember {
	var out *entities.TeamMember
	v.q.read(func(m *entities.TeamMember) { out = m.Clone() })
	return out
}

func cloneMembers(members []*entities.TeamMember) []*entities.TeamMember {
	out := make([]*entities.TeamMember, 0, len(members))
	for _, m := range members {
		out = append(out, m.Clone())
	}
	return out
}
