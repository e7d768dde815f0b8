package state

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"cafe-team.backend/internal/domain/entities"
	domainerrors "cafe-team.backend/internal/domain/errors"
	"github.com/google/uuid"
)

var errTransport = errors.New("transport failure")

// fakeTeamService is an in-memory team data service with per-call failure
// switches.
type fakeTeamService struct {
	mu      sync.Mutex
	members map[uuid.UUID]*entities.TeamMember
	images  map[string]bool
	clock   time.Time

	failList, failCreate, failUpdate, failDelete bool
	failToggle, failUpload, failImageDelete      bool
	failReorder, failNextOrder, failStats        bool
	failGet                                      bool

	// listGate, when set, blocks ListAll until it is closed.
	listGate chan struct{}

	deletedImages []string
}

func newFakeTeamService() *fakeTeamService {
	return &fakeTeamService{
		members: map[uuid.UUID]*entities.TeamMember{},
		images:  map[string]bool{},
		clock:   time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeTeamService) seed(name, position string, order int, featured, active bool) *entities.TeamMember {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Second)
	m := &entities.TeamMember{
		ID: uuid.New(), Name: name, Position: position, DisplayOrder: order,
		Featured: featured, Active: active, Specialties: []string{},
		CreatedAt: f.clock, UpdatedAt: f.clock,
	}
	f.members[m.ID] = m
	return m.Clone()
}

func (f *fakeTeamService) list(keep func(*entities.TeamMember) bool) []*entities.TeamMember {
	out := []*entities.TeamMember{}
	for _, m := range f.members {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	entities.SortTeamMembers(out)
	return out
}

func (f *fakeTeamService) ListAll(ctx context.Context) ([]*entities.TeamMember, error) {
	if f.listGate != nil {
		select {
		case <-f.listGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errTransport
	}
	return f.list(func(*entities.TeamMember) bool { return true }), nil
}

func (f *fakeTeamService) ListActive(context.Context) ([]*entities.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errTransport
	}
	return f.list(func(m *entities.TeamMember) bool { return m.Active }), nil
}

func (f *fakeTeamService) ListFeatured(context.Context) ([]*entities.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errTransport
	}
	return f.list(func(m *entities.TeamMember) bool { return m.EffectivelyFeatured() }), nil
}

func (f *fakeTeamService) GetByID(_ context.Context, id uuid.UUID) (*entities.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errTransport
	}
	m, ok := f.members[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return m.Clone(), nil
}

func (f *fakeTeamService) GetStats(context.Context) (*entities.TeamStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStats {
		return nil, errTransport
	}
	var s entities.TeamStats
	for _, m := range f.members {
		s.TotalMembers++
		if m.Active {
			s.ActiveMembers++
		}
		if m.EffectivelyFeatured() {
			s.FeaturedMembers++
		}
	}
	return &s, nil
}

func (f *fakeTeamService) Create(_ context.Context, in *entities.TeamMemberInput) (*entities.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return nil, errTransport
	}
	f.clock = f.clock.Add(time.Second)
	m := &entities.TeamMember{
		ID: uuid.New(), Name: in.Name, Position: in.Position, Bio: in.Bio,
		ImageURL: in.ImageURL, ImageFilePath: in.ImageFilePath,
		Specialties: append([]string{}, in.Specialties...), YearsExperience: in.YearsExperience,
		DisplayOrder: in.DisplayOrder, Featured: in.Featured, Active: in.Active,
		CreatedAt: f.clock, UpdatedAt: f.clock,
	}
	f.members[m.ID] = m
	return m.Clone(), nil
}

func (f *fakeTeamService) Update(_ context.Context, id uuid.UUID, p *entities.TeamMemberPatch) (*entities.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return nil, errTransport
	}
	m, ok := f.members[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Position != nil {
		m.Position = *p.Position
	}
	if p.Bio != nil {
		m.Bio = *p.Bio
	}
	if p.ImageFilePath != nil {
		m.ImageFilePath = *p.ImageFilePath
	}
	if p.DisplayOrder != nil {
		m.DisplayOrder = *p.DisplayOrder
	}
	if p.Featured != nil {
		m.Featured = *p.Featured
	}
	if p.Active != nil {
		m.Active = *p.Active
	}
	return m.Clone(), nil
}

func (f *fakeTeamService) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errTransport
	}
	if _, ok := f.members[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(f.members, id)
	return nil
}

func (f *fakeTeamService) flip(id uuid.UUID, field entities.ToggleField) (*entities.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failToggle {
		return nil, errTransport
	}
	m, ok := f.members[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	if field == entities.ToggleFeatured {
		m.Featured = !m.Featured
	} else {
		m.Active = !m.Active
	}
	return m.Clone(), nil
}

func (f *fakeTeamService) ToggleFeatured(_ context.Context, id uuid.UUID) (*entities.TeamMember, error) {
	return f.flip(id, entities.ToggleFeatured)
}

func (f *fakeTeamService) ToggleActive(_ context.Context, id uuid.UUID) (*entities.TeamMember, error) {
	return f.flip(id, entities.ToggleActive)
}

func (f *fakeTeamService) UploadImage(_ context.Context, filename string, r io.Reader, memberID *uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return "", errTransport
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	key := "upload-" + filename
	if memberID != nil {
		key = memberID.String() + "-" + filename
	}
	f.images[key] = true
	return key, nil
}

func (f *fakeTeamService) DeleteImage(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failImageDelete {
		return errTransport
	}
	delete(f.images, key)
	f.deletedImages = append(f.deletedImages, key)
	return nil
}

func (f *fakeTeamService) GetNextDisplayOrder(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextOrder {
		return 0, errTransport
	}
	highest := 0
	for _, m := range f.members {
		if m.DisplayOrder > highest {
			highest = m.DisplayOrder
		}
	}
	return highest + 1, nil
}

func (f *fakeTeamService) Reorder(_ context.Context, ids []uuid.UUID, orders []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReorder {
		return errTransport
	}
	if len(ids) != len(orders) {
		return domainerrors.ErrInvalidInput
	}
	for _, id := range ids {
		if _, ok := f.members[id]; !ok {
			return domainerrors.ErrNotFound
		}
	}
	for i, id := range ids {
		f.members[id].DisplayOrder = orders[i]
	}
	return nil
}

func (f *fakeTeamService) set(apply func(f *fakeTeamService)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apply(f)
}

func names(members []*entities.TeamMember) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Name)
	}
	return out
}

func isSorted(members []*entities.TeamMember) bool {
	return sort.SliceIsSorted(members, func(i, j int) bool {
		return members[i].DisplayOrder < members[j].DisplayOrder
	})
}
