package usecases

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cafe-team.backend/internal/domain/entities"
	domainerrors "cafe-team.backend/internal/domain/errors"
	"cafe-team.backend/internal/domain/repositories"
	"cafe-team.backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TeamMemberEntity is the entity name used on the change feed.
const TeamMemberEntity = "team_member"

// Change feed actions
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionReordered = "reordered"
)

var teamMutationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cafe",
	Subsystem: "team",
	Name:      "member_mutations_total",
	Help:      "The total number of team member mutations",
}, []string{"action", "outcome"})

var nowFunc = time.Now

// ChangePublisher is told about every successful write so live views can refetch.
type ChangePublisher interface {
	Publish(entity, action, id string)
}

// TeamMemberUsecase translates between the domain shape and the record store.
// It holds no cache; every call goes to the store.
type TeamMemberUsecase struct {
	repo      repositories.TeamMemberRepository
	images    repositories.ImageStorage
	publisher ChangePublisher
}

// NewTeamMemberUsecase creates a new team member usecase
func NewTeamMemberUsecase(
	repo repositories.TeamMemberRepository,
	images repositories.ImageStorage,
) *TeamMemberUsecase {
	return &TeamMemberUsecase{
		repo:   repo,
		images: images,
	}
}

// WithPublisher attaches a change feed.
func (u *TeamMemberUsecase) WithPublisher(p ChangePublisher) *TeamMemberUsecase {
	u.publisher = p
	return u
}

// ListAll returns every member in display order.
func (u *TeamMemberUsecase) ListAll(ctx context.Context) ([]*entities.TeamMember, error) {
	return u.list(ctx, entities.TeamMemberFilter{}, "Failed to fetch team members")
}

// ListActive returns active members in display order.
func (u *TeamMemberUsecase) ListActive(ctx context.Context) ([]*entities.TeamMember, error) {
	active := true
	return u.list(ctx, entities.TeamMemberFilter{Active: &active}, "Failed to fetch active team members")
}

// ListFeatured returns members that are both active and featured.
func (u *TeamMemberUsecase) ListFeatured(ctx context.Context) ([]*entities.TeamMember, error) {
	yes := true
	return u.list(ctx, entities.TeamMemberFilter{Active: &yes, Featured: &yes}, "Failed to fetch featured team members")
}

func (u *TeamMemberUsecase) list(ctx context.Context, filter entities.TeamMemberFilter, failure string) ([]*entities.TeamMember, error) {
	members, err := u.repo.List(ctx, filter)
	if err != nil {
		logger.Error(ctx, failure, zap.Error(err))
		return nil, err
	}
	for _, m := range members {
		u.resolveImageURL(m)
	}
	return members, nil
}

// GetByID returns a single member. A missing row yields ErrNotFound.
func (u *TeamMemberUsecase) GetByID(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error) {
	member, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if !domainerrors.IsNotFound(err) {
			logger.Error(ctx, "Failed to fetch team member", zap.String("id", id.String()), zap.Error(err))
		}
		return nil, err
	}
	return u.resolveImageURL(member), nil
}

// Create inserts a member and returns the stored record.
func (u *TeamMemberUsecase) Create(ctx context.Context, input *entities.TeamMemberInput) (*entities.TeamMember, error) {
	if input == nil || strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Position) == "" {
		return nil, domainerrors.BadRequest("name and position are required")
	}
	if input.YearsExperience != nil && *input.YearsExperience < 0 {
		return nil, domainerrors.BadRequest("years of experience cannot be negative")
	}

	member, err := u.repo.Create(ctx, input)
	if err != nil {
		logger.Error(ctx, "Failed to create team member", zap.Error(err))
		teamMutationCounter.WithLabelValues(ActionCreated, "error").Inc()
		return nil, err
	}

	u.changed(ActionCreated, member.ID.String())
	return u.resolveImageURL(member), nil
}

// Update applies only the fields present in patch.
func (u *TeamMemberUsecase) Update(ctx context.Context, id uuid.UUID, patch *entities.TeamMemberPatch) (*entities.TeamMember, error) {
	if patch == nil {
		patch = &entities.TeamMemberPatch{}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domainerrors.BadRequest("name cannot be empty")
	}
	if patch.Position != nil && strings.TrimSpace(*patch.Position) == "" {
		return nil, domainerrors.BadRequest("position cannot be empty")
	}
	if patch.YearsExperience != nil && *patch.YearsExperience < 0 {
		return nil, domainerrors.BadRequest("years of experience cannot be negative")
	}

	member, err := u.repo.Update(ctx, id, patch)
	if err != nil {
		logger.Error(ctx, "Failed to update team member", zap.String("id", id.String()), zap.Error(err))
		teamMutationCounter.WithLabelValues(ActionUpdated, "error").Inc()
		return nil, err
	}

	u.changed(ActionUpdated, id.String())
	return u.resolveImageURL(member), nil
}

// Delete removes the member row. Stored images are left to the caller.
func (u *TeamMemberUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		logger.Error(ctx, "Failed to delete team member", zap.String("id", id.String()), zap.Error(err))
		teamMutationCounter.WithLabelValues(ActionDeleted, "error").Inc()
		return err
	}

	u.changed(ActionDeleted, id.String())
	return nil
}

// ToggleFeatured negates the featured flag.
func (u *TeamMemberUsecase) ToggleFeatured(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error) {
	return u.toggle(ctx, id, entities.ToggleFeatured)
}

// ToggleActive negates the active flag.
func (u *TeamMemberUsecase) ToggleActive(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error) {
	return u.toggle(ctx, id, entities.ToggleActive)
}

// toggle flips the column in one store statement, so two concurrent toggles
// never lose an update.
func (u *TeamMemberUsecase) toggle(ctx context.Context, id uuid.UUID, field entities.ToggleField) (*entities.TeamMember, error) {
	member, err := u.repo.Flip(ctx, id, field)
	if err != nil {
		logger.Error(ctx, "Failed to toggle team member "+string(field)+" status", zap.String("id", id.String()), zap.Error(err))
		teamMutationCounter.WithLabelValues("toggle_"+string(field), "error").Inc()
		return nil, err
	}

	u.changed(ActionUpdated, id.String())
	return u.resolveImageURL(member), nil
}

// UploadImage stores a portrait and returns its storage key, not a URL.
// The key is the member id, or the current unix milliseconds when no member
// exists yet, followed by the original file extension.
func (u *TeamMemberUsecase) UploadImage(ctx context.Context, filename string, r io.Reader, memberID *uuid.UUID) (string, error) {
	key := ImageKey(filename, memberID, nowFunc())

	if err := u.images.Upload(ctx, key, r, true); err != nil {
		logger.Error(ctx, "Failed to upload image", zap.String("key", key), zap.Error(err))
		teamMutationCounter.WithLabelValues("upload_image", "error").Inc()
		return "", err
	}

	teamMutationCounter.WithLabelValues("upload_image", "ok").Inc()
	return key, nil
}

// ImageKey derives the storage key for an uploaded file.
func ImageKey(filename string, memberID *uuid.UUID, now time.Time) string {
	base := strconv.FormatInt(now.UnixMilli(), 10)
	if memberID != nil && *memberID != uuid.Nil {
		base = memberID.String()
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// PublicImageURL returns the public URL of a stored portrait.
func (u *TeamMemberUsecase) PublicImageURL(key string) string {
	return u.images.PublicURL(key)
}

// DeleteImage removes a stored portrait. An absent object is not an error.
func (u *TeamMemberUsecase) DeleteImage(ctx context.Context, key string) error {
	if err := u.images.Remove(ctx, key); err != nil {
		logger.Error(ctx, "Failed to delete image", zap.String("key", key), zap.Error(err))
		teamMutationCounter.WithLabelValues("delete_image", "error").Inc()
		return err
	}

	teamMutationCounter.WithLabelValues("delete_image", "ok").Inc()
	return nil
}

// GetNextDisplayOrder allocates through the store function and falls back to
// max+1 when the function is unavailable.
func (u *TeamMemberUsecase) GetNextDisplayOrder(ctx context.Context) (int, error) {
	next, err := u.repo.NextDisplayOrder(ctx)
	if err == nil {
		return next, nil
	}
	logger.Warn(ctx, "Next display order function failed, using max+1", zap.Error(err))

	highest, err := u.repo.MaxDisplayOrder(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to get next display order", zap.Error(err))
		return 0, err
	}
	return highest + 1, nil
}

// Reorder applies every (ids[i], orders[i]) pair as one unit.
func (u *TeamMemberUsecase) Reorder(ctx context.Context, ids []uuid.UUID, orders []int) error {
	if len(ids) != len(orders) {
		return domainerrors.BadRequest("ids and orders must have the same length")
	}
	if len(ids) == 0 {
		return nil
	}

	if err := u.repo.Reorder(ctx, ids, orders); err != nil {
		logger.Error(ctx, "Failed to reorder team members", zap.Int("count", len(ids)), zap.Error(err))
		teamMutationCounter.WithLabelValues(ActionReordered, "error").Inc()
		return err
	}

	u.changed(ActionReordered, "")
	return nil
}

// GetStats counts total, active and featured members concurrently.
// Featured counts only active members, matching ListFeatured.
func (u *TeamMemberUsecase) GetStats(ctx context.Context) (*entities.TeamStats, error) {
	yes := true
	var stats entities.TeamStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalMembers, err = u.repo.Count(gctx, entities.TeamMemberFilter{})
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveMembers, err = u.repo.Count(gctx, entities.TeamMemberFilter{Active: &yes})
		return err
	})
	g.Go(func() (err error) {
		stats.FeaturedMembers, err = u.repo.Count(gctx, entities.TeamMemberFilter{Active: &yes, Featured: &yes})
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Failed to fetch team stats", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}

func (u *TeamMemberUsecase) resolveImageURL(m *entities.TeamMember) *entities.TeamMember {
	if m == nil || u.images == nil {
		return m
	}
	if m.ImageFilePath != "" && !entities.IsAbsoluteURL(m.ImageURL) {
		m.ImageURL = u.images.PublicURL(m.ImageFilePath)
	}
	return m
}

func (u *TeamMemberUsecase) changed(action, id string) {
	teamMutationCounter.WithLabelValues(action, "ok").Inc()
	if u.publisher != nil {
		u.publisher.Publish(TeamMemberEntity, action, id)
	}
}
