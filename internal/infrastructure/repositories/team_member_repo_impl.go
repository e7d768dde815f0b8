package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cafe-team.backend/internal/domain/entities"
	domainerrors "cafe-team.backend/internal/domain/errors"
	"cafe-team.backend/internal/infrastructure/models"
	"cafe-team.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

const teamMemberOrder = "display_order ASC, created_at ASC, id ASC"

// TeamMemberRepository implements team member persistence on GORM
type TeamMemberRepository struct {
	db  *gorm.DB
	uow *UnitOfWorkImpl
}

// NewTeamMemberRepository creates a new team member repository
func NewTeamMemberRepository(db *gorm.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db, uow: &UnitOfWorkImpl{db: db}}
}

func (r *TeamMemberRepository) conn(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db).WithContext(ctx)
}

func applyTeamMemberFilter(query *gorm.DB, filter entities.TeamMemberFilter) *gorm.DB {
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	return query
}

// List returns members matching filter, ordered by display order
func (r *TeamMemberRepository) List(ctx context.Context, filter entities.TeamMemberFilter) ([]*entities.TeamMember, error) {
	var ms []models.TeamMember
	query := applyTeamMemberFilter(r.conn(ctx).Model(&models.TeamMember{}), filter)
	if err := query.Order(teamMemberOrder).Find(&ms).Error; err != nil {
		return nil, err
	}

	items := make([]*entities.TeamMember, 0, len(ms))
	for i := range ms {
		items = append(items, r.toEntity(&ms[i]))
	}
	return items, nil
}

// GetByID gets a member by ID
func (r *TeamMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error) {
	var m models.TeamMember
	if err := r.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Create inserts a member. The store assigns the ID and timestamps.
func (r *TeamMemberRepository) Create(ctx context.Context, input *entities.TeamMemberInput) (*entities.TeamMember, error) {
	m, err := r.toModel(input)
	if err != nil {
		return nil, err
	}
	m.ID = utils.GenerateUUIDv7()
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := r.conn(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toEntity(m), nil
}

// Update writes only the fields present in patch and returns the stored row
func (r *TeamMemberRepository) Update(ctx context.Context, id uuid.UUID, patch *entities.TeamMemberPatch) (*entities.TeamMember, error) {
	updates, err := patchColumns(patch)
	if err != nil {
		return nil, err
	}
	updates["updated_at"] = time.Now()

	result := r.conn(ctx).
		Model(&models.TeamMember{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a member row
func (r *TeamMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&models.TeamMember{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Count returns the exact number of rows matching filter
func (r *TeamMemberRepository) Count(ctx context.Context, filter entities.TeamMemberFilter) (int64, error) {
	var count int64
	query := applyTeamMemberFilter(r.conn(ctx).Model(&models.TeamMember{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Flip negates a boolean column in place, so concurrent toggles cannot lose an update
func (r *TeamMemberRepository) Flip(ctx context.Context, id uuid.UUID, field entities.ToggleField) (*entities.TeamMember, error) {
	if !field.Valid() {
		return nil, domainerrors.ErrInvalidInput
	}
	column := string(field)
	result := r.conn(ctx).
		Model(&models.TeamMember{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       gorm.Expr("NOT " + column),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// NextDisplayOrder calls the get_next_display_order() database function
func (r *TeamMemberRepository) NextDisplayOrder(ctx context.Context) (int, error) {
	var next null.Int
	if err := r.conn(ctx).Raw("SELECT get_next_display_order()").Row().Scan(&next); err != nil {
		return 0, err
	}
	if !next.Valid || next.Int < 1 {
		return 1, nil
	}
	return next.Int, nil
}

// MaxDisplayOrder returns the highest display order, 0 when the table is empty
func (r *TeamMemberRepository) MaxDisplayOrder(ctx context.Context) (int, error) {
	var maxOrder null.Int
	if err := r.conn(ctx).
		Model(&models.TeamMember{}).
		Select("MAX(display_order)").
		Row().
		Scan(&maxOrder); err != nil {
		return 0, err
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return maxOrder.Int, nil
}

// Reorder applies all (id, order) pairs in one transaction. Any unknown id
// rolls back the whole batch.
func (r *TeamMemberRepository) Reorder(ctx context.Context, ids []uuid.UUID, orders []int) error {
	if len(ids) != len(orders) {
		return domainerrors.BadRequest(fmt.Sprintf("reorder needs one order per id: got %d ids and %d orders", len(ids), len(orders)))
	}
	if len(ids) == 0 {
		return nil
	}

	return r.uow.Do(ctx, func(txCtx context.Context) error {
		now := time.Now()
		for i, id := range ids {
			result := r.conn(txCtx).
				Model(&models.TeamMember{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{
					"display_order": orders[i],
					"updated_at":    now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return domainerrors.ErrNotFound
			}
		}
		return nil
	})
}

func optionalString(s string) null.String {
	return null.NewString(s, s != "")
}

func optionalInt(v *int) null.Int {
	if v == nil || *v == 0 {
		return null.Int{}
	}
	return null.IntFrom(*v)
}

// nullable returns nil for an empty string so Updates writes NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func encodeSocialLinks(links entities.SocialLinks) (string, error) {
	b, err := json.Marshal(links)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func specialtiesArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}

func patchColumns(p *entities.TeamMemberPatch) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if p == nil {
		return updates, nil
	}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Position != nil {
		updates["position"] = *p.Position
	}
	if p.Bio != nil {
		updates["bio"] = nullable(*p.Bio)
	}
	if p.ImageURL != nil {
		updates["image_url"] = nullable(*p.ImageURL)
	}
	if p.ImageFilePath != nil {
		updates["image_file_path"] = nullable(*p.ImageFilePath)
	}
	if p.Email != nil {
		updates["email"] = nullable(*p.Email)
	}
	if p.Phone != nil {
		updates["phone"] = nullable(*p.Phone)
	}
	if p.SocialLinks != nil {
		links, err := encodeSocialLinks(*p.SocialLinks)
		if err != nil {
			return nil, err
		}
		updates["social_links"] = links
	}
	if p.Specialties != nil {
		updates["specialties"] = specialtiesArray(*p.Specialties)
	}
	if p.YearsExperience != nil {
		if *p.YearsExperience == 0 {
			updates["years_experience"] = nil
		} else {
			updates["years_experience"] = *p.YearsExperience
		}
	}
	if p.JoinDate != nil {
		updates["join_date"] = nullable(*p.JoinDate)
	}
	if p.DisplayOrder != nil {
		updates["display_order"] = *p.DisplayOrder
	}
	if p.Featured != nil {
		updates["featured"] = *p.Featured
	}
	if p.Active != nil {
		updates["active"] = *p.Active
	}
	return updates, nil
}

func (r *TeamMemberRepository) toEntity(m *models.TeamMember) *entities.TeamMember {
	var links entities.SocialLinks
	if m.SocialLinks != "" {
		// A malformed document degrades to no links rather than failing the read.
		_ = json.Unmarshal([]byte(m.SocialLinks), &links)
	}

	var years *int
	if m.YearsExperience.Valid {
		v := m.YearsExperience.Int
		years = &v
	}

	specialties := []string(m.Specialties)
	if specialties == nil {
		specialties = []string{}
	}

	return &entities.TeamMember{
		ID:              m.ID,
		Name:            m.Name,
		Position:        m.Position,
		Bio:             m.Bio.String,
		ImageURL:        m.ImageURL.String,
		ImageFilePath:   m.ImageFilePath.String,
		Email:           m.Email.String,
		Phone:           m.Phone.String,
		SocialLinks:     links,
		Specialties:     specialties,
		YearsExperience: years,
		JoinDate:        m.JoinDate.String,
		DisplayOrder:    m.DisplayOrder,
		Featured:        m.Featured,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *TeamMemberRepository) toModel(e *entities.TeamMemberInput) (*models.TeamMember, error) {
	links, err := encodeSocialLinks(e.SocialLinks)
	if err != nil {
		return nil, err
	}
	return &models.TeamMember{
		Name:            e.Name,
		Position:        e.Position,
		Bio:             optionalString(e.Bio),
		ImageURL:        optionalString(e.ImageURL),
		ImageFilePath:   optionalString(e.ImageFilePath),
		Email:           optionalString(e.Email),
		Phone:           optionalString(e.Phone),
		SocialLinks:     links,
		Specialties:     specialtiesArray(e.Specialties),
		YearsExperience: optionalInt(e.YearsExperience),
		JoinDate:        optionalString(e.JoinDate),
		DisplayOrder:    e.DisplayOrder,
		Featured:        e.Featured,
		Active:          e.Active,
	}, nil
}
