package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"cafe-team.backend/internal/admin"
	"cafe-team.backend/internal/domain/entities"
	domainerrors "cafe-team.backend/internal/domain/errors"
	"cafe-team.backend/internal/interfaces/http/response"
	"cafe-team.backend/pkg/logger"
	"cafe-team.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TeamMemberService is the team data service consumed by the HTTP layer.
type TeamMemberService interface {
	ListAll(ctx context.Context) ([]*entities.TeamMember, error)
	ListActive(ctx context.Context) ([]*entities.TeamMember, error)
	ListFeatured(ctx context.Context) ([]*entities.TeamMember, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error)
	Create(ctx context.Context, input *entities.TeamMemberInput) (*entities.TeamMember, error)
	Update(ctx context.Context, id uuid.UUID, patch *entities.TeamMemberPatch) (*entities.TeamMember, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleFeatured(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*entities.TeamMember, error)
	UploadImage(ctx context.Context, filename string, r io.Reader, memberID *uuid.UUID) (string, error)
	PublicImageURL(key string) string
	DeleteImage(ctx context.Context, key string) error
	GetNextDisplayOrder(ctx context.Context) (int, error)
	Reorder(ctx context.Context, ids []uuid.UUID, orders []int) error
	GetStats(ctx context.Context) (*entities.TeamStats, error)
}

type TeamMemberHandler struct {
	svc           TeamMemberService
	maxUploadSize int64
}

func NewTeamMemberHandler(svc TeamMemberService, maxUploadSize int64) *TeamMemberHandler {
	return &TeamMemberHandler{svc: svc, maxUploadSize: maxUploadSize}
}

// ListPublic returns active members for the public team page.
// GET /api/v1/team-members
func (h *TeamMemberHandler) ListPublic(c *gin.Context) {
	items, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// ListFeatured returns active featured members.
// GET /api/v1/team-members/featured
func (h *TeamMemberHandler) ListFeatured(c *gin.Context) {
	items, err := h.svc.ListFeatured(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// ListAdmin returns every member, optionally filtered and paginated.
// GET /api/v1/admin/team-members?filter=&position=&page=&limit=
func (h *TeamMemberHandler) ListAdmin(c *gin.Context) {
	filter, err := admin.ParseFilter(c.Query("filter"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var params utils.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, domainerrors.BadRequest("page and limit must be integers"))
		return
	}
	params = utils.GetPaginationParams(params.Page, params.Limit)

	items, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	position := strings.ToLower(strings.TrimSpace(c.Query("position")))
	out := make([]*entities.TeamMember, 0, len(items))
	for _, m := range items {
		switch {
		case filter == admin.FilterActive && !m.Active:
			continue
		case filter == admin.FilterFeatured && !m.EffectivelyFeatured():
			continue
		case position != "" && (!m.Active || !strings.Contains(strings.ToLower(m.Position), position)):
			continue
		}
		out = append(out, m)
	}

	start, end := params.Bounds(len(out))
	response.Paginated(c, out[start:end], utils.CalculateMeta(int64(len(out)), params.Page, params.Limit))
}

// GetTeamMember returns one member.
// GET /api/v1/admin/team-members/:id
func (h *TeamMemberHandler) GetTeamMember(c *gin.Context) {
	id, ok := parseMemberID(c)
	if !ok {
		return
	}
	member, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, notFoundAsMember(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"teamMember": member})
}

// CreateTeamMember creates a member. Active defaults to true when omitted.
// POST /api/v1/admin/team-members
func (h *TeamMemberHandler) CreateTeamMember(c *gin.Context) {
	input := entities.TeamMemberInput{Active: true}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	member, err := h.svc.Create(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message":    "Team member created",
		"teamMember": member,
	})
}

// UpdateTeamMember applies a partial update.
// PATCH /api/v1/admin/team-members/:id
func (h *TeamMemberHandler) UpdateTeamMember(c *gin.Context) {
	id, ok := parseMemberID(c)
	if !ok {
		return
	}
	var patch entities.TeamMemberPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	member, err := h.svc.Update(c.Request.Context(), id, &patch)
	if err != nil {
		response.Error(c, notFoundAsMember(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":    "Team member updated",
		"teamMember": member,
	})
}

// DeleteTeamMember removes a member and its stored portrait.
// DELETE /api/v1/admin/team-members/:id
func (h *TeamMemberHandler) DeleteTeamMember(c *gin.Context) {
	id, ok := parseMemberID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	member, err := h.svc.GetByID(ctx, id)
	if err != nil {
		response.Error(c, notFoundAsMember(err))
		return
	}
	if err := h.svc.Delete(ctx, id); err != nil {
		response.Error(c, notFoundAsMember(err))
		return
	}
	if member.ImageFilePath != "" {
		if err := h.svc.DeleteImage(ctx, member.ImageFilePath); err != nil {
			logger.Warn(ctx, "Member deleted but image removal failed",
				zap.String("id", id.String()), zap.String("key", member.ImageFilePath), zap.Error(err))
		}
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Team member deleted"})
}

// ToggleFeatured flips the featured flag.
// POST /api/v1/admin/team-members/:id/toggle-featured
func (h *TeamMemberHandler) ToggleFeatured(c *gin.Context) {
	h.toggle(c, h.svc.ToggleFeatured)
}

// ToggleActive flips the active flag.
// POST /api/v1/admin/team-members/:id/toggle-active
func (h *TeamMemberHandler) ToggleActive(c *gin.Context) {
	h.toggle(c, h.svc.ToggleActive)
}

func (h *TeamMemberHandler) toggle(c *gin.Context, flip func(context.Context, uuid.UUID) (*entities.TeamMember, error)) {
	id, ok := parseMemberID(c)
	if !ok {
		return
	}
	member, err := flip(c.Request.Context(), id)
	if err != nil {
		response.Error(c, notFoundAsMember(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"teamMember": member})
}

// ReorderTeamMembers assigns display orders pairwise.
// PUT /api/v1/admin/team-members/order
func (h *TeamMemberHandler) ReorderTeamMembers(c *gin.Context) {
	var input struct {
		IDs    []string `json:"ids"`
		Orders []int    `json:"orders"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	ids, err := utils.ParseUUIDs(input.IDs)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("ids must be valid UUIDs"))
		return
	}

	if err := h.svc.Reorder(c.Request.Context(), ids, input.Orders); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Team members reordered"})
}

// NextDisplayOrder returns the order a new member should take.
// GET /api/v1/admin/team-members/next-order
func (h *TeamMemberHandler) NextDisplayOrder(c *gin.Context) {
	next, err := h.svc.GetNextDisplayOrder(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"displayOrder": next})
}

// Stats returns dashboard counts.
// GET /api/v1/admin/team-members/stats
func (h *TeamMemberHandler) Stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// UploadImage stores a portrait from the multipart "file" field and points
// the member at it. A previous portrait under a different key is removed.
// POST /api/v1/admin/team-members/:id/image
func (h *TeamMemberHandler) UploadImage(c *gin.Context) {
	id, ok := parseMemberID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	member, err := h.svc.GetByID(ctx, id)
	if err != nil {
		response.Error(c, notFoundAsMember(err))
		return
	}
	previous := member.ImageFilePath

	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.ErrorWithError(c, http.StatusRequestEntityTooLarge, domainerrors.CodeBadRequest, "image exceeds upload limit")
			return
		}
		response.Error(c, domainerrors.BadRequest("file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	key, err := h.svc.UploadImage(ctx, header.Filename, file, &id)
	if err != nil {
		response.Error(c, err)
		return
	}

	url := h.svc.PublicImageURL(key)
	updated, err := h.svc.Update(ctx, id, &entities.TeamMemberPatch{ImageFilePath: &key, ImageURL: &url})
	if err != nil {
		response.Error(c, notFoundAsMember(err))
		return
	}

	if previous != "" && previous != key {
		if err := h.svc.DeleteImage(ctx, previous); err != nil {
			logger.Warn(ctx, "Failed to remove replaced image", zap.String("key", previous), zap.Error(err))
		}
	}
	response.Success(c, http.StatusOK, gin.H{
		"key":        key,
		"url":        url,
		"teamMember": updated,
	})
}

// DeleteImage removes the member's portrait and clears the image columns.
// DELETE /api/v1/admin/team-members/:id/image
func (h *TeamMemberHandler) DeleteImage(c *gin.Context) {
	id, ok := parseMemberID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	member, err := h.svc.GetByID(ctx, id)
	if err != nil {
		response.Error(c, notFoundAsMember(err))
		return
	}
	if member.ImageFilePath != "" {
		if err := h.svc.DeleteImage(ctx, member.ImageFilePath); err != nil {
			response.Error(c, err)
			return
		}
	}

	empty := ""
	updated, err := h.svc.Update(ctx, id, &entities.TeamMemberPatch{ImageFilePath: &empty, ImageURL: &empty})
	if err != nil {
		response.Error(c, notFoundAsMember(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"teamMember": updated})
}

func parseMemberID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid team member ID"))
		return uuid.Nil, false
	}
	return id, true
}

func notFoundAsMember(err error) error {
	var appErr *domainerrors.AppError
	if errors.Is(err, domainerrors.ErrNotFound) && !errors.As(err, &appErr) {
		return domainerrors.NotFound("team member not found")
	}
	return err
}
