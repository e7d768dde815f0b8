package admin

import (
	"context"
	"strings"
	"testing"

	"cafe-team.backend/internal/domain/entities"
	domainerrors "cafe-team.backend/internal/domain/errors"
	"cafe-team.backend/internal/state"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_AddPrefillsNextDisplayOrder(t *testing.T) {
	h := newHarness(t)

	f := h.workflow.Add(context.Background())
	assert.Equal(t, 1, f.DisplayOrder)
	assert.True(t, f.Active)
	assert.False(t, f.Featured)
	assert.Same(t, f, h.workflow.Form())

	h.workflow.Cancel()
	assert.Nil(t, h.workflow.Form())

	h.add(t, "Asha Rao", "Head Barista", 0, false, true)
	assert.Equal(t, 2, h.workflow.Add(context.Background()).DisplayOrder)
}

func TestWorkflow_SaveCreatesScenarioMember(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	m := h.add(t, "Asha Rao", "Head Barista", 0, false, true)
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.False(t, m.CreatedAt.IsZero())
	assert.False(t, m.UpdatedAt.IsZero())
	assert.Nil(t, h.workflow.Form())

	active, err := h.svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	featured, err := h.svc.ListFeatured(ctx)
	require.NoError(t, err)
	assert.Empty(t, featured)

	toggled, err := h.workflow.ToggleStatus(ctx, m.ID, entities.ToggleFeatured)
	require.NoError(t, err)
	assert.True(t, toggled.Featured)
	featured, err = h.svc.ListFeatured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 1)
}

func TestWorkflow_SaveValidationNeverReachesService(t *testing.T) {
	h := newHarness(t)
	h.workflow.Add(context.Background())

	_, err := h.workflow.Save(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	assert.Equal(t, MsgRequiredFields, h.alert.last())
	assert.NotNil(t, h.workflow.Form())

	all, err := h.svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWorkflow_SaveWithoutForm(t *testing.T) {
	h := newHarness(t)
	_, err := h.workflow.Save(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestWorkflow_EditUpdatesAndClearsFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f := h.workflow.Add(ctx)
	f.Name, f.Position, f.Bio = "Ben", "Barista", "Loves beans"
	f.AddSpecialty("Cold brew")
	created, err := h.workflow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Loves beans", created.Bio)

	f, err = h.workflow.Edit(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loves beans", f.Bio)
	f.Bio = ""
	f.Position = "Senior Barista"
	f.RemoveSpecialty("Cold brew")

	updated, err := h.workflow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Empty(t, updated.Bio)
	assert.Equal(t, "Senior Barista", updated.Position)
	assert.Empty(t, updated.Specialties)

	cached, ok := h.team.Member(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Senior Barista", cached.Position)

	_, err = h.workflow.Edit(uuid.New())
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestWorkflow_SaveFailureAlerts(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "Ben", "Barista", 0, false, true)
	_, err := h.workflow.Edit(m.ID)
	require.NoError(t, err)

	require.NoError(t, h.db.Exec("DELETE FROM team_members").Error)
	_, err = h.workflow.Save(context.Background())
	assert.True(t, domainerrors.IsNotFound(err))
	assert.Equal(t, AlertSaveFailed, h.alert.last())
	assert.Equal(t, state.MsgUpdateFailed, h.team.Error())
	assert.NotNil(t, h.workflow.Form())
}

func TestWorkflow_DeleteConfirmation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.add(t, "Ben", "Barista", 0, false, true)

	h.confirm.answer = false
	deleted, err := h.workflow.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, []string{"Are you sure you want to delete Ben?"}, h.confirm.prompts)
	assert.Len(t, h.team.Members(), 1)

	h.confirm.answer = true
	deleted, err = h.workflow.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, h.team.Members())

	_, err = h.workflow.Delete(ctx, m.ID)
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestWorkflow_DeleteFailureAlerts(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "Ben", "Barista", 0, false, true)
	require.NoError(t, h.db.Exec("DELETE FROM team_members").Error)

	deleted, err := h.workflow.Delete(context.Background(), m.ID)
	assert.False(t, deleted)
	assert.True(t, domainerrors.IsNotFound(err))
	assert.Equal(t, AlertDeleteFailed, h.alert.last())
}

func TestWorkflow_ToggleStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.add(t, "Ben", "Barista", 0, false, true)

	off, err := h.workflow.ToggleStatus(ctx, m.ID, entities.ToggleActive)
	require.NoError(t, err)
	assert.False(t, off.Active)

	_, err = h.workflow.ToggleStatus(ctx, m.ID, entities.ToggleField("visible"))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = h.workflow.ToggleStatus(ctx, uuid.New(), entities.ToggleFeatured)
	assert.True(t, domainerrors.IsNotFound(err))
	assert.Equal(t, "Failed to update featured status. Please try again.", h.alert.last())
}

func TestWorkflow_AttachImage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.workflow.AttachImage(ctx, "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	m := h.add(t, "Ben", "Barista", 0, false, true)
	f, err := h.workflow.Edit(m.ID)
	require.NoError(t, err)

	key, err := h.workflow.AttachImage(ctx, "portrait.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, m.ID.String()+".png", key)
	assert.Equal(t, key, f.ImageFilePath)

	saved, err := h.workflow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, saved.ImageFilePath)
	assert.Equal(t, "http://cdn.test/team-images/"+key, saved.ImageURL)
}
