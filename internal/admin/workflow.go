// Package admin drives the team management console: the member form,
// list filtering, the dashboard and the confirm and alert flows around
// each mutation.
package admin

import (
	"context"
	"fmt"
	"io"
	"sync"

	"cafe-team.backend/internal/domain/entities"
	domainerrors "cafe-team.backend/internal/domain/errors"
	"cafe-team.backend/internal/state"
	"cafe-team.backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Alert messages shown after a failed action.
const (
	AlertSaveFailed   = "Failed to save team member. Please try again."
	AlertDeleteFailed = "Failed to delete team member. Please try again."
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Alerter shows a blocking message to the operator.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// Workflow is one operator's session in the team console.
type Workflow struct {
	team    *state.AdminTeam
	confirm Confirmer
	alert   Alerter

	mu     sync.Mutex
	form   *Form
	filter Filter
}

// NewWorkflow creates a workflow over a mounted AdminTeam.
func NewWorkflow(team *state.AdminTeam, confirm Confirmer, alert Alerter) *Workflow {
	return &Workflow{
		team:    team,
		confirm: confirm,
		alert:   alert,
		filter:  FilterAll,
	}
}

// Team returns the underlying container.
func (w *Workflow) Team() *state.AdminTeam {
	return w.team
}

// Add opens a blank form at the next display order.
func (w *Workflow) Add(ctx context.Context) *Form {
	f := NewForm(w.team.NextDisplayOrder(ctx))
	w.mu.Lock()
	w.form = f
	w.mu.Unlock()
	return f
}

// Edit opens a form pre-filled from the cached member.
func (w *Workflow) Edit(id uuid.UUID) (*Form, error) {
	m, ok := w.team.Member(id)
	if !ok {
		return nil, domainerrors.NotFound("team member not found")
	}
	f := FormFrom(m)
	w.mu.Lock()
	w.form = f
	w.mu.Unlock()
	return f, nil
}

// Form returns the open form, or nil.
func (w *Workflow) Form() *Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Cancel closes the open form without saving.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	w.form = nil
	w.mu.Unlock()
}

// AttachImage uploads a portrait for the open form and records its key.
func (w *Workflow) AttachImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	f := w.Form()
	if f == nil {
		return "", domainerrors.BadRequest("no open form")
	}

	var memberID *uuid.UUID
	if !f.IsNew() {
		id := f.ID
		memberID = &id
	}
	key, err := w.team.UploadImage(ctx, filename, r, memberID)
	if err != nil {
		w.alert.Alert(ctx, w.team.Error())
		return "", err
	}
	f.ImageFilePath = key
	f.ImageURL = ""
	return key, nil
}

// Save validates the open form and creates or updates the member.
// Validation failures never reach the service.
func (w *Workflow) Save(ctx context.Context) (*entities.TeamMember, error) {
	f := w.Form()
	if f == nil {
		return nil, domainerrors.BadRequest("no open form")
	}
	if err := f.Validate(); err != nil {
		w.alert.Alert(ctx, MsgRequiredFields)
		return nil, err
	}

	var (
		saved *entities.TeamMember
		err   error
	)
	if f.IsNew() {
		saved, err = w.team.Create(ctx, f.Input())
	} else {
		saved, err = w.team.Update(ctx, f.ID, f.Patch())
	}
	if err != nil {
		logger.Error(ctx, "Error saving team member", zap.Error(err))
		w.alert.Alert(ctx, AlertSaveFailed)
		return nil, err
	}

	w.Cancel()
	return saved, nil
}

// Delete asks for confirmation, then deletes the member. It reports
// whether the member was deleted.
func (w *Workflow) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	m, ok := w.team.Member(id)
	if !ok {
		return false, domainerrors.NotFound("team member not found")
	}
	if !w.confirm.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete %s?", m.Name)) {
		return false, nil
	}

	if err := w.team.Delete(ctx, id); err != nil {
		logger.Error(ctx, "Error deleting team member", zap.Error(err))
		w.alert.Alert(ctx, AlertDeleteFailed)
		return false, err
	}
	return true, nil
}

// ToggleStatus flips featured or active straight from the list.
func (w *Workflow) ToggleStatus(ctx context.Context, id uuid.UUID, field entities.ToggleField) (*entities.TeamMember, error) {
	var (
		m   *entities.TeamMember
		err error
	)
	switch field {
	case entities.ToggleFeatured:
		m, err = w.team.ToggleFeatured(ctx, id)
	case entities.ToggleActive:
		m, err = w.team.ToggleActive(ctx, id)
	default:
		return nil, domainerrors.BadRequest("unknown status field")
	}
	if err != nil {
		logger.Error(ctx, "Error toggling team member status", zap.String("field", string(field)), zap.Error(err))
		w.alert.Alert(ctx, fmt.Sprintf("Failed to update %s status. Please try again.", field))
		return nil, err
	}
	return m, nil
}

// SetFilter changes the list selector.
func (w *Workflow) SetFilter(f Filter) {
	w.mu.Lock()
	w.filter = f
	w.mu.Unlock()
}

// Visible returns the members the current filter shows.
func (w *Workflow) Visible() []*entities.TeamMember {
	w.mu.Lock()
	f := w.filter
	w.mu.Unlock()
	return f.Apply(w.team)
}

// Dashboard summarizes the cached list.
func (w *Workflow) Dashboard() Dashboard {
	return BuildDashboard(w.team)
}
