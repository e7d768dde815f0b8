package admin

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"cafe-team.backend/internal/domain/entities"
	"cafe-team.backend/internal/infrastructure/repositories"
	"cafe-team.backend/internal/infrastructure/storage"
	"cafe-team.backend/internal/state"
	"cafe-team.backend/internal/usecases"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type scriptedConfirmer struct {
	answer  bool
	prompts []string
}

func (c *scriptedConfirmer) Confirm(_ context.Context, prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (a *recordingAlerter) Alert(_ context.Context, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, message)
}

func (a *recordingAlerter) last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.alerts) == 0 {
		return ""
	}
	return a.alerts[len(a.alerts)-1]
}

type harness struct {
	db       *gorm.DB
	svc      *usecases.TeamMemberUsecase
	team     *state.AdminTeam
	confirm  *scriptedConfirmer
	alert    *recordingAlerter
	workflow *Workflow
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE team_members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		bio TEXT,
		image_url TEXT,
		image_file_path TEXT,
		email TEXT,
		phone TEXT,
		social_links TEXT NOT NULL DEFAULT '{}',
		specialties TEXT NOT NULL DEFAULT '{}',
		years_experience INTEGER,
		join_date TEXT,
		display_order INTEGER NOT NULL DEFAULT 0,
		featured BOOLEAN NOT NULL DEFAULT false,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME,
		updated_at DATETIME
	);`).Error)

	bucket := storage.NewLocalBucket(t.TempDir(), entities.ImageBucket, "http://cdn.test")
	svc := usecases.NewTeamMemberUsecase(repositories.NewTeamMemberRepository(db), bucket)
	team := state.NewAdminTeam(svc)
	require.NoError(t, team.Mount(context.Background()))
	t.Cleanup(team.Close)

	h := &harness{
		db:      db,
		svc:     svc,
		team:    team,
		confirm: &scriptedConfirmer{answer: true},
		alert:   &recordingAlerter{},
	}
	h.workflow = NewWorkflow(team, h.confirm, h.alert)
	return h
}

func (h *harness) add(t *testing.T, name, position string, years int, featured, active bool) *entities.TeamMember {
	t.Helper()
	f := h.workflow.Add(context.Background())
	f.Name, f.Position, f.YearsExperience, f.Featured, f.Active = name, position, years, featured, active
	m, err := h.workflow.Save(context.Background())
	require.NoError(t, err)
	return m
}
