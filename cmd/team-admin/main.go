package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"cafe-team.backend/internal/admin"
	"cafe-team.backend/internal/config"
	"cafe-team.backend/internal/domain/entities"
	"cafe-team.backend/internal/infrastructure/datasources/postgres"
	"cafe-team.backend/internal/infrastructure/repositories"
	"cafe-team.backend/internal/infrastructure/storage"
	"cafe-team.backend/internal/state"
	"cafe-team.backend/internal/usecases"
	"cafe-team.backend/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	loadCfg   = config.Load
	connectDB = postgres.NewConnection
	migrateDB = postgres.Migrate
	openDB    = func(sqlDB *sql.DB) (*gorm.DB, error) {
		return gorm.Open(gormpostgres.New(gormpostgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}), &gorm.Config{})
	}
)

func main() {
	_ = godotenv.Load()
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "team-admin",
		Short:        "Manage cafe team members",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose {
				logger.Init(loadCfg().Server.Env)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log service calls to stderr")

	root.AddCommand(
		listCommand(),
		showCommand(),
		previewCommand(),
		addCommand(),
		editCommand(),
		deleteCommand(),
		toggleCommand(),
		reorderCommand(),
		statsCommand(),
		nextOrderCommand(),
		migrateCommand(),
		tokenCommand(),
	)
	return root
}

type backend struct {
	db       *sql.DB
	svc      *usecases.TeamMemberUsecase
	workflow *admin.Workflow
}

type backendKey struct{}

func backendFrom(ctx context.Context) *backend {
	b, _ := ctx.Value(backendKey{}).(*backend)
	return b
}

// withBackend wires the store, the cached team and the workflow for a
// command that reads or writes members.
func withBackend(cmd *cobra.Command) *cobra.Command {
	var assumeYes bool
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to confirmation prompts")

	cmd.PreRunE = func(c *cobra.Command, _ []string) error {
		cfg := loadCfg()
		ctx := c.Context()

		sqlDB, err := connectDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		db, err := openDB(sqlDB)
		if err != nil {
			sqlDB.Close()
			return fmt.Errorf("open gorm: %w", err)
		}

		bucket := storage.NewLocalBucket(cfg.Storage.Root, entities.ImageBucket, cfg.Storage.PublicBaseURL)
		svc := usecases.NewTeamMemberUsecase(repositories.NewTeamMemberRepository(db), bucket)
		team := state.NewAdminTeam(svc)
		if err := team.Mount(ctx); err != nil {
			sqlDB.Close()
			return fmt.Errorf("%s: %w", team.Error(), err)
		}

		wf := admin.NewWorkflow(team,
			&promptConfirmer{in: c.InOrStdin(), out: c.ErrOrStderr(), assumeYes: assumeYes},
			&writerAlerter{out: c.ErrOrStderr()},
		)
		c.SetContext(context.WithValue(ctx, backendKey{}, &backend{db: sqlDB, svc: svc, workflow: wf}))
		return nil
	}
	cmd.PostRunE = func(c *cobra.Command, _ []string) error {
		b := backendFrom(c.Context())
		if b == nil {
			return nil
		}
		b.workflow.Team().Close()
		return b.db.Close()
	}
	return cmd
}
