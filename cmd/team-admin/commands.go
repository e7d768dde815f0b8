package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cafe-team.backend/internal/admin"
	"cafe-team.backend/internal/domain/entities"
	"cafe-team.backend/internal/state"
	"cafe-team.backend/pkg/jwt"
	"cafe-team.backend/pkg/utils"
	"github.com/caarlos0/tablewriter"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func listCommand() *cobra.Command {
	var filter, position string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List team members",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf := backendFrom(cmd.Context()).workflow
			f, err := admin.ParseFilter(filter)
			if err != nil {
				return err
			}
			wf.SetFilter(f)

			members := wf.Visible()
			if position != "" {
				members = wf.Team().MembersByPosition(position)
			}
			if len(members) == 0 {
				cmd.Println("No team members found")
				return nil
			}

			return tablewriter.Render(
				cmd.OutOrStdout(),
				members,
				[]string{"ID", "Order", "Name", "Position", "Active", "Featured", "Updated"},
				func(m *entities.TeamMember) ([]string, error) {
					updated := "-"
					if !m.UpdatedAt.IsZero() {
						updated = humanize.Time(m.UpdatedAt)
					}
					return []string{
						m.ID.String(),
						strconv.Itoa(m.DisplayOrder),
						m.Name,
						m.Position,
						strconv.FormatBool(m.Active),
						strconv.FormatBool(m.EffectivelyFeatured()),
						updated,
					}, nil
				},
			)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "Filter: all, active or featured")
	cmd.Flags().StringVar(&position, "position", "", "Only active members whose position contains this text")
	return withBackend(cmd)
}

func showCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a team member as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id: %w", err)
			}

			view := state.NewMemberView(backendFrom(cmd.Context()).svc, id)
			defer view.Close()
			if err := view.Mount(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", view.Error(), err)
			}
			m := view.Member()
			if m == nil {
				return fmt.Errorf("team member %s not found", id)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
	return withBackend(cmd)
}

func previewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the team as the public page renders it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc := backendFrom(ctx).svc

			featured := state.NewFeaturedTeam(svc)
			team := state.NewPublicTeam(svc)
			stats := state.NewStats(svc)
			defer featured.Close()
			defer team.Close()
			defer stats.Close()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return featured.Mount(gctx) })
			g.Go(func() error { return team.Mount(gctx) })
			g.Go(func() error { return stats.Mount(gctx) })
			if err := g.Wait(); err != nil {
				for _, msg := range []string{featured.Error(), team.Error(), stats.Error()} {
					if msg != "" {
						return fmt.Errorf("%s: %w", msg, err)
					}
				}
				return err
			}

			s := stats.Stats()
			cmd.Printf("%d members, %d active, %d featured\n", s.TotalMembers, s.ActiveMembers, s.FeaturedMembers)
			cmd.Println()
			cmd.Println("Featured")
			for _, m := range featured.Members() {
				cmd.Printf("  * %s, %s\n", m.Name, m.Position)
			}
			cmd.Println()
			cmd.Println("Our team")
			for _, m := range team.Members() {
				cmd.Printf("  %s, %s\n", m.Name, m.Position)
			}
			return nil
		},
	}
	return withBackend(cmd)
}

// memberFlags are the editable fields shared by add and edit. Only flags
// set on the command line are applied to the form.
type memberFlags struct {
	name, position, bio      string
	email, phone, joinDate   string
	image                    string
	years, order             int
	active, featured         bool
	specialties, unspecialty []string
	links                    entities.SocialLinks
}

func (f *memberFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "Name")
	fs.StringVar(&f.position, "position", "", "Position")
	fs.StringVar(&f.bio, "bio", "", "Short biography")
	fs.StringVar(&f.email, "email", "", "Email address")
	fs.StringVar(&f.phone, "phone", "", "Phone number")
	fs.StringVar(&f.joinDate, "join-date", "", "Join date (YYYY-MM-DD)")
	fs.StringVar(&f.image, "image", "", "Portrait file to upload")
	fs.IntVar(&f.years, "years", 0, "Years of experience")
	fs.IntVar(&f.order, "order", 0, "Display order")
	fs.BoolVar(&f.active, "active", true, "Show on the public page")
	fs.BoolVar(&f.featured, "featured", false, "Promote on the featured strip")
	fs.StringSliceVar(&f.specialties, "specialty", nil, "Specialty tag (repeatable)")
	fs.StringSliceVar(&f.unspecialty, "remove-specialty", nil, "Specialty tag to remove (repeatable)")
	fs.StringVar(&f.links.LinkedIn, "linkedin", "", "LinkedIn URL")
	fs.StringVar(&f.links.Twitter, "twitter", "", "Twitter URL")
	fs.StringVar(&f.links.Instagram, "instagram", "", "Instagram URL")
	fs.StringVar(&f.links.Facebook, "facebook", "", "Facebook URL")
}

func (f *memberFlags) apply(cmd *cobra.Command, form *admin.Form) {
	changed := cmd.Flags().Changed
	setString := func(flag string, dst *string, v string) {
		if changed(flag) {
			*dst = v
		}
	}
	setString("name", &form.Name, f.name)
	setString("position", &form.Position, f.position)
	setString("bio", &form.Bio, f.bio)
	setString("email", &form.Email, f.email)
	setString("phone", &form.Phone, f.phone)
	setString("join-date", &form.JoinDate, f.joinDate)
	setString("linkedin", &form.SocialLinks.LinkedIn, f.links.LinkedIn)
	setString("twitter", &form.SocialLinks.Twitter, f.links.Twitter)
	setString("instagram", &form.SocialLinks.Instagram, f.links.Instagram)
	setString("facebook", &form.SocialLinks.Facebook, f.links.Facebook)
	if changed("years") {
		form.YearsExperience = f.years
	}
	if changed("order") {
		form.DisplayOrder = f.order
	}
	if changed("active") {
		form.Active = f.active
	}
	if changed("featured") {
		form.Featured = f.featured
	}
	for _, tag := range f.specialties {
		form.AddSpecialty(tag)
	}
	for _, tag := range f.unspecialty {
		form.RemoveSpecialty(tag)
	}
}

func (f *memberFlags) attachImage(cmd *cobra.Command, wf *admin.Workflow) error {
	if f.image == "" {
		return nil
	}
	file, err := os.Open(f.image)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	_, err = wf.AttachImage(cmd.Context(), filepath.Base(f.image), file)
	return err
}

func addCommand() *cobra.Command {
	var flags memberFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a team member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			wf := backendFrom(ctx).workflow

			form := wf.Add(ctx)
			flags.apply(cmd, form)
			if err := flags.attachImage(cmd, wf); err != nil {
				return err
			}
			m, err := wf.Save(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("Created %s (%s)\n", m.Name, m.ID)
			return nil
		},
	}
	flags.bind(cmd)
	return withBackend(cmd)
}

func editCommand() *cobra.Command {
	var flags memberFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a team member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			wf := backendFrom(ctx).workflow
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id: %w", err)
			}

			form, err := wf.Edit(id)
			if err != nil {
				return err
			}
			flags.apply(cmd, form)
			if err := flags.attachImage(cmd, wf); err != nil {
				return err
			}
			m, err := wf.Save(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("Updated %s (%s)\n", m.Name, m.ID)
			return nil
		},
	}
	flags.bind(cmd)
	return withBackend(cmd)
}

func deleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a team member",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf := backendFrom(cmd.Context()).workflow
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id: %w", err)
			}

			deleted, err := wf.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				cmd.Println("Cancelled")
				return nil
			}
			cmd.Println("Deleted", id)
			return nil
		},
	}
	return withBackend(cmd)
}

func toggleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "toggle ID active|featured",
		Short:     "Flip a member's active or featured flag",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(entities.ToggleActive), string(entities.ToggleFeatured)},
		RunE: func(cmd *cobra.Command, args []string) error {
			wf := backendFrom(cmd.Context()).workflow
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id: %w", err)
			}
			field := entities.ToggleField(strings.ToLower(args[1]))
			if !field.Valid() {
				return fmt.Errorf("unknown field %q: use active or featured", args[1])
			}

			m, err := wf.ToggleStatus(cmd.Context(), id, field)
			if err != nil {
				return err
			}
			cmd.Printf("%s: active=%t featured=%t\n", m.Name, m.Active, m.Featured)
			return nil
		},
	}
	return withBackend(cmd)
}

func reorderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder ID...",
		Short: "Set display order 1..n following the given ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf := backendFrom(cmd.Context()).workflow
			ids, err := utils.ParseUUIDs(args)
			if err != nil {
				return fmt.Errorf("invalid member id: %w", err)
			}
			orders := make([]int, len(ids))
			for i := range orders {
				orders[i] = i + 1
			}

			if err := wf.Team().Reorder(cmd.Context(), ids, orders); err != nil {
				return err
			}
			cmd.Printf("Reordered %d members\n", len(ids))
			return nil
		},
	}
	return withBackend(cmd)
}

func statsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := backendFrom(cmd.Context()).workflow.Dashboard()
			cmd.Printf("Total members:      %d\n", d.TotalMembers)
			cmd.Printf("Active members:     %d\n", d.ActiveMembers)
			cmd.Printf("Featured members:   %d\n", d.FeaturedMembers)
			cmd.Printf("Average experience: %d years\n", d.AverageExperience)
			return nil
		},
	}
	return withBackend(cmd)
}

func nextOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next-order",
		Short: "Print the display order a new member would get",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			team := backendFrom(cmd.Context()).workflow.Team()
			cmd.Println(team.NextDisplayOrder(cmd.Context()))
			return nil
		},
	}
	return withBackend(cmd)
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sqlDB, err := connectDB(loadCfg().Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer sqlDB.Close()

			if err := migrateDB(sqlDB); err != nil {
				return fmt.Errorf("migration: %w", err)
			}
			cmd.Println("Migrations applied")
			return nil
		},
	}
}

func tokenCommand() *cobra.Command {
	var subject, email, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin access token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadCfg()
			if role == "" {
				role = cfg.JWT.AdminRole
			}
			token, err := jwt.NewJWTService(cfg.JWT.Secret, ttl).GenerateToken(subject, email, role)
			if err != nil {
				return err
			}
			cmd.PrintErrln("Access token created (expires " + humanize.Time(time.Now().Add(ttl)) + ")")
			cmd.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "team-admin", "Token subject")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&role, "role", "", "Role claim (defaults to JWT_ADMIN_ROLE)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
