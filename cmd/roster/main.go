package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/config"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/fixtures"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/estate-attendance-go/internal/repository/postgresql"
	scheduleService "github.com/cmlabs-hris/estate-attendance-go/internal/service/schedule"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "roster",
		Short:         "Inspect estate shift rosters offline",
		SilenceUsage:  true,
	}
	root.AddCommand(newPrintCmd(), newTokenCmd(), newSeedCmd())
	return root
}

type printOptions struct {
	role     string
	offset   int
	from     string
	days     int
	timezone string
	epoch    string
	ics      bool
}

func newPrintCmd() *cobra.Command {
	opts := printOptions{}
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the resolved shifts of a worker profile",
		Example: "  roster print --role SECURITY --offset 2 --from 2025-03-01 --days 14\n" +
			"  roster print --role KEBERSIHAN --days 7 --ics > roster.ics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrint(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.role, "role", string(worker.RoleSecurity), "worker role")
	f.IntVar(&opts.offset, "offset", 0, "rotation offset (0-4), security only")
	f.StringVar(&opts.from, "from", "", "first date, YYYY-MM-DD (default today)")
	f.IntVar(&opts.days, "days", 7, "number of days to print")
	f.StringVar(&opts.timezone, "tz", "Asia/Jakarta", "IANA timezone of the site")
	f.StringVar(&opts.epoch, "epoch", "", "rotation epoch, YYYY-MM-DD (default 2025-01-01)")
	f.BoolVar(&opts.ics, "ics", false, "emit an iCalendar feed instead of a table")
	return cmd
}

func runPrint(cmd *cobra.Command, opts printOptions) error {
	role, ok := worker.ParseRole(opts.role)
	if !ok {
		return fmt.Errorf("%w: %q", worker.ErrInvalidRole, opts.role)
	}
	if opts.offset < 0 || opts.offset >= worker.RotationCycleLength {
		return worker.ErrInvalidRotationOffset
	}
	if opts.days < 1 || opts.days > 366 {
		return fmt.Errorf("days must be between 1 and 366")
	}

	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	settings := config.DefaultSettings(loc)
	if opts.epoch != "" {
		epoch, err := calendar.ParseDate(opts.epoch)
		if err != nil {
			return fmt.Errorf("invalid epoch: %w", err)
		}
		settings.ScheduleEpoch = epoch.Start(loc)
	}

	from := calendar.DateIn(time.Now(), loc)
	if opts.from != "" {
		if from, err = calendar.ParseDate(opts.from); err != nil {
			return fmt.Errorf("invalid from date: %w", err)
		}
	}

	w := worker.Worker{
		ID:             fmt.Sprintf("%s-%d", role, opts.offset),
		FullName:       fmt.Sprintf("%s offset %d", role, opts.offset),
		Role:           role,
		RotationOffset: opts.offset,
		IsActive:       true,
	}
	engine := scheduleService.NewEngine(settings)
	entries, err := scheduleService.BuildRoster(engine, w, calendar.Range{From: from, To: from.AddDays(opts.days - 1)})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.ics {
		_, err := out.Write(scheduleService.RenderCalendar(w, entries, loc, time.Now()))
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tSHIFT\tSTART\tEND\tOVERRIDE")
	for _, e := range entries {
		start, end := "-", "-"
		if e.Scheduled {
			start = e.Timings.Start.In(loc).Format("2006-01-02 15:04")
			end = e.Timings.End.In(loc).Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n",
			e.Date, e.Date.Weekday().String()[:3], e.Code, start, end, e.Override)
	}
	return tw.Flush()
}

func newTokenCmd() *cobra.Command {
	var (
		workerID string
		role     string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing, signed with JWT_SECRET_KEY",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, ok := worker.ParseRole(role)
			if !ok {
				return fmt.Errorf("%w: %q", worker.ErrInvalidRole, role)
			}
			if workerID == "" {
				return fmt.Errorf("--worker is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
			if err != nil {
				return err
			}
			token, expiresAt, err := svc.GenerateAccessToken(workerID, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintln(cmd.ErrOrStderr(), "expires", time.Unix(expiresAt, 0).Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&workerID, "worker", "", "worker id")
	cmd.Flags().StringVar(&role, "role", string(worker.RoleSupervisor), "worker role")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate the database and insert the default estate workforce",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.NewPostgreSQLDB(cmd.Context(), cfg.DatabaseURL())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}

			seeded, err := fixtures.SeedWorkforce(cmd.Context(), postgresql.NewWorkerRepository(db))
			if err != nil {
				return err
			}

			names := make([]string, 0, len(seeded))
			for name := range seeded {
				names = append(names, name)
			}
			sort.Strings(names)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tID")
			for _, name := range names {
				fmt.Fprintf(tw, "%s\t%s\n", name, seeded[name])
			}
			return tw.Flush()
		},
	}
}
