package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"confidential-chat-be/internal/config"
	"confidential-chat-be/internal/mapper"
	"confidential-chat-be/internal/pkg/logger"
	"confidential-chat-be/internal/pkg/privacy"
	"confidential-chat-be/internal/repository/unitofwork"
	"confidential-chat-be/internal/service"
	"confidential-chat-be/pkg/chatevents"
	"confidential-chat-be/pkg/database"
	"confidential-chat-be/pkg/events"
	"confidential-chat-be/pkg/wellness"

	pktNats "confidential-chat-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type options struct {
	driver string
	dsn    string
}

// NewRootCmd creates the operator command tree.
func NewRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &options{
		driver: cfg.Database.Driver,
		dsn:    cfg.Database.Connection,
	}

	rootCmd := &cobra.Command{
		Use:   "chatctl",
		Short: "Operator tooling for the confidential chat core",
		Long: `chatctl runs maintenance tasks against the chat store:
schema migrations, retention sweeps, wellness reports and the audit tail.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.driver, "driver", opts.driver, "Database driver (postgres or sqlite)")
	rootCmd.PersistentFlags().StringVar(&opts.dsn, "dsn", opts.dsn, "Database connection string")

	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newReapCmd(cfg, opts))
	rootCmd.AddCommand(newWellnessCmd(cfg, opts))
	rootCmd.AddCommand(newAuditCmd(cfg))

	return rootCmd
}

func (o *options) open() (*gorm.DB, error) {
	db, err := database.Open(o.driver, o.dsn, gormLogger.Warn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}

			color.Cyan("Running migrations...")
			ran, err := database.Migrate(db)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ran) == 0 {
				fmt.Fprintf(out, "Schema is up to date (version %d)\n", database.LatestVersion())
				return nil
			}
			for _, v := range ran {
				fmt.Fprintf(out, "Applied migration %d\n", v)
			}
			color.Green("Schema at version %d", database.LatestVersion())
			return nil
		},
	}
}

func newReapCmd(cfg *config.Config, opts *options) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Purge sessions idle beyond the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}

			sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
			defer sysLogger.Sync()

			var publisher chatevents.Publisher = chatevents.NopPublisher{}
			if cfg.App.NatsURL != "" {
				natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, cfg.Session.TTL)
				if err != nil {
					color.Yellow("Audit stream unavailable: %v", err)
				} else {
					defer natsPub.Close()
					publisher = chatevents.NewNatsPublisher(natsPub, privacy.NewPseudonymizer(cfg.App.PseudonymKey), sysLogger)
				}
			}

			expiry := service.NewExpiryService(
				unitofwork.NewRepositoryFactory(db),
				publisher,
				sysLogger,
				ttl,
				cfg.Session.ReapInterval,
				service.SystemClock,
			)

			purged, err := expiry.SweepOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired session(s)\n", purged)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", cfg.Session.TTL, "Retention window")
	return cmd
}

func newWellnessCmd(cfg *config.Config, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "wellness <instituteId>",
		Short: "Print the wellness report of an institute as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}

			svc := service.NewWellnessService(
				unitofwork.NewRepositoryFactory(db),
				wellness.NewAggregator(logger.NewNopLogger()),
				cfg.Session.TTL,
				service.SystemClock,
			)

			report, err := svc.Aggregate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), mapper.WellnessToResponse(report))
		},
	}
}

func newAuditCmd(cfg *config.Config) *cobra.Command {
	var durable string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Tail the pseudonymized audit stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err = sub.Subscribe(ctx, pktNats.SubjectPrefix+".>", durable, func(_ context.Context, event events.Event) error {
				fmt.Fprintf(out, "%s %s ", event.Timestamp().UTC().Format(time.RFC3339), color.CyanString(event.EventType()))
				return writeJSON(out, event.Payload())
			})
			if err != nil {
				return err
			}

			color.Green("Listening on %s.> (Ctrl+C to stop)", pktNats.SubjectPrefix)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&durable, "durable", "chatctl-audit", "Durable consumer name")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
