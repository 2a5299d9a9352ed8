package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftcare/backend/config"
	"shiftcare/backend/internal/event"
	"shiftcare/backend/internal/job"
	"shiftcare/backend/internal/notify"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/service"
	"shiftcare/backend/internal/swap"
	"shiftcare/backend/pkg/database"
	"shiftcare/backend/pkg/jwt"
	applogger "shiftcare/backend/pkg/logger"
)

type cliState struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	root := &cobra.Command{
		Use:           "shiftctl",
		Short:         "Operate the shiftcare backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			logger, err := applogger.NewLogger(&cfg.Log, "shiftctl")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			st.cfg, st.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", "", "path to config.yaml")

	root.AddCommand(newMigrateCmd(st), newTokenCmd(st), newExpireCmd(st))
	return root
}

// ── migrate ──

func newMigrateCmd(st *cliState) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQL(st, func(_ *gorm.DB, sqlDB *sql.DB) error {
				return database.RunMigrations(sqlDB, st.logger)
			})
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQL(st, func(_ *gorm.DB, sqlDB *sql.DB) error {
				return database.RollbackMigrations(sqlDB, steps, st.logger)
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(upCmd, downCmd)
	return migrateCmd
}

// ── token ──

func newTokenCmd(st *cliState) *cobra.Command {
	var (
		staffID string
		orgID   string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !swap.Role(role).Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			mgr := jwt.NewManager(&st.cfg.Auth)
			token, err := mgr.GenerateAccessTokenWithTTL(staffID, orgID, role, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&staffID, "staff", "", "staff id")
	cmd.Flags().StringVar(&orgID, "org", "", "organization id")
	cmd.Flags().StringVar(&role, "role", string(swap.RoleStaff), "owner, admin or staff")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("staff")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

// ── expire ──

func newExpireCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Cancel pending swap requests whose shift has started",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQL(st, func(db *gorm.DB, _ *sql.DB) error {
				repo := repository.NewRepository(db)

				// notifications still go out; there is no hub to push to
				dispatcher := event.NewDispatcher(event.Options{Workers: 1}, st.logger)
				dispatcher.Subscribe("notifier", notify.NewNotifier(repo, nil, st.logger).Handle, swap.EventCancelled)
				dispatcher.Start()

				svc := service.NewSwapService(repo, dispatcher, st.logger)
				n, runErr := job.NewExpiryJob(svc, st.logger).RunOnce(cmd.Context())

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := dispatcher.Close(ctx); err != nil {
					st.logger.Warn("notification drain incomplete", zap.Error(err))
				}
				if runErr != nil {
					return runErr
				}
				fmt.Fprintf(cmd.OutOrStdout(), "expired %d swap requests\n", n)
				return nil
			})
		},
	}
	return cmd
}

func withSQL(st *cliState, fn func(db *gorm.DB, sqlDB *sql.DB) error) error {
	db, err := database.NewDB(&st.cfg.Database, st.cfg.Log.Level, st.logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	defer sqlDB.Close()
	return fn(db, sqlDB)
}
