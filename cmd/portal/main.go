package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brightframelabs/portal/internal/audit"
	"github.com/brightframelabs/portal/internal/clock"
	"github.com/brightframelabs/portal/internal/config"
	"github.com/brightframelabs/portal/internal/migration"
	"github.com/brightframelabs/portal/internal/notification"
	"github.com/brightframelabs/portal/internal/observability"
	"github.com/brightframelabs/portal/internal/payment"
	"github.com/brightframelabs/portal/internal/redis"
	"github.com/brightframelabs/portal/internal/scheduler"
	"github.com/brightframelabs/portal/internal/server"
	"github.com/brightframelabs/portal/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "portal",
		Short:   "Brightframe client portal payment service",
		Version: versionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newWorkerCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the notification outbox worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			runWorker()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then the server, scheduler and worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runAll()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	fx.New(serveOptions()).Run()
}

func runWorker() {
	fx.New(
		config.Module,
		observability.Module,
		redis.Module,
		notification.Module,
		notification.WorkerModule,
	).Run()
}

func runAll() {
	fx.New(serveOptions(), notification.WorkerModule).Run()
}

func serveOptions() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		audit.Module,
		payment.Module,
		notification.Module,
		scheduler.Module,
		server.Module,
	)
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func versionFromEnv() string {
	if v := os.Getenv("PORTAL_VERSION"); v != "" {
		return v
	}
	return "dev"
}
