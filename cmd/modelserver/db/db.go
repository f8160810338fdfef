package db

import (
	"context"
	"fmt"

	"github.com/cozy-creator/model-server/internal/config"
	"github.com/cozy-creator/model-server/internal/db"
	"github.com/cozy-creator/model-server/internal/db/migrations"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"
)

var Cmd = &cobra.Command{
	Use:   "db",
	Short: "Utility for database management",
}

func init() {
	pflags := Cmd.PersistentFlags()
	pflags.String("db-driver", config.DefaultDBDriver, "Database driver: sqlite, pg or libsql")
	pflags.String("db-dsn", config.DefaultDBDSN, "Database DSN (Connection URL or Path)")
	config.KeyFlag(pflags, "db-driver", "db.driver")
	config.KeyFlag(pflags, "db-dsn", "db.dsn")

	Cmd.AddCommand(newMigrationCmd())
}

type migratorFunc func(ctx context.Context, migrator *migrate.Migrator, args []string) error

// withMigrator opens the configured database for the duration of one
// subcommand.
func withMigrator(fn migratorFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.GetConfig()
		if err != nil {
			return err
		}

		driver, err := db.NewConnection(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer driver.Close()

		migrator := migrate.NewMigrator(driver.GetDB(), migrations.Migrations)
		return fn(cmd.Context(), migrator, args)
	}
}

func newMigrationCmd() *cobra.Command {
	migrationCmd := &cobra.Command{
		Use:   "migration",
		Short: "Utility for handling database migrations",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "create migration tables",
		RunE: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, _ []string) error {
			return migrator.Init(ctx)
		}),
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "migrate database",
		RunE: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, _ []string) error {
			if err := migrator.Lock(ctx); err != nil {
				return err
			}
			defer migrator.Unlock(ctx) //nolint:errcheck

			group, err := migrator.Migrate(ctx)
			if err != nil {
				return err
			}
			if group.IsZero() {
				fmt.Printf("there are no new migrations to run (database is up to date)\n")
				return nil
			}
			fmt.Printf("migrated to %s\n", group)
			return nil
		}),
	}

	rollbackCmd := &cobra.Command{
		Use:   "rollback",
		Short: "rollback the last migration group",
		RunE: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, _ []string) error {
			if err := migrator.Lock(ctx); err != nil {
				return err
			}
			defer migrator.Unlock(ctx) //nolint:errcheck

			group, err := migrator.Rollback(ctx)
			if err != nil {
				return err
			}
			if group.IsZero() {
				fmt.Printf("there are no groups to roll back\n")
				return nil
			}
			fmt.Printf("rolled back %s\n", group)
			return nil
		}),
	}

	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "Lock the database",
		RunE: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, _ []string) error {
			if err := migrator.Lock(ctx); err != nil {
				return err
			}
			fmt.Printf("locked\n")
			return nil
		}),
	}

	unlockCmd := &cobra.Command{
		Use:   "unlock",
		Short: "Unlock the database",
		RunE: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, _ []string) error {
			if err := migrator.Unlock(ctx); err != nil {
				return err
			}
			fmt.Printf("unlocked\n")
			return nil
		}),
	}

	createGoCmd := &cobra.Command{
		Use:   "create-go <name>",
		Short: "Create a Go migration file",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, args []string) error {
			file, err := migrator.CreateGoMigration(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("created migration file %s in %s\n", file.Name, file.Path)
			return nil
		}),
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print the status of the migrations",
		RunE: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, _ []string) error {
			status, err := migrator.MigrationsWithStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("migrations: %s\n", status)
			fmt.Printf("unapplied migrations: %s\n", status.Unapplied())
			fmt.Printf("last migration group: %s\n", status.LastGroup())
			return nil
		}),
	}

	markAppliedCmd := &cobra.Command{
		Use:   "mark-applied",
		Short: "Mark all migrations as applied without actually running them",
		RunE: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, _ []string) error {
			group, err := migrator.Migrate(ctx, migrate.WithNopMigration())
			if err != nil {
				return err
			}
			if group.IsZero() {
				fmt.Printf("there are no new migrations to mark as applied\n")
				return nil
			}
			fmt.Printf("marked as applied %s\n", group)
			return nil
		}),
	}

	migrationCmd.AddCommand(
		initCmd,
		migrateCmd,
		rollbackCmd,
		lockCmd,
		unlockCmd,
		createGoCmd,
		statusCmd,
		markAppliedCmd,
	)

	return migrationCmd
}
