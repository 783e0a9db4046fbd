// Command pmctl is the operations CLI for the maintenance backend: schema
// migrations and manual lifecycle actions against a live database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/application/signoff"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/config"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/domain/schedule"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/database/postgres"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/database/postgres/repositories"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "pmctl",
		Short:         "Operations CLI for the preventive-maintenance backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")

	root.AddCommand(migrateCmd(), seedCmd(), pendingCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, logging.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewLogger(logging.LogConfig{Level: cfg.Log.Level, Format: "console"})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(configPath)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending schema migrations",
		RunE: func(*cobra.Command, []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return postgres.Migrate(cfg.Database, logger)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(*cobra.Command, []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return postgres.MigrateDown(cfg.Database, logger)
		},
	})
	return cmd
}

func seedCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "seed <plan-id>",
		Short: "Seed initial pending signoffs for a plan's recurring tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.CreateInitialSignoffs(cmd.Context(), &signoff.SeedInput{
				PlanID: common.ID(args[0]),
				UserID: common.UserID(userID),
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID to attribute the seeding to")
	return cmd
}

func pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List all pending signoffs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			views, err := svc.ListPendingSignoffs(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(views)
		},
	}
}

// newService wires a minimal lifecycle service: direct database access, no
// cache, no event publishing.
func newService() (signoff.Service, func(), error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, nil, err
	}

	db, err := postgres.NewConnection(context.Background(), cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}

	pool := db.Pool()
	calc := schedule.NewCalculator(logger, nil)
	svc := signoff.NewService(
		repositories.NewPlanRepository(pool, logger),
		repositories.NewTaskRepository(pool, logger),
		repositories.NewSignoffRepository(pool, logger),
		calc,
		nil,
		nil,
		signoff.Metrics{},
		cfg.Database.QueryTimeout,
		logger,
	)
	return svc, db.Close, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
