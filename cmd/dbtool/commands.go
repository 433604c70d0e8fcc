package main

import (
	"collection-route-service/internal/adapters/repositories"
	"collection-route-service/internal/app"
	"collection-route-service/internal/config"
	"collection-route-service/internal/platform/db"
	"collection-route-service/internal/services"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsPath
			}
			return repositories.Migrate(cfg.DatabaseURL, dir, zap.L())
		},
	}
	cmd.Flags().String("dir", "", "Directory containing migration files (default: embedded)")
	return cmd
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate the schema and load containers from a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				path = cfg.SeedPath
			}

			if err := repositories.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, zap.L()); err != nil {
				return err
			}

			return withDB(cmd.Context(), cfg, func(conn *sql.DB) error {
				n, err := repositories.SeedFromJSON(cmd.Context(), conn, path)
				if err != nil {
					return err
				}
				zap.L().Info("seeding complete", zap.Int("containers", n), zap.String("file", path))
				return nil
			})
		},
	}
	cmd.Flags().String("file", "", "Seed file (default: SEED_PATH)")
	return cmd
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a route over containers at or above the fill threshold and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			threshold, _ := cmd.Flags().GetFloat64("threshold")
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.FillThreshold
			}
			record, _ := cmd.Flags().GetBool("record")

			return withDB(cmd.Context(), cfg, func(conn *sql.DB) error {
				engine, err := app.New(cmd.Context(), cfg, conn)
				if err != nil {
					return err
				}
				defer engine.Close()

				plan, err := engine.Planner.PlanNeedingCollection(cmd.Context(), threshold)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "containers: %v\n", plan.Tour.ContainerIDs())
				fmt.Fprintf(out, "distance:   %s\n", plan.Route.DistanceText)
				fmt.Fprintf(out, "duration:   %s\n", plan.Route.DurationText)
				fmt.Fprintf(out, "fallbacks:  %d of %d legs\n", plan.Route.FallbackLegs(), len(plan.Route.Legs))
				fmt.Fprintf(out, "fuel cost:  %.2f\n", plan.FuelCost)

				if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					if err := enc.Encode(plan.Route.Polyline); err != nil {
						return fmt.Errorf("encode polyline: %w", err)
					}
				}

				if !record {
					return nil
				}
				id, err := engine.Recorder.RecordRoute(cmd.Context(), recordRequest(plan))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "recorded:   route %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().Float64("threshold", 0, "Minimum fill level percentage (default: FILL_THRESHOLD)")
	cmd.Flags().Bool("record", false, "Persist the planned route as completed")
	cmd.Flags().Bool("json", false, "Also print the route polyline as JSON")
	return cmd
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return config.Config{}, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func withDB(ctx context.Context, cfg config.Config, fn func(*sql.DB) error) error {
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

// recordRequest turns a plan into a record request. Savings are left at zero
// since the CLI has no baseline to compare against.
func recordRequest(plan *services.CollectionPlan) services.RecordRouteRequest {
	return services.RecordRouteRequest{
		Route:        plan.Route,
		ContainerIDs: plan.Tour.ContainerIDs(),
	}
}
