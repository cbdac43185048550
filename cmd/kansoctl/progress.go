package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/database"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/config"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/services"
)

var errNeedsPostgres = errors.New("kansoctl reads the datastore directly and needs STORAGE_DRIVER=postgres")

func dbConfig(cfg *config.Config) database.Config {
	return database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
	}
}

// withBuilder opens the datastore and hands a progress builder to fn.
func withBuilder(fn func(b *services.ProgressBuilder) error) error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return errNeedsPostgres
	}

	db, err := database.Connect(dbConfig(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	builder := services.NewProgressBuilder(
		repository.NewPostgresHabitRepository(db),
		repository.NewPostgresTrackingEventRepository(db),
		nil,
		domain.SystemClock{},
	)
	return fn(builder)
}

func referenceFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("reference")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --reference %q (use YYYY-MM-DD)", raw)
	}
	return t, nil
}

func buildView(ctx context.Context, cmd *cobra.Command, userID, habitID string) (*domain.HabitProgress, error) {
	reference, err := referenceFlag(cmd)
	if err != nil {
		return nil, err
	}

	var view *domain.HabitProgress
	err = withBuilder(func(b *services.ProgressBuilder) error {
		view, err = b.Build(ctx, userID, habitID, reference)
		return err
	})
	return view, err
}

var progressCmd = &cobra.Command{
	Use:   "progress <user-id> <habit-id>",
	Short: "Print the progress series of a habit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("frame")
		tf, err := domain.ParseTimeFrame(raw)
		if err != nil {
			return err
		}

		view, err := buildView(cmd.Context(), cmd, args[0], args[1])
		if err != nil {
			return err
		}

		series := view.Series[tf]
		fmt.Fprintln(cmd.OutOrStdout(), renderSeries(series))
		return nil
	},
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap <user-id> <habit-id>",
	Short: "Render the five-week heatmap of a habit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := buildView(cmd.Context(), cmd, args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderHeatmap(view.Heatmap))
		fmt.Fprintln(cmd.OutOrStdout(), renderStats("Lifetime", view.Stats))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary <user-id>",
	Short: "Print the lifetime stats of a user across all habits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reference, err := referenceFlag(cmd)
		if err != nil {
			return err
		}

		return withBuilder(func(b *services.ProgressBuilder) error {
			stats, err := b.BuildSummary(cmd.Context(), args[0], reference)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats("Summary", *stats))
			return nil
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{progressCmd, heatmapCmd, summaryCmd} {
		cmd.Flags().String("reference", "", "reference date (YYYY-MM-DD), defaults to today")
	}
	progressCmd.Flags().StringP("frame", "f", string(domain.TimeFrameWeek), "time frame: 1w, 1m, YTD, 1y or All")
}
