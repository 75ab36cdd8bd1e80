package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"pantry/internal/configuration"
	"pantry/internal/database"
	"pantry/internal/logger"
	"pantry/internal/model"
	"pantry/internal/shoppinglist"
	"pantry/internal/tracker"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print tracked items and dashboard stats as JSON",
	Long: `Print tracked items and dashboard stats as JSON.

Products seen for the first time get the current time as their start, the
same as when the server observes them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd.Context())
	},
}

func runStats(ctx context.Context) error {
	config, err := configuration.GetConfig(configPath)
	if err != nil {
		return err
	}
	l := logger.NewLogger(logger.LevelError, os.Stderr)
	defer func() {
		_ = l.Sync()
	}()

	kv, err := database.Open(ctx, config.StorageBackend, config.StorageURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := kv.Close(ctx); err != nil {
			l.Error("Error closing storage:", err)
		}
	}()
	db := database.New(kv, l)

	tr := tracker.New(db, l, tracker.WithSeeder(tracker.NoSeed{}), tracker.WithPruning(config.PruneOrphanedTimestamps))
	if err = tr.LoadInitial(ctx); err != nil {
		return err
	}
	totals, err := shoppinglist.New(db, tr, nil, l, 0).Totals(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Items []model.TrackedItem `json:"items"`
		Stats tracker.Stats       `json:"stats"`
		List  shoppinglist.Totals `json:"list"`
	}{
		Items: tr.Items(),
		Stats: tr.Stats(totals.Count),
		List:  totals,
	})
}
