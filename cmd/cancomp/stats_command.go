package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cancomp/internal/mbcache"
	"cancomp/internal/pipeline"
	"cancomp/internal/rgstats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var maxAgeDays float64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats <rgid>",
		Short: "Look up track count statistics for one release group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rgid := strings.TrimSpace(args[0])
			if rgid == "" {
				return fmt.Errorf("release group id is required")
			}
			maxAge, err := maxAgeOverride(cmd, maxAgeDays)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			store, err := mbcache.Open(cmd.Context(), cfg.Paths.Cache)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := pipeline.NewMusicBrainz(cfg, logger, nil)
			if err != nil {
				return err
			}
			policy := rgstats.FreshnessPolicy(cfg.MusicBrainz.CacheMaxAgeDays)
			if maxAge != nil {
				policy = rgstats.FreshnessPolicy(*maxAge)
			}

			res, err := rgstats.NewService(store, client, logger).GetStats(cmd.Context(), rgid, policy)
			if err != nil {
				return err
			}
			if res.Fault != nil {
				return fmt.Errorf("%s: %w", res.Status, res.Fault)
			}
			if jsonOut {
				return writeJSON(cmd, newStatsView(res.Stats, res.Status))
			}
			printStats(cmd.OutOrStdout(), res.Stats, res.Status, time.Now())
			return nil
		},
	}

	cmd.Flags().Float64Var(&maxAgeDays, "max-age-days", 0, "Cache max age in days (-1 never refetch, 0 always refetch)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
