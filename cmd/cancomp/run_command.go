package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cancomp/internal/pipeline"
	"cancomp/internal/preflight"
)

type runFlags struct {
	maxAgeDays    float64
	limitAlbums   int
	limitRGIDs    int
	out           string
	overrides     string
	sortOverrides bool
	lidarrURL     string
	apiKey        string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compare the Lidarr library with MusicBrainz and write a CSV report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if url := strings.TrimSpace(flags.lidarrURL); url != "" {
				cfg.Lidarr.URL = strings.TrimRight(url, "/")
			}
			if key := strings.TrimSpace(flags.apiKey); key != "" {
				cfg.Lidarr.APIKey = key
			}
			if err := cfg.RequireLidarr(); err != nil {
				return err
			}
			maxAge, err := maxAgeOverride(cmd, flags.maxAgeDays)
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{SkipLidarr: true})
			for _, r := range results {
				if r.Advisory && !r.Passed {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", r.Name, r.Detail)
				}
			}
			if failed, ok := preflight.FirstBlocking(results); ok {
				return fmt.Errorf("preflight %s: %s", strings.ToLower(failed.Name), failed.Detail)
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Config:        cfg,
				MaxAgeDays:    maxAge,
				LimitAlbums:   flags.limitAlbums,
				LimitRGIDs:    flags.limitRGIDs,
				OutPath:       expandFlagPath(flags.out),
				OverridesPath: expandFlagPath(flags.overrides),
				SortOverrides: flags.sortOverrides,
				Stdout:        cmd.OutOrStdout(),
				Logger:        logger,
			}
			_, err = pipeline.Run(cmd.Context(), opts)
			return err
		},
	}

	cmd.Flags().Float64Var(&flags.maxAgeDays, "max-age-days", 0, "Cache max age in days (-1 never refetch, 0 always refetch); defaults to musicbrainz.cache_max_age_days")
	cmd.Flags().IntVar(&flags.limitAlbums, "limit-albums", 0, "Inspect at most this many Lidarr albums (0 = all)")
	cmd.Flags().IntVar(&flags.limitRGIDs, "limit-rgids", 0, "Look up at most this many release groups (0 = all)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Report path (default: <paths.output_dir>/cancomp_<timestamp>.csv)")
	cmd.Flags().StringVar(&flags.overrides, "overrides", "", "Overrides file (default: paths.overrides)")
	cmd.Flags().BoolVar(&flags.sortOverrides, "sort-overrides", false, "Rewrite the overrides file sorted by artist and title")
	cmd.Flags().StringVar(&flags.lidarrURL, "lidarr-url", "", "Lidarr base URL (overrides lidarr.url)")
	cmd.Flags().StringVar(&flags.apiKey, "api-key", "", "Lidarr API key (overrides lidarr.api_key)")
	return cmd
}
