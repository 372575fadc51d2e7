package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cancomp/internal/mbcache"
	"cancomp/internal/rgstats"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the MusicBrainz statistics cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCachePathCommand(ctx))
	return cacheCmd
}

// openCacheReadOnly opens the cache without creating it when absent.
func openCacheReadOnly(cmd *cobra.Command, ctx *commandContext) (*mbcache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.Paths.Cache); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("cache %s does not exist yet; run `cancomp run` or `cancomp stats` first", cfg.Paths.Cache)
		}
		return nil, fmt.Errorf("stat cache: %w", err)
	}
	return mbcache.Open(cmd.Context(), cfg.Paths.Cache)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached release groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheReadOnly(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				views := make([]statsView, 0, len(entries))
				for i := range entries {
					views = append(views, newStatsView(&entries[i], ""))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Release group", "Fetched", "Releases", "Mode", "Mode releases"},
				cacheRows(entries),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "%d release groups\n", len(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func cacheRows(entries []rgstats.ReleaseGroupStats) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		modeReleases := "-"
		if e.ModeTrackCount != nil {
			modeReleases = strconv.Itoa(e.ModeReleaseCount())
		}
		rows = append(rows, []string{
			e.RGID,
			e.FetchedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(e.ReleaseCount),
			formatOptionalInt(e.ModeTrackCount),
			modeReleases,
		})
	}
	return rows
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <rgid>",
		Short: "Show the cached statistics for one release group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheReadOnly(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			rgid := strings.TrimSpace(args[0])
			stats, err := store.Read(cmd.Context(), rgid)
			if err != nil {
				return err
			}
			if stats == nil {
				return fmt.Errorf("release group %s is not cached", rgid)
			}
			if jsonOut {
				return writeJSON(cmd, newStatsView(stats, ""))
			}
			printStats(cmd.OutOrStdout(), stats, "", time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCachePathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache database location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Paths.Cache)
			return nil
		},
	}
}
