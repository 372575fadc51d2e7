package main

import (
	"fmt"
	"maps"

	"github.com/spf13/cobra"

	"cancomp/internal/library"
	"cancomp/internal/overrides"
)

func newOverridesCommand(ctx *commandContext) *cobra.Command {
	overridesCmd := &cobra.Command{
		Use:   "overrides",
		Short: "Maintain the canonical track count overrides file",
	}
	overridesCmd.AddCommand(newOverridesSortCommand(ctx))
	return overridesCmd
}

func newOverridesSortCommand(ctx *commandContext) *cobra.Command {
	var path string
	var fromLidarr bool

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Rewrite the overrides file sorted by artist and title",
		Long: "Rewrite the overrides file sorted by artist and title. Labels come from the existing " +
			"trailing comments; --from-lidarr refreshes them from the library first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := cfg.Paths.Overrides
			if path != "" {
				target = expandFlagPath(path)
			}

			canon, err := overrides.Load(target)
			if err != nil {
				return err
			}
			labels, err := overrides.CommentLabels(target)
			if err != nil {
				return err
			}

			if fromLidarr {
				if err := cfg.RequireLidarr(); err != nil {
					return err
				}
				logger, err := ctx.logger(cmd)
				if err != nil {
					return err
				}
				client, err := library.NewLidarr(library.Config{
					BaseURL: cfg.Lidarr.URL,
					APIKey:  cfg.Lidarr.APIKey,
					Timeout: cfg.LidarrTimeout(),
					Logger:  logger,
				})
				if err != nil {
					return err
				}
				items, err := client.FetchItems(cmd.Context(), library.Options{})
				if err != nil {
					return fmt.Errorf("fetch library: %w", err)
				}
				maps.Copy(labels, library.Labels(items))
			}

			if err := overrides.WriteSorted(target, canon, labels); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sorted %d overrides written to %s\n", len(canon), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "overrides", "", "Overrides file (default: paths.overrides)")
	cmd.Flags().BoolVar(&fromLidarr, "from-lidarr", false, "Refresh labels from Lidarr before sorting")
	return cmd
}
