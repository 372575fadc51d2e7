package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cancomp/internal/pipeline"
	"cancomp/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var skipLidarr bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, paths, cache, and Lidarr connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := pipeline.ShouldColorize(out)

			fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{SkipLidarr: skipLidarr})
			failures := 0
			for _, r := range results {
				kind := statusOK
				switch {
				case r.Blocking():
					kind = statusError
					failures++
				case !r.Passed:
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if failures > 0 {
				return fmt.Errorf("%d check(s) failed", failures)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipLidarr, "skip-lidarr", false, "Do not contact Lidarr")
	return cmd
}
