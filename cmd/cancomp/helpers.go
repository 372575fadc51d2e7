package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cancomp/internal/config"
	"cancomp/internal/rgstats"
)

// expandFlagPath applies config path rules to a flag value, leaving it
// untouched when expansion fails so the eventual open reports the problem.
func expandFlagPath(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return value
	}
	return expanded
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// maxAgeOverride returns the --max-age-days value, or nil when the flag was not given.
func maxAgeOverride(cmd *cobra.Command, days float64) (*float64, error) {
	if !cmd.Flags().Changed("max-age-days") {
		return nil, nil
	}
	if _, err := rgstats.ParseFreshnessPolicy(days); err != nil {
		return nil, fmt.Errorf("--max-age-days: %w", err)
	}
	return &days, nil
}
