package rgstats

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// FreshnessPolicy is the maximum age of an acceptable cache entry in days.
// Negative values accept any entry, zero forces a refetch, and positive values
// accept entries no older than the given number of days.
type FreshnessPolicy float64

const (
	NeverRefetch  FreshnessPolicy = -1
	AlwaysRefetch FreshnessPolicy = 0
)

const secondsPerDay = 86400

// ParseFreshnessPolicy validates a max age in days. NaN and infinities are rejected.
func ParseFreshnessPolicy(days float64) (FreshnessPolicy, error) {
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return 0, fmt.Errorf("max age must be a finite number of days, got %v", days)
	}
	return FreshnessPolicy(days), nil
}

// Accepts reports whether an entry fetched at fetchedAt is fresh at now.
func (p FreshnessPolicy) Accepts(fetchedAt, now time.Time) bool {
	switch {
	case p < 0:
		return true
	case p == 0, math.IsNaN(float64(p)):
		return false
	default:
		return now.Sub(fetchedAt).Seconds() <= float64(p)*secondsPerDay
	}
}

// String renders the policy the way run headers describe it.
func (p FreshnessPolicy) String() string {
	switch {
	case p < 0:
		return "never refetch"
	case p == 0:
		return "always refetch"
	default:
		return fmt.Sprintf("max age = %s days", strconv.FormatFloat(float64(p), 'f', -1, 64))
	}
}
