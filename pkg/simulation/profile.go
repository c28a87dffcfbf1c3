// Package simulation holds the pure core of the dry-run engine: capability
// profiles, the five check validators and the mock response generator.
// Nothing in this package touches the network or the database.
package simulation

import (
	"fmt"
	"time"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

// Category groups platform types that share a limit regime.
type Category string

const (
	// CategoryMicro covers short-message platforms with hard per-post limits.
	CategoryMicro Category = "micro"
	// CategorySocial covers feed platforms with generous but real limits.
	CategorySocial Category = "social"
	// CategoryLongForm covers blog-style platforms; the hard limit is a
	// sanity bound, not a published platform rule.
	CategoryLongForm Category = "long-form"
)

// CapabilityProfile is the static per-platform-type table of limits.
type CapabilityProfile struct {
	CharacterLimit   int
	RecommendedLimit int
	MaxImages        int
	UnitCostEstimate float64
	BaseLatency      time.Duration
	Category         Category
}

// profiles is exhaustive over models.AllPlatformTypes; init() enforces that.
//
// The mapping is deliberate, not a coincidence of defaults:
//   - TWITTER keeps its published 280-char post limit (micro).
//   - LINKEDIN (3000), FACEBOOK (63206) and INSTAGRAM (2200) carry their
//     documented caps (social).
//   - MEDIUM, DEVTO, HASHNODE and WORDPRESS share one long-form regime on
//     purpose: none enforces a practical character cap, so they get the
//     same 100k sanity bound and 25k recommended length.
var profiles = map[models.PlatformType]CapabilityProfile{
	models.PlatformTwitter:   {CharacterLimit: 280, RecommendedLimit: 240, MaxImages: 4, UnitCostEstimate: 0.010, BaseLatency: 800 * time.Millisecond, Category: CategoryMicro},
	models.PlatformLinkedIn:  {CharacterLimit: 3000, RecommendedLimit: 1300, MaxImages: 9, UnitCostEstimate: 0.008, BaseLatency: 1200 * time.Millisecond, Category: CategorySocial},
	models.PlatformFacebook:  {CharacterLimit: 63206, RecommendedLimit: 2000, MaxImages: 10, UnitCostEstimate: 0.006, BaseLatency: 1200 * time.Millisecond, Category: CategorySocial},
	models.PlatformInstagram: {CharacterLimit: 2200, RecommendedLimit: 1000, MaxImages: 10, UnitCostEstimate: 0.012, BaseLatency: 1500 * time.Millisecond, Category: CategorySocial},
	models.PlatformMedium:    {CharacterLimit: 100000, RecommendedLimit: 25000, MaxImages: 25, UnitCostEstimate: 0.004, BaseLatency: 2000 * time.Millisecond, Category: CategoryLongForm},
	models.PlatformDevTo:     {CharacterLimit: 100000, RecommendedLimit: 25000, MaxImages: 25, UnitCostEstimate: 0.002, BaseLatency: 1800 * time.Millisecond, Category: CategoryLongForm},
	models.PlatformHashnode:  {CharacterLimit: 100000, RecommendedLimit: 25000, MaxImages: 25, UnitCostEstimate: 0.002, BaseLatency: 1800 * time.Millisecond, Category: CategoryLongForm},
	models.PlatformWordPress: {CharacterLimit: 100000, RecommendedLimit: 25000, MaxImages: 50, UnitCostEstimate: 0.005, BaseLatency: 2200 * time.Millisecond, Category: CategoryLongForm},
}

func init() {
	// A platform type without a profile or URL template means the enum and
	// the tables have drifted; fail loudly at startup instead of silently
	// defaulting during validation.
	for _, pt := range models.AllPlatformTypes {
		if _, ok := profiles[pt]; !ok {
			panic(fmt.Sprintf("simulation: no capability profile for platform type %s", pt))
		}
		if _, ok := urlTemplates[pt]; !ok {
			panic(fmt.Sprintf("simulation: no URL template for platform type %s", pt))
		}
	}
}

// LimitsFor returns the capability profile for a platform type. Unknown
// types are a programmer error, not a runtime validation failure.
func LimitsFor(pt models.PlatformType) CapabilityProfile {
	p, ok := profiles[pt]
	if !ok {
		panic(fmt.Sprintf("simulation: unknown platform type %s", pt))
	}
	return p
}

// EstimatePublishTime derives a deterministic publish-time estimate from
// the profile's base latency plus a fixed per-image upload cost.
func EstimatePublishTime(pt models.PlatformType, imageCount int) time.Duration {
	return LimitsFor(pt).BaseLatency + time.Duration(imageCount)*350*time.Millisecond
}

// EstimateCost returns the rough per-publish cost estimate for a platform.
func EstimateCost(pt models.PlatformType) float64 {
	return LimitsFor(pt).UnitCostEstimate
}
