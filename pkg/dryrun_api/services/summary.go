package services

import (
	"fmt"
	"strings"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

// nearLimitThreshold marks platforms whose body length is close enough to
// the hard character limit to deserve a heads-up.
const nearLimitThreshold = 0.8

func aggregate(results []models.MockPublishResult) models.DryRunSummary {
	agg := models.DryRunSummary{Total: len(results)}
	for _, r := range results {
		if r.WouldSucceed {
			agg.WouldSucceed++
		} else {
			agg.WouldFail++
		}
		agg.TotalErrors += len(r.Errors)
		agg.TotalWarnings += len(r.Warnings)
	}
	return agg
}

// buildSummary renders the platform-by-platform PASS/FAIL report shown to
// the user.
func buildSummary(content *models.Content, results []models.MockPublishResult, agg models.DryRunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dry run for %q against %d platform(s): %d would succeed, %d would fail.",
		content.Title, agg.Total, agg.WouldSucceed, agg.WouldFail)
	for _, r := range results {
		verdict := "PASS"
		if !r.WouldSucceed {
			verdict = "FAIL"
		}
		fmt.Fprintf(&b, "\n%s %s (%s): %d error(s), %d warning(s)",
			verdict, r.PlatformName, r.PlatformType, len(r.Errors), len(r.Warnings))
	}
	return b.String()
}

// buildRecommendations produces the prioritized recommendation list:
// blocking fixes first, then a warning-review note, then near-limit notes,
// and only when nothing else applies a single ready-to-publish entry.
func buildRecommendations(results []models.MockPublishResult) []string {
	var recs []string

	for _, r := range results {
		if !r.WouldSucceed {
			recs = append(recs, fmt.Sprintf("Fix %d blocking issue(s) on %s before publishing", len(r.Errors), r.PlatformName))
		}
	}

	totalWarnings := 0
	for _, r := range results {
		totalWarnings += len(r.Warnings)
	}
	if totalWarnings > 0 {
		recs = append(recs, fmt.Sprintf("Review %d warning(s) before publishing", totalWarnings))
	}

	for _, r := range results {
		limit := r.CharacterAnalysis.CharacterLimit
		if limit > 0 && !r.CharacterAnalysis.ExceedsLimits &&
			float64(r.CharacterAnalysis.BodyLength) > nearLimitThreshold*float64(limit) {
			recs = append(recs, fmt.Sprintf("Body uses over %d%% of the %s character limit; consider shortening it", int(nearLimitThreshold*100), r.PlatformName))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Content is ready to publish on all selected platforms")
	}
	return recs
}
