package simulation

import (
	"fmt"
	"strings"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

const maxLongFormTitle = 100

// FormatIssues is the outcome of the platform-aware structural check.
type FormatIssues struct {
	Errors   []string
	Warnings []string
}

// ValidateFormat applies the structural shape rules for a platform
// category. Pure function over the content snapshot.
func ValidateFormat(pt models.PlatformType, content *models.Content) FormatIssues {
	var issues FormatIssues

	switch LimitsFor(pt).Category {
	case CategoryLongForm:
		// Blog-style platforms publish a titled article.
		if strings.TrimSpace(content.Title) == "" {
			issues.Errors = append(issues.Errors, fmt.Sprintf("%s requires a non-empty title", pt))
		} else if len([]rune(content.Title)) > maxLongFormTitle {
			issues.Warnings = append(issues.Warnings, fmt.Sprintf("title is %d characters; %s displays at most %d", len([]rune(content.Title)), pt, maxLongFormTitle))
		}
		if strings.TrimSpace(content.Body) == "" {
			issues.Errors = append(issues.Errors, fmt.Sprintf("%s requires a non-empty body", pt))
		}
		if strings.TrimSpace(content.Excerpt) == "" {
			issues.Warnings = append(issues.Warnings, fmt.Sprintf("no excerpt set; %s will derive one from the first paragraph", pt))
		}
	default:
		// Feed platforms publish the body; the title is ignored.
		if strings.TrimSpace(content.Body) == "" {
			issues.Errors = append(issues.Errors, fmt.Sprintf("%s requires a non-empty body", pt))
		}
		if pt == models.PlatformInstagram && len(content.ImageUrls) == 0 {
			issues.Errors = append(issues.Errors, "INSTAGRAM cannot publish text-only content; attach at least one image")
		}
	}

	return issues
}
