package simulation

import (
	"fmt"
	"time"

	"github.com/teris-io/shortid"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

// urlTemplates maps each platform type to the shape of its post URLs.
// %s is the content slug, falling back to the generated post id.
var urlTemplates = map[models.PlatformType]string{
	models.PlatformTwitter:   "https://twitter.com/i/web/status/%s",
	models.PlatformLinkedIn:  "https://www.linkedin.com/feed/update/urn:li:share:%s",
	models.PlatformFacebook:  "https://www.facebook.com/posts/%s",
	models.PlatformInstagram: "https://www.instagram.com/p/%s/",
	models.PlatformMedium:    "https://medium.com/p/%s",
	models.PlatformDevTo:     "https://dev.to/posts/%s",
	models.PlatformHashnode:  "https://hashnode.com/post/%s",
	models.PlatformWordPress: "https://wordpress.com/post/%s",
}

// GenerateMockResponse builds a simulated publish response for UI preview.
// The post id is a fresh random identifier (this is a simulation, no
// uniqueness check needed) and PublishedAt is "now"; everything else is
// deterministic for a given content/platform snapshot. Side-effect free:
// persistence happens at the MockPublication layer.
func GenerateMockResponse(pt models.PlatformType, content *models.Content) models.SimulatedResponse {
	postId := shortid.MustGenerate()

	slug := postId
	if content.Slug != nil && *content.Slug != "" {
		slug = *content.Slug
	}

	tmpl, ok := urlTemplates[pt]
	if !ok {
		panic(fmt.Sprintf("simulation: unknown platform type %s", pt))
	}

	return models.SimulatedResponse{
		PlatformPostId: postId,
		PlatformUrl:    fmt.Sprintf(tmpl, slug),
		PublishedAt:    time.Now().UTC(),
	}
}
