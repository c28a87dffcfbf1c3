package simulation_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
	"github.com/postpilot-hq/publish-engine/pkg/simulation"
)

func TestGenerateMockResponse_UsesSlugInURL(t *testing.T) {
	slug := "launch-announcement"
	content := &models.Content{Id: "c1", Slug: &slug}

	resp := simulation.GenerateMockResponse(models.PlatformMedium, content)

	assert.NotEmpty(t, resp.PlatformPostId)
	assert.Equal(t, "https://medium.com/p/launch-announcement", resp.PlatformUrl)
	assert.WithinDuration(t, time.Now().UTC(), resp.PublishedAt, time.Minute)
}

func TestGenerateMockResponse_FallsBackToPostId(t *testing.T) {
	content := &models.Content{Id: "c1"}

	resp := simulation.GenerateMockResponse(models.PlatformTwitter, content)

	assert.NotEmpty(t, resp.PlatformPostId)
	assert.Equal(t, fmt.Sprintf("https://twitter.com/i/web/status/%s", resp.PlatformPostId), resp.PlatformUrl)
}

func TestGenerateMockResponse_FreshIdPerCall(t *testing.T) {
	content := &models.Content{Id: "c1"}

	a := simulation.GenerateMockResponse(models.PlatformDevTo, content)
	b := simulation.GenerateMockResponse(models.PlatformDevTo, content)

	assert.NotEqual(t, a.PlatformPostId, b.PlatformPostId)
}

func TestGenerateMockResponse_EveryPlatformHasTemplate(t *testing.T) {
	content := &models.Content{Id: "c1"}
	for _, pt := range models.AllPlatformTypes {
		resp := simulation.GenerateMockResponse(pt, content)
		assert.Contains(t, resp.PlatformUrl, "https://", "URL for %s", pt)
	}
}
