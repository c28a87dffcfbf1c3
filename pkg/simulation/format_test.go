package simulation_test

import (
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
	"github.com/postpilot-hq/publish-engine/pkg/simulation"
)

func TestValidateFormat_LongFormRequiresTitleAndBody(t *testing.T) {
	content := &models.Content{Id: "c1", Title: "", Body: ""}

	issues := simulation.ValidateFormat(models.PlatformMedium, content)

	assert.Len(t, issues.Errors, 2)
	assert.Contains(t, issues.Errors[0], "title")
	assert.Contains(t, issues.Errors[1], "body")
}

func TestValidateFormat_LongFormWarnsOnMissingExcerpt(t *testing.T) {
	content := &models.Content{Id: "c1", Title: "A post", Body: "Some body text"}

	issues := simulation.ValidateFormat(models.PlatformDevTo, content)

	assert.Empty(t, issues.Errors)
	assert.Len(t, issues.Warnings, 1)
	assert.Contains(t, issues.Warnings[0], "excerpt")
}

func TestValidateFormat_LongFormWarnsOnLongTitle(t *testing.T) {
	content := &models.Content{
		Id:      "c1",
		Title:   strings.Repeat("x", 120),
		Body:    "Body",
		Excerpt: "Excerpt",
	}

	issues := simulation.ValidateFormat(models.PlatformWordPress, content)

	assert.Empty(t, issues.Errors)
	assert.Len(t, issues.Warnings, 1)
	assert.Contains(t, issues.Warnings[0], "120 characters")
}

func TestValidateFormat_SocialIgnoresTitle(t *testing.T) {
	content := &models.Content{Id: "c1", Title: "", Body: "just a caption"}

	issues := simulation.ValidateFormat(models.PlatformFacebook, content)

	assert.Empty(t, issues.Errors)
	assert.Empty(t, issues.Warnings)
}

func TestValidateFormat_SocialRequiresBody(t *testing.T) {
	content := &models.Content{Id: "c1", Title: "Title only", Body: "   "}

	issues := simulation.ValidateFormat(models.PlatformTwitter, content)

	assert.Len(t, issues.Errors, 1)
	assert.Contains(t, issues.Errors[0], "non-empty body")
}

func TestValidateFormat_InstagramRequiresImage(t *testing.T) {
	content := &models.Content{Id: "c1", Body: "caption"}

	issues := simulation.ValidateFormat(models.PlatformInstagram, content)
	assert.Len(t, issues.Errors, 1)
	assert.Contains(t, issues.Errors[0], "at least one image")

	content.ImageUrls = pq.StringArray{"https://cdn.example.com/1.jpg"}
	issues = simulation.ValidateFormat(models.PlatformInstagram, content)
	assert.Empty(t, issues.Errors)
}
