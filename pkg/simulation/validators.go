package simulation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

// CheckOutcome is what a single validator produces: one structured result
// plus its contributions to the platform's aggregate error/warning lists.
// Outcomes are immutable; the executor merges them in fixed validator
// order regardless of completion order.
type CheckOutcome struct {
	Result   models.ValidationResult
	Errors   []string
	Warnings []string
}

// CheckFunc is a pure check over (content snapshot, platform snapshot).
// content may be nil for checks that don't inspect it (connection and
// credential audits run without a content item).
type CheckFunc func(content *models.Content, platform *models.Platform, now time.Time) CheckOutcome

// Checks lists the five validators in their canonical merge order:
// connection, credentials, content format, character limits, images.
var Checks = []CheckFunc{
	CheckConnection,
	CheckCredentials,
	CheckContentFormat,
	CheckCharacterLimits,
	CheckImages,
}

// AuditChecks is the subset run by the scheduled connection audit.
var AuditChecks = []CheckFunc{
	CheckConnection,
	CheckCredentials,
}

func newResult(platform *models.Platform, vt models.ValidationType, checkName string) models.ValidationResult {
	return models.ValidationResult{
		Id:             uuid.New().String(),
		ValidationType: vt,
		PlatformId:     platform.Id,
		PlatformType:   platform.Type,
		CheckName:      checkName,
		CreatedAt:      time.Now().UTC(),
	}
}

func contentId(content *models.Content) *string {
	if content == nil {
		return nil
	}
	id := content.Id
	return &id
}

func strptr(s string) *string { return &s }

// CheckConnection passes iff the platform's stored connection flag is set.
// A disconnected platform can never simulate success, so failing here is
// CRITICAL and always contributes an error.
func CheckConnection(_ *models.Content, platform *models.Platform, _ time.Time) CheckOutcome {
	res := newResult(platform, models.ValidationPlatformConnection, "Platform Connection")
	res.Expected = "platform connected"

	if !platform.Connected {
		res.Passed = false
		res.Severity = models.SeverityCritical
		res.Actual = "disconnected"
		res.Description = fmt.Sprintf("%s (%s) is not connected", platform.Name, platform.Type)
		res.Suggestion = strptr("Reconnect the platform from the integrations page before publishing")
		return CheckOutcome{Result: res, Errors: []string{res.Description}}
	}

	res.Passed = true
	res.Severity = models.SeverityInfo
	res.Actual = "connected"
	res.Description = fmt.Sprintf("%s is connected", platform.Name)
	return CheckOutcome{Result: res}
}

// CheckCredentials passes iff a credential value is present and, when an
// expiry timestamp exists, that timestamp is still in the future. A missing
// expiry means the token does not expire. Missing and expired credentials
// produce distinct descriptions so the UI can guide the user correctly.
func CheckCredentials(_ *models.Content, platform *models.Platform, now time.Time) CheckOutcome {
	res := newResult(platform, models.ValidationAuthToken, "Credential Validity")
	res.Expected = "valid access token"

	if !platform.HasCredential() {
		res.Passed = false
		res.Severity = models.SeverityCritical
		res.Actual = "no token stored"
		res.Description = fmt.Sprintf("no access token stored for %s", platform.Name)
		res.Suggestion = strptr("Authorize the platform again to obtain a token")
		return CheckOutcome{Result: res, Errors: []string{res.Description}}
	}

	if platform.TokenExpiresAt != nil && !platform.TokenExpiresAt.After(now) {
		res.Passed = false
		res.Severity = models.SeverityCritical
		res.Actual = fmt.Sprintf("token expired at %s", platform.TokenExpiresAt.UTC().Format(time.RFC3339))
		res.Description = fmt.Sprintf("access token for %s expired at %s", platform.Name, platform.TokenExpiresAt.UTC().Format(time.RFC3339))
		res.Suggestion = strptr("Refresh the expired token from the integrations page")
		return CheckOutcome{Result: res, Errors: []string{res.Description}}
	}

	res.Passed = true
	res.Severity = models.SeverityInfo
	res.Actual = "token present and unexpired"
	res.Description = fmt.Sprintf("credentials for %s are valid", platform.Name)
	return CheckOutcome{Result: res}
}

// CheckContentFormat delegates to the platform-aware structural validator.
// Severity is ERROR when any format error exists, INFO otherwise; all
// format errors and warnings flow into the platform's aggregate lists.
func CheckContentFormat(content *models.Content, platform *models.Platform, _ time.Time) CheckOutcome {
	res := newResult(platform, models.ValidationContentFormat, "Content Format")
	res.ContentId = contentId(content)
	res.Expected = fmt.Sprintf("content matching %s format rules", platform.Type)

	issues := ValidateFormat(platform.Type, content)
	res.Actual = fmt.Sprintf("%d format errors, %d warnings", len(issues.Errors), len(issues.Warnings))

	if len(issues.Errors) > 0 {
		res.Passed = false
		res.Severity = models.SeverityError
		res.Description = strings.Join(issues.Errors, "; ")
		res.Suggestion = strptr("Fix the listed format issues and run the simulation again")
	} else {
		res.Passed = true
		res.Severity = models.SeverityInfo
		res.Description = fmt.Sprintf("content is structurally valid for %s", platform.Type)
	}

	return CheckOutcome{Result: res, Errors: issues.Errors, Warnings: issues.Warnings}
}

// CheckCharacterLimits compares body length to the profile's hard and
// recommended limits. Three tiers: over the hard limit is an ERROR, over
// the recommended limit is a WARNING that still passes, under both is
// INFO. Only the hard breach contributes to the error list.
func CheckCharacterLimits(content *models.Content, platform *models.Platform, _ time.Time) CheckOutcome {
	profile := LimitsFor(platform.Type)
	bodyLen := len([]rune(content.Body))

	res := newResult(platform, models.ValidationCharacterLimits, "Character Limits")
	res.ContentId = contentId(content)
	res.Expected = fmt.Sprintf("body of at most %d characters", profile.CharacterLimit)
	res.Actual = fmt.Sprintf("%d characters", bodyLen)

	switch {
	case bodyLen > profile.CharacterLimit:
		over := bodyLen - profile.CharacterLimit
		res.Passed = false
		res.Severity = models.SeverityError
		res.Description = fmt.Sprintf("body is %d characters over the %s limit of %d", over, platform.Type, profile.CharacterLimit)
		res.Suggestion = strptr(fmt.Sprintf("Shorten the body by at least %d characters", over))
		return CheckOutcome{Result: res, Errors: []string{res.Description}}

	case bodyLen > profile.RecommendedLimit:
		pct := float64(bodyLen) / float64(profile.CharacterLimit) * 100
		res.Passed = true
		res.Severity = models.SeverityWarning
		res.Description = fmt.Sprintf("body exceeds the recommended %d characters by %d (%.0f%% of the hard limit)", profile.RecommendedLimit, bodyLen-profile.RecommendedLimit, pct)
		res.Suggestion = strptr("Consider trimming the body for better engagement")
		return CheckOutcome{Result: res, Warnings: []string{res.Description}}

	default:
		res.Passed = true
		res.Severity = models.SeverityInfo
		res.Description = fmt.Sprintf("body fits within the %s limits", platform.Type)
		return CheckOutcome{Result: res}
	}
}

// CheckImages compares the attached image count to the profile's maximum.
// Exceeding it is never a hard failure (platforms silently truncate extra
// images); it is always a WARNING stating how many would be dropped.
func CheckImages(content *models.Content, platform *models.Platform, _ time.Time) CheckOutcome {
	profile := LimitsFor(platform.Type)
	count := len(content.ImageUrls)

	res := newResult(platform, models.ValidationImageSize, "Image Count")
	res.ContentId = contentId(content)
	res.Expected = fmt.Sprintf("at most %d images", profile.MaxImages)
	res.Actual = fmt.Sprintf("%d images", count)

	if count > profile.MaxImages {
		dropped := count - profile.MaxImages
		res.Passed = true
		res.Severity = models.SeverityWarning
		res.Description = fmt.Sprintf("%d images attached but %s accepts %d; %d would be dropped", count, platform.Type, profile.MaxImages, dropped)
		res.Suggestion = strptr(fmt.Sprintf("Remove %d images to control which ones are published", dropped))
		return CheckOutcome{Result: res, Warnings: []string{res.Description}}
	}

	res.Passed = true
	res.Severity = models.SeverityInfo
	res.Description = fmt.Sprintf("image count is within the %s maximum", platform.Type)
	return CheckOutcome{Result: res}
}
