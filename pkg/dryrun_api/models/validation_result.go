package models

import "time"

// Severity classifies a check outcome. CRITICAL and ERROR always mean the
// check failed; INFO always means it passed; WARNING may accompany either
// (a near-limit warning does not fail the platform).
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Blocking reports whether this severity forces passed=false.
func (s Severity) Blocking() bool {
	return s == SeverityError || s == SeverityCritical
}

// ValidationType identifies which of the five check validators produced a
// result.
type ValidationType string

const (
	ValidationPlatformConnection ValidationType = "PLATFORM_CONNECTION"
	ValidationAuthToken          ValidationType = "AUTH_TOKEN"
	ValidationContentFormat      ValidationType = "CONTENT_FORMAT"
	ValidationCharacterLimits    ValidationType = "CHARACTER_LIMITS"
	ValidationImageSize          ValidationType = "IMAGE_SIZE"
)

// ValidationResult stores the outcome of one check validator against one
// platform. Owned by its TestRun and immutable once written.
type ValidationResult struct {
	Id             string         `gorm:"column:id;primaryKey" json:"id"`
	TestRunId      string         `gorm:"column:test_run_id;index" json:"testRunId"`
	ProjectId      string         `gorm:"column:project_id" json:"projectId"`
	ValidationType ValidationType `gorm:"column:validation_type" json:"validationType"`
	PlatformId     string         `gorm:"column:platform_id" json:"platformId"`
	PlatformType   PlatformType   `gorm:"column:platform_type" json:"platformType"`
	ContentId      *string        `gorm:"column:content_id" json:"contentId,omitempty"`
	Passed         bool           `gorm:"column:passed" json:"passed"`
	Severity       Severity       `gorm:"column:severity" json:"severity"`
	CheckName      string         `gorm:"column:check_name" json:"checkName"`
	Description    string         `gorm:"column:description" json:"description"`
	Expected       string         `gorm:"column:expected" json:"expected"`
	Actual         string         `gorm:"column:actual" json:"actual"`
	Suggestion     *string        `gorm:"column:suggestion" json:"suggestion,omitempty"`

	// Reserved for future auto-correction; currently always false.
	AutoFixable bool `gorm:"column:auto_fixable" json:"autoFixable"`

	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}
