package models

import (
	"time"

	"github.com/lib/pq"
)

// TestRunStatus is the lifecycle of one dry-run invocation.
// PENDING → RUNNING → COMPLETED | FAILED, never mutated afterwards.
type TestRunStatus string

const (
	TestRunPending   TestRunStatus = "PENDING"
	TestRunRunning   TestRunStatus = "RUNNING"
	TestRunCompleted TestRunStatus = "COMPLETED"
	TestRunFailed    TestRunStatus = "FAILED"
)

// TestType distinguishes simulation kinds sharing the TestRun record.
type TestType string

const (
	TestTypeDryRun          TestType = "DRY_RUN"
	TestTypeConnectionAudit TestType = "CONNECTION_AUDIT"
)

// TestRun stores one dry-run invocation and its final verdict so we keep
// a history of simulation outcomes per project.
type TestRun struct {
	Id          string   `gorm:"column:id;primaryKey" json:"id"`
	ProjectId   string   `gorm:"column:project_id;index" json:"projectId"`
	UserId      string   `gorm:"column:user_id" json:"userId"`
	TestType    TestType `gorm:"column:test_type" json:"testType"`
	Name        *string  `gorm:"column:name" json:"name,omitempty"`
	Description *string  `gorm:"column:description" json:"description,omitempty"`

	// ContentId is nil for test types that don't validate a content item
	// (CONNECTION_AUDIT).
	ContentId   *string        `gorm:"column:content_id" json:"contentId,omitempty"`
	PlatformIds pq.StringArray `gorm:"column:platform_ids;type:text[]" json:"platformIds"`

	Status      TestRunStatus `gorm:"column:status" json:"status"`
	StartedAt   time.Time     `gorm:"column:started_at" json:"startedAt"`
	CompletedAt *time.Time    `gorm:"column:completed_at" json:"completedAt,omitempty"`
	DurationMs  *int64        `gorm:"column:duration_ms" json:"durationMs,omitempty"`

	// One "check" unit is one platform's overall verdict, so
	// TotalChecks == len(PlatformIds) and Passed == (FailedChecks == 0).
	Passed       bool `gorm:"column:passed" json:"passed"`
	TotalChecks  int  `gorm:"column:total_checks" json:"totalChecks"`
	PassedChecks int  `gorm:"column:passed_checks" json:"passedChecks"`
	FailedChecks int  `gorm:"column:failed_checks" json:"failedChecks"`
	WarningCount int  `gorm:"column:warning_count" json:"warningCount"`

	Summary         string         `gorm:"column:summary" json:"summary,omitempty"`
	Recommendations pq.StringArray `gorm:"column:recommendations;type:text[]" json:"recommendations,omitempty"`

	// Error fields are set only when the run itself aborts, never for
	// failing checks.
	Error        *string `gorm:"column:error" json:"error,omitempty"`
	ErrorDetails *string `gorm:"column:error_details" json:"errorDetails,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`

	ValidationResults []ValidationResult `gorm:"foreignKey:TestRunId;constraint:OnDelete:CASCADE" json:"validationResults,omitempty"`
	MockPublications  []MockPublication  `gorm:"foreignKey:TestRunId;constraint:OnDelete:CASCADE" json:"mockPublications,omitempty"`
}

type TestRunParams struct {
	Id string `path:"id"`
}

type ListTestRunsParams struct {
	Page      int     `query:"page"`
	PerPage   int     `query:"perPage"`
	ProjectId *string `query:"projectId"`
}
