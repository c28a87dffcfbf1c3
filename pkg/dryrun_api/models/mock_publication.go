package models

import (
	"time"

	"github.com/lib/pq"
)

// MockPublication is the simulated publish outcome for one (TestRun,
// platform) pair, including a frozen copy of the content so later edits
// don't retroactively change historical runs.
type MockPublication struct {
	Id           string       `gorm:"column:id;primaryKey" json:"id"`
	TestRunId    string       `gorm:"column:test_run_id;index" json:"testRunId"`
	ContentId    string       `gorm:"column:content_id" json:"contentId"`
	PlatformId   string       `gorm:"column:platform_id" json:"platformId"`
	ProjectId    string       `gorm:"column:project_id" json:"projectId"`
	PlatformType PlatformType `gorm:"column:platform_type" json:"platformType"`
	PlatformName string       `gorm:"column:platform_name" json:"platformName"`

	SnapshotTitle     string         `gorm:"column:snapshot_title" json:"snapshotTitle"`
	SnapshotBody      string         `gorm:"column:snapshot_body" json:"snapshotBody"`
	SnapshotExcerpt   string         `gorm:"column:snapshot_excerpt" json:"snapshotExcerpt,omitempty"`
	SnapshotImageUrls pq.StringArray `gorm:"column:snapshot_image_urls;type:text[]" json:"snapshotImageUrls,omitempty"`

	// WouldSucceed is the AND of all check results for this platform,
	// equivalently Errors being empty. Warnings never affect it.
	WouldSucceed    bool           `gorm:"column:would_succeed" json:"wouldSucceed"`
	EstimatedTimeMs int64          `gorm:"column:estimated_time_ms" json:"estimatedTimeMs"`
	EstimatedCost   *float64       `gorm:"column:estimated_cost" json:"estimatedCost,omitempty"`
	Errors          pq.StringArray `gorm:"column:errors;type:text[]" json:"errors"`
	Warnings        pq.StringArray `gorm:"column:warnings;type:text[]" json:"warnings"`

	SimulatedPostId      string    `gorm:"column:simulated_post_id" json:"simulatedPostId"`
	SimulatedUrl         string    `gorm:"column:simulated_url" json:"simulatedUrl"`
	SimulatedPublishedAt time.Time `gorm:"column:simulated_published_at" json:"simulatedPublishedAt"`

	TitleLength   int  `gorm:"column:title_length" json:"titleLength"`
	BodyLength    int  `gorm:"column:body_length" json:"bodyLength"`
	ExceedsLimits bool `gorm:"column:exceeds_limits" json:"exceedsLimits"`

	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}
