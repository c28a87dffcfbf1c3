package models

import "time"

// CreateTestRunInput is the request body for POST /test-runs.
type CreateTestRunInput struct {
	ProjectId   string   `json:"projectId" binding:"required" validate:"required"`
	UserId      string   `json:"userId" binding:"required" validate:"required"`
	ContentId   string   `json:"contentId" binding:"required" validate:"required"`
	PlatformIds []string `json:"platformIds" binding:"required,min=1" validate:"required,min=1"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
}

// SimulatedResponse is the fabricated platform response for UI preview.
type SimulatedResponse struct {
	PlatformPostId string    `json:"platformPostId"`
	PlatformUrl    string    `json:"platformUrl"`
	PublishedAt    time.Time `json:"publishedAt"`
}

// CharacterAnalysis reports body length against the platform's limits.
type CharacterAnalysis struct {
	TitleLength      int     `json:"titleLength"`
	BodyLength       int     `json:"bodyLength"`
	CharacterLimit   int     `json:"characterLimit"`
	RecommendedLimit int     `json:"recommendedLimit"`
	ExceedsLimits    bool    `json:"exceedsLimits"`
	PercentUsed      float64 `json:"percentUsed"`
}

// MockPublishResult is the in-memory per-platform outcome returned to the
// caller. Errors and warnings are merged in fixed validator order.
type MockPublishResult struct {
	PlatformId        string            `json:"platformId"`
	PlatformType      PlatformType      `json:"platformType"`
	PlatformName      string            `json:"platformName"`
	WouldSucceed      bool              `json:"wouldSucceed"`
	EstimatedTimeMs   int64             `json:"estimatedTimeMs"`
	EstimatedCost     *float64          `json:"estimatedCost,omitempty"`
	Errors            []string          `json:"errors"`
	Warnings          []string          `json:"warnings"`
	SimulatedResponse SimulatedResponse `json:"simulatedResponse"`
	CharacterAnalysis CharacterAnalysis `json:"characterAnalysis"`
}

// DryRunSummary aggregates the per-platform outcomes.
type DryRunSummary struct {
	Total         int `json:"total"`
	WouldSucceed  int `json:"wouldSucceed"`
	WouldFail     int `json:"wouldFail"`
	TotalErrors   int `json:"totalErrors"`
	TotalWarnings int `json:"totalWarnings"`
}

// DryRunResponse is the caller-facing result of one dry run. It is stable
// and independently testable without a UI.
type DryRunResponse struct {
	TestRunId       string              `json:"testRunId"`
	Passed          bool                `json:"passed"`
	Results         []MockPublishResult `json:"results"`
	Summary         DryRunSummary       `json:"summary"`
	SummaryText     string              `json:"summaryText,omitempty"`
	Recommendations []string            `json:"recommendations,omitempty"`
}
