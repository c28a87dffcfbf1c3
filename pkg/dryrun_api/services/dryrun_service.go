package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/logger"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/repositories"
)

const (
	// maxConcurrentPlatforms bounds the fan-out so a large platform list
	// cannot saturate the persistence store.
	maxConcurrentPlatforms = 4
	// platformTimeout caps one platform's checks; a slow platform task
	// surfaces as a critical failure for that platform, not an aborted run.
	platformTimeout = 30 * time.Second
)

// DryRunService orchestrates pre-publish dry runs: it owns the TestRun
// lifecycle and fans the per-platform executor out over every requested
// platform.
type DryRunService struct {
	contents  repositories.ContentRepository
	platforms repositories.PlatformRepository
	runs      repositories.TestRunRepository
	log       *logger.Logger
	now       func() time.Time
}

func NewDryRunService(
	contents repositories.ContentRepository,
	platforms repositories.PlatformRepository,
	runs repositories.TestRunRepository,
	log *logger.Logger,
) *DryRunService {
	if log == nil {
		log = logger.NewNop()
	}
	return &DryRunService{
		contents:  contents,
		platforms: platforms,
		runs:      runs,
		log:       log,
		now:       time.Now,
	}
}

// Execute runs one dry run: create the TestRun, fetch the collaborator
// snapshots, execute every platform, aggregate, finalize. Check failures
// are data and complete the run; only input and persistence errors abort
// it, finalizing the TestRun as FAILED and propagating to the caller.
func (s *DryRunService) Execute(ctx context.Context, input models.CreateTestRunInput) (*models.DryRunResponse, error) {
	started := s.now().UTC()

	run := &models.TestRun{
		Id:          uuid.New().String(),
		ProjectId:   input.ProjectId,
		UserId:      input.UserId,
		TestType:    models.TestTypeDryRun,
		Name:        optional(input.Name),
		Description: optional(input.Description),
		ContentId:   &input.ContentId,
		PlatformIds: pq.StringArray(input.PlatformIds),
		Status:      models.TestRunPending,
		StartedAt:   started,
		TotalChecks: len(input.PlatformIds),
		CreatedAt:   started,
	}
	if err := s.runs.CreateTestRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create test run: %w", err)
	}
	if err := s.runs.MarkRunning(ctx, run.Id, started); err != nil {
		return nil, fmt.Errorf("mark test run running: %w", err)
	}
	run.Status = models.TestRunRunning

	resp, err := s.execute(ctx, run, input)
	if err != nil {
		s.failRun(ctx, run, err)
		return nil, err
	}
	return resp, nil
}

func (s *DryRunService) execute(ctx context.Context, run *models.TestRun, input models.CreateTestRunInput) (*models.DryRunResponse, error) {
	content, err := s.contents.GetContentByID(ctx, input.ContentId)
	if err != nil {
		return nil, err
	}
	platforms, err := s.platforms.GetPlatformsByIDs(ctx, input.PlatformIds)
	if err != nil {
		return nil, err
	}

	// Results keep the input platform order, not completion order.
	results := make([]models.MockPublishResult, len(platforms))
	sem := semaphore.NewWeighted(maxConcurrentPlatforms)
	g, gctx := errgroup.WithContext(ctx)

	for i, platform := range platforms {
		i, platform := i, platform
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			res, err := s.runPlatform(gctx, run, content, &platform)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := aggregate(results)
	summaryText := buildSummary(content, results, agg)
	recommendations := buildRecommendations(results)

	completed := s.now().UTC()
	duration := completed.Sub(run.StartedAt).Milliseconds()
	run.Status = models.TestRunCompleted
	run.CompletedAt = &completed
	run.DurationMs = &duration
	run.Passed = agg.WouldFail == 0
	run.PassedChecks = agg.WouldSucceed
	run.FailedChecks = agg.WouldFail
	run.WarningCount = agg.TotalWarnings
	run.Summary = summaryText
	run.Recommendations = pq.StringArray(recommendations)
	if err := s.runs.FinalizeTestRun(ctx, run); err != nil {
		return nil, fmt.Errorf("finalize test run: %w", err)
	}

	s.log.Info("dry run completed",
		"testRunId", run.Id,
		"projectId", run.ProjectId,
		"platforms", len(platforms),
		"passed", run.Passed,
		"durationMs", duration,
	)

	return &models.DryRunResponse{
		TestRunId:       run.Id,
		Passed:          run.Passed,
		Results:         results,
		Summary:         agg,
		SummaryText:     summaryText,
		Recommendations: recommendations,
	}, nil
}

// failRun finalizes the TestRun as FAILED with the captured error. Best
// effort: a run whose failure cannot even be recorded is logged and the
// original error still propagates.
func (s *DryRunService) failRun(ctx context.Context, run *models.TestRun, cause error) {
	completed := s.now().UTC()
	duration := completed.Sub(run.StartedAt).Milliseconds()
	msg := cause.Error()
	details := fmt.Sprintf("%+v", cause)

	run.Status = models.TestRunFailed
	run.CompletedAt = &completed
	run.DurationMs = &duration
	run.Passed = false
	run.Error = &msg
	run.ErrorDetails = &details

	if err := s.runs.FinalizeTestRun(context.WithoutCancel(ctx), run); err != nil {
		s.log.Error("could not record failed test run", "testRunId", run.Id, "error", err)
	}
	s.log.Warn("dry run failed", "testRunId", run.Id, "error", msg)
}

// RetrieveTestRun returns a run with its owned validation results and
// mock publications, or nil when unknown.
func (s *DryRunService) RetrieveTestRun(ctx context.Context, id string) (*models.TestRun, error) {
	return s.runs.GetTestRunByID(ctx, id)
}

// ListTestRuns returns the run history, newest first.
func (s *DryRunService) ListTestRuns(ctx context.Context, p *models.ListTestRunsParams) ([]models.TestRun, models.Pagination, error) {
	return s.runs.GetTestRuns(ctx, p.ProjectId, p.Page, p.PerPage)
}

// ListPlatforms returns the platform registry view.
func (s *DryRunService) ListPlatforms(ctx context.Context, projectId *string) ([]models.PlatformSummary, error) {
	platforms, err := s.platforms.ListPlatforms(ctx, projectId)
	if err != nil {
		return nil, err
	}
	out := make([]models.PlatformSummary, len(platforms))
	for i, p := range platforms {
		out[i] = models.PlatformSummary{
			Id:             p.Id,
			Type:           p.Type,
			Name:           p.Name,
			Connected:      p.Connected,
			HasCredential:  p.HasCredential(),
			TokenExpiresAt: p.TokenExpiresAt,
		}
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
