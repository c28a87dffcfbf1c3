package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
	"github.com/postpilot-hq/publish-engine/pkg/simulation"
)

// runPlatform executes the full dry run for one platform: all five checks,
// one MockPublication row, one in-memory result. Persistence failures are
// fatal for the whole TestRun; a dry run whose evidence cannot be recorded
// is not a trustworthy dry run.
func (s *DryRunService) runPlatform(ctx context.Context, run *models.TestRun, content *models.Content, platform *models.Platform) (models.MockPublishResult, error) {
	// The timeout covers the checks only; persistence below runs under the
	// parent context so a timed-out platform can still be recorded.
	checkCtx, cancel := context.WithTimeout(ctx, platformTimeout)
	defer cancel()

	outcomes, err := runChecks(checkCtx, simulation.Checks, content, platform, s.now().UTC())
	if err != nil {
		outcomes = timedOutOutcomes(platform, err)
	}

	errs, warns, _, err := s.persistOutcomes(ctx, run, platform, outcomes)
	if err != nil {
		return models.MockPublishResult{}, err
	}
	wouldSucceed := len(errs) == 0

	profile := simulation.LimitsFor(platform.Type)
	titleLen := len([]rune(content.Title))
	bodyLen := len([]rune(content.Body))
	analysis := models.CharacterAnalysis{
		TitleLength:      titleLen,
		BodyLength:       bodyLen,
		CharacterLimit:   profile.CharacterLimit,
		RecommendedLimit: profile.RecommendedLimit,
		ExceedsLimits:    bodyLen > profile.CharacterLimit,
		PercentUsed:      float64(bodyLen) / float64(profile.CharacterLimit) * 100,
	}

	mock := simulation.GenerateMockResponse(platform.Type, content)
	estimatedTime := simulation.EstimatePublishTime(platform.Type, len(content.ImageUrls)).Milliseconds()
	cost := simulation.EstimateCost(platform.Type)

	pub := &models.MockPublication{
		Id:                   uuid.New().String(),
		TestRunId:            run.Id,
		ContentId:            content.Id,
		PlatformId:           platform.Id,
		ProjectId:            run.ProjectId,
		PlatformType:         platform.Type,
		PlatformName:         platform.Name,
		SnapshotTitle:        content.Title,
		SnapshotBody:         content.Body,
		SnapshotExcerpt:      content.Excerpt,
		SnapshotImageUrls:    append(pq.StringArray{}, content.ImageUrls...),
		WouldSucceed:         wouldSucceed,
		EstimatedTimeMs:      estimatedTime,
		EstimatedCost:        &cost,
		Errors:               pq.StringArray(errs),
		Warnings:             pq.StringArray(warns),
		SimulatedPostId:      mock.PlatformPostId,
		SimulatedUrl:         mock.PlatformUrl,
		SimulatedPublishedAt: mock.PublishedAt,
		TitleLength:          titleLen,
		BodyLength:           bodyLen,
		ExceedsLimits:        analysis.ExceedsLimits,
		CreatedAt:            s.now().UTC(),
	}
	if err := s.runs.SaveMockPublication(ctx, pub); err != nil {
		return models.MockPublishResult{}, fmt.Errorf("save mock publication for %s: %w", platform.Id, err)
	}

	return models.MockPublishResult{
		PlatformId:        platform.Id,
		PlatformType:      platform.Type,
		PlatformName:      platform.Name,
		WouldSucceed:      wouldSucceed,
		EstimatedTimeMs:   estimatedTime,
		EstimatedCost:     &cost,
		Errors:            errs,
		Warnings:          warns,
		SimulatedResponse: mock,
		CharacterAnalysis: analysis,
	}, nil
}

// persistOutcomes writes every ValidationResult and merges error/warning
// contributions in fixed validator order, regardless of which check
// finished first.
func (s *DryRunService) persistOutcomes(ctx context.Context, run *models.TestRun, platform *models.Platform, outcomes []simulation.CheckOutcome) (errs, warns []string, allPassed bool, err error) {
	errs = make([]string, 0)
	warns = make([]string, 0)
	allPassed = true

	for i := range outcomes {
		o := &outcomes[i]
		o.Result.TestRunId = run.Id
		o.Result.ProjectId = run.ProjectId
		if saveErr := s.runs.SaveValidationResult(ctx, &o.Result); saveErr != nil {
			return nil, nil, false, fmt.Errorf("save validation result %s for %s: %w", o.Result.ValidationType, platform.Id, saveErr)
		}
		if !o.Result.Passed {
			allPassed = false
		}
		errs = append(errs, o.Errors...)
		warns = append(warns, o.Warnings...)
	}
	return errs, warns, allPassed, nil
}

// runChecks evaluates the validators concurrently, filling a fixed slot
// per validator so the merge order never depends on scheduling.
func runChecks(ctx context.Context, checks []simulation.CheckFunc, content *models.Content, platform *models.Platform, now time.Time) ([]simulation.CheckOutcome, error) {
	outcomes := make([]simulation.CheckOutcome, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = check(content, platform, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// timedOutOutcomes substitutes one critical failure when a platform's
// checks could not finish inside the per-platform budget.
func timedOutOutcomes(platform *models.Platform, cause error) []simulation.CheckOutcome {
	desc := fmt.Sprintf("checks for %s did not finish in time: %v", platform.Name, cause)
	res := models.ValidationResult{
		Id:             uuid.New().String(),
		ValidationType: models.ValidationPlatformConnection,
		PlatformId:     platform.Id,
		PlatformType:   platform.Type,
		Passed:         false,
		Severity:       models.SeverityCritical,
		CheckName:      "Platform Checks",
		Description:    desc,
		Expected:       fmt.Sprintf("all checks within %s", platformTimeout),
		Actual:         "timed out",
		CreatedAt:      time.Now().UTC(),
	}
	return []simulation.CheckOutcome{{Result: res, Errors: []string{desc}}}
}
