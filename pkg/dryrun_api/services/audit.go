package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
	"github.com/postpilot-hq/publish-engine/pkg/simulation"
)

const maxConcurrentAudits = 2

// AuditConnections re-checks connection state and credential validity for
// every connected platform, one CONNECTION_AUDIT test run per project.
// One broken project must not block the rest.
func (s *DryRunService) AuditConnections(ctx context.Context) error {
	platforms, err := s.platforms.AllConnected(ctx)
	if err != nil {
		return err
	}

	byProject := make(map[string][]models.Platform)
	var projectOrder []string
	for _, p := range platforms {
		if _, seen := byProject[p.ProjectId]; !seen {
			projectOrder = append(projectOrder, p.ProjectId)
		}
		byProject[p.ProjectId] = append(byProject[p.ProjectId], p)
	}

	sem := semaphore.NewWeighted(maxConcurrentAudits)
	g, gctx := errgroup.WithContext(ctx)

	for _, projectId := range projectOrder {
		projectId := projectId
		group := byProject[projectId]

		if err := sem.Acquire(gctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)

			auditCtx, cancel := context.WithTimeout(gctx, 2*time.Minute)
			defer cancel()

			if err := s.auditProject(auditCtx, projectId, group); err != nil {
				s.log.Error("connection audit failed", "projectId", projectId, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *DryRunService) auditProject(ctx context.Context, projectId string, platforms []models.Platform) error {
	started := s.now().UTC()
	ids := make([]string, len(platforms))
	for i, p := range platforms {
		ids[i] = p.Id
	}

	run := &models.TestRun{
		Id:          uuid.New().String(),
		ProjectId:   projectId,
		UserId:      "system",
		TestType:    models.TestTypeConnectionAudit,
		PlatformIds: pq.StringArray(ids),
		Status:      models.TestRunPending,
		StartedAt:   started,
		TotalChecks: len(platforms),
		CreatedAt:   started,
	}
	if err := s.runs.CreateTestRun(ctx, run); err != nil {
		return fmt.Errorf("create audit run: %w", err)
	}
	if err := s.runs.MarkRunning(ctx, run.Id, started); err != nil {
		return fmt.Errorf("mark audit run running: %w", err)
	}
	run.Status = models.TestRunRunning

	passed, failed, warnings := 0, 0, 0
	var lines []string
	now := s.now().UTC()
	for i := range platforms {
		platform := &platforms[i]
		outcomes := make([]simulation.CheckOutcome, 0, len(simulation.AuditChecks))
		for _, check := range simulation.AuditChecks {
			outcomes = append(outcomes, check(nil, platform, now))
		}
		errs, warns, allPassed, err := s.persistOutcomes(ctx, run, platform, outcomes)
		if err != nil {
			s.failRun(ctx, run, err)
			return err
		}
		warnings += len(warns)
		verdict := "PASS"
		if allPassed && len(errs) == 0 {
			passed++
		} else {
			failed++
			verdict = "FAIL"
		}
		lines = append(lines, fmt.Sprintf("%s %s (%s)", verdict, platform.Name, platform.Type))
	}

	completed := s.now().UTC()
	duration := completed.Sub(started).Milliseconds()
	run.Status = models.TestRunCompleted
	run.CompletedAt = &completed
	run.DurationMs = &duration
	run.Passed = failed == 0
	run.PassedChecks = passed
	run.FailedChecks = failed
	run.WarningCount = warnings
	run.Summary = fmt.Sprintf("Connection audit for project %s: %d ok, %d need attention.", projectId, passed, failed)
	for _, l := range lines {
		run.Summary += "\n" + l
	}
	if err := s.runs.FinalizeTestRun(ctx, run); err != nil {
		return fmt.Errorf("finalize audit run: %w", err)
	}

	s.log.Info("connection audit completed", "projectId", projectId, "platforms", len(platforms), "failed", failed)
	return nil
}
