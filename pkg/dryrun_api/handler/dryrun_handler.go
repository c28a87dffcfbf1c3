package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	problem "github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/problem"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/util"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/repositories"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/services"
)

// DryRunController binds HTTP requests to the DryRunService.
type DryRunController struct {
	Service *services.DryRunService
}

// NewDryRunController creates a new controller.
func NewDryRunController(s *services.DryRunService) *DryRunController {
	return &DryRunController{Service: s}
}

// CreateTestRun handles POST /test-runs: execute a dry run and return the
// full report. Input errors map to problem documents; check failures are
// part of the report, not errors.
func (c *DryRunController) CreateTestRun(ctx *gin.Context, body *models.CreateTestRunInput) (*models.DryRunResponse, error) {
	resp, err := c.Service.Execute(ctx.Request.Context(), *body)
	if err != nil {
		if errors.Is(err, repositories.ErrContentNotFound) {
			return nil, problem.NewNotFound(body.ContentId, "Content not found",
				problem.InvalidParam{Name: "contentId", Reason: "No content exists with this id"})
		}
		var missing *repositories.MissingPlatformsError
		if errors.As(err, &missing) {
			return nil, problem.NewBadRequest("platformIds", missing.Error(),
				problem.InvalidParam{Name: "platformIds", Reason: "One or more platform ids are unknown or deleted"})
		}
		return nil, err
	}
	return resp, nil
}

// RetrieveTestRun handles GET /test-runs/:id.
func (c *DryRunController) RetrieveTestRun(ctx *gin.Context, params *models.TestRunParams) (*models.TestRun, error) {
	run, err := c.Service.RetrieveTestRun(ctx.Request.Context(), params.Id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, problem.NewNotFound(params.Id, "Test run not found")
	}
	return run, nil
}

// ListTestRuns handles GET /test-runs.
func (c *DryRunController) ListTestRuns(ctx *gin.Context, p *models.ListTestRunsParams) ([]models.TestRun, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 10
	}
	runs, pagination, err := c.Service.ListTestRuns(ctx.Request.Context(), p)
	if err != nil {
		return nil, err
	}
	util.SetPaginationHeaders(ctx.Request, ctx.Header, pagination)
	return runs, nil
}

// ListPlatforms handles GET /platforms.
func (c *DryRunController) ListPlatforms(ctx *gin.Context, p *models.ListPlatformsParams) ([]models.PlatformSummary, error) {
	return c.Service.ListPlatforms(ctx.Request.Context(), p.ProjectId)
}
