package dryrun_api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	dryrun_api "github.com/postpilot-hq/publish-engine/pkg/dryrun_api"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/handler"
	problem "github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/problem"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/repositories"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/services"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/testutil"
)

var errorHookOnce sync.Once

func setupErrorHook() {
	errorHookOnce.Do(func() {
		tonic.SetErrorHook(func(c *gin.Context, err error) (int, interface{}) {
			var be tonic.BindError
			if errors.As(err, &be) || isValidationErr(err) {
				invalids := invalidParamsFromBinding(err, models.CreateTestRunInput{})
				apiErr := problem.NewBadRequest("body", "Invalid test run input", invalids...)
				c.Header("Content-Type", "application/problem+json")
				return apiErr.Status, apiErr
			}

			if apiErr, ok := err.(problem.APIError); ok {
				c.Header("Content-Type", "application/problem+json")
				return apiErr.Status, apiErr
			}

			internal := problem.NewInternalServerError(err.Error())
			c.Header("Content-Type", "application/problem+json")
			return internal.Status, internal
		})
	})
}

func invalidParamsFromBinding(err error, sample any) []problem.InvalidParam {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []problem.InvalidParam{{Name: "body", Reason: err.Error()}}
	}

	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	out := make([]problem.InvalidParam, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
				name = strings.Split(tag, ",")[0]
			}
		}
		out = append(out, problem.InvalidParam{
			Name:   name,
			Reason: fe.Error(),
		})
	}
	return out
}

func isValidationErr(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

func writeToken(t *testing.T, scope string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"scope": scope,
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

type integrationEnv struct {
	server    *httptest.Server
	platforms repositories.PlatformRepository
	contents  repositories.ContentRepository
	service   *services.DryRunService
	client    *http.Client
}

func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	setupErrorHook()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Platform{},
		&models.Content{},
		&models.TestRun{},
		&models.ValidationResult{},
		&models.MockPublication{},
	))

	contents := repositories.NewContentRepository(db)
	platforms := repositories.NewPlatformRepository(db)
	runs := repositories.NewTestRunRepository(db)
	svc := services.NewDryRunService(contents, platforms, runs, nil)
	controller := handler.NewDryRunController(svc)
	router := dryrun_api.NewRouter("test-version", controller)

	server := testutil.NewTestServer(t, router)

	return &integrationEnv{
		server:    server,
		platforms: platforms,
		contents:  contents,
		service:   svc,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (e *integrationEnv) doRequest(t *testing.T, method, path string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *integrationEnv) doJSONRequest(t *testing.T, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}

	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	err = json.Unmarshal(data, &out)
	require.NoErrorf(t, err, "body=%s", string(data))
	return out
}

func TestDryRunApplicationFlow(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := t.Context()

	apiKey := map[string]string{"x-api-key": "test-key"}
	bearer := map[string]string{"Authorization": "Bearer " + writeToken(t, "testruns:read testruns:write")}

	accessToken := "tok-123"
	expired := time.Now().Add(-time.Hour)
	require.NoError(t, env.platforms.SavePlatform(ctx, &models.Platform{
		Id: "p-twitter", ProjectId: "proj-1", Type: models.PlatformTwitter,
		Name: "Twitter", Connected: true, AccessToken: &accessToken,
	}))
	require.NoError(t, env.platforms.SavePlatform(ctx, &models.Platform{
		Id: "p-medium", ProjectId: "proj-1", Type: models.PlatformMedium,
		Name: "Medium", Connected: true, AccessToken: &accessToken, TokenExpiresAt: &expired,
	}))

	require.NoError(t, env.contents.SaveContent(ctx, &models.Content{
		Id: "c1", ProjectId: "proj-1", Title: "Release notes", Body: "We shipped.", Excerpt: "Shipped",
	}))

	var testRunId string

	t.Run("execute dry run", func(t *testing.T) {
		resp := env.doJSONRequest(t, http.MethodPost, "/v1/test-runs", map[string]any{
			"projectId":   "proj-1",
			"userId":      "u1",
			"contentId":   "c1",
			"platformIds": []string{"p-twitter", "p-medium"},
		}, bearer)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.Equal(t, "test-version", resp.Header.Get("API-Version"))

		report := decodeBody[models.DryRunResponse](t, resp)
		require.NotEmpty(t, report.TestRunId)
		testRunId = report.TestRunId

		// Medium's token is expired, Twitter is healthy.
		require.False(t, report.Passed)
		require.Len(t, report.Results, 2)
		require.Equal(t, "p-twitter", report.Results[0].PlatformId)
		require.True(t, report.Results[0].WouldSucceed)
		require.False(t, report.Results[1].WouldSucceed)
		require.Contains(t, report.Results[1].Errors[0], "expired")
		require.Equal(t, 1, report.Summary.WouldFail)
		require.Contains(t, report.SummaryText, "1 would fail")
		require.NotEmpty(t, report.Recommendations)
		require.Contains(t, report.Recommendations[0], "Medium")
	})

	t.Run("retrieve test run", func(t *testing.T) {
		resp := env.doRequest(t, http.MethodGet, "/v1/test-runs/"+testRunId, apiKey)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "test-version", resp.Header.Get("API-Version"))

		run := decodeBody[models.TestRun](t, resp)
		require.Equal(t, testRunId, run.Id)
		require.Equal(t, models.TestRunCompleted, run.Status)
		require.Equal(t, models.TestTypeDryRun, run.TestType)
		require.False(t, run.Passed)
		require.Equal(t, 2, run.TotalChecks)
		require.Len(t, run.ValidationResults, 10)
		require.Len(t, run.MockPublications, 2)
		require.NotNil(t, run.CompletedAt)
	})

	t.Run("list test runs", func(t *testing.T) {
		resp := env.doRequest(t, http.MethodGet, "/v1/test-runs?projectId=proj-1", apiKey)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "1", resp.Header.Get("X-Total-Count"))
		require.Equal(t, "1", resp.Header.Get("X-Total-Pages"))

		runs := decodeBody[[]models.TestRun](t, resp)
		require.Len(t, runs, 1)
		require.Equal(t, testRunId, runs[0].Id)
	})

	t.Run("list platforms", func(t *testing.T) {
		resp := env.doRequest(t, http.MethodGet, "/v1/platforms?projectId=proj-1", apiKey)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		summaries := decodeBody[[]models.PlatformSummary](t, resp)
		require.Len(t, summaries, 2)
		for _, s := range summaries {
			require.True(t, s.HasCredential)
		}
	})

	t.Run("unknown test run gives problem json", func(t *testing.T) {
		resp := env.doRequest(t, http.MethodGet, "/v1/test-runs/"+uuid.NewString(), apiKey)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		prob := decodeBody[problem.APIError](t, resp)
		require.Equal(t, "Resource Not Found", prob.Title)
		require.Equal(t, 404, prob.Status)
		require.NotEmpty(t, prob.Errors)
		require.Contains(t, prob.Errors[0].Detail, "Test run not found")
	})

	t.Run("unknown content gives problem json", func(t *testing.T) {
		resp := env.doJSONRequest(t, http.MethodPost, "/v1/test-runs", map[string]any{
			"projectId":   "proj-1",
			"userId":      "u1",
			"contentId":   "ghost",
			"platformIds": []string{"p-twitter"},
		}, bearer)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		prob := decodeBody[problem.APIError](t, resp)
		require.Equal(t, 404, prob.Status)
		require.NotEmpty(t, prob.Errors)
		require.Equal(t, "contentId", prob.Errors[0].Location)
	})

	t.Run("unknown platform gives problem json", func(t *testing.T) {
		resp := env.doJSONRequest(t, http.MethodPost, "/v1/test-runs", map[string]any{
			"projectId":   "proj-1",
			"userId":      "u1",
			"contentId":   "c1",
			"platformIds": []string{"ghost"},
		}, bearer)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		prob := decodeBody[problem.APIError](t, resp)
		require.Equal(t, 400, prob.Status)
		require.NotEmpty(t, prob.Errors)
		require.Equal(t, "platformIds", prob.Errors[0].Location)
	})

	t.Run("missing fields give invalid params", func(t *testing.T) {
		resp := env.doJSONRequest(t, http.MethodPost, "/v1/test-runs", map[string]any{
			"projectId": "proj-1",
		}, bearer)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		prob := decodeBody[problem.APIError](t, resp)
		require.Equal(t, 400, prob.Status)
		require.NotEmpty(t, prob.Errors)
	})

	t.Run("failed input run is recorded", func(t *testing.T) {
		resp := env.doRequest(t, http.MethodGet, "/v1/test-runs?projectId=proj-1", apiKey)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		runs := decodeBody[[]models.TestRun](t, resp)
		var failed int
		for _, run := range runs {
			if run.Status == models.TestRunFailed {
				failed++
				require.NotNil(t, run.Error)
			}
		}
		require.Equal(t, 2, failed, "the two aborted runs above leave FAILED records")
	})
}

func TestAuthBoundaries(t *testing.T) {
	env := newIntegrationEnv(t)

	t.Run("no credentials is unauthorized", func(t *testing.T) {
		resp := env.doRequest(t, http.MethodGet, "/v1/test-runs", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("api key cannot write", func(t *testing.T) {
		resp := env.doJSONRequest(t, http.MethodPost, "/v1/test-runs", map[string]any{
			"projectId":   "proj-1",
			"userId":      "u1",
			"contentId":   "c1",
			"platformIds": []string{"p1"},
		}, map[string]string{"x-api-key": "test-key"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("token without write scope is forbidden", func(t *testing.T) {
		resp := env.doJSONRequest(t, http.MethodPost, "/v1/test-runs", map[string]any{
			"projectId":   "proj-1",
			"userId":      "u1",
			"contentId":   "c1",
			"platformIds": []string{"p1"},
		}, map[string]string{"Authorization": "Bearer " + writeToken(t, "testruns:read")})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("openapi document is public", func(t *testing.T) {
		resp := env.doRequest(t, http.MethodGet, "/v1/openapi.json", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
