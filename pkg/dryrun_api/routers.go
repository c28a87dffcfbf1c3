package dryrun_api

import (
	"github.com/gin-gonic/gin"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/wI2L/fizz"
	"github.com/wI2L/fizz/openapi"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/handler"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/middleware"
)

var apiVersionHeader = fizz.Header(
	"API-Version",
	"The API version of the response",
	"",
)

var notFoundResponse = fizz.Response(
	"404",
	"Not Found",
	nil,
	nil,
	nil,
)

// NewRouter wires the dry-run API routes onto a fizz-wrapped gin engine.
func NewRouter(apiVersion string, controller *handler.DryRunController) *fizz.Fizz {
	g := gin.Default()
	g.Use(APIVersionMiddleware(apiVersion))
	f := fizz.NewFromEngine(g)

	f.Generator().SetServers([]*openapi.Server{
		{
			URL:         "https://api.postpilot.dev/v1",
			Description: "Production",
		},
	})

	info := &openapi.Info{
		Title:       "Publish Engine API v1",
		Description: "Pre-publish validation & dry-run simulation API",
		Version:     apiVersion,
		Contact: &openapi.Contact{
			Name:  "PostPilot engineering",
			Email: "engineering@postpilot.dev",
		},
	}

	root := f.Group("/v1", "API v1", "Publish engine v1 routes")

	read := root.Group("", "Read", "Read-only endpoints", middleware.RequireAccess("testruns:read"))
	read.GET("/test-runs",
		[]fizz.OperationOption{
			fizz.Summary("List dry-run history"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(controller.ListTestRuns, 200),
	)

	read.GET("/test-runs/:id",
		[]fizz.OperationOption{
			fizz.Summary("Retrieve a test run with its validation results"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(controller.RetrieveTestRun, 200),
	)

	read.GET("/platforms",
		[]fizz.OperationOption{
			fizz.Summary("List registered publishing platforms"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(controller.ListPlatforms, 200),
	)

	write := root.Group("", "Write", "Dry-run execution", middleware.RequireAccess("testruns:write"))
	write.POST("/test-runs",
		[]fizz.OperationOption{
			fizz.Summary("Execute a pre-publish dry run"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(controller.CreateTestRun, 201),
	)

	f.GET("/v1/openapi.json", []fizz.OperationOption{}, f.OpenAPI(info, "json"))

	return f
}

type apiVersionWriter struct {
	gin.ResponseWriter
	version string
}

func (w *apiVersionWriter) WriteHeader(code int) {
	if code >= 200 && code < 300 {
		w.Header().Set("API-Version", w.version)
	}
	w.ResponseWriter.WriteHeader(code)
}

func APIVersionMiddleware(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &apiVersionWriter{c.Writer, version}
		c.Next()
	}
}
