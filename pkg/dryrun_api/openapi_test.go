package dryrun_api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dryrun_api "github.com/postpilot-hq/publish-engine/pkg/dryrun_api"
	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/handler"
)

// The served document is generated by fizz from the registered routes, so
// this guards against a route change producing an invalid spec.
func TestGeneratedOpenAPIDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupErrorHook()

	router := dryrun_api.NewRouter("1.0.0", handler.NewDryRunController(nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(w.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(loader.Context))

	assert.Equal(t, "Publish Engine API v1", doc.Info.Title)
	assert.Equal(t, "1.0.0", doc.Info.Version)

	for _, path := range []string{"/v1/test-runs", "/v1/test-runs/{id}", "/v1/platforms"} {
		assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
	}
	require.NotNil(t, doc.Paths.Find("/v1/test-runs"))
	assert.NotNil(t, doc.Paths.Find("/v1/test-runs").Post, "dry-run execution operation missing")
}
