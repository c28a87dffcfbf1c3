package util_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/util"
)

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestLoadOASVersion_ReturnsInfoVersion(t *testing.T) {
	path := writeDoc(t, `{
  "openapi": "3.0.3",
  "info": {"title": "Publish Engine API", "version": "1.2.3"},
  "paths": {}
}`)

	version, err := util.LoadOASVersion(path)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version)
}

func TestLoadOASVersion_MissingFile(t *testing.T) {
	_, err := util.LoadOASVersion(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadOASVersion_InvalidDocument(t *testing.T) {
	path := writeDoc(t, `{"openapi": "3.0.3"}`)

	_, err := util.LoadOASVersion(path)
	assert.Error(t, err)
}

func TestLoadOASVersion_ShippedDocumentIsValid(t *testing.T) {
	version, err := util.LoadOASVersion("../../../../api/openapi.json")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version)
}
