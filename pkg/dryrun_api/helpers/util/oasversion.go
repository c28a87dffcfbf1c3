package util

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// LoadOASVersion loads and validates the service's own OpenAPI document
// and returns its info.version, used for the API-Version response header.
func LoadOASVersion(path string) (string, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return "", fmt.Errorf("could not load OAS file: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return "", fmt.Errorf("invalid OAS document: %w", err)
	}
	if doc.Info == nil || doc.Info.Version == "" {
		return "", fmt.Errorf("version missing from OAS")
	}
	return doc.Info.Version, nil
}
