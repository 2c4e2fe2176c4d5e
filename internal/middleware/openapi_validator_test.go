package middleware

import (
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromFile("../../artifacts/openapi.yaml")
	require.NoError(t, err, "Failed to load OpenAPI spec")

	require.NoError(t, doc.Validate(loader.Context), "OpenAPI spec validation failed")
	return doc
}

func TestOpenAPISpecIsValid(t *testing.T) {
	doc := loadSpec(t)

	assert.Equal(t, "Weather Dashboard API", doc.Info.Title)
	assert.Equal(t, "1.0.0", doc.Info.Version)
	assert.NotEmpty(t, doc.Servers, "At least one server should be defined")
}

func TestAllRoutesAreDocumentedInOpenAPI(t *testing.T) {
	doc := loadSpec(t)

	implementedRoutes := []struct {
		method string
		path   string
	}{
		{"POST", "/auth/login"},
		{"POST", "/auth/logout"},
		{"GET", "/auth/session"},

		{"GET", "/sponsors"},
		{"POST", "/sponsors"},
		{"PUT", "/sponsors/{index}"},
		{"DELETE", "/sponsors/{index}"},
		{"POST", "/sponsors/{index}/edit"},
		{"GET", "/sponsors/edit"},
		{"DELETE", "/sponsors/edit"},

		{"GET", "/weather"},
	}

	for _, route := range implementedRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			pathItem := doc.Paths.Find(route.path)
			require.NotNil(t, pathItem, "Path not found in OpenAPI spec: %s", route.path)

			operation := pathItem.GetOperation(route.method)
			require.NotNil(t, operation, "Operation not found in OpenAPI spec: %s %s", route.method, route.path)

			assert.NotEmpty(t, operation.OperationID, "OperationID should be set")
			assert.NotEmpty(t, operation.Tags, "Tags should be set")
			assert.NotEmpty(t, operation.Responses, "Responses should be defined")
		})
	}
}

func TestOpenAPIPathsMatchImplementation(t *testing.T) {
	doc := loadSpec(t)

	expectedPaths := []string{
		"/auth/login",
		"/auth/logout",
		"/auth/session",
		"/sponsors",
		"/sponsors/{index}",
		"/sponsors/{index}/edit",
		"/sponsors/edit",
		"/weather",
	}

	assert.Len(t, doc.Paths.Map(), len(expectedPaths), "Number of paths should match")

	for _, path := range expectedPaths {
		pathItem := doc.Paths.Find(path)
		assert.NotNil(t, pathItem, "Expected path not found: %s", path)
	}
}

func TestOpenAPISchemas(t *testing.T) {
	doc := loadSpec(t)

	requiredSchemas := []string{
		"LoginRequest",
		"SessionResponse",
		"Sponsor",
		"WeatherReport",
		"ErrorResponse",
	}

	for _, schemaName := range requiredSchemas {
		schema := doc.Components.Schemas[schemaName]
		assert.NotNil(t, schema, "Schema should exist: %s", schemaName)
	}
}

func TestShouldSkipPath(t *testing.T) {
	skipPaths := []string{
		"/health",
		"/health/ready",
		"/metrics",
		"/static",
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"/health", true},
		{"/health/ready", true},
		{"/metrics", true},
		{"/static/index.html", true},
		{"/api/v1/sponsors", false},
		{"/api/v1/auth/login", false},
		{"/ws/sponsors", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := shouldSkipPath(tt.path, skipPaths)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDefaultOpenAPIValidatorConfig(t *testing.T) {
	config := DefaultOpenAPIValidatorConfig()

	assert.NotNil(t, config)
	assert.Equal(t, "artifacts/openapi.yaml", config.SpecPath)
	assert.True(t, config.ValidateRequests, "Should validate requests by default")
	assert.False(t, config.ValidateResponses, "Should not validate responses by default (performance)")
	assert.NotEmpty(t, config.SkipPaths, "Should have skip paths configured")

	skipPathsStr := strings.Join(config.SkipPaths, ",")
	assert.Contains(t, skipPathsStr, "/health")
	assert.Contains(t, skipPathsStr, "/metrics")
}

func TestOpenAPIMiddlewareWithInvalidSpec(t *testing.T) {
	config := &OpenAPIValidatorConfig{
		Enabled:  true,
		SpecPath: "/nonexistent/path/to/spec.yaml",
	}

	// Should not panic, just return no-op middleware
	middleware := OpenAPIValidator(config)
	assert.NotNil(t, middleware)
}

func TestOpenAPIMiddlewareDisabled(t *testing.T) {
	config := &OpenAPIValidatorConfig{
		Enabled: false,
	}

	middleware := OpenAPIValidator(config)
	assert.NotNil(t, middleware)
}
