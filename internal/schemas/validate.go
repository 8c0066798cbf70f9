// Package schemas validates career catalog documents against their JSON Schema
// and decodes them.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/career-guidance/internal/types"
	catalogschema "github.com/jonathan/career-guidance/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate("(string schema)",
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent))
}

func validate(name string, schema, document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return &SchemaLoadError{
			Path:    name,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// ParseCatalog validates a catalog document against the embedded catalog
// schema and decodes it. Career names must be unique after trimming; the
// document order is kept as catalog order.
func ParseCatalog(data []byte) (*types.CareerCatalog, error) {
	if err := validate("career_catalog.schema.json",
		gojsonschema.NewBytesLoader(catalogschema.CatalogSchema),
		gojsonschema.NewBytesLoader(data)); err != nil {
		return nil, err
	}

	var catalog types.CareerCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[string]int, len(catalog.Careers))
	var dupes []FieldError
	for i := range catalog.Careers {
		c := &catalog.Careers[i]
		c.Name = strings.TrimSpace(c.Name)
		c.Category = strings.TrimSpace(c.Category)
		if first, ok := seen[c.Name]; ok {
			dupes = append(dupes, FieldError{
				Field:   fmt.Sprintf("careers.%d.careerName", i),
				Message: fmt.Sprintf("duplicate of careers.%d (%q)", first, c.Name),
			})
			continue
		}
		seen[c.Name] = i
	}
	if len(dupes) > 0 {
		return nil, &ValidationError{Errors: dupes}
	}
	return &catalog, nil
}

// LoadCatalog reads and parses a catalog file. An empty path returns the
// default catalog.
func LoadCatalog(path string) (*types.CareerCatalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog, nil
}

// DefaultCatalog returns the built-in ten-career catalog
func DefaultCatalog() (*types.CareerCatalog, error) {
	return ParseCatalog(catalogschema.DefaultCatalog)
}
