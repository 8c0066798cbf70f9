package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestCatalogSchema_ValidJSONSchema(t *testing.T) {
	var schemaObj map[string]interface{}
	require.NoError(t, json.Unmarshal(CatalogSchema, &schemaObj))

	_, hasSchema := schemaObj["$schema"]
	_, hasProps := schemaObj["properties"]
	assert.True(t, hasSchema && hasProps)

	_, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(CatalogSchema))
	assert.NoError(t, err)
}

func TestDefaultCatalog_MatchesSchema(t *testing.T) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(CatalogSchema),
		gojsonschema.NewBytesLoader(DefaultCatalog),
	)
	require.NoError(t, err)
	for _, e := range result.Errors() {
		t.Errorf("%s: %s", e.Field(), e.Description())
	}
	assert.True(t, result.Valid())
}

func TestDefaultCatalog_Contents(t *testing.T) {
	var doc struct {
		Careers []struct {
			Name           string   `json:"careerName"`
			RequiredSkills []string `json:"requiredSkills"`
		} `json:"careers"`
	}
	require.NoError(t, json.Unmarshal(DefaultCatalog, &doc))
	require.Len(t, doc.Careers, 10)
	assert.Equal(t, "Full Stack Developer", doc.Careers[0].Name)
	assert.Equal(t, "Frontend Developer", doc.Careers[9].Name)

	names := map[string]bool{}
	for _, c := range doc.Careers {
		assert.False(t, names[c.Name], "duplicate career %s", c.Name)
		names[c.Name] = true
		assert.NotEmpty(t, c.RequiredSkills, c.Name)
	}
}
