//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendation_WireNames(t *testing.T) {
	rec := Recommendation{
		SuggestedCareers: []SuggestedCareer{{CareerName: "Data Scientist", MatchScore: 72, Reason: "Matches 3 of your skills"}},
		MissingSkills:    []MissingSkill{{Skill: "Statistics", Priority: PriorityLow, RelatedCareers: []string{"Data Scientist"}}},
		LearningPath: []LearningPathItem{{
			Skill:     "Statistics",
			Resources: []LearningResource{{Title: "Stats 101", URL: "https://example.com", Type: ResourceTypeCourse, EstimatedTime: "2-3 months"}},
		}},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	s := string(data)

	for _, key := range []string{`"suggestedCareers"`, `"matchScore"`, `"missingSkills"`, `"relatedCareers"`, `"learningPath"`, `"estimatedTime"`, `"careerName"`} {
		assert.Contains(t, s, key)
	}
	assert.Contains(t, s, `"priority":"low"`)
}

func TestCareer_WireNames(t *testing.T) {
	data, err := json.Marshal(Career{Name: "DevOps Engineer", RequiredSkills: []string{"Docker"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"careerName":"DevOps Engineer"`)
	assert.Contains(t, string(data), `"requiredSkills":["Docker"]`)

	var c Career
	require.NoError(t, json.Unmarshal([]byte(`{"careerName":"UI/UX Designer","category":"Design","requiredSkills":["Figma"]}`), &c))
	assert.Equal(t, "UI/UX Designer", c.Name)
	assert.Equal(t, "Design", c.Category)
}

func TestChatRequest_Validation(t *testing.T) {
	validate := validator.New()

	v := ChatRequest{Message: "how do I switch careers?"}
	require.NoError(t, validate.Struct(v))

	v.Message = ""
	require.Error(t, validate.Struct(v))

	v = ChatRequest{Message: "hi", ConversationHistory: []ChatMessage{{Role: "system", Content: "x"}}}
	require.Error(t, validate.Struct(v))
}
