// Package types provides type definitions for structured data used throughout the career guidance system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// LearningResource is a course, video or document that teaches a skill.
type LearningResource struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Type          string `json:"type"`
	EstimatedTime string `json:"estimatedTime,omitempty"`
}

// Resource type values used by the catalog
const (
	ResourceTypeCourse        = "course"
	ResourceTypeVideo         = "video"
	ResourceTypeDocumentation = "documentation"
	ResourceTypeBook          = "book"
	ResourceTypeArticle       = "article"
)

// Career is one catalog entry. RequiredSkills keeps its declared order.
type Career struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"careerName"`
	Description    string             `json:"description"`
	Category       string             `json:"category"`
	RequiredSkills []string           `json:"requiredSkills"`
	Resources      []LearningResource `json:"resources"`
	AverageSalary  string             `json:"averageSalary,omitempty"`
	JobOutlook     string             `json:"jobOutlook,omitempty"`
	CreatedAt      time.Time          `json:"createdAt,omitempty"`
}

// CareerCatalog is the file format used to seed the catalog
type CareerCatalog struct {
	Careers []Career `json:"careers"`
}

// CareerFilter narrows a catalog listing
type CareerFilter struct {
	Category string
	Search   string
}
