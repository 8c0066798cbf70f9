package types

import (
	"time"

	"github.com/google/uuid"
)

// Priority tiers for missing skills
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// UserProfile is the part of a user the matching engine reads.
type UserProfile struct {
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
}

// MatchResult is the score of one career for one user.
type MatchResult struct {
	CareerName      string `json:"careerName"`
	Score           int    `json:"score"`
	MatchingSkills  int    `json:"matchingSkills"`
	InterestAligned bool   `json:"interestAligned"`
}

// SuggestedCareer is a ranked career in a recommendation.
type SuggestedCareer struct {
	CareerID   uuid.UUID `json:"careerId,omitempty"`
	CareerName string    `json:"careerName"`
	MatchScore int       `json:"matchScore"`
	Reason     string    `json:"reason"`
}

// MissingSkill is a skill required by a top career that the user lacks.
type MissingSkill struct {
	Skill          string   `json:"skill"`
	Priority       Priority `json:"priority"`
	RelatedCareers []string `json:"relatedCareers"`
}

// LearningPathItem pairs a missing skill with resources to learn it.
type LearningPathItem struct {
	Skill     string             `json:"skill"`
	Resources []LearningResource `json:"resources"`
}

// Recommendation is the full result of one recommendation pass.
type Recommendation struct {
	ID               uuid.UUID          `json:"id,omitempty"`
	UserID           uuid.UUID          `json:"userId,omitempty"`
	SuggestedCareers []SuggestedCareer  `json:"suggestedCareers"`
	MissingSkills    []MissingSkill     `json:"missingSkills"`
	LearningPath     []LearningPathItem `json:"learningPath"`
	CreatedAt        time.Time          `json:"timestamp,omitempty"`
}

// SkillGapReport compares a user's skills against one career.
type SkillGapReport struct {
	Career          string             `json:"career"`
	MatchPercentage int                `json:"matchPercentage"`
	TotalRequired   int                `json:"totalRequired"`
	MatchingSkills  []string           `json:"matchingSkills"`
	MissingSkills   []string           `json:"missingSkills"`
	Resources       []LearningResource `json:"resources"`
}

// SkillGapRequest is the body of a skill gap request.
type SkillGapRequest struct {
	CareerName string `json:"careerName" validate:"required,min=1"`
}

// ChatRequest is the body of a counselor chat request.
type ChatRequest struct {
	Message             string        `json:"message" validate:"required,min=1,max=2000"`
	ConversationHistory []ChatMessage `json:"conversationHistory,omitempty" validate:"omitempty,max=50,dive"`
}

// ChatMessage is one prior turn sent along with a chat request.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// ChatResponse is the counselor's reply.
type ChatResponse struct {
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}
