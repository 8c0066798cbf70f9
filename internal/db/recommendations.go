package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/career-guidance/internal/types"
)

// recommendationPayload is the JSONB body of a stored recommendation
type recommendationPayload struct {
	SuggestedCareers []types.SuggestedCareer  `json:"suggestedCareers"`
	MissingSkills    []types.MissingSkill     `json:"missingSkills"`
	LearningPath     []types.LearningPathItem `json:"learningPath"`
}

// SaveRecommendation stores a computed recommendation for rec.UserID and
// fills in its ID and CreatedAt.
func (db *DB) SaveRecommendation(ctx context.Context, rec *types.Recommendation) error {
	payload, err := json.Marshal(recommendationPayload{
		SuggestedCareers: rec.SuggestedCareers,
		MissingSkills:    rec.MissingSkills,
		LearningPath:     rec.LearningPath,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}

	start := time.Now()
	err = db.pool.QueryRow(ctx,
		`INSERT INTO recommendations (user_id, payload) VALUES ($1, $2) RETURNING id, created_at`,
		rec.UserID, payload,
	).Scan(&rec.ID, &rec.CreatedAt)
	observe("save_recommendation", start, err)
	if err != nil {
		return fmt.Errorf("failed to save recommendation: %w", err)
	}
	return nil
}

// LatestRecommendation returns the newest recommendation for the user created
// after since. Returns nil, nil when there is none.
func (db *DB) LatestRecommendation(ctx context.Context, userID uuid.UUID, since time.Time) (*types.Recommendation, error) {
	start := time.Now()
	var (
		rec     types.Recommendation
		payload []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, payload, created_at FROM recommendations
		 WHERE user_id = $1 AND created_at > $2
		 ORDER BY created_at DESC LIMIT 1`,
		userID, since,
	).Scan(&rec.ID, &rec.UserID, &payload, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			observe("latest_recommendation", start, nil)
			return nil, nil
		}
		observe("latest_recommendation", start, err)
		return nil, fmt.Errorf("failed to get latest recommendation: %w", err)
	}
	observe("latest_recommendation", start, nil)

	var p recommendationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode recommendation %s: %w", rec.ID, err)
	}
	rec.SuggestedCareers = p.SuggestedCareers
	rec.MissingSkills = p.MissingSkills
	rec.LearningPath = p.LearningPath
	return &rec, nil
}

// DeleteRecommendations removes every stored recommendation for the user
func (db *DB) DeleteRecommendations(ctx context.Context, userID uuid.UUID) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM recommendations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete recommendations: %w", err)
	}
	return nil
}
