package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/career-guidance/internal/metrics"
	"github.com/jonathan/career-guidance/internal/types"
)

// ErrDuplicateCareer is returned by ReplaceCatalog when two entries share a name
var ErrDuplicateCareer = errors.New("duplicate career name")

const careerColumns = `id, name, description, category, required_skills, resources,
	average_salary, job_outlook, created_at`

func scanCareer(row pgx.Row) (*types.Career, error) {
	var (
		c         types.Career
		skills    StringArray
		resources ResourceList
	)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &skills, &resources,
		&c.AverageSalary, &c.JobOutlook, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.RequiredSkills = nonNil(skills)
	c.Resources = resources
	if c.Resources == nil {
		c.Resources = []types.LearningResource{}
	}
	return &c, nil
}

// ListCareers returns the catalog in its stable order: position, then
// creation time, then ID. The matching engine breaks score ties by this order.
func (db *DB) ListCareers(ctx context.Context, filter types.CareerFilter) ([]types.Career, error) {
	start := time.Now()

	query := `SELECT ` + careerColumns + ` FROM careers WHERE 1=1`
	args := []any{}
	argNum := 1

	if c := strings.TrimSpace(filter.Category); c != "" {
		query += fmt.Sprintf(" AND LOWER(category) = LOWER($%d)", argNum)
		args = append(args, c)
		argNum++
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+escapeLike(s)+"%")
	}
	query += " ORDER BY position ASC, created_at ASC, id ASC"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		observe("list_careers", start, err)
		return nil, fmt.Errorf("failed to list careers: %w", err)
	}
	defer rows.Close()

	careers := []types.Career{}
	for rows.Next() {
		c, err := scanCareer(rows)
		if err != nil {
			observe("list_careers", start, err)
			return nil, fmt.Errorf("failed to scan career: %w", err)
		}
		careers = append(careers, *c)
	}
	if err := rows.Err(); err != nil {
		observe("list_careers", start, err)
		return nil, fmt.Errorf("failed to list careers: %w", err)
	}

	observe("list_careers", start, nil)
	if filter == (types.CareerFilter{}) {
		metrics.CatalogSize.Set(float64(len(careers)))
	}
	return careers, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GetCareer retrieves a career by ID. Returns nil, nil when not found.
func (db *DB) GetCareer(ctx context.Context, id uuid.UUID) (*types.Career, error) {
	c, err := scanCareer(db.pool.QueryRow(ctx,
		`SELECT `+careerColumns+` FROM careers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get career: %w", err)
	}
	return c, nil
}

// GetCareerByName retrieves a career by its exact name. Returns nil, nil when not found.
func (db *DB) GetCareerByName(ctx context.Context, name string) (*types.Career, error) {
	c, err := scanCareer(db.pool.QueryRow(ctx,
		`SELECT `+careerColumns+` FROM careers WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get career %q: %w", name, err)
	}
	return c, nil
}

// UpsertCareer inserts a career or updates the one with the same name. New
// careers are appended to the end of the catalog order.
func (db *DB) UpsertCareer(ctx context.Context, c *types.Career) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO careers (name, description, category, required_skills, resources,
		                      average_salary, job_outlook, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, (SELECT COALESCE(MAX(position), -1) + 1 FROM careers))
		 ON CONFLICT (name) DO UPDATE SET
		     description = EXCLUDED.description,
		     category = EXCLUDED.category,
		     required_skills = EXCLUDED.required_skills,
		     resources = EXCLUDED.resources,
		     average_salary = EXCLUDED.average_salary,
		     job_outlook = EXCLUDED.job_outlook
		 RETURNING id`,
		c.Name, c.Description, c.Category, StringArray(c.RequiredSkills), ResourceList(c.Resources),
		c.AverageSalary, c.JobOutlook,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert career %q: %w", c.Name, err)
	}
	return id, nil
}

// DeleteCareer deletes a career by ID
func (db *DB) DeleteCareer(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM careers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete career: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("career not found: %s", id)
	}
	return nil
}

// ReplaceCatalog atomically swaps the whole catalog for the given careers,
// which keep their slice order as catalog order.
func (db *DB) ReplaceCatalog(ctx context.Context, careers []types.Career) error {
	seen := make(map[string]bool, len(careers))
	for _, c := range careers {
		if seen[c.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateCareer, c.Name)
		}
		seen[c.Name] = true
	}

	start := time.Now()
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM careers`); err != nil {
			return fmt.Errorf("failed to clear careers: %w", err)
		}
		batch := &pgx.Batch{}
		for i, c := range careers {
			batch.Queue(
				`INSERT INTO careers (name, description, category, required_skills, resources,
				                      average_salary, job_outlook, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				c.Name, c.Description, c.Category, StringArray(c.RequiredSkills), ResourceList(c.Resources),
				c.AverageSalary, c.JobOutlook, i,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert careers: %w", err)
		}
		return nil
	})
	observe("replace_catalog", start, err)
	if err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	metrics.CatalogSize.Set(float64(len(careers)))
	return nil
}

// ListCategories returns the distinct career categories in alphabetical order
func (db *DB) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT category FROM careers WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
