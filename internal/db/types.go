package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-guidance/internal/types"
)

// User represents a stored account and its career profile
type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	Education    string      `json:"education"`
	Skills       StringArray `json:"skills"`
	Interests    StringArray `json:"interests"`
	PasswordHash string      `json:"-" db:"password_hash"`
	PasswordSet  bool        `json:"password_set" db:"password_set"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ToTypes converts the row to its API shape, dropping the password hash
func (u *User) ToTypes() *types.User {
	if u == nil {
		return nil
	}
	return &types.User{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Phone:            u.Phone,
		Education:        u.Education,
		Skills:           nonNil(u.Skills),
		Interests:        nonNil(u.Interests),
		ProfileCompleted: types.ProfileCompleted(u.Education, u.Skills, u.Interests),
		PasswordSet:      u.PasswordSet,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func nonNil(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = []string{}
		return nil
	}
	source, err := jsonBytes(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(source, a)
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// ResourceList handles the JSONB resources column of a career
type ResourceList []types.LearningResource

// Scan implements the Scanner interface for ResourceList
func (r *ResourceList) Scan(src interface{}) error {
	if src == nil {
		*r = ResourceList{}
		return nil
	}
	source, err := jsonBytes(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(source, r)
}

// Value implements the Valuer interface for ResourceList
func (r ResourceList) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// jsonBytes accepts the text and binary forms the driver may hand to Scan
func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("type assertion .([]byte) failed")
	}
}
