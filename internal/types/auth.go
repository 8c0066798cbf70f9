package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateUserRequest represents the request to create a new user with password authentication.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user profile for API responses (avoids import cycle with db package).
type User struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	Education        string    `json:"education"`
	Skills           []string  `json:"skills"`
	Interests        []string  `json:"interests"`
	ProfileCompleted bool      `json:"profileCompleted"`
	PasswordSet      bool      `json:"password_set"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Profile returns the skills and interests the matching engine reads.
func (u *User) Profile() UserProfile {
	return UserProfile{Skills: u.Skills, Interests: u.Interests}
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdatePasswordRequest represents a password update request.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// UpdateProfileRequest replaces the education, skills and interests of the caller.
type UpdateProfileRequest struct {
	Name      string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Education string   `json:"education" validate:"max=500"`
	Skills    []string `json:"skills" validate:"max=100,dive,required,max=100"`
	Interests []string `json:"interests" validate:"max=50,dive,required,max=100"`
}

// ProfileCompleted reports whether a profile has enough data for personalised guidance.
func ProfileCompleted(education string, skills, interests []string) bool {
	return education != "" && len(skills) > 0 && len(interests) > 0
}

// Validate validates the CreateUserRequest using the validator.
func (r *CreateUserRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdatePasswordRequest using the validator.
func (r *UpdatePasswordRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateProfileRequest using the validator.
func (r *UpdateProfileRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
