package auth

import (
	"github.com/google/uuid"

	"github.com/shiptrack/shiptrack-backend/internal/users"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint. The
// identifier is usually an email address.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Principal is the authenticated identity returned by the gate.
type Principal struct {
	ID    uuid.UUID  `json:"id"`
	Email string     `json:"email"`
	Name  *string    `json:"name,omitempty"`
	Role  enums.Role `json:"role"`
}

// LoginResponse contains the issued tokens and the signed-in user.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         Principal `json:"user"`
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignupRequest is the account-creation payload. Profile fields beyond name,
// email and password are accepted but not stored.
type SignupRequest struct {
	Name             string  `json:"name" validate:"required"`
	Email            string  `json:"email" validate:"required"`
	Password         string  `json:"password" validate:"required"`
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	Country          *string `json:"country,omitempty"`
	Address          *string `json:"address,omitempty"`
	CountryCode      *string `json:"country_code,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	MarketingUpdates *bool   `json:"marketing_updates,omitempty"`
}

// SignupResponse describes the created account.
type SignupResponse struct {
	Message string         `json:"message"`
	User    *users.UserDTO `json:"user"`
}
