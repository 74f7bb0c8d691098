package models

import (
	"encoding/json"
	"strings"
)

// User is the authenticated account as returned by the backend.
type User struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Role      string          `json:"role"`
	Farm      json.RawMessage `json:"farm,omitempty"`
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
}

// AuthResponse covers both login/register response shapes seen in the wild:
// {user, token} and {user, access, refresh}.
type AuthResponse struct {
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
	Message string `json:"message,omitempty"`
}

// AccessToken returns the session credential, preferring access over token.
func (r AuthResponse) AccessToken() string {
	if r.Access != "" {
		return r.Access
	}
	return r.Token
}

// TokenPair is the refresh endpoint response.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}
