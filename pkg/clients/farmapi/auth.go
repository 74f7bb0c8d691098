package farmapi

import (
	"context"

	"github.com/mamadbah2/farmdash/internal/domain/models"
)

// Login exchanges credentials for a session token and the user record.
func (c *APIClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	result := new(models.AuthResponse)
	if err := c.post(ctx, c.endpoints.Login, models.Credentials{Email: email, Password: password}, result); err != nil {
		return nil, err
	}
	if result.AccessToken() == "" {
		return nil, ErrMissingToken
	}
	return result, nil
}

// Register creates an account and returns its first session token.
func (c *APIClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	result := new(models.AuthResponse)
	if err := c.post(ctx, c.endpoints.Register, req, result); err != nil {
		return nil, err
	}
	if result.AccessToken() == "" {
		return nil, ErrMissingToken
	}
	return result, nil
}

// Refresh trades a refresh token for a new access token.
func (c *APIClient) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if c.endpoints.Refresh == "" {
		return nil, ErrRefreshUnsupported
	}

	result := new(models.TokenPair)
	if err := c.post(ctx, c.endpoints.Refresh, map[string]string{"refresh": refreshToken}, result); err != nil {
		return nil, err
	}
	if result.Access == "" {
		return nil, ErrMissingToken
	}
	return result, nil
}

// Logout tells the backend the session ends. Callers treat failures as advisory.
func (c *APIClient) Logout(ctx context.Context) error {
	return c.post(ctx, c.endpoints.Logout, nil, nil)
}

// Profile returns the user owning the current token.
func (c *APIClient) Profile(ctx context.Context) (*models.User, error) {
	user := new(models.User)
	if err := c.get(ctx, c.endpoints.Profile, user); err != nil {
		return nil, err
	}
	return user, nil
}
