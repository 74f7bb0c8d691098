// Package tokenstore persists the session credentials between requests and
// process restarts.
package tokenstore

// Key names a stored credential.
type Key string

const (
	// KeyAuthToken holds the access token sent with every request.
	KeyAuthToken Key = "auth_token"
	// KeyRefreshToken holds the optional refresh token.
	KeyRefreshToken Key = "refresh_token"
)

// Store keeps credentials. Get returns "" for a missing key.
type Store interface {
	Get(key Key) (string, error)
	Set(key Key, value string) error
	Delete(key Key) error
	Clear() error
}
