// Package common contains shared constants and sentinel errors used across
// the social feed client components.
package common

const (
	// AuthorizationHeaderName carries the composite access/refresh token value
	// on outbound API requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName carries a per-request correlation id.
	RequestIDHeaderName = "X-Request-Id"

	// TokenPrefix precedes each token inside the composite authorization value.
	TokenPrefix = "token="
)

// Storage keys of the persisted session state.
const (
	TokenKey        = "social_media_token"
	RefreshTokenKey = "social_media_refresh_token"
	UserKey         = "@social_media_user"
)
