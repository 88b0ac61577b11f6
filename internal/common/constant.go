// Package common contains shared constants and helpers used across barbot
// components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer credential
	// on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token in the Authorization header value.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName correlates a client call with backend logs.
	RequestIDHeaderName = "X-Request-ID"

	// TokenStorageKey is the durable-storage key holding the access token.
	TokenStorageKey = "token"
)

// BearerValue formats token as an Authorization header value.
func BearerValue(token string) string {
	return BearerPrefix + token
}
