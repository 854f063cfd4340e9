package models

import "github.com/golang-jwt/jwt/v5"

// ClerkClaims represents the JWT claims issued by Clerk session tokens.
// See: https://clerk.com/docs/backend-requests/resources/session-tokens
type ClerkClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	SessionID            string `json:"sid"`
	AuthorizedParty      string `json:"azp"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *ClerkClaims) GetUserID() string {
	return c.Subject
}
