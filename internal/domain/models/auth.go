package models

import (
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims represents the session token the platform issues to an
// embedded app. The token is signed with the app's API secret.
type SessionClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Dest                 string `json:"dest"` // Shop admin origin, e.g. "https://acme.myshop.com"
	SessionID            string `json:"sid"`
}

// GetShop returns the shop host the token was issued for.
// Returns empty string when dest is missing or malformed.
func (c *SessionClaims) GetShop() string {
	if c.Dest == "" {
		return ""
	}
	u, err := url.Parse(c.Dest)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Host)
}
