package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// SessionVerifier implements JWTVerifier for platform session tokens.
// Tokens are HS256-signed with the app secret, or verified against a JWKS
// endpoint when one is configured.
type SessionVerifier struct {
	keyFunc jwt.Keyfunc
	methods []string
	apiKey  string
	logger  *slog.Logger
}

// NewSecretVerifier creates a verifier for HS256 tokens signed with the app secret.
// apiKey, when set, must match the token audience.
func NewSecretVerifier(secret, apiKey string, logger *slog.Logger) (JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("app API secret cannot be empty")
	}

	logger.Info("session verifier initialized", "mode", "secret")

	return &SessionVerifier{
		keyFunc: func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
		methods: []string{"HS256"},
		apiKey:  apiKey,
		logger:  logger,
	}, nil
}

// NewJWKSVerifier creates a verifier that fetches public keys from a JWKS endpoint.
// The JWKS keys are cached and automatically refreshed based on HTTP cache headers.
func NewJWKSVerifier(jwksURL, apiKey string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("session verifier initialized", "mode", "jwks", "jwks_url", jwksURL)

	return &SessionVerifier{
		keyFunc: jwks.Keyfunc,
		methods: []string{"RS256", "ES256"},
		apiKey:  apiKey,
		logger:  logger,
	}, nil
}

// VerifyToken validates a session token and extracts its claims.
func (v *SessionVerifier) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	// WithValidMethods prevents algorithm confusion attacks
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, v.keyFunc,
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}

	if !token.Valid {
		v.logger.Debug("token is invalid after parsing")
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if v.apiKey != "" {
		aud, _ := claims.GetAudience()
		if !containsString(aud, v.apiKey) {
			v.logger.Warn("token audience mismatch", "audience", aud)
			return nil, domain.ErrUnauthorized
		}
	}

	if claims.GetShop() == "" {
		v.logger.Debug("token missing dest claim")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close releases resources held by the verifier.
// keyfunc v3 manages its own refresh goroutine, so this is a no-op.
func (v *SessionVerifier) Close() error {
	v.logger.Info("session verifier closed")
	return nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
