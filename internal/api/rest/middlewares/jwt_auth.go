package middlewares

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/keyfetcher"
)

type contextKey string

const (
	BearerPrefix                         = "bearer"
	DefaultClockSkewTolerance            = 5 * time.Minute
	UserIDContextKey          contextKey = "user_id"

	unauthorizedCode    = "unauthorized"
	unauthorizedMessage = "A valid bearer token is required"
)

// JWTAuthMiddleware validates RS256 bearer tokens and stores the subject in the request context
type JWTAuthMiddleware struct {
	keyFetcher keyfetcher.PublicKeyFetcher
	issuer     string
	audience   string
	clockSkew  time.Duration
	logger     *slog.Logger
}

// JWTConfig holds configuration for JWT authentication middleware
type JWTConfig struct {
	KeyFetcher keyfetcher.PublicKeyFetcher
	Issuer     string
	Audience   string
	ClockSkew  time.Duration // Optional: defaults to DefaultClockSkewTolerance
}

func NewJWTAuthMiddleware(config JWTConfig, logger *slog.Logger) *JWTAuthMiddleware {
	clockSkew := config.ClockSkew
	if clockSkew == 0 {
		clockSkew = DefaultClockSkewTolerance
	}

	return &JWTAuthMiddleware{
		keyFetcher: config.KeyFetcher,
		issuer:     config.Issuer,
		audience:   config.Audience,
		clockSkew:  clockSkew,
		logger:     logger,
	}
}

func (m *JWTAuthMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.validateJWTAndExtractUserID(r)
		if err != nil {
			m.logger.WarnContext(r.Context(), "token_rejected", "path", r.URL.Path, "error", err)
			response.JSONErrorResponse(w, http.StatusUnauthorized, unauthorizedCode, unauthorizedMessage)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateJWTAndExtractUserID validates the token and returns its subject
func (m *JWTAuthMiddleware) validateJWTAndExtractUserID(r *http.Request) (string, error) {
	tokenString, err := extractBearerToken(r)
	if err != nil {
		return "", err
	}

	key, err := m.keyFetcher.FetchPublicKey()
	if err != nil {
		return "", fmt.Errorf("failed to fetch public key: %w", err)
	}

	claims := new(jwt.RegisteredClaims)
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(_ *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(m.clockSkew),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	if claims.Subject == "" {
		return "", errors.New("missing subject claim")
	}

	return claims.Subject, nil
}

// extractBearerToken extracts JWT token from Authorization header
func extractBearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], BearerPrefix) || parts[1] == "" {
		return "", errors.New("invalid authorization format")
	}

	return parts[1], nil
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok
}

// WithUserID returns a copy of ctx carrying userID, as the middleware would set it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}
