package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/authn"
	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/keyfetcher"
)

const (
	defaultTokenTTL = time.Hour

	invalidCredentialsCode    = "invalid_credentials"
	invalidCredentialsMessage = "Invalid email or password"
)

type UserCreator interface {
	CreateUser(ctx context.Context, user *domain.User) error
}

// TokenConfig controls the claims of issued access tokens
type TokenConfig struct {
	Issuer   string
	Audience string
	TTL      time.Duration
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// AuthHandler registers users and exchanges credentials for RS256 access tokens.
type AuthHandler struct {
	users             UserCreator
	authenticator     authn.Authenticator
	privateKeyFetcher keyfetcher.PrivateKeyFetcher
	tokens            TokenConfig
	now               func() time.Time
	logger            *slog.Logger
}

func NewAuthHandler(
	users UserCreator,
	authenticator authn.Authenticator,
	privateKeyFetcher keyfetcher.PrivateKeyFetcher,
	tokens TokenConfig,
	logger *slog.Logger,
) *AuthHandler {
	if tokens.TTL <= 0 {
		tokens.TTL = defaultTokenTTL
	}

	return &AuthHandler{
		users:             users,
		authenticator:     authenticator,
		privateKeyFetcher: privateKeyFetcher,
		tokens:            tokens,
		now:               time.Now,
		logger:            logger,
	}
}

// SignUp handles POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := h.now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Email:     authn.NormalizeEmail(req.Email),
		Name:      req.Name,
		Roles:     []string{domain.RoleAgent},
		CreatedAt: now,
		UpdatedAt: now,
	}

	fields := make(map[string]string)
	var validationErr *domain.ValidationError
	if err := user.Validate(); errors.As(err, &validationErr) {
		for k, v := range validationErr.Fields {
			fields[k] = v
		}
	}
	if err := domain.ValidatePassword(req.Password); errors.As(err, &validationErr) {
		for k, v := range validationErr.Fields {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		response.ValidationErrorResponse(w, fields)
		return
	}

	hash, err := authn.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, h.logger, "failed to hash password", err)
		return
	}
	user.PasswordHash = hash

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		writeError(w, r, h.logger, "failed to create user", err)
		return
	}

	h.logger.InfoContext(r.Context(), "user_signed_up", "user_id", user.ID)
	h.respondWithToken(w, r, http.StatusCreated, user)
}

// SignIn handles POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authn.ErrInvalidCredentials) {
			h.logger.WarnContext(r.Context(), "sign_in_failed", "email", authn.NormalizeEmail(req.Email))
			response.JSONErrorResponse(w, http.StatusUnauthorized, invalidCredentialsCode, invalidCredentialsMessage)
			return
		}
		writeError(w, r, h.logger, "failed to authenticate user", err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, expiresAt, err := h.generateJWT(user.ID)
	if err != nil {
		writeError(w, r, h.logger, "failed to generate JWT", err)
		return
	}

	response.JSONResponse(w, status, AuthResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// generateJWT signs an RS256 token whose subject is the user id.
func (h *AuthHandler) generateJWT(userID uuid.UUID) (string, time.Time, error) {
	now := h.now()
	expiresAt := now.Add(h.tokens.TTL)

	token := jwt.NewWithClaims(
		jwt.SigningMethodRS256,
		jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    h.tokens.Issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{h.tokens.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	)

	privateKey, err := h.privateKeyFetcher.FetchPrivateKey()
	if err != nil {
		return "", time.Time{}, err
	}

	signed, err := token.SignedString(privateKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt.UTC(), nil
}
