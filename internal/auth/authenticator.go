package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// HeaderAPIKey carries the token on authenticated requests.
const HeaderAPIKey = "X-API-KEY"

const basicChallenge = `Basic realm="Authentication required"`

// UserLookup is the part of UserStore the middleware needs.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUUID(ctx context.Context, id string) (*User, error)
}

// Authenticator checks credentials and tokens against the user store.
type Authenticator struct {
	tokens *TokenManager
	users  UserLookup
	logger *slog.Logger
}

func NewAuthenticator(tokens *TokenManager, users UserLookup, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{tokens: tokens, users: users, logger: logger.With("component", "auth")}
}

// Login verifies a username and password and issues a token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	u, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", time.Time{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.tokens.Issue(u.UUID)
}

// Authenticate resolves the user a raw token belongs to.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*User, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}
	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	u, err := a.users.GetByUUID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	return u, err
}

type ctxKey struct{}

// UserFromContext returns the user stored by TokenRequired, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*User)
	return u, ok
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// TokenRequired rejects requests without a valid X-API-KEY token with 401.
func (a *Authenticator) TokenRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := a.Authenticate(r.Context(), r.Header.Get(HeaderAPIKey))
		if err != nil {
			a.reject(w, r, err)
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), u)))
	}
}

// AdminRequired is TokenRequired plus a 403 for non-admin users.
func (a *Authenticator) AdminRequired(next http.HandlerFunc) http.HandlerFunc {
	return a.TokenRequired(func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFromContext(r.Context())
		if u == nil || !u.IsAdmin {
			writeError(w, http.StatusForbidden, "FORBIDDEN", ErrForbidden.Error())
			return
		}
		next(w, r)
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingToken):
		Challenge(w, "TOKEN_MISSING", "a valid token is missing")
	case errors.Is(err, ErrTokenExpired):
		Challenge(w, "TOKEN_EXPIRED", "token has expired")
	case errors.Is(err, ErrInvalidToken):
		Challenge(w, "TOKEN_INVALID", "token is invalid")
	default:
		a.logger.Error("authenticate failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "authentication unavailable")
	}
}

// Challenge answers 401 with a Basic auth challenge.
func Challenge(w http.ResponseWriter, code, msg string) {
	w.Header().Set("WWW-Authenticate", basicChallenge)
	writeError(w, http.StatusUnauthorized, code, msg)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
