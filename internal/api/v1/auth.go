package v1

import (
	"errors"
	"net/http"

	"github.com/vmunix/kinocat/internal/auth"
)

// userName returns the authenticated username for log lines.
func userName(r *http.Request) string {
	if u, ok := auth.UserFromContext(r.Context()); ok {
		return u.Username
	}
	return ""
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := s.deps.Users.Register(r.Context(), req.Username, req.Email, req.Password, false)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeError(w, http.StatusConflict, "USER_EXISTS", "User exists")
			return
		}
		s.logger.Error("register failed", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	s.logger.Info("user registered", "username", u.Username, "uuid", u.UUID)
	writeJSON(w, http.StatusCreated, userResponse{
		UUID:      u.UUID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}

// login exchanges HTTP Basic credentials for a token.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		auth.Challenge(w, "CREDENTIALS_MISSING", "basic credentials required")
		return
	}

	token, expires, err := s.deps.Auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn("login rejected", "username", username)
			auth.Challenge(w, "INVALID_CREDENTIALS", "invalid username or password")
			return
		}
		s.logger.Error("login failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}
