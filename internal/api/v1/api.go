// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds API server configuration.
type Config struct {
	Version string
}

// Server is the v1 API server.
type Server struct {
	deps   ServerDeps
	cfg    Config
	logger *slog.Logger
}

// New creates a new v1 API server with validated dependencies.
func New(deps ServerDeps, cfg Config) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{deps: deps, cfg: cfg, logger: logger.With("component", "api")}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	token := s.deps.Auth.TokenRequired
	admin := s.deps.Auth.AdminRequired

	// Home
	mux.HandleFunc("GET /{$}", s.requireCounter(s.home))
	mux.HandleFunc("GET /smoke", s.smoke)

	// Auth
	mux.HandleFunc("POST /api/v1/register", s.register)
	mux.HandleFunc("GET /api/v1/login", s.login)

	// Films
	mux.HandleFunc("GET /api/v1/films", s.listFilms)
	mux.HandleFunc("GET /api/v1/films/search", s.searchFilms)
	mux.HandleFunc("GET /api/v1/films/{uuid}", s.getFilm)
	mux.HandleFunc("POST /api/v1/films", token(s.addFilm))
	mux.HandleFunc("PUT /api/v1/films/{uuid}", token(s.updateFilm))
	mux.HandleFunc("PATCH /api/v1/films/{uuid}", token(s.patchFilm))
	mux.HandleFunc("DELETE /api/v1/films/{uuid}", admin(s.deleteFilm))
	mux.HandleFunc("PUT /api/v1/films/{uuid}/actors", token(s.setFilmActors))

	// Actors
	mux.HandleFunc("GET /api/v1/actors", s.listActors)
	mux.HandleFunc("GET /api/v1/actors/{uuid}", s.getActor)
	mux.HandleFunc("GET /api/v1/actors/{uuid}/films", s.listActorFilms)
	mux.HandleFunc("POST /api/v1/actors", token(s.addActor))
	mux.HandleFunc("PUT /api/v1/actors/{uuid}", token(s.updateActor))
	mux.HandleFunc("PATCH /api/v1/actors/{uuid}", token(s.patchActor))
	mux.HandleFunc("DELETE /api/v1/actors/{uuid}", admin(s.deleteActor))

	// Populate
	mux.HandleFunc("GET /api/v1/populate/{strategy}", admin(s.requirePopulator(s.populate)))
	mux.HandleFunc("GET /populate_db", admin(s.requirePopulator(s.populateWith("sequential"))))
	mux.HandleFunc("GET /populate_db_threaded", admin(s.requirePopulator(s.populateWith("threaded"))))
	mux.HandleFunc("GET /populate_db_executor", admin(s.requirePopulator(s.populateWith("executor"))))

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
	mux.HandleFunc("GET /api/v1/events", s.requireEventLog(s.listEvents))
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeBody reads a JSON request body into dst and validates it.
// It writes the error response itself and reports whether dst is usable.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return false
	}
	if err := validateStruct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}
	return true
}

// pathUUID extracts a UUID path parameter.
func pathUUID(r *http.Request) (string, error) {
	id := r.PathValue("uuid")
	if err := validateVar(id, "required,uuid"); err != nil {
		return "", fmt.Errorf("invalid uuid %q", id)
	}
	return id, nil
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryString extracts an optional string from query string.
func queryString(r *http.Request, name string) *string {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil
	}
	return &val
}

const maxLimit = 1000

// pagination reads limit and offset, capping limit at maxLimit.
func pagination(r *http.Request) (limit, offset int, err error) {
	limit = queryInt(r, "limit", 50)
	offset = queryInt(r, "offset", 0)
	if limit < 0 || offset < 0 {
		return 0, 0, fmt.Errorf("limit and offset must be non-negative")
	}
	switch {
	case limit == 0:
		limit = 50
	case limit > maxLimit:
		limit = maxLimit
	}
	return limit, offset, nil
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	count, err := s.deps.Counter.Incr(r.Context(), "hits")
	if err != nil {
		s.logger.Error("hit counter failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "COUNTER_UNAVAILABLE", "hit counter unavailable")
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{
		Message: fmt.Sprintf("Hello World! I have been seen %d times.", count),
		Hits:    count,
	})
}

func (s *Server) smoke(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "OK"})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: "ok", Version: s.cfg.Version}
	if err := s.deps.Catalog.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	n, err := s.deps.Catalog.CountFilms(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	resp.Films = n
	resp.Database = "ok"
	writeJSON(w, http.StatusOK, resp)
}
