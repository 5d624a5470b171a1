package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vmunix/kinocat/internal/catalog"
)

// writeCatalogError maps catalog sentinels to HTTP responses.
func (s *Server) writeCatalogError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", what+" not found")
	case errors.Is(err, catalog.ErrDuplicate):
		writeError(w, http.StatusConflict, "DUPLICATE", what+" already exists")
	case errors.Is(err, catalog.ErrConstraint):
		writeError(w, http.StatusBadRequest, "CONSTRAINT", err.Error())
	default:
		s.logger.Error("catalog error", "error", err)
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
	}
}

func (s *Server) listFilms(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", err.Error())
		return
	}
	filter := catalog.FilmFilter{
		Title:         queryString(r, "title"),
		DistributedBy: queryString(r, "distributed_by"),
		Sort:          r.URL.Query().Get("sort"),
		Desc:          strings.EqualFold(r.URL.Query().Get("order"), "desc"),
		Limit:         limit,
		Offset:        offset,
	}
	if !catalog.ValidFilmSort(filter.Sort) {
		writeError(w, http.StatusBadRequest, "INVALID_SORT", "sort must be one of title, release_date, rating")
		return
	}

	films, total, err := s.deps.Catalog.ListFilms(r.Context(), filter)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}

	resp := listFilmsResponse{
		Items:  make([]filmResponse, len(films)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, f := range films {
		resp.Items[i] = filmToResponse(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) searchFilms(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "q is required")
		return
	}
	limit := min(max(queryInt(r, "limit", 10), 1), 100)

	matches, err := s.deps.Catalog.MatchTitles(r.Context(), q, limit)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}

	resp := searchFilmsResponse{Query: q, Items: make([]filmMatchResponse, len(matches))}
	for i, m := range matches {
		resp.Items[i] = filmMatchResponse{Film: filmToResponse(m.Film), Score: m.Score}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getFilm(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	f, err := s.deps.Catalog.GetFilm(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	writeJSON(w, http.StatusOK, filmToResponse(f))
}

func (s *Server) addFilm(w http.ResponseWriter, r *http.Request) {
	var req filmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()

	tx, err := s.deps.Catalog.Begin(ctx)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	defer func() { _ = tx.Rollback() }()

	f := &catalog.Film{}
	applyFilmRequest(f, &req)
	if err := tx.AddFilm(ctx, f); err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	if len(req.Actors) > 0 {
		if err := tx.SetFilmActors(ctx, f.UUID, req.Actors); err != nil {
			s.writeActorLinkError(w, err)
			return
		}
	}
	created, err := tx.GetFilm(ctx, f.UUID)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	if err := tx.Commit(); err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}

	s.logger.Info("film added", "uuid", created.UUID, "title", created.Title, "user", userName(r))
	writeJSON(w, http.StatusCreated, filmToResponse(created))
}

func (s *Server) updateFilm(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	var req filmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()

	tx, err := s.deps.Catalog.Begin(ctx)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	defer func() { _ = tx.Rollback() }()

	f, err := tx.GetFilm(ctx, id)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	applyFilmRequest(f, &req)
	if err := tx.UpdateFilm(ctx, f); err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	// A PUT without actors keeps the current cast.
	if req.Actors != nil {
		if err := tx.SetFilmActors(ctx, id, req.Actors); err != nil {
			s.writeActorLinkError(w, err)
			return
		}
	}
	updated, err := tx.GetFilm(ctx, id)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	if err := tx.Commit(); err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	writeJSON(w, http.StatusOK, filmToResponse(updated))
}

func (s *Server) patchFilm(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	var req filmPatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := s.deps.Catalog.GetFilm(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}

	if req.Title != nil {
		f.Title = *req.Title
	}
	if req.ReleaseDate != nil {
		f.ReleaseDate = parseDate(*req.ReleaseDate)
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.DistributedBy != nil {
		f.DistributedBy = *req.DistributedBy
	}
	if req.Length != nil {
		f.Length = *req.Length
	}
	if req.Rating != nil {
		f.Rating = *req.Rating
	}

	if err := s.deps.Catalog.UpdateFilm(r.Context(), f); err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	writeJSON(w, http.StatusOK, filmToResponse(f))
}

func (s *Server) deleteFilm(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if err := s.deps.Catalog.DeleteFilm(r.Context(), id); err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	s.logger.Info("film deleted", "uuid", id, "user", userName(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setFilmActors(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	var req setActorsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := s.deps.Catalog.GetFilm(r.Context(), id); err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	if err := s.deps.Catalog.SetFilmActors(r.Context(), id, req.Actors); err != nil {
		s.writeActorLinkError(w, err)
		return
	}
	f, err := s.deps.Catalog.GetFilm(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, err, "Film")
		return
	}
	writeJSON(w, http.StatusOK, filmToResponse(f))
}

// writeActorLinkError reports an unknown actor in a cast list as a bad request.
func (s *Server) writeActorLinkError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "UNKNOWN_ACTOR", err.Error())
		return
	}
	s.writeCatalogError(w, err, "Film")
}

func applyFilmRequest(f *catalog.Film, req *filmRequest) {
	f.Title = req.Title
	f.ReleaseDate = parseDate(req.ReleaseDate)
	f.Description = req.Description
	f.DistributedBy = req.DistributedBy
	f.Length = req.Length
	f.Rating = req.Rating
}
