package v1

import (
	"net/http"
	"strconv"

	"github.com/vmunix/kinocat/internal/catalog"
)

func (s *Server) listActors(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", err.Error())
		return
	}
	filter := catalog.ActorFilter{
		Name:   queryString(r, "name"),
		Limit:  limit,
		Offset: offset,
	}
	if v := queryString(r, "is_active"); v != nil {
		active, err := strconv.ParseBool(*v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FILTER", "is_active must be true or false")
			return
		}
		filter.IsActive = &active
	}

	actors, total, err := s.deps.Catalog.ListActors(r.Context(), filter)
	if err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}

	resp := listActorsResponse{
		Items:  make([]actorResponse, len(actors)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, a := range actors {
		resp.Items[i] = actorToResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getActor(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	a, err := s.deps.Catalog.GetActor(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}
	writeJSON(w, http.StatusOK, actorToResponse(a))
}

func (s *Server) listActorFilms(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if _, err := s.deps.Catalog.GetActor(r.Context(), id); err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}
	films, err := s.deps.Catalog.ActorFilms(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}

	resp := listFilmsResponse{
		Items: make([]filmResponse, len(films)),
		Total: len(films),
		Limit: len(films),
	}
	for i, f := range films {
		resp.Items[i] = filmToResponse(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) addActor(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a := &catalog.Actor{Name: req.Name, IsActive: true}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if req.Birthday != nil {
		b := parseDate(*req.Birthday)
		a.Birthday = &b
	}

	if err := s.deps.Catalog.AddActor(r.Context(), a); err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}
	s.logger.Info("actor added", "uuid", a.UUID, "name", a.Name, "user", userName(r))
	writeJSON(w, http.StatusCreated, actorToResponse(a))
}

func (s *Server) updateActor(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	var req actorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := s.deps.Catalog.GetActor(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}
	a.Name = req.Name
	a.Birthday = nil
	if req.Birthday != nil {
		b := parseDate(*req.Birthday)
		a.Birthday = &b
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	if err := s.deps.Catalog.UpdateActor(r.Context(), a); err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}
	writeJSON(w, http.StatusOK, actorToResponse(a))
}

func (s *Server) patchActor(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	var req actorPatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := s.deps.Catalog.GetActor(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Birthday != nil {
		b := parseDate(*req.Birthday)
		a.Birthday = &b
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	if err := s.deps.Catalog.UpdateActor(r.Context(), a); err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}
	writeJSON(w, http.StatusOK, actorToResponse(a))
}

func (s *Server) deleteActor(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if err := s.deps.Catalog.DeleteActor(r.Context(), id); err != nil {
		s.writeCatalogError(w, err, "Actor")
		return
	}
	s.logger.Info("actor deleted", "uuid", id, "user", userName(r))
	w.WriteHeader(http.StatusNoContent)
}
