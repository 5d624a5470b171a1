package v1

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/vmunix/kinocat/internal/scrape"
	"github.com/vmunix/kinocat/pkg/kino"
)

func (s *Server) populate(w http.ResponseWriter, r *http.Request) {
	s.runPopulate(w, r, r.PathValue("strategy"))
}

// populateWith serves the fixed-strategy legacy routes.
func (s *Server) populateWith(strategy string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.runPopulate(w, r, strategy)
	}
}

func (s *Server) runPopulate(w http.ResponseWriter, r *http.Request, name string) {
	strategy, err := scrape.ParseStrategy(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_STRATEGY", err.Error())
		return
	}

	res, err := s.deps.Populator.Run(r.Context(), strategy)
	if err != nil {
		s.writePopulateError(w, err)
		return
	}

	seconds := math.Round(res.Elapsed.Seconds()*100) / 100
	writeJSON(w, http.StatusCreated, populateResponse{
		Message:        fmt.Sprintf("Database were populated with %d films in %.2f sec.", res.Created, seconds),
		Strategy:       res.Strategy,
		Found:          res.Found,
		Created:        res.Created,
		Failed:         res.Failed,
		ElapsedSeconds: seconds,
	})
}

func (s *Server) writePopulateError(w http.ResponseWriter, err error) {
	var fetchErr *scrape.FetchError
	var parseErr *kino.ParseError
	switch {
	case errors.As(err, &fetchErr):
		writeError(w, http.StatusBadGateway, "FETCH_FAILED", err.Error())
	case errors.As(err, &parseErr):
		writeError(w, http.StatusBadGateway, "PARSE_FAILED", err.Error())
	case errors.Is(err, scrape.ErrUnknownStrategy):
		writeError(w, http.StatusBadRequest, "INVALID_STRATEGY", err.Error())
	default:
		s.logger.Error("populate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "POPULATE_FAILED", err.Error())
	}
}
