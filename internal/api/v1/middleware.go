package v1

import "net/http"

// requirePopulator wraps a handler and returns 503 if scraping is not configured.
func (s *Server) requirePopulator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Populator == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Scraper not configured")
			return
		}
		next(w, r)
	}
}

// requireCounter wraps a handler and returns 503 if the hit counter is not configured.
func (s *Server) requireCounter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Counter == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Hit counter not configured")
			return
		}
		next(w, r)
	}
}

// requireEventLog wraps a handler and returns 503 if no event log is attached.
func (s *Server) requireEventLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.EventLog == nil {
			writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
			return
		}
		next(w, r)
	}
}
