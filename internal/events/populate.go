package events

// Event types emitted by the scrape orchestrator.
const (
	EventPopulateStarted   = "populate.started"
	EventPopulateCompleted = "populate.completed"
	EventScrapeJobFailed   = "scrape.job_failed"
)

// Entity types.
const (
	EntityPopulate = "populate"
	EntityFilmPage = "film_page"
)

// PopulateStarted is emitted once the listing has been parsed.
type PopulateStarted struct {
	BaseEvent
	Strategy string `json:"strategy"`
	Listing  string `json:"listing_url"`
	Found    int    `json:"found"`
}

// PopulateCompleted is emitted after the sink has been called, or after the
// run aborted. Error is empty on success.
type PopulateCompleted struct {
	BaseEvent
	Strategy  string  `json:"strategy"`
	Found     int     `json:"found"`
	Created   int     `json:"created"`
	Failed    int     `json:"failed"`
	ElapsedMS int64   `json:"elapsed_ms"`
	Seconds   float64 `json:"elapsed_seconds"`
	Error     string  `json:"error,omitempty"`
}

// ScrapeJobFailed is emitted for every detail page that could not be
// fetched or parsed. EntityID is the page's position in the listing.
type ScrapeJobFailed struct {
	BaseEvent
	RunID int64  `json:"run_id"`
	URL   string `json:"url"`
	Error string `json:"error"`
}
