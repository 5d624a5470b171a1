package v1

import (
	"encoding/json"
	"time"

	"github.com/vmunix/kinocat/internal/catalog"
	"github.com/vmunix/kinocat/internal/scrape"
)

const dateLayout = "2006-01-02"

type messageResponse struct {
	Message string `json:"message"`
}

type homeResponse struct {
	Message string `json:"message"`
	Hits    int64  `json:"hits"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database"`
	Films    int    `json:"films"`
}

// filmResponse is the API representation of a film.
type filmResponse struct {
	UUID          string          `json:"uuid"`
	Title         string          `json:"title"`
	ReleaseDate   string          `json:"release_date"`
	Description   string          `json:"description"`
	DistributedBy string          `json:"distributed_by"`
	Length        int             `json:"length"`
	Rating        float64         `json:"rating"`
	Actors        []actorResponse `json:"actors"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// listFilmsResponse is the response for GET /films.
type listFilmsResponse struct {
	Items  []filmResponse `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type filmMatchResponse struct {
	Film  filmResponse `json:"film"`
	Score float64      `json:"score"`
}

type searchFilmsResponse struct {
	Query string              `json:"query"`
	Items []filmMatchResponse `json:"items"`
}

// filmRequest is the body for POST and PUT /films.
type filmRequest struct {
	Title         string   `json:"title" validate:"required,max=100"`
	ReleaseDate   string   `json:"release_date" validate:"required,datetime=2006-01-02"`
	Description   string   `json:"description"`
	DistributedBy string   `json:"distributed_by" validate:"required,max=120"`
	Length        int      `json:"length" validate:"gte=0"`
	Rating        float64  `json:"rating" validate:"gte=0,lte=10"`
	Actors        []string `json:"actors" validate:"omitempty,dive,uuid"`
}

// filmPatchRequest updates only the fields that are present.
type filmPatchRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=1,max=100"`
	ReleaseDate   *string  `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Description   *string  `json:"description"`
	DistributedBy *string  `json:"distributed_by" validate:"omitempty,min=1,max=120"`
	Length        *int     `json:"length" validate:"omitempty,gte=0"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

type setActorsRequest struct {
	Actors []string `json:"actors" validate:"omitempty,dive,uuid"`
}

// actorResponse is the API representation of an actor.
type actorResponse struct {
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	Birthday  *string   `json:"birthday"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listActorsResponse struct {
	Items  []actorResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// actorRequest is the body for POST and PUT /actors.
type actorRequest struct {
	Name     string  `json:"name" validate:"required,max=50"`
	Birthday *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	IsActive *bool   `json:"is_active"`
}

type actorPatchRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=50"`
	Birthday *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	IsActive *bool   `json:"is_active"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type userResponse struct {
	UUID      string    `json:"uuid"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// populateResponse is the response for the populate endpoints.
type populateResponse struct {
	Message        string           `json:"message"`
	Strategy       scrape.Strategy  `json:"strategy"`
	Found          int              `json:"found"`
	Created        int              `json:"created"`
	Failed         []scrape.Failure `json:"failed"`
	ElapsedSeconds float64          `json:"elapsed_seconds"`
}

// EventResponse is one entry of the event log.
type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt string          `json:"occurred_at"`
}

type listEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func filmToResponse(f *catalog.Film) filmResponse {
	resp := filmResponse{
		UUID:          f.UUID,
		Title:         f.Title,
		ReleaseDate:   f.ReleaseDate.Format(dateLayout),
		Description:   f.Description,
		DistributedBy: f.DistributedBy,
		Length:        f.Length,
		Rating:        f.Rating,
		Actors:        make([]actorResponse, len(f.Actors)),
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
	for i := range f.Actors {
		resp.Actors[i] = actorToResponse(&f.Actors[i])
	}
	return resp
}

func actorToResponse(a *catalog.Actor) actorResponse {
	resp := actorResponse{
		UUID:      a.UUID,
		Name:      a.Name,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Birthday != nil {
		b := a.Birthday.Format(dateLayout)
		resp.Birthday = &b
	}
	return resp
}

// parseDate parses a value already checked by the datetime validator.
func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}
