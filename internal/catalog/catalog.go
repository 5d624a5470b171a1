// Package catalog stores films and actors.
package catalog

import "time"

// Film is a stored film. Title is unique across the catalog.
type Film struct {
	ID            int64
	UUID          string
	Title         string
	ReleaseDate   time.Time
	Description   string
	DistributedBy string
	Length        int // minutes
	Rating        float64
	Actors        []Actor // filled by GetFilm only
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Actor is a person who can appear in many films.
type Actor struct {
	ID        int64
	UUID      string
	Name      string
	Birthday  *time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
