// Package kino parses the kino.mail.ru listing and detail pages into film records.
//
// Everything in this package is a pure function of its input markup: no network
// access, no caching. Fetching lives in internal/scrape.
package kino

import "time"

// MaxListingEntries caps how many detail links a listing page may yield.
const MaxListingEntries = 10

// PlaceholderDistributor is stored as the distributor of every scraped film.
// The detail page markup does not expose the distributor.
const PlaceholderDistributor = "%film_studio%"

// RawFilm is a fully extracted film record ready for persistence.
// It carries no identity; the catalog assigns one on insert.
type RawFilm struct {
	Title         string    `json:"title"`
	Rating        string    `json:"rating"`
	Description   string    `json:"description"`
	ReleaseDate   time.Time `json:"release_date"`
	LengthMinutes int       `json:"length"`
	Distributor   string    `json:"distributed_by"`
}
