package scrape

//go:generate mockgen -source=sink.go -destination=mocks/mock_sink.go -package=mocks

import (
	"context"

	"github.com/vmunix/kinocat/pkg/kino"
)

// Sink persists the films of a finished run. BulkCreateFilms is called once
// per run and returns how many films were new; titles already stored are
// skipped without error.
type Sink interface {
	BulkCreateFilms(ctx context.Context, films []kino.RawFilm) (int, error)
}
