package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vmunix/kinocat/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Apply(context.Background(), db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func ptr[T any](v T) *T {
	return &v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustAddFilm(t *testing.T, s *Store, title string, released time.Time, rating float64) *Film {
	t.Helper()
	f := &Film{
		Title:         title,
		ReleaseDate:   released,
		Description:   "описание",
		DistributedBy: "%film_studio%",
		Length:        120,
		Rating:        rating,
	}
	if err := s.AddFilm(context.Background(), f); err != nil {
		t.Fatalf("AddFilm(%q): %v", title, err)
	}
	return f
}
