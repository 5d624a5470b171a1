package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func mustAddActor(t *testing.T, s *Store, name string, birthday *time.Time) *Actor {
	t.Helper()
	a := &Actor{Name: name, Birthday: birthday, IsActive: true}
	if err := s.AddActor(context.Background(), a); err != nil {
		t.Fatalf("AddActor(%q): %v", name, err)
	}
	return a
}

func TestStore_ActorCRUD(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	born := date(1976, time.June, 1)
	a := mustAddActor(t, store, "Киллиан Мёрфи", &born)
	if a.ID == 0 || a.UUID == "" {
		t.Fatalf("AddActor did not set ids: %+v", a)
	}

	got, err := store.GetActor(ctx, a.UUID)
	if err != nil {
		t.Fatalf("GetActor: %v", err)
	}
	if got.Name != "Киллиан Мёрфи" || !got.IsActive {
		t.Errorf("GetActor = %+v", got)
	}
	if got.Birthday == nil || !got.Birthday.Equal(born) {
		t.Errorf("Birthday = %v, want %v", got.Birthday, born)
	}

	got.IsActive = false
	got.Birthday = nil
	if err := store.UpdateActor(ctx, got); err != nil {
		t.Fatalf("UpdateActor: %v", err)
	}
	again, _ := store.GetActor(ctx, a.UUID)
	if again.IsActive || again.Birthday != nil {
		t.Errorf("after update: %+v", again)
	}

	if err := store.DeleteActor(ctx, a.UUID); err != nil {
		t.Fatalf("DeleteActor: %v", err)
	}
	if _, err := store.GetActor(ctx, a.UUID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateActor(ctx, a); !errors.Is(err, ErrNotFound) {
		t.Errorf("update deleted actor: expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListActors(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()
	mustAddActor(t, store, "Сергей Бодров", nil)
	mustAddActor(t, store, "Виктор Сухоруков", nil)
	retired := mustAddActor(t, store, "Сергей Маковецкий", nil)
	retired.IsActive = false
	if err := store.UpdateActor(ctx, retired); err != nil {
		t.Fatalf("UpdateActor: %v", err)
	}

	all, total, err := store.ListActors(ctx, ActorFilter{})
	if err != nil {
		t.Fatalf("ListActors: %v", err)
	}
	if total != 3 || all[0].Name != "Виктор Сухоруков" {
		t.Errorf("ListActors: total %d, first %q", total, all[0].Name)
	}

	sergeys, total, _ := store.ListActors(ctx, ActorFilter{Name: ptr("Сергей")})
	if total != 2 || len(sergeys) != 2 {
		t.Errorf("name filter: %d (total %d)", len(sergeys), total)
	}

	active, total, _ := store.ListActors(ctx, ActorFilter{IsActive: ptr(true), Limit: 1})
	if total != 2 || len(active) != 1 {
		t.Errorf("active filter: %d (total %d)", len(active), total)
	}
}

func TestStore_SetFilmActors(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()
	film := mustAddFilm(t, store, "Брат", date(1997, time.May, 17), 8.3)
	bodrov := mustAddActor(t, store, "Сергей Бодров", nil)
	sukh := mustAddActor(t, store, "Виктор Сухоруков", nil)

	if err := store.SetFilmActors(ctx, film.UUID, []string{bodrov.UUID, sukh.UUID, bodrov.UUID}); err != nil {
		t.Fatalf("SetFilmActors: %v", err)
	}
	got, err := store.GetFilm(ctx, film.UUID)
	if err != nil {
		t.Fatalf("GetFilm: %v", err)
	}
	if len(got.Actors) != 2 || got.Actors[0].Name != "Виктор Сухоруков" {
		t.Errorf("Actors = %+v", got.Actors)
	}

	films, err := store.ActorFilms(ctx, bodrov.UUID)
	if err != nil || len(films) != 1 || films[0].Title != "Брат" {
		t.Errorf("ActorFilms = %v, %v", films, err)
	}

	// Unknown actor leaves the previous cast in place.
	err = store.SetFilmActors(ctx, film.UUID, []string{sukh.UUID, "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, _ = store.GetFilm(ctx, film.UUID)
	if len(got.Actors) != 2 {
		t.Errorf("cast changed after failed update: %+v", got.Actors)
	}

	// Deleting the actor drops the link.
	if err := store.DeleteActor(ctx, sukh.UUID); err != nil {
		t.Fatalf("DeleteActor: %v", err)
	}
	got, _ = store.GetFilm(ctx, film.UUID)
	if len(got.Actors) != 1 || got.Actors[0].UUID != bodrov.UUID {
		t.Errorf("after actor delete: %+v", got.Actors)
	}
}

func TestTx_CommitAndRollback(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.AddFilm(ctx, &Film{Title: "Откат", ReleaseDate: date(2001, 1, 1)}); err != nil {
		t.Fatalf("tx.AddFilm: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if n, _ := store.CountFilms(ctx); n != 0 {
		t.Errorf("CountFilms after rollback = %d", n)
	}

	tx, err = store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	f := &Film{Title: "Фиксация", ReleaseDate: date(2002, 2, 2)}
	if err := tx.AddFilm(ctx, f); err != nil {
		t.Fatalf("tx.AddFilm: %v", err)
	}
	a := &Actor{Name: "Актёр", IsActive: true}
	if err := tx.AddActor(ctx, a); err != nil {
		t.Fatalf("tx.AddActor: %v", err)
	}
	if err := tx.SetFilmActors(ctx, f.UUID, []string{a.UUID}); err != nil {
		t.Fatalf("tx.SetFilmActors: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := store.GetFilm(ctx, f.UUID)
	if err != nil || len(got.Actors) != 1 {
		t.Errorf("after commit: %+v, %v", got, err)
	}
}
