package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const actorColumns = "id, uuid, name, birthday, is_active, created_at, updated_at"

func scanActor(r rowScanner) (*Actor, error) {
	a := &Actor{}
	var birthday sql.NullTime
	if err := r.Scan(&a.ID, &a.UUID, &a.Name, &birthday, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if birthday.Valid {
		b := birthday.Time
		a.Birthday = &b
	}
	return a, nil
}

func addActor(ctx context.Context, q querier, a *Actor) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	now := time.Now().UTC()
	result, err := q.ExecContext(ctx, `
		INSERT INTO actors (uuid, name, birthday, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.UUID, a.Name, a.Birthday, a.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert actor: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

func (s *Store) AddActor(ctx context.Context, a *Actor) error { return addActor(ctx, s.db, a) }

func (t *Tx) AddActor(ctx context.Context, a *Actor) error { return addActor(ctx, t.tx, a) }

func getActor(ctx context.Context, q querier, id string) (*Actor, error) {
	a, err := scanActor(q.QueryRowContext(ctx, "SELECT "+actorColumns+" FROM actors WHERE uuid = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get actor %s: %w", id, mapSQLiteError(err))
	}
	return a, nil
}

// GetActor returns the actor with the given UUID.
func (s *Store) GetActor(ctx context.Context, id string) (*Actor, error) {
	return getActor(ctx, s.db, id)
}

func (t *Tx) GetActor(ctx context.Context, id string) (*Actor, error) {
	return getActor(ctx, t.tx, id)
}

func listActors(ctx context.Context, q querier, f ActorFilter) ([]*Actor, int, error) {
	var conditions []string
	var args []any
	if f.Name != nil {
		conditions = append(conditions, "name LIKE ?")
		args = append(args, "%"+*f.Name+"%")
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = ?")
		args = append(args, *f.IsActive)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM actors"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count actors: %w", err)
	}

	query := "SELECT " + actorColumns + " FROM actors" + where + " ORDER BY name, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list actors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actors := []*Actor{}
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate actors: %w", err)
	}
	return actors, total, nil
}

func (s *Store) ListActors(ctx context.Context, f ActorFilter) ([]*Actor, int, error) {
	return listActors(ctx, s.db, f)
}

func (t *Tx) ListActors(ctx context.Context, f ActorFilter) ([]*Actor, int, error) {
	return listActors(ctx, t.tx, f)
}

func updateActor(ctx context.Context, q querier, a *Actor) error {
	now := time.Now().UTC()
	result, err := q.ExecContext(ctx,
		`UPDATE actors SET name = ?, birthday = ?, is_active = ?, updated_at = ? WHERE uuid = ?`,
		a.Name, a.Birthday, a.IsActive, now, a.UUID,
	)
	if err != nil {
		return fmt.Errorf("update actor %s: %w", a.UUID, mapSQLiteError(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("update actor %s: %w", a.UUID, ErrNotFound)
	}
	a.UpdatedAt = now
	return nil
}

func (s *Store) UpdateActor(ctx context.Context, a *Actor) error { return updateActor(ctx, s.db, a) }

func (t *Tx) UpdateActor(ctx context.Context, a *Actor) error { return updateActor(ctx, t.tx, a) }

func deleteActor(ctx context.Context, q querier, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM actors WHERE uuid = ?", id)
	if err != nil {
		return fmt.Errorf("delete actor %s: %w", id, mapSQLiteError(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete actor %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteActor(ctx context.Context, id string) error { return deleteActor(ctx, s.db, id) }

func (t *Tx) DeleteActor(ctx context.Context, id string) error { return deleteActor(ctx, t.tx, id) }

func filmActors(ctx context.Context, q querier, filmID int64) ([]Actor, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT a.id, a.uuid, a.name, a.birthday, a.is_active, a.created_at, a.updated_at
		FROM actors a JOIN film_actors fa ON fa.actor_id = a.id
		WHERE fa.film_id = ?
		ORDER BY a.name, a.id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("list film actors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actors := []Actor{}
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, *a)
	}
	return actors, rows.Err()
}

// SetFilmActors replaces the cast of a film. Unknown actor UUIDs yield
// ErrNotFound and leave the cast unchanged.
func (t *Tx) SetFilmActors(ctx context.Context, filmID string, actorIDs []string) error {
	film, err := getFilm(ctx, t.tx, filmID)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM film_actors WHERE film_id = ?", film.ID); err != nil {
		return fmt.Errorf("clear film actors: %w", err)
	}
	for _, id := range actorIDs {
		actor, err := getActor(ctx, t.tx, id)
		if err != nil {
			return err
		}
		_, err = t.tx.ExecContext(ctx,
			"INSERT INTO film_actors (film_id, actor_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			film.ID, actor.ID)
		if err != nil {
			return fmt.Errorf("link actor %s: %w", id, mapSQLiteError(err))
		}
	}
	return nil
}

// SetFilmActors runs Tx.SetFilmActors in its own transaction.
func (s *Store) SetFilmActors(ctx context.Context, filmID string, actorIDs []string) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.SetFilmActors(ctx, filmID, actorIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// ActorFilms lists the titles an actor appears in.
func (s *Store) ActorFilms(ctx context.Context, actorID string) ([]*Film, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.uuid, f.title, f.release_date, f.description, f.distributed_by, f.length, f.rating, f.created_at, f.updated_at
		FROM films f
		JOIN film_actors fa ON fa.film_id = f.id
		JOIN actors a ON a.id = fa.actor_id
		WHERE a.uuid = ?
		ORDER BY f.release_date, f.id`, actorID)
	if err != nil {
		return nil, fmt.Errorf("list actor films: %w", err)
	}
	defer func() { _ = rows.Close() }()

	films := []*Film{}
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		films = append(films, f)
	}
	return films, rows.Err()
}
