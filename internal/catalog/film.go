package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/kinocat/pkg/kino"
)

const filmColumns = "id, uuid, title, release_date, description, distributed_by, length, rating, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilm(r rowScanner) (*Film, error) {
	f := &Film{}
	err := r.Scan(&f.ID, &f.UUID, &f.Title, &f.ReleaseDate, &f.Description, &f.DistributedBy,
		&f.Length, &f.Rating, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// FilmFromRaw converts a scraped record into a Film ready for insertion.
func FilmFromRaw(raw kino.RawFilm) (*Film, error) {
	rating, err := kino.ParseRating(raw.Rating)
	if err != nil {
		return nil, fmt.Errorf("film %q: %w", raw.Title, err)
	}
	return &Film{
		Title:         raw.Title,
		ReleaseDate:   raw.ReleaseDate,
		Description:   raw.Description,
		DistributedBy: raw.Distributor,
		Length:        raw.LengthMinutes,
		Rating:        rating,
	}, nil
}

func addFilm(ctx context.Context, q querier, f *Film) error {
	if f.UUID == "" {
		f.UUID = uuid.New().String()
	}
	now := time.Now().UTC()
	result, err := q.ExecContext(ctx, `
		INSERT INTO films (uuid, title, release_date, description, distributed_by, length, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.UUID, f.Title, f.ReleaseDate, f.Description, f.DistributedBy, f.Length, f.Rating, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert film: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	f.ID = id
	f.CreatedAt = now
	f.UpdatedAt = now
	return nil
}

// AddFilm inserts f, assigning a UUID when it has none.
// Returns ErrDuplicate when the title is taken.
func (s *Store) AddFilm(ctx context.Context, f *Film) error { return addFilm(ctx, s.db, f) }

func (t *Tx) AddFilm(ctx context.Context, f *Film) error { return addFilm(ctx, t.tx, f) }

func getFilm(ctx context.Context, q querier, id string) (*Film, error) {
	f, err := scanFilm(q.QueryRowContext(ctx, "SELECT "+filmColumns+" FROM films WHERE uuid = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get film %s: %w", id, mapSQLiteError(err))
	}
	f.Actors, err = filmActors(ctx, q, f.ID)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// GetFilm returns the film with the given UUID, with its actors.
func (s *Store) GetFilm(ctx context.Context, id string) (*Film, error) { return getFilm(ctx, s.db, id) }

func (t *Tx) GetFilm(ctx context.Context, id string) (*Film, error) { return getFilm(ctx, t.tx, id) }

// GetFilmByTitle returns nil, nil when no film has that exact title.
func (s *Store) GetFilmByTitle(ctx context.Context, title string) (*Film, error) {
	f, err := scanFilm(s.db.QueryRowContext(ctx, "SELECT "+filmColumns+" FROM films WHERE title = ?", title))
	if err != nil {
		if mapped := mapSQLiteError(err); mapped == ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get film by title: %w", err)
	}
	return f, nil
}

func listFilms(ctx context.Context, q querier, f FilmFilter) ([]*Film, int, error) {
	var conditions []string
	var args []any

	if f.Title != nil {
		conditions = append(conditions, "title LIKE ?")
		args = append(args, "%"+*f.Title+"%")
	}
	if f.DistributedBy != nil {
		conditions = append(conditions, "distributed_by = ?")
		args = append(args, *f.DistributedBy)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM films"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count films: %w", err)
	}

	order := "id"
	if col, ok := filmSortColumns[f.Sort]; ok {
		order = col
	}
	if f.Desc {
		order += " DESC"
	}
	query := "SELECT " + filmColumns + " FROM films" + where + " ORDER BY " + order + ", id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list films: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []*Film{}
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan film: %w", err)
		}
		results = append(results, film)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate films: %w", err)
	}
	return results, total, nil
}

// ListFilms returns the films matching f and the total match count.
func (s *Store) ListFilms(ctx context.Context, f FilmFilter) ([]*Film, int, error) {
	return listFilms(ctx, s.db, f)
}

func (t *Tx) ListFilms(ctx context.Context, f FilmFilter) ([]*Film, int, error) {
	return listFilms(ctx, t.tx, f)
}

func updateFilm(ctx context.Context, q querier, f *Film) error {
	now := time.Now().UTC()
	result, err := q.ExecContext(ctx, `
		UPDATE films SET title = ?, release_date = ?, description = ?, distributed_by = ?, length = ?, rating = ?, updated_at = ?
		WHERE uuid = ?`,
		f.Title, f.ReleaseDate, f.Description, f.DistributedBy, f.Length, f.Rating, now, f.UUID,
	)
	if err != nil {
		return fmt.Errorf("update film %s: %w", f.UUID, mapSQLiteError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update film %s: %w", f.UUID, ErrNotFound)
	}
	f.UpdatedAt = now
	return nil
}

// UpdateFilm overwrites every column of the film identified by f.UUID.
func (s *Store) UpdateFilm(ctx context.Context, f *Film) error { return updateFilm(ctx, s.db, f) }

func (t *Tx) UpdateFilm(ctx context.Context, f *Film) error { return updateFilm(ctx, t.tx, f) }

func deleteFilm(ctx context.Context, q querier, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM films WHERE uuid = ?", id)
	if err != nil {
		return fmt.Errorf("delete film %s: %w", id, mapSQLiteError(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete film %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteFilm removes a film and its actor links.
func (s *Store) DeleteFilm(ctx context.Context, id string) error { return deleteFilm(ctx, s.db, id) }

func (t *Tx) DeleteFilm(ctx context.Context, id string) error { return deleteFilm(ctx, t.tx, id) }

// BulkCreateFilms inserts scraped films in one transaction and returns how
// many were new. Titles already present, in the table or earlier in films,
// are skipped.
func (s *Store) BulkCreateFilms(ctx context.Context, films []kino.RawFilm) (int, error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	created := 0
	for _, raw := range films {
		f, err := FilmFromRaw(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrConstraint, err)
		}
		res, err := tx.tx.ExecContext(ctx, `
			INSERT INTO films (uuid, title, release_date, description, distributed_by, length, rating, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(title) DO NOTHING`,
			uuid.New().String(), f.Title, f.ReleaseDate, f.Description, f.DistributedBy, f.Length, f.Rating, now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("insert film %q: %w", f.Title, mapSQLiteError(err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		created += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit films: %w", err)
	}
	return created, nil
}

// CountFilms returns the number of stored films.
func (s *Store) CountFilms(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM films").Scan(&n); err != nil {
		return 0, fmt.Errorf("count films: %w", err)
	}
	return n, nil
}
