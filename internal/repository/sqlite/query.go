package sqlite

import (
	"context"
	"database/sql"

	"evalvault/internal/domain"
	"evalvault/internal/repository"
)

// Queries implements repository.Queries over the query_form table.
type Queries struct {
	store *Store
}

// NewQueries creates the query repository bound to store.
func NewQueries(store *Store) *Queries {
	return &Queries{store: store}
}

// Add inserts a new query and returns its assigned id. creator_id is not
// validated against the user table here; callers supply an existing id.
func (r *Queries) Add(ctx context.Context, lazyQuery, detailQuery string, creatorID *int64, priority *int) (int64, error) {
	result, err := r.store.db.ExecContext(ctx, `
		INSERT INTO query_form (lazy_query, detail_query, creator_id, priority, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, stringToNull(lazyQuery), stringToNull(detailQuery),
		int64PtrToNull(creatorID), intPtrToNull(priority), now())
	if err != nil {
		return 0, repository.Unavailable("insert query", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, repository.Unavailable("read inserted id", err)
	}
	return id, nil
}

// GetByID retrieves a query, or (nil, nil) when absent.
func (r *Queries) GetByID(ctx context.Context, id int64) (*domain.Query, error) {
	var row queryRow
	err := r.store.db.QueryRowContext(ctx,
		`SELECT `+queryColumns+` FROM query_form WHERE id = ?`, id).
		Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, repository.Unavailable("query query_form", err)
	}

	query, err := row.toDomain()
	if err != nil {
		return nil, repository.Unavailable("decode query row", err)
	}
	return query, nil
}

// GetByCreator returns the queries filed by one creator, oldest first.
func (r *Queries) GetByCreator(ctx context.Context, creatorID int64) ([]*domain.Query, error) {
	return r.list(ctx,
		`SELECT `+queryColumns+` FROM query_form WHERE creator_id = ? ORDER BY id`, creatorID)
}

// ListAll returns every query. An empty table yields an empty slice.
func (r *Queries) ListAll(ctx context.Context) ([]*domain.Query, error) {
	return r.list(ctx, `SELECT `+queryColumns+` FROM query_form ORDER BY id`)
}

func (r *Queries) list(ctx context.Context, query string, args ...any) ([]*domain.Query, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repository.Unavailable("query query_form", err)
	}
	defer rows.Close()

	queries := []*domain.Query{}
	for rows.Next() {
		var row queryRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, repository.Unavailable("scan query row", err)
		}
		q, err := row.toDomain()
		if err != nil {
			return nil, repository.Unavailable("decode query row", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.Unavailable("iterate queries", err)
	}
	return queries, nil
}

// Update applies the non-nil fields of changes to the query and stamps
// updated_at. A missing id yields NotFound and no row change.
func (r *Queries) Update(ctx context.Context, id int64, changes domain.QueryChanges) error {
	set := []string{}
	args := []any{}

	if changes.LazyQuery != nil {
		set = append(set, "lazy_query = ?")
		args = append(args, stringToNull(*changes.LazyQuery))
	}
	if changes.DetailQuery != nil {
		set = append(set, "detail_query = ?")
		args = append(args, stringToNull(*changes.DetailQuery))
	}
	if changes.CreatorID != nil {
		set = append(set, "creator_id = ?")
		args = append(args, *changes.CreatorID)
	}
	if changes.Priority != nil {
		set = append(set, "priority = ?")
		args = append(args, *changes.Priority)
	}
	set = append(set, "updated_at = ?")
	args = append(args, now(), id)

	result, err := r.store.db.ExecContext(ctx,
		`UPDATE query_form SET `+joinSet(set)+` WHERE id = ?`, args...)
	if err != nil {
		return repository.Unavailable("update query", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return repository.Unavailable("read affected rows", err)
	}
	if affected == 0 {
		return repository.NotFoundf("query %d not found", id)
	}
	return nil
}

// Delete removes the query. Dependent evaluations are not cascaded; cleaning
// them up first is the caller's responsibility.
func (r *Queries) Delete(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM query_form WHERE id = ?`, id)
	if err != nil {
		return repository.Unavailable("delete query", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return repository.Unavailable("read affected rows", err)
	}
	if affected == 0 {
		return repository.NotFoundf("query %d not found", id)
	}
	return nil
}
