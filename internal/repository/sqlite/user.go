package sqlite

import (
	"context"
	"database/sql"

	"evalvault/internal/domain"
	"evalvault/internal/repository"
)

// Users implements repository.Users over the user_form table.
type Users struct {
	store *Store
}

// NewUsers creates the user repository bound to store.
func NewUsers(store *Store) *Users {
	return &Users{store: store}
}

// Add inserts a new user and returns its assigned id. The uniqueness check
// runs inside the same transaction as the insert, so two concurrent Add calls
// with the same username cannot both succeed.
func (r *Users) Add(ctx context.Context, username, password, nickname, fullName string) (int64, error) {
	if username == "" {
		return 0, repository.Validationf("username is required")
	}
	if password == "" {
		return 0, repository.Validationf("password is required")
	}
	if nickname == "" {
		return 0, repository.Validationf("nickname is required")
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, repository.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM user_form WHERE username = ?`, username).Scan(&existing)
	if err == nil {
		return 0, repository.Conflictf("username %q already exists", username)
	}
	if err != sql.ErrNoRows {
		return 0, repository.Unavailable("check username", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO user_form (username, password, nickname, full_name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, username, password, nickname, stringToNull(fullName), now())
	if err != nil {
		return 0, repository.Unavailable("insert user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, repository.Unavailable("read inserted id", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, repository.Unavailable("commit transaction", err)
	}
	return id, nil
}

// GetByUsername retrieves a user, or (nil, nil) when absent.
func (r *Users) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var row userRow
	err := r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM user_form WHERE username = ?`, username).
		Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, repository.Unavailable("query user", err)
	}

	user, err := row.toDomain()
	if err != nil {
		return nil, repository.Unavailable("decode user row", err)
	}
	return user, nil
}

// ListAll returns every user. An empty table yields an empty slice.
func (r *Users) ListAll(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM user_form ORDER BY id`)
	if err != nil {
		return nil, repository.Unavailable("query users", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		var row userRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, repository.Unavailable("scan user row", err)
		}
		user, err := row.toDomain()
		if err != nil {
			return nil, repository.Unavailable("decode user row", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.Unavailable("iterate users", err)
	}
	return users, nil
}

// Update applies the non-nil fields of changes to the named user and stamps
// updated_at. A missing username yields NotFound and no row change.
func (r *Users) Update(ctx context.Context, username string, changes domain.UserChanges) error {
	set := []string{}
	args := []any{}

	if changes.Password != nil {
		set = append(set, "password = ?")
		args = append(args, *changes.Password)
	}
	if changes.Nickname != nil {
		set = append(set, "nickname = ?")
		args = append(args, *changes.Nickname)
	}
	if changes.FullName != nil {
		set = append(set, "full_name = ?")
		args = append(args, stringToNull(*changes.FullName))
	}
	set = append(set, "updated_at = ?")
	args = append(args, now(), username)

	result, err := r.store.db.ExecContext(ctx,
		`UPDATE user_form SET `+joinSet(set)+` WHERE username = ?`, args...)
	if err != nil {
		return repository.Unavailable("update user", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return repository.Unavailable("read affected rows", err)
	}
	if affected == 0 {
		return repository.NotFoundf("user %q not found", username)
	}
	return nil
}

// Delete removes the named user. A missing username yields NotFound; the
// second delete of the same username reports NotFound again.
func (r *Users) Delete(ctx context.Context, username string) error {
	result, err := r.store.db.ExecContext(ctx,
		`DELETE FROM user_form WHERE username = ?`, username)
	if err != nil {
		return repository.Unavailable("delete user", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return repository.Unavailable("read affected rows", err)
	}
	if affected == 0 {
		return repository.NotFoundf("user %q not found", username)
	}
	return nil
}
