package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"evalvault/internal/domain"
	"evalvault/internal/repository"
)

// Files implements repository.Files over the files_form table.
type Files struct {
	store *Store
}

// NewFiles creates the file repository bound to store.
func NewFiles(store *Store) *Files {
	return &Files{store: store}
}

// dbtx is the subset of *sql.DB and *sql.Tx the single-row write helpers
// need, letting the compound evaluation write reuse the file insert inside
// its own transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// requireRow verifies the referenced parent row exists, returning a typed
// integrity error when it does not.
func requireRow(ctx context.Context, q dbtx, table string, id int64, label string) error {
	var one int64
	err := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, quoteIdent(table)), id).Scan(&one)
	if err == sql.ErrNoRows {
		return repository.Integrityf("%s %d does not exist", label, id)
	}
	if err != nil {
		return repository.Unavailable("check "+label+" reference", err)
	}
	return nil
}

// insertFile writes one files_form row. The file type must already be valid
// and the evaluation reference already checked by the caller's transaction.
func insertFile(ctx context.Context, q dbtx, file *domain.File) (int64, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO files_form (evaluation_id, filename, content, file_type, file_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, file.EvaluationID, file.Filename, file.Content, string(file.FileType),
		int64PtrToNull(file.FileSize), now())
	if err != nil {
		return 0, repository.Unavailable("insert file", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, repository.Unavailable("read inserted id", err)
	}
	return id, nil
}

// Add inserts a new file and returns its assigned id. The file type is
// validated before any write; the evaluation reference is checked inside the
// insert transaction.
func (r *Files) Add(ctx context.Context, file *domain.File) (int64, error) {
	if !file.FileType.Valid() {
		return 0, repository.Validationf("invalid file type %q (valid: %v)", file.FileType, domain.FileTypes())
	}
	if file.Filename == "" {
		return 0, repository.Validationf("filename is required")
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, repository.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	if err := requireRow(ctx, tx, "evaluation_form", file.EvaluationID, "evaluation"); err != nil {
		return 0, err
	}

	id, err := insertFile(ctx, tx, file)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, repository.Unavailable("commit transaction", err)
	}
	return id, nil
}

// GetByID retrieves a file, or (nil, nil) when absent.
func (r *Files) GetByID(ctx context.Context, id int64) (*domain.File, error) {
	var row fileRow
	err := r.store.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files_form WHERE id = ?`, id).
		Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, repository.Unavailable("query file", err)
	}

	file, err := row.toDomain()
	if err != nil {
		return nil, repository.Unavailable("decode file row", err)
	}
	return file, nil
}

// GetByEvaluation returns the files attached to one evaluation, oldest first.
func (r *Files) GetByEvaluation(ctx context.Context, evaluationID int64) ([]*domain.File, error) {
	return r.list(ctx,
		`SELECT `+fileColumns+` FROM files_form WHERE evaluation_id = ? ORDER BY id`, evaluationID)
}

// GetByType returns the files of one type, oldest first.
func (r *Files) GetByType(ctx context.Context, fileType domain.FileType) ([]*domain.File, error) {
	return r.list(ctx,
		`SELECT `+fileColumns+` FROM files_form WHERE file_type = ? ORDER BY id`, string(fileType))
}

// GetContent returns the binary payload of a file. It returns nil both when
// the row is missing and when content is NULL; callers that need to tell the
// cases apart check existence first.
func (r *Files) GetContent(ctx context.Context, id int64) ([]byte, error) {
	var content []byte
	err := r.store.db.QueryRowContext(ctx,
		`SELECT content FROM files_form WHERE id = ?`, id).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, repository.Unavailable("query file content", err)
	}
	return content, nil
}

// ListAll returns every file. An empty table yields an empty slice.
func (r *Files) ListAll(ctx context.Context) ([]*domain.File, error) {
	return r.list(ctx, `SELECT `+fileColumns+` FROM files_form ORDER BY id`)
}

func (r *Files) list(ctx context.Context, query string, args ...any) ([]*domain.File, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repository.Unavailable("query files", err)
	}
	defer rows.Close()

	files := []*domain.File{}
	for rows.Next() {
		var row fileRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, repository.Unavailable("scan file row", err)
		}
		file, err := row.toDomain()
		if err != nil {
			return nil, repository.Unavailable("decode file row", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.Unavailable("iterate files", err)
	}
	return files, nil
}

// Update applies the non-nil fields of changes to the file and stamps
// updated_at. A file type change is validated before any write. A missing id
// yields NotFound and no row change.
func (r *Files) Update(ctx context.Context, id int64, changes domain.FileChanges) error {
	if changes.FileType != nil && !changes.FileType.Valid() {
		return repository.Validationf("invalid file type %q (valid: %v)", *changes.FileType, domain.FileTypes())
	}

	set := []string{}
	args := []any{}

	if changes.Filename != nil {
		set = append(set, "filename = ?")
		args = append(args, *changes.Filename)
	}
	if changes.Content != nil {
		set = append(set, "content = ?")
		args = append(args, changes.Content)
	}
	if changes.FileType != nil {
		set = append(set, "file_type = ?")
		args = append(args, string(*changes.FileType))
	}
	if changes.FileSize != nil {
		set = append(set, "file_size = ?")
		args = append(args, *changes.FileSize)
	}
	set = append(set, "updated_at = ?")
	args = append(args, now(), id)

	result, err := r.store.db.ExecContext(ctx,
		`UPDATE files_form SET `+joinSet(set)+` WHERE id = ?`, args...)
	if err != nil {
		return repository.Unavailable("update file", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return repository.Unavailable("read affected rows", err)
	}
	if affected == 0 {
		return repository.NotFoundf("file %d not found", id)
	}
	return nil
}

// Delete removes the file. A missing id yields NotFound.
func (r *Files) Delete(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM files_form WHERE id = ?`, id)
	if err != nil {
		return repository.Unavailable("delete file", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return repository.Unavailable("read affected rows", err)
	}
	if affected == 0 {
		return repository.NotFoundf("file %d not found", id)
	}
	return nil
}
