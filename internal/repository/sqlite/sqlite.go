package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"evalvault/internal/repository"
)

// Store owns the database handle shared by the entity repositories. The
// handle may be used concurrently; every operation opens its own transaction
// or statement and releases it on all exit paths.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger injects a logger used for migration and reset events. The store
// never logs on normal read/write paths.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Open opens (creating if absent) the database at path and migrates the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, repository.Unavailable("open database", err)
	}

	// SQLite is a single-writer engine; a single pooled connection keeps
	// in-memory databases coherent and serializes writes.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(store)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, repository.Unavailable("configure database", err)
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, repository.Unavailable("migrate database", err)
	}
	store.log.Debug().Str("path", path).Msg("database opened")

	return store, nil
}

// Foreign keys are declared for documentation but not enforced by the engine:
// dependent-row cleanup on delete is a caller responsibility, and query_form
// creator_id is deliberately unvalidated. The two required references
// (evaluation_form.query_id, files_form.evaluation_id) are checked by the
// repositories inside their insert transactions.
const schema = `
CREATE TABLE IF NOT EXISTS user_form (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	nickname TEXT NOT NULL,
	full_name TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT
);

CREATE TABLE IF NOT EXISTS query_form (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lazy_query TEXT,
	detail_query TEXT,
	creator_id INTEGER REFERENCES user_form(id),
	priority INTEGER,
	created_at TEXT NOT NULL,
	updated_at TEXT
);

CREATE TABLE IF NOT EXISTS evaluation_form (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query_id INTEGER NOT NULL REFERENCES query_form(id),
	agent TEXT,
	evaluator_id INTEGER REFERENCES user_form(id),
	quality_score INTEGER,
	trajectory TEXT,
	report_content TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT
);

CREATE TABLE IF NOT EXISTS files_form (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	evaluation_id INTEGER NOT NULL REFERENCES evaluation_form(id),
	filename TEXT NOT NULL,
	content BLOB,
	file_type TEXT NOT NULL CHECK (file_type IN ('trajectory', 'report', 'deliverable', 'pre_data')),
	file_size INTEGER,
	created_at TEXT NOT NULL,
	updated_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_query_form_creator ON query_form(creator_id);
CREATE INDEX IF NOT EXISTS idx_evaluation_form_query ON evaluation_form(query_id);
CREATE INDEX IF NOT EXISTS idx_evaluation_form_evaluator ON evaluation_form(evaluator_id);
CREATE INDEX IF NOT EXISTS idx_files_form_evaluation ON files_form(evaluation_id);
CREATE INDEX IF NOT EXISTS idx_files_form_type ON files_form(file_type);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Tables returns the entity table names in creation order.
func Tables() []string {
	return []string{"user_form", "query_form", "evaluation_form", "files_form"}
}

// Reset drops all entity tables and recreates them empty. This is the
// explicit destructive operation consumed by the bootstrap layer; no normal
// write path implies it.
func (s *Store) Reset(ctx context.Context) error {
	drop := `
	DROP TABLE IF EXISTS files_form;
	DROP TABLE IF EXISTS evaluation_form;
	DROP TABLE IF EXISTS query_form;
	DROP TABLE IF EXISTS user_form;
	`
	if _, err := s.db.ExecContext(ctx, drop); err != nil {
		return repository.Unavailable("drop tables", err)
	}
	if err := s.migrate(); err != nil {
		return repository.Unavailable("recreate tables", err)
	}
	s.log.Warn().Msg("database reset: all tables dropped and recreated")
	return nil
}

// Structure returns column metadata and the row count for table, or
// (nil, nil) if the table does not exist. A missing table is not a failure.
func (s *Store) Structure(ctx context.Context, table string) (*repository.TableStructure, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, repository.Unavailable("inspect table", err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(table)))
	if err != nil {
		return nil, repository.Unavailable("read table info", err)
	}
	defer rows.Close()

	structure := &repository.TableStructure{Table: table}
	for rows.Next() {
		var (
			cid     int
			col     repository.Column
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return nil, repository.Unavailable("scan table info", err)
		}
		col.NotNull = notNull != 0
		col.Default = dflt.String
		col.PrimaryKey = pk != 0
		structure.Columns = append(structure.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.Unavailable("iterate table info", err)
	}

	count, err := s.Count(ctx, table)
	if err != nil {
		return nil, err
	}
	structure.RowCount = count

	return structure, nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(table))
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, repository.Unavailable("count rows", err)
	}
	return count, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
