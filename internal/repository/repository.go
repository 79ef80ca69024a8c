package repository

import (
	"context"

	"evalvault/internal/domain"
)

// Column describes one column of a stored table.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	Default    string
	PrimaryKey bool
}

// TableStructure describes a table's columns and current row count.
type TableStructure struct {
	Table    string
	Columns  []Column
	RowCount int64
}

// Inspector exposes the table-agnostic operations shared by every entity
// repository: structure introspection and row counting. Structure returns
// (nil, nil) for a table that does not exist; it never fails for a missing
// table.
type Inspector interface {
	Structure(ctx context.Context, table string) (*TableStructure, error)
	Count(ctx context.Context, table string) (int64, error)
}

// Users defines data access for the user table.
type Users interface {
	Add(ctx context.Context, username, password, nickname, fullName string) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListAll(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, username string, changes domain.UserChanges) error
	Delete(ctx context.Context, username string) error
}

// Queries defines data access for the query table.
type Queries interface {
	Add(ctx context.Context, lazyQuery, detailQuery string, creatorID *int64, priority *int) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Query, error)
	GetByCreator(ctx context.Context, creatorID int64) ([]*domain.Query, error)
	ListAll(ctx context.Context) ([]*domain.Query, error)
	Update(ctx context.Context, id int64, changes domain.QueryChanges) error
	Delete(ctx context.Context, id int64) error
}

// Evaluations defines data access for the evaluation table, including the
// compound all-or-nothing creation of an evaluation with its deliverables.
type Evaluations interface {
	Add(ctx context.Context, eval *domain.Evaluation) (int64, error)
	AddWithDeliverables(ctx context.Context, eval *domain.Evaluation, deliverables []domain.Deliverable) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Evaluation, error)
	GetByQuery(ctx context.Context, queryID int64) ([]*domain.Evaluation, error)
	GetByEvaluator(ctx context.Context, evaluatorID int64) ([]*domain.Evaluation, error)
	ListAll(ctx context.Context) ([]*domain.Evaluation, error)
	Update(ctx context.Context, id int64, changes domain.EvaluationChanges) error
	Delete(ctx context.Context, id int64) error
}

// Files defines data access for the file table.
type Files interface {
	Add(ctx context.Context, file *domain.File) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.File, error)
	GetByEvaluation(ctx context.Context, evaluationID int64) ([]*domain.File, error)
	GetByType(ctx context.Context, fileType domain.FileType) ([]*domain.File, error)
	GetContent(ctx context.Context, id int64) ([]byte, error)
	ListAll(ctx context.Context) ([]*domain.File, error)
	Update(ctx context.Context, id int64, changes domain.FileChanges) error
	Delete(ctx context.Context, id int64) error
}
