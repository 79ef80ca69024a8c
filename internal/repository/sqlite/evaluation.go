package sqlite

import (
	"context"
	"database/sql"

	"evalvault/internal/domain"
	"evalvault/internal/repository"
)

// Evaluations implements repository.Evaluations over the evaluation_form
// table. Its compound write drives the file insert used by Files inside its
// own transaction boundary, so an evaluation and its deliverables become
// visible atomically or not at all.
type Evaluations struct {
	store *Store
}

// NewEvaluations creates the evaluation repository bound to store.
func NewEvaluations(store *Store) *Evaluations {
	return &Evaluations{store: store}
}

// Add inserts an evaluation with no attached files. Equivalent to
// AddWithDeliverables with an empty deliverable list.
func (r *Evaluations) Add(ctx context.Context, eval *domain.Evaluation) (int64, error) {
	return r.AddWithDeliverables(ctx, eval, nil)
}

// AddWithDeliverables inserts an evaluation together with its deliverable
// files as one all-or-nothing unit. Shape violations in deliverables fail
// before any write. If any file insert fails, the evaluation row does not
// persist either.
func (r *Evaluations) AddWithDeliverables(ctx context.Context, eval *domain.Evaluation, deliverables []domain.Deliverable) (int64, error) {
	for _, d := range deliverables {
		if err := d.Validate(); err != nil {
			return 0, repository.Validationf("%v", err)
		}
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, repository.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	if err := requireRow(ctx, tx, "query_form", eval.QueryID, "query"); err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO evaluation_form (query_id, agent, evaluator_id, quality_score,
			trajectory, report_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, eval.QueryID, stringToNull(eval.Agent), int64PtrToNull(eval.EvaluatorID),
		intPtrToNull(eval.QualityScore), stringToNull(eval.Trajectory),
		stringToNull(eval.ReportContent), now())
	if err != nil {
		return 0, repository.Unavailable("insert evaluation", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, repository.Unavailable("read inserted id", err)
	}

	for _, d := range deliverables {
		file := &domain.File{
			EvaluationID: id,
			Filename:     d.Filename,
			Content:      d.Content,
			FileType:     domain.FileTypeDeliverable,
			FileSize:     d.FileSize,
		}
		if _, err := insertFile(ctx, tx, file); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, repository.Unavailable("commit transaction", err)
	}
	return id, nil
}

// GetByID retrieves an evaluation, or (nil, nil) when absent.
func (r *Evaluations) GetByID(ctx context.Context, id int64) (*domain.Evaluation, error) {
	var row evaluationRow
	err := r.store.db.QueryRowContext(ctx,
		`SELECT `+evaluationColumns+` FROM evaluation_form WHERE id = ?`, id).
		Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, repository.Unavailable("query evaluation", err)
	}

	eval, err := row.toDomain()
	if err != nil {
		return nil, repository.Unavailable("decode evaluation row", err)
	}
	return eval, nil
}

// GetByQuery returns the evaluations attached to one query, oldest first.
func (r *Evaluations) GetByQuery(ctx context.Context, queryID int64) ([]*domain.Evaluation, error) {
	return r.list(ctx,
		`SELECT `+evaluationColumns+` FROM evaluation_form WHERE query_id = ? ORDER BY id`, queryID)
}

// GetByEvaluator returns the evaluations performed by one evaluator, oldest first.
func (r *Evaluations) GetByEvaluator(ctx context.Context, evaluatorID int64) ([]*domain.Evaluation, error) {
	return r.list(ctx,
		`SELECT `+evaluationColumns+` FROM evaluation_form WHERE evaluator_id = ? ORDER BY id`, evaluatorID)
}

// ListAll returns every evaluation. An empty table yields an empty slice.
func (r *Evaluations) ListAll(ctx context.Context) ([]*domain.Evaluation, error) {
	return r.list(ctx, `SELECT `+evaluationColumns+` FROM evaluation_form ORDER BY id`)
}

func (r *Evaluations) list(ctx context.Context, query string, args ...any) ([]*domain.Evaluation, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repository.Unavailable("query evaluations", err)
	}
	defer rows.Close()

	evals := []*domain.Evaluation{}
	for rows.Next() {
		var row evaluationRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, repository.Unavailable("scan evaluation row", err)
		}
		eval, err := row.toDomain()
		if err != nil {
			return nil, repository.Unavailable("decode evaluation row", err)
		}
		evals = append(evals, eval)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.Unavailable("iterate evaluations", err)
	}
	return evals, nil
}

// Update applies the non-nil fields of changes to the evaluation and stamps
// updated_at. A missing id yields NotFound and no row change.
func (r *Evaluations) Update(ctx context.Context, id int64, changes domain.EvaluationChanges) error {
	set := []string{}
	args := []any{}

	if changes.Agent != nil {
		set = append(set, "agent = ?")
		args = append(args, stringToNull(*changes.Agent))
	}
	if changes.EvaluatorID != nil {
		set = append(set, "evaluator_id = ?")
		args = append(args, *changes.EvaluatorID)
	}
	if changes.QualityScore != nil {
		set = append(set, "quality_score = ?")
		args = append(args, *changes.QualityScore)
	}
	if changes.Trajectory != nil {
		set = append(set, "trajectory = ?")
		args = append(args, stringToNull(*changes.Trajectory))
	}
	if changes.ReportContent != nil {
		set = append(set, "report_content = ?")
		args = append(args, stringToNull(*changes.ReportContent))
	}
	set = append(set, "updated_at = ?")
	args = append(args, now(), id)

	result, err := r.store.db.ExecContext(ctx,
		`UPDATE evaluation_form SET `+joinSet(set)+` WHERE id = ?`, args...)
	if err != nil {
		return repository.Unavailable("update evaluation", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return repository.Unavailable("read affected rows", err)
	}
	if affected == 0 {
		return repository.NotFoundf("evaluation %d not found", id)
	}
	return nil
}

// Delete removes the evaluation. Dependent files are not cascaded; cleaning
// them up first is the caller's responsibility.
func (r *Evaluations) Delete(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM evaluation_form WHERE id = ?`, id)
	if err != nil {
		return repository.Unavailable("delete evaluation", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return repository.Unavailable("read affected rows", err)
	}
	if affected == 0 {
		return repository.NotFoundf("evaluation %d not found", id)
	}
	return nil
}
