package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/alumni-connect/internal/model"
)

// ApplicationRepo stores (opportunity, student) applications.  The unique
// key on the pair is what prevents double applications under concurrency.
type ApplicationRepo struct {
	db *sql.DB
}

func NewApplicationRepo(db *sql.DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

const applicationSelect = `SELECT a.id, a.opportunity_id, a.student_id, a.status, a.applied_at, a.updated_at,
	o.title, o.budget, o.payment_type, o.deadline, o.posted_by,
	s.name, s.email
	FROM applications a
	JOIN opportunities o ON o.id = a.opportunity_id
	JOIN users s ON s.id = a.student_id`

func scanApplication(sc rowScanner) (*model.Application, error) {
	var (
		a   model.Application
		opp model.OpportunityRef
		st  model.UserRef
	)
	err := sc.Scan(&a.ID, &a.OpportunityID, &a.StudentID, &a.Status, &a.AppliedAt, &a.UpdatedAt,
		&opp.Title, &opp.Budget, &opp.PaymentType, &opp.Deadline, &opp.PostedByID,
		&st.Name, &st.Email)
	if err != nil {
		return nil, err
	}
	opp.ID = a.OpportunityID
	st.ID = a.StudentID
	a.Opportunity = &opp
	a.Student = &st
	return &a, nil
}

// Create inserts a pending application.  A second application for the same
// pair fails with ErrDuplicate.
func (r *ApplicationRepo) Create(ctx context.Context, a *model.Application) error {
	if a.Status == "" {
		a.Status = model.StatusPending
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO applications (opportunity_id, student_id, status) VALUES (?,?,?)",
		a.OpportunityID, a.StudentID, a.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT applied_at, updated_at FROM applications WHERE id = ?", a.ID).
		Scan(&a.AppliedAt, &a.UpdatedAt)
}

// GetByPair returns the application of studentID to opportunityID.
func (r *ApplicationRepo) GetByPair(ctx context.Context, opportunityID, studentID uint64) (*model.Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx,
		applicationSelect+" WHERE a.opportunity_id = ? AND a.student_id = ?", opportunityID, studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	return a, err
}

// UpdateStatus moves the application to status, but only if it is still in
// the expected state.  A concurrent decision therefore makes this call
// return ErrConflict instead of silently overwriting it.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uint64, from, to string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE applications SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?",
		to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByStudent returns the student's applications, newest first.
func (r *ApplicationRepo) ListByStudent(ctx context.Context, studentID uint64) ([]*model.Application, error) {
	return r.query(ctx, applicationSelect+" WHERE a.student_id = ? ORDER BY a.applied_at DESC, a.id DESC", studentID)
}

// ListByPoster returns every application to any posting owned by posterID.
func (r *ApplicationRepo) ListByPoster(ctx context.Context, posterID uint64) ([]*model.Application, error) {
	return r.query(ctx, applicationSelect+" WHERE o.posted_by = ? ORDER BY a.applied_at DESC, a.id DESC", posterID)
}

func (r *ApplicationRepo) query(ctx context.Context, q string, args ...any) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
