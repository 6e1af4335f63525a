package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/alumni-connect/internal/model"
)

// MentorshipRepo stores mentorship requests.  There is at most one row per
// (student, mentor) pair; a rejected row is reopened rather than duplicated.
type MentorshipRepo struct {
	db *sql.DB
}

func NewMentorshipRepo(db *sql.DB) *MentorshipRepo {
	return &MentorshipRepo{db: db}
}

// The inner joins drop rows whose student or mentor no longer resolves, so
// every listing is normalized the same way.
const mentorshipSelect = `SELECT m.id, m.student_id, m.mentor_id, m.status, COALESCE(m.message, ''),
	m.requested_at, m.created_at, m.updated_at,
	s.id, s.name, s.email, s.password_hash, s.role, s.profile, s.created_at, s.updated_at,
	t.id, t.name, t.email, t.password_hash, t.role, t.profile, t.created_at, t.updated_at
	FROM mentorship_requests m
	JOIN users s ON s.id = m.student_id
	JOIN users t ON t.id = m.mentor_id`

func scanMentorship(sc rowScanner) (*model.MentorshipRequest, error) {
	var (
		m               model.MentorshipRequest
		student, mentor userRow
	)
	dest := []any{&m.ID, &m.StudentID, &m.MentorID, &m.Status, &m.Message,
		&m.RequestedAt, &m.CreatedAt, &m.UpdatedAt}
	dest = append(dest, student.dest()...)
	dest = append(dest, mentor.dest()...)
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}
	var err error
	if m.Student, err = student.user(); err != nil {
		return nil, err
	}
	if m.Mentor, err = mentor.user(); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID returns a populated request.
func (r *MentorshipRepo) GetByID(ctx context.Context, id uint64) (*model.MentorshipRequest, error) {
	m, err := scanMentorship(r.db.QueryRowContext(ctx, mentorshipSelect+" WHERE m.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMentorshipNotFound
	}
	return m, err
}

// GetByPair returns the request of studentID to mentorID, if any.
func (r *MentorshipRepo) GetByPair(ctx context.Context, studentID, mentorID uint64) (*model.MentorshipRequest, error) {
	m, err := scanMentorship(r.db.QueryRowContext(ctx,
		mentorshipSelect+" WHERE m.student_id = ? AND m.mentor_id = ?", studentID, mentorID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMentorshipNotFound
	}
	return m, err
}

// Create inserts a pending request.  A row for the same pair yields ErrDuplicate.
func (r *MentorshipRepo) Create(ctx context.Context, m *model.MentorshipRequest) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO mentorship_requests (student_id, mentor_id, status, message) VALUES (?,?,?,?)",
		m.StudentID, m.MentorID, model.StatusPending, nullIfEmpty(m.Message))
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
	m.ID = uint64(id)
	m.Status = model.StatusPending
	return nil
}

// Reopen flips a rejected request back to pending with a fresh message and
// request time.  It returns ErrConflict if the row is no longer rejected.
func (r *MentorshipRepo) Reopen(ctx context.Context, id uint64, message string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mentorship_requests
		 SET status = ?, message = ?, requested_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.StatusPending, nullIfEmpty(message), id, model.StatusRejected)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateStatus applies a decision if the row is still in state from.
func (r *MentorshipRepo) UpdateStatus(ctx context.Context, id uint64, from, to string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE mentorship_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?",
		to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByStudent returns the student's requests, newest first.
func (r *MentorshipRepo) ListByStudent(ctx context.Context, studentID uint64) ([]*model.MentorshipRequest, error) {
	return r.query(ctx, mentorshipSelect+" WHERE m.student_id = ? ORDER BY m.requested_at DESC, m.id DESC", studentID)
}

// ListByMentor returns the requests addressed to mentorID, newest first.
func (r *MentorshipRepo) ListByMentor(ctx context.Context, mentorID uint64) ([]*model.MentorshipRequest, error) {
	return r.query(ctx, mentorshipSelect+" WHERE m.mentor_id = ? ORDER BY m.requested_at DESC, m.id DESC", mentorID)
}

func (r *MentorshipRepo) query(ctx context.Context, q string, args ...any) ([]*model.MentorshipRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.MentorshipRequest{}
	for rows.Next() {
		m, err := scanMentorship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
