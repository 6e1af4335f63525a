package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/alumni-connect/internal/model"
)

// WorkshopRepo persists workshops and their registration rows.
type WorkshopRepo struct {
	db *sql.DB
}

func NewWorkshopRepo(db *sql.DB) *WorkshopRepo {
	return &WorkshopRepo{db: db}
}

const workshopSelect = `SELECT w.id, w.title, w.description, w.date, w.duration_minutes, w.mode,
	w.location, w.meeting_link, w.target_audience, w.capacity, w.organizer_id, w.status,
	w.created_at, w.updated_at, u.name, u.email
	FROM workshops w
	JOIN users u ON u.id = w.organizer_id`

func scanWorkshop(s rowScanner) (*model.Workshop, error) {
	var (
		w   model.Workshop
		org model.UserRef
	)
	err := s.Scan(&w.ID, &w.Title, &w.Description, &w.Date, &w.DurationMinutes, &w.Mode,
		&w.Location, &w.MeetingLink, &w.TargetAudience, &w.Capacity, &w.OrganizerID, &w.Status,
		&w.CreatedAt, &w.UpdatedAt, &org.Name, &org.Email)
	if err != nil {
		return nil, err
	}
	org.ID = w.OrganizerID
	w.Organizer = &org
	w.Registrations = []*model.Registration{}
	return &w, nil
}

// Create inserts the workshop and fills ID and timestamps.
func (r *WorkshopRepo) Create(ctx context.Context, w *model.Workshop) error {
	if w.Status == "" {
		w.Status = model.WorkshopUpcoming
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO workshops
		 (title, description, date, duration_minutes, mode, location, meeting_link,
		  target_audience, capacity, organizer_id, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		w.Title, w.Description, w.Date, w.DurationMinutes, w.Mode, w.Location, w.MeetingLink,
		w.TargetAudience, w.Capacity, w.OrganizerID, w.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	if w.Registrations == nil {
		w.Registrations = []*model.Registration{}
	}
	return r.db.QueryRowContext(ctx, "SELECT created_at, updated_at FROM workshops WHERE id = ?", w.ID).
		Scan(&w.CreatedAt, &w.UpdatedAt)
}

// GetByID returns the workshop with organizer and registrations populated.
func (r *WorkshopRepo) GetByID(ctx context.Context, id uint64) (*model.Workshop, error) {
	w, err := scanWorkshop(r.db.QueryRowContext(ctx, workshopSelect+" WHERE w.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkshopNotFound
		}
		return nil, err
	}
	if err := r.loadRegistrations(ctx, []*model.Workshop{w}); err != nil {
		return nil, err
	}
	return w, nil
}

// List returns every workshop, latest date first.
func (r *WorkshopRepo) List(ctx context.Context) ([]*model.Workshop, error) {
	return r.query(ctx, workshopSelect+" ORDER BY w.date DESC, w.id DESC")
}

// ListByOrganizer returns the workshops of one organizer, latest date first.
func (r *WorkshopRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]*model.Workshop, error) {
	return r.query(ctx, workshopSelect+" WHERE w.organizer_id = ? ORDER BY w.date DESC, w.id DESC", organizerID)
}

func (r *WorkshopRepo) query(ctx context.Context, q string, args ...any) ([]*model.Workshop, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Workshop{}
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRegistrations(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *WorkshopRepo) loadRegistrations(ctx context.Context, items []*model.Workshop) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Workshop, len(items))
	ids := make([]uint64, 0, len(items))
	for _, w := range items {
		byID[w.ID] = w
		ids = append(ids, w.ID)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.workshop_id, r.user_id, r.registered_at, u.name, u.email
		 FROM workshop_registrations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.workshop_id IN (`+placeholders(len(ids))+`)
		 ORDER BY r.registered_at, r.user_id`, idArgs(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			wid uint64
			reg model.Registration
			ref model.UserRef
		)
		if err := rows.Scan(&wid, &reg.UserID, &reg.RegisteredAt, &ref.Name, &ref.Email); err != nil {
			return err
		}
		ref.ID = reg.UserID
		reg.User = &ref
		if w := byID[wid]; w != nil {
			w.Registrations = append(w.Registrations, &reg)
		}
	}
	return rows.Err()
}

// Update writes every mutable column of w.
func (r *WorkshopRepo) Update(ctx context.Context, w *model.Workshop) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workshops SET title = ?, description = ?, date = ?, duration_minutes = ?, mode = ?,
		 location = ?, meeting_link = ?, target_audience = ?, capacity = ?, status = ?,
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		w.Title, w.Description, w.Date, w.DurationMinutes, w.Mode,
		w.Location, w.MeetingLink, w.TargetAudience, w.Capacity, w.Status, w.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWorkshopNotFound
	}
	return nil
}

// Delete removes the workshop and its registrations in one transaction.
func (r *WorkshopRepo) Delete(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM workshop_registrations WHERE workshop_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM workshops WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWorkshopNotFound
	}
	return nil
}

// AddRegistration registers userID for the workshop.  The workshop row is
// locked while the seat count is checked, so concurrent registrations cannot
// exceed a non-zero capacity.
func (r *WorkshopRepo) AddRegistration(ctx context.Context, workshopID, userID uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var capacity int
	if err = tx.QueryRowContext(ctx, "SELECT capacity FROM workshops WHERE id = ? FOR UPDATE", workshopID).Scan(&capacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWorkshopNotFound
		}
		return err
	}
	if capacity > 0 {
		var taken int
		if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM workshop_registrations WHERE workshop_id = ?", workshopID).Scan(&taken); err != nil {
			return err
		}
		if taken >= capacity {
			return ErrCapacityReached
		}
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO workshop_registrations (workshop_id, user_id) VALUES (?, ?)", workshopID, userID); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// RemoveRegistration deletes the user's registration row.
func (r *WorkshopRepo) RemoveRegistration(ctx context.Context, workshopID, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM workshop_registrations WHERE workshop_id = ? AND user_id = ?", workshopID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}
