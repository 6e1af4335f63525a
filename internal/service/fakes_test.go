package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/alumni-connect/internal/model"
	"github.com/iliyamo/alumni-connect/internal/queue"
	"github.com/iliyamo/alumni-connect/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL repositories.  It enforces
// the same unique keys and returns the same sentinel errors.
type memDB struct {
	mu    sync.Mutex
	seq   uint64
	clock time.Time

	users         map[uint64]*model.User
	opps          map[uint64]*model.Opportunity
	apps          map[uint64]*model.Application
	mentorships   map[uint64]*model.MentorshipRequest
	workshops     map[uint64]*model.Workshop
	registrations map[uint64][]*model.Registration
	notifications map[uint64]*model.Notification
}

func newMemDB() *memDB {
	return &memDB{
		clock:         time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		users:         map[uint64]*model.User{},
		opps:          map[uint64]*model.Opportunity{},
		apps:          map[uint64]*model.Application{},
		mentorships:   map[uint64]*model.MentorshipRequest{},
		workshops:     map[uint64]*model.Workshop{},
		registrations: map[uint64][]*model.Registration{},
		notifications: map[uint64]*model.Notification{},
	}
}

// tick returns a strictly increasing timestamp so "newest first" is stable.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) nextID() uint64 {
	db.seq++
	return db.seq
}

// ---- users ----

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range r.db.users {
		if other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.db.nextID()
	u.CreatedAt = r.db.tick()
	u.UpdatedAt = u.CreatedAt
	u.Profile.Normalize()
	cp := *u
	r.db.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.user(id)
}

func (db *memDB) user(id uint64) (*model.User, error) {
	u, ok := db.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) ListByRole(_ context.Context, role string) ([]*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*model.User{}
	for _, u := range r.db.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memUsers) UpdateProfile(_ context.Context, id uint64, name string, p model.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	p.Normalize()
	u.Name = name
	u.Profile = p
	u.UpdatedAt = r.db.tick()
	return nil
}

// ---- opportunities ----

type memOpps struct{ db *memDB }

func (r memOpps) Create(_ context.Context, o *model.Opportunity) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o.ID = r.db.nextID()
	o.CreatedAt = r.db.tick()
	cp := *o
	r.db.opps[o.ID] = &cp
	return nil
}

func (db *memDB) populateOpp(o *model.Opportunity) *model.Opportunity {
	cp := *o
	if u, ok := db.users[o.PostedByID]; ok {
		cp.PostedBy = u.Ref()
	}
	cp.Applicants = []*model.UserRef{}
	var apps []*model.Application
	for _, a := range db.apps {
		if a.OpportunityID == o.ID {
			apps = append(apps, a)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	for _, a := range apps {
		if u, ok := db.users[a.StudentID]; ok {
			cp.Applicants = append(cp.Applicants, u.Ref())
		}
	}
	return &cp
}

func (r memOpps) GetByID(_ context.Context, id uint64) (*model.Opportunity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.opps[id]
	if !ok {
		return nil, repository.ErrOpportunityNotFound
	}
	return r.db.populateOpp(o), nil
}

func (r memOpps) list(filter func(*model.Opportunity) bool) []*model.Opportunity {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*model.Opportunity{}
	for _, o := range r.db.opps {
		if filter(o) {
			out = append(out, r.db.populateOpp(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memOpps) List(context.Context) ([]*model.Opportunity, error) {
	return r.list(func(*model.Opportunity) bool { return true }), nil
}

func (r memOpps) ListByPoster(_ context.Context, posterID uint64) ([]*model.Opportunity, error) {
	return r.list(func(o *model.Opportunity) bool { return o.PostedByID == posterID }), nil
}

func (r memOpps) DeleteByIDAndOwner(_ context.Context, id, ownerID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.opps[id]
	if !ok {
		return repository.ErrOpportunityNotFound
	}
	if o.PostedByID != ownerID {
		return repository.ErrForbidden
	}
	for _, a := range r.db.apps {
		if a.OpportunityID == id {
			return repository.ErrConflict
		}
	}
	delete(r.db.opps, id)
	return nil
}

// ---- applications ----

type memApps struct{ db *memDB }

func (r memApps) Create(_ context.Context, a *model.Application) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.apps {
		if other.OpportunityID == a.OpportunityID && other.StudentID == a.StudentID {
			return repository.ErrDuplicate
		}
	}
	a.ID = r.db.nextID()
	a.AppliedAt = r.db.tick()
	a.UpdatedAt = a.AppliedAt
	cp := *a
	r.db.apps[a.ID] = &cp
	return nil
}

func (db *memDB) populateApp(a *model.Application) *model.Application {
	cp := *a
	if o, ok := db.opps[a.OpportunityID]; ok {
		cp.Opportunity = &model.OpportunityRef{ID: o.ID, Title: o.Title, Budget: o.Budget,
			PaymentType: o.PaymentType, Deadline: o.Deadline, PostedByID: o.PostedByID}
	}
	if u, ok := db.users[a.StudentID]; ok {
		cp.Student = u.Ref()
	}
	return &cp
}

func (r memApps) GetByPair(_ context.Context, opportunityID, studentID uint64) (*model.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.apps {
		if a.OpportunityID == opportunityID && a.StudentID == studentID {
			return r.db.populateApp(a), nil
		}
	}
	return nil, repository.ErrApplicationNotFound
}

func (r memApps) UpdateStatus(_ context.Context, id uint64, from, to string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.apps[id]
	if !ok || a.Status != from {
		return repository.ErrConflict
	}
	a.Status = to
	a.UpdatedAt = r.db.tick()
	return nil
}

func (r memApps) list(filter func(*model.Application) bool) []*model.Application {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*model.Application{}
	for _, a := range r.db.apps {
		if filter(a) {
			out = append(out, r.db.populateApp(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out
}

func (r memApps) ListByStudent(_ context.Context, studentID uint64) ([]*model.Application, error) {
	return r.list(func(a *model.Application) bool { return a.StudentID == studentID }), nil
}

func (r memApps) ListByPoster(_ context.Context, posterID uint64) ([]*model.Application, error) {
	return r.list(func(a *model.Application) bool {
		o, ok := r.db.opps[a.OpportunityID]
		return ok && o.PostedByID == posterID
	}), nil
}

// ---- mentorship ----

type memMentorship struct{ db *memDB }

func (r memMentorship) Create(_ context.Context, m *model.MentorshipRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.mentorships {
		if other.StudentID == m.StudentID && other.MentorID == m.MentorID {
			return repository.ErrDuplicate
		}
	}
	m.ID = r.db.nextID()
	m.Status = model.StatusPending
	m.RequestedAt = r.db.tick()
	m.CreatedAt, m.UpdatedAt = m.RequestedAt, m.RequestedAt
	cp := *m
	r.db.mentorships[m.ID] = &cp
	return nil
}

// populate returns nil when a side no longer resolves, like the inner join.
func (db *memDB) populateMentorship(m *model.MentorshipRequest) *model.MentorshipRequest {
	cp := *m
	s, err := db.user(m.StudentID)
	if err != nil {
		return nil
	}
	t, err := db.user(m.MentorID)
	if err != nil {
		return nil
	}
	cp.Student, cp.Mentor = s, t
	return &cp
}

func (r memMentorship) GetByID(_ context.Context, id uint64) (*model.MentorshipRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.mentorships[id]
	if !ok {
		return nil, repository.ErrMentorshipNotFound
	}
	if p := r.db.populateMentorship(m); p != nil {
		return p, nil
	}
	return nil, repository.ErrMentorshipNotFound
}

func (r memMentorship) GetByPair(_ context.Context, studentID, mentorID uint64) (*model.MentorshipRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, m := range r.db.mentorships {
		if m.StudentID == studentID && m.MentorID == mentorID {
			if p := r.db.populateMentorship(m); p != nil {
				return p, nil
			}
		}
	}
	return nil, repository.ErrMentorshipNotFound
}

func (r memMentorship) Reopen(_ context.Context, id uint64, message string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.mentorships[id]
	if !ok || m.Status != model.StatusRejected {
		return repository.ErrConflict
	}
	m.Status = model.StatusPending
	m.Message = message
	m.RequestedAt = r.db.tick()
	m.UpdatedAt = m.RequestedAt
	return nil
}

func (r memMentorship) UpdateStatus(_ context.Context, id uint64, from, to string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.mentorships[id]
	if !ok || m.Status != from {
		return repository.ErrConflict
	}
	m.Status = to
	m.UpdatedAt = r.db.tick()
	return nil
}

func (r memMentorship) list(filter func(*model.MentorshipRequest) bool) []*model.MentorshipRequest {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*model.MentorshipRequest{}
	for _, m := range r.db.mentorships {
		if !filter(m) {
			continue
		}
		if p := r.db.populateMentorship(m); p != nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out
}

func (r memMentorship) ListByStudent(_ context.Context, studentID uint64) ([]*model.MentorshipRequest, error) {
	return r.list(func(m *model.MentorshipRequest) bool { return m.StudentID == studentID }), nil
}

func (r memMentorship) ListByMentor(_ context.Context, mentorID uint64) ([]*model.MentorshipRequest, error) {
	return r.list(func(m *model.MentorshipRequest) bool { return m.MentorID == mentorID }), nil
}

// ---- workshops ----

type memWorkshops struct{ db *memDB }

func (r memWorkshops) Create(_ context.Context, w *model.Workshop) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	w.ID = r.db.nextID()
	w.CreatedAt = r.db.tick()
	w.UpdatedAt = w.CreatedAt
	w.Registrations = []*model.Registration{}
	cp := *w
	r.db.workshops[w.ID] = &cp
	return nil
}

func (db *memDB) populateWorkshop(w *model.Workshop) *model.Workshop {
	cp := *w
	if u, ok := db.users[w.OrganizerID]; ok {
		cp.Organizer = u.Ref()
	}
	cp.Registrations = []*model.Registration{}
	for _, reg := range db.registrations[w.ID] {
		r := *reg
		if u, ok := db.users[reg.UserID]; ok {
			r.User = u.Ref()
		}
		cp.Registrations = append(cp.Registrations, &r)
	}
	return &cp
}

func (r memWorkshops) GetByID(_ context.Context, id uint64) (*model.Workshop, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	w, ok := r.db.workshops[id]
	if !ok {
		return nil, repository.ErrWorkshopNotFound
	}
	return r.db.populateWorkshop(w), nil
}

func (r memWorkshops) list(filter func(*model.Workshop) bool) []*model.Workshop {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*model.Workshop{}
	for _, w := range r.db.workshops {
		if filter(w) {
			out = append(out, r.db.populateWorkshop(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r memWorkshops) List(context.Context) ([]*model.Workshop, error) {
	return r.list(func(*model.Workshop) bool { return true }), nil
}

func (r memWorkshops) ListByOrganizer(_ context.Context, organizerID uint64) ([]*model.Workshop, error) {
	return r.list(func(w *model.Workshop) bool { return w.OrganizerID == organizerID }), nil
}

func (r memWorkshops) Update(_ context.Context, w *model.Workshop) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.workshops[w.ID]; !ok {
		return repository.ErrWorkshopNotFound
	}
	cp := *w
	cp.Registrations = nil
	cp.UpdatedAt = r.db.tick()
	r.db.workshops[w.ID] = &cp
	return nil
}

func (r memWorkshops) Delete(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.workshops[id]; !ok {
		return repository.ErrWorkshopNotFound
	}
	delete(r.db.workshops, id)
	delete(r.db.registrations, id)
	return nil
}

func (r memWorkshops) AddRegistration(_ context.Context, workshopID, userID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	w, ok := r.db.workshops[workshopID]
	if !ok {
		return repository.ErrWorkshopNotFound
	}
	regs := r.db.registrations[workshopID]
	for _, reg := range regs {
		if reg.UserID == userID {
			return repository.ErrDuplicate
		}
	}
	if w.Capacity > 0 && len(regs) >= w.Capacity {
		return repository.ErrCapacityReached
	}
	r.db.registrations[workshopID] = append(regs, &model.Registration{UserID: userID, RegisteredAt: r.db.tick()})
	return nil
}

func (r memWorkshops) RemoveRegistration(_ context.Context, workshopID, userID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	regs := r.db.registrations[workshopID]
	for i, reg := range regs {
		if reg.UserID == userID {
			r.db.registrations[workshopID] = append(regs[:i:i], regs[i+1:]...)
			return nil
		}
	}
	return repository.ErrRegistrationNotFound
}

// ---- notifications ----

type memNotifications struct{ db *memDB }

func (r memNotifications) Create(_ context.Context, n *model.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n.ID = r.db.nextID()
	n.CreatedAt = r.db.tick()
	cp := *n
	r.db.notifications[n.ID] = &cp
	return nil
}

func (r memNotifications) ListByRecipient(_ context.Context, recipientID uint64) ([]*model.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*model.Notification{}
	for _, n := range r.db.notifications {
		if n.RecipientID == recipientID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memNotifications) MarkRead(_ context.Context, id, recipientID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return repository.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

func (r memNotifications) MarkAllRead(_ context.Context, recipientID uint64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var changed int64
	for _, n := range r.db.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

// ---- side channels ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.NotificationCreatedEvent
	err    error
}

func (p *recordingPublisher) PublishNotification(_ context.Context, ev queue.NotificationCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type memPictures struct {
	saved   []string
	removed []string
	err     error
}

func (p *memPictures) Save(r io.Reader) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	path := "/uploads/pic-" + string(rune('a'+len(p.saved))) + ".png"
	p.saved = append(p.saved, path)
	return path, nil
}

func (p *memPictures) Remove(public string) error {
	p.removed = append(p.removed, public)
	return nil
}

var errBoom = errors.New("boom")
