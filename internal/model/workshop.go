package model

import "time"

const (
	ModeOnline  = "online"
	ModeOffline = "offline"
	ModeHybrid  = "hybrid"
)

const (
	WorkshopUpcoming  = "upcoming"
	WorkshopOngoing   = "ongoing"
	WorkshopCompleted = "completed"
	WorkshopCancelled = "cancelled"
)

// DefaultWorkshopDuration applies when a workshop does not say how long it runs.
const DefaultWorkshopDuration = 120 * time.Minute

func ValidMode(m string) bool { return m == ModeOnline || m == ModeOffline || m == ModeHybrid }

func ValidWorkshopStatus(s string) bool {
	switch s {
	case WorkshopUpcoming, WorkshopOngoing, WorkshopCompleted, WorkshopCancelled:
		return true
	}
	return false
}

// Workshop is an event organized by an alumni.
type Workshop struct {
	ID              uint64          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Date            time.Time       `json:"date"`
	DurationMinutes int             `json:"durationMinutes"`
	Mode            string          `json:"mode"`
	Location        string          `json:"location,omitempty"`
	MeetingLink     string          `json:"meetingLink,omitempty"`
	TargetAudience  string          `json:"targetAudience"`
	Capacity        int             `json:"capacity"`
	OrganizerID     uint64          `json:"-"`
	Organizer       *UserRef        `json:"organizer"`
	Status          string          `json:"status"`
	Registrations   []*Registration `json:"registrations"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Registration is one entry of a workshop's registration list.
type Registration struct {
	UserID       uint64    `json:"-"`
	User         *UserRef  `json:"user"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Duration returns the configured length or the default.
func (w *Workshop) Duration() time.Duration {
	if w.DurationMinutes <= 0 {
		return DefaultWorkshopDuration
	}
	return time.Duration(w.DurationMinutes) * time.Minute
}

// IsRegistered reports whether userID appears in the registration list.
func (w *Workshop) IsRegistered(userID uint64) bool {
	for _, r := range w.Registrations {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// ComputeStatus derives the lifecycle state at time now.  An explicit
// cancelled or completed state always wins; otherwise the state follows the
// clock: upcoming before date, ongoing during [date, date+duration) and
// completed afterwards.
func ComputeStatus(now, date time.Time, duration time.Duration, stored string) string {
	if stored == WorkshopCancelled || stored == WorkshopCompleted {
		return stored
	}
	if duration <= 0 {
		duration = DefaultWorkshopDuration
	}
	switch {
	case now.Before(date):
		return WorkshopUpcoming
	case now.Before(date.Add(duration)):
		return WorkshopOngoing
	default:
		return WorkshopCompleted
	}
}
