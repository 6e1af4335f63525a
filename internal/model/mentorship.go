package model

import "time"

// MentorshipRequest is a student's request to be mentored by an alumni.
// The decision states are the same as for applications.
type MentorshipRequest struct {
	ID          uint64    `json:"id"`
	StudentID   uint64    `json:"-"`
	MentorID    uint64    `json:"-"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Student     *User     `json:"student"`
	Mentor      *User     `json:"mentor"`
}

// Active reports whether the request blocks a new one for the same pair.
func (m *MentorshipRequest) Active() bool {
	return m.Status == StatusPending || m.Status == StatusAccepted
}
