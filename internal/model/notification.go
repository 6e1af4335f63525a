package model

import "time"

const (
	NotifyJobApplication = "job_application"
	NotifyMentorship     = "mentorship"
	NotifyWorkshop       = "workshop"
)

// Notification is a one-way message shown to a user.
type Notification struct {
	ID          uint64    `json:"id"`
	RecipientID uint64    `json:"recipient"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	RelatedID   uint64    `json:"relatedId,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}
