package model

import "time"

// Decision states shared by applications and mentorship requests.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// ValidDecisionStatus reports whether s is pending, accepted or rejected.
func ValidDecisionStatus(s string) bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// CanTransition implements the decision state machine: only a pending record
// can be decided, and a decided record stays where it is.  from == to is
// handled by callers as a no-op.
func CanTransition(from, to string) bool {
	return from == StatusPending && (to == StatusAccepted || to == StatusRejected)
}

// Application records a student's application to an opportunity.
type Application struct {
	ID            uint64          `json:"id"`
	OpportunityID uint64          `json:"-"`
	StudentID     uint64          `json:"-"`
	Status        string          `json:"status"`
	AppliedAt     time.Time       `json:"appliedAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Opportunity   *OpportunityRef `json:"opportunity"`
	Student       *UserRef        `json:"student"`
}

// OpportunityRef is the populated opportunity shown next to an application.
type OpportunityRef struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Budget      string    `json:"budget,omitempty"`
	PaymentType string    `json:"paymentType,omitempty"`
	Deadline    time.Time `json:"deadline"`
	PostedByID  uint64    `json:"postedBy"`
}
