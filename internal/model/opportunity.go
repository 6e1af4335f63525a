package model

import "time"

const (
	PaymentFixed  = "Fixed"
	PaymentHourly = "Hourly"
)

var experienceLevels = map[string]bool{"Beginner": true, "Intermediate": true, "Expert": true}

func ValidPaymentType(p string) bool { return p == PaymentFixed || p == PaymentHourly }

func ValidExperienceLevel(l string) bool { return experienceLevels[l] }

// Opportunity is a freelance job posted by an alumni.  Applicants are not
// stored on the row; they are derived from the applications table.
type Opportunity struct {
	ID                  uint64     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Category            string     `json:"category,omitempty"`
	RequiredSkills      []string   `json:"requiredSkills"`
	ExperienceLevel     string     `json:"experienceLevel"`
	Deliverables        string     `json:"deliverables"`
	StartDate           time.Time  `json:"startDate"`
	Deadline            time.Time  `json:"deadline"`
	ApplicationDeadline time.Time  `json:"applicationDeadline"`
	Budget              string     `json:"budget"`
	PaymentType         string     `json:"paymentType"`
	ContactName         string     `json:"contactName"`
	ContactEmail        string     `json:"contactEmail"`
	PostedByID          uint64     `json:"-"`
	PostedBy            *UserRef   `json:"postedBy"`
	Applicants          []*UserRef `json:"applicants"`
	CreatedAt           time.Time  `json:"createdAt"`
}
