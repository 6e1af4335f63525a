package model

import "time"

// Roles carried in the JWT "role" claim and stored in users.role.
const (
	RoleStudent = "student"
	RoleAlumni  = "alumni"
)

// ValidRole reports whether r is one of the two account roles.
func ValidRole(r string) bool { return r == RoleStudent || r == RoleAlumni }

// User mirrors a row of the users table.  PasswordHash never leaves the
// service layer; it is excluded from JSON.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary is the compact identity returned by auth endpoints.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Ref is the {id, name, email} shape used when populating references.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

type UserSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserRef is a populated reference to another user.
type UserRef struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Profile is stored as a JSON document in users.profile.
type Profile struct {
	Phone          string       `json:"phone,omitempty"`
	College        string       `json:"college,omitempty"`
	Degree         string       `json:"degree,omitempty"`
	GraduationYear int          `json:"graduationYear,omitempty"`
	Bio            string       `json:"bio,omitempty"`
	Company        string       `json:"company,omitempty"`
	Designation    string       `json:"designation,omitempty"`
	Location       string       `json:"location,omitempty"`
	Skills         []string     `json:"skills"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	SocialLinks    SocialLinks  `json:"socialLinks"`
	Visibility     Visibility   `json:"visibility"`
	ResumeURL      string       `json:"resumeUrl,omitempty"`
	ProfilePicture string       `json:"profilePicture,omitempty"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

type Education struct {
	School       string `json:"school"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
}

type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Visibility flags decide which contact fields other users may see.
type Visibility struct {
	ShowEmail bool `json:"showEmail"`
	ShowPhone bool `json:"showPhone"`
}

// Normalize replaces nil slices so the JSON document always carries arrays.
func (p *Profile) Normalize() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
}

// PublicView returns a copy of u as seen by another user: contact details
// are blanked unless the visibility flags allow them.
func (u *User) PublicView() *User {
	cp := *u
	cp.Profile.Normalize()
	if !cp.Profile.Visibility.ShowEmail {
		cp.Email = ""
	}
	if !cp.Profile.Visibility.ShowPhone {
		cp.Profile.Phone = ""
	}
	return &cp
}
