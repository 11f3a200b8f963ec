package domain

import (
	"strings"
	"time"
)

// Status is the review outcome of a registration.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// AgeRange is the applicant's self-reported age bracket.
type AgeRange string

const (
	Age18To25 AgeRange = "18-25"
	Age26To30 AgeRange = "26-30"
	Age31To35 AgeRange = "31-35"
	Age36To40 AgeRange = "36-40"
)

// Valid reports whether a is one of the enumerated age ranges.
func (a AgeRange) Valid() bool {
	switch a {
	case Age18To25, Age26To30, Age31To35, Age36To40:
		return true
	}
	return false
}

// Registration is an applicant's submitted form and its review state.
type Registration struct {
	ID         string
	FullName   string
	Email      string
	Phone      string
	Age        AgeRange
	Occupation string
	Goals      string
	Experience string
	Status     Status
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Normalize trims free text and lower-cases the email.
func (r *Registration) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Age = AgeRange(strings.TrimSpace(string(r.Age)))
	r.Occupation = strings.TrimSpace(r.Occupation)
	r.Goals = strings.TrimSpace(r.Goals)
	r.Experience = strings.TrimSpace(r.Experience)
	r.Notes = strings.TrimSpace(r.Notes)
}

// NormalizeEmail returns the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegistrationPatch is a partial update. Only fields with Set=true are applied,
// so an explicit empty string clears a field while an omitted one is kept.
type RegistrationPatch struct {
	FullName   Optional[string]
	Phone      Optional[string]
	Age        Optional[AgeRange]
	Occupation Optional[string]
	Goals      Optional[string]
	Experience Optional[string]
	Notes      Optional[string]
	Status     Optional[Status]
}

// Apply copies the set fields of p onto r and returns the names of the fields
// whose value changed.
func (r *Registration) Apply(p RegistrationPatch) []string {
	var changed []string
	applyString := func(name string, dst *string, opt Optional[string]) {
		if !opt.Set || *dst == opt.Value {
			return
		}
		*dst = opt.Value
		changed = append(changed, name)
	}

	applyString("fullName", &r.FullName, p.FullName)
	applyString("phone", &r.Phone, p.Phone)
	if p.Age.Set && r.Age != p.Age.Value {
		r.Age = p.Age.Value
		changed = append(changed, "age")
	}
	applyString("occupation", &r.Occupation, p.Occupation)
	applyString("goals", &r.Goals, p.Goals)
	applyString("experience", &r.Experience, p.Experience)
	applyString("notes", &r.Notes, p.Notes)
	if p.Status.Set && r.Status != p.Status.Value {
		r.Status = p.Status.Value
		changed = append(changed, "status")
	}
	return changed
}

// StatusCounts aggregates registrations by status.
type StatusCounts struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}
