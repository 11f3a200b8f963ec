package dto

import (
	"time"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/service"
)

// CreateRegistrationRequest payload.
type CreateRegistrationRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Age        string `json:"age"`
	Occupation string `json:"occupation"`
	Goals      string `json:"goals"`
	Experience string `json:"experience"`
}

// ToInput converts the request to the intake input.
func (r CreateRegistrationRequest) ToInput() service.IntakeInput {
	return service.IntakeInput{
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      r.Phone,
		Age:        r.Age,
		Occupation: r.Occupation,
		Goals:      r.Goals,
		Experience: r.Experience,
	}
}

// RegistrationReceipt is returned after a successful submission.
type RegistrationReceipt struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// NewRegistrationReceipt maps the service receipt.
func NewRegistrationReceipt(r *service.IntakeReceipt) RegistrationReceipt {
	return RegistrationReceipt{ID: r.ID, FullName: r.FullName, Email: r.Email}
}

// UpdateRegistrationRequest is the applicant-facing partial update.
type UpdateRegistrationRequest struct {
	FullName   domain.Optional[string]          `json:"fullName"`
	Phone      domain.Optional[string]          `json:"phone"`
	Age        domain.Optional[domain.AgeRange] `json:"age"`
	Occupation domain.Optional[string]          `json:"occupation"`
	Goals      domain.Optional[string]          `json:"goals"`
	Experience domain.Optional[string]          `json:"experience"`
}

// ToPatch converts the request to an owner patch.
func (r UpdateRegistrationRequest) ToPatch() service.OwnerPatch {
	return service.OwnerPatch{
		FullName:   r.FullName,
		Phone:      r.Phone,
		Age:        r.Age,
		Occupation: r.Occupation,
		Goals:      r.Goals,
		Experience: r.Experience,
	}
}

// Registration response.
type Registration struct {
	ID         string          `json:"id"`
	FullName   string          `json:"fullName"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Age        domain.AgeRange `json:"age"`
	Occupation string          `json:"occupation"`
	Goals      string          `json:"goals"`
	Experience string          `json:"experience"`
	Status     domain.Status   `json:"status"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// NewRegistration maps a domain record to its response shape.
func NewRegistration(reg *domain.Registration) Registration {
	return Registration{
		ID:         reg.ID,
		FullName:   reg.FullName,
		Email:      reg.Email,
		Phone:      reg.Phone,
		Age:        reg.Age,
		Occupation: reg.Occupation,
		Goals:      reg.Goals,
		Experience: reg.Experience,
		Status:     reg.Status,
		Notes:      reg.Notes,
		CreatedAt:  reg.CreatedAt,
		UpdatedAt:  reg.UpdatedAt,
	}
}

// NewRegistrations maps a slice of records.
func NewRegistrations(regs []domain.Registration) []Registration {
	out := make([]Registration, 0, len(regs))
	for i := range regs {
		out = append(out, NewRegistration(&regs[i]))
	}
	return out
}
