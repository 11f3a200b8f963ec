package dto

import (
	"time"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/service"
)

// LoginRequest payload.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is returned on successful admin login.
type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresIn string    `json:"expiresIn"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.Status           `json:"status"`
	Notes  domain.Optional[string] `json:"notes"`
}

// AdminUpdateRequest is the admin partial update.
type AdminUpdateRequest struct {
	FullName   domain.Optional[string]          `json:"fullName"`
	Phone      domain.Optional[string]          `json:"phone"`
	Age        domain.Optional[domain.AgeRange] `json:"age"`
	Occupation domain.Optional[string]          `json:"occupation"`
	Goals      domain.Optional[string]          `json:"goals"`
	Experience domain.Optional[string]          `json:"experience"`
	Notes      domain.Optional[string]          `json:"notes"`
}

// ToPatch converts the request to a review patch.
func (r AdminUpdateRequest) ToPatch() service.ReviewPatch {
	return service.ReviewPatch{
		FullName:   r.FullName,
		Phone:      r.Phone,
		Age:        r.Age,
		Occupation: r.Occupation,
		Goals:      r.Goals,
		Experience: r.Experience,
		Notes:      r.Notes,
	}
}

// Pagination response.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
	Limit       int `json:"limit"`
}

// RegistrationPage is one page of the admin listing.
type RegistrationPage struct {
	Registrations []Registration `json:"registrations"`
	Pagination    Pagination     `json:"pagination"`
}

// NewRegistrationPage maps a list result.
func NewRegistrationPage(res *service.ListResult) RegistrationPage {
	return RegistrationPage{
		Registrations: NewRegistrations(res.Registrations),
		Pagination: Pagination{
			CurrentPage: res.Pagination.CurrentPage,
			TotalPages:  res.Pagination.TotalPages,
			Total:       res.Pagination.Total,
			Limit:       res.Pagination.Limit,
		},
	}
}

// Stats response.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Today     int `json:"today"`
	ThisMonth int `json:"thisMonth"`
}

// NewStats maps a statistics snapshot.
func NewStats(s *service.Snapshot) Stats {
	return Stats{
		Total:     s.Total,
		Pending:   s.Pending,
		Approved:  s.Approved,
		Rejected:  s.Rejected,
		Today:     s.Today,
		ThisMonth: s.ThisMonth,
	}
}
