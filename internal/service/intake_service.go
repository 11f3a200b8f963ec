package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/repository"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

// IntakeService handles public registration submissions.
type IntakeService struct {
	registrations repository.RegistrationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	now           Clock
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	Registrations repository.RegistrationRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         Clock
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	return &IntakeService{
		registrations: deps.Registrations,
		dispatcher:    deps.Dispatcher,
		logger:        loggerOrNop(deps.Logger),
		now:           clockOrDefault(deps.Clock),
	}
}

// IntakeInput is a submitted registration form.
type IntakeInput struct {
	FullName   string
	Email      string
	Phone      string
	Age        string
	Occupation string
	Goals      string
	Experience string
}

// IntakeReceipt is the only data echoed back to an applicant.
type IntakeReceipt struct {
	ID       string
	FullName string
	Email    string
}

// OwnerPatch lists the fields an applicant may correct.
type OwnerPatch struct {
	FullName   domain.Optional[string]
	Phone      domain.Optional[string]
	Age        domain.Optional[domain.AgeRange]
	Occupation domain.Optional[string]
	Goals      domain.Optional[string]
	Experience domain.Optional[string]
}

// precheck rejects obviously malformed submissions before touching storage.
func precheck(in IntakeInput) error {
	switch {
	case len([]rune(strings.TrimSpace(in.FullName))) < 2:
		return apperrors.NewValidationError("Full name is required and must be at least 2 characters long", nil)
	case !strings.Contains(in.Email, "@"):
		return apperrors.NewValidationError("Please provide a valid email address", nil)
	case len(strings.TrimSpace(in.Phone)) < 10:
		return apperrors.NewValidationError("Please provide a valid phone number", nil)
	case !domain.AgeRange(in.Age).Valid():
		return apperrors.NewValidationError("Please select a valid age range", nil)
	case len([]rune(strings.TrimSpace(in.Goals))) < 10:
		return apperrors.NewValidationError("Please provide your goals (minimum 10 characters)", nil)
	}
	return nil
}

// Register validates and stores a new pending registration.
func (s *IntakeService) Register(ctx context.Context, in IntakeInput) (*IntakeReceipt, error) {
	if err := precheck(in); err != nil {
		return nil, err
	}

	now := s.now()
	reg := &domain.Registration{
		ID:         uuid.NewString(),
		FullName:   in.FullName,
		Email:      in.Email,
		Phone:      in.Phone,
		Age:        domain.AgeRange(in.Age),
		Occupation: in.Occupation,
		Goals:      in.Goals,
		Experience: in.Experience,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := validateRecord(reg); err != nil {
		return nil, err
	}

	if _, err := s.registrations.GetByEmail(ctx, reg.Email); err == nil {
		return nil, apperrors.NewDuplicateEmail(msgDuplicateEmail)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	// A concurrent submission can pass the lookup; the unique index decides.
	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, mapRepoError(err, reg.ID)
	}

	s.logger.Info("registration created", zap.String("registration_id", reg.ID))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:           events.EventRegistrationCreated,
		RegistrationID: reg.ID,
		Actor:          events.ActorApplicant,
		Timestamp:      now,
		Payload:        events.RegistrationCreatedPayload{Email: reg.Email, Age: reg.Age},
	})

	return &IntakeReceipt{ID: reg.ID, FullName: reg.FullName, Email: reg.Email}, nil
}

// Get returns a registration by id.
func (s *IntakeService) Get(ctx context.Context, id string) (*domain.Registration, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	return reg, nil
}

// Update applies an applicant's corrections.
func (s *IntakeService) Update(ctx context.Context, id string, patch OwnerPatch) (*domain.Registration, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := reg.Apply(domain.RegistrationPatch{
		FullName:   patch.FullName,
		Phone:      patch.Phone,
		Age:        patch.Age,
		Occupation: patch.Occupation,
		Goals:      patch.Goals,
		Experience: patch.Experience,
	})
	if err := validateRecord(reg); err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return reg, nil
	}

	reg.UpdatedAt = s.now()
	if err := s.registrations.Update(ctx, reg); err != nil {
		return nil, mapRepoError(err, id)
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:           events.EventRegistrationUpdated,
		RegistrationID: reg.ID,
		Actor:          events.ActorApplicant,
		Timestamp:      reg.UpdatedAt,
		Payload:        events.RegistrationUpdatedPayload{ChangedFields: changed},
	})
	return reg, nil
}

// Delete removes a registration.
func (s *IntakeService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.registrations.Delete(ctx, id); err != nil {
		return mapRepoError(err, id)
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:           events.EventRegistrationDeleted,
		RegistrationID: id,
		Actor:          events.ActorApplicant,
		Timestamp:      s.now(),
	})
	return nil
}
