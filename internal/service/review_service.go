package service

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/repository"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ReviewService coordinates the admin review workflow.
type ReviewService struct {
	registrations repository.RegistrationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	now           Clock
}

// ReviewDependencies bundles collaborators for the review service.
type ReviewDependencies struct {
	Registrations repository.RegistrationRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         Clock
}

// NewReviewService constructs the service.
func NewReviewService(deps ReviewDependencies) *ReviewService {
	return &ReviewService{
		registrations: deps.Registrations,
		dispatcher:    deps.Dispatcher,
		logger:        loggerOrNop(deps.Logger),
		now:           clockOrDefault(deps.Clock),
	}
}

// ListQuery holds raw admin listing parameters. Zero values select defaults.
type ListQuery struct {
	Page      int
	Limit     int
	Status    string
	Search    string
	SortBy    string
	SortOrder string
}

// Pagination describes the page returned by List.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	Total       int
	Limit       int
}

// ListResult is one page of registrations.
type ListResult struct {
	Registrations []domain.Registration
	Pagination    Pagination
}

// ReviewPatch lists the fields an admin may correct.
type ReviewPatch struct {
	FullName   domain.Optional[string]
	Phone      domain.Optional[string]
	Age        domain.Optional[domain.AgeRange]
	Occupation domain.Optional[string]
	Goals      domain.Optional[string]
	Experience domain.Optional[string]
	Notes      domain.Optional[string]
}

// ParseStatusFilter resolves a status query value. Empty and "all" mean no filter.
func ParseStatusFilter(raw string) (*domain.Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}
	status := domain.Status(raw)
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status. Must be pending, approved, or rejected",
			map[string]any{"status": raw})
	}
	return &status, nil
}

func (q ListQuery) filter() (repository.RegistrationFilter, int, int, error) {
	page := q.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return repository.RegistrationFilter{}, 0, 0, apperrors.NewValidationError("page must be a positive integer", map[string]any{"page": q.Page})
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 || limit > MaxPageLimit {
		return repository.RegistrationFilter{}, 0, 0, apperrors.NewValidationError("limit must be between 1 and 100", map[string]any{"limit": q.Limit})
	}
	// The offset (page-1)*limit must fit in an int.
	if page-1 > math.MaxInt/limit {
		return repository.RegistrationFilter{}, 0, 0, apperrors.NewValidationError("page is out of range", map[string]any{"page": q.Page})
	}

	status, err := ParseStatusFilter(q.Status)
	if err != nil {
		return repository.RegistrationFilter{}, 0, 0, err
	}

	sortBy, ok := repository.ParseSortField(q.SortBy)
	if !ok {
		return repository.RegistrationFilter{}, 0, 0, apperrors.NewValidationError("unsupported sort field", map[string]any{"sortBy": q.SortBy})
	}

	return repository.RegistrationFilter{
		Status:     status,
		SearchTerm: strings.TrimSpace(q.Search),
		SortBy:     sortBy,
		SortAsc:    q.SortOrder != "" && !strings.EqualFold(q.SortOrder, "desc"),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}, page, limit, nil
}

// List returns a filtered, sorted page of registrations.
func (s *ReviewService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	filter, page, limit, err := q.filter()
	if err != nil {
		return nil, err
	}

	items, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	total, err := s.registrations.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &ListResult{
		Registrations: items,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  (total + limit - 1) / limit,
			Total:       total,
			Limit:       limit,
		},
	}, nil
}

// Get returns a registration by id.
func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Registration, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	return reg, nil
}

// UpdateStatus moves a registration to a new review status, optionally replacing notes.
func (s *ReviewService) UpdateStatus(ctx context.Context, id string, status domain.Status, notes domain.Optional[string]) (*domain.Registration, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status. Must be pending, approved, or rejected",
			map[string]any{"status": string(status)})
	}
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := reg.Status
	changed := reg.Apply(domain.RegistrationPatch{Status: domain.Some(status), Notes: notes})
	if err := validateRecord(reg); err != nil {
		return nil, err
	}

	reg.UpdatedAt = s.now()
	if err := s.registrations.Update(ctx, reg); err != nil {
		return nil, mapRepoError(err, id)
	}

	s.logger.Info("registration status updated",
		zap.String("registration_id", id),
		zap.String("admin_id", ActorFrom(ctx)),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(reg.Status)))
	if oldStatus != reg.Status {
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:           events.EventRegistrationStatusChanged,
			RegistrationID: id,
			Actor:          events.ActorAdmin,
			Timestamp:      reg.UpdatedAt,
			Payload:        events.RegistrationStatusChangedPayload{OldStatus: oldStatus, NewStatus: reg.Status},
		})
	} else if len(changed) > 0 {
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:           events.EventRegistrationUpdated,
			RegistrationID: id,
			Actor:          events.ActorAdmin,
			Timestamp:      reg.UpdatedAt,
			Payload:        events.RegistrationUpdatedPayload{ChangedFields: changed},
		})
	}
	return reg, nil
}

// Update applies admin corrections to registration fields.
func (s *ReviewService) Update(ctx context.Context, id string, patch ReviewPatch) (*domain.Registration, error) {
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
		Notes:      patch.Notes,
	})
	if err := validateRecord(reg); err != nil {
		return nil, err
	}

	reg.UpdatedAt = s.now()
	if err := s.registrations.Update(ctx, reg); err != nil {
		return nil, mapRepoError(err, id)
	}

	if len(changed) > 0 {
		s.logger.Info("registration updated",
			zap.String("registration_id", id),
			zap.String("admin_id", ActorFrom(ctx)),
			zap.Strings("changed_fields", changed))
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:           events.EventRegistrationUpdated,
			RegistrationID: id,
			Actor:          events.ActorAdmin,
			Timestamp:      reg.UpdatedAt,
			Payload:        events.RegistrationUpdatedPayload{ChangedFields: changed},
		})
	}
	return reg, nil
}

// Delete removes a registration.
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.registrations.Delete(ctx, id); err != nil {
		return mapRepoError(err, id)
	}
	s.logger.Info("registration deleted",
		zap.String("registration_id", id),
		zap.String("admin_id", ActorFrom(ctx)))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:           events.EventRegistrationDeleted,
		RegistrationID: id,
		Actor:          events.ActorAdmin,
		Timestamp:      s.now(),
	})
	return nil
}

// ByDateRange returns registrations created within [start, end], newest first.
func (s *ReviewService) ByDateRange(ctx context.Context, start, end time.Time) ([]domain.Registration, error) {
	if start.After(end) {
		return nil, apperrors.NewValidationError("start must not be after end", nil)
	}
	items, err := s.registrations.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}
