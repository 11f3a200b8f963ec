package service

import (
	"context"
	"time"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/repository"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

// StatsService computes review dashboard counters.
type StatsService struct {
	registrations repository.RegistrationRepository
	loc           *time.Location
	now           Clock
}

// StatsDependencies bundles collaborators for the stats service.
type StatsDependencies struct {
	Registrations repository.RegistrationRepository
	Location      *time.Location
	Clock         Clock
}

// NewStatsService constructs the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{
		registrations: deps.Registrations,
		loc:           loc,
		now:           clockOrDefault(deps.Clock),
	}
}

// Snapshot is a point-in-time view of registration counts.
type Snapshot struct {
	domain.StatusCounts
	Today     int
	ThisMonth int
}

// Snapshot recomputes every counter from the store.
func (s *StatsService) Snapshot(ctx context.Context) (*Snapshot, error) {
	counts, err := s.registrations.Stats(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	startOfDay, startOfMonth := periodStarts(s.now(), s.loc)
	today, err := s.registrations.CountCreatedSince(ctx, startOfDay)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	thisMonth, err := s.registrations.CountCreatedSince(ctx, startOfMonth)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &Snapshot{StatusCounts: counts, Today: today, ThisMonth: thisMonth}, nil
}

// periodStarts returns local midnight today and local midnight on the first of the month.
func periodStarts(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), time.Date(y, m, 1, 0, 0, 0, 0, loc)
}
