package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/testutil"
)

func TestStatsService_Snapshot(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, loc)
	repo := testutil.NewRegistrationRepository(t)
	ctx := context.Background()

	midnight := time.Date(2026, 3, 14, 0, 0, 0, 0, loc)
	created := []struct {
		at     time.Time
		status domain.Status
	}{
		{midnight, domain.StatusPending},
		{midnight.Add(-time.Millisecond), domain.StatusApproved},
		{time.Date(2026, 3, 1, 0, 0, 0, 0, loc), domain.StatusRejected},
		{time.Date(2026, 2, 28, 23, 59, 0, 0, loc), domain.StatusPending},
	}
	for i, c := range created {
		reg := &domain.Registration{
			ID:        uuid.NewString(),
			FullName:  "Person",
			Email:     fmt.Sprintf("p%d@example.com", i),
			Phone:     "1234567890",
			Age:       domain.Age18To25,
			Goals:     "Learn something new",
			Status:    c.status,
			CreatedAt: c.at,
			UpdatedAt: c.at,
		}
		require.NoError(t, repo.Create(ctx, reg))
	}

	svc := NewStatsService(StatsDependencies{
		Registrations: repo,
		Location:      loc,
		Clock:         func() time.Time { return now },
	})
	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{Total: 4, Pending: 2, Approved: 1, Rejected: 1}, snap.StatusCounts)
	assert.Equal(t, 1, snap.Today)
	assert.Equal(t, 3, snap.ThisMonth)
}

func TestStatsService_EmptyStore(t *testing.T) {
	svc := NewStatsService(StatsDependencies{Registrations: testutil.NewRegistrationRepository(t)})
	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, *snap)
}

func TestPeriodStarts_UsesLocalZone(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 20:00 UTC on the last day of March is already April 1st at UTC+9.
	now := time.Date(2026, 3, 31, 20, 0, 0, 0, time.UTC)

	day, month := periodStarts(now, loc)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, loc), day)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, loc), month)
}
