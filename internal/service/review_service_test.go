package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/events"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

func TestReviewService_ListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 45; i++ {
		f.register(t, fmt.Sprintf("Person %02d", i), fmt.Sprintf("p%02d@example.com", i))
	}

	first, err := f.review.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, first.Registrations, 20)
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 3, Total: 45, Limit: 20}, first.Pagination)
	assert.Equal(t, "Person 44", first.Registrations[0].FullName, "newest first by default")

	last, err := f.review.List(ctx, ListQuery{Page: 3, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, last.Registrations, 5)
	assert.Equal(t, 3, last.Pagination.CurrentPage)

	beyond, err := f.review.List(ctx, ListQuery{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, beyond.Registrations)
	assert.Equal(t, 45, beyond.Pagination.Total)
}

func TestReviewService_ListRejectsBadQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, q := range []ListQuery{
		{Page: -1},
		{Limit: -5},
		{Limit: 101},
		{Status: "archived"},
		{SortBy: "password"},
		{Page: math.MaxInt},
		{Page: math.MaxInt/20 + 2, Limit: 20},
	} {
		_, err := f.review.List(ctx, q)
		requireCode(t, err, apperrors.CodeInvalidInput)
	}
}

func TestReviewService_ListSearchAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "Ana Gomez", "gomez@example.com")
	byEmail := f.register(t, "Bruno Diaz", "ana@example.com")
	f.register(t, "Carla Ruiz", "carla@example.com")

	res, err := f.review.List(ctx, ListQuery{Search: "ana"})
	require.NoError(t, err)
	assert.Len(t, res.Registrations, 2)

	_, err = f.review.UpdateStatus(ctx, byEmail.ID, domain.StatusApproved, domain.Optional[string]{})
	require.NoError(t, err)

	res, err = f.review.List(ctx, ListQuery{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, res.Registrations, 1)
	assert.Equal(t, "Bruno Diaz", res.Registrations[0].FullName)

	res, err = f.review.List(ctx, ListQuery{Status: "all", SortBy: "fullName", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, res.Registrations, 3)
	assert.Equal(t, "Ana Gomez", res.Registrations[0].FullName)

	res, err = f.review.List(ctx, ListQuery{SortBy: "fullName", SortOrder: "sideways"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Gomez", res.Registrations[0].FullName, "non-desc order is ascending")
}

func TestReviewService_ListSearchNonASCII(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Élodie Martin", "elodie@example.com")
	f.register(t, "Bruno Diaz", "bruno@example.com")

	for _, term := range []string{"élodie", "ÉLODIE", "Élodie"} {
		res, err := f.review.List(context.Background(), ListQuery{Search: term})
		require.NoError(t, err, term)
		require.Len(t, res.Registrations, 1, term)
		assert.Equal(t, "Élodie Martin", res.Registrations[0].FullName)
		assert.Equal(t, 1, res.Pagination.Total, term)
	}
}

func TestReviewService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	receipt := f.register(t, "Ana Gomez", "ana@example.com")

	updated, err := f.review.UpdateStatus(ctx, receipt.ID, domain.StatusApproved, domain.Some("great fit"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)
	assert.Equal(t, "great fit", updated.Notes)

	_, err = f.review.UpdateStatus(ctx, receipt.ID, domain.Status("archived"), domain.Optional[string]{})
	requireCode(t, err, apperrors.CodeInvalidInput)

	stored, err := f.repo.GetByID(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status, "invalid status leaves the record unchanged")
	assert.Equal(t, []events.EventType{events.EventRegistrationCreated, events.EventRegistrationStatusChanged}, f.events.types())

	_, err = f.review.UpdateStatus(ctx, uuid.NewString(), domain.StatusRejected, domain.Optional[string]{})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestReviewService_UpdateFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := validInput("Ana Gomez", "ana@example.com")
	in.Occupation = "Designer"
	receipt, err := f.intake.Register(ctx, in)
	require.NoError(t, err)

	updated, err := f.review.Update(ctx, receipt.ID, ReviewPatch{
		Occupation: domain.Some(""),
		Notes:      domain.Some("  called on monday "),
	})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Occupation)
	assert.Equal(t, "called on monday", updated.Notes)
	assert.Equal(t, "Ana Gomez", updated.FullName)

	_, err = f.review.Update(ctx, receipt.ID, ReviewPatch{Goals: domain.Some("short")})
	requireCode(t, err, apperrors.CodeInvalidInput)
}

func TestReviewService_ListLargestValidPage(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ana Gomez", "ana@example.com")

	res, err := f.review.List(context.Background(), ListQuery{Page: math.MaxInt/20 + 1, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, res.Registrations)
	assert.Equal(t, 1, res.Pagination.Total)
}

func TestReviewService_MutationsCarryActor(t *testing.T) {
	f := newFixture(t)
	receipt := f.register(t, "Ana Gomez", "ana@example.com")
	ctx := WithActor(context.Background(), "admin-7")

	_, err := f.review.UpdateStatus(ctx, receipt.ID, domain.StatusApproved, domain.Optional[string]{})
	require.NoError(t, err)
	_, err = f.review.Update(ctx, receipt.ID, ReviewPatch{Notes: domain.Some("followed up")})
	require.NoError(t, err)
	require.NoError(t, f.review.Delete(ctx, receipt.ID))

	all := f.events.all()
	require.Len(t, all, 4)
	assert.Empty(t, all[0].ActorID, "public intake has no admin")
	for _, e := range all[1:] {
		assert.Equal(t, events.ActorAdmin, e.Actor)
		assert.Equal(t, "admin-7", e.ActorID, e.Type)
	}
}

func TestReviewService_DeleteTwiceIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	receipt := f.register(t, "Ana Gomez", "ana@example.com")

	require.NoError(t, f.review.Delete(ctx, receipt.ID))
	requireCode(t, f.review.Delete(ctx, receipt.ID), apperrors.CodeNotFound)
	requireCode(t, f.review.Delete(ctx, receipt.ID), apperrors.CodeNotFound)
	requireCode(t, f.review.Delete(ctx, "12345"), apperrors.CodeNotFound)
}

func TestReviewService_ByDateRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "Ana Gomez", "ana@example.com")
	second := f.register(t, "Bruno Diaz", "bruno@example.com")

	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	items, err := f.review.ByDateRange(ctx, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)

	_, err = f.review.ByDateRange(ctx, start.Add(time.Hour), start)
	requireCode(t, err, apperrors.CodeInvalidInput)
}
