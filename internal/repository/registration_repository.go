package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/registration-service/internal/domain"
)

var (
	// ErrNotFound is returned when no registration matches.
	ErrNotFound = errors.New("registration not found")
	// ErrDuplicateEmail is returned when the store's unique email index rejects a write.
	ErrDuplicateEmail = errors.New("registration email already exists")
)

// SortField is a sortable registration column.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortFullName  SortField = "fullName"
	SortEmail     SortField = "email"
	SortStatus    SortField = "status"
	SortAge       SortField = "age"
)

var sortColumns = map[SortField]string{
	SortCreatedAt: "created_at",
	SortUpdatedAt: "updated_at",
	SortFullName:  "full_name",
	SortEmail:     "email",
	SortStatus:    "status",
	SortAge:       "age",
}

// ParseSortField resolves an API sort key. Empty selects createdAt.
func ParseSortField(s string) (SortField, bool) {
	if s == "" {
		return SortCreatedAt, true
	}
	f := SortField(s)
	_, ok := sortColumns[f]
	return f, ok
}

// RegistrationFilter captures review search parameters.
type RegistrationFilter struct {
	Status      *domain.Status
	SearchTerm  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      SortField
	SortAsc     bool
	Limit       int
	Offset      int
}

// RegistrationRepository encapsulates registration persistence.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	Update(ctx context.Context, reg *domain.Registration) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
	GetByEmail(ctx context.Context, email string) (*domain.Registration, error)
	// List returns one page; Limit <= 0 returns every match.
	List(ctx context.Context, filter RegistrationFilter) ([]domain.Registration, error)
	Count(ctx context.Context, filter RegistrationFilter) (int, error)
	// Stream calls fn for each match in order without materializing the result set.
	Stream(ctx context.Context, filter RegistrationFilter, fn func(*domain.Registration) error) error
	// Stats groups every registration by status in a single aggregation.
	Stats(ctx context.Context) (domain.StatusCounts, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	// GetByDateRange returns registrations created within [start, end], newest first.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.Registration, error)
	Ping(ctx context.Context) error
}

const selectColumns = `id, full_name, email, phone, age, occupation, goals, experience, status, notes, created_at, updated_at`

const statsQuery = `
        SELECT COUNT(*),
               COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0)
        FROM registrations`

// dialect hides placeholder and timestamp encoding differences between stores.
type dialect struct {
	placeholder func(n int) string
	timeArg     func(t time.Time) any

	// fold names the SQL function that lower-cases text for search.
	fold string
}

func (d dialect) whereClause(filter RegistrationFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}

	if filter.Status != nil {
		clauses = append(clauses, "status="+next(string(*filter.Status)))
	}
	if filter.CreatedFrom != nil {
		clauses = append(clauses, "created_at >= "+next(d.timeArg(*filter.CreatedFrom)))
	}
	if filter.CreatedTo != nil {
		clauses = append(clauses, "created_at <= "+next(d.timeArg(*filter.CreatedTo)))
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		// Positional placeholders cannot be reused, so the pattern is bound per column.
		nameArg, emailArg := next(pattern), next(pattern)
		clauses = append(clauses, fmt.Sprintf(`(%[1]s(full_name) LIKE %[2]s ESCAPE '\' OR %[1]s(email) LIKE %[3]s ESCAPE '\')`,
			d.fold, nameArg, emailArg))
	}
	return strings.Join(clauses, " AND "), args
}

func (d dialect) selectQuery(filter RegistrationFilter) (string, []any) {
	where, args := d.whereClause(filter)
	query := fmt.Sprintf(`SELECT %s FROM registrations WHERE %s ORDER BY %s`, selectColumns, where, orderBy(filter))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}
	return query, args
}

func (d dialect) countQuery(filter RegistrationFilter) (string, []any) {
	where, args := d.whereClause(filter)
	return `SELECT COUNT(*) FROM registrations WHERE ` + where, args
}

func orderBy(filter RegistrationFilter) string {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.SortAsc {
		direction = "ASC"
	}
	// id breaks ties so pages never overlap.
	return fmt.Sprintf("%s %s, id %s", column, direction, direction)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// rowScanner is satisfied by pgx.Row(s) and *sql.Row(s).
type rowScanner interface {
	Scan(dest ...any) error
}
