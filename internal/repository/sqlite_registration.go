package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/spec-kit/registration-service/internal/domain"
)

// sqliteFoldFunc lower-cases with Unicode rules; SQLite's LOWER only folds ASCII.
const sqliteFoldFunc = "unicode_lower"

func init() {
	msqlite.MustRegisterDeterministicScalarFunction(sqliteFoldFunc, 1, foldText)
}

func foldText(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// SQLite stores timestamps as unix milliseconds so range filters and ordering
// compare integers.
var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	timeArg:     func(t time.Time) any { return toMillis(t) },
	fold:        sqliteFoldFunc,
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

type sqliteRegistrationRepository struct {
	db *sql.DB
}

// NewSQLiteRegistrationRepository returns a SQLite-backed implementation.
func NewSQLiteRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &sqliteRegistrationRepository{db: db}
}

func (r *sqliteRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	const query = `
        INSERT INTO registrations (id, full_name, email, phone, age, occupation, goals, experience, status, notes, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	_, err := r.db.ExecContext(ctx, query,
		reg.ID,
		reg.FullName,
		reg.Email,
		reg.Phone,
		string(reg.Age),
		reg.Occupation,
		reg.Goals,
		reg.Experience,
		string(reg.Status),
		reg.Notes,
		toMillis(reg.CreatedAt),
		toMillis(reg.UpdatedAt),
	)
	return translateSQLiteError(err)
}

func (r *sqliteRegistrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	const query = `
        UPDATE registrations SET full_name=?, email=?, phone=?, age=?, occupation=?, goals=?,
            experience=?, status=?, notes=?, updated_at=?
        WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		reg.FullName,
		reg.Email,
		reg.Phone,
		string(reg.Age),
		reg.Occupation,
		reg.Goals,
		reg.Experience,
		string(reg.Status),
		reg.Notes,
		toMillis(reg.UpdatedAt),
		reg.ID,
	)
	if err != nil {
		return translateSQLiteError(err)
	}
	return requireAffected(res)
}

func (r *sqliteRegistrationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	return r.fetchSingle(ctx, `SELECT `+selectColumns+` FROM registrations WHERE id=?`, id)
}

func (r *sqliteRegistrationRepository) GetByEmail(ctx context.Context, email string) (*domain.Registration, error) {
	return r.fetchSingle(ctx, `SELECT `+selectColumns+` FROM registrations WHERE email=?`, email)
}

func (r *sqliteRegistrationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Registration, error) {
	reg, err := scanSQLiteRegistration(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *sqliteRegistrationRepository) List(ctx context.Context, filter RegistrationFilter) ([]domain.Registration, error) {
	result := []domain.Registration{}
	err := r.Stream(ctx, filter, func(reg *domain.Registration) error {
		result = append(result, *reg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *sqliteRegistrationRepository) Count(ctx context.Context, filter RegistrationFilter) (int, error) {
	query, args := sqliteDialect.countQuery(filter)
	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *sqliteRegistrationRepository) Stream(ctx context.Context, filter RegistrationFilter, fn func(*domain.Registration) error) error {
	query, args := sqliteDialect.selectQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		reg, err := scanSQLiteRegistration(rows)
		if err != nil {
			return err
		}
		if err := fn(reg); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *sqliteRegistrationRepository) Stats(ctx context.Context) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	err := r.db.QueryRowContext(ctx, statsQuery).Scan(&counts.Total, &counts.Pending, &counts.Approved, &counts.Rejected)
	return counts, err
}

func (r *sqliteRegistrationRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	return r.Count(ctx, RegistrationFilter{CreatedFrom: &since})
}

func (r *sqliteRegistrationRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.Registration, error) {
	return r.List(ctx, RegistrationFilter{CreatedFrom: &start, CreatedTo: &end, SortBy: SortCreatedAt})
}

func (r *sqliteRegistrationRepository) Ping(ctx context.Context) error {
	if r.db == nil {
		return errors.New("sqlite db not configured")
	}
	return r.db.PingContext(ctx)
}

func scanSQLiteRegistration(row rowScanner) (*domain.Registration, error) {
	var (
		reg       domain.Registration
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&reg.ID,
		&reg.FullName,
		&reg.Email,
		&reg.Phone,
		&reg.Age,
		&reg.Occupation,
		&reg.Goals,
		&reg.Experience,
		&reg.Status,
		&reg.Notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	reg.CreatedAt = fromMillis(createdAt)
	reg.UpdatedAt = fromMillis(updatedAt)
	return &reg, nil
}

func translateSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, sqliteErr.Error())
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed: registrations.email") {
		return ErrDuplicateEmail
	}
	return err
}
