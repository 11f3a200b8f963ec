package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/registration-service/internal/domain"
)

const pgUniqueViolation = "23505"

var postgresDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	timeArg:     func(t time.Time) any { return t },
	fold:        "LOWER",
}

type postgresRegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistrationRepository returns a Postgres-backed implementation.
func NewPostgresRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &postgresRegistrationRepository{pool: pool}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	const query = `
        INSERT INTO registrations (id, full_name, email, phone, age, occupation, goals, experience, status, notes, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.FullName,
		reg.Email,
		reg.Phone,
		reg.Age,
		reg.Occupation,
		reg.Goals,
		reg.Experience,
		reg.Status,
		reg.Notes,
		reg.CreatedAt,
		reg.UpdatedAt,
	)
	return translatePgError(err)
}

func (r *postgresRegistrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	const query = `
        UPDATE registrations SET full_name=$1, email=$2, phone=$3, age=$4, occupation=$5, goals=$6,
            experience=$7, status=$8, notes=$9, updated_at=$10
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		reg.FullName,
		reg.Email,
		reg.Phone,
		reg.Age,
		reg.Occupation,
		reg.Goals,
		reg.Experience,
		reg.Status,
		reg.Notes,
		reg.UpdatedAt,
		reg.ID,
	)
	if err != nil {
		return translatePgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	return r.fetchSingle(ctx, `SELECT `+selectColumns+` FROM registrations WHERE id=$1`, id)
}

func (r *postgresRegistrationRepository) GetByEmail(ctx context.Context, email string) (*domain.Registration, error) {
	return r.fetchSingle(ctx, `SELECT `+selectColumns+` FROM registrations WHERE email=$1`, email)
}

func (r *postgresRegistrationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Registration, error) {
	reg, err := scanPostgresRegistration(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) List(ctx context.Context, filter RegistrationFilter) ([]domain.Registration, error) {
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

func (r *postgresRegistrationRepository) Count(ctx context.Context, filter RegistrationFilter) (int, error) {
	query, args := postgresDialect.countQuery(filter)
	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *postgresRegistrationRepository) Stream(ctx context.Context, filter RegistrationFilter, fn func(*domain.Registration) error) error {
	query, args := postgresDialect.selectQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		reg, err := scanPostgresRegistration(rows)
		if err != nil {
			return err
		}
		if err := fn(reg); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *postgresRegistrationRepository) Stats(ctx context.Context) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	err := r.pool.QueryRow(ctx, statsQuery).Scan(&counts.Total, &counts.Pending, &counts.Approved, &counts.Rejected)
	return counts, err
}

func (r *postgresRegistrationRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	return r.Count(ctx, RegistrationFilter{CreatedFrom: &since})
}

func (r *postgresRegistrationRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.Registration, error) {
	return r.List(ctx, RegistrationFilter{CreatedFrom: &start, CreatedTo: &end, SortBy: SortCreatedAt})
}

func (r *postgresRegistrationRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return r.pool.Ping(ctx)
}

func scanPostgresRegistration(row rowScanner) (*domain.Registration, error) {
	var reg domain.Registration
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
		&reg.CreatedAt,
		&reg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &reg, nil
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, pgErr.ConstraintName)
	}
	return err
}
