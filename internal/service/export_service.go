package service

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/repository"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

const (
	exportDateLayout      = "2006-01-02"
	exportTimestampLayout = "2006-01-02T15:04:05.000Z"
)

var exportHeader = []string{
	"ID", "Full Name", "Email", "Phone", "Age", "Occupation",
	"Goals", "Experience", "Status", "Notes", "Registration Date",
}

// ExportService renders registrations as CSV.
type ExportService struct {
	registrations repository.RegistrationRepository
	loc           *time.Location
}

// ExportDependencies bundles collaborators for the export service.
type ExportDependencies struct {
	Registrations repository.RegistrationRepository
	Location      *time.Location
}

// NewExportService constructs the service.
func NewExportService(deps ExportDependencies) *ExportService {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{registrations: deps.Registrations, loc: loc}
}

// ExportQuery holds raw export parameters.
type ExportQuery struct {
	Status    string
	StartDate string
	EndDate   string
}

// PrepareFilter validates q and returns the store filter for the export.
// Call it before any bytes are written so bad input still gets a JSON error.
func (s *ExportService) PrepareFilter(q ExportQuery) (repository.RegistrationFilter, error) {
	status, err := ParseStatusFilter(q.Status)
	if err != nil {
		return repository.RegistrationFilter{}, err
	}
	filter := repository.RegistrationFilter{Status: status, SortBy: repository.SortCreatedAt}

	if raw := strings.TrimSpace(q.StartDate); raw != "" {
		start, err := s.parseBound(raw, false)
		if err != nil {
			return repository.RegistrationFilter{}, apperrors.NewValidationError("invalid startDate", map[string]any{"startDate": raw})
		}
		filter.CreatedFrom = &start
	}
	if raw := strings.TrimSpace(q.EndDate); raw != "" {
		end, err := s.parseBound(raw, true)
		if err != nil {
			return repository.RegistrationFilter{}, apperrors.NewValidationError("invalid endDate", map[string]any{"endDate": raw})
		}
		filter.CreatedTo = &end
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedFrom.After(*filter.CreatedTo) {
		return repository.RegistrationFilter{}, apperrors.NewValidationError("startDate must not be after endDate", nil)
	}
	return filter, nil
}

// parseBound accepts a calendar date in the configured zone or an RFC 3339
// timestamp. A calendar end date covers the whole day.
func (s *ExportService) parseBound(raw string, end bool) (time.Time, error) {
	if day, err := time.ParseInLocation(exportDateLayout, raw, s.loc); err == nil {
		if end {
			return day.AddDate(0, 0, 1).Add(-time.Millisecond), nil
		}
		return day, nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}

// Write streams the CSV for filter to w and returns the number of data rows.
func (s *ExportService) Write(ctx context.Context, w io.Writer, filter repository.RegistrationFilter) (int, error) {
	buf := bufio.NewWriter(w)
	if _, err := buf.WriteString(strings.Join(exportHeader, ",") + "\n"); err != nil {
		return 0, err
	}

	rows := 0
	err := s.registrations.Stream(ctx, filter, func(reg *domain.Registration) error {
		rows++
		_, err := buf.WriteString(csvRow(reg))
		return err
	})
	if err != nil {
		_ = buf.Flush()
		return rows, err
	}
	return rows, buf.Flush()
}

// Filename names the export file after the current UTC date.
func (s *ExportService) Filename(now time.Time) string {
	return "registrations_" + now.UTC().Format(exportDateLayout) + ".csv"
}

func csvRow(reg *domain.Registration) string {
	fields := []string{
		reg.ID,
		quoteText(reg.FullName),
		reg.Email,
		reg.Phone,
		string(reg.Age),
		quoteText(reg.Occupation),
		quoteText(reg.Goals),
		quoteText(reg.Experience),
		string(reg.Status),
		quoteText(reg.Notes),
		reg.CreatedAt.UTC().Format(exportTimestampLayout),
	}
	return strings.Join(fields, ",") + "\n"
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// quoteText always quotes free text, doubles inner quotes and keeps the record on one line.
func quoteText(s string) string {
	s = lineBreaks.Replace(s)
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
