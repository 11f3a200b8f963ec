package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ViolationReason classifies why a field was rejected.
type ViolationReason string

const (
	ReasonMissing         ViolationReason = "missing"
	ReasonTooShort        ViolationReason = "too_short"
	ReasonTooLong         ViolationReason = "too_long"
	ReasonPatternMismatch ViolationReason = "pattern_mismatch"
	ReasonNotInEnum       ViolationReason = "not_in_enum"
)

// FieldViolation describes a single rejected field.
type FieldViolation struct {
	Field   string          `json:"field"`
	Reason  ViolationReason `json:"reason"`
	Message string          `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

var (
	emailPattern = regexp.MustCompile(`^\w+([.+-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]\d{0,15}$`)
)

// registrationRules mirrors Registration with the API field names used in
// violation reports.
type registrationRules struct {
	FullName   string `json:"fullName" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,max=254,reg_email"`
	Phone      string `json:"phone" validate:"required,reg_phone"`
	Age        string `json:"age" validate:"required,oneof=18-25 26-30 31-35 36-40"`
	Occupation string `json:"occupation" validate:"max=100"`
	Goals      string `json:"goals" validate:"required,min=10,max=1000"`
	Experience string `json:"experience" validate:"max=1000"`
	Status     string `json:"status" validate:"required,oneof=pending approved rejected"`
	Notes      string `json:"notes" validate:"max=500"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("reg_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("reg_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks every field constraint. Call Normalize first; lengths are
// measured on the stored (trimmed) form.
func (r *Registration) Validate() error {
	rules := registrationRules{
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      r.Phone,
		Age:        string(r.Age),
		Occupation: r.Occupation,
		Goals:      r.Goals,
		Experience: r.Experience,
		Status:     string(r.Status),
		Notes:      r.Notes,
	}
	err := validate.Struct(rules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Violations: make([]FieldViolation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		reason := reasonFor(fe.Tag())
		out.Violations = append(out.Violations, FieldViolation{
			Field:   fe.Field(),
			Reason:  reason,
			Message: violationMessage(fe.Field(), reason, fe.Param()),
		})
	}
	return out
}

func reasonFor(tag string) ViolationReason {
	switch tag {
	case "required":
		return ReasonMissing
	case "min":
		return ReasonTooShort
	case "max":
		return ReasonTooLong
	case "oneof":
		return ReasonNotInEnum
	default:
		return ReasonPatternMismatch
	}
}

var fieldLabels = map[string]string{
	"fullName":   "Full name",
	"email":      "Email",
	"phone":      "Phone number",
	"age":        "Age range",
	"occupation": "Occupation",
	"goals":      "Goals",
	"experience": "Experience",
	"status":     "Status",
	"notes":      "Notes",
}

func violationMessage(field string, reason ViolationReason, param string) string {
	label := fieldLabels[field]
	if label == "" {
		label = field
	}
	switch reason {
	case ReasonMissing:
		return label + " is required"
	case ReasonTooShort:
		return fmt.Sprintf("%s must be at least %s characters long", label, param)
	case ReasonTooLong:
		return fmt.Sprintf("%s cannot exceed %s characters", label, param)
	case ReasonNotInEnum:
		if field == "age" {
			return "Please select a valid age range"
		}
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	default:
		return "Please enter a valid " + strings.ToLower(label)
	}
}
