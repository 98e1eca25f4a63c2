package services

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	"portfolio/internal/domain"
	apperrors "portfolio/pkg/errors"
)

// Same pattern the browser form uses: one "@", no whitespace, a dot in the
// domain part. RE2's \s is ASCII only; the extra ranges cover the rest of
// what the browser's \s matches.
var emailPattern = regexp.MustCompile(`^[^\s\x0B\p{Z}\x{FEFF}@]+@[^\s\x0B\p{Z}\x{FEFF}@]+\.[^\s\x0B\p{Z}\x{FEFF}@]+$`)

// ValidEmail reports whether s has the local@domain.tld shape. It is a
// syntactic check only.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// validateSubmission checks presence before syntax, so an empty email is
// reported as a missing field.
func validateSubmission(v *validator.Validate, sub domain.Submission) error {
	err := v.Struct(sub)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Wrap(apperrors.ErrCodeInternalError, MsgInternal, err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return apperrors.Wrap(apperrors.ErrCodeValidation, MsgAllFieldsRequired, ErrMissingField)
		}
	}
	return apperrors.Wrap(apperrors.ErrCodeValidation, MsgInvalidEmail, ErrInvalidEmail)
}
