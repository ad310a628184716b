package service

import (
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"wallapi/internal/repository"
)

var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrAccountInactive    = fmt.Errorf("%w: account inactive", ErrForbidden)
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrSlugTaken          = fmt.Errorf("%w: slug already in use", ErrConflict)
	ErrLastAdmin          = fmt.Errorf("%w: last active admin", ErrConflict)
	ErrCannotDeleteSelf   = fmt.Errorf("%w: cannot delete own account", ErrForbidden)
	ErrWrongPassword      = fmt.Errorf("%w: current password does not match", ErrInvalidInput)
	ErrInvalidPath        = fmt.Errorf("%w: invalid path", ErrInvalidInput)
	ErrRootUndeletable    = fmt.Errorf("%w: uploads root cannot be deleted", ErrForbidden)
	ErrFileType           = fmt.Errorf("%w: file type not allowed", ErrInvalidInput)
	ErrFileTooLarge       = fmt.Errorf("%w: file too large", ErrInvalidInput)
)

// Validation reasons. They double as i18n keys under "validation.".
const (
	ReasonRequired      = "required"
	ReasonInvalid       = "invalid"
	ReasonTooShort      = "too_short"
	ReasonTooLong       = "too_long"
	ReasonOutOfRange    = "out_of_range"
	ReasonSameAsCurrent = "same_as_current"
)

// ValidationError reports the first invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ListResult is the service-level DTO for paginated lists.
type ListResult[T any] struct {
	Items  []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func page(limit, offset, defLimit, maxLimit int) repository.PageQuery {
	if limit <= 0 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

// notFound maps a repository miss to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func requireText(field, v string, maxLen int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid(field, ReasonRequired)
	}
	if maxLen > 0 && utf8.RuneCountInString(v) > maxLen {
		return "", invalid(field, ReasonTooLong)
	}
	return v, nil
}

func normalizeEmail(field, v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", invalid(field, ReasonRequired)
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", invalid(field, ReasonInvalid)
	}
	return v, nil
}

// optionalText trims v and turns blanks into nil.
func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
