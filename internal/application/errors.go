package application

import (
	"errors"
	"fmt"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-graph/internal/domain/repository"
	"github.com/oksasatya/go-blog-graph/pkg/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("authentication required")
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrConflict           = errors.New("conflict")
)

// storeErr maps repository errors onto the service taxonomy. what names the
// record for the message.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	case errors.Is(err, repo.ErrReferenced):
		return fmt.Errorf("%w: %s is referenced", ErrConflict, what)
	default:
		return err
	}
}

// invalid wraps a validation failure so callers can still read its field details.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var ve *validation.Error
	if errors.As(err, &ve) {
		return &InputError{Fields: ve.Fields}
	}
	return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
}

// InputError is an ErrInvalidArgument carrying field-keyed messages.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	return (&validation.Error{Fields: e.Fields}).Error()
}

func (e *InputError) Unwrap() error { return ErrInvalidArgument }

func requireIdentity(id *entity.Identity) error {
	if id == nil || id.UserID == 0 {
		return ErrUnauthorized
	}
	return nil
}
