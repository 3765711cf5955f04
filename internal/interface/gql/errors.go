package gql

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/interface/middleware"
)

// Error codes reported in extensions.code.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL"
)

// Error is a field error carrying a machine-readable code.
type Error struct {
	Message string
	Code    string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

// Extensions is picked up by the executor when formatting the error.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code}
	if len(e.Fields) > 0 {
		ext["fields"] = e.Fields
	}
	return ext
}

var codes = []struct {
	err  error
	code string
}{
	{application.ErrInvalidCredentials, CodeInvalidCredentials},
	{application.ErrInvalidToken, CodeInvalidToken},
	{application.ErrUnauthorized, CodeUnauthorized},
	{application.ErrNotFound, CodeNotFound},
	{application.ErrInvalidArgument, CodeInvalidArgument},
	{application.ErrConflict, CodeConflict},
}

// toError maps a service error onto a coded field error. Anything
// unexpected is logged and hidden behind INTERNAL.
func toError(ctx context.Context, logger logrus.FieldLogger, err error) error {
	var ie *application.InputError
	if errors.As(err, &ie) {
		return &Error{Message: err.Error(), Code: CodeInvalidArgument, Fields: ie.Fields}
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return &Error{Message: err.Error(), Code: c.code}
		}
	}
	if logger != nil {
		logger.WithError(err).WithField("request_id", middleware.RequestIDFrom(ctx)).Error("graphql resolver failed")
	}
	return &Error{Message: "internal error", Code: CodeInternal}
}
