package database

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kbukum/speakerkit/errors"
)

var errClosed = stderrors.New("sql: database is closed")

// unavailable lists driver messages meaning the store cannot serve
// requests right now.
var unavailable = []string{
	"database is locked",
	"database is busy",
	"database is closed",
	"driver: bad connection",
	"unable to open database file",
	"disk i/o error",
}

// IsUnavailable reports whether err means the database cannot be reached
// or is locked.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range unavailable {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// FromDatabase maps a gorm or driver error for resource/id onto the
// service error taxonomy: missing rows become NOT_FOUND, deadlines
// UPSTREAM_TIMEOUT, lock and connection failures UPSTREAM_UNAVAILABLE.
// AppErrors pass through.
func FromDatabase(err error, resource, id string) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.NotFound(resource, id)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.UpstreamTimeout(resource, err)
	case IsUnavailable(err):
		return errors.UpstreamUnavailable(resource, err)
	}
	return errors.DatabaseError(err)
}
