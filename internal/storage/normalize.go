package storage

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// Normalize converts a raw backend error into the storage taxonomy. It is
// called once, at the backend boundary. Errors already in the taxonomy pass
// through unchanged.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record", "")
	case IsUniqueViolation(err):
		e := AlreadyExists("record", "")
		e.cause = err
		return e
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Network(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Network(err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database or disk is full"), strings.Contains(msg, "no space left"):
		return StorageFull(err)
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "broken pipe"):
		return Network(err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "too many connections"):
		return ProviderFailure("backend busy", err)
	}

	return ProviderFailure("storage backend error", err)
}

// IsUniqueViolation detects unique-constraint failures from gorm, postgres
// and sqlite drivers.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
