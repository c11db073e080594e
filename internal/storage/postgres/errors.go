package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code raised when an insert hits the
// natural-key unique index.
const uniqueViolation = "23505"

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// IsRetriable reports whether err is a transient database condition worth
// retrying: connection failures, resource exhaustion, admin shutdown,
// serialization conflicts, bad connections and timeouts.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", // connection exception
			"40", // transaction rollback (serialization, deadlock)
			"53", // insufficient resources
			"57": // operator intervention
			return true
		}
	}

	return false
}
