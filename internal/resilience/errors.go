package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// transientPatterns match driver messages for conditions that clear on
// their own.
var transientPatterns = []string{
	"connection reset by peer",
	"connection refused",
	"broken pipe",
	"i/o timeout",
	"database is locked",
	"database table is locked",
	"sqlite_busy",
	"the database system is starting up",
	"too many clients",
}

// IsTransient reports whether err is worth retrying: network timeouts,
// refused or reset connections, Postgres start-up and SQLite lock errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
