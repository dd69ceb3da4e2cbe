package migration

import "errors"

var (
	// ErrSourceUnavailable is the only fatal condition: the legacy MySQL
	// connection could not be opened or used. It aborts the invocation.
	ErrSourceUnavailable = errors.New("migration source unavailable")

	// ErrDuplicateMigration is returned when a re-run of the user
	// migration hits the login-code uniqueness constraint. Users are
	// migrated exactly once by design; callers track what already ran.
	ErrDuplicateMigration = errors.New("users already migrated")
)
