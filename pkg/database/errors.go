package database

import "github.com/cockroachdb/errors"

var (
	ErrFailedToParseDBConfig    = errors.New("database: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("database: failed to open database connection")
	ErrHealthcheckFailed        = errors.New("database: healthcheck failed")
	ErrSetDialect               = errors.New("database migrator: failed to set dialect")
	ErrApplyMigrations          = errors.New("database migrator: failed to apply migrations")

	ErrInvalidIdentifier  = errors.New("database: invalid identifier")
	ErrNoValues           = errors.New("database: no values to write")
	ErrNoConditions       = errors.New("database: statement requires at least one condition")
	ErrOverlappingColumns = errors.New("database: column used in both values and conditions")
	ErrNoTransaction      = errors.New("database: operation requires a transaction")
	ErrBuildQuery         = errors.New("database: can't build sql query")
)
