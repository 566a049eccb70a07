package health

import "github.com/cockroachdb/errors"

var (
	ErrCheckFailed  = errors.New("health: check failed")
	ErrCheckTimeout = errors.New("health: check timeout")
)
