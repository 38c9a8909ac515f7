package gate

import "errors"

// Sentinel errors returned by Authorize.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
	ErrNoRole          = errors.New("subject has no role")
)
