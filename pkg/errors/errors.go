package errors

import "errors"

var (
	// ErrMissingPrimaryID means a user record cannot be addressed
	ErrMissingPrimaryID = errors.New("record has no primary_id")
	// ErrMissingCredential means no API key is configured for an environment
	ErrMissingCredential = errors.New("missing api key")
	// ErrSandboxToProduction is the one environment pairing that is never allowed
	ErrSandboxToProduction = errors.New("data cannot flow from sandbox into production")
)
