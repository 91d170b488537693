// Copyright 2024-2026 Aiku AI

package importer

import "errors"

// Errors that abort a run.
var (
	ErrDuplicateUser       = errors.New("user already registered")
	ErrUnknownUser         = errors.New("unknown user")
	ErrMissingField        = errors.New("missing mandatory field")
	ErrUnresolvedRecipient = errors.New("message recipient could not be resolved")
)
