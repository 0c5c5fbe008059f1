package apperr

import "errors"

// Sentinel errors shared by services. Handlers translate these into HTTP
// status codes; everything else is treated as an internal failure.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidState     = errors.New("invalid state")
	ErrDecryptionFailed = errors.New("decryption failed")
)
