package adrop

import "errors"

// Error kinds surfaced by the service layer. Callers (the CLI, or an HTTP
// layer) map these to protocol responses; everything else that comes back
// wrapped is a server-side fault (persistence, vault, crypto internals).
//
// ErrNotFound intentionally covers both "no such transfer" and "transfer
// belongs to someone else" so that callers cannot enumerate transfer IDs
// or probe other users' shares.
var (
	// ErrValidation marks malformed caller input: an expiration that is
	// not in the future, a missing filename, a recipient without keys.
	ErrValidation = errors.New("invalid request")

	// ErrNotFound is returned when a transfer or identity does not exist,
	// or when the requester is not the recorded recipient.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned once the transfer's deadline has passed.
	// It supersedes status: even accepted transfers expire.
	ErrExpired = errors.New("transfer expired")

	// ErrAlreadyAccepted is returned when accepting a transfer that has
	// already been accepted. A duplicate accept is rejected, not a no-op,
	// so callers can tell a race from their own success.
	ErrAlreadyAccepted = errors.New("transfer already accepted")

	// ErrInvalidPassword is returned when the access password does not
	// match. The transfer stays Pending and the caller may retry.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrNotAccepted is returned when retrieval is attempted while the
	// transfer is still Pending. Acceptance is the only authorization
	// gate; decryption is never reachable before it.
	ErrNotAccepted = errors.New("transfer not accepted")
)
