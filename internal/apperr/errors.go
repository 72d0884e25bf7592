// Package apperr defines the error kinds surfaced by the service layer.
//
// Each kind is an oops error code. The message of a non-persistence error is
// safe to show to clients; persistence errors wrap the underlying store error
// and must only be logged.
package apperr

import "github.com/samber/oops"

// Kind classifies a service failure independently of any transport.
type Kind string

const (
	KindUnknown     Kind = ""
	KindValidation  Kind = "VALIDATION"
	KindConflict    Kind = "CONFLICT"
	KindAuth        Kind = "AUTH"
	KindNotFound    Kind = "NOT_FOUND"
	KindPersistence Kind = "PERSISTENCE"
)

var kinds = []Kind{KindValidation, KindConflict, KindAuth, KindNotFound, KindPersistence}

// Validation reports missing or malformed input.
func Validation(msg string) error {
	return oops.Code(string(KindValidation)).Errorf("%s", msg)
}

// Conflict reports a uniqueness violation.
func Conflict(msg string) error {
	return oops.Code(string(KindConflict)).Errorf("%s", msg)
}

// Auth reports bad credentials or an unusable token.
func Auth(msg string) error {
	return oops.Code(string(KindAuth)).Errorf("%s", msg)
}

// NotFound reports a missing user or resource.
func NotFound(msg string) error {
	return oops.Code(string(KindNotFound)).Errorf("%s", msg)
}

// Persistence wraps a failed store operation.
func Persistence(err error, operation string, kv ...any) error {
	return oops.Code(string(KindPersistence)).
		With("operation", operation).
		With(kv...).
		Wrap(err)
}

// KindOf returns the kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindUnknown
	}
	for _, k := range kinds {
		if oopsErr.Code() == string(k) {
			return k
		}
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the client-facing message for err. Errors without a
// client-safe kind collapse to a generic message.
func Message(err error) string {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindAuth, KindNotFound:
		return err.Error()
	default:
		return "internal server error"
	}
}
