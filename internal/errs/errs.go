// Package errs defines the tagged error kinds surfaced by the chat engine
// (spec.md §7). Every kind is a typed value compatible with errors.As, so
// callers can switch on kind without string-matching messages.
package errs

import "fmt"

// NotFoundError reports that an entity of the given kind and id does not
// exist. Recovered locally: translated into a *_ERROR: wire reply.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NotFound constructs a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// DuplicateError reports a uniqueness violation on entity.
type DuplicateError struct {
	Entity  string
	Message string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Entity, e.Message)
}

// Duplicate constructs a DuplicateError.
func Duplicate(entity, message string) error {
	return &DuplicateError{Entity: entity, Message: message}
}

// ValidationError reports that a field failed a precondition check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validation constructs a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PermissionDeniedError reports an authorization failure. Recovered locally;
// emits a security event at the call site.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	if e.Reason == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Reason
}

// PermissionDenied constructs a PermissionDeniedError.
func PermissionDenied(reason string) error {
	return &PermissionDeniedError{Reason: reason}
}

// RateLimitedError reports that a rate-limit bucket was exceeded. The
// offending request is silently dropped after a user-visible reply.
type RateLimitedError struct {
	Bucket string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: %s", e.Bucket)
}

// RateLimited constructs a RateLimitedError.
func RateLimited(bucket string) error {
	return &RateLimitedError{Bucket: bucket}
}

// SerializationError wraps a (de)serialization failure.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return "serialization error: " + e.Cause.Error()
}

func (e *SerializationError) Unwrap() error { return e.Cause }

// Serialization constructs a SerializationError.
func Serialization(cause error) error {
	return &SerializationError{Cause: cause}
}

// StorageError wraps a failure from the storage contract.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// Storage constructs a StorageError.
func Storage(op string, cause error) error {
	return &StorageError{Op: op, Cause: cause}
}

// TransportError is terminal: the connection is closed and cleaned up with
// no user-visible diagnostic attempted.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Transport constructs a TransportError.
func Transport(cause error) error {
	return &TransportError{Cause: cause}
}

// IsTerminal reports whether err should close the connection rather than be
// recovered locally (spec.md §7: TransportError / fatal crypto failure).
func IsTerminal(err error) bool {
	var te *TransportError
	return err != nil && AsTransport(err, &te)
}

// AsTransport is a thin errors.As wrapper kept here to avoid importing
// "errors" at every call site just to check this one kind.
func AsTransport(err error, target **TransportError) bool {
	for err != nil {
		if te, ok := err.(*TransportError); ok {
			*target = te
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
