// Package errs provides standardized error types for the custody service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ObjectNotFoundError: For when an object cannot be found
//   - VersionIsInvalidError: For optimistic-concurrency conflicts on step updates
//   - InvalidTransitionError: For rejected step lifecycle transitions
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// The sentinels double as the retry-classification taxonomy of the messaging
// layer: ErrValueIsInvalid/ErrValueIsRequired and ErrInvalidTransition mark
// poison messages that must not be redelivered, ErrObjectNotFound marks
// eventual-consistency races that may be retried after a delay, and anything
// else is treated as an infrastructure failure left to broker retry/backoff.
package errs
