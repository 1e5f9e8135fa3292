package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidTransition indicates a document status change not permitted by the lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConflict indicates that a concurrent mutation won the race on the same document.
// The losing caller must re-read current state before retrying.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrExternalService indicates a call to an external collaborator (extraction, ERP)
// failed or timed out.
var ErrExternalService = errors.New("external service failure")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the authenticated user may not perform the action.
var ErrForbidden = errors.New("forbidden")
