package service

import "errors"

var (
	// ErrUnreadableDocument means the PDF yielded too little text to be
	// usable. Scanned documents are rejected, not OCR'd.
	ErrUnreadableDocument = errors.New("document contains no readable text")

	// ErrParsingUnavailable means the completion endpoint failed, timed out
	// or returned nothing. A dependency failure, not a validation failure.
	ErrParsingUnavailable = errors.New("parsing service unavailable")

	// ErrMalformedModelOutput means the completion succeeded but the body
	// was not a valid JSON object.
	ErrMalformedModelOutput = errors.New("model returned malformed output")

	ErrProfileNotFound = errors.New("profile not found")
	ErrNotFound        = errors.New("not found")
	ErrAccessDenied    = errors.New("access denied")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionInvalid     = errors.New("session missing or expired")
)
