package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotSignedIn indicates a favorites operation without a session
	ErrNotSignedIn = errors.New("no user is signed in")

	// ErrEmptyCredential indicates sign-in was attempted with a blank credential
	ErrEmptyCredential = errors.New("credential is empty")

	// ErrSelectionSuperseded indicates a newer title selection replaced this one
	ErrSelectionSuperseded = errors.New("title selection superseded")

	// ErrUnknownGenre indicates no genre matched the requested name
	ErrUnknownGenre = errors.New("genre not found")
)

// FetchErrorKind classifies upstream failures
type FetchErrorKind string

const (
	FetchNetwork          FetchErrorKind = "network"
	FetchUpstreamRejected FetchErrorKind = "upstream_rejected"
	FetchParse            FetchErrorKind = "parse"
)

// FetchError is the only error shape the upstream gateway returns
type FetchError struct {
	Kind     FetchErrorKind
	Endpoint string
	Status   int // HTTP status for upstream_rejected
	Err      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s %s (status %d): %v", e.Endpoint, e.Kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s %s (status %d)", e.Endpoint, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Endpoint, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s", e.Endpoint, e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchErrorKindOf extracts the kind of a FetchError anywhere in the chain.
// Errors of any other shape are reported as network failures.
func FetchErrorKindOf(err error) FetchErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FetchNetwork
}
