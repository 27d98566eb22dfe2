package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the caller is expected to react to it.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindConflict          Kind = "CONFLICT"
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindRemoteUnavailable Kind = "REMOTE_UNAVAILABLE"
)

// Error is the error type returned across package boundaries.
// Field is set for validation errors so the caller can attach the message to a form field.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Field, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, apperr.Conflict) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Op == "" && t.Field == "" && t.Kind == e.Kind
}

// Kind markers for errors.Is.
var (
	Validation        = &Error{Kind: KindValidation}
	InvalidInput      = &Error{Kind: KindInvalidInput}
	Conflict          = &Error{Kind: KindConflict}
	NotFound          = &Error{Kind: KindNotFound}
	Forbidden         = &Error{Kind: KindForbidden}
	RemoteUnavailable = &Error{Kind: KindRemoteUnavailable}
)

// Named conditions.
var (
	ErrAlreadyInvited        = &Error{Kind: KindConflict, Err: errors.New("user is already invited to this league")}
	ErrAlreadyParticipant    = &Error{Kind: KindConflict, Err: errors.New("user is already a participant of this league")}
	ErrAlreadyRequested      = &Error{Kind: KindConflict, Err: errors.New("a friend request already exists between these users")}
	ErrAlreadyFriends        = &Error{Kind: KindConflict, Err: errors.New("users are already friends")}
	ErrUsernameTaken         = &Error{Kind: KindConflict, Field: "username", Err: errors.New("username is already taken")}
	ErrLeaguePrivate         = &Error{Kind: KindConflict, Err: errors.New("league is private and requires an invitation")}
	ErrCreatorCannotLeave    = &Error{Kind: KindConflict, Err: errors.New("the league creator cannot leave the league")}
	ErrMatchStatusTransition = &Error{Kind: KindConflict, Err: errors.New("invalid match status transition")}

	ErrUserNotFound          = &Error{Kind: KindNotFound, Err: errors.New("user not found")}
	ErrLeagueNotFound        = &Error{Kind: KindNotFound, Err: errors.New("league not found")}
	ErrParticipantNotFound   = &Error{Kind: KindNotFound, Err: errors.New("participant not found")}
	ErrInvitationNotFound    = &Error{Kind: KindNotFound, Err: errors.New("invitation not found")}
	ErrFriendRequestNotFound = &Error{Kind: KindNotFound, Err: errors.New("friend request not found")}
	ErrFriendshipNotFound    = &Error{Kind: KindNotFound, Err: errors.New("friendship not found")}
	ErrMatchNotFound         = &Error{Kind: KindNotFound, Err: errors.New("match not found")}

	ErrNotYourRequest = &Error{Kind: KindForbidden, Err: errors.New("only a party to the friend request can do this")}
	ErrNotLeagueAdmin = &Error{Kind: KindForbidden, Err: errors.New("only the league creator or an admin can do this")}
)

// New builds an error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Field builds a validation error for a single input field.
func Field(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Err: errors.New(msg)}
}

// Invalid builds an invalid-input error for malformed records.
func Invalid(op, msg string) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: errors.New(msg)}
}

// Remote wraps a store or network failure. Errors that already carry a kind pass through.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindRemoteUnavailable, Op: op, Err: err}
}

// KindOf reports the kind of err, defaulting to RemoteUnavailable for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRemoteUnavailable
}

// IsKind is shorthand for KindOf(err) == kind with a nil check.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
