package service

import (
	"errors"
	"fmt"

	"gobag/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// ErrInvalidFormat means the typed code did not normalize to 4 digits.
	ErrInvalidFormat = errors.New("access code must be 4 digits")
	// ErrCodeNotFound means neither lookup phase matched the code.
	ErrCodeNotFound = errors.New("access code not found")
	// ErrDanglingItemList means a session references a deleted item list.
	ErrDanglingItemList = errors.New("session references a missing item list")

	ErrSelectionLimit   = errors.New("selection limit exceeded")
	ErrEmptySelection   = errors.New("selection is empty")
	ErrAlreadySubmitted = errors.New("already submitted")
	ErrNotAuthenticated = errors.New("participant identity required")

	ErrDuplicateName = errors.New("name already exists")
	ErrDefaultList   = errors.New("the default list cannot be deleted")
	ErrListNotFound  = errors.New("item list not found")
	ErrSameList      = errors.New("source and destination lists are identical")

	ErrSessionNotFound  = errors.New("session not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrWrongSessionType = errors.New("session does not take individual submissions")
)

// LookupError wraps a transient store failure during code resolution so the
// UI can say "try again" instead of "check your code".
type LookupError struct {
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup failed: %v", e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// InUseError blocks item-list deletion and carries the referencing sessions
// so the caller can offer migration as the way out.
type InUseError struct {
	Sessions []*model.Session
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("item list is in use by %d session(s)", len(e.Sessions))
}

// PartialMigrationError reports how many sessions were re-pointed before a
// chunk failed. Committed chunks are not rolled back.
type PartialMigrationError struct {
	Committed int
	Err       error
}

func (e *PartialMigrationError) Error() string {
	return fmt.Sprintf("migration stopped after %d session(s): %v", e.Committed, e.Err)
}

func (e *PartialMigrationError) Unwrap() error { return e.Err }
