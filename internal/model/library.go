package model

import (
	"errors"
	"fmt"
	"time"
)

// ReadingStatus is the state of a library entry's state machine.
type ReadingStatus string

const (
	StatusToRead   ReadingStatus = "to-read"
	StatusReading  ReadingStatus = "reading"
	StatusFinished ReadingStatus = "finished"
)

// Valid reports whether s is one of the three known states.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusFinished:
		return true
	}
	return false
}

// LibraryEntry is a user's personal record of a book: reading status,
// progress and ownership metadata. A user holds at most one entry per
// book (unique (user_id, book_id) in the database).
type LibraryEntry struct {
	ID              int64         `db:"id" json:"id"`
	UserID          int64         `db:"user_id" json:"user_id"`
	BookID          int64         `db:"book_id" json:"book_id"`
	Status          ReadingStatus `db:"status" json:"status"`
	CurrentPage     int           `db:"current_page" json:"current_page"`
	Rating          *int          `db:"rating" json:"rating"`
	Format          string        `db:"format" json:"format"`
	OwnershipStatus string        `db:"ownership_status" json:"ownership_status"`
	BorrowedFrom    *string       `db:"borrowed_from" json:"borrowed_from"`
	LoanedTo        *string       `db:"loaned_to" json:"loaned_to"`
	PrivateNotes    *string       `db:"private_notes" json:"private_notes"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// LibraryEntryView joins an entry with its book for listings.
type LibraryEntryView struct {
	LibraryEntry
	Book BookSummary `json:"book"`
}

// EntryPatch is the allow-listed partial update for a library entry.
// Nil fields are left untouched. CurrentPage is deliberately absent:
// page movement must go through UpdateProgress so that status derivation
// and activity recording stay consistent.
type EntryPatch struct {
	Status          *ReadingStatus `json:"status"`
	Rating          *int           `json:"rating"`
	Format          *string        `json:"format"`
	OwnershipStatus *string        `json:"ownership_status"`
	BorrowedFrom    *string        `json:"borrowed_from"`
	LoanedTo        *string        `json:"loaned_to"`
	PrivateNotes    *string        `json:"private_notes"`
}

// Empty reports whether the patch carries no fields at all.
func (p EntryPatch) Empty() bool {
	return p.Status == nil && p.Rating == nil && p.Format == nil &&
		p.OwnershipStatus == nil && p.BorrowedFrom == nil &&
		p.LoanedTo == nil && p.PrivateNotes == nil
}

var (
	// ErrEntryNotFound is returned when a library entry does not exist or
	// is not owned by the caller. Ownership failures intentionally look
	// identical to missing rows.
	ErrEntryNotFound = errors.New("library entry not found")

	// ErrAlreadyInLibrary is returned when a user adds a book they already
	// hold an entry for. Usually wrapped in AlreadyInLibraryError.
	ErrAlreadyInLibrary = errors.New("book already in library")

	// ErrNegativePage is returned for page updates below zero.
	ErrNegativePage = errors.New("page must not be negative")

	// ErrInvalidStatus is returned for an unknown reading status.
	ErrInvalidStatus = errors.New("invalid reading status")

	// ErrEmptyPatch is returned when a patch contains no updatable fields.
	ErrEmptyPatch = errors.New("no fields to update")

	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// AlreadyInLibraryError reports a duplicate add together with the status
// of the existing entry, so the caller can decide whether to treat the
// conflict as success.
type AlreadyInLibraryError struct {
	EntryID int64
	Status  ReadingStatus
}

func (e *AlreadyInLibraryError) Error() string {
	return fmt.Sprintf("book already in library in status %s", e.Status)
}

// Is makes errors.Is(err, ErrAlreadyInLibrary) match.
func (e *AlreadyInLibraryError) Is(target error) bool {
	return target == ErrAlreadyInLibrary
}
