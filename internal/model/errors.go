package model

import "errors"

// ErrorKind is the coarse error taxonomy the request layer translates
// into responses. Every error returned by the services falls into one of
// these; none is fatal to the process.
type ErrorKind int

const (
	// KindStorage covers transient persistence failures. Creation
	// operations are idempotent, so callers may retry with the same input.
	KindStorage ErrorKind = iota

	// KindValidation covers malformed or out-of-range input. Never retried.
	KindValidation

	// KindConflict covers duplicate/idempotency violations. The message
	// carries enough detail for the caller to decide whether to treat it
	// as success.
	KindConflict

	// KindNotFound covers missing entities, including entities that exist
	// but are not owned by the caller.
	KindNotFound
)

var (
	validationErrs = []error{
		ErrTitleRequired, ErrNegativePage, ErrInvalidStatus, ErrEmptyPatch,
		ErrInvalidRating, ErrCannotFollowSelf, ErrEmptyNote, ErrNoteTooLong,
		ErrCommentRequired,
	}
	conflictErrs = []error{
		ErrAlreadyInLibrary, ErrAlreadyFollowing, ErrAlreadyLiked,
	}
	notFoundErrs = []error{
		ErrBookNotFound, ErrEntryNotFound, ErrUserNotFound, ErrNoteNotFound,
		ErrNotFollowing, ErrNotLiked, ErrNotNoteOwner,
	}
)

// KindOf classifies err. Unrecognized errors are treated as storage
// failures, the only kind that may be retried.
func KindOf(err error) ErrorKind {
	for _, e := range validationErrs {
		if errors.Is(err, e) {
			return KindValidation
		}
	}
	for _, e := range conflictErrs {
		if errors.Is(err, e) {
			return KindConflict
		}
	}
	for _, e := range notFoundErrs {
		if errors.Is(err, e) {
			return KindNotFound
		}
	}
	return KindStorage
}
