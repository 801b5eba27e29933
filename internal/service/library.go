package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bookpulse/internal/model"
	"bookpulse/internal/repository"
)

// LibraryService owns the per-entry state machine: status derivation from
// page movement, activity emission on forward progress, and the
// allow-listed manual edits that bypass derivation.
type LibraryService struct {
	libraryRepo  repository.LibraryRepository
	bookRepo     repository.BookRepository
	activityRepo repository.ActivityRepository
	db           *sqlx.DB
}

func NewLibraryService(
	libraryRepo repository.LibraryRepository,
	bookRepo repository.BookRepository,
	activityRepo repository.ActivityRepository,
	db *sqlx.DB,
) *LibraryService {
	return &LibraryService{
		libraryRepo:  libraryRepo,
		bookRepo:     bookRepo,
		activityRepo: activityRepo,
		db:           db,
	}
}

// DeriveStatus is the pure transition function: page position to reading
// state. It only applies to forward movement; downward corrections keep
// their entry's current status (see UpdateProgress).
func DeriveStatus(page int, totalPages *int) model.ReadingStatus {
	if page <= 0 {
		return model.StatusToRead
	}
	if totalPages != nil && *totalPages > 0 && page >= *totalPages {
		return model.StatusFinished
	}
	return model.StatusReading
}

// ClampPage bounds a page to [0, totalPages] when the total is known.
func ClampPage(page int, totalPages *int) int {
	if page < 0 {
		return 0
	}
	if totalPages != nil && *totalPages > 0 && page > *totalPages {
		return *totalPages
	}
	return page
}

// AddEntry puts a book into the user's library. Status is caller-supplied
// (default to-read) and not derived from the initial page; the unique
// (user, book) constraint rejects duplicates, and the conflict reports
// the existing entry's status so the caller can decide what to do.
func (s *LibraryService) AddEntry(ctx context.Context, userID, bookID int64, status *model.ReadingStatus, initialPage *int) (*model.LibraryEntry, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	st := model.StatusToRead
	if status != nil {
		if !status.Valid() {
			return nil, model.ErrInvalidStatus
		}
		st = *status
	}

	page := 0
	if initialPage != nil {
		if *initialPage < 0 {
			return nil, model.ErrNegativePage
		}
		page = ClampPage(*initialPage, book.TotalPages)
	}

	entry := &model.LibraryEntry{
		UserID:          userID,
		BookID:          bookID,
		Status:          st,
		CurrentPage:     page,
		Format:          "hardcover",
		OwnershipStatus: "owned",
	}
	if err := s.libraryRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, model.ErrAlreadyInLibrary) {
			if existing, lookupErr := s.libraryRepo.GetByUserAndBook(ctx, userID, bookID); lookupErr == nil {
				return nil, &model.AlreadyInLibraryError{EntryID: existing.ID, Status: existing.Status}
			}
			return nil, model.ErrAlreadyInLibrary
		}
		return nil, err
	}
	return entry, nil
}

// UpdateProgress applies a raw page update to the state machine.
//
// Forward movement derives the new status and records the page delta in
// the day's activity ledger, inside one transaction. Movement downward
// (or standing still) only rewrites current_page: status is kept and no
// activity is emitted, because a downward edit is almost always a typo
// fix and must not silently erase "currently reading" or inflate the
// ledger.
func (s *LibraryService) UpdateProgress(ctx context.Context, userID, entryID int64, newPage int) (*model.LibraryEntry, error) {
	if newPage < 0 {
		return nil, model.ErrNegativePage
	}

	entry, err := s.libraryRepo.GetForUser(ctx, entryID, userID)
	if err != nil {
		return nil, err
	}
	book, err := s.bookRepo.GetByID(ctx, entry.BookID)
	if err != nil {
		return nil, err
	}

	page := ClampPage(newPage, book.TotalPages)
	status := entry.Status
	forward := page > entry.CurrentPage
	if forward {
		status = DeriveStatus(page, book.TotalPages)
	}

	if err := s.commitProgress(ctx, entry, status, page, forward); err != nil {
		return nil, err
	}
	return s.libraryRepo.GetForUser(ctx, entryID, userID)
}

// MarkFinished forces the finished state regardless of page. With a known
// page count the page snaps to the end and the jump is credited to
// today's activity.
func (s *LibraryService) MarkFinished(ctx context.Context, userID, entryID int64) (*model.LibraryEntry, error) {
	entry, err := s.libraryRepo.GetForUser(ctx, entryID, userID)
	if err != nil {
		return nil, err
	}
	book, err := s.bookRepo.GetByID(ctx, entry.BookID)
	if err != nil {
		return nil, err
	}

	page := entry.CurrentPage
	if book.TotalPages != nil && *book.TotalPages > 0 {
		page = *book.TotalPages
	}
	forward := page > entry.CurrentPage

	if err := s.commitProgress(ctx, entry, model.StatusFinished, page, forward); err != nil {
		return nil, err
	}
	return s.libraryRepo.GetForUser(ctx, entryID, userID)
}

// commitProgress writes the transition and, for forward movement, its
// activity event in a single transaction so the ledger can never
// disagree with the entry.
func (s *LibraryService) commitProgress(ctx context.Context, entry *model.LibraryEntry, status model.ReadingStatus, page int, forward bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.libraryRepo.SetProgress(ctx, tx, entry.ID, status, page); err != nil {
		return err
	}

	if forward {
		event := model.ActivityEvent{
			UserID:   entry.UserID,
			EntryID:  entry.ID,
			Day:      model.Today(),
			Delta:    page - entry.CurrentPage,
			Snapshot: page,
		}
		if err := s.activityRepo.Record(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PatchEntry applies a manual edit to the allow-listed fields. A status
// set here is accepted as-is — it bypasses derivation and leaves
// current_page alone.
func (s *LibraryService) PatchEntry(ctx context.Context, userID, entryID int64, patch model.EntryPatch) (*model.LibraryEntry, error) {
	if patch.Empty() {
		return nil, model.ErrEmptyPatch
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	if patch.Rating != nil && (*patch.Rating < 1 || *patch.Rating > 5) {
		return nil, model.ErrInvalidRating
	}
	return s.libraryRepo.Patch(ctx, entryID, userID, patch)
}

// RemoveEntry deletes the entry; notes that reference it are detached by
// the storage layer, not deleted.
func (s *LibraryService) RemoveEntry(ctx context.Context, userID, entryID int64) error {
	return s.libraryRepo.Delete(ctx, entryID, userID)
}

// List returns the user's library with book summaries, most recently
// touched first.
func (s *LibraryService) List(ctx context.Context, userID int64) ([]model.LibraryEntryView, error) {
	return s.libraryRepo.ListForUser(ctx, userID)
}
