package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"bookpulse/internal/model"
)

type libraryRepository struct {
	db *sqlx.DB
}

func NewLibraryRepository(db *sqlx.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

const entryColumns = `id, user_id, book_id, status, current_page, rating, format,
	ownership_status, borrowed_from, loaned_to, private_notes, created_at, updated_at`

// Create inserts a new library entry. The unique (user_id, book_id)
// constraint is the source of truth for "one entry per book"; a 23505
// surfaces as ErrAlreadyInLibrary for the service to enrich.
func (r *libraryRepository) Create(ctx context.Context, entry *model.LibraryEntry) error {
	query := `
		INSERT INTO library_entries (user_id, book_id, status, current_page, rating, format, ownership_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + entryColumns
	err := r.db.GetContext(ctx, entry, query,
		entry.UserID, entry.BookID, entry.Status, entry.CurrentPage,
		entry.Rating, entry.Format, entry.OwnershipStatus)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.ErrAlreadyInLibrary
		}
		return fmt.Errorf("insert library entry: %w", err)
	}
	return nil
}

// GetForUser loads an entry scoped to its owner. An entry owned by someone
// else is indistinguishable from a missing one.
func (r *libraryRepository) GetForUser(ctx context.Context, entryID, userID int64) (*model.LibraryEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM library_entries WHERE id = $1 AND user_id = $2`
	var entry model.LibraryEntry
	err := r.db.GetContext(ctx, &entry, query, entryID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get library entry: %w", err)
	}
	return &entry, nil
}

func (r *libraryRepository) GetByUserAndBook(ctx context.Context, userID, bookID int64) (*model.LibraryEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM library_entries WHERE user_id = $1 AND book_id = $2`
	var entry model.LibraryEntry
	err := r.db.GetContext(ctx, &entry, query, userID, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry by user and book: %w", err)
	}
	return &entry, nil
}

func (r *libraryRepository) ListForUser(ctx context.Context, userID int64) ([]model.LibraryEntryView, error) {
	query := `
		SELECT e.id, e.user_id, e.book_id, e.status, e.current_page, e.rating, e.format,
		       e.ownership_status, e.borrowed_from, e.loaned_to, e.private_notes,
		       e.created_at, e.updated_at,
		       b.id AS "book.id", b.title AS "book.title", b.author AS "book.author"
		FROM library_entries e
		JOIN books b ON b.id = e.book_id
		WHERE e.user_id = $1
		ORDER BY e.updated_at DESC
	`
	var views []model.LibraryEntryView
	if err := r.db.SelectContext(ctx, &views, query, userID); err != nil {
		return nil, fmt.Errorf("list library entries: %w", err)
	}
	return views, nil
}

// SetProgress writes the derived state inside the caller's transaction so
// the status change and its activity row commit together. updated_at
// always reflects the last writer.
func (r *libraryRepository) SetProgress(ctx context.Context, tx *sqlx.Tx, entryID int64, status model.ReadingStatus, currentPage int) error {
	query := `
		UPDATE library_entries
		SET status = $1, current_page = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := tx.ExecContext(ctx, query, status, currentPage, entryID)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrEntryNotFound
	}
	return nil
}

// Patch applies the allow-listed partial update. Only the enumerated
// columns can ever appear in the SET clause.
func (r *libraryRepository) Patch(ctx context.Context, entryID, userID int64, patch model.EntryPatch) (*model.LibraryEntry, error) {
	set := make([]string, 0, 8)
	args := make([]interface{}, 0, 10)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Rating != nil {
		add("rating", *patch.Rating)
	}
	if patch.Format != nil {
		add("format", *patch.Format)
	}
	if patch.OwnershipStatus != nil {
		add("ownership_status", *patch.OwnershipStatus)
	}
	if patch.BorrowedFrom != nil {
		add("borrowed_from", *patch.BorrowedFrom)
	}
	if patch.LoanedTo != nil {
		add("loaned_to", *patch.LoanedTo)
	}
	if patch.PrivateNotes != nil {
		add("private_notes", *patch.PrivateNotes)
	}
	if len(set) == 0 {
		return nil, model.ErrEmptyPatch
	}
	set = append(set, "updated_at = NOW()")

	args = append(args, entryID)
	idArg := len(args)
	args = append(args, userID)
	userArg := len(args)

	query := fmt.Sprintf(`
		UPDATE library_entries
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+entryColumns,
		strings.Join(set, ", "), idArg, userArg)

	var entry model.LibraryEntry
	err := r.db.GetContext(ctx, &entry, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patch library entry: %w", err)
	}
	return &entry, nil
}

// BookSummariesForEntries maps entry IDs to book summaries in one query.
func (r *libraryRepository) BookSummariesForEntries(ctx context.Context, entryIDs []int64) (map[int64]model.BookSummary, error) {
	result := make(map[int64]model.BookSummary, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT e.id AS entry_id, b.id, b.title, b.author
		FROM library_entries e
		JOIN books b ON b.id = e.book_id
		WHERE e.id = ANY($1)
	`
	type row struct {
		EntryID int64 `db:"entry_id"`
		model.BookSummary
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(entryIDs)); err != nil {
		return nil, fmt.Errorf("book summaries for entries: %w", err)
	}
	for _, r := range rows {
		result[r.EntryID] = r.BookSummary
	}
	return result, nil
}

// Delete removes the entry. Notes pointing at it are detached by the
// ON DELETE SET NULL foreign key; activity rows go with the entry.
func (r *libraryRepository) Delete(ctx context.Context, entryID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM library_entries WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return fmt.Errorf("delete library entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrEntryNotFound
	}
	return nil
}
