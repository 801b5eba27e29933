package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"bookpulse/internal/cache"
	"bookpulse/internal/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// GetSummaries batch-loads compact user shapes for feed/comment hydration.
	GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error)
}

type BookRepository interface {
	// Create inserts a book. When the ISBN collides with an existing row the
	// insert is a no-op and created is false; the caller re-reads by ISBN.
	Create(ctx context.Context, isbn *string, title string, meta model.BookMetadata) (book *model.Book, created bool, err error)
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
}

type LibraryRepository interface {
	Create(ctx context.Context, entry *model.LibraryEntry) error
	// GetForUser returns the entry only when it belongs to userID; a
	// mismatch reads as not found.
	GetForUser(ctx context.Context, entryID, userID int64) (*model.LibraryEntry, error)
	GetByUserAndBook(ctx context.Context, userID, bookID int64) (*model.LibraryEntry, error)
	ListForUser(ctx context.Context, userID int64) ([]model.LibraryEntryView, error)
	// SetProgress writes status + current_page within the caller's transaction.
	SetProgress(ctx context.Context, tx *sqlx.Tx, entryID int64, status model.ReadingStatus, currentPage int) error
	Patch(ctx context.Context, entryID, userID int64, patch model.EntryPatch) (*model.LibraryEntry, error)
	Delete(ctx context.Context, entryID, userID int64) error
	// BookSummariesForEntries maps entry IDs to their book summaries, for
	// attaching book context to feed notes.
	BookSummariesForEntries(ctx context.Context, entryIDs []int64) (map[int64]model.BookSummary, error)
}

type ActivityRepository interface {
	// Record upserts the (user, entry, day) ledger row: new rows start at
	// the event delta, existing rows are incremented and get their page
	// snapshot overwritten. Runs inside the progress transaction.
	Record(ctx context.Context, tx *sqlx.Tx, event model.ActivityEvent) error
	// DailyTotals returns per-day page sums for the closed range
	// [from, to], ascending, days without activity absent.
	DailyTotals(ctx context.Context, userID int64, from, to time.Time) (map[string]int, error)
}

type FollowRepository interface {
	// Create inserts the edge; inserted is false when it already exists.
	Create(ctx context.Context, followerID, followedID int64) (inserted bool, err error)
	Delete(ctx context.Context, followerID, followedID int64) error
	Exists(ctx context.Context, followerID, followedID int64) (bool, error)
	GetFollowedIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	// MutualIDs returns, for each candidate, whether viewer->candidate and
	// candidate->viewer both exist. Computed from the edges on every call.
	MutualIDs(ctx context.Context, viewerID int64, candidateIDs []int64) (map[int64]bool, error)
	ListFollowing(ctx context.Context, userID int64) ([]model.FollowedUser, error)
}

type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	GetByID(ctx context.Context, noteID int64) (*model.Note, error)
	GetPublicByIDs(ctx context.Context, noteIDs []int64) ([]model.Note, error)
	Delete(ctx context.Context, noteID, userID int64) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Note, error)
	// ListPublicByAuthors returns feed candidates newest-first; ties on
	// created_at break by insertion order (id ascending).
	ListPublicByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Note, error)
	// RecentPublicByUser returns (id, created_at epoch) pairs for cache
	// backfill when a follow is created.
	RecentPublicByUser(ctx context.Context, userID int64, limit int) ([]cache.NoteScore, error)
	// RecentPublicByAuthors is the bulk variant used to warm a cold
	// viewer cache.
	RecentPublicByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]cache.NoteScore, error)

	Like(ctx context.Context, noteID, userID int64) error
	Unlike(ctx context.Context, noteID, userID int64) error
	// LikeCounts and CommentCounts count live rows; feed counters are never
	// cached on the note itself.
	LikeCounts(ctx context.Context, noteIDs []int64) (map[int64]int, error)
	CommentCounts(ctx context.Context, noteIDs []int64) (map[int64]int, error)
	CheckLikes(ctx context.Context, userID int64, noteIDs []int64) (map[int64]bool, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	CommentsForNote(ctx context.Context, noteID int64) ([]model.Comment, error)
}
