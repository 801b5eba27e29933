package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"bookpulse/internal/cache"
	"bookpulse/internal/model"
	"bookpulse/internal/queue"
)

// Function-field mocks for the repository interfaces. Each test sets only
// the behaviors it cares about; unset functions fall back to a neutral
// default (not found, empty, nil).

type mockUserRepository struct {
	getByIDFn      func(ctx context.Context, id int64) (*model.User, error)
	existsFn       func(ctx context.Context, id int64) (bool, error)
	getSummariesFn func(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return true, nil
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	summaries := make(map[int64]model.UserSummary, len(ids))
	for _, id := range ids {
		summaries[id] = model.UserSummary{ID: id}
	}
	return summaries, nil
}

type mockBookRepository struct {
	createFn    func(ctx context.Context, isbn *string, title string, meta model.BookMetadata) (*model.Book, bool, error)
	getByIDFn   func(ctx context.Context, id int64) (*model.Book, error)
	getByISBNFn func(ctx context.Context, isbn string) (*model.Book, error)

	createCalls int
}

func (m *mockBookRepository) Create(ctx context.Context, isbn *string, title string, meta model.BookMetadata) (*model.Book, bool, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, isbn, title, meta)
	}
	return &model.Book{ID: int64(m.createCalls), ISBN: isbn, Title: title}, true, nil
}

func (m *mockBookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrBookNotFound
}

func (m *mockBookRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	if m.getByISBNFn != nil {
		return m.getByISBNFn(ctx, isbn)
	}
	return nil, model.ErrBookNotFound
}

type setProgressCall struct {
	EntryID     int64
	Status      model.ReadingStatus
	CurrentPage int
}

type mockLibraryRepository struct {
	createFn           func(ctx context.Context, entry *model.LibraryEntry) error
	getForUserFn       func(ctx context.Context, entryID, userID int64) (*model.LibraryEntry, error)
	getByUserAndBookFn func(ctx context.Context, userID, bookID int64) (*model.LibraryEntry, error)
	listForUserFn      func(ctx context.Context, userID int64) ([]model.LibraryEntryView, error)
	setProgressFn      func(ctx context.Context, tx *sqlx.Tx, entryID int64, status model.ReadingStatus, currentPage int) error
	patchFn            func(ctx context.Context, entryID, userID int64, patch model.EntryPatch) (*model.LibraryEntry, error)
	deleteFn           func(ctx context.Context, entryID, userID int64) error
	bookSummariesFn    func(ctx context.Context, entryIDs []int64) (map[int64]model.BookSummary, error)

	setProgressCalls []setProgressCall
}

func (m *mockLibraryRepository) Create(ctx context.Context, entry *model.LibraryEntry) error {
	if m.createFn != nil {
		return m.createFn(ctx, entry)
	}
	entry.ID = 1
	return nil
}

func (m *mockLibraryRepository) GetForUser(ctx context.Context, entryID, userID int64) (*model.LibraryEntry, error) {
	if m.getForUserFn != nil {
		return m.getForUserFn(ctx, entryID, userID)
	}
	return nil, model.ErrEntryNotFound
}

func (m *mockLibraryRepository) GetByUserAndBook(ctx context.Context, userID, bookID int64) (*model.LibraryEntry, error) {
	if m.getByUserAndBookFn != nil {
		return m.getByUserAndBookFn(ctx, userID, bookID)
	}
	return nil, model.ErrEntryNotFound
}

func (m *mockLibraryRepository) ListForUser(ctx context.Context, userID int64) ([]model.LibraryEntryView, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, userID)
	}
	return []model.LibraryEntryView{}, nil
}

func (m *mockLibraryRepository) SetProgress(ctx context.Context, tx *sqlx.Tx, entryID int64, status model.ReadingStatus, currentPage int) error {
	m.setProgressCalls = append(m.setProgressCalls, setProgressCall{
		EntryID: entryID, Status: status, CurrentPage: currentPage,
	})
	if m.setProgressFn != nil {
		return m.setProgressFn(ctx, tx, entryID, status, currentPage)
	}
	return nil
}

func (m *mockLibraryRepository) Patch(ctx context.Context, entryID, userID int64, patch model.EntryPatch) (*model.LibraryEntry, error) {
	if m.patchFn != nil {
		return m.patchFn(ctx, entryID, userID, patch)
	}
	return nil, model.ErrEntryNotFound
}

func (m *mockLibraryRepository) Delete(ctx context.Context, entryID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, entryID, userID)
	}
	return model.ErrEntryNotFound
}

func (m *mockLibraryRepository) BookSummariesForEntries(ctx context.Context, entryIDs []int64) (map[int64]model.BookSummary, error) {
	if m.bookSummariesFn != nil {
		return m.bookSummariesFn(ctx, entryIDs)
	}
	return map[int64]model.BookSummary{}, nil
}

type mockActivityRepository struct {
	recordFn      func(ctx context.Context, tx *sqlx.Tx, event model.ActivityEvent) error
	dailyTotalsFn func(ctx context.Context, userID int64, from, to time.Time) (map[string]int, error)

	recordCalls []model.ActivityEvent
}

func (m *mockActivityRepository) Record(ctx context.Context, tx *sqlx.Tx, event model.ActivityEvent) error {
	m.recordCalls = append(m.recordCalls, event)
	if m.recordFn != nil {
		return m.recordFn(ctx, tx, event)
	}
	return nil
}

func (m *mockActivityRepository) DailyTotals(ctx context.Context, userID int64, from, to time.Time) (map[string]int, error) {
	if m.dailyTotalsFn != nil {
		return m.dailyTotalsFn(ctx, userID, from, to)
	}
	return map[string]int{}, nil
}

type mockFollowRepository struct {
	createFn         func(ctx context.Context, followerID, followedID int64) (bool, error)
	deleteFn         func(ctx context.Context, followerID, followedID int64) error
	existsFn         func(ctx context.Context, followerID, followedID int64) (bool, error)
	getFollowedIDsFn func(ctx context.Context, userID int64) ([]int64, error)
	getFollowerIDsFn func(ctx context.Context, userID int64) ([]int64, error)
	mutualIDsFn      func(ctx context.Context, viewerID int64, candidateIDs []int64) (map[int64]bool, error)
	listFollowingFn  func(ctx context.Context, userID int64) ([]model.FollowedUser, error)
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followedID int64) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followedID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followedID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followedID)
	}
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followedID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowedIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowedIDsFn != nil {
		return m.getFollowedIDsFn(ctx, userID)
	}
	return []int64{}, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return []int64{}, nil
}

func (m *mockFollowRepository) MutualIDs(ctx context.Context, viewerID int64, candidateIDs []int64) (map[int64]bool, error) {
	if m.mutualIDsFn != nil {
		return m.mutualIDsFn(ctx, viewerID, candidateIDs)
	}
	result := make(map[int64]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		result[id] = false
	}
	return result, nil
}

func (m *mockFollowRepository) ListFollowing(ctx context.Context, userID int64) ([]model.FollowedUser, error) {
	if m.listFollowingFn != nil {
		return m.listFollowingFn(ctx, userID)
	}
	return []model.FollowedUser{}, nil
}

type mockNoteRepository struct {
	createFn                func(ctx context.Context, note *model.Note) error
	getByIDFn               func(ctx context.Context, noteID int64) (*model.Note, error)
	getPublicByIDsFn        func(ctx context.Context, noteIDs []int64) ([]model.Note, error)
	deleteFn                func(ctx context.Context, noteID, userID int64) error
	listForUserFn           func(ctx context.Context, userID int64, limit int) ([]model.Note, error)
	listPublicByAuthorsFn   func(ctx context.Context, authorIDs []int64, limit int) ([]model.Note, error)
	recentPublicByUserFn    func(ctx context.Context, userID int64, limit int) ([]cache.NoteScore, error)
	recentPublicByAuthorsFn func(ctx context.Context, authorIDs []int64, limit int) ([]cache.NoteScore, error)
	likeFn                  func(ctx context.Context, noteID, userID int64) error
	unlikeFn                func(ctx context.Context, noteID, userID int64) error
	likeCountsFn            func(ctx context.Context, noteIDs []int64) (map[int64]int, error)
	commentCountsFn         func(ctx context.Context, noteIDs []int64) (map[int64]int, error)
	checkLikesFn            func(ctx context.Context, userID int64, noteIDs []int64) (map[int64]bool, error)
	createCommentFn         func(ctx context.Context, comment *model.Comment) error
	commentsForNoteFn       func(ctx context.Context, noteID int64) ([]model.Comment, error)

	likeCalls [][2]int64
}

func (m *mockNoteRepository) Create(ctx context.Context, note *model.Note) error {
	if m.createFn != nil {
		return m.createFn(ctx, note)
	}
	note.ID = 1
	note.CreatedAt = time.Now()
	return nil
}

func (m *mockNoteRepository) GetByID(ctx context.Context, noteID int64) (*model.Note, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, noteID)
	}
	return nil, model.ErrNoteNotFound
}

func (m *mockNoteRepository) GetPublicByIDs(ctx context.Context, noteIDs []int64) ([]model.Note, error) {
	if m.getPublicByIDsFn != nil {
		return m.getPublicByIDsFn(ctx, noteIDs)
	}
	return []model.Note{}, nil
}

func (m *mockNoteRepository) Delete(ctx context.Context, noteID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, noteID, userID)
	}
	return nil
}

func (m *mockNoteRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Note, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, userID, limit)
	}
	return []model.Note{}, nil
}

func (m *mockNoteRepository) ListPublicByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Note, error) {
	if m.listPublicByAuthorsFn != nil {
		return m.listPublicByAuthorsFn(ctx, authorIDs, limit)
	}
	return []model.Note{}, nil
}

func (m *mockNoteRepository) RecentPublicByUser(ctx context.Context, userID int64, limit int) ([]cache.NoteScore, error) {
	if m.recentPublicByUserFn != nil {
		return m.recentPublicByUserFn(ctx, userID, limit)
	}
	return []cache.NoteScore{}, nil
}

func (m *mockNoteRepository) RecentPublicByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]cache.NoteScore, error) {
	if m.recentPublicByAuthorsFn != nil {
		return m.recentPublicByAuthorsFn(ctx, authorIDs, limit)
	}
	return []cache.NoteScore{}, nil
}

func (m *mockNoteRepository) Like(ctx context.Context, noteID, userID int64) error {
	m.likeCalls = append(m.likeCalls, [2]int64{noteID, userID})
	if m.likeFn != nil {
		return m.likeFn(ctx, noteID, userID)
	}
	return nil
}

func (m *mockNoteRepository) Unlike(ctx context.Context, noteID, userID int64) error {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, noteID, userID)
	}
	return nil
}

func (m *mockNoteRepository) LikeCounts(ctx context.Context, noteIDs []int64) (map[int64]int, error) {
	if m.likeCountsFn != nil {
		return m.likeCountsFn(ctx, noteIDs)
	}
	return zeroCounts(noteIDs), nil
}

func (m *mockNoteRepository) CommentCounts(ctx context.Context, noteIDs []int64) (map[int64]int, error) {
	if m.commentCountsFn != nil {
		return m.commentCountsFn(ctx, noteIDs)
	}
	return zeroCounts(noteIDs), nil
}

func (m *mockNoteRepository) CheckLikes(ctx context.Context, userID int64, noteIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, noteIDs)
	}
	result := make(map[int64]bool, len(noteIDs))
	for _, id := range noteIDs {
		result[id] = false
	}
	return result, nil
}

func (m *mockNoteRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	if m.createCommentFn != nil {
		return m.createCommentFn(ctx, comment)
	}
	comment.ID = 1
	comment.CreatedAt = time.Now()
	return nil
}

func (m *mockNoteRepository) CommentsForNote(ctx context.Context, noteID int64) ([]model.Comment, error) {
	if m.commentsForNoteFn != nil {
		return m.commentsForNoteFn(ctx, noteID)
	}
	return []model.Comment{}, nil
}

func zeroCounts(noteIDs []int64) map[int64]int {
	result := make(map[int64]int, len(noteIDs))
	for _, id := range noteIDs {
		result[id] = 0
	}
	return result
}

type mockFeedCache struct {
	addNoteFn    func(ctx context.Context, viewerID, noteID int64, timestamp int64) error
	removeNoteFn func(ctx context.Context, viewerID, noteID int64) error
	candidatesFn func(ctx context.Context, viewerID int64, limit int) ([]int64, error)
	warmFn       func(ctx context.Context, viewerID int64, notes []cache.NoteScore) error
	existsFn     func(ctx context.Context, viewerID int64) (bool, error)

	warmCalls int
}

func (m *mockFeedCache) AddNote(ctx context.Context, viewerID, noteID int64, timestamp int64) error {
	if m.addNoteFn != nil {
		return m.addNoteFn(ctx, viewerID, noteID, timestamp)
	}
	return nil
}

func (m *mockFeedCache) RemoveNote(ctx context.Context, viewerID, noteID int64) error {
	if m.removeNoteFn != nil {
		return m.removeNoteFn(ctx, viewerID, noteID)
	}
	return nil
}

func (m *mockFeedCache) Candidates(ctx context.Context, viewerID int64, limit int) ([]int64, error) {
	if m.candidatesFn != nil {
		return m.candidatesFn(ctx, viewerID, limit)
	}
	return []int64{}, nil
}

func (m *mockFeedCache) Warm(ctx context.Context, viewerID int64, notes []cache.NoteScore) error {
	m.warmCalls++
	if m.warmFn != nil {
		return m.warmFn(ctx, viewerID, notes)
	}
	return nil
}

func (m *mockFeedCache) Exists(ctx context.Context, viewerID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, viewerID)
	}
	return false, nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.FeedEvent) (string, error)

	published []queue.FeedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.FeedEvent) (string, error) {
	m.published = append(m.published, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}
