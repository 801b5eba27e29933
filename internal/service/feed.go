package service

import (
	"context"
	"log"
	"sort"

	"bookpulse/internal/cache"
	"bookpulse/internal/model"
	"bookpulse/internal/repository"
)

const (
	// FeedDefaultLimit is the page size when the caller does not ask for one.
	FeedDefaultLimit = 10

	// FeedMaxLimit caps a single feed page.
	FeedMaxLimit = 50

	// feedCandidateFactor over-fetches cached candidate IDs so stale
	// entries (unfollowed authors, deleted notes) can be dropped without
	// shorting the page.
	feedCandidateFactor = 3

	// feedWarmLimit bounds how many notes a cold-cache warm pulls in.
	feedWarmLimit = 200
)

// FeedService assembles a viewer's feed: public notes by followed
// accounts, newest first, with notes from mutual follows lifted to the
// top. Like and comment counts are always counted live; the Redis cache
// only accelerates candidate selection and is re-validated against the
// database on every read.
type FeedService struct {
	noteRepo    repository.NoteRepository
	followRepo  repository.FollowRepository
	userRepo    repository.UserRepository
	libraryRepo repository.LibraryRepository
	feedCache   cache.FeedCache
}

func NewFeedService(
	noteRepo repository.NoteRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	libraryRepo repository.LibraryRepository,
	feedCache cache.FeedCache,
) *FeedService {
	return &FeedService{
		noteRepo:    noteRepo,
		followRepo:  followRepo,
		userRepo:    userRepo,
		libraryRepo: libraryRepo,
		feedCache:   feedCache,
	}
}

// Build returns up to limit feed notes for the viewer.
//
// Candidate notes come from the viewer's cache when it is warm, from the
// database otherwise. Either way every candidate is re-checked against
// the current follow set and public flag before it can appear, so an
// unfollow or privacy change takes effect on the next read even if the
// cache has not caught up.
func (s *FeedService) Build(ctx context.Context, viewerID int64, limit int) ([]model.FeedNote, error) {
	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	followedIDs, err := s.followRepo.GetFollowedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(followedIDs) == 0 {
		return []model.FeedNote{}, nil
	}
	followedSet := make(map[int64]bool, len(followedIDs))
	for _, id := range followedIDs {
		followedSet[id] = true
	}

	notes, err := s.candidates(ctx, viewerID, followedIDs, limit)
	if err != nil {
		return nil, err
	}

	// Drop anything whose author the viewer no longer follows. The
	// candidate set is capped at limit before ranking: mutual-first is a
	// reordering of the newest notes, not a different selection.
	visible := notes[:0]
	for _, n := range notes {
		if followedSet[n.UserID] {
			visible = append(visible, n)
		}
	}
	if len(visible) > limit {
		visible = visible[:limit]
	}
	if len(visible) == 0 {
		return []model.FeedNote{}, nil
	}

	feed, err := s.hydrate(ctx, viewerID, visible)
	if err != nil {
		return nil, err
	}

	// Mutual authors float to the top; within each group the newest-first
	// candidate order is preserved.
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].AuthorIsMutual && !feed[j].AuthorIsMutual
	})

	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

// candidates picks the newest public notes by the followed set, via the
// cache when warm. Cache misses and failures fall through to the
// database; a cold cache is warmed as a side effect.
func (s *FeedService) candidates(ctx context.Context, viewerID int64, followedIDs []int64, limit int) ([]model.Note, error) {
	warm, err := s.feedCache.Exists(ctx, viewerID)
	if err != nil {
		log.Printf("[FeedService] cache check failed: viewer=%d err=%v", viewerID, err)
		warm = false
	}

	if warm {
		ids, err := s.feedCache.Candidates(ctx, viewerID, limit*feedCandidateFactor)
		if err == nil && len(ids) > 0 {
			notes, err := s.noteRepo.GetPublicByIDs(ctx, ids)
			if err == nil {
				return notes, nil
			}
			log.Printf("[FeedService] hydrate cached candidates failed: viewer=%d err=%v", viewerID, err)
		}
	}

	notes, err := s.noteRepo.ListPublicByAuthors(ctx, followedIDs, limit)
	if err != nil {
		return nil, err
	}

	if !warm {
		scores, err := s.noteRepo.RecentPublicByAuthors(ctx, followedIDs, feedWarmLimit)
		if err != nil {
			log.Printf("[FeedService] warm lookup failed: viewer=%d err=%v", viewerID, err)
		} else if err := s.feedCache.Warm(ctx, viewerID, scores); err != nil {
			log.Printf("[FeedService] warm failed: viewer=%d err=%v", viewerID, err)
		}
	}
	return notes, nil
}

// hydrate attaches authors, books, live counts and the viewer's own like
// state to the candidate notes, in batch queries.
func (s *FeedService) hydrate(ctx context.Context, viewerID int64, notes []model.Note) ([]model.FeedNote, error) {
	noteIDs := make([]int64, len(notes))
	authorIDs := make([]int64, 0, len(notes))
	entryIDs := make([]int64, 0, len(notes))
	seenAuthors := make(map[int64]bool)
	for i, n := range notes {
		noteIDs[i] = n.ID
		if !seenAuthors[n.UserID] {
			seenAuthors[n.UserID] = true
			authorIDs = append(authorIDs, n.UserID)
		}
		if n.EntryID != nil {
			entryIDs = append(entryIDs, *n.EntryID)
		}
	}

	authors, err := s.userRepo.GetSummaries(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	books, err := s.libraryRepo.BookSummariesForEntries(ctx, entryIDs)
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.noteRepo.LikeCounts(ctx, noteIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.noteRepo.CommentCounts(ctx, noteIDs)
	if err != nil {
		return nil, err
	}
	viewerLikes, err := s.noteRepo.CheckLikes(ctx, viewerID, noteIDs)
	if err != nil {
		return nil, err
	}
	mutuals, err := s.followRepo.MutualIDs(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	feed := make([]model.FeedNote, 0, len(notes))
	for _, n := range notes {
		author, ok := authors[n.UserID]
		if !ok {
			continue
		}
		item := model.FeedNote{
			Note:           n,
			Author:         author,
			LikeCount:      likeCounts[n.ID],
			CommentCount:   commentCounts[n.ID],
			ViewerHasLiked: viewerLikes[n.ID],
			AuthorIsMutual: mutuals[n.UserID],
		}
		if n.EntryID != nil {
			if book, ok := books[*n.EntryID]; ok {
				item.Book = &book
			}
		}
		feed = append(feed, item)
	}
	return feed, nil
}
