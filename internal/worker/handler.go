package worker

import (
	"context"
	"fmt"
	"log"

	"bookpulse/internal/cache"
	"bookpulse/internal/queue"
)

// FollowerProvider supplies follower IDs without tying the worker to the
// repository package.
type FollowerProvider interface {
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// RecentNotesProvider supplies recent public notes for follow backfill.
type RecentNotesProvider interface {
	RecentPublicByUser(ctx context.Context, userID int64, limit int) ([]cache.NoteScore, error)
}

// BackfillLimit is how many of the followed user's notes get backfilled
// into a new follower's cache.
const BackfillLimit = 50

// Handler applies feed events to the candidate caches.
type Handler struct {
	feedCache cache.FeedCache
	followers FollowerProvider
	notes     RecentNotesProvider
}

func NewHandler(feedCache cache.FeedCache, followers FollowerProvider, notes RecentNotesProvider) *Handler {
	return &Handler{
		feedCache: feedCache,
		followers: followers,
		notes:     notes,
	}
}

// HandleEvent routes an event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.FeedEvent) error {
	switch event.Type {
	case queue.EventNoteCreated:
		return h.handleNoteCreated(ctx, event)
	case queue.EventNoteDeleted:
		return h.handleNoteDeleted(ctx, event)
	case queue.EventUserFollowed:
		return h.handleUserFollowed(ctx, event)
	case queue.EventUserUnfollowed:
		return h.handleUserUnfollowed(ctx, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// handleNoteCreated fans a public note out to every follower's cache.
// Individual failures are logged and skipped; the cache is advisory.
func (h *Handler) handleNoteCreated(ctx context.Context, event queue.FeedEvent) error {
	followers, err := h.followers.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	for _, followerID := range followers {
		if err := h.feedCache.AddNote(ctx, followerID, event.NoteID, event.Timestamp); err != nil {
			log.Printf("[Worker] fan-out to viewer=%d failed: %v", followerID, err)
		}
	}

	log.Printf("[Worker] NoteCreated: note=%d author=%d fanned to %d followers",
		event.NoteID, event.AuthorID, len(followers))
	return nil
}

func (h *Handler) handleNoteDeleted(ctx context.Context, event queue.FeedEvent) error {
	followers, err := h.followers.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	for _, followerID := range followers {
		if err := h.feedCache.RemoveNote(ctx, followerID, event.NoteID); err != nil {
			log.Printf("[Worker] prune from viewer=%d failed: %v", followerID, err)
		}
	}
	return nil
}

// handleUserFollowed backfills the followed user's recent public notes
// into the follower's cache so a fresh follow shows up without a cold
// rebuild.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.FeedEvent) error {
	recent, err := h.notes.RecentPublicByUser(ctx, event.FollowedID, BackfillLimit)
	if err != nil {
		return fmt.Errorf("recent notes for backfill: %w", err)
	}
	if len(recent) == 0 {
		return nil
	}

	if err := h.feedCache.Warm(ctx, event.FollowerID, recent); err != nil {
		return fmt.Errorf("backfill cache: %w", err)
	}

	log.Printf("[Worker] UserFollowed: backfilled %d notes from user=%d into viewer=%d",
		len(recent), event.FollowedID, event.FollowerID)
	return nil
}

func (h *Handler) handleUserUnfollowed(ctx context.Context, event queue.FeedEvent) error {
	recent, err := h.notes.RecentPublicByUser(ctx, event.FollowedID, cache.FeedCacheCap)
	if err != nil {
		return fmt.Errorf("recent notes for prune: %w", err)
	}

	for _, n := range recent {
		if err := h.feedCache.RemoveNote(ctx, event.FollowerID, n.NoteID); err != nil {
			log.Printf("[Worker] prune note=%d failed: %v", n.NoteID, err)
		}
	}
	return nil
}
