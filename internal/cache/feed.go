package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedCachePrefix is the key prefix for per-viewer candidate caches.
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap is the maximum number of note IDs cached per viewer.
	FeedCacheCap = 500

	// FeedCacheTTL expires caches of inactive viewers.
	FeedCacheTTL = 7 * 24 * time.Hour
)

// NoteScore is a note ID paired with its created_at epoch, the ZSET score.
type NoteScore struct {
	NoteID    int64
	Timestamp int64
}

// FeedCache holds each viewer's feed candidate set: the IDs of public
// notes by accounts they follow, scored by creation time. It is purely an
// accelerator for candidate selection — ranking, visibility and counts
// are always recomputed from the database at read time, so a stale or
// missing cache degrades latency, never correctness.
type FeedCache interface {
	// AddNote fans a note into one viewer's candidate set, trimming to the
	// cap and refreshing the TTL in a single pipeline.
	AddNote(ctx context.Context, viewerID, noteID int64, timestamp int64) error

	// RemoveNote drops a note from a viewer's candidate set.
	RemoveNote(ctx context.Context, viewerID, noteID int64) error

	// Candidates returns up to limit note IDs, newest score first.
	Candidates(ctx context.Context, viewerID int64, limit int) ([]int64, error)

	// Warm bulk-loads a viewer's candidate set.
	Warm(ctx context.Context, viewerID int64, notes []NoteScore) error

	// Exists reports whether the viewer has a cache entry at all. False
	// means new viewer or expired TTL; the feed service warms it then.
	Exists(ctx context.Context, viewerID int64) (bool, error)
}

// RedisFeedCache implements FeedCache with Redis sorted sets.
type RedisFeedCache struct {
	client *redis.Client
}

func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

func feedKey(viewerID int64) string {
	return fmt.Sprintf("%s%d", FeedCachePrefix, viewerID)
}

func (c *RedisFeedCache) AddNote(ctx context.Context, viewerID, noteID int64, timestamp int64) error {
	key := feedKey(viewerID)

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(noteID, 10),
	})
	// Keep only the FeedCacheCap newest scores.
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] AddNote FAILED: viewer=%d note=%d err=%v", viewerID, noteID, err)
		return fmt.Errorf("add note to feed cache: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) RemoveNote(ctx context.Context, viewerID, noteID int64) error {
	key := feedKey(viewerID)
	member := strconv.FormatInt(noteID, 10)

	if err := c.client.ZRem(ctx, key, member).Err(); err != nil {
		log.Printf("[FeedCache] RemoveNote FAILED: viewer=%d note=%d err=%v", viewerID, noteID, err)
		return fmt.Errorf("remove note from feed cache: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) Candidates(ctx context.Context, viewerID int64, limit int) ([]int64, error) {
	key := feedKey(viewerID)

	members, err := c.client.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		log.Printf("[FeedCache] Candidates FAILED: viewer=%d err=%v", viewerID, err)
		return nil, fmt.Errorf("get feed candidates: %w", err)
	}

	// Refresh TTL on access.
	c.client.Expire(ctx, key, FeedCacheTTL)

	ids := make([]int64, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse note id %q: %w", m, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (c *RedisFeedCache) Warm(ctx context.Context, viewerID int64, notes []NoteScore) error {
	if len(notes) == 0 {
		return nil
	}

	key := feedKey(viewerID)
	members := make([]redis.Z, len(notes))
	for i, n := range notes {
		members[i] = redis.Z{
			Score:  float64(n.Timestamp),
			Member: strconv.FormatInt(n.NoteID, 10),
		}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] Warm FAILED: viewer=%d notes=%d err=%v", viewerID, len(notes), err)
		return fmt.Errorf("warm feed cache: %w", err)
	}

	log.Printf("[FeedCache] Warm OK: viewer=%d notes=%d", viewerID, len(notes))
	return nil
}

func (c *RedisFeedCache) Exists(ctx context.Context, viewerID int64) (bool, error) {
	exists, err := c.client.Exists(ctx, feedKey(viewerID)).Result()
	if err != nil {
		return false, fmt.Errorf("check feed cache exists: %w", err)
	}
	return exists > 0, nil
}
