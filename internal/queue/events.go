package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types carried on the feed stream.
const (
	EventNoteCreated    = "note_created"
	EventNoteDeleted    = "note_deleted"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
)

// StreamFeed is the Redis Stream the fan-out workers consume.
const StreamFeed = "stream:feed"

// ConsumerGroupFeed is the consumer group name for the fan-out workers.
const ConsumerGroupFeed = "feed_workers"

// FeedEvent is the single event shape published to the feed stream. The
// events only drive cache maintenance; the database is always written
// first, so a lost event can only leave a cache cold, never wrong.
type FeedEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	// Note events
	NoteID   int64 `json:"note_id,omitempty"`
	AuthorID int64 `json:"author_id,omitempty"`

	// Follow events
	FollowerID int64 `json:"follower_id,omitempty"`
	FollowedID int64 `json:"followed_id,omitempty"`
}

// NewNoteCreatedEvent announces a public note; workers fan it out to all
// of the author's followers.
func NewNoteCreatedEvent(noteID, authorID int64, createdAt time.Time) FeedEvent {
	return FeedEvent{
		Type:      EventNoteCreated,
		Timestamp: createdAt.Unix(),
		NoteID:    noteID,
		AuthorID:  authorID,
	}
}

// NewNoteDeletedEvent announces a deletion; workers prune the note from
// follower caches.
func NewNoteDeletedEvent(noteID, authorID int64) FeedEvent {
	return FeedEvent{
		Type:      EventNoteDeleted,
		Timestamp: time.Now().Unix(),
		NoteID:    noteID,
		AuthorID:  authorID,
	}
}

// NewUserFollowedEvent triggers a backfill of the followed user's recent
// public notes into the follower's cache.
func NewUserFollowedEvent(followerID, followedID int64) FeedEvent {
	return FeedEvent{
		Type:       EventUserFollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FollowedID: followedID,
	}
}

// NewUserUnfollowedEvent triggers pruning of the unfollowed user's notes
// from the follower's cache.
func NewUserUnfollowedEvent(followerID, followedID int64) FeedEvent {
	return FeedEvent{
		Type:       EventUserUnfollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FollowedID: followedID,
	}
}

// ToMap serializes the event for XADD field-value storage.
func (e FeedEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseFeedEvent reads an event back from stream field-values.
func ParseFeedEvent(values map[string]interface{}) (FeedEvent, error) {
	raw, ok := values["data"].(string)
	if !ok {
		return FeedEvent{}, fmt.Errorf("event missing data field")
	}
	var event FeedEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return FeedEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
