package model

import (
	"errors"
	"time"
)

// Note is a short post, optionally tied to one of the author's library
// entries. Deleting the entry detaches the note (EntryID goes nil), it
// does not delete it.
type Note struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	EntryID    *int64    `db:"entry_id" json:"entry_id"`
	Text       *string   `db:"text" json:"text"`
	Emotion    *string   `db:"emotion" json:"emotion"`
	Quote      *string   `db:"quote" json:"quote"`
	PageNumber *int      `db:"page_number" json:"page_number"`
	Chapter    *string   `db:"chapter" json:"chapter"`
	IsPublic   bool      `db:"is_public" json:"is_public"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FeedNote is a note enriched for feed display. LikeCount and
// CommentCount are computed from the like/comment rows at read time;
// there is no cached counter to drift.
type FeedNote struct {
	Note
	Author         UserSummary  `json:"author"`
	Book           *BookSummary `json:"book,omitempty"`
	LikeCount      int          `json:"like_count"`
	CommentCount   int          `json:"comment_count"`
	ViewerHasLiked bool         `json:"viewer_has_liked"`
	AuthorIsMutual bool         `json:"author_is_mutual"`
}

// CreateNoteRequest is the input for creating a note.
type CreateNoteRequest struct {
	Text       *string `json:"text"`
	Emotion    *string `json:"emotion"`
	Quote      *string `json:"quote"`
	PageNumber *int    `json:"page_number"`
	Chapter    *string `json:"chapter"`
	EntryID    *int64  `json:"entry_id"`
	IsPublic   *bool   `json:"is_public"`
}

// Comment is an append-only comment on a note, listed oldest-first.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	NoteID    int64        `db:"note_id" json:"note_id"`
	UserID    int64        `db:"user_id" json:"-"`
	Text      string       `db:"text" json:"text"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"`
}

const MaxNoteTextLength = 2200

var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrNotNoteOwner    = errors.New("not the owner of this note")
	ErrEmptyNote       = errors.New("note needs text, emotion or quote")
	ErrNoteTooLong     = errors.New("note text too long")
	ErrAlreadyLiked    = errors.New("note already liked")
	ErrNotLiked        = errors.New("note not liked")
	ErrCommentRequired = errors.New("comment text is required")
)
