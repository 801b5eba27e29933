package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"bookpulse/internal/model"
	"bookpulse/internal/queue"
	"bookpulse/internal/repository"
)

// NoteService handles note authoring and the like/comment surfaces.
type NoteService struct {
	noteRepo    repository.NoteRepository
	libraryRepo repository.LibraryRepository
	publisher   queue.Publisher
}

func NewNoteService(noteRepo repository.NoteRepository, libraryRepo repository.LibraryRepository, publisher queue.Publisher) *NoteService {
	return &NoteService{noteRepo: noteRepo, libraryRepo: libraryRepo, publisher: publisher}
}

// Create validates and stores a note. A note needs at least one of text,
// emotion or quote; an entry reference must point at one of the author's
// own entries. Public notes are announced on the feed stream after the
// row is committed.
func (s *NoteService) Create(ctx context.Context, userID int64, req model.CreateNoteRequest) (*model.Note, error) {
	text := trimPtr(req.Text)
	emotion := trimPtr(req.Emotion)
	quote := trimPtr(req.Quote)

	if text == nil && emotion == nil && quote == nil {
		return nil, model.ErrEmptyNote
	}
	if text != nil && len(*text) > model.MaxNoteTextLength {
		return nil, model.ErrNoteTooLong
	}

	if req.EntryID != nil {
		if _, err := s.libraryRepo.GetForUser(ctx, *req.EntryID, userID); err != nil {
			return nil, err
		}
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	note := &model.Note{
		UserID:     userID,
		EntryID:    req.EntryID,
		Text:       text,
		Emotion:    emotion,
		Quote:      quote,
		PageNumber: req.PageNumber,
		Chapter:    req.Chapter,
		IsPublic:   isPublic,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	if note.IsPublic {
		event := queue.NewNoteCreatedEvent(note.ID, note.UserID, note.CreatedAt)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[NoteService] publish note created failed: note=%d err=%v", note.ID, err)
		}
	}
	return note, nil
}

// Get returns a note when the viewer may see it: public notes for
// everyone, private ones only for their author.
func (s *NoteService) Get(ctx context.Context, viewerID, noteID int64) (*model.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !note.IsPublic && note.UserID != viewerID {
		return nil, model.ErrNoteNotFound
	}
	return note, nil
}

// Delete removes the author's own note and prunes it from follower caches.
func (s *NoteService) Delete(ctx context.Context, userID, noteID int64) error {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if err := s.noteRepo.Delete(ctx, noteID, userID); err != nil {
		return err
	}

	if note.IsPublic {
		event := queue.NewNoteDeletedEvent(noteID, note.UserID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[NoteService] publish note deleted failed: note=%d err=%v", noteID, err)
		}
	}
	return nil
}

// ListForUser returns the user's own notes, public and private, newest
// first.
func (s *NoteService) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Note, error) {
	if limit <= 0 || limit > FeedMaxLimit {
		limit = FeedDefaultLimit
	}
	return s.noteRepo.ListForUser(ctx, userID, limit)
}

// Like records the viewer's like on a visible note, once.
func (s *NoteService) Like(ctx context.Context, viewerID, noteID int64) error {
	if _, err := s.Get(ctx, viewerID, noteID); err != nil {
		return err
	}
	return s.noteRepo.Like(ctx, noteID, viewerID)
}

// Unlike removes the viewer's like.
func (s *NoteService) Unlike(ctx context.Context, viewerID, noteID int64) error {
	err := s.noteRepo.Unlike(ctx, noteID, viewerID)
	if errors.Is(err, model.ErrNotLiked) {
		// Distinguish "never liked" from "note gone".
		if _, getErr := s.noteRepo.GetByID(ctx, noteID); getErr != nil {
			return getErr
		}
	}
	return err
}

// Comment appends a comment to a visible note.
func (s *NoteService) Comment(ctx context.Context, viewerID, noteID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrCommentRequired
	}
	if _, err := s.Get(ctx, viewerID, noteID); err != nil {
		return nil, err
	}

	comment := &model.Comment{NoteID: noteID, UserID: viewerID, Text: text}
	if err := s.noteRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Comments lists a visible note's comments oldest-first.
func (s *NoteService) Comments(ctx context.Context, viewerID, noteID int64) ([]model.Comment, error) {
	if _, err := s.Get(ctx, viewerID, noteID); err != nil {
		return nil, err
	}
	return s.noteRepo.CommentsForNote(ctx, noteID)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
