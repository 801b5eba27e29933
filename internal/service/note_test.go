package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bookpulse/internal/model"
	"bookpulse/internal/queue"
)

func TestNoteService_Create_PublicPublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewNoteService(&mockNoteRepository{}, &mockLibraryRepository{}, pub)

	note, err := svc.Create(context.Background(), 1, model.CreateNoteRequest{Text: strPtr("loved this chapter")})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !note.IsPublic {
		t.Error("notes default to public")
	}
	if len(pub.published) != 1 || pub.published[0].Type != queue.EventNoteCreated {
		t.Errorf("events = %+v, want one note_created", pub.published)
	}
}

func TestNoteService_Create_PrivateSkipsEvent(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewNoteService(&mockNoteRepository{}, &mockLibraryRepository{}, pub)

	private := false
	_, err := svc.Create(context.Background(), 1, model.CreateNoteRequest{
		Text:     strPtr("just for me"),
		IsPublic: &private,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("published %d events for a private note, want 0", len(pub.published))
	}
}

func TestNoteService_Create_Validation(t *testing.T) {
	svc := NewNoteService(&mockNoteRepository{}, &mockLibraryRepository{}, &mockPublisher{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, model.CreateNoteRequest{}); !errors.Is(err, model.ErrEmptyNote) {
		t.Errorf("empty note: err = %v, want ErrEmptyNote", err)
	}
	if _, err := svc.Create(ctx, 1, model.CreateNoteRequest{Text: strPtr("   ")}); !errors.Is(err, model.ErrEmptyNote) {
		t.Errorf("whitespace note: err = %v, want ErrEmptyNote", err)
	}

	long := strings.Repeat("a", model.MaxNoteTextLength+1)
	if _, err := svc.Create(ctx, 1, model.CreateNoteRequest{Text: &long}); !errors.Is(err, model.ErrNoteTooLong) {
		t.Errorf("long note: err = %v, want ErrNoteTooLong", err)
	}

	// Emotion alone is enough.
	if _, err := svc.Create(ctx, 1, model.CreateNoteRequest{Emotion: strPtr("moved")}); err != nil {
		t.Errorf("emotion-only note: err = %v, want nil", err)
	}
}

func TestNoteService_Create_EntryMustBelongToAuthor(t *testing.T) {
	svc := NewNoteService(&mockNoteRepository{}, &mockLibraryRepository{}, &mockPublisher{})

	entryID := int64(99)
	_, err := svc.Create(context.Background(), 1, model.CreateNoteRequest{
		Text:    strPtr("on someone else's entry"),
		EntryID: &entryID,
	})
	if !errors.Is(err, model.ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestNoteService_Get_PrivateHiddenFromOthers(t *testing.T) {
	mockNotes := &mockNoteRepository{
		getByIDFn: func(ctx context.Context, noteID int64) (*model.Note, error) {
			return &model.Note{ID: noteID, UserID: 1, IsPublic: false}, nil
		},
	}
	svc := NewNoteService(mockNotes, &mockLibraryRepository{}, &mockPublisher{})
	ctx := context.Background()

	if _, err := svc.Get(ctx, 1, 7); err != nil {
		t.Errorf("owner read: err = %v, want nil", err)
	}
	if _, err := svc.Get(ctx, 2, 7); !errors.Is(err, model.ErrNoteNotFound) {
		t.Errorf("stranger read: err = %v, want ErrNoteNotFound", err)
	}
}

func TestNoteService_Delete_PublicPrunesCaches(t *testing.T) {
	pub := &mockPublisher{}
	mockNotes := &mockNoteRepository{
		getByIDFn: func(ctx context.Context, noteID int64) (*model.Note, error) {
			return &model.Note{ID: noteID, UserID: 1, IsPublic: true, CreatedAt: time.Now()}, nil
		},
	}
	svc := NewNoteService(mockNotes, &mockLibraryRepository{}, pub)

	if err := svc.Delete(context.Background(), 1, 7); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0].Type != queue.EventNoteDeleted {
		t.Errorf("events = %+v, want one note_deleted", pub.published)
	}
}

func TestNoteService_Like_VisibleNoteOnly(t *testing.T) {
	mockNotes := &mockNoteRepository{
		getByIDFn: func(ctx context.Context, noteID int64) (*model.Note, error) {
			return &model.Note{ID: noteID, UserID: 1, IsPublic: false}, nil
		},
	}
	svc := NewNoteService(mockNotes, &mockLibraryRepository{}, &mockPublisher{})

	err := svc.Like(context.Background(), 2, 7)
	if !errors.Is(err, model.ErrNoteNotFound) {
		t.Fatalf("err = %v, want ErrNoteNotFound", err)
	}
	if len(mockNotes.likeCalls) != 0 {
		t.Errorf("like reached the repository %d times, want 0", len(mockNotes.likeCalls))
	}
}

func TestNoteService_Like_AlreadyLiked(t *testing.T) {
	mockNotes := &mockNoteRepository{
		getByIDFn: func(ctx context.Context, noteID int64) (*model.Note, error) {
			return &model.Note{ID: noteID, UserID: 1, IsPublic: true}, nil
		},
		likeFn: func(ctx context.Context, noteID, userID int64) error {
			return model.ErrAlreadyLiked
		},
	}
	svc := NewNoteService(mockNotes, &mockLibraryRepository{}, &mockPublisher{})

	err := svc.Like(context.Background(), 2, 7)
	if !errors.Is(err, model.ErrAlreadyLiked) {
		t.Fatalf("err = %v, want ErrAlreadyLiked", err)
	}
}

func TestNoteService_Unlike_MissingNoteBeatsNotLiked(t *testing.T) {
	mockNotes := &mockNoteRepository{
		unlikeFn: func(ctx context.Context, noteID, userID int64) error {
			return model.ErrNotLiked
		},
	}
	svc := NewNoteService(mockNotes, &mockLibraryRepository{}, &mockPublisher{})

	err := svc.Unlike(context.Background(), 2, 404)
	if !errors.Is(err, model.ErrNoteNotFound) {
		t.Fatalf("err = %v, want ErrNoteNotFound", err)
	}
}

func TestNoteService_Comment_Validation(t *testing.T) {
	mockNotes := &mockNoteRepository{
		getByIDFn: func(ctx context.Context, noteID int64) (*model.Note, error) {
			return &model.Note{ID: noteID, UserID: 1, IsPublic: true}, nil
		},
	}
	svc := NewNoteService(mockNotes, &mockLibraryRepository{}, &mockPublisher{})
	ctx := context.Background()

	if _, err := svc.Comment(ctx, 2, 7, "   "); !errors.Is(err, model.ErrCommentRequired) {
		t.Errorf("blank comment: err = %v, want ErrCommentRequired", err)
	}

	comment, err := svc.Comment(ctx, 2, 7, "  great pick  ")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if comment.Text != "great pick" {
		t.Errorf("text = %q, want trimmed", comment.Text)
	}
}
