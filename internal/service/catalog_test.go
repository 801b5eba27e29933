package service

import (
	"context"
	"errors"
	"testing"

	"bookpulse/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCatalogService_ResolveOrCreate_NewBook(t *testing.T) {
	mockBooks := &mockBookRepository{
		createFn: func(ctx context.Context, isbn *string, title string, meta model.BookMetadata) (*model.Book, bool, error) {
			return &model.Book{ID: 42, ISBN: isbn, Title: title}, true, nil
		},
	}
	svc := NewCatalogService(mockBooks)

	book, err := svc.ResolveOrCreate(context.Background(), strPtr("9780134190440"), "The Go Programming Language", model.BookMetadata{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if book.ID != 42 {
		t.Errorf("book id = %d, want 42", book.ID)
	}
	if book.Title != "The Go Programming Language" {
		t.Errorf("title = %q", book.Title)
	}
}

func TestCatalogService_ResolveOrCreate_SameISBNReturnsOriginal(t *testing.T) {
	existing := &model.Book{ID: 7, ISBN: strPtr("9780134190440"), Title: "Original Title"}
	mockBooks := &mockBookRepository{
		getByISBNFn: func(ctx context.Context, isbn string) (*model.Book, error) {
			return existing, nil
		},
	}
	svc := NewCatalogService(mockBooks)

	// A second submission with different metadata must return the first
	// book untouched.
	book, err := svc.ResolveOrCreate(context.Background(), strPtr("9780134190440"), "Different Title", model.BookMetadata{Author: strPtr("Someone Else")})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if book.ID != 7 {
		t.Errorf("book id = %d, want 7", book.ID)
	}
	if book.Title != "Original Title" {
		t.Errorf("title = %q, want original metadata preserved", book.Title)
	}
	if mockBooks.createCalls != 0 {
		t.Errorf("create called %d times, want 0", mockBooks.createCalls)
	}
}

func TestCatalogService_ResolveOrCreate_NoISBNAlwaysCreates(t *testing.T) {
	mockBooks := &mockBookRepository{}
	svc := NewCatalogService(mockBooks)

	first, err := svc.ResolveOrCreate(context.Background(), nil, "Untitled Draft", model.BookMetadata{})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.ResolveOrCreate(context.Background(), nil, "Untitled Draft", model.BookMetadata{})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	if mockBooks.createCalls != 2 {
		t.Errorf("create called %d times, want 2", mockBooks.createCalls)
	}
	if first.ID == second.ID {
		t.Error("books without ISBN should never dedup")
	}
}

func TestCatalogService_ResolveOrCreate_BlankISBNTreatedAsMissing(t *testing.T) {
	mockBooks := &mockBookRepository{
		getByISBNFn: func(ctx context.Context, isbn string) (*model.Book, error) {
			t.Errorf("unexpected ISBN lookup for %q", isbn)
			return nil, model.ErrBookNotFound
		},
	}
	svc := NewCatalogService(mockBooks)

	book, err := svc.ResolveOrCreate(context.Background(), strPtr("   "), "A Title", model.BookMetadata{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if book.ISBN != nil {
		t.Errorf("isbn = %v, want nil", *book.ISBN)
	}
}

func TestCatalogService_ResolveOrCreate_TitleRequired(t *testing.T) {
	svc := NewCatalogService(&mockBookRepository{})

	_, err := svc.ResolveOrCreate(context.Background(), nil, "   ", model.BookMetadata{})
	if !errors.Is(err, model.ErrTitleRequired) {
		t.Fatalf("err = %v, want ErrTitleRequired", err)
	}
}

func TestCatalogService_ResolveOrCreate_LostInsertRaceRereads(t *testing.T) {
	winner := &model.Book{ID: 9, ISBN: strPtr("9781491941959"), Title: "Winner"}
	lookups := 0
	mockBooks := &mockBookRepository{
		getByISBNFn: func(ctx context.Context, isbn string) (*model.Book, error) {
			lookups++
			if lookups == 1 {
				// Not there yet when we first look.
				return nil, model.ErrBookNotFound
			}
			return winner, nil
		},
		createFn: func(ctx context.Context, isbn *string, title string, meta model.BookMetadata) (*model.Book, bool, error) {
			// Concurrent insert won; ON CONFLICT DO NOTHING returned no row.
			return nil, false, nil
		},
	}
	svc := NewCatalogService(mockBooks)

	book, err := svc.ResolveOrCreate(context.Background(), strPtr("9781491941959"), "Loser", model.BookMetadata{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if book.ID != 9 {
		t.Errorf("book id = %d, want the winner's row", book.ID)
	}
	if lookups != 2 {
		t.Errorf("lookups = %d, want 2", lookups)
	}
}
