package service

import (
	"context"
	"errors"
	"strings"

	"bookpulse/internal/model"
	"bookpulse/internal/repository"
)

// CatalogService is the dedup-by-ISBN book registry. Submitting the same
// ISBN any number of times yields the same book; metadata of the first
// submission wins and is never overwritten.
type CatalogService struct {
	bookRepo repository.BookRepository
}

func NewCatalogService(bookRepo repository.BookRepository) *CatalogService {
	return &CatalogService{bookRepo: bookRepo}
}

// ResolveOrCreate returns the existing book for the ISBN, or creates one.
// Uniqueness is owned by the database's partial unique index: if a
// concurrent caller wins the insert race, the blocked insert is retried
// as a lookup, so exactly one book survives either way.
func (s *CatalogService) ResolveOrCreate(ctx context.Context, isbn *string, title string, meta model.BookMetadata) (*model.Book, error) {
	isbn = normalizeISBN(isbn)

	if isbn != nil {
		book, err := s.bookRepo.GetByISBN(ctx, *isbn)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, model.ErrBookNotFound) {
			return nil, err
		}
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.ErrTitleRequired
	}

	book, created, err := s.bookRepo.Create(ctx, isbn, title, meta)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the race on the unique index; the winner's row is the book.
		return s.bookRepo.GetByISBN(ctx, *isbn)
	}
	return book, nil
}

// Get returns a book by id.
func (s *CatalogService) Get(ctx context.Context, bookID int64) (*model.Book, error) {
	return s.bookRepo.GetByID(ctx, bookID)
}

func normalizeISBN(isbn *string) *string {
	if isbn == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*isbn)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
