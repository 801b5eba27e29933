package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bookpulse/internal/model"
)

type bookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create inserts a book. The partial unique index on isbn makes the insert
// a no-op when another row already owns that ISBN; ON CONFLICT DO NOTHING
// then returns zero rows and we report created=false so the caller can
// re-read the surviving row. This is how concurrent submissions of the
// same ISBN collapse into exactly one book.
func (r *bookRepository) Create(ctx context.Context, isbn *string, title string, meta model.BookMetadata) (*model.Book, bool, error) {
	query := `
		INSERT INTO books (isbn, title, author, total_pages, cover_url, description, publisher, published_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (isbn) WHERE isbn IS NOT NULL DO NOTHING
		RETURNING id, isbn, title, author, total_pages, cover_url, description, publisher, published_date, created_at
	`
	var book model.Book
	err := r.db.GetContext(ctx, &book, query,
		isbn, title, meta.Author, meta.TotalPages, meta.CoverURL,
		meta.Description, meta.Publisher, meta.PublishedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert book: %w", err)
	}
	return &book, true, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	query := `
		SELECT id, isbn, title, author, total_pages, cover_url, description, publisher, published_date, created_at
		FROM books
		WHERE id = $1
	`
	var book model.Book
	err := r.db.GetContext(ctx, &book, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	query := `
		SELECT id, isbn, title, author, total_pages, cover_url, description, publisher, published_date, created_at
		FROM books
		WHERE isbn = $1
	`
	var book model.Book
	err := r.db.GetContext(ctx, &book, query, isbn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book by isbn: %w", err)
	}
	return &book, nil
}
