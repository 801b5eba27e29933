package model

import (
	"errors"
	"time"
)

// Book is the canonical catalog record, shared by every user's library.
// At most one Book exists per non-null ISBN (enforced by a partial unique
// index); repeated submissions of the same ISBN resolve to the same row.
type Book struct {
	ID            int64     `db:"id" json:"id"`
	ISBN          *string   `db:"isbn" json:"isbn"`
	Title         string    `db:"title" json:"title"`
	Author        *string   `db:"author" json:"author"`
	TotalPages    *int      `db:"total_pages" json:"total_pages"`
	CoverURL      *string   `db:"cover_url" json:"cover_url"`
	Description   *string   `db:"description" json:"description"`
	Publisher     *string   `db:"publisher" json:"publisher"`
	PublishedDate *string   `db:"published_date" json:"published_date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// BookMetadata carries the optional catalog fields for book creation.
// The catalog stores these opaquely and never overwrites them on an
// idempotent re-submission.
type BookMetadata struct {
	Author        *string `json:"author"`
	TotalPages    *int    `json:"total_pages"`
	CoverURL      *string `json:"cover_url"`
	Description   *string `json:"description"`
	Publisher     *string `json:"publisher"`
	PublishedDate *string `json:"published_date"`
}

// BookSummary is the lightweight book shape embedded in library listings
// and feed entries.
type BookSummary struct {
	ID     int64   `db:"id" json:"id"`
	Title  string  `db:"title" json:"title"`
	Author *string `db:"author" json:"author"`
}

var (
	// ErrBookNotFound is returned when a referenced book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrTitleRequired is returned when a book is submitted with a blank title.
	ErrTitleRequired = errors.New("book title is required")
)
