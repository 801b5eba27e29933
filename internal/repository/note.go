package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"bookpulse/internal/cache"
	"bookpulse/internal/model"
)

type noteRepository struct {
	db *sqlx.DB
}

func NewNoteRepository(db *sqlx.DB) NoteRepository {
	return &noteRepository{db: db}
}

const noteColumns = `id, user_id, entry_id, text, emotion, quote, page_number, chapter, is_public, created_at`

func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	query := `
		INSERT INTO notes (user_id, entry_id, text, emotion, quote, page_number, chapter, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + noteColumns
	err := r.db.GetContext(ctx, note, query,
		note.UserID, note.EntryID, note.Text, note.Emotion, note.Quote,
		note.PageNumber, note.Chapter, note.IsPublic)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *noteRepository) GetByID(ctx context.Context, noteID int64) (*model.Note, error) {
	var note model.Note
	err := r.db.GetContext(ctx, &note,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1`, noteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &note, nil
}

// GetPublicByIDs hydrates cached feed candidates. Results are re-ordered
// to match the input order so the cache's ranking survives the round trip;
// notes made private or deleted since caching simply drop out.
func (r *noteRepository) GetPublicByIDs(ctx context.Context, noteIDs []int64) ([]model.Note, error) {
	if len(noteIDs) == 0 {
		return []model.Note{}, nil
	}

	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = ANY($1) AND is_public`
	var notes []model.Note
	if err := r.db.SelectContext(ctx, &notes, query, pq.Array(noteIDs)); err != nil {
		return nil, fmt.Errorf("get notes by ids: %w", err)
	}

	byID := make(map[int64]model.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}
	ordered := make([]model.Note, 0, len(noteIDs))
	for _, id := range noteIDs {
		if n, ok := byID[id]; ok {
			ordered = append(ordered, n)
		}
	}
	return ordered, nil
}

func (r *noteRepository) Delete(ctx context.Context, noteID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM notes WHERE id = $1)`, noteID)
		if exists {
			return model.ErrNotNoteOwner
		}
		return model.ErrNoteNotFound
	}
	return nil
}

func (r *noteRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2
	`
	var notes []model.Note
	if err := r.db.SelectContext(ctx, &notes, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list notes for user: %w", err)
	}
	return notes, nil
}

// ListPublicByAuthors fetches the feed candidate set: public notes only,
// newest-first, id ascending on equal timestamps so repeated assemblies
// see the same order.
func (r *noteRepository) ListPublicByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Note, error) {
	if len(authorIDs) == 0 {
		return []model.Note{}, nil
	}

	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE user_id = ANY($1) AND is_public
		ORDER BY created_at DESC, id ASC
		LIMIT $2
	`
	var notes []model.Note
	if err := r.db.SelectContext(ctx, &notes, query, pq.Array(authorIDs), limit); err != nil {
		return nil, fmt.Errorf("list public notes: %w", err)
	}
	return notes, nil
}

func (r *noteRepository) RecentPublicByUser(ctx context.Context, userID int64, limit int) ([]cache.NoteScore, error) {
	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint AS timestamp
		FROM notes
		WHERE user_id = $1 AND is_public
		ORDER BY created_at DESC
		LIMIT $2
	`
	type row struct {
		ID        int64 `db:"id"`
		Timestamp int64 `db:"timestamp"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("recent public notes: %w", err)
	}

	scores := make([]cache.NoteScore, len(rows))
	for i, r := range rows {
		scores[i] = cache.NoteScore{NoteID: r.ID, Timestamp: r.Timestamp}
	}
	return scores, nil
}

func (r *noteRepository) RecentPublicByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]cache.NoteScore, error) {
	if len(authorIDs) == 0 {
		return []cache.NoteScore{}, nil
	}

	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint AS timestamp
		FROM notes
		WHERE user_id = ANY($1) AND is_public
		ORDER BY created_at DESC
		LIMIT $2
	`
	type row struct {
		ID        int64 `db:"id"`
		Timestamp int64 `db:"timestamp"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(authorIDs), limit); err != nil {
		return nil, fmt.Errorf("recent public notes by authors: %w", err)
	}

	scores := make([]cache.NoteScore, len(rows))
	for i, r := range rows {
		scores[i] = cache.NoteScore{NoteID: r.ID, Timestamp: r.Timestamp}
	}
	return scores, nil
}

// Like inserts a like row; the unique (note_id, user_id) constraint is
// what makes likes idempotent-per-user.
func (r *noteRepository) Like(ctx context.Context, noteID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO note_likes (note_id, user_id) VALUES ($1, $2)`, noteID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.ErrAlreadyLiked
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (r *noteRepository) Unlike(ctx context.Context, noteID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM note_likes WHERE note_id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}

func (r *noteRepository) LikeCounts(ctx context.Context, noteIDs []int64) (map[int64]int, error) {
	return r.countByNote(ctx, "note_likes", noteIDs)
}

func (r *noteRepository) CommentCounts(ctx context.Context, noteIDs []int64) (map[int64]int, error) {
	return r.countByNote(ctx, "note_comments", noteIDs)
}

func (r *noteRepository) countByNote(ctx context.Context, table string, noteIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(noteIDs))
	for _, id := range noteIDs {
		result[id] = 0
	}
	if len(noteIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(
		`SELECT note_id, COUNT(*) AS count FROM %s WHERE note_id = ANY($1) GROUP BY note_id`, table)
	type row struct {
		NoteID int64 `db:"note_id"`
		Count  int   `db:"count"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(noteIDs)); err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}
	for _, r := range rows {
		result[r.NoteID] = r.Count
	}
	return result, nil
}

func (r *noteRepository) CheckLikes(ctx context.Context, userID int64, noteIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(noteIDs))
	for _, id := range noteIDs {
		result[id] = false
	}
	if len(noteIDs) == 0 {
		return result, nil
	}

	query := `SELECT note_id FROM note_likes WHERE user_id = $1 AND note_id = ANY($2)`
	var liked []int64
	err := r.db.SelectContext(ctx, &liked, query, userID, pq.Array(noteIDs))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check likes: %w", err)
	}
	for _, id := range liked {
		result[id] = true
	}
	return result, nil
}

func (r *noteRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	query := `
		INSERT INTO note_comments (note_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, note_id, user_id, text, created_at
	`
	err := r.db.GetContext(ctx, comment, query, comment.NoteID, comment.UserID, comment.Text)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *noteRepository) CommentsForNote(ctx context.Context, noteID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.note_id, c.user_id, c.text, c.created_at,
		       u.id AS "author.id", u.username AS "author.username",
		       u.display_name AS "author.display_name", u.avatar_url AS "author.avatar_url"
		FROM note_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.note_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`
	type row struct {
		model.Comment
		Author model.UserSummary `db:"author"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, noteID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, r := range rows {
		c := r.Comment
		author := r.Author
		c.Author = &author
		comments[i] = c
	}
	return comments, nil
}
