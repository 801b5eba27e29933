package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"bookpulse/internal/model"
)

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Record upserts the daily ledger row. The unique
// (user_id, entry_id, day) constraint turns concurrent same-day events
// into a single row whose pages_read accumulates; the page snapshot is
// overwritten by the latest event. pages_read never decreases because the
// state machine only emits positive deltas.
func (r *activityRepository) Record(ctx context.Context, tx *sqlx.Tx, event model.ActivityEvent) error {
	query := `
		INSERT INTO reading_activity (user_id, entry_id, day, pages_read, current_page)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, entry_id, day) DO UPDATE
		SET pages_read = reading_activity.pages_read + EXCLUDED.pages_read,
		    current_page = EXCLUDED.current_page
	`
	_, err := tx.ExecContext(ctx, query,
		event.UserID, event.EntryID, event.Day.Format(model.ActivityDayFormat),
		event.Delta, event.Snapshot)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// DailyTotals sums pages across all of a user's entries per day within
// the closed range. Missing days are simply absent; the service layer
// zero-fills them.
func (r *activityRepository) DailyTotals(ctx context.Context, userID int64, from, to time.Time) (map[string]int, error) {
	query := `
		SELECT to_char(day, 'YYYY-MM-DD') AS day, SUM(pages_read) AS pages_read
		FROM reading_activity
		WHERE user_id = $1 AND day BETWEEN $2 AND $3
		GROUP BY day
		ORDER BY day
	`
	type row struct {
		Day       string `db:"day"`
		PagesRead int    `db:"pages_read"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, userID,
		from.Format(model.ActivityDayFormat), to.Format(model.ActivityDayFormat))
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}

	totals := make(map[string]int, len(rows))
	for _, r := range rows {
		totals[r.Day] = r.PagesRead
	}
	return totals, nil
}
