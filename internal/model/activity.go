package model

import "time"

// ActivityDayFormat is the canonical day key, always UTC.
const ActivityDayFormat = "2006-01-02"

// ActivityRecord is the per-day reading ledger row for one library entry.
// pages_read only ever grows within a day; a later smaller page update
// never decrements it. Unique per (user_id, entry_id, day).
type ActivityRecord struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	EntryID     int64     `db:"entry_id" json:"entry_id"`
	Day         time.Time `db:"day" json:"day"`
	PagesRead   int       `db:"pages_read" json:"pages_read"`
	CurrentPage int       `db:"current_page" json:"current_page"`
}

// ActivityEvent is a forward-progress notification emitted by the library
// state machine. Delta is always positive; the state machine never emits
// events for page corrections downward.
type ActivityEvent struct {
	UserID   int64
	EntryID  int64
	Day      time.Time
	Delta    int
	Snapshot int
}

// DayActivity is one point of the zero-filled daily series.
type DayActivity struct {
	Day       string `json:"day"`
	PagesRead int    `json:"pages_read"`
}

// Today returns the current UTC day truncated to midnight. Activity days
// are bucketed in UTC so that the same update never lands on two
// different days depending on server timezone.
func Today() time.Time {
	return DayOf(time.Now())
}

// DayOf truncates t to its UTC day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
