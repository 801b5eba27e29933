package model

import (
	"fmt"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{ErrNegativePage, KindValidation},
		{ErrTitleRequired, KindValidation},
		{ErrCannotFollowSelf, KindValidation},
		{ErrAlreadyInLibrary, KindConflict},
		{ErrAlreadyFollowing, KindConflict},
		{ErrBookNotFound, KindNotFound},
		{ErrEntryNotFound, KindNotFound},
		{fmt.Errorf("insert library entry: %w", ErrAlreadyInLibrary), KindConflict},
		{&AlreadyInLibraryError{EntryID: 1, Status: StatusReading}, KindConflict},
		{fmt.Errorf("connection reset"), KindStorage},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDayOf_BucketsInUTC(t *testing.T) {
	// 23:30 in UTC+7 is 16:30 UTC the same day; 02:30 in UTC-5 is 07:30
	// UTC. Both must land on their UTC day regardless of server zone.
	plus7 := time.FixedZone("UTC+7", 7*3600)
	d := DayOf(time.Date(2026, 3, 1, 2, 30, 0, 0, plus7))
	if got := d.Format(ActivityDayFormat); got != "2026-02-28" {
		t.Errorf("day = %s, want 2026-02-28", got)
	}

	minus5 := time.FixedZone("UTC-5", -5*3600)
	d = DayOf(time.Date(2026, 3, 1, 22, 30, 0, 0, minus5))
	if got := d.Format(ActivityDayFormat); got != "2026-03-02" {
		t.Errorf("day = %s, want 2026-03-02", got)
	}
}
