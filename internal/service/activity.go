package service

import (
	"context"
	"time"

	"bookpulse/internal/model"
	"bookpulse/internal/repository"
)

const (
	// ActivityDefaultDays is the window returned when the caller does not
	// ask for one.
	ActivityDefaultDays = 30

	// ActivityMaxDays caps the window a single request can ask for.
	ActivityMaxDays = 365
)

// ActivityService reads the daily reading ledger back out as a
// zero-filled series.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	userRepo     repository.UserRepository
}

func NewActivityService(activityRepo repository.ActivityRepository, userRepo repository.UserRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, userRepo: userRepo}
}

// DailySeries returns one point per day for the last `days` days,
// ascending, ending on today (UTC). Days without recorded progress appear
// with zero pages, so a 7-day request always yields exactly 7 points.
func (s *ActivityService) DailySeries(ctx context.Context, userID int64, days int) ([]model.DayActivity, error) {
	if days <= 0 {
		days = ActivityDefaultDays
	}
	if days > ActivityMaxDays {
		days = ActivityMaxDays
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrUserNotFound
	}

	to := model.Today()
	from := to.AddDate(0, 0, -(days - 1))

	totals, err := s.activityRepo.DailyTotals(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	series := make([]model.DayActivity, 0, days)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.ActivityDayFormat)
		series = append(series, model.DayActivity{
			Day:       key,
			PagesRead: totals[key],
		})
	}
	return series, nil
}

// SeriesRange is DailySeries with explicit bounds, still zero-filled and
// ascending. Used by callers that page through history.
func (s *ActivityService) SeriesRange(ctx context.Context, userID int64, from, to time.Time) ([]model.DayActivity, error) {
	from = model.DayOf(from)
	to = model.DayOf(to)
	if to.Before(from) {
		from, to = to, from
	}
	if int(to.Sub(from).Hours()/24) >= ActivityMaxDays {
		from = to.AddDate(0, 0, -(ActivityMaxDays - 1))
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrUserNotFound
	}

	totals, err := s.activityRepo.DailyTotals(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	var series []model.DayActivity
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.ActivityDayFormat)
		series = append(series, model.DayActivity{
			Day:       key,
			PagesRead: totals[key],
		})
	}
	return series, nil
}
