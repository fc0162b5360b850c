package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/smoketrack/smoketrack/internal/domain"
	"github.com/smoketrack/smoketrack/internal/stats"
)

// EventReader is the slice of the event store the stats service depends on.
type EventReader interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	ListTriggerTags(ctx context.Context) ([]domain.TriggerTag, error)
}

// StatsService computes derived statistics by pulling the full event list
// from the store and running the aggregation engine over it. There is no
// caching; every call re-scans all events.
//
// Store read failures are logged and converted into the documented
// zero-value defaults (count 0, all-zero histogram, absent top trigger).
// They are never surfaced to the presentation layer; the next call simply
// re-attempts the read.
type StatsService struct {
	store EventReader
	log   *zap.Logger
	now   func() time.Time
}

// NewStatsService creates a new stats service reading the wall clock.
func NewStatsService(store EventReader, log *zap.Logger) *StatsService {
	return &StatsService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// WithClock overrides the time source. Used by tests to pin "now".
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// Summary is the headline view: point-in-time counts plus period-over-period
// comparisons and the dominant trigger of the last week.
type Summary struct {
	Today           int                    `json:"today"`
	Yesterday       int                    `json:"yesterday"`
	Week            int                    `json:"week"`
	PreviousWeek    int                    `json:"previous_week"`
	DayChangePct    int                    `json:"day_change_pct"`
	WeekChangePct   int                    `json:"week_change_pct"`
	TopTrigger      *string                `json:"top_trigger"`
	LastThreeDays   [3]int                 `json:"last_three_days"`
	WeeklyBreakdown [stats.DaysPerWeek]int `json:"weekly_breakdown"`
}

// events loads the full event list, degrading to an empty snapshot on
// failure.
func (s *StatsService) events(ctx context.Context) []domain.Event {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		s.log.Error("failed to read events, serving zero defaults", zap.Error(err))
		return nil
	}
	return events
}

// tagged loads events plus tag rows, degrading to empty snapshots on failure.
func (s *StatsService) tagged(ctx context.Context) ([]domain.Event, []domain.TriggerTag) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		s.log.Error("failed to read events, serving zero defaults", zap.Error(err))
		return nil, nil
	}
	tags, err := s.store.ListTriggerTags(ctx)
	if err != nil {
		s.log.Error("failed to read trigger tags, serving zero defaults", zap.Error(err))
		return nil, nil
	}
	return events, tags
}

// TodayCount counts events logged today (local calendar day).
func (s *StatsService) TodayCount(ctx context.Context) int {
	now := s.now()
	start, end := stats.DayWindow(now, 0)
	return stats.CountInRange(s.events(ctx), start, end)
}

// YesterdayCount counts events logged on the previous calendar day.
func (s *StatsService) YesterdayCount(ctx context.Context) int {
	now := s.now()
	start, end := stats.DayWindow(now, 1)
	return stats.CountInRange(s.events(ctx), start, end)
}

// WeekCount counts events logged in the current week (Sunday start).
func (s *StatsService) WeekCount(ctx context.Context) int {
	start, end := stats.WeekWindow(s.now())
	return stats.CountInRange(s.events(ctx), start, end)
}

// PreviousWeekCount counts events in the week before the current one.
func (s *StatsService) PreviousWeekCount(ctx context.Context) int {
	start, end := stats.PreviousWeekWindow(s.now())
	return stats.CountInRange(s.events(ctx), start, end)
}

// WeeklyBreakdown returns this week's per-day counts, 0=Sunday.
func (s *StatsService) WeeklyBreakdown(ctx context.Context) [stats.DaysPerWeek]int {
	return stats.WeeklyBreakdown(s.events(ctx), s.now())
}

// DetailedWeeklyBreakdown returns this week's per-day counts with display
// metadata for progress bars.
func (s *StatsService) DetailedWeeklyBreakdown(ctx context.Context) []stats.DayDetail {
	return stats.DetailedWeeklyBreakdown(s.events(ctx), s.now())
}

// MonthlyBreakdown returns the trailing 30-day histogram, index 29 = today.
func (s *StatsService) MonthlyBreakdown(ctx context.Context) [stats.MonthlyWindowDays]int {
	return stats.MonthlyBreakdown(s.events(ctx), s.now())
}

// YearlyBreakdown returns the trailing 12-calendar-month histogram,
// index 11 = current month.
func (s *StatsService) YearlyBreakdown(ctx context.Context) [stats.YearlyWindowMonths]int {
	return stats.YearlyBreakdown(s.events(ctx), s.now())
}

// LastThreeDays returns [day-before-yesterday, yesterday, today] counts.
func (s *StatsService) LastThreeDays(ctx context.Context) [3]int {
	return stats.LastThreeDays(s.events(ctx), s.now())
}

// TopTrigger returns the most frequent trigger of the trailing 7 days.
func (s *StatsService) TopTrigger(ctx context.Context) (string, bool) {
	events, tags := s.tagged(ctx)
	return stats.TopTrigger(events, tags, s.now())
}

// TopTriggers returns the n most frequent triggers of the trailing 7 days.
func (s *StatsService) TopTriggers(ctx context.Context, n int) []stats.TriggerCount {
	events, tags := s.tagged(ctx)
	return stats.TopTriggers(events, tags, s.now(), n)
}

// Summary assembles the headline statistics in one pass over the snapshot.
func (s *StatsService) Summary(ctx context.Context) Summary {
	now := s.now()
	events, tags := s.tagged(ctx)

	todayStart, todayEnd := stats.DayWindow(now, 0)
	yestStart, yestEnd := stats.DayWindow(now, 1)
	weekStart, weekEnd := stats.WeekWindow(now)
	prevStart, prevEnd := stats.PreviousWeekWindow(now)

	out := Summary{
		Today:           stats.CountInRange(events, todayStart, todayEnd),
		Yesterday:       stats.CountInRange(events, yestStart, yestEnd),
		Week:            stats.CountInRange(events, weekStart, weekEnd),
		PreviousWeek:    stats.CountInRange(events, prevStart, prevEnd),
		LastThreeDays:   stats.LastThreeDays(events, now),
		WeeklyBreakdown: stats.WeeklyBreakdown(events, now),
	}
	out.DayChangePct = stats.PercentageChange(out.Today, out.Yesterday)
	out.WeekChangePct = stats.PercentageChange(out.Week, out.PreviousWeek)

	if top, ok := stats.TopTrigger(events, tags, now); ok {
		out.TopTrigger = &top
	}
	return out
}
