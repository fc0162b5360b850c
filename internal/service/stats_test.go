package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smoketrack/smoketrack/internal/domain"
	"github.com/smoketrack/smoketrack/internal/stats"
)

// testNow is a Wednesday afternoon; the current week began Sunday June 15.
var testNow = time.Date(2025, time.June, 18, 15, 0, 0, 0, time.UTC)

// MockEventReader is a mock implementation of EventReader.
type MockEventReader struct {
	mock.Mock
}

func (m *MockEventReader) ListEvents(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventReader) ListTriggerTags(ctx context.Context) ([]domain.TriggerTag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TriggerTag), args.Error(1)
}

func newService(events []domain.Event, tags []domain.TriggerTag) *StatsService {
	store := new(MockEventReader)
	store.On("ListEvents", mock.Anything).Return(events, nil)
	store.On("ListTriggerTags", mock.Anything).Return(tags, nil)
	return NewStatsService(store, zap.NewNop()).WithClock(func() time.Time { return testNow })
}

// eventsAt builds events with sequential ids at the given instants.
func eventsAt(instants ...time.Time) []domain.Event {
	events := make([]domain.Event, 0, len(instants))
	for i, ts := range instants {
		events = append(events, domain.Event{ID: int64(i + 1), Timestamp: ts})
	}
	return events
}

func TestStatsService_DayCountsAndLastThreeDays(t *testing.T) {
	today := time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC)

	// Three events today, two yesterday, none the day before.
	events := eventsAt(
		today.Add(8*time.Hour),
		today.Add(9*time.Hour),
		today.Add(14*time.Hour),
		today.AddDate(0, 0, -1).Add(10*time.Hour),
		today.AddDate(0, 0, -1).Add(20*time.Hour),
	)
	svc := newService(events, nil)
	ctx := context.Background()

	assert.Equal(t, 3, svc.TodayCount(ctx))
	assert.Equal(t, 2, svc.YesterdayCount(ctx))
	assert.Equal(t, [3]int{0, 2, 3}, svc.LastThreeDays(ctx))
}

func TestStatsService_WeekCounts(t *testing.T) {
	weekStart := stats.WeekStart(testNow)

	events := eventsAt(
		weekStart.Add(time.Hour),         // this week
		weekStart.Add(48*time.Hour),      // this week
		weekStart.AddDate(0, 0, -7),      // previous week start
		weekStart.Add(-time.Millisecond), // previous week end
		weekStart.AddDate(0, 0, -8),      // before previous week
	)
	svc := newService(events, nil)
	ctx := context.Background()

	assert.Equal(t, 2, svc.WeekCount(ctx))
	assert.Equal(t, 2, svc.PreviousWeekCount(ctx))
}

func TestStatsService_Summary(t *testing.T) {
	today := time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC)

	events := eventsAt(
		today.Add(8*time.Hour),
		today.Add(9*time.Hour),
		today.Add(14*time.Hour),
		today.AddDate(0, 0, -1).Add(10*time.Hour),
		today.AddDate(0, 0, -1).Add(20*time.Hour),
	)
	tags := []domain.TriggerTag{
		{ID: 1, EventID: 1, Label: "stress"},
		{ID: 2, EventID: 2, Label: "stress"},
		{ID: 3, EventID: 3, Label: "coffee"},
	}
	svc := newService(events, tags)

	sum := svc.Summary(context.Background())

	assert.Equal(t, 3, sum.Today)
	assert.Equal(t, 2, sum.Yesterday)
	assert.Equal(t, 5, sum.Week)
	assert.Equal(t, 0, sum.PreviousWeek)
	assert.Equal(t, 50, sum.DayChangePct)
	assert.Equal(t, 0, sum.WeekChangePct, "empty previous week is guarded to zero")
	assert.Equal(t, [3]int{0, 2, 3}, sum.LastThreeDays)

	require.NotNil(t, sum.TopTrigger)
	assert.Equal(t, "stress", *sum.TopTrigger)
}

func TestStatsService_StoreFailureYieldsZeroDefaults(t *testing.T) {
	store := new(MockEventReader)
	store.On("ListEvents", mock.Anything).Return(nil, errors.New("disk on fire"))
	store.On("ListTriggerTags", mock.Anything).Return(nil, errors.New("disk on fire"))

	svc := NewStatsService(store, zap.NewNop()).
		WithClock(func() time.Time { return testNow })
	ctx := context.Background()

	assert.Zero(t, svc.TodayCount(ctx))
	assert.Zero(t, svc.YesterdayCount(ctx))
	assert.Equal(t, [stats.DaysPerWeek]int{}, svc.WeeklyBreakdown(ctx))
	assert.Equal(t, [stats.MonthlyWindowDays]int{}, svc.MonthlyBreakdown(ctx))
	assert.Equal(t, [stats.YearlyWindowMonths]int{}, svc.YearlyBreakdown(ctx))
	assert.Equal(t, [3]int{}, svc.LastThreeDays(ctx))
	assert.Empty(t, svc.TopTriggers(ctx, 5))

	_, ok := svc.TopTrigger(ctx)
	assert.False(t, ok)

	sum := svc.Summary(ctx)
	assert.Zero(t, sum.Today)
	assert.Nil(t, sum.TopTrigger)
}

func TestStatsService_DetailedWeeklyBreakdownAlwaysSevenDays(t *testing.T) {
	svc := newService(nil, nil)

	details := svc.DetailedWeeklyBreakdown(context.Background())
	require.Len(t, details, stats.DaysPerWeek)
	assert.Equal(t, "Sunday", details[0].DayName)
}
