// Package stats is the aggregation engine: pure functions that turn the full
// event snapshot into counts, histograms and trigger rankings.
//
// Every function takes the event list and an explicit "now" instead of
// reading a clock, so results are reproducible. Day and week boundaries are
// calendar boundaries (local midnight to local midnight) computed in now's
// location, not elapsed-24h windows; across a DST transition a day may be 23
// or 25 hours long and the boundaries stay correct.
package stats

import (
	"math"
	"time"

	"github.com/smoketrack/smoketrack/internal/domain"
)

const (
	// DaysPerWeek is the size of the weekly histogram, indexed 0=Sunday.
	DaysPerWeek = 7
	// MonthlyWindowDays is the trailing day window of the monthly histogram.
	MonthlyWindowDays = 30
	// YearlyWindowMonths is the trailing calendar-month window of the
	// yearly histogram.
	YearlyWindowMonths = 12

	// dailyCeiling is the assumed maximum of logs per day used to scale
	// progress bars. Progress may exceed 1.0 on heavy days.
	dailyCeiling = 20
)

// DayDetail is one entry of the detailed weekly breakdown, shaped for
// progress-bar rendering.
type DayDetail struct {
	DayName     string  `json:"day"`
	DisplayDate string  `json:"date"`
	Count       int     `json:"count"`
	Progress    float64 `json:"progress"`
}

// CountInRange counts events whose timestamp falls in [start, end],
// inclusive on both ends.
func CountInRange(events []domain.Event, start, end time.Time) int {
	n := 0
	for _, ev := range events {
		if !ev.Timestamp.Before(start) && !ev.Timestamp.After(end) {
			n++
		}
	}
	return n
}

// StartOfDay returns midnight of t's calendar day, in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayWindow returns the inclusive window covering the calendar day daysAgo
// days before now: [midnight, next midnight − 1ms]. daysAgo 0 is today,
// 1 is yesterday.
func DayWindow(now time.Time, daysAgo int) (time.Time, time.Time) {
	start := StartOfDay(now).AddDate(0, 0, -daysAgo)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// WeekStart returns midnight of the Sunday that starts now's week.
func WeekStart(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, -int(now.Weekday()))
}

// WeekWindow returns the inclusive 7-calendar-day window of now's week.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	start := WeekStart(now)
	end := start.AddDate(0, 0, DaysPerWeek).Add(-time.Millisecond)
	return start, end
}

// PreviousWeekWindow returns the non-overlapping 7-day window immediately
// preceding now's week.
func PreviousWeekWindow(now time.Time) (time.Time, time.Time) {
	start := WeekStart(now).AddDate(0, 0, -DaysPerWeek)
	end := start.AddDate(0, 0, DaysPerWeek).Add(-time.Millisecond)
	return start, end
}

// WeeklyBreakdown buckets this week's events by day of week, 0=Sunday
// through 6=Saturday. Events before the week start are excluded entirely,
// never wrapped into another bucket.
func WeeklyBreakdown(events []domain.Event, now time.Time) [DaysPerWeek]int {
	weekStart := WeekStart(now)
	loc := now.Location()

	var counts [DaysPerWeek]int
	for _, ev := range events {
		ts := ev.Timestamp.In(loc)
		if ts.Before(weekStart) {
			continue
		}
		counts[int(ts.Weekday())]++
	}
	return counts
}

// DetailedWeeklyBreakdown is WeeklyBreakdown with display metadata: one entry
// per day of the current week carrying the day name, a short date, the count
// and the count scaled against the assumed daily ceiling.
func DetailedWeeklyBreakdown(events []domain.Event, now time.Time) []DayDetail {
	weekStart := WeekStart(now)

	details := make([]DayDetail, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		dayStart := weekStart.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)
		count := CountInRange(events, dayStart, dayEnd)

		details = append(details, DayDetail{
			DayName:     dayStart.Weekday().String(),
			DisplayDate: dayStart.Format("Jan 2"),
			Count:       count,
			Progress:    float64(count) / dailyCeiling,
		})
	}
	return details
}

// MonthlyBreakdown buckets events over a fixed trailing 30-day window keyed
// by elapsed time, not calendar days: bucket = floor((now − ts) / 24h).
// Index 29 is today, index 0 is 29 days ago; deltas outside [0, 29] are
// dropped, so an event exactly 30 days old does not appear.
func MonthlyBreakdown(events []domain.Event, now time.Time) [MonthlyWindowDays]int {
	var counts [MonthlyWindowDays]int
	for _, ev := range events {
		elapsed := now.Sub(ev.Timestamp)
		if elapsed < 0 {
			continue
		}
		days := int(elapsed / (24 * time.Hour))
		if days >= MonthlyWindowDays {
			continue
		}
		counts[MonthlyWindowDays-1-days]++
	}
	return counts
}

// YearlyBreakdown buckets events over the trailing 12 calendar months keyed
// by month delta: (nowYear − eventYear)*12 + (nowMonth − eventMonth).
// Index 11 is the current month, index 0 is 11 months ago; deltas outside
// [0, 11] are dropped.
func YearlyBreakdown(events []domain.Event, now time.Time) [YearlyWindowMonths]int {
	loc := now.Location()

	var counts [YearlyWindowMonths]int
	for _, ev := range events {
		ts := ev.Timestamp.In(loc)
		delta := (now.Year()-ts.Year())*YearlyWindowMonths +
			int(now.Month()) - int(ts.Month())
		if delta < 0 || delta >= YearlyWindowMonths {
			continue
		}
		counts[YearlyWindowMonths-1-delta]++
	}
	return counts
}

// LastThreeDays returns [count(today−2), count(today−1), count(today)],
// computed by calendar-day difference (midnight to midnight), not elapsed
// time.
func LastThreeDays(events []domain.Event, now time.Time) [3]int {
	loc := now.Location()

	var counts [3]int
	for _, ev := range events {
		switch calendarDaysBetween(ev.Timestamp.In(loc), now) {
		case 0:
			counts[2]++
		case 1:
			counts[1]++
		case 2:
			counts[0]++
		}
	}
	return counts
}

// PercentageChange returns the rounded percentage change from previous to
// current, or 0 when previous is not positive (guarded division).
func PercentageChange(current, previous int) int {
	if previous <= 0 {
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// calendarDaysBetween counts whole calendar days from from's date to to's
// date. Both dates are re-anchored in UTC so a 23- or 25-hour DST day still
// counts as exactly one day.
func calendarDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
