package stats

import (
	"sort"
	"time"

	"github.com/smoketrack/smoketrack/internal/domain"
)

// triggerWindowDays is the rolling window trigger rankings look back over.
const triggerWindowDays = 7

// TriggerCount is one entry of a trigger-frequency ranking.
type TriggerCount struct {
	Label string `json:"trigger"`
	Count int    `json:"count"`
}

// TopTriggers ranks trigger labels by how often they were attached to events
// in the trailing 7 calendar days (rolling from now, lower bound inclusive),
// descending by count, truncated to n. Fewer than n distinct labels yields a
// shorter slice, never padding.
//
// Ties break by encounter order: the label whose tag row appears first in the
// scan keeps the earlier rank. Tag rows arrive in insertion (id) order, so
// the tie-break is deterministic.
func TopTriggers(events []domain.Event, tags []domain.TriggerTag, now time.Time, n int) []TriggerCount {
	ranked := rankTriggers(events, tags, now)
	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopTrigger returns the single most frequent trigger label of the trailing
// 7 days, or ok=false when no tagged events fall in the window.
func TopTrigger(events []domain.Event, tags []domain.TriggerTag, now time.Time) (string, bool) {
	ranked := rankTriggers(events, tags, now)
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0].Label, true
}

func rankTriggers(events []domain.Event, tags []domain.TriggerTag, now time.Time) []TriggerCount {
	cutoff := now.AddDate(0, 0, -triggerWindowDays)

	recent := make(map[int64]struct{}, len(events))
	for _, ev := range events {
		if !ev.Timestamp.Before(cutoff) {
			recent[ev.ID] = struct{}{}
		}
	}

	ranked := make([]TriggerCount, 0)
	index := make(map[string]int)
	for _, tag := range tags {
		if _, ok := recent[tag.EventID]; !ok {
			continue
		}
		i, ok := index[tag.Label]
		if !ok {
			i = len(ranked)
			index[tag.Label] = i
			ranked = append(ranked, TriggerCount{Label: tag.Label})
		}
		ranked[i].Count++
	}

	// Stable sort keeps encounter order among equal counts.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}
