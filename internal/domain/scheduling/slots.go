package scheduling

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Window is a same-day availability window in "HH:MM" form, Start < End.
type Window struct {
	Start string
	End   string
}

// MinuteOfDay parses an "HH:MM" string into minutes since midnight
func MinuteOfDay(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %s", s)
	}

	return hour*60 + minute, nil
}

// FormatMinute renders minutes since midnight as zero-padded "HH:MM"
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Tile produces the candidate start times for a window at durationMinutes
// granularity. Every returned start s satisfies s+duration <= end; the
// sequence is strictly increasing with fixed spacing. A window shorter than
// the duration yields nil. Tile knows nothing about bookings or blocks.
func Tile(start, end string, durationMinutes int) ([]string, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}

	from, err := MinuteOfDay(start)
	if err != nil {
		return nil, err
	}
	to, err := MinuteOfDay(end)
	if err != nil {
		return nil, err
	}

	var slots []string
	for cur := from; cur+durationMinutes <= to; cur += durationMinutes {
		slots = append(slots, FormatMinute(cur))
	}
	return slots, nil
}

// Covers reports whether the window contains the given start time,
// start <= t < end in minute-of-day terms. Malformed input never covers.
func (w Window) Covers(t string) bool {
	m, err := MinuteOfDay(t)
	if err != nil {
		return false
	}
	start, err := MinuteOfDay(w.Start)
	if err != nil {
		return false
	}
	end, err := MinuteOfDay(w.End)
	if err != nil {
		return false
	}
	return m >= start && m < end
}

// MergeWindows normalizes a pharmacist's windows for one day: sorted by
// start, with overlapping or touching windows coalesced. Tiling merged
// windows cannot double-count a start time. Malformed windows are dropped.
func MergeWindows(windows []Window) []Window {
	type span struct{ start, end int }
	spans := make([]span, 0, len(windows))
	for _, w := range windows {
		start, err := MinuteOfDay(w.Start)
		if err != nil {
			continue
		}
		end, err := MinuteOfDay(w.End)
		if err != nil || end <= start {
			continue
		}
		spans = append(spans, span{start, end})
	}
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	out := make([]Window, len(merged))
	for i, s := range merged {
		out[i] = Window{Start: FormatMinute(s.start), End: FormatMinute(s.end)}
	}
	return out
}
