package weather

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// MaxForecastDays is the longest daily span the provider serves.
	MaxForecastDays = 16

	// DefaultSpanDays is the span used when no range is requested.
	DefaultSpanDays = 7

	// DateLayout is the wire format of calendar dates.
	DateLayout = "2006-01-02"
)

// DateRange is an inclusive range of calendar days. Start and End are kept
// at midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two instants, dropping their time of day.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: CalendarDay(start), End: CalendarDay(end)}
}

// ParseDateRange parses two YYYY-MM-DD strings.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("parsing start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("parsing end date %q: %w", end, err)
	}
	return DateRange{Start: s, End: e}, nil
}

// CalendarDay truncates t to its calendar date in t's own location, returned as
// midnight UTC.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Days returns the inclusive number of days in r.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// Ordered returns r with Start and End swapped when inverted.
func (r DateRange) Ordered() DateRange {
	if r.End.Before(r.Start) {
		return DateRange{Start: r.End, End: r.Start}
	}
	return r
}

// Clamp orders r and truncates it to at most maxDays days anchored at the
// start date.
func (r DateRange) Clamp(maxDays int) DateRange {
	r = r.Ordered()
	if maxDays > 0 && r.Days() > maxDays {
		r.End = r.Start.AddDate(0, 0, maxDays-1)
	}
	return r
}

// Intersect returns the overlap of r and other and whether it is non-empty.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	out := DateRange{Start: r.Start, End: r.End}
	if other.Start.After(out.Start) {
		out.Start = other.Start
	}
	if other.End.Before(out.End) {
		out.End = other.End
	}
	return out, !out.End.Before(out.Start)
}

// DefaultRange is today through the following DefaultSpanDays-1 days.
func DefaultRange(now time.Time) DateRange {
	today := CalendarDay(now)
	return DateRange{Start: today, End: today.AddDate(0, 0, DefaultSpanDays-1)}
}

// NormalizeRange applies the request policy: nil becomes DefaultRange,
// inverted ranges are swapped and long ranges are cut to MaxForecastDays.
func NormalizeRange(r *DateRange, now time.Time) DateRange {
	if r == nil {
		return DefaultRange(now)
	}
	return r.Clamp(MaxForecastDays)
}

type dateRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateRangeJSON{Start: r.Start.Format(DateLayout), End: r.End.Format(DateLayout)})
}

func (r *DateRange) UnmarshalJSON(b []byte) error {
	var raw dateRangeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseDateRange(raw.Start, raw.End)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
