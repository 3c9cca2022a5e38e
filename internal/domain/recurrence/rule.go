// Package recurrence defines recurrence rules and next-occurrence computation
// for recurring tasks.
package recurrence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/worklane/worklane/internal/domain"
)

// Pattern identifies the period of a recurrence rule.
type Pattern string

const (
	PatternDaily     Pattern = "daily"
	PatternWeekly    Pattern = "weekly"
	PatternBiweekly  Pattern = "biweekly"
	PatternMonthly   Pattern = "monthly"
	PatternQuarterly Pattern = "quarterly"
	PatternYearly    Pattern = "yearly"
)

// ValidPatterns is the closed set of supported patterns.
var ValidPatterns = map[Pattern]bool{
	PatternDaily:     true,
	PatternWeekly:    true,
	PatternBiweekly:  true,
	PatternMonthly:   true,
	PatternQuarterly: true,
	PatternYearly:    true,
}

// EndKind discriminates the end-condition variants of a rule.
type EndKind int

const (
	// EndNone means the series is unbounded.
	EndNone EndKind = iota
	// EndAfterCount terminates the series after a fixed number of occurrences.
	EndAfterCount
	// EndOnDate terminates the series once the next date would pass a deadline.
	EndOnDate
)

// End is the end condition of a rule. Exactly one variant is active; the
// zero value means the series never ends.
type End struct {
	kind  EndKind
	count int
	date  time.Time
}

// EndNever returns the unbounded end condition.
func EndNever() End { return End{kind: EndNone} }

// EndAfter returns an end condition that stops after count occurrences.
func EndAfter(count int) End { return End{kind: EndAfterCount, count: count} }

// EndBy returns an end condition that stops once a computed date would
// exceed the given date.
func EndBy(date time.Time) End { return End{kind: EndOnDate, date: date} }

// Kind returns the active variant.
func (e End) Kind() EndKind { return e.kind }

// MaxCount returns the occurrence limit; valid only for EndAfterCount.
func (e End) MaxCount() int { return e.count }

// Date returns the deadline; valid only for EndOnDate.
func (e End) Date() time.Time { return e.date }

// Rule describes how a task repeats.
type Rule struct {
	Pattern   Pattern
	Interval  int          // number of periods between occurrences, >= 1
	Weekday   time.Weekday // used by weekly and biweekly only
	AnchorDay int          // series day-of-month for month-based patterns; 0 derives from the last due date
	End       End
}

// New validates and constructs a Rule. Interval below 1 and unknown patterns
// are rejected, as is an EndAfterCount limit below 1.
func New(pattern Pattern, interval int, weekday time.Weekday, end End) (Rule, error) {
	if !ValidPatterns[pattern] {
		return Rule{}, fmt.Errorf("%w: unknown recurrence pattern %q", domain.ErrValidation, pattern)
	}
	if interval < 1 {
		return Rule{}, fmt.Errorf("%w: recurrence interval must be >= 1, got %d", domain.ErrValidation, interval)
	}
	if weekday < time.Sunday || weekday > time.Saturday {
		return Rule{}, fmt.Errorf("%w: recurrence weekday must be 0-6, got %d", domain.ErrValidation, weekday)
	}
	if end.kind == EndAfterCount && end.count < 1 {
		return Rule{}, fmt.Errorf("%w: recurrence max_count must be >= 1, got %d", domain.ErrValidation, end.count)
	}
	return Rule{Pattern: pattern, Interval: interval, Weekday: weekday, End: end}, nil
}

// AnchorTo pins a month-based series to the day of its first due date, so a
// clamped occurrence (Jan 31 -> Feb 28) returns to the anchor day in longer
// months (-> Mar 31) instead of drifting to the clamped day. Other patterns
// are returned unchanged.
func (r Rule) AnchorTo(firstDue time.Time) Rule {
	switch r.Pattern {
	case PatternMonthly, PatternQuarterly, PatternYearly:
		r.AnchorDay = firstDue.Day()
	}
	return r
}

// Next computes the due date of the occurrence following lastDue.
// occurrencesSoFar is the number of occurrences already produced, the first
// instance of a series counting as 1. The second return value is false when
// the series has terminated: either the occurrence limit is reached or the
// computed date would pass the end date.
//
// Next is pure: no clock access, deterministic for given inputs.
func (r Rule) Next(lastDue time.Time, occurrencesSoFar int) (time.Time, bool) {
	if r.End.kind == EndAfterCount && occurrencesSoFar+1 > r.End.count {
		return time.Time{}, false
	}

	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	var next time.Time
	switch r.Pattern {
	case PatternDaily:
		next = lastDue.AddDate(0, 0, interval)
	case PatternWeekly:
		next = snapToWeekday(lastDue.AddDate(0, 0, interval*7), r.Weekday)
	case PatternBiweekly:
		// Exactly interval*2 weeks, independent of calendar month boundaries.
		next = snapToWeekday(lastDue.AddDate(0, 0, interval*14), r.Weekday)
	case PatternMonthly:
		next = addMonthsClamped(lastDue, interval, r.anchorDay(lastDue))
	case PatternQuarterly:
		next = addMonthsClamped(lastDue, interval*3, r.anchorDay(lastDue))
	case PatternYearly:
		next = addMonthsClamped(lastDue, interval*12, r.anchorDay(lastDue))
	default:
		return time.Time{}, false
	}

	if r.End.kind == EndOnDate && next.After(r.End.date) {
		return time.Time{}, false
	}
	return next, true
}

// snapToWeekday moves t forward to the next date falling on w. A date
// already on w is returned unchanged.
func snapToWeekday(t time.Time, w time.Weekday) time.Time {
	diff := (int(w) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, diff)
}

// anchorDay returns the day-of-month to aim for in the next occurrence: the
// series anchor when set, otherwise the last due date's day. The anchor keeps
// a clamped date from becoming the new target (Feb 28 must go back to the
// 31st in March, not the 28th).
func (r Rule) anchorDay(lastDue time.Time) int {
	if r.AnchorDay >= 1 && r.AnchorDay <= 31 {
		return r.AnchorDay
	}
	return lastDue.Day()
}

// addMonthsClamped adds months to t aiming for the given day, clamping to
// the last valid day of the target month. Go's AddDate normalizes Jan 31 +
// 1 month into March; the tracker wants the last day of February instead.
func addMonthsClamped(t time.Time, months, day int) time.Time {
	y, m, _ := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(first.Year(), first.Month(), day, hh, mm, ss, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ruleJSON is the wire and storage representation of a Rule. The end
// condition flattens to at most one of max_count / end_date.
type ruleJSON struct {
	Pattern   Pattern `json:"pattern"`
	Interval  int     `json:"interval"`
	Weekday   *int    `json:"weekday,omitempty"`
	AnchorDay *int    `json:"anchor_day,omitempty"`
	MaxCount  *int    `json:"max_count,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

const dateLayout = "2006-01-02"

// MarshalJSON implements json.Marshaler.
func (r Rule) MarshalJSON() ([]byte, error) {
	out := ruleJSON{Pattern: r.Pattern, Interval: r.Interval}
	if r.Pattern == PatternWeekly || r.Pattern == PatternBiweekly {
		wd := int(r.Weekday)
		out.Weekday = &wd
	}
	if r.AnchorDay != 0 {
		d := r.AnchorDay
		out.AnchorDay = &d
	}
	switch r.End.kind {
	case EndAfterCount:
		c := r.End.count
		out.MaxCount = &c
	case EndOnDate:
		d := r.End.date.Format(dateLayout)
		out.EndDate = &d
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Mutual exclusivity of the end
// condition is enforced at decode time.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var in ruleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.MaxCount != nil && in.EndDate != nil {
		return fmt.Errorf("%w: recurrence max_count and end_date are mutually exclusive", domain.ErrValidation)
	}
	if in.Interval == 0 {
		in.Interval = 1
	}
	if (in.Pattern == PatternWeekly || in.Pattern == PatternBiweekly) && in.Weekday == nil {
		return fmt.Errorf("%w: recurrence weekday is required for %s rules", domain.ErrValidation, in.Pattern)
	}
	if in.AnchorDay != nil && (*in.AnchorDay < 1 || *in.AnchorDay > 31) {
		return fmt.Errorf("%w: recurrence anchor_day must be 1-31, got %d", domain.ErrValidation, *in.AnchorDay)
	}

	end := EndNever()
	switch {
	case in.MaxCount != nil:
		end = EndAfter(*in.MaxCount)
	case in.EndDate != nil:
		d, err := time.Parse(dateLayout, *in.EndDate)
		if err != nil {
			return fmt.Errorf("%w: recurrence end_date must be YYYY-MM-DD", domain.ErrValidation)
		}
		end = EndBy(d)
	}

	var weekday time.Weekday
	if in.Weekday != nil {
		weekday = time.Weekday(*in.Weekday)
	}

	rule, err := New(in.Pattern, in.Interval, weekday, end)
	if err != nil {
		return err
	}
	if in.AnchorDay != nil {
		rule.AnchorDay = *in.AnchorDay
	}
	*r = rule
	return nil
}
