package offer

import (
	"time"

	"github.com/avstrong/hotelenquiry/internal/stay"
)

// Calendar decides which days the date picker lets the guest choose.
type Calendar struct {
	Today time.Time
	// MinDate and MaxDate bound the picker; zero means unbounded.
	MinDate time.Time
	MaxDate time.Time
	// MinNights is the house minimum stay, overridden by the offer's own.
	MinNights int
	// Offer, when set, turns its validity windows into an allow-list.
	Offer *Offer
}

func (c Calendar) minNights() int {
	if c.Offer != nil && c.Offer.MinNights > 0 {
		return c.Offer.MinNights
	}

	return max(1, c.MinNights)
}

// IsDisabled reports whether d cannot be picked. anchor is the already picked
// end of an unfinished range, zero when no range is in progress.
func (c Calendar) IsDisabled(d, anchor time.Time) bool {
	d = stay.Midnight(d)

	if d.Before(stay.Midnight(c.Today)) {
		return true
	}

	if !c.MinDate.IsZero() && d.Before(stay.Midnight(c.MinDate)) {
		return true
	}

	if !c.MaxDate.IsZero() && d.After(stay.Midnight(c.MaxDate)) {
		return true
	}

	if !anchor.IsZero() {
		gap := stay.Nights(stay.Midnight(anchor), d)
		if gap < 0 {
			gap = -gap
		}

		if gap > 0 && gap < c.minNights() {
			return true
		}
	}

	if c.Offer != nil && !c.Offer.Allows(d) {
		return true
	}

	return false
}

// DisabledDays lists the disabled days among n days starting at from.
func (c Calendar) DisabledDays(from time.Time, n int, anchor time.Time) []time.Time {
	from = stay.Midnight(from)
	out := make([]time.Time, 0)

	for i := 0; i < n; i++ {
		d := stay.AddDays(from, i)
		if c.IsDisabled(d, anchor) {
			out = append(out, d)
		}
	}

	return out
}

// Click applies a picked day to the range being edited and reports whether
// the day was accepted. A complete range restarts from the clicked day, as
// does a click before the start. With an offer active, an end that would
// straddle a gap between two windows restarts the range too.
func (c Calendar) Click(r stay.Range, d time.Time) (stay.Range, bool) {
	d = stay.Midnight(d)

	var anchor time.Time
	if r.Pending() {
		anchor = r.From
	}

	if c.IsDisabled(d, anchor) {
		return r, false
	}

	if r.From.IsZero() || (r.Complete() && !r.From.Equal(r.To)) {
		return stay.Range{From: d}, true
	}

	switch {
	case d.Equal(r.From):
		return stay.Range{From: r.From}, true
	case d.Before(r.From):
		return stay.Range{From: d}, true
	case c.Offer != nil && !c.Offer.SamePeriod(r.From, d):
		return stay.Range{From: d}, true
	}

	return stay.Range{From: r.From, To: d}, true
}
