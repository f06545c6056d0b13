package offer

import (
	"time"

	"github.com/avstrong/hotelenquiry/internal/stay"
)

// Period is one validity window of an offer. EffectiveFrom, when set, is the
// real first bookable day of a window advertised from an earlier date.
type Period struct {
	From          time.Time `json:"from"`
	EffectiveFrom time.Time `json:"effectiveFrom"`
	To            time.Time `json:"to"`
}

// ParsePeriod reads DD.MM.YYYY catalog dates. effectiveFrom may be empty.
// A window that cannot be parsed, or that ends before it starts, reports false.
func ParsePeriod(from, effectiveFrom, to string) (Period, bool) {
	f, ok := stay.Parse(from)
	if !ok {
		return Period{}, false
	}

	t, ok := stay.Parse(to)
	if !ok {
		return Period{}, false
	}

	p := Period{From: f, To: t}

	if ef, ok := stay.Parse(effectiveFrom); ok {
		p.EffectiveFrom = ef
	}

	if p.Start().After(p.To) {
		return Period{}, false
	}

	return p, true
}

// Start is the first bookable day.
func (p Period) Start() time.Time {
	if !p.EffectiveFrom.IsZero() {
		return p.EffectiveFrom
	}

	return p.From
}

func (p Period) Contains(d time.Time) bool {
	return stay.Within(d, p.Start(), p.To)
}

func (p Period) Overlaps(arrival, departure time.Time) bool {
	return stay.Overlaps(p.Start(), p.To, arrival, departure)
}

type Offer struct {
	Title     string   `json:"title"`
	Periods   []Period `json:"validityPeriods"`
	MinNights int      `json:"minNights,omitempty"`
	ImageSrc  string   `json:"imageSrc,omitempty"`
}

// IsAvailable decides whether the offer applies to a stay. The minimum-night
// rule is checked first; after that any single validity window overlapping
// the stay is enough.
func (o Offer) IsAvailable(arrival, departure time.Time) bool {
	if o.MinNights > 0 && stay.Nights(arrival, departure) < o.MinNights {
		return false
	}

	for _, p := range o.Periods {
		if p.Overlaps(arrival, departure) {
			return true
		}
	}

	return false
}

// AvailableFor is IsAvailable over a range; an incomplete range never matches.
func (o Offer) AvailableFor(r stay.Range) bool {
	if !r.Complete() {
		return false
	}

	return o.IsAvailable(r.From, r.To)
}

// Allows reports whether d falls inside one of the validity windows.
func (o Offer) Allows(d time.Time) bool {
	for _, p := range o.Periods {
		if p.Contains(d) {
			return true
		}
	}

	return false
}

// SamePeriod reports whether a and b both fall inside one validity window.
func (o Offer) SamePeriod(a, b time.Time) bool {
	for _, p := range o.Periods {
		if p.Contains(a) && p.Contains(b) {
			return true
		}
	}

	return false
}

type Buckets struct {
	SelectedDates []Offer `json:"selectedDatesOffers"`
	OtherPeriods  []Offer `json:"otherPeriodsOffers"`
}

// Partition splits offers by whether they fit the chosen stay, keeping input
// order inside each bucket. Without a complete range every offer counts as
// fitting.
func Partition(offers []Offer, r stay.Range) Buckets {
	b := Buckets{
		SelectedDates: make([]Offer, 0, len(offers)),
		OtherPeriods:  make([]Offer, 0),
	}

	if !r.Complete() {
		b.SelectedDates = append(b.SelectedDates, offers...)

		return b
	}

	for _, o := range offers {
		if o.IsAvailable(r.From, r.To) {
			b.SelectedDates = append(b.SelectedDates, o)

			continue
		}

		b.OtherPeriods = append(b.OtherPeriods, o)
	}

	return b
}

func Find(offers []Offer, title string) (Offer, bool) {
	for _, o := range offers {
		if o.Title == title {
			return o, true
		}
	}

	return Offer{}, false
}
