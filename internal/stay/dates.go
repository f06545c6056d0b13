package stay

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidFlexibility = errors.New("date flexibility must be one of 0, 1, 2, 3, 7, 14")

// Flexibility is the tolerance in days around the chosen stay. It is carried
// through as metadata only.
type Flexibility int

var flexibilities = []Flexibility{0, 1, 2, 3, 7, 14}

func ParseFlexibility(days int) (Flexibility, error) {
	for _, f := range flexibilities {
		if int(f) == days {
			return f, nil
		}
	}

	return 0, fmt.Errorf("%d: %w", days, ErrInvalidFlexibility)
}

// Range is a stay interval. A zero From or To means that end is not chosen yet.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func NewRange(from, to time.Time) Range {
	return Range{From: Midnight(from), To: Midnight(to)}
}

func (r Range) IsEmpty() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Complete reports whether both ends are chosen.
func (r Range) Complete() bool {
	return !r.From.IsZero() && !r.To.IsZero()
}

// Pending reports whether only the start has been picked.
func (r Range) Pending() bool {
	return !r.From.IsZero() && r.To.IsZero()
}

// Valid reports whether the range is complete and arrival precedes departure.
func (r Range) Valid() bool {
	return r.Complete() && r.From.Before(r.To)
}

func (r Range) Nights() int {
	if !r.Complete() {
		return 0
	}

	return Nights(r.From, r.To)
}

// Display renders "DD.MM.YYYY - DD.MM.YYYY"; an unfinished range keeps the dash.
func (r Range) Display() string {
	switch {
	case r.Complete():
		return FormatDotted(r.From) + " - " + FormatDotted(r.To)
	case r.Pending():
		return FormatDotted(r.From) + " -"
	default:
		return ""
	}
}

// ISO returns both ends in YYYY-MM-DD, empty for unset ends.
func (r Range) ISO() (string, string) {
	return FormatISO(r.From), FormatISO(r.To)
}

// ParseRange builds a range from two YYYY-MM-DD or DD.MM.YYYY strings.
// Unparseable ends stay unset.
func ParseRange(from, to string) Range {
	var r Range

	if t, ok := Parse(from); ok {
		r.From = t
	}

	if t, ok := Parse(to); ok {
		r.To = t
	}

	return r
}

// Dates is the stay the guest asks for, with an optional alternative.
type Dates struct {
	Primary     Range       `json:"primary"`
	Alternative Range       `json:"alternative"`
	Flexibility Flexibility `json:"flexibility"`
}

func (d Dates) IsEmpty() bool {
	return d.Primary.IsEmpty() && d.Alternative.IsEmpty()
}

// ClearRanges drops both ranges and keeps the flexibility.
func (d Dates) ClearRanges() Dates {
	return Dates{Flexibility: d.Flexibility}
}
