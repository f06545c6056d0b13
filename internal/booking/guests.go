package booking

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinAdults   = 1
	MaxAdults   = 20
	MaxChildren = 10
	MaxChildAge = 17
)

var (
	ErrNoAdults        = errors.New("at least one adult is required")
	ErrNegativeGuests  = errors.New("guest counts must not be negative")
	ErrTooManyGuests   = errors.New("too many guests for one enquiry")
	ErrChildAgeOutside = errors.New("child age must be between 0 and 17")
)

// ChildAge is one child's age inside a room assignment.
type ChildAge struct {
	Age int `json:"age"`
}

// Guests is the party the enquiry is for.
type Guests struct {
	Adults    int   `json:"adults"`
	Children  int   `json:"children"`
	ChildAges []int `json:"childAges"`
}

func DefaultGuests() Guests {
	return Guests{Adults: 2, ChildAges: []int{}}
}

func (g Guests) Total() int {
	return g.Adults + g.Children
}

func (g Guests) Validate() error {
	if g.Adults < 0 || g.Children < 0 {
		return ErrNegativeGuests
	}

	if g.Adults < MinAdults {
		return ErrNoAdults
	}

	if g.Adults > MaxAdults || g.Children > MaxChildren {
		return fmt.Errorf("%d adults, %d children: %w", g.Adults, g.Children, ErrTooManyGuests)
	}

	for i, age := range g.ChildAges {
		if i >= g.Children {
			break
		}

		if age < 0 || age > MaxChildAge {
			return fmt.Errorf("child %d is %d: %w", i+1, age, ErrChildAgeOutside)
		}
	}

	return nil
}

// Normalized keeps ChildAges exactly Children long, padding with age 0.
// A negative child count normalises to none.
func (g Guests) Normalized() Guests {
	if g.Children < 0 {
		g.Children = 0
	}

	ages := make([]int, g.Children)
	copy(ages, g.ChildAges)

	g.ChildAges = ages

	return g
}

// AgeAt returns the i-th child's age, 0 when no age was supplied.
func (g Guests) AgeAt(i int) int {
	if i < 0 || i >= len(g.ChildAges) {
		return 0
	}

	return g.ChildAges[i]
}

func (g Guests) Equal(o Guests) bool {
	a, b := g.Normalized(), o.Normalized()
	if a.Adults != b.Adults || a.Children != b.Children {
		return false
	}

	for i := range a.ChildAges {
		if a.ChildAges[i] != b.ChildAges[i] {
			return false
		}
	}

	return true
}

// Summary renders e.g. "2 adults, 1 child (5)".
func (g Guests) Summary() string {
	var b strings.Builder

	b.WriteString(plural(g.Adults, "adult", "adults"))

	if g.Children > 0 {
		b.WriteString(", ")
		b.WriteString(plural(g.Children, "child", "children"))

		ages := g.Normalized().ChildAges
		parts := make([]string, len(ages))

		for i, age := range ages {
			parts[i] = fmt.Sprint(age)
		}

		b.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}

	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}

	return fmt.Sprintf("%d %s", n, many)
}

// ResyncChildAges pads with age 0 or truncates so len(ages) == children.
func ResyncChildAges(ages []ChildAge, children int) []ChildAge {
	if children < 0 {
		children = 0
	}

	out := make([]ChildAge, children)
	copy(out, ages)

	return out
}
