package room

import (
	"regexp"
	"strconv"
)

// DefaultCapacity applies when the capacity text carries no number.
var DefaultCapacity = Capacity{Min: 1, Max: 2}

// capacityPattern takes the first number and, when a dash follows it, the
// second.
var capacityPattern = regexp.MustCompile(`(\d+)(?:\s*[-–]\s*(\d+))?`)

type Capacity struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ParseCapacity reads occupancy from the first one or two integers of catalog
// text such as "2-4 persons" or "Für 1–2 Personen". A single number sets both
// bounds. Text without digits yields DefaultCapacity.
func ParseCapacity(text string) Capacity {
	m := capacityPattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultCapacity
	}

	lo, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultCapacity
	}

	if m[2] == "" {
		return Capacity{Min: lo, Max: lo}
	}

	hi, err := strconv.Atoi(m[2])
	if err != nil {
		return Capacity{Min: lo, Max: lo}
	}

	return Capacity{Min: lo, Max: hi}
}

func (r Room) Capacity() Capacity {
	return ParseCapacity(r.CapacityText)
}

func (r Room) MaxCapacity() int {
	return r.Capacity().Max
}

func (r Room) MinCapacity() int {
	return r.Capacity().Min
}

func (r Room) CanAccommodate(totalGuests int) bool {
	return totalGuests <= r.MaxCapacity()
}

// RemainingCapacity is floored at zero.
func (r Room) RemainingCapacity(currentGuests int) int {
	return max(0, r.MaxCapacity()-currentGuests)
}
