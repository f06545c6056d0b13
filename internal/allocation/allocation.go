package allocation

import (
	"github.com/avstrong/hotelenquiry/internal/booking"
	"github.com/avstrong/hotelenquiry/internal/room"
)

// FallbackRoomCapacity sizes new slots when the catalog knows no rooms.
const FallbackRoomCapacity = 4

type Board string

// HalfBoard is the only board option the hotel sells with enquiries.
const HalfBoard Board = "half-board"

// Assignment is one room slot of an enquiry. Guests counts adults.
type Assignment struct {
	ID        string             `json:"id"`
	Room      room.Ref           `json:"room"`
	Guests    int                `json:"guests"`
	Children  int                `json:"children"`
	ChildAges []booking.ChildAge `json:"childAges"`
	Board     Board              `json:"boardOption"`
}

// Occupancy is adults plus children placed in the slot.
func (a Assignment) Occupancy() int {
	return a.Guests + a.Children
}

type idGenerator interface {
	GetID() string
}

// Allocator spreads a guest party over room slots.
type Allocator struct {
	rooms       []room.Room
	idGenerator idGenerator
}

func New(rooms []room.Room, idGenerator idGenerator) *Allocator {
	return &Allocator{
		rooms:       room.Biddable(rooms),
		idGenerator: idGenerator,
	}
}

// Rooms lists the catalog rooms a guest may pick; pending slots never appear.
func (a *Allocator) Rooms() []room.Room {
	out := make([]room.Room, len(a.rooms))
	copy(out, a.rooms)

	return out
}

// MaxRoomCapacity is the largest room in the catalog.
func (a *Allocator) MaxRoomCapacity() int {
	if len(a.rooms) == 0 {
		return FallbackRoomCapacity
	}

	largest := 0
	for _, r := range a.rooms {
		largest = max(largest, r.MaxCapacity())
	}

	return largest
}

// CapacityOf returns how many guests fit a slot. A pending slot borrows the
// capacity of the first catalog room.
func (a *Allocator) CapacityOf(ref room.Ref) int {
	if r, ok := ref.Room(); ok {
		return r.MaxCapacity()
	}

	if len(a.rooms) == 0 {
		return FallbackRoomCapacity
	}

	return a.rooms[0].MaxCapacity()
}

// NewAssignment opens an empty slot for ref.
func (a *Allocator) NewAssignment(ref room.Ref) Assignment {
	return Assignment{
		ID:        a.idGenerator.GetID(),
		Room:      ref,
		ChildAges: []booking.ChildAge{},
		Board:     HalfBoard,
	}
}

// Allocate redistributes the whole party over current, in order, and appends
// pending slots until everyone is placed. Adults fill a slot before children.
// Child ages are consumed in party order across all slots. Slots left empty
// are kept so the guest can still see them.
func (a *Allocator) Allocate(g booking.Guests, current []Assignment) []Assignment {
	p := placement{adults: max(0, g.Adults), children: max(0, g.Children), guests: g}

	out := make([]Assignment, 0, len(current)+1)

	for _, cur := range current {
		out = append(out, p.fill(cur, a.CapacityOf(cur.Room)))
	}

	perRoom := max(1, a.MaxRoomCapacity())

	for p.remaining() > 0 {
		out = append(out, p.fill(a.NewAssignment(room.Pending()), perRoom))
	}

	return out
}

type placement struct {
	guests   booking.Guests
	adults   int
	children int
	childIdx int
}

func (p *placement) remaining() int {
	return p.adults + p.children
}

func (p *placement) fill(slot Assignment, capacity int) Assignment {
	capacity = max(0, capacity)

	adults := min(p.adults, capacity)
	children := min(p.children, capacity-adults)

	ages := make([]booking.ChildAge, 0, children)
	for i := 0; i < children; i++ {
		ages = append(ages, booking.ChildAge{Age: p.guests.AgeAt(p.childIdx)})
		p.childIdx++
	}

	p.adults -= adults
	p.children -= children

	slot.Guests = adults
	slot.Children = children
	slot.ChildAges = ages

	if slot.Board == "" {
		slot.Board = HalfBoard
	}

	return slot
}

// Totals sums a room set back into a party. Child ages follow slot order.
func Totals(set []Assignment) booking.Guests {
	g := booking.Guests{ChildAges: []int{}}

	for _, s := range set {
		g.Adults += s.Guests
		g.Children += s.Children

		for _, age := range booking.ResyncChildAges(s.ChildAges, s.Children) {
			g.ChildAges = append(g.ChildAges, age.Age)
		}
	}

	return g
}

// Resync forces every slot's ChildAges to match its Children count.
func Resync(set []Assignment) []Assignment {
	out := make([]Assignment, len(set))

	for i, s := range set {
		s.ChildAges = booking.ResyncChildAges(s.ChildAges, s.Children)
		out[i] = s
	}

	return out
}

// Clone copies the set deep enough that callers cannot alias child ages.
func Clone(set []Assignment) []Assignment {
	out := make([]Assignment, len(set))

	for i, s := range set {
		ages := make([]booking.ChildAge, len(s.ChildAges))
		copy(ages, s.ChildAges)
		s.ChildAges = ages
		out[i] = s
	}

	return out
}
