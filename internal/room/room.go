package room

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/currency"
)

type Room struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CapacityText string        `json:"capacity"`
	Price        float64       `json:"price"`
	Currency     currency.Unit `json:"-"`
	Images       []string      `json:"images,omitempty"`
}

type roomAlias Room

// roomJSON carries the currency as its ISO code.
type roomJSON struct {
	roomAlias
	Currency string `json:"currency,omitempty"`
}

func (r Room) MarshalJSON() ([]byte, error) {
	v := roomJSON{roomAlias: roomAlias(r)}
	if r.Currency != (currency.Unit{}) {
		v.Currency = r.Currency.String()
	}

	return json.Marshal(v)
}

func (r *Room) UnmarshalJSON(data []byte) error {
	var v roomJSON

	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode room: %w", err)
	}

	*r = Room(v.roomAlias)

	if v.Currency != "" {
		unit, err := currency.ParseISO(v.Currency)
		if err != nil {
			return fmt.Errorf("room %q currency %q: %w", r.ID, v.Currency, err)
		}

		r.Currency = unit
	}

	return nil
}

// PriceLabel renders the nightly price with the currency symbol.
func (r Room) PriceLabel() string {
	return fmt.Sprint(currency.Symbol(r.Currency.Amount(r.Price)))
}

// Ref points at a catalog room or at a slot still waiting for the guest's
// room choice.
type Ref struct {
	room *Room
}

func Assigned(r Room) Ref {
	return Ref{room: &r}
}

func Pending() Ref {
	return Ref{}
}

func (r Ref) IsPending() bool {
	return r.room == nil
}

// Room returns the assigned room; ok is false for a pending slot.
func (r Ref) Room() (Room, bool) {
	if r.room == nil {
		return Room{}, false
	}

	return *r.room, true
}

type refJSON struct {
	Pending bool  `json:"pending"`
	Room    *Room `json:"room,omitempty"`
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(refJSON{Pending: r.room == nil, Room: r.room})
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	var v refJSON

	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode room ref: %w", err)
	}

	if v.Pending || v.Room == nil {
		*r = Pending()

		return nil
	}

	*r = Assigned(*v.Room)

	return nil
}

// Biddable drops rooms without an id; those cannot be offered to the guest.
func Biddable(rooms []Room) []Room {
	out := make([]Room, 0, len(rooms))

	for _, r := range rooms {
		if r.ID == "" {
			continue
		}

		out = append(out, r)
	}

	return out
}

// Find looks a room up by id.
func Find(rooms []Room, id string) (Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}

	return Room{}, false
}
