package intent

import (
	"sort"
	"sync"

	"github.com/avstrong/hotelenquiry/internal/booking"
	"github.com/avstrong/hotelenquiry/internal/stay"
)

// Source identifies who wrote to the store. Writers pass their own token so
// they can recognise, and skip reacting to, their own updates.
type Source string

// External marks writes from widgets that do not subscribe themselves.
const External Source = "external"

type Field int

const (
	FieldDates Field = iota + 1
	FieldGuests
	FieldPrefilledOffer
	FieldPrefilledRoom
)

func (f Field) String() string {
	switch f {
	case FieldDates:
		return "dates"
	case FieldGuests:
		return "guests"
	case FieldPrefilledOffer:
		return "prefilledOffer"
	case FieldPrefilledRoom:
		return "prefilledRoom"
	default:
		return "unknown"
	}
}

type Update struct {
	Field  Field
	Source Source
}

type Listener func(Update)

// Store is the booking intent shared between the enquiry form and the rest of
// the site. Listeners run synchronously after the write, outside the lock.
// The store's own lock only guards its fields: a subscribed listener such as
// the enquiry form mutates unguarded state, so every writer must hold the lock
// of whatever owns the listeners (the web session's mutex).
type Store struct {
	mu             sync.RWMutex
	dates          stay.Dates
	guests         booking.Guests
	prefilledOffer string
	prefilledRoom  string
	listeners      map[int]Listener
	nextListenerID int
}

func New() *Store {
	//nolint:exhaustruct
	return &Store{
		guests:    booking.DefaultGuests(),
		listeners: make(map[int]Listener),
	}
}

func (s *Store) Dates() stay.Dates {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dates
}

func (s *Store) SetDates(d stay.Dates, src Source) {
	s.mu.Lock()
	s.dates = d
	s.mu.Unlock()

	s.notify(Update{Field: FieldDates, Source: src})
}

func (s *Store) Guests() booking.Guests {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := s.guests
	g.ChildAges = append([]int(nil), s.guests.ChildAges...)

	return g
}

// SetGuests stores the party with ChildAges resized to Children.
func (s *Store) SetGuests(g booking.Guests, src Source) {
	s.mu.Lock()
	s.guests = g.Normalized()
	s.mu.Unlock()

	s.notify(Update{Field: FieldGuests, Source: src})
}

func (s *Store) PrefilledOffer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.prefilledOffer
}

func (s *Store) SetPrefilledOffer(title string, src Source) {
	s.mu.Lock()
	s.prefilledOffer = title
	s.mu.Unlock()

	s.notify(Update{Field: FieldPrefilledOffer, Source: src})
}

func (s *Store) PrefilledRoom() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.prefilledRoom
}

func (s *Store) SetPrefilledRoom(id string, src Source) {
	s.mu.Lock()
	s.prefilledRoom = id
	s.mu.Unlock()

	s.notify(Update{Field: FieldPrefilledRoom, Source: src})
}

// Subscribe registers l and returns a func removing it again.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.listeners, id)
	}
}

func (s *Store) notify(u Update) {
	s.mu.RLock()

	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}

	s.mu.RUnlock()

	for _, l := range listeners {
		l(u)
	}
}
