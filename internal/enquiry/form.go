package enquiry

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/avstrong/hotelenquiry/internal/allocation"
	"github.com/avstrong/hotelenquiry/internal/booking"
	"github.com/avstrong/hotelenquiry/internal/idgen/random"
	"github.com/avstrong/hotelenquiry/internal/intent"
	"github.com/avstrong/hotelenquiry/internal/logger"
	"github.com/avstrong/hotelenquiry/internal/offer"
	"github.com/avstrong/hotelenquiry/internal/room"
	"github.com/avstrong/hotelenquiry/internal/stay"
)

const DefaultPhonePrefix = "+49"

type catalog interface {
	Rooms() []room.Room
	Offers() []offer.Offer
}

type idGenerator interface {
	GetID() string
}

// ISORange is the machine-readable shadow of a displayed date range.
type ISORange struct {
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
}

// FormData is the display-ready state of the enquiry form.
type FormData struct {
	Salutation          string           `json:"salutation"`
	FirstName           string           `json:"firstName"`
	LastName            string           `json:"lastName"`
	PhonePrefix         string           `json:"phonePrefix"`
	PhoneNumber         string           `json:"phoneNumber"`
	Email               string           `json:"email"`
	Message             string           `json:"message"`
	Newsletter          bool             `json:"newsletter"`
	PrivacyAccepted     bool             `json:"privacyAccepted"`
	Dates               string           `json:"dates"`
	DatesISO            ISORange         `json:"datesISO"`
	AlternativeDates    string           `json:"alternativeDates"`
	AlternativeDatesISO ISORange         `json:"alternativeDatesISO"`
	DateFlexibility     stay.Flexibility `json:"dateFlexibility"`
	Guests              string           `json:"guests"`
	Offer               string           `json:"offer"`
}

type Options struct {
	IDs           idGenerator
	Tracker       Tracker
	Locale        language.Tag
	TrafficSource string
	PhonePrefix   string
	// MinNights is the house minimum stay used by the date picker.
	MinNights int
	// BookingWindow limits how far ahead dates can be picked; zero is unbounded.
	BookingWindow time.Duration
	Now           func() time.Time
}

// Form is the enquiry state machine. It is not safe for concurrent use;
// callers serialise every mutator and every write to the shared store.
type Form struct {
	l           *logger.Logger
	store       *intent.Store
	catalog     catalog
	allocator   *allocation.Allocator
	submitter   Submitter
	tracker     Tracker
	source      intent.Source
	opts        Options
	data        FormData
	offer       *offer.Offer
	rooms       []allocation.Assignment
	errors      []FieldError
	submitErr   string
	submitting  bool
	unsubscribe func()
}

func New(l *logger.Logger, store *intent.Store, c catalog, submitter Submitter, opts Options) *Form {
	if opts.IDs == nil {
		opts.IDs = random.New()
	}

	if opts.Tracker == nil {
		opts.Tracker = NopTracker{}
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.PhonePrefix == "" {
		opts.PhonePrefix = DefaultPhonePrefix
	}

	if opts.Locale == language.Und {
		opts.Locale = language.English
	}

	//nolint:exhaustruct
	f := &Form{
		l:         l,
		store:     store,
		catalog:   c,
		allocator: allocation.New(c.Rooms(), opts.IDs),
		submitter: submitter,
		tracker:   opts.Tracker,
		source:    intent.Source("form-" + uuid.NewString()),
		opts:      opts,
	}

	f.data = f.defaults()
	f.deriveDates()
	f.deriveGuests()
	f.unsubscribe = store.Subscribe(f.reconcile)

	if id := store.PrefilledRoom(); id != "" {
		f.applyPrefilledRoom(id)
	} else {
		f.rooms = f.allocator.Allocate(store.Guests(), nil)
	}

	if title := store.PrefilledOffer(); title != "" {
		if err := f.applyOffer(title); err != nil {
			f.l.LogWarn("Ignoring prefilled offer %q: %v", title, err)
		}
	}

	return f
}

// Close detaches the form from the shared store.
func (f *Form) Close() {
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}
}

func (f *Form) defaults() FormData {
	//nolint:exhaustruct
	return FormData{PhonePrefix: f.opts.PhonePrefix}
}

// reconcile re-derives display state after any store write. Guest changes
// from other writers re-run the allocation; the form's own writes have
// already allocated.
func (f *Form) reconcile(u intent.Update) {
	own := u.Source == f.source

	switch u.Field {
	case intent.FieldDates:
		f.deriveDates()
	case intent.FieldGuests:
		f.deriveGuests()

		if !own {
			f.rooms = f.allocator.Allocate(f.store.Guests(), f.rooms)
			f.l.LogDebug("Reallocated %d room slots after external guest update", len(f.rooms))
		}
	case intent.FieldPrefilledOffer:
		if title := f.store.PrefilledOffer(); !own && title != "" {
			if err := f.applyOffer(title); err != nil {
				f.l.LogWarn("Ignoring prefilled offer %q: %v", title, err)
			}
		}
	case intent.FieldPrefilledRoom:
		if id := f.store.PrefilledRoom(); !own && id != "" {
			f.applyPrefilledRoom(id)
		}
	}
}

func (f *Form) deriveDates() {
	d := f.store.Dates()

	f.data.Dates = d.Primary.Display()
	f.data.DatesISO = isoRange(d.Primary)
	f.data.AlternativeDates = d.Alternative.Display()
	f.data.AlternativeDatesISO = isoRange(d.Alternative)
	f.data.DateFlexibility = d.Flexibility
}

func isoRange(r stay.Range) ISORange {
	if !r.Complete() {
		return ISORange{}
	}

	arrival, departure := r.ISO()

	return ISORange{Arrival: arrival, Departure: departure}
}

func (f *Form) deriveGuests() {
	f.data.Guests = f.store.Guests().Summary()
}

func (f *Form) clearErrors() {
	f.errors = nil
}

// Data returns the current field values and display strings.
func (f *Form) Data() FormData {
	return f.data
}

// Rooms returns a copy of the current room selection.
func (f *Form) Rooms() []allocation.Assignment {
	return allocation.Clone(f.rooms)
}

// AvailableRooms lists the catalog rooms a guest may choose from.
func (f *Form) AvailableRooms() []room.Room {
	return f.allocator.Rooms()
}

func (f *Form) SelectedOffer() (offer.Offer, bool) {
	if f.offer == nil {
		return offer.Offer{}, false
	}

	return *f.offer, true
}

// Offers splits the catalog offers by the currently chosen stay.
func (f *Form) Offers() offer.Buckets {
	return offer.Partition(f.catalog.Offers(), f.store.Dates().Primary)
}

func (f *Form) Errors() []FieldError {
	out := make([]FieldError, len(f.errors))
	copy(out, f.errors)

	return out
}

func (f *Form) ErrorFor(field Field) (ErrorKind, bool) {
	return ErrorFor(f.errors, field)
}

// SubmitError is the banner message of the last failed submission.
func (f *Form) SubmitError() string {
	return f.submitErr
}

func (f *Form) Submitting() bool {
	return f.submitting
}

func (f *Form) Locale() language.Tag {
	return f.opts.Locale
}

// Calendar describes which days the date picker allows right now.
func (f *Form) Calendar() offer.Calendar {
	today := stay.Midnight(f.opts.Now())

	//nolint:exhaustruct
	c := offer.Calendar{
		Today:     today,
		MinNights: f.opts.MinNights,
		Offer:     f.offer,
	}

	if f.opts.BookingWindow > 0 {
		c.MaxDate = stay.Midnight(today.Add(f.opts.BookingWindow))
	}

	return c
}

// ClickDate feeds a date-picker click into the primary range. It reports
// false when the day is disabled.
func (f *Form) ClickDate(d time.Time) bool {
	dates := f.store.Dates()

	next, ok := f.Calendar().Click(dates.Primary, d)
	if !ok {
		return false
	}

	dates.Primary = next
	f.clearErrors()
	f.store.SetDates(dates, f.source)

	return true
}

// SelectDates sets the primary stay. It never looks at the selected offer.
func (f *Form) SelectDates(r stay.Range) error {
	if r.Complete() && !r.Valid() {
		return ErrInvalidRange
	}

	dates := f.store.Dates()
	dates.Primary = stay.NewRange(r.From, r.To)

	f.clearErrors()
	f.store.SetDates(dates, f.source)

	return nil
}

func (f *Form) SelectAlternativeDates(r stay.Range) error {
	if r.Complete() && !r.Valid() {
		return ErrInvalidRange
	}

	dates := f.store.Dates()
	dates.Alternative = stay.NewRange(r.From, r.To)

	f.clearErrors()
	f.store.SetDates(dates, f.source)

	return nil
}

func (f *Form) SetFlexibility(fl stay.Flexibility) error {
	if _, err := stay.ParseFlexibility(int(fl)); err != nil {
		return err
	}

	dates := f.store.Dates()
	dates.Flexibility = fl

	f.clearErrors()
	f.store.SetDates(dates, f.source)

	return nil
}

// ClearDates drops both ranges.
func (f *Form) ClearDates() {
	f.clearErrors()
	f.store.SetDates(f.store.Dates().ClearRanges(), f.source)
}

// SelectGuests stores the party and redistributes it over the room slots.
func (f *Form) SelectGuests(g booking.Guests) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("select guests: %w", err)
	}

	g = g.Normalized()

	f.rooms = f.allocator.Allocate(g, f.rooms)
	f.clearErrors()
	f.store.SetGuests(g, f.source)

	f.l.LogDebug("Allocated %d guests over %d room slots", g.Total(), len(f.rooms))

	return nil
}

// SelectOffer makes title the selected offer. Chosen dates survive only when
// the offer applies to them.
func (f *Form) SelectOffer(title string) error {
	if err := f.applyOffer(title); err != nil {
		return err
	}

	f.clearErrors()
	f.store.SetPrefilledOffer(title, f.source)

	return nil
}

func (f *Form) applyOffer(title string) error {
	o, ok := offer.Find(f.catalog.Offers(), title)
	if !ok {
		return fmt.Errorf("%q: %w", title, ErrUnknownOffer)
	}

	f.offer = &o
	f.data.Offer = o.Title

	dates := f.store.Dates()
	if dates.IsEmpty() || o.AvailableFor(dates.Primary) {
		return nil
	}

	f.l.LogDebug("Offer %q does not fit %s, clearing dates", o.Title, dates.Primary.Display())
	f.store.SetDates(dates.ClearRanges(), f.source)

	return nil
}

// ClearOffer deselects the offer. Dates cleared earlier stay cleared.
func (f *Form) ClearOffer() {
	f.offer = nil
	f.data.Offer = ""
	f.clearErrors()
	f.store.SetPrefilledOffer("", f.source)
}

// SelectRooms replaces the room selection from the multi-room editor and
// writes the resulting party back to the shared store.
func (f *Form) SelectRooms(set []allocation.Assignment) error {
	if err := f.checkRoomSet(set); err != nil {
		return err
	}

	rooms := allocation.Clone(set)
	for i := range rooms {
		if rooms[i].ID == "" {
			rooms[i].ID = f.opts.IDs.GetID()
		}

		if rooms[i].Board == "" {
			rooms[i].Board = allocation.HalfBoard
		}
	}

	f.rooms = rooms
	f.clearErrors()
	f.store.SetGuests(allocation.Totals(rooms), f.source)

	return nil
}

func (f *Form) checkRoomSet(set []allocation.Assignment) error {
	if len(set) == 0 {
		return fmt.Errorf("no rooms: %w", ErrInvalidRoomSet)
	}

	adults := 0
	seen := make(map[string]struct{}, len(set))

	for _, a := range set {
		if a.Guests < 0 || a.Children < 0 {
			return fmt.Errorf("slot %q has negative guests: %w", a.ID, ErrInvalidRoomSet)
		}

		if capacity := f.allocator.CapacityOf(a.Room); a.Occupancy() > capacity {
			return fmt.Errorf("slot %q holds %d, capacity %d: %w", a.ID, a.Occupancy(), capacity, ErrInvalidRoomSet)
		}

		if a.ID != "" {
			if _, dup := seen[a.ID]; dup {
				return fmt.Errorf("slot %q listed twice: %w", a.ID, ErrInvalidRoomSet)
			}

			seen[a.ID] = struct{}{}
		}

		if r, ok := a.Room.Room(); ok {
			if _, known := room.Find(f.allocator.Rooms(), r.ID); !known {
				return fmt.Errorf("%q: %w", r.ID, ErrUnknownRoom)
			}
		}

		adults += a.Guests
	}

	if adults < booking.MinAdults {
		return fmt.Errorf("no adults: %w", ErrInvalidRoomSet)
	}

	if totals := allocation.Totals(set); totals.Adults > booking.MaxAdults || totals.Children > booking.MaxChildren {
		return fmt.Errorf("%d adults, %d children: %w", totals.Adults, totals.Children, booking.ErrTooManyGuests)
	}

	return nil
}

// AssignRoom puts a catalog room into slot and redistributes the party.
func (f *Form) AssignRoom(slotID, roomID string) error {
	r, ok := room.Find(f.allocator.Rooms(), roomID)
	if !ok {
		return fmt.Errorf("%q: %w", roomID, ErrUnknownRoom)
	}

	idx := f.slotIndex(slotID)
	if idx < 0 {
		return fmt.Errorf("%q: %w", slotID, ErrUnknownSlot)
	}

	rooms := allocation.Clone(f.rooms)
	rooms[idx].Room = room.Assigned(r)

	f.rooms = f.allocator.Allocate(f.store.Guests(), rooms)
	f.clearErrors()

	return nil
}

// RemoveRoom drops slot and redistributes its guests over the rest.
func (f *Form) RemoveRoom(slotID string) error {
	idx := f.slotIndex(slotID)
	if idx < 0 {
		return fmt.Errorf("%q: %w", slotID, ErrUnknownSlot)
	}

	rooms := allocation.Clone(f.rooms)
	rooms = append(rooms[:idx], rooms[idx+1:]...)

	f.rooms = f.allocator.Allocate(f.store.Guests(), rooms)
	f.clearErrors()

	return nil
}

func (f *Form) slotIndex(id string) int {
	for i, a := range f.rooms {
		if a.ID == id {
			return i
		}
	}

	return -1
}

func (f *Form) applyPrefilledRoom(id string) {
	r, ok := room.Find(f.allocator.Rooms(), id)
	if !ok {
		f.l.LogWarn("Ignoring prefilled room %q: %v", id, ErrUnknownRoom)
		f.rooms = f.allocator.Allocate(f.store.Guests(), nil)

		return
	}

	seed := []allocation.Assignment{f.allocator.NewAssignment(room.Assigned(r))}
	f.rooms = f.allocator.Allocate(f.store.Guests(), seed)
}

// SetSalutation also clears the name fields, which depend on it.
func (f *Form) SetSalutation(s string) {
	f.data.Salutation = strings.TrimSpace(s)
	f.data.FirstName = ""
	f.data.LastName = ""
	f.clearErrors()
}

// SetField edits one of the free-text contact fields.
func (f *Form) SetField(field Field, value string) error {
	switch field {
	case FieldFirstName:
		f.data.FirstName = value
	case FieldLastName:
		f.data.LastName = value
	case FieldPhonePrefix:
		f.data.PhonePrefix = value
	case FieldPhoneNumber:
		f.data.PhoneNumber = value
	case FieldEmail:
		f.data.Email = value
	case FieldMessage:
		f.data.Message = value
	case FieldSalutation:
		f.SetSalutation(value)

		return nil
	default:
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}

	f.clearErrors()

	return nil
}

func (f *Form) SetNewsletter(v bool) {
	f.data.Newsletter = v
	f.clearErrors()
}

func (f *Form) SetPrivacyAccepted(v bool) {
	f.data.PrivacyAccepted = v
	f.clearErrors()
}

// Validate runs the submission checks and keeps the result for ErrorFor.
func (f *Form) Validate() []FieldError {
	f.errors = Validate(f.data)

	return f.Errors()
}

func (f *Form) reset() {
	f.data = f.defaults()
	f.offer = nil
	f.rooms = nil
	f.errors = nil
	f.submitErr = ""

	f.store.SetDates(stay.Dates{}, f.source)
	f.store.SetGuests(booking.DefaultGuests(), f.source)
	f.store.SetPrefilledOffer("", f.source)
	f.store.SetPrefilledRoom("", f.source)

	f.rooms = f.allocator.Allocate(f.store.Guests(), nil)
}
