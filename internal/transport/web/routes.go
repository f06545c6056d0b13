package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/avstrong/hotelenquiry/internal/allocation"
	"github.com/avstrong/hotelenquiry/internal/booking"
	"github.com/avstrong/hotelenquiry/internal/enquiry"
	"github.com/avstrong/hotelenquiry/internal/intent"
	"github.com/avstrong/hotelenquiry/internal/offer"
	"github.com/avstrong/hotelenquiry/internal/room"
	"github.com/avstrong/hotelenquiry/internal/stay"
)

const (
	defaultCalendarDays = 42
	maxCalendarDays     = 366
)

var errBadInput = []error{
	ErrBadDate,
	ErrDayDisabled,
	enquiry.ErrUnknownOffer,
	enquiry.ErrUnknownRoom,
	enquiry.ErrUnknownSlot,
	enquiry.ErrInvalidRange,
	enquiry.ErrInvalidRoomSet,
	enquiry.ErrUnknownField,
	booking.ErrNoAdults,
	booking.ErrNegativeGuests,
	booking.ErrTooManyGuests,
	booking.ErrChildAgeOutside,
	stay.ErrInvalidFlexibility,
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if validationErr := enquiry.IsValidationError(err); validationErr != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, validationErr.Fields())

		return
	}

	if submissionErr := enquiry.IsSubmissionError(err); submissionErr != nil {
		s.writeJSON(w, http.StatusBadGateway, errorView{Error: submissionErr.Message})

		return
	}

	switch {
	case errors.Is(err, ErrSessionNotFound):
		s.writeJSON(w, http.StatusNotFound, errorView{Error: err.Error()})

		return
	case errors.Is(err, enquiry.ErrSubmissionInProgress):
		s.writeJSON(w, http.StatusConflict, errorView{Error: err.Error()})

		return
	}

	for _, target := range errBadInput {
		if errors.Is(err, target) {
			s.writeJSON(w, http.StatusBadRequest, errorView{Error: err.Error()})

			return
		}
	}

	s.l.LogErrorf("Could not handle enquiry request: %v", err.Error())
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// decode reads a JSON body into v. An empty body is accepted when optional.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}

	s.writeJSON(w, http.StatusBadRequest, errorView{Error: fmt.Sprintf("malformed body: %v", err)})

	return false
}

// mutate runs fn on the session named in the path under its lock and
// answers with the updated form.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(sess *session) error) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, sess.view())
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	var in createSessionInput

	if !s.decode(w, r, &in, true) {
		return
	}

	var prefill Prefill

	if in.Dates != nil {
		rng, err := in.Dates.toRange()
		if err != nil {
			s.writeError(w, err)

			return
		}

		prefill.Dates = &rng
	}

	prefill.Guests = in.Guests
	prefill.Offer = in.Offer
	prefill.Room = in.Room

	locale := in.Locale
	if locale == "" {
		locale = r.Header.Get("Accept-Language")
	}

	if locale == "" {
		locale = s.conf.DefaultLocale
	}

	utm := in.UTMSource
	if utm == "" {
		utm = r.URL.Query().Get("utm_source")
	}

	referrer := in.Referrer
	if referrer == "" {
		referrer = r.Header.Get("Referer")
	}

	sess, err := s.sessions.Create(prefill, Visitor{
		Locale:        enquiry.MatchLocale(locale),
		TrafficSource: enquiry.TrafficSource(utm, referrer),
	})
	if err != nil {
		s.writeError(w, err)

		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.writeJSON(w, http.StatusCreated, sess.view())
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(*session) error { return nil })
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		s.writeError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putDatesHandler(w http.ResponseWriter, r *http.Request) {
	var in rangeInput

	if !s.decode(w, r, &in, false) {
		return
	}

	s.mutate(w, r, func(sess *session) error {
		rng, err := in.toRange()
		if err != nil {
			return err
		}

		return sess.form.SelectDates(rng)
	})
}

func (s *Server) putAlternativeDatesHandler(w http.ResponseWriter, r *http.Request) {
	var in rangeInput

	if !s.decode(w, r, &in, false) {
		return
	}

	s.mutate(w, r, func(sess *session) error {
		rng, err := in.toRange()
		if err != nil {
			return err
		}

		return sess.form.SelectAlternativeDates(rng)
	})
}

func (s *Server) deleteDatesHandler(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session) error {
		sess.form.ClearDates()

		return nil
	})
}

func (s *Server) putFlexibilityHandler(w http.ResponseWriter, r *http.Request) {
	var in flexibilityInput

	if !s.decode(w, r, &in, false) {
		return
	}

	s.mutate(w, r, func(sess *session) error {
		return sess.form.SetFlexibility(stay.Flexibility(in.Days))
	})
}

func (s *Server) putGuestsHandler(w http.ResponseWriter, r *http.Request) {
	var in booking.Guests

	if !s.decode(w, r, &in, false) {
		return
	}

	s.mutate(w, r, func(sess *session) error {
		return sess.form.SelectGuests(in)
	})
}

func (s *Server) putOfferHandler(w http.ResponseWriter, r *http.Request) {
	var in offerInput

	if !s.decode(w, r, &in, false) {
		return
	}

	s.mutate(w, r, func(sess *session) error {
		if in.Title == "" {
			sess.form.ClearOffer()

			return nil
		}

		return sess.form.SelectOffer(in.Title)
	})
}

func (s *Server) putRoomsHandler(w http.ResponseWriter, r *http.Request) {
	var in roomsInput

	if !s.decode(w, r, &in, false) {
		return
	}

	rooms := s.catalog.Rooms()
	set := make([]allocation.Assignment, 0, len(in.Rooms))

	for _, slot := range in.Rooms {
		ref := room.Pending()

		if slot.RoomID != "" {
			rm, ok := room.Find(rooms, slot.RoomID)
			if !ok {
				s.writeError(w, fmt.Errorf("%q: %w", slot.RoomID, enquiry.ErrUnknownRoom))

				return
			}

			ref = room.Assigned(rm)
		}

		set = append(set, allocation.Assignment{
			ID:        slot.ID,
			Room:      ref,
			Guests:    slot.Guests,
			Children:  slot.Children,
			ChildAges: slot.ChildAges,
			Board:     slot.Board,
		})
	}

	s.mutate(w, r, func(sess *session) error {
		return sess.form.SelectRooms(set)
	})
}

func (s *Server) putRoomSlotHandler(w http.ResponseWriter, r *http.Request) {
	var in assignRoomInput

	if !s.decode(w, r, &in, false) {
		return
	}

	s.mutate(w, r, func(sess *session) error {
		return sess.form.AssignRoom(r.PathValue("slot"), in.RoomID)
	})
}

func (s *Server) deleteRoomSlotHandler(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session) error {
		return sess.form.RemoveRoom(r.PathValue("slot"))
	})
}

func (s *Server) putSalutationHandler(w http.ResponseWriter, r *http.Request) {
	var in salutationInput

	if !s.decode(w, r, &in, false) {
		return
	}

	s.mutate(w, r, func(sess *session) error {
		sess.form.SetSalutation(in.Salutation)

		return nil
	})
}

func (s *Server) putFieldsHandler(w http.ResponseWriter, r *http.Request) {
	var in fieldsInput

	if !s.decode(w, r, &in, false) {
		return
	}

	// Salutation clears the names, so it goes first.
	fields := make([]enquiry.Field, 0, len(in.Fields))
	for f := range in.Fields {
		if f != enquiry.FieldSalutation {
			fields = append(fields, f)
		}
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	if _, ok := in.Fields[enquiry.FieldSalutation]; ok {
		fields = append([]enquiry.Field{enquiry.FieldSalutation}, fields...)
	}

	s.mutate(w, r, func(sess *session) error {
		for _, f := range fields {
			if err := sess.form.SetField(f, in.Fields[f]); err != nil {
				return err
			}
		}

		if in.Newsletter != nil {
			sess.form.SetNewsletter(*in.Newsletter)
		}

		if in.PrivacyAccepted != nil {
			sess.form.SetPrivacyAccepted(*in.PrivacyAccepted)
		}

		return nil
	})
}

func (s *Server) putIntentHandler(w http.ResponseWriter, r *http.Request) {
	var in intentInput

	if !s.decode(w, r, &in, false) {
		return
	}

	s.mutate(w, r, func(sess *session) error {
		if in.Dates != nil {
			rng, err := in.Dates.toRange()
			if err != nil {
				return err
			}

			if rng.Complete() && !rng.Valid() {
				return fmt.Errorf("intent dates: %w", enquiry.ErrInvalidRange)
			}

			dates := sess.store.Dates()
			dates.Primary = rng
			sess.store.SetDates(dates, intent.External)
		}

		if in.Guests != nil {
			if err := in.Guests.Validate(); err != nil {
				return fmt.Errorf("intent guests: %w", err)
			}

			sess.store.SetGuests(*in.Guests, intent.External)
		}

		if in.Offer != nil {
			sess.store.SetPrefilledOffer(*in.Offer, intent.External)
		}

		if in.Room != nil {
			sess.store.SetPrefilledRoom(*in.Room, intent.External)
		}

		return nil
	})
}

func (s *Server) postCalendarClickHandler(w http.ResponseWriter, r *http.Request) {
	var in clickInput

	if !s.decode(w, r, &in, false) {
		return
	}

	day, ok := stay.ParseISO(in.Date)
	if !ok {
		s.writeError(w, fmt.Errorf("date %q: %w", in.Date, ErrBadDate))

		return
	}

	s.mutate(w, r, func(sess *session) error {
		if !sess.form.ClickDate(day) {
			return fmt.Errorf("%s: %w", in.Date, ErrDayDisabled)
		}

		return nil
	})
}

func (s *Server) getCalendarHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days := defaultCalendarDays

	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxCalendarDays {
			s.writeJSON(w, http.StatusBadRequest, errorView{Error: fmt.Sprintf("days must be 1..%d", maxCalendarDays)})

			return
		}

		days = n
	}

	var from, pending time.Time

	for name, dst := range map[string]*time.Time{"from": &from, "pending": &pending} {
		v := q.Get(name)
		if v == "" {
			continue
		}

		t, ok := stay.ParseISO(v)
		if !ok {
			s.writeError(w, fmt.Errorf("%s %q: %w", name, v, ErrBadDate))

			return
		}

		*dst = t
	}

	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	sess.mu.Lock()
	cal := sess.form.Calendar()

	if primary := sess.store.Dates().Primary; pending.IsZero() && primary.Pending() {
		pending = primary.From
	}
	sess.mu.Unlock()

	if from.IsZero() {
		from = cal.Today
	}

	disabled := cal.DisabledDays(from, days, pending)
	out := calendarView{
		Today:    stay.FormatISO(cal.Today),
		MaxDate:  stay.FormatISO(cal.MaxDate),
		Disabled: make([]string, 0, len(disabled)),
	}

	for _, d := range disabled {
		out.Disabled = append(out.Disabled, stay.FormatISO(d))
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		ctx = booking.NewContextWithIdempotencyKey(ctx, key)
	}

	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	out, err := s.sessions.submit(ctx, sess)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) catalogRoomsHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, roomViews(room.Biddable(s.catalog.Rooms())))
}

func (s *Server) catalogOffersHandler(w http.ResponseWriter, r *http.Request) {
	in := rangeInput{Arrival: r.URL.Query().Get("arrival"), Departure: r.URL.Query().Get("departure")}

	rng, err := in.toRange()
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, offer.Partition(s.catalog.Offers(), rng))
}

func (s *Server) listEnquiriesHandler(w http.ResponseWriter, r *http.Request) {
	out, err := s.inbox.List(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addRoutes(r *http.ServeMux) {
	const sessionPath = "/api/enquiry/v1/sessions/{id}"

	routes := map[string]http.HandlerFunc{
		"POST /api/enquiry/v1/sessions":                s.createSessionHandler,
		"GET " + sessionPath:                           s.getSessionHandler,
		"DELETE " + sessionPath:                        s.deleteSessionHandler,
		"PUT " + sessionPath + "/dates":                s.putDatesHandler,
		"DELETE " + sessionPath + "/dates":             s.deleteDatesHandler,
		"PUT " + sessionPath + "/alternative-dates":    s.putAlternativeDatesHandler,
		"PUT " + sessionPath + "/flexibility":          s.putFlexibilityHandler,
		"PUT " + sessionPath + "/guests":               s.putGuestsHandler,
		"PUT " + sessionPath + "/offer":                s.putOfferHandler,
		"PUT " + sessionPath + "/rooms":                s.putRoomsHandler,
		"PUT " + sessionPath + "/rooms/{slot}":         s.putRoomSlotHandler,
		"DELETE " + sessionPath + "/rooms/{slot}":      s.deleteRoomSlotHandler,
		"PUT " + sessionPath + "/salutation":           s.putSalutationHandler,
		"PUT " + sessionPath + "/fields":               s.putFieldsHandler,
		"PUT " + sessionPath + "/intent":               s.putIntentHandler,
		"GET " + sessionPath + "/calendar":             s.getCalendarHandler,
		"POST " + sessionPath + "/calendar/click":      s.postCalendarClickHandler,
		"POST " + sessionPath + "/submit":              s.submitHandler,
		"GET /api/catalog/v1/rooms":                    s.catalogRoomsHandler,
		"GET /api/catalog/v1/offers":                   s.catalogOffersHandler,
		"GET /api/inbox/v1/enquiries":                  s.listEnquiriesHandler,
		fmt.Sprintf("GET %s", s.conf.LivenessEndpoint): s.livenessHandler,
	}

	for pattern, h := range routes {
		r.Handle(pattern, s.applyMiddlewares(h, s.loggerMiddleware(), s.recoverMiddleware()))
	}
}
