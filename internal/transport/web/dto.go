package web

import (
	"fmt"

	"github.com/avstrong/hotelenquiry/internal/allocation"
	"github.com/avstrong/hotelenquiry/internal/booking"
	"github.com/avstrong/hotelenquiry/internal/enquiry"
	"github.com/avstrong/hotelenquiry/internal/offer"
	"github.com/avstrong/hotelenquiry/internal/room"
	"github.com/avstrong/hotelenquiry/internal/stay"
)

type rangeInput struct {
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
}

// toRange parses both ends strictly; an empty end stays unset.
func (in rangeInput) toRange() (stay.Range, error) {
	var r stay.Range

	if in.Arrival != "" {
		t, ok := stay.ParseISO(in.Arrival)
		if !ok {
			return r, fmt.Errorf("arrival %q: %w", in.Arrival, ErrBadDate)
		}

		r.From = t
	}

	if in.Departure != "" {
		t, ok := stay.ParseISO(in.Departure)
		if !ok {
			return r, fmt.Errorf("departure %q: %w", in.Departure, ErrBadDate)
		}

		r.To = t
	}

	return r, nil
}

type createSessionInput struct {
	Locale    string          `json:"locale"`
	UTMSource string          `json:"utmSource"`
	Referrer  string          `json:"referrer"`
	Dates     *rangeInput     `json:"dates"`
	Guests    *booking.Guests `json:"guests"`
	Offer     string          `json:"offer"`
	Room      string          `json:"room"`
}

// intentInput is a write from another widget on the page. Absent keys are
// left alone; an empty offer or room clears the prefill.
type intentInput struct {
	Dates  *rangeInput     `json:"dates"`
	Guests *booking.Guests `json:"guests"`
	Offer  *string         `json:"offer"`
	Room   *string         `json:"room"`
}

type offerInput struct {
	Title string `json:"title"`
}

type slotInput struct {
	ID        string             `json:"id"`
	RoomID    string             `json:"roomId"`
	Guests    int                `json:"guests"`
	Children  int                `json:"children"`
	ChildAges []booking.ChildAge `json:"childAges"`
	Board     allocation.Board   `json:"boardOption"`
}

type roomsInput struct {
	Rooms []slotInput `json:"rooms"`
}

type assignRoomInput struct {
	RoomID string `json:"roomId"`
}

type salutationInput struct {
	Salutation string `json:"salutation"`
}

type fieldsInput struct {
	Fields          map[enquiry.Field]string `json:"fields"`
	Newsletter      *bool                    `json:"newsletter"`
	PrivacyAccepted *bool                    `json:"privacyAccepted"`
}

type flexibilityInput struct {
	Days int `json:"days"`
}

type roomView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Capacity   string   `json:"capacity"`
	Price      float64  `json:"price"`
	Currency   string   `json:"currency"`
	PriceLabel string   `json:"priceLabel"`
	Images     []string `json:"images,omitempty"`
}

func roomViews(rooms []room.Room) []roomView {
	out := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomView{
			ID:         r.ID,
			Name:       r.Name,
			Capacity:   r.CapacityText,
			Price:      r.Price,
			Currency:   r.Currency.String(),
			PriceLabel: r.PriceLabel(),
			Images:     r.Images,
		})
	}

	return out
}

type formView struct {
	ID             string                              `json:"id"`
	Data           enquiry.FormData                    `json:"data"`
	Rooms          []allocation.Assignment             `json:"rooms"`
	AvailableRooms []roomView                          `json:"availableRooms"`
	Offers         offer.Buckets                       `json:"offers"`
	Errors         map[enquiry.Field]enquiry.ErrorKind `json:"errors"`
	SubmitError    string                              `json:"submitError,omitempty"`
	Submitting     bool                                `json:"submitting"`
	Locale         string                              `json:"locale"`
}

// view must be called with sess.mu held.
func (sess *session) view() formView {
	errs := make(map[enquiry.Field]enquiry.ErrorKind)
	for _, fe := range sess.form.Errors() {
		errs[fe.Field] = fe.Kind
	}

	return formView{
		ID:             sess.id,
		Data:           sess.form.Data(),
		Rooms:          sess.form.Rooms(),
		AvailableRooms: roomViews(sess.form.AvailableRooms()),
		Offers:         sess.form.Offers(),
		Errors:         errs,
		SubmitError:    sess.form.SubmitError(),
		Submitting:     sess.form.Submitting(),
		Locale:         sess.form.Locale().String(),
	}
}

type clickInput struct {
	Date string `json:"date"`
}

type calendarView struct {
	Today    string   `json:"today"`
	MaxDate  string   `json:"maxDate,omitempty"`
	Disabled []string `json:"disabled"`
}

type errorView struct {
	Error string `json:"error"`
}
