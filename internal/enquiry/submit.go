package enquiry

import (
	"context"
	"time"

	"github.com/avstrong/hotelenquiry/internal/allocation"
)

// Payload is the form snapshot handed to the submission transport.
type Payload struct {
	Salutation           string                  `json:"salutation"`
	FirstName            string                  `json:"firstName"            validate:"required"`
	LastName             string                  `json:"lastName"             validate:"required"`
	PhonePrefix          string                  `json:"phonePrefix"          validate:"required"`
	PhoneNumber          string                  `json:"phoneNumber"          validate:"required"`
	Email                string                  `json:"email"                validate:"required,email"`
	Message              string                  `json:"message"`
	Newsletter           bool                    `json:"newsletter"`
	PrivacyAccepted      bool                    `json:"privacyAccepted"      validate:"required"`
	Arrival              string                  `json:"arrival"              validate:"required,datetime=2006-01-02"`
	Departure            string                  `json:"departure"            validate:"required,datetime=2006-01-02"`
	AlternativeArrival   string                  `json:"alternativeArrival"   validate:"omitempty,datetime=2006-01-02"`
	AlternativeDeparture string                  `json:"alternativeDeparture" validate:"omitempty,datetime=2006-01-02"`
	DateFlexibility      int                     `json:"dateFlexibility"      validate:"oneof=0 1 2 3 7 14"`
	Offer                string                  `json:"offer,omitempty"`
	Rooms                []allocation.Assignment `json:"rooms"                validate:"min=1"`
	Adults               int                     `json:"adults"               validate:"min=1,max=20"`
	Children             int                     `json:"children"             validate:"min=0,max=10"`
	ChildAges            []int                   `json:"childAges"            validate:"dive,min=0,max=17"`
	TrafficSource        string                  `json:"trafficSource"`
	Locale               string                  `json:"locale"`
}

type Receipt struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submitter delivers an enquiry. A returned error means the hotel did not
// receive it.
type Submitter interface {
	SubmitEnquiry(ctx context.Context, p *Payload) (*Receipt, error)
}

// Outcome of a successful submission.
type Outcome struct {
	Receipt  *Receipt `json:"receipt"`
	Redirect string   `json:"redirect"`
}

func (f *Form) payload() *Payload {
	guests := f.store.Guests()

	return &Payload{
		Salutation:           f.data.Salutation,
		FirstName:            f.data.FirstName,
		LastName:             f.data.LastName,
		PhonePrefix:          f.data.PhonePrefix,
		PhoneNumber:          f.data.PhoneNumber,
		Email:                f.data.Email,
		Message:              f.data.Message,
		Newsletter:           f.data.Newsletter,
		PrivacyAccepted:      f.data.PrivacyAccepted,
		Arrival:              f.data.DatesISO.Arrival,
		Departure:            f.data.DatesISO.Departure,
		AlternativeArrival:   f.data.AlternativeDatesISO.Arrival,
		AlternativeDeparture: f.data.AlternativeDatesISO.Departure,
		DateFlexibility:      int(f.data.DateFlexibility),
		Offer:                f.data.Offer,
		Rooms:                allocation.Clone(f.rooms),
		Adults:               guests.Adults,
		Children:             guests.Children,
		ChildAges:            guests.ChildAges,
		TrafficSource:        f.opts.TrafficSource,
		Locale:               f.opts.Locale.String(),
	}
}

// BeginSubmit validates the form and, when it passes, marks it submitting and
// returns the payload to send. Room child ages are resized to each room's
// children count first.
func (f *Form) BeginSubmit() (*Payload, error) {
	if f.submitting {
		return nil, ErrSubmissionInProgress
	}

	f.rooms = allocation.Resync(f.rooms)

	if errs := f.Validate(); len(errs) > 0 {
		return nil, &ValidationError{errors: errs}
	}

	f.submitting = true
	f.submitErr = ""

	return f.payload(), nil
}

// FinishSubmit records the transport result. Success fires the tracking
// events and resets the form; failure keeps every input for a retry.
func (f *Form) FinishSubmit(ctx context.Context, receipt *Receipt, err error) (*Outcome, error) {
	f.submitting = false

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = GenericSubmitError
		}

		f.submitErr = msg
		f.l.LogErrorf("Enquiry submission failed: %v", msg)

		return nil, &SubmissionError{Message: msg, Err: err}
	}

	f.track(ctx, receipt)

	out := &Outcome{Receipt: receipt, Redirect: ThankYouPath(f.opts.Locale)}

	f.l.LogInfo("Enquiry submitted, redirecting to %s", out.Redirect)
	f.reset()

	return out, nil
}

// Submit runs a full submission through the injected transport.
func (f *Form) Submit(ctx context.Context) (*Outcome, error) {
	p, err := f.BeginSubmit()
	if err != nil {
		return nil, err
	}

	receipt, err := f.submitter.SubmitEnquiry(ctx, p)

	return f.FinishSubmit(ctx, receipt, err)
}
