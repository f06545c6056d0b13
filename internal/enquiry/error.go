package enquiry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSubmissionInProgress = errors.New("enquiry submission already in progress")
	ErrUnknownOffer         = errors.New("unknown offer")
	ErrUnknownRoom          = errors.New("unknown room")
	ErrUnknownSlot          = errors.New("unknown room slot")
	ErrInvalidRange         = errors.New("arrival must be before departure")
	ErrInvalidRoomSet       = errors.New("invalid room selection")
	ErrUnknownField         = errors.New("unknown form field")
)

// GenericSubmitError is surfaced when the transport fails without a message.
const GenericSubmitError = "submission-failed"

// Field names a form input that can carry an error.
type Field string

const (
	FieldDates           Field = "dates"
	FieldSalutation      Field = "salutation"
	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldPhonePrefix     Field = "phonePrefix"
	FieldPhoneNumber     Field = "phoneNumber"
	FieldEmail           Field = "email"
	FieldMessage         Field = "message"
	FieldPrivacyAccepted Field = "privacyAccepted"
)

type ErrorKind string

const (
	KindRequired     ErrorKind = "required"
	KindInvalidEmail ErrorKind = "invalid-email"
	KindInvalidRange ErrorKind = "invalid-range"
)

type FieldError struct {
	Field Field     `json:"field"`
	Kind  ErrorKind `json:"kind"`
}

// ValidationError blocks submission until the listed fields are fixed.
type ValidationError struct {
	errors []FieldError
}

func IsValidationError(err error) *ValidationError {
	if err == nil {
		return nil
	}

	var validationErr *ValidationError

	if errors.As(err, &validationErr) {
		return validationErr
	}

	return nil
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.errors))
	for _, fe := range e.errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Kind))
	}

	return "invalid enquiry: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Errors() []FieldError {
	out := make([]FieldError, len(e.errors))
	copy(out, e.errors)

	return out
}

func (e *ValidationError) Fields() map[Field]ErrorKind {
	out := make(map[Field]ErrorKind, len(e.errors))
	for _, fe := range e.errors {
		out[fe.Field] = fe.Kind
	}

	return out
}

// SubmissionError is a rejected or failed transport call. The form keeps the
// guest's input for a retry.
type SubmissionError struct {
	Message string
	Err     error
}

func IsSubmissionError(err error) *SubmissionError {
	if err == nil {
		return nil
	}

	var submissionErr *SubmissionError

	if errors.As(err, &submissionErr) {
		return submissionErr
	}

	return nil
}

func (e *SubmissionError) Error() string {
	return "submit enquiry: " + e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
