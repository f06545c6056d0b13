package enquiry

import (
	"regexp"
	"strings"
)

var mailboxPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the fields required before submission. The result order is
// fixed so repeated calls on the same data agree.
func Validate(d FormData) []FieldError {
	errs := make([]FieldError, 0)

	required := func(f Field, v string) {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, FieldError{Field: f, Kind: KindRequired})
		}
	}

	// ISO dates order the same as strings.
	switch {
	case d.DatesISO.Arrival == "" || d.DatesISO.Departure == "":
		errs = append(errs, FieldError{Field: FieldDates, Kind: KindRequired})
	case d.DatesISO.Arrival >= d.DatesISO.Departure:
		errs = append(errs, FieldError{Field: FieldDates, Kind: KindInvalidRange})
	}

	required(FieldFirstName, d.FirstName)
	required(FieldLastName, d.LastName)
	required(FieldPhonePrefix, d.PhonePrefix)
	required(FieldPhoneNumber, d.PhoneNumber)

	switch email := strings.TrimSpace(d.Email); {
	case email == "":
		errs = append(errs, FieldError{Field: FieldEmail, Kind: KindRequired})
	case !mailboxPattern.MatchString(email):
		errs = append(errs, FieldError{Field: FieldEmail, Kind: KindInvalidEmail})
	}

	if !d.PrivacyAccepted {
		errs = append(errs, FieldError{Field: FieldPrivacyAccepted, Kind: KindRequired})
	}

	return errs
}

// ErrorFor finds the error bound to f in errs.
func ErrorFor(errs []FieldError, f Field) (ErrorKind, bool) {
	for _, fe := range errs {
		if fe.Field == f {
			return fe.Kind, true
		}
	}

	return "", false
}
