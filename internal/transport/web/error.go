package web

import "errors"

var (
	ErrPanic           = errors.New("panic recovered")
	ErrSessionNotFound = errors.New("enquiry session not found")
	ErrBadDate         = errors.New("date must be YYYY-MM-DD")
	ErrDayDisabled     = errors.New("day cannot be picked")
)
