package inbox

import (
	"errors"
	"time"

	"github.com/avstrong/hotelenquiry/internal/enquiry"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidPayload = errors.New("invalid enquiry payload")
)

// Enquiry is a received enquiry as stored by the hotel.
type Enquiry struct {
	ID             string          `json:"id"`
	IdempotencyKey string          `json:"-"`
	Payload        enquiry.Payload `json:"payload"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (e *Enquiry) Receipt() *enquiry.Receipt {
	return &enquiry.Receipt{ID: e.ID, CreatedAt: e.CreatedAt}
}

// Event is the outbox record telling reception a new enquiry arrived.
type Event struct {
	ID        string    `json:"id"`
	EnquiryID string    `json:"enquiryId"`
	CreatedAt time.Time `json:"createdAt"`
}
