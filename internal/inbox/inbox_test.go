package inbox_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/hotelenquiry/internal/allocation"
	"github.com/avstrong/hotelenquiry/internal/booking"
	"github.com/avstrong/hotelenquiry/internal/enquiry"
	"github.com/avstrong/hotelenquiry/internal/inbox"
	"github.com/avstrong/hotelenquiry/internal/logger"
	"github.com/avstrong/hotelenquiry/internal/room"
	"github.com/avstrong/hotelenquiry/internal/storage/memory"
)

var errDiskFull = errors.New("disk full")

type failingEvents struct {
	*memory.DB
}

func (failingEvents) SaveEvent(context.Context, *inbox.Event) error {
	return errDiskFull
}

func validPayload() *enquiry.Payload {
	//nolint:exhaustruct
	return &enquiry.Payload{
		FirstName:       "Anna",
		LastName:        "Muster",
		PhonePrefix:     "+49",
		PhoneNumber:     "1701234567",
		Email:           "anna@example.com",
		PrivacyAccepted: true,
		Arrival:         "2025-06-01",
		Departure:       "2025-06-04",
		DateFlexibility: 2,
		Adults:          2,
		Children:        1,
		ChildAges:       []int{6},
		Rooms: []allocation.Assignment{
			{
				ID:        "slot-1",
				Room:      room.Pending(),
				Guests:    2,
				Children:  1,
				ChildAges: []booking.ChildAge{{Age: 6}},
				Board:     allocation.HalfBoard,
			},
		},
		TrafficSource: "direct",
	}
}

func newManager() (*inbox.Manager, *memory.DB) {
	db := memory.New(memory.Config{L: logger.Discard()})

	return inbox.New(logger.Discard(), db), db
}

func TestSubmitStoresEnquiryAndEvent(t *testing.T) {
	m, db := newManager()
	ctx := context.Background()

	receipt, err := m.SubmitEnquiry(ctx, validPayload())
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ID)
	assert.False(t, receipt.CreatedAt.IsZero())

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, receipt.ID, list[0].ID)
	assert.Equal(t, "Anna", list[0].Payload.FirstName)

	events := db.Events(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, receipt.ID, events[0].EnquiryID)
}

func TestSubmitReplaysIdempotencyKey(t *testing.T) {
	m, db := newManager()
	ctx := booking.NewContextWithIdempotencyKey(context.Background(), "retry-1")

	first, err := m.SubmitEnquiry(ctx, validPayload())
	require.NoError(t, err)

	second, err := m.SubmitEnquiry(ctx, validPayload())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, db.Events(ctx), 1)
}

func TestSubmitWithoutKeyStoresEachCall(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	_, err := m.SubmitEnquiry(ctx, validPayload())
	require.NoError(t, err)
	_, err = m.SubmitEnquiry(ctx, validPayload())
	require.NoError(t, err)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSubmitRejectsInvalidPayload(t *testing.T) {
	m, _ := newManager()

	tests := map[string]func(p *enquiry.Payload){
		"missing email":   func(p *enquiry.Payload) { p.Email = "" },
		"malformed email": func(p *enquiry.Payload) { p.Email = "anna@" },
		"privacy":         func(p *enquiry.Payload) { p.PrivacyAccepted = false },
		"arrival format":  func(p *enquiry.Payload) { p.Arrival = "01.06.2025" },
		"no rooms":        func(p *enquiry.Payload) { p.Rooms = nil },
		"no adults":       func(p *enquiry.Payload) { p.Adults = 0 },
		"flexibility":     func(p *enquiry.Payload) { p.DateFlexibility = 5 },
		"child age":       func(p *enquiry.Payload) { p.ChildAges = []int{18} },
		"departure first": func(p *enquiry.Payload) { p.Arrival, p.Departure = p.Departure, p.Arrival },
		"zero nights":     func(p *enquiry.Payload) { p.Departure = p.Arrival },
		"alternative order": func(p *enquiry.Payload) {
			p.AlternativeArrival, p.AlternativeDeparture = "2025-07-10", "2025-07-03"
		},
		"too many adults": func(p *enquiry.Payload) { p.Adults = 21 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := validPayload()
			mutate(p)

			_, err := m.SubmitEnquiry(context.Background(), p)
			require.ErrorIs(t, err, inbox.ErrInvalidPayload)
		})
	}

	_, err := m.SubmitEnquiry(context.Background(), nil)
	require.ErrorIs(t, err, inbox.ErrInvalidPayload)
}

func TestSubmitRollsBackOnStorageError(t *testing.T) {
	db := memory.New(memory.Config{L: logger.Discard()})
	m := inbox.New(logger.Discard(), failingEvents{DB: db})
	ctx := booking.NewContextWithIdempotencyKey(context.Background(), "k")

	_, err := m.SubmitEnquiry(ctx, validPayload())
	require.ErrorIs(t, err, errDiskFull)

	list, err := db.ListEnquiries(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "enquiry row is rolled back with the event")

	_, err = db.GetEnquiryByIdempotencyKey(ctx, "k")
	require.ErrorIs(t, err, inbox.ErrRecordNotFound)
}
