package web

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/avstrong/hotelenquiry/internal/booking"
	"github.com/avstrong/hotelenquiry/internal/enquiry"
	"github.com/avstrong/hotelenquiry/internal/intent"
	"github.com/avstrong/hotelenquiry/internal/logger"
	"github.com/avstrong/hotelenquiry/internal/offer"
	"github.com/avstrong/hotelenquiry/internal/room"
	"github.com/avstrong/hotelenquiry/internal/stay"
)

type catalog interface {
	Rooms() []room.Room
	Offers() []offer.Offer
}

// Prefill is what the page already knows when the form mounts: the hero
// widget's dates and party, or the offer/room the guest clicked through from.
type Prefill struct {
	Dates  *stay.Range
	Guests *booking.Guests
	Offer  string
	Room   string
}

func (p Prefill) check() error {
	if p.Dates != nil && p.Dates.Complete() && !p.Dates.Valid() {
		return fmt.Errorf("prefill dates: %w", enquiry.ErrInvalidRange)
	}

	if p.Guests != nil {
		if err := p.Guests.Validate(); err != nil {
			return fmt.Errorf("prefill guests: %w", err)
		}
	}

	return nil
}

// Visitor describes who opened the form.
type Visitor struct {
	Locale        language.Tag
	TrafficSource string
}

// session is one guest's form with the store it shares with the page's
// other widgets. mu serialises every access to both.
type session struct {
	mu       sync.Mutex
	id       string
	store    *intent.Store
	form     *enquiry.Form
	lastSeen time.Time
}

// Sessions keeps the live enquiry forms by id.
type Sessions struct {
	mu        sync.Mutex
	l         *logger.Logger
	catalog   catalog
	submitter enquiry.Submitter
	opts      enquiry.Options
	now       func() time.Time
	byID      map[string]*session
}

func NewSessions(l *logger.Logger, c catalog, submitter enquiry.Submitter, opts enquiry.Options) *Sessions {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Sessions{
		l:         l,
		catalog:   c,
		submitter: submitter,
		opts:      opts,
		now:       now,
		byID:      make(map[string]*session),
	}
}

// Create mounts a new form seeded from p.
func (s *Sessions) Create(p Prefill, v Visitor) (*session, error) {
	if err := p.check(); err != nil {
		return nil, err
	}

	store := intent.New()

	if p.Dates != nil {
		store.SetDates(stay.Dates{Primary: *p.Dates}, intent.External)
	}

	if p.Guests != nil {
		store.SetGuests(*p.Guests, intent.External)
	}

	if p.Offer != "" {
		store.SetPrefilledOffer(p.Offer, intent.External)
	}

	if p.Room != "" {
		store.SetPrefilledRoom(p.Room, intent.External)
	}

	opts := s.opts
	opts.TrafficSource = v.TrafficSource

	if v.Locale != language.Und {
		opts.Locale = v.Locale
	}

	//nolint:exhaustruct
	sess := &session{
		id:       uuid.NewString(),
		store:    store,
		form:     enquiry.New(s.l, store, s.catalog, s.submitter, opts),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	s.byID[sess.id] = sess
	s.mu.Unlock()

	s.l.LogDebug("Enquiry session %s created, source: %s", sess.id, opts.TrafficSource)

	return sess, nil
}

func (s *Sessions) Get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.lastSeen = s.now()

	return sess, nil
}

func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.byID[id]
	delete(s.byID, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.form.Close()
	sess.mu.Unlock()

	return nil
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.byID)
}

// Sweep drops sessions idle for longer than ttl. Sessions mid-submit are kept.
func (s *Sessions) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()

	var stale []*session

	for id, sess := range s.byID {
		if sess.lastSeen.Before(cutoff) && sess.mu.TryLock() {
			if sess.form.Submitting() {
				sess.mu.Unlock()

				continue
			}

			delete(s.byID, id)
			stale = append(stale, sess)
		}
	}

	s.mu.Unlock()

	for _, sess := range stale {
		sess.form.Close()
		sess.mu.Unlock()
	}

	if len(stale) > 0 {
		s.l.LogInfo("Swept %d idle enquiry sessions", len(stale))
	}

	return len(stale)
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ttl)
		}
	}
}

// submit runs a submission with the transport call outside the session lock,
// so a second submit for the same form sees it in flight and is refused.
func (s *Sessions) submit(ctx context.Context, sess *session) (*enquiry.Outcome, error) {
	sess.mu.Lock()
	p, err := sess.form.BeginSubmit()
	sess.mu.Unlock()

	if err != nil {
		return nil, err
	}

	receipt, err := s.submitter.SubmitEnquiry(ctx, p)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.form.FinishSubmit(ctx, receipt, err)
}
