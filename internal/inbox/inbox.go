package inbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/hotelenquiry/internal/booking"
	"github.com/avstrong/hotelenquiry/internal/enquiry"
	"github.com/avstrong/hotelenquiry/internal/logger"
	"github.com/avstrong/hotelenquiry/internal/stay"
)

type storageReader interface {
	GetEnquiryByIdempotencyKey(ctx context.Context, key string) (*Enquiry, error)
	ListEnquiries(ctx context.Context) ([]*Enquiry, error)
}

type storageWriter interface {
	BeginTransaction(ctx context.Context) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	SaveEnquiry(ctx context.Context, e *Enquiry) error
	SaveEvent(ctx context.Context, e *Event) error
}

type storage interface {
	storageReader
	storageWriter
}

// Manager receives enquiries and stores them once per idempotency key.
type Manager struct {
	l        *logger.Logger
	storage  storage
	validate *validator.Validate
	now      func() time.Time
}

func New(l *logger.Logger, storage storage) *Manager {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterStructValidation(validateStayOrder, enquiry.Payload{})

	return &Manager{
		l:        l,
		storage:  storage,
		validate: validate,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// validateStayOrder requires departure after arrival for both ranges.
func validateStayOrder(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(enquiry.Payload)
	if !ok {
		return
	}

	if !inOrder(p.Arrival, p.Departure) {
		sl.ReportError(p.Departure, "Departure", "departure", "gtfield", "Arrival")
	}

	if !inOrder(p.AlternativeArrival, p.AlternativeDeparture) {
		sl.ReportError(p.AlternativeDeparture, "AlternativeDeparture", "alternativeDeparture", "gtfield", "AlternativeArrival")
	}
}

// inOrder reports false only for two parseable dates in the wrong order;
// missing or malformed ends are left to the field tags.
func inOrder(arrival, departure string) bool {
	from, okFrom := stay.ParseISO(arrival)
	to, okTo := stay.ParseISO(departure)

	return !okFrom || !okTo || from.Before(to)
}

func (m *Manager) check(p *enquiry.Payload) error {
	if p == nil {
		return fmt.Errorf("nil payload: %w", ErrInvalidPayload)
	}

	err := m.validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate payload: %w", err)
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
	}

	return fmt.Errorf("%s: %w", strings.Join(fields, ", "), ErrInvalidPayload)
}

func traceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}

	return "-"
}

// SubmitEnquiry stores p. A retry carrying the same idempotency key returns
// the first receipt instead of storing a duplicate.
//
//nolint:funlen // linear transaction handling
func (m *Manager) SubmitEnquiry(ctx context.Context, p *enquiry.Payload) (_ *enquiry.Receipt, err error) {
	if err := m.check(p); err != nil {
		return nil, err
	}

	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok {
		key = uuid.NewString()
	}

	existing, err := m.storage.GetEnquiryByIdempotencyKey(ctx, key)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, fmt.Errorf("get enquiry by idempotency key: %w", err)
	}

	if err == nil {
		m.l.LogInfo("Enquiry %s replayed for idempotency key, traceID: %s", existing.ID, traceID(ctx))

		return existing.Receipt(), nil
	}

	now := m.now()
	record := &Enquiry{
		ID:             uuid.NewString(),
		IdempotencyKey: key,
		Payload:        *p,
		CreatedAt:      now,
	}
	event := &Event{
		ID:        uuid.NewString(),
		EnquiryID: record.ID,
		CreatedAt: now,
	}

	ctx, err = m.storage.BeginTransaction(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := m.storage.RollbackTransaction(ctx); rbErr != nil {
				m.l.LogErrorf("Could not rollback enquiry transaction after panic %v", p)
			}

			panic(p)
		}

		if err != nil {
			if rbErr := m.storage.RollbackTransaction(ctx); rbErr != nil {
				m.l.LogErrorf("Could not rollback enquiry transaction after error %v", rbErr.Error())
			}

			m.l.LogInfo("Enquiry transaction has been rolled back after error")

			return
		}

		if err = m.storage.CommitTransaction(ctx); err != nil {
			m.l.LogErrorf("Could not commit enquiry transaction, err %v", err.Error())
		}
	}()

	if err = m.storage.SaveEnquiry(ctx, record); err != nil {
		return nil, fmt.Errorf("save enquiry to storage: %w", err)
	}

	if err = m.storage.SaveEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("save event to storage: %w", err)
	}

	m.l.LogInfo("Enquiry %s received from %s, rooms: %d, traceID: %s",
		record.ID, p.TrafficSource, len(p.Rooms), traceID(ctx))

	return record.Receipt(), nil
}

func (m *Manager) List(ctx context.Context) ([]*Enquiry, error) {
	out, err := m.storage.ListEnquiries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}

	return out, nil
}
