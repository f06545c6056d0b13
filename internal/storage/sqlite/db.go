package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avstrong/hotelenquiry/internal/enquiry"
	"github.com/avstrong/hotelenquiry/internal/inbox"
	"github.com/avstrong/hotelenquiry/internal/logger"
)

var ErrTransactionNotFoundInCtx = errors.New("no transaction found in ctx")

type Config struct {
	L    *logger.Logger
	Path string `validate:"required"`
	// Verbose turns on gorm's SQL log.
	Verbose bool
}

type enquiryRow struct {
	ID             string `gorm:"primaryKey"`
	IdempotencyKey string `gorm:"uniqueIndex;not null"`
	Payload        string `gorm:"not null"`
	CreatedAt      time.Time
}

func (enquiryRow) TableName() string { return "enquiries" }

type eventRow struct {
	ID        string `gorm:"primaryKey"`
	EnquiryID string `gorm:"index;not null"`
	CreatedAt time.Time
}

func (eventRow) TableName() string { return "enquiry_events" }

type trxKey struct{}

// DB stores enquiries in a SQLite file through gorm.
type DB struct {
	l  *logger.Logger
	db *gorm.DB
}

func Open(conf Config) (*DB, error) {
	level := gormlogger.Silent
	if conf.Verbose {
		level = gormlogger.Info
	}

	//nolint:exhaustruct
	db, err := gorm.Open(sqlite.Open(conf.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", conf.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	// SQLite allows one writer; ":memory:" databases also live per connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&enquiryRow{}, &eventRow{}); err != nil { //nolint:exhaustruct
		return nil, fmt.Errorf("migrate: %w", err)
	}

	conf.L.LogInfo("Connected to sqlite at %s", conf.Path)

	return &DB{l: conf.L, db: db}, nil
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}

	return nil
}

// conn returns the transaction carried by ctx, or the pool.
func (d *DB) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(trxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}

	return d.db.WithContext(ctx)
}

func (d *DB) trx(ctx context.Context) (*gorm.DB, error) {
	tx, ok := ctx.Value(trxKey{}).(*gorm.DB)
	if !ok {
		return nil, ErrTransactionNotFoundInCtx
	}

	return tx, nil
}

func (d *DB) BeginTransaction(ctx context.Context) (context.Context, error) {
	tx := d.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return ctx, fmt.Errorf("begin: %w", tx.Error)
	}

	return context.WithValue(ctx, trxKey{}, tx), nil
}

func (d *DB) CommitTransaction(ctx context.Context) error {
	tx, err := d.trx(ctx)
	if err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (d *DB) RollbackTransaction(ctx context.Context) error {
	tx, err := d.trx(ctx)
	if err != nil {
		return err
	}

	if err := tx.Rollback().Error; err != nil {
		return fmt.Errorf("rollback: %w", err)
	}

	return nil
}

func (d *DB) SaveEnquiry(ctx context.Context, e *inbox.Enquiry) error {
	tx, err := d.trx(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("encode payload of %s: %w", e.ID, err)
	}

	row := enquiryRow{
		ID:             e.ID,
		IdempotencyKey: e.IdempotencyKey,
		Payload:        string(payload),
		CreatedAt:      e.CreatedAt,
	}

	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert enquiry %s: %w", e.ID, err)
	}

	return nil
}

func (d *DB) SaveEvent(ctx context.Context, e *inbox.Event) error {
	tx, err := d.trx(ctx)
	if err != nil {
		return err
	}

	row := eventRow{ID: e.ID, EnquiryID: e.EnquiryID, CreatedAt: e.CreatedAt}

	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert event %s: %w", e.ID, err)
	}

	return nil
}

func toEnquiry(row *enquiryRow) (*inbox.Enquiry, error) {
	var p enquiry.Payload

	if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
		return nil, fmt.Errorf("decode payload of %s: %w", row.ID, err)
	}

	return &inbox.Enquiry{
		ID:             row.ID,
		IdempotencyKey: row.IdempotencyKey,
		Payload:        p,
		CreatedAt:      row.CreatedAt.UTC(),
	}, nil
}

func (d *DB) GetEnquiryByIdempotencyKey(ctx context.Context, key string) (*inbox.Enquiry, error) {
	var row enquiryRow

	err := d.conn(ctx).Where("idempotency_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, inbox.ErrRecordNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("select enquiry: %w", err)
	}

	return toEnquiry(&row)
}

// ListEnquiries returns committed enquiries, oldest first.
func (d *DB) ListEnquiries(ctx context.Context) ([]*inbox.Enquiry, error) {
	var rows []enquiryRow

	if err := d.conn(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select enquiries: %w", err)
	}

	out := make([]*inbox.Enquiry, 0, len(rows))

	for i := range rows {
		e, err := toEnquiry(&rows[i])
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}

func (d *DB) CountEvents(ctx context.Context) (int64, error) {
	var n int64

	if err := d.conn(ctx).Model(&eventRow{}).Count(&n).Error; err != nil { //nolint:exhaustruct
		return 0, fmt.Errorf("count events: %w", err)
	}

	return n, nil
}
