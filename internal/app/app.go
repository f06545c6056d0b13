package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"github.com/avstrong/hotelenquiry/internal/catalog"
	"github.com/avstrong/hotelenquiry/internal/config"
	"github.com/avstrong/hotelenquiry/internal/enquiry"
	"github.com/avstrong/hotelenquiry/internal/idgen/random"
	"github.com/avstrong/hotelenquiry/internal/inbox"
	"github.com/avstrong/hotelenquiry/internal/logger"
	"github.com/avstrong/hotelenquiry/internal/storage/memory"
	"github.com/avstrong/hotelenquiry/internal/storage/sqlite"
	"github.com/avstrong/hotelenquiry/internal/transport/web"
)

const (
	sessionTTL    = 2 * time.Hour
	sweepInterval = 10 * time.Minute
)

type storage interface {
	GetEnquiryByIdempotencyKey(ctx context.Context, key string) (*inbox.Enquiry, error)
	ListEnquiries(ctx context.Context) ([]*inbox.Enquiry, error)
	BeginTransaction(ctx context.Context) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	SaveEnquiry(ctx context.Context, e *inbox.Enquiry) error
	SaveEvent(ctx context.Context, e *inbox.Event) error
}

func openStorage(l *logger.Logger, conf config.StorageConfig) (storage, func(), error) {
	switch conf.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(sqlite.Config{L: l, Path: conf.SQLitePath, Verbose: conf.Verbose})
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}

		return db, func() {
			if err := db.Close(); err != nil {
				l.LogErrorf("Failed to close sqlite storage: %v", err.Error())
			}
		}, nil
	default:
		return memory.New(memory.Config{L: l}), func() {}, nil
	}
}

func loadCatalog(l *logger.Logger, path string) (*catalog.Catalog, error) {
	if path == "" {
		l.LogInfo("No catalog file configured, using the built-in catalog")

		return catalog.Seed(l), nil
	}

	c, err := catalog.Load(l, path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return c, nil
}

func Run(l *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	conf, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	l = l.WithLevel(logger.ParseLevel(conf.Logger.Level))

	c, err := loadCatalog(l, conf.Enquiry.CatalogPath)
	if err != nil {
		return err
	}

	l.LogInfo("Catalog has %d rooms and %d offers", len(c.Rooms()), len(c.Offers()))

	store, closeStorage, err := openStorage(l, conf.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	inboxManager := inbox.New(l, store)

	//nolint:exhaustruct
	sessions := web.NewSessions(l, c, inboxManager, enquiry.Options{
		IDs:           random.New(),
		Locale:        language.Make(conf.Enquiry.DefaultLocale),
		PhonePrefix:   conf.Enquiry.PhonePrefix,
		MinNights:     conf.Enquiry.MinNights,
		BookingWindow: time.Duration(conf.Enquiry.BookingWindow) * 24 * time.Hour,
	})

	go sessions.RunSweeper(ctx, sweepInterval, sessionTTL)

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      log.Default(),
		Host:              conf.Server.Host,
		Port:              conf.Server.Port,
		ReadHeaderTimeout: conf.Server.ReadHeaderTimeout,
		LivenessEndpoint:  conf.Server.LivenessEndpoint,
		DefaultLocale:     conf.Enquiry.DefaultLocale,
	}

	srv, err := web.New(ctx, webConf, sessions, c, inboxManager)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v:%v with %s storage...", webConf.Host, webConf.Port, conf.Storage.Driver)

	if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		l.LogErrorf("Failed to run http server: %v", err.Error())

		cancel()
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}
