package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/avstrong/hotelenquiry/internal/inbox"
	"github.com/avstrong/hotelenquiry/internal/logger"
)

type enquiryLister interface {
	List(ctx context.Context) ([]*inbox.Enquiry, error)
}

type Server struct {
	srv      *http.Server
	router   *http.ServeMux
	l        *logger.Logger
	conf     Conf
	sessions *Sessions
	catalog  catalog
	inbox    enquiryLister
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
	// DefaultLocale is used when neither the request body nor Accept-Language names one.
	DefaultLocale string
}

func New(ctx context.Context, conf Conf, sessions *Sessions, c catalog, inbox enquiryLister) (*Server, error) {
	mux := http.NewServeMux()

	//nolint:exhaustruct
	srv := &http.Server{
		Addr:              net.JoinHostPort(conf.Host, conf.Port),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           mux,
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	server := &Server{
		srv:      srv,
		router:   mux,
		l:        conf.L,
		conf:     conf,
		sessions: sessions,
		catalog:  c,
		inbox:    inbox,
	}

	server.addRoutes(mux)

	return server, nil
}

func (s *Server) Srv() *http.Server {
	return s.srv
}

// Handler exposes the routed mux, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}
