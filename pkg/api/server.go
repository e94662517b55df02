// Package api serves the translator over HTTP
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ErikMLC/sqlmongo"
	"github.com/ErikMLC/sqlmongo/engine/translator"
	"github.com/ErikMLC/sqlmongo/pkg/config"
	"github.com/ErikMLC/sqlmongo/pkg/notify"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ConnectionTester checks a MongoDB uri; sqlmongo.TestConnection in production
type ConnectionTester func(ctx context.Context, uri string, timeout time.Duration) (*sqlmongo.ConnectionStatus, error)

// Options configures a Server
type Options struct {
	Server     config.ServerConfig
	Translator translator.Options
	Mongo      config.MongoConfig

	Notifier notify.Notifier
	Metrics  *Metrics
	Logger   *zap.Logger

	// TestConnection replaces the MongoDB connection test
	TestConnection ConnectionTester
}

// Server is the HTTP front of the translator
type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	server   *http.Server
	cfg      config.ServerConfig
	mongo    config.MongoConfig
	trOpts   translator.Options
	notify   notify.Notifier
	metrics  *Metrics
	log      *zap.Logger
	testConn ConnectionTester
}

// NewServer wires handlers and middleware
func NewServer(opts Options) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		cfg:      opts.Server,
		mongo:    opts.Mongo,
		notify:   opts.Notifier,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		testConn: opts.TestConnection,
	}
	if s.notify == nil {
		s.notify = notify.Nop{}
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.testConn == nil {
		s.testConn = sqlmongo.TestConnection
	}

	s.trOpts = opts.Translator
	s.trOpts.Logger = s.log

	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/v1/translate", s.handleTranslate)
	s.mux.HandleFunc("/api/v1/shell", s.handleShell)
	s.mux.HandleFunc("/api/v1/validate", s.handleValidate)
	s.mux.HandleFunc("/api/v1/test-connection", s.handleTestConnection)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	s.handler = withRequestID(withSecurityHeaders(s.withLogging(s.mux)))

	s.server = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.Info("starting http api", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("http api failed", zap.Error(err))
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the notifier
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http api")
	err := s.server.Shutdown(ctx)
	return errors.Join(err, s.notify.Close())
}
