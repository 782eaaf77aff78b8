package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/namedcache/namedcache/api"
	"github.com/namedcache/namedcache/config"
	"github.com/namedcache/namedcache/log"
	"github.com/namedcache/namedcache/metrics"
	"github.com/namedcache/namedcache/registry"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Server exposes the cache registry over HTTP
type Server struct {
	cfg        *config.Config
	registry   *registry.Registry
	listener   net.Listener
	httpServer *httpServer
	httpMux    *chi.Mux
}

func logger() *logrus.Entry {
	return log.PrefixedLog("server")
}

// NewServer creates new server instance with passed config. The listener is opened immediately.
func NewServer(cfg *config.Config, reg *registry.Registry) (*Server, error) {
	listener, err := net.Listen("tcp", cfg.Ports.HTTP)
	if err != nil {
		return nil, fmt.Errorf("start http listener on %s failed: %w", cfg.Ports.HTTP, err)
	}

	router := createRouter()

	if cfg.Metrics.IsEnabled() {
		metrics.StartCollection()
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	api.RegisterEndpoint(router, reg)

	s := &Server{
		cfg:        cfg,
		registry:   reg,
		listener:   listener,
		httpServer: newHTTPServer("http", router),
		httpMux:    router,
	}

	s.printConfiguration()

	return s, nil
}

// Addr returns the address the server listens on
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) printConfiguration() {
	logger().Info("current configuration:")

	s.cfg.LogConfig(logger())

	logger().Infof("- HTTP listening on addr/port: %s", s.listener.Addr())

	logger().Info("runtime information:")

	// force garbage collector
	runtime.GC()
	debug.FreeOSMemory()

	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	logger().Infof("MEM Alloc =        %10v MB", toMB(m.Alloc))
	logger().Infof("MEM HeapAlloc =    %10v MB", toMB(m.HeapAlloc))
	logger().Infof("MEM Sys =          %10v MB", toMB(m.Sys))
	logger().Infof("MEM NumGC =        %10v", m.NumGC)
	logger().Infof("RUN NumCPU =       %10d", runtime.NumCPU())
	logger().Infof("RUN NumGoroutine = %10d", runtime.NumGoroutine())
}

func toMB(b uint64) uint64 {
	const bytesInKB = 1024

	return b / bytesInKB / bytesInKB
}

// Start serves HTTP until ctx is done. Serve errors are sent to errCh.
func (s *Server) Start(ctx context.Context, errCh chan<- error) {
	logger().Info("Starting server")

	go func() {
		logger().Infof("%s server is up and running on addr/port %s", s.httpServer, s.listener.Addr())

		if err := s.httpServer.Serve(ctx, s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("start %s listener failed: %w", s.httpServer, err)
		}
	}()

	registerPrintConfigurationTrigger(ctx, s)
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger().Info("Stopping server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop %s listener failed: %w", s.httpServer, err)
	}

	return nil
}
