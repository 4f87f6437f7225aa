package main

import (
	"net/http"
	"time"

	"github.com/JaimeStill/flora/internal/config"
	"github.com/JaimeStill/flora/internal/infrastructure"
)

// Server wires infrastructure, the API and app modules, and the HTTP listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	handler http.Handler
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	// Modules register the recognition job handler, so they are built
	// before the infrastructure starts its workers.
	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"flora initialized",
		"addr", cfg.Server.Addr(),
		"env", cfg.Env(),
		"version", cfg.Version,
		"jobs", cfg.Jobs.Driver,
		"api", modules.API.Prefix(),
		"app", modules.App.Prefix(),
	)

	return &Server{
		infra:   infra,
		handler: router,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	start := time.Now()
	s.infra.Logger.Info("initiating shutdown")

	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		return err
	}

	s.infra.Logger.Info("shutdown complete", "elapsed", time.Since(start))
	return nil
}
