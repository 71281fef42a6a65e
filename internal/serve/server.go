// Package serve exposes the interactive simulator over SSH. Every session
// gets its own preset picker and controllers; nothing is shared between
// connections.
package serve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/sim"
	"github.com/san-kum/freefall/internal/viz"
)

type Config struct {
	// Address is the host:port to listen on.
	Address string
	// HostKeyPath is created on first start. Relative paths are resolved
	// against the home directory.
	HostKeyPath string
	IdleTimeout time.Duration
	// Base is the configuration each session's experiments start from.
	Base      *config.Config
	Theme     string
	FrameRate int
}

// ConfigFrom maps the ssh section of cfg onto a server config.
func ConfigFrom(cfg *config.Config, theme string) Config {
	return Config{
		Address:     cfg.SSH.Address,
		HostKeyPath: cfg.SSH.HostKeyPath,
		IdleTimeout: time.Duration(cfg.SSH.IdleTimeout * float64(time.Second)),
		Base:        cfg,
		Theme:       theme,
		FrameRate:   cfg.FrameRate,
	}
}

type Server struct {
	cfg      Config
	server   *ssh.Server
	logger   *log.Logger
	sessions atomic.Int64
}

func New(cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "freefall-ssh",
		})
	}
	if cfg.Base == nil {
		cfg.Base = config.DefaultConfig()
	}

	hostKeyPath, err := resolveHostKeyPath(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	s := &Server{cfg: cfg, logger: logger}
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			s.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	s.server = server
	return s, nil
}

func resolveHostKeyPath(path string) (string, error) {
	if path == "" {
		path = config.DefaultHostKeyPath
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot get home directory: %w", err)
	}
	return filepath.Join(home, path), nil
}

func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	if _, _, ok := sess.Pty(); !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	logger := s.logger.With("user", sess.User())
	picker := viz.NewPicker(s.cfg.Base, viz.ModelConfig{
		FrameRate: s.cfg.FrameRate,
		Theme:     s.cfg.Theme,
		Logger:    logger,
		Renderer:  bubbletea.MakeRenderer(sess),
	}, sim.WithLogger(logger))

	return picker, []tea.ProgramOption{tea.WithAltScreen()}
}

func (s *Server) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		n := s.sessions.Add(1)
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"active", n,
		)
		next(sess)
		n = s.sessions.Add(-1)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"active", n,
		)
	}
}

// ListenAndServe blocks until ctx is done or the process is interrupted,
// then shuts the server down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.logger.Info("starting SSH server", "address", s.cfg.Address)
	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			s.logger.Error("server error", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.cfg.Address
}

// Sessions is the number of connected sessions.
func (s *Server) Sessions() int64 {
	return s.sessions.Load()
}
