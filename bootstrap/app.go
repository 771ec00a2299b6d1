package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/speakerkit/component"
	"github.com/kbukum/speakerkit/logger"
)

// DefaultGracefulTimeout bounds shutdown when no option overrides it.
const DefaultGracefulTimeout = 15 * time.Second

// App drives a binary's lifecycle. C is the binary's config type.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	hooks           map[Phase][]Hook
}

// Option configures an App.
type Option func(*settings)

type settings struct {
	log        *logger.Logger
	grace      time.Duration
	summaryOut io.Writer
}

// WithLogger replaces the logger built from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithGracefulTimeout bounds shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) { s.grace = d }
}

// WithSummaryOutput redirects the startup summary. io.Discard silences it.
func WithSummaryOutput(w io.Writer) Option {
	return func(s *settings) { s.summaryOut = w }
}

// NewApp applies defaults, validates cfg and builds the logger from its
// logging section. The logger also becomes the global logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	s := settings{grace: DefaultGracefulTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	if s.grace <= 0 {
		s.grace = DefaultGracefulTimeout
	}
	if s.log == nil {
		s.log = logger.New(&base.Logging, base.Name)
		logger.SetGlobalLogger(s.log)
	}

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(s.log, component.WithStopTimeout(s.grace)),
		Logger:          s.log,
		Summary:         NewSummary(base.Name, base.Version),
		gracefulTimeout: s.grace,
		hooks:           make(map[Phase][]Hook),
	}
	if s.summaryOut != nil {
		app.Summary.SetOutput(s.summaryOut)
	}
	return app, nil
}

// RegisterComponent adds c to the lifecycle. Register in dependency order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck fails when any component is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var issues []error
	for _, h := range a.Components.HealthAll(ctx) {
		switch {
		case h.Status == component.StatusHealthy:
		case h.Message != "":
			issues = append(issues, fmt.Errorf("%s=%s (%s)", h.Name, h.Status, h.Message))
		default:
			issues = append(issues, fmt.Errorf("%s=%s", h.Name, h.Status))
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("unhealthy components: %w", stderrors.Join(issues...))
	}
	return nil
}

// Run starts the application and blocks until SIGINT, SIGTERM or ctx ends,
// then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	return a.RunTask(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		a.Logger.Info("Shutdown requested")
		return nil
	})
}

// RunTask starts the application, runs task and shuts down when it
// returns. SIGINT and SIGTERM cancel the task's context. The task error
// takes precedence over shutdown errors.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.shutdown()
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	taskErr := task(taskCtx)
	cancel()

	if err := a.shutdown(); taskErr == nil {
		return err
	}
	return taskErr
}
