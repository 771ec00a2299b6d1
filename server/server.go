package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/speakerkit/component"
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/observability"
	"github.com/kbukum/speakerkit/server/endpoint"
	"github.com/kbukum/speakerkit/server/middleware"
)

const componentName = "http-server"

var (
	_ component.Component     = (*Server)(nil)
	_ component.Describable   = (*Server)(nil)
	_ component.RouteProvider = (*Server)(nil)
)

// Server is the Gin-backed API listener. It accepts cleartext HTTP/2 next
// to HTTP/1.1 and is registered with the app as a lifecycle component.
type Server struct {
	cfg    Config
	engine *gin.Engine
	http   *http.Server
	log    *logger.Logger

	mu       sync.RWMutex
	listener net.Listener
}

// New creates a Server. No middleware is installed until ApplyMiddleware.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	engine := gin.New()
	handler := h2c.NewHandler(engine, &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: 2 * time.Minute})
	return &Server{
		cfg:    cfg,
		engine: engine,
		http: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log.WithComponent("server"),
	}
}

// GinEngine returns the Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handler returns the root handler, for tests that serve without a socket.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ApplyMiddleware installs recovery, request id, CORS, the body size limit,
// request logging and, when metrics is non-nil, request metrics.
func (s *Server) ApplyMiddleware(metrics *observability.Metrics) {
	s.engine.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(s.cfg.CORS),
		middleware.BodySizeLimit(s.cfg.MaxBodySize),
		middleware.RequestLogger(s.log),
	)
	if metrics != nil {
		s.engine.Use(middleware.Metrics(metrics))
	}
}

// RegisterSystemEndpoints mounts the operational routes. /health belongs to
// the API, which reports producer and store state.
func (s *Server) RegisterSystemEndpoints(service string, checker endpoint.HealthChecker) {
	sys := endpoint.New(service, checker)
	s.engine.GET("/alive", sys.Liveness)
	s.engine.GET("/ready", sys.Readiness)
	s.engine.GET("/info", sys.Info)
	s.engine.GET("/metrics", sys.Runtime)
}

// Name returns the component name.
func (s *Server) Name() string { return componentName }

// Start binds the port and serves in the background. It returns once the
// listener is bound so a port conflict fails startup.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.http.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.http.Serve(ln); !stderrors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", map[string]interface{}{logger.FieldError: err.Error()})
		}
	}()
	s.log.Info("HTTP server started", map[string]interface{}{"addr": ln.Addr().String()})
	return nil
}

// Stop drains in-flight requests for at most ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
	s.log.Info("HTTP server shut down")
	return nil
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

// Health is healthy while the listener is bound.
func (s *Server) Health(context.Context) component.Health {
	s.mu.RLock()
	bound := s.listener != nil
	s.mu.RUnlock()
	if !bound {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe is the server's line in the startup summary.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: s.Addr() + " max_body=" + s.cfg.MaxBodySize,
		Port:    s.cfg.Port,
	}
}
