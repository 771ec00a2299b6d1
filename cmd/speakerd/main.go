// Command speakerd serves the speaker diarization and identification API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/speakerkit/api"
	"github.com/kbukum/speakerkit/auth"
	"github.com/kbukum/speakerkit/auth/jwt"
	"github.com/kbukum/speakerkit/bootstrap"
	"github.com/kbukum/speakerkit/config"
	"github.com/kbukum/speakerkit/observability"
	"github.com/kbukum/speakerkit/server"
	"github.com/kbukum/speakerkit/server/middleware"
	"github.com/kbukum/speakerkit/service"
	"github.com/kbukum/speakerkit/storage"
	"github.com/kbukum/speakerkit/version"

	// Archive backends.
	_ "github.com/kbukum/speakerkit/storage/local"
	_ "github.com/kbukum/speakerkit/storage/s3"
)

const serviceName = "speakerd"

func main() {
	configFile := flag.String("config", "", "Configuration file path")
	flag.Parse()

	if err := run(context.Background(), *configFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	shutdown, err := observability.Setup(ctx, app.Name, app.Version, cfg.Observability)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	app.On(bootstrap.PhaseStopping, shutdown)

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		metrics, err = observability.NewMetrics(observability.Meter(serviceName))
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if _, err := wire(app, metrics); err != nil {
		return err
	}
	return app.Run(ctx)
}

// loadConfig reads the config file and environment. The version baked in at
// build time wins over a configured one.
func loadConfig(configFile string) (*service.Config, error) {
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	cfg := &service.Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Version == "" || version.Version != "dev" {
		cfg.Version = version.Version
	}
	return cfg, nil
}

// wire registers the storage, speaker service and HTTP server components in
// start order. API routes are mounted when the service starts, before the
// server binds its port.
func wire(app *bootstrap.App[*service.Config], metrics *observability.Metrics) (*server.Server, error) {
	cfg := app.Cfg
	log := app.Logger

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(metrics)
	if cfg.Auth.Enabled {
		tokens, err := jwt.NewService(&cfg.Auth.JWT, func() *jwt.Claims { return &jwt.Claims{} })
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
		srv.GinEngine().Use(middleware.Auth(auth.ValidatorFunc(tokens.ValidatorFunc()), api.PublicPaths...))
	}

	storageComp := storage.NewComponent(cfg.Storage, log)
	info := api.Info{Version: cfg.Version}
	svcComp := service.NewComponent(cfg, metrics, log, func(svc *service.Service) error {
		h := api.NewHandler(svc, storageComp.Stager(), info, log)
		api.RegisterRoutes(srv.GinEngine(), h)
		return nil
	})

	app.Summary.TrackInfrastructure("auth", "security", cfg.Auth.Describe(), 0)

	if err := app.RegisterComponent(storageComp); err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(svcComp); err != nil {
		return nil, err
	}
	srv.RegisterSystemEndpoints(app.Name, app.Components.HealthAll)
	if err := app.RegisterComponent(srv); err != nil {
		return nil, err
	}
	return srv, nil
}
