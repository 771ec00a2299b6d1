// Package bootstrap runs a speakerkit binary through a fixed lifecycle.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(storageComponent)
//	app.RegisterComponent(serviceComponent)
//	app.RegisterComponent(srv)
//	app.On(bootstrap.PhaseStopping, flushTelemetry)
//	err = app.Run(ctx)
//
// Components start in registration order and stop in reverse order within
// the graceful timeout once SIGINT, SIGTERM or ctx ends the run.
package bootstrap
