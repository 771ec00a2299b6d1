package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
)

// Phase names a point in the lifecycle where hooks run.
type Phase string

const (
	// PhaseStarted runs once every component has started. Route
	// registration belongs here.
	PhaseStarted Phase = "started"
	// PhaseReady runs after the ready check, just before the summary.
	PhaseReady Phase = "ready"
	// PhaseStopping runs before components are stopped.
	PhaseStopping Phase = "stopping"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

// On registers hooks for phase. Hooks of one phase run in registration
// order and the first failure ends the phase.
func (a *App[C]) On(phase Phase, hooks ...Hook) {
	a.hooks[phase] = append(a.hooks[phase], hooks...)
}

func (a *App[C]) fire(ctx context.Context, phase Phase) error {
	for i, h := range a.hooks[phase] {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", phase, i, err)
		}
	}
	return nil
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := a.fire(ctx, PhaseStarted); err != nil {
		return err
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := a.fire(ctx, PhaseReady); err != nil {
		return err
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Display(ctx, a.Components)
	a.Logger.Info("Application ready")
	return nil
}

// shutdown runs the stopping hooks and stops every component within the
// graceful timeout, whatever the hooks return.
func (a *App[C]) shutdown() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	hookErr := a.fire(ctx, PhaseStopping)
	stopErr := a.Components.StopAll(ctx)
	if err := stderrors.Join(hookErr, stopErr); err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{"error": err.Error()})
		return err
	}
	a.Logger.Info("Application shutdown complete")
	return nil
}
