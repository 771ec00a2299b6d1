package provider

import (
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/resilience"
)

// ResilienceConfig bundles optional guards for a producer. Nil fields are
// skipped.
type ResilienceConfig struct {
	// CircuitBreaker fails fast after repeated producer failures.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	// MaxConcurrent caps in-flight calls to the producer. Zero means unlimited.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// IsEmpty returns true if no guard is configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.MaxConcurrent <= 0
}

// ResilienceState holds the guards built from a ResilienceConfig.
type ResilienceState struct {
	cb *resilience.CircuitBreaker
	bh *resilience.Bulkhead
}

// BuildResilience creates the guards for cfg. Returns nil for an empty config.
func BuildResilience(name string, cfg ResilienceConfig) *ResilienceState {
	if cfg.IsEmpty() {
		return nil
	}
	s := &ResilienceState{}
	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		if cbCfg.Name == "" {
			cbCfg.Name = name
		}
		if cbCfg.OnStateChange == nil {
			cbCfg.OnStateChange = logTransition
		}
		s.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	if cfg.MaxConcurrent > 0 {
		s.bh = resilience.NewBulkhead(name, cfg.MaxConcurrent)
	}
	return s
}

func logTransition(name string, from, to resilience.State) {
	log := logger.WithComponent("resilience")
	fields := map[string]interface{}{logger.FieldProvider: name, "from": from.String(), "to": to.String()}
	if to == resilience.StateOpen {
		log.Warn("circuit opened", fields)
		return
	}
	log.Info("circuit state changed", fields)
}
