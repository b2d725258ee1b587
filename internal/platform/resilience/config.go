package resilience

import "time"

// CircuitBreakerConfig tunes the breaker guarding one upstream, such as the
// props API or the identity service.
type CircuitBreakerConfig struct {
	Enabled bool
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold int
	OpenTimeout      time.Duration
	// HalfOpenMaxReq caps trial calls while half-open; that many successes close the circuit.
	HalfOpenMaxReq int
}

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: defaultFailureThreshold,
		OpenTimeout:      defaultOpenTimeout,
		HalfOpenMaxReq:   defaultHalfOpenMaxReq,
	}
}

// withDefaults fills unset or invalid tuning values. Enabled is left as given.
func (cfg CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return cfg
}
