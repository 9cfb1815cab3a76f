package qreg

/*
Regulator is implemented by the guards that sit in front of the engine.
Each one watches the service metrics and can hold an operation back, in
which case the orchestrator echoes the reconciled register instead of
applying the operation.

Implementations:
  - RateLimiter: admits requests from a token bucket
  - CircuitBreaker: stops applying operations after repeated internal faults
*/
type Regulator interface {
	// Observe hands the regulator the current service metrics.
	Observe(metrics *Metrics)

	// Limit reports whether the next operation should be held back.
	Limit() bool

	// Renormalize lets the regulator move back toward normal operation.
	Renormalize()
}
