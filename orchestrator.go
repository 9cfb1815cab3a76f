package qreg

import (
	"context"
	"encoding/json"
	"time"

	"github.com/theapemachine/errnie"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/theapemachine/qreg"

/*
Request is a decoded client request. Decoding is lenient: a field of the
wrong JSON type is treated as absent, so a malformed parameter turns the
operation into a no-op instead of an error.
*/
type Request struct {
	Action  Action
	State   []float64
	Qubit   Index
	Control Index
	Target  Index
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		Action     json.RawMessage `json:"action"`
		State      json.RawMessage `json:"state"`
		QubitIndex json.RawMessage `json:"qubitIndex"`
		Control    json.RawMessage `json:"control"`
		Target     json.RawMessage `json:"target"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Request{
		Qubit:   decodeIndex(raw.QubitIndex),
		Control: decodeIndex(raw.Control),
		Target:  decodeIndex(raw.Target),
	}

	var action string
	if json.Unmarshal(raw.Action, &action) == nil {
		r.Action = Action(action)
	}

	var state []float64
	if json.Unmarshal(raw.State, &state) == nil && len(state) == len(Vector{}) {
		r.State = state
	}

	return nil
}

func decodeIndex(raw json.RawMessage) Index {
	var x *float64
	if len(raw) == 0 || json.Unmarshal(raw, &x) != nil || x == nil {
		return Index{}
	}
	return IndexOf(*x)
}

func (r Request) Op() Op {
	return Op{Action: r.Action, Qubit: r.Qubit, Control: r.Control, Target: r.Target}
}

// Response is what the endpoint reports after every request.
type Response struct {
	NewState []float64 `json:"newState"`
	Symbol   []string  `json:"symbol"`
}

func NewResponse(reg Register) Response {
	return Response{
		NewState: reg.Vector.Rounded().Slice(),
		Symbol:   reg.Symbols.Strings(),
	}
}

// OrchestratorOption configures optional guards on an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRateLimiter echoes requests that exceed the limiter's bucket.
func WithRateLimiter(limiter *RateLimiter) OrchestratorOption {
	return func(o *Orchestrator) {
		o.regulators = append(o.regulators, limiter)
	}
}

// WithCircuitBreaker stops applying operations after repeated faults.
func WithCircuitBreaker(breaker *CircuitBreaker) OrchestratorOption {
	return func(o *Orchestrator) {
		o.breaker = breaker
		o.regulators = append(o.regulators, breaker)
	}
}

/*
Orchestrator reconciles each request against its session's register, hands
it to the engine, and persists the result. It never fails a request: an
internal fault is recovered and the pre-operation register is reported.
*/
type Orchestrator struct {
	engine     *Engine
	space      *Space
	metrics    *Metrics
	regulators []Regulator
	breaker    *CircuitBreaker
	tracer     trace.Tracer
}

func NewOrchestrator(engine *Engine, space *Space, metrics *Metrics, opts ...OrchestratorOption) *Orchestrator {
	if metrics == nil {
		metrics = NewMetrics()
	}
	o := &Orchestrator{
		engine:  engine,
		space:   space,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	for _, r := range o.regulators {
		r.Observe(metrics)
	}
	return o
}

func (o *Orchestrator) Space() *Space     { return o.space }
func (o *Orchestrator) Metrics() *Metrics { return o.metrics }

/*
Handle runs one request against a session:

 1. adopt the client vector, rounded, when one is supplied and finite
 2. match it and canonicalize, or mark it with the sentinel
 3. apply the operation unless a regulator holds it back
 4. persist the outcome in the session
*/
func (o *Orchestrator) Handle(ctx context.Context, session *Session, req Request) Response {
	_, span := o.tracer.Start(ctx, "qreg.Handle", trace.WithAttributes(
		attribute.String("qreg.session", session.ID),
		attribute.String("qreg.action", string(req.Action)),
		attribute.Bool("qreg.client_state", req.State != nil),
	))
	defer span.End()

	start := time.Now()
	var (
		from Register
		out  Outcome
	)

	reg := session.Transact(req.Action, func(stored Register) (Register, Outcome) {
		from, out = o.step(stored, req)
		return from, out
	})

	if out.Cause == CauseRecovered {
		span.SetStatus(codes.Error, "recovered internal fault")
	}
	if o.breaker != nil {
		switch out.Cause {
		case CauseRecovered:
			o.breaker.RecordFailure()
		case CauseLimited:
		default:
			o.breaker.RecordSuccess()
		}
	}

	o.metrics.RecordRequest(req.Action, out.Cause, from.Matched(), start)
	span.SetAttributes(
		attribute.String("qreg.cause", string(out.Cause)),
		attribute.String("qreg.symbols", reg.Symbols.String()),
	)

	return NewResponse(reg)
}

// State reports a session's register without applying anything.
func (o *Orchestrator) State(session *Session) Response {
	return NewResponse(session.Snapshot())
}

func (o *Orchestrator) step(stored Register, req Request) (from Register, out Outcome) {
	from = stored
	if v, ok := VectorFromSlice(req.State); ok && v.Rounded().Finite() {
		from = Register{Vector: v.Rounded(), Symbols: Sentinel}
	}

	defer func() {
		if r := recover(); r != nil {
			errnie.Warn("Handle - recovered %s: %v", req.Action, r)
			out = Outcome{Register: from, Cause: CauseRecovered}
		}
	}()

	from = Reconcile(from.Vector)

	if o.limited() {
		return from, Outcome{Register: from, Cause: CauseLimited}
	}

	return from, o.engine.Apply(from, req.Op())
}

// Renormalize lets every regulator recover toward normal operation.
func (o *Orchestrator) Renormalize() {
	for _, r := range o.regulators {
		r.Renormalize()
	}
}

func (o *Orchestrator) limited() bool {
	for _, r := range o.regulators {
		if r.Limit() {
			return true
		}
	}
	return false
}
