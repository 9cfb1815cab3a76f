package qreg

import (
	"fmt"
	"math"
)

// Action names an operation a client can request.
type Action string

const (
	ActionSetZero Action = "SET_ZERO"
	ActionSetOne  Action = "SET_ONE"
	ActionH       Action = "H"
	ActionX       Action = "X"
	ActionZ       Action = "Z"
	ActionCNOT    Action = "CNOT"
	ActionMeasure Action = "MEASURE"
)

// Mode selects how the gates H, X, Z and CNOT are executed.
type Mode string

const (
	// ModeSymbolic rewrites the symbol pair and only acts on product states.
	ModeSymbolic Mode = "symbolic"
	// ModeMatrix multiplies the gate's 4x4 operator into the vector.
	ModeMatrix Mode = "matrix"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSymbolic, "":
		return ModeSymbolic, nil
	case ModeMatrix:
		return ModeMatrix, nil
	}
	return "", fmt.Errorf("unknown engine mode %q", s)
}

// Cause records why a register did or did not change.
type Cause string

const (
	CauseApply     Cause = "apply"
	CauseNoop      Cause = "noop"
	CauseFallback  Cause = "fallback"
	CauseLimited   Cause = "limited"
	CauseRecovered Cause = "recovered"
)

/*
Index is an optional numeric operation parameter. It stays unset when the
client omitted the field or sent something that is not a number.
*/
type Index struct {
	value float64
	set   bool
}

func IndexOf(x float64) Index {
	return Index{value: x, set: true}
}

// Element returns the register element the index names, if it names one.
func (i Index) Element() (int, bool) {
	if !i.set || math.Trunc(i.value) != i.value {
		return 0, false
	}
	switch i.value {
	case 0:
		return 0, true
	case 1:
		return 1, true
	}
	return 0, false
}

// Op is one requested operation with its parameters.
type Op struct {
	Action  Action
	Qubit   Index
	Control Index
	Target  Index
}

// Outcome is the register an operation produced and why.
type Outcome struct {
	Register Register
	Cause    Cause
}

// Policy holds the switches that alter the literal transition rules.
type Policy struct {
	Mode Mode
	// SymmetricSet turns SET_ZERO and SET_ONE on a non-canonical register
	// into no-ops, like every gate.
	SymmetricSet bool
}

/*
Engine applies operations to a register. It holds no register state of its
own; every call takes the current register and returns the next one, so an
Engine can be shared freely between sessions.
*/
type Engine struct {
	policy  Policy
	sampler *Sampler
}

func NewEngine(policy Policy, sampler *Sampler) *Engine {
	if policy.Mode == "" {
		policy.Mode = ModeSymbolic
	}
	if sampler == nil {
		sampler = NewSampler(nil)
	}
	return &Engine{policy: policy, sampler: sampler}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

/*
Apply executes op against reg, which the caller has already reconciled.
Operations whose preconditions fail return reg untouched with CauseNoop;
the engine never reports an error for an inapplicable operation.
*/
func (e *Engine) Apply(reg Register, op Op) Outcome {
	switch op.Action {
	case ActionSetZero:
		return e.set(reg, op.Qubit, Zero)
	case ActionSetOne:
		return e.set(reg, op.Qubit, One)
	case ActionH:
		return e.single(reg, op.Qubit, Hadamard, hadamardSymbol)
	case ActionX:
		return e.single(reg, op.Qubit, PauliX, flipSymbol)
	case ActionZ:
		return e.single(reg, op.Qubit, PauliZ, phaseSymbol)
	case ActionCNOT:
		return e.cnot(reg, op.Control, op.Target)
	case ActionMeasure:
		return Outcome{Register: e.sampler.Measure(reg), Cause: CauseApply}
	}
	return noop(reg)
}

/*
set forces one element to a basis symbol. On a product state the other
element is kept. On a non-canonical register the whole register is rebuilt
with the other element at 0, unless the policy asks for symmetric no-ops.
*/
func (e *Engine) set(reg Register, idx Index, sym Symbol) Outcome {
	q, ok := idx.Element()
	if !ok {
		return noop(reg)
	}

	if reg.Matched() {
		return Outcome{Register: FromSymbols(reg.Symbols.With(q, sym)), Cause: CauseApply}
	}

	if e.policy.SymmetricSet {
		return noop(reg)
	}

	return Outcome{
		Register: FromSymbols(Symbols{Zero, Zero}.With(q, sym)),
		Cause:    CauseFallback,
	}
}

/*
single applies a one-element gate. In symbolic mode rule maps the targeted
symbol and reports false when the gate is not allowed on it.
*/
func (e *Engine) single(reg Register, idx Index, gate Matrix2, rule func(Symbol) (Symbol, bool)) Outcome {
	q, ok := idx.Element()
	if !ok {
		return noop(reg)
	}

	if e.policy.Mode == ModeMatrix {
		return e.product(reg, gate.On(q))
	}

	if !reg.Matched() {
		return noop(reg)
	}

	next, ok := rule(reg.Symbols[q])
	if !ok {
		return noop(reg)
	}

	return Outcome{Register: FromSymbols(reg.Symbols.With(q, next)), Cause: CauseApply}
}

// cnot flips the target when the control reads 1. Both elements must be 0 or 1.
func (e *Engine) cnot(reg Register, control, target Index) Outcome {
	c, okc := control.Element()
	t, okt := target.Element()
	if !okc || !okt || c == t {
		return noop(reg)
	}

	if e.policy.Mode == ModeMatrix {
		m, _ := ControlledNot(c, t)
		return e.product(reg, m)
	}

	if !reg.Matched() || !reg.Symbols.BasisOnly() {
		return noop(reg)
	}

	next := reg.Symbols
	if next[c] == One {
		next[t], _ = flipSymbol(next[t])
	}

	return Outcome{Register: FromSymbols(next), Cause: CauseApply}
}

// product applies m to the vector and re-matches. Overflowing results are dropped.
func (e *Engine) product(reg Register, m Matrix4) Outcome {
	next := m.Apply(reg.Vector)
	if !next.Finite() {
		return noop(reg)
	}
	return Outcome{Register: Reconcile(next), Cause: CauseApply}
}

func noop(reg Register) Outcome {
	return Outcome{Register: reg, Cause: CauseNoop}
}

// hadamardSymbol pairs 0 with + and 1 with -.
func hadamardSymbol(s Symbol) (Symbol, bool) {
	switch s {
	case Zero:
		return Plus, true
	case Plus:
		return Zero, true
	case One:
		return Minus, true
	case Minus:
		return One, true
	}
	return s, false
}

func flipSymbol(s Symbol) (Symbol, bool) {
	switch s {
	case Zero:
		return One, true
	case One:
		return Zero, true
	}
	return s, false
}

func phaseSymbol(s Symbol) (Symbol, bool) {
	switch s {
	case Plus:
		return Minus, true
	case Minus:
		return Plus, true
	}
	return s, false
}
