package qreg

import "math"

var invSqrt2 = 1 / math.Sqrt2

/*
Symbol names the state of a single register element. Only the four real
basis states are representable, plus the Unknown sentinel that marks an
element whose state could not be recognized.
*/
type Symbol string

const (
	Zero    Symbol = "0"
	One     Symbol = "1"
	Plus    Symbol = "+"
	Minus   Symbol = "-"
	Unknown Symbol = "?"
)

// Alphabet lists the basis symbols in catalog order.
var Alphabet = [4]Symbol{Zero, One, Plus, Minus}

// Valid reports whether s is one of the four basis symbols.
func (s Symbol) Valid() bool {
	switch s {
	case Zero, One, Plus, Minus:
		return true
	}
	return false
}

// IsBasis reports whether s is a computational basis state (0 or 1).
func (s Symbol) IsBasis() bool {
	return s == Zero || s == One
}

// IsDiagonal reports whether s lies on the Hadamard basis (+ or -).
func (s Symbol) IsDiagonal() bool {
	return s == Plus || s == Minus
}

/*
Qubit holds the amplitude pair of one register element. The amplitudes are
real; the supported alphabet never needs a phase beyond a sign.
*/
type Qubit struct {
	alpha float64 // |0⟩ amplitude
	beta  float64 // |1⟩ amplitude
}

func NewQubit(alpha, beta float64) *Qubit {
	return &Qubit{
		alpha: alpha,
		beta:  beta,
	}
}

// QubitOf returns the amplitude pair for a basis symbol, or nil for anything else.
func QubitOf(s Symbol) *Qubit {
	x, y, ok := Amplitudes(s)
	if !ok {
		return nil
	}
	return NewQubit(x, y)
}

/*
Amplitudes returns the fixed amplitude pair of a basis symbol. The boolean
is false for the sentinel or any other unknown symbol.
*/
func Amplitudes(s Symbol) (float64, float64, bool) {
	switch s {
	case Zero:
		return 1, 0, true
	case One:
		return 0, 1, true
	case Plus:
		return invSqrt2, invSqrt2, true
	case Minus:
		return invSqrt2, -invSqrt2, true
	}
	return 0, 0, false
}

func (q *Qubit) Alpha() float64 { return q.alpha }
func (q *Qubit) Beta() float64  { return q.beta }

func (q *Qubit) ApplyHadamard() {
	// H = 1/√2 * [1  1]
	//           [1 -1]
	newAlpha := (q.alpha + q.beta) * invSqrt2
	newBeta := (q.alpha - q.beta) * invSqrt2
	q.alpha = newAlpha
	q.beta = newBeta
}

// Symbol resolves the amplitude pair back to a basis symbol within tolerance.
func (q *Qubit) Symbol() Symbol {
	for _, s := range Alphabet {
		x, y, _ := Amplitudes(s)
		if approxEqual(Round(q.alpha), Round(x)) && approxEqual(Round(q.beta), Round(y)) {
			return s
		}
	}
	return Unknown
}
