package qreg

import "math"

// Tolerance is the absolute per-component distance under which two rounded
// amplitude vectors are considered equal.
const Tolerance = 1e-3

/*
Vector holds the four real amplitudes of the register, indexed
(|00⟩, |01⟩, |10⟩, |11⟩). Element 0 is the most significant bit.
*/
type Vector [4]float64

/*
Round rounds half up to three decimals. Adding the half before flooring
also folds negative zero into zero, which keeps "-0" off the wire.
*/
func Round(x float64) float64 {
	return math.Floor(x*1000+0.5) / 1000
}

// Rounded returns a copy of v with every component rounded.
func (v Vector) Rounded() Vector {
	var out Vector
	for i, x := range v {
		out[i] = Round(x)
	}
	return out
}

// ApproxEqual compares two vectors component-wise within Tolerance.
func (v Vector) ApproxEqual(other Vector) bool {
	for i := range v {
		if !approxEqual(v[i], other[i]) {
			return false
		}
	}
	return true
}

// Finite reports whether every component is a finite number.
func (v Vector) Finite() bool {
	for _, x := range v {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return false
		}
	}
	return true
}

// MarginalZero returns the probability that the given element reads 0.
func (v Vector) MarginalZero(element int) float64 {
	if element == 0 {
		return clamp(v[0]*v[0] + v[1]*v[1])
	}
	return clamp(v[0]*v[0] + v[2]*v[2])
}

// Slice returns the components as a slice, for encoding.
func (v Vector) Slice() []float64 {
	return []float64{v[0], v[1], v[2], v[3]}
}

// VectorFromSlice accepts exactly four components.
func VectorFromSlice(xs []float64) (Vector, bool) {
	var v Vector
	if len(xs) != len(v) {
		return v, false
	}
	copy(v[:], xs)
	return v, true
}

func approxEqual(a, b float64) bool {
	// Slack for the binary representation of values already rounded to 1e-3.
	return math.Abs(a-b) <= Tolerance+1e-9
}

func clamp(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
