package qreg

// Matrix2 is a real single-element gate.
type Matrix2 [2][2]float64

// Matrix4 is a real two-element operator over (|00⟩, |01⟩, |10⟩, |11⟩).
type Matrix4 [4][4]float64

var (
	Identity2 = Matrix2{{1, 0}, {0, 1}}
	PauliX    = Matrix2{{0, 1}, {1, 0}}
	PauliZ    = Matrix2{{1, 0}, {0, -1}}
	Hadamard  = Matrix2{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}

	// CNOT01 uses element 0 as control and element 1 as target.
	CNOT01 = Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	}

	// CNOT10 uses element 1 as control and element 0 as target.
	CNOT10 = Matrix4{
		{1, 0, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
	}
)

// Kron returns the Kronecker product a ⊗ b, rounded.
func Kron(a, b Matrix2) Matrix4 {
	var out Matrix4
	for i := 0; i < 2; i++ {
		for k := 0; k < 2; k++ {
			for j := 0; j < 2; j++ {
				for l := 0; l < 2; l++ {
					out[i*2+k][j*2+l] = Round(a[i][j] * b[k][l])
				}
			}
		}
	}
	return out
}

// On lifts a single-element gate onto the given register element.
func (m Matrix2) On(element int) Matrix4 {
	if element == 0 {
		return Kron(m, Identity2)
	}
	return Kron(Identity2, m)
}

// Apply multiplies the operator into v, rounding each output component.
func (m Matrix4) Apply(v Vector) Vector {
	var out Vector
	for r := 0; r < 4; r++ {
		var s float64
		for c := 0; c < 4; c++ {
			s += m[r][c] * v[c]
		}
		out[r] = Round(s)
	}
	return out
}

// ControlledNot returns the CNOT operator for a control/target pair.
func ControlledNot(control, target int) (Matrix4, bool) {
	switch {
	case control == 0 && target == 1:
		return CNOT01, true
	case control == 1 && target == 0:
		return CNOT10, true
	}
	return Matrix4{}, false
}
