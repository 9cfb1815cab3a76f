package qreg

/*
Symbols is the ordered symbol pair of the register, one per element. A pair
holding Unknown in either slot is the non-canonical sentinel.
*/
type Symbols [2]Symbol

// Sentinel marks a register whose vector matches no product state.
var Sentinel = Symbols{Unknown, Unknown}

// Canonical reports whether both elements carry a basis symbol.
func (s Symbols) Canonical() bool {
	return s[0].Valid() && s[1].Valid()
}

// BasisOnly reports whether both elements are 0 or 1.
func (s Symbols) BasisOnly() bool {
	return s[0].IsBasis() && s[1].IsBasis()
}

// With returns a copy of s with one element replaced.
func (s Symbols) With(element int, sym Symbol) Symbols {
	s[element] = sym
	return s
}

func (s Symbols) Strings() []string {
	return []string{string(s[0]), string(s[1])}
}

func (s Symbols) String() string {
	return "(" + string(s[0]) + "," + string(s[1]) + ")"
}

/*
Register is the explicit state object every engine call works on: the
current amplitude vector and the symbol pair derived from it. It is a plain
value; ownership and locking belong to whoever holds it.
*/
type Register struct {
	Vector  Vector
	Symbols Symbols
}

// NewRegister returns the initial register (0,0) with vector (1,0,0,0).
func NewRegister() Register {
	return FromSymbols(Symbols{Zero, Zero})
}

// FromSymbols builds a canonical register from a product state.
func FromSymbols(s Symbols) Register {
	return Register{Vector: VectorOf(s[0], s[1]), Symbols: s}
}

/*
Reconcile re-derives the symbols for a vector. A matched vector is replaced
by its canonical catalog vector; anything else keeps its rounded components
and takes the sentinel.
*/
func Reconcile(v Vector) Register {
	if symbols, canonical, ok := Match(v); ok {
		return Register{Vector: canonical, Symbols: symbols}
	}
	return Register{Vector: v.Rounded(), Symbols: Sentinel}
}

// Matched reports whether the register holds a recognized product state.
func (r Register) Matched() bool {
	return r.Symbols.Canonical()
}
