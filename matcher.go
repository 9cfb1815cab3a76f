package qreg

import "github.com/theapemachine/errnie"

/*
Match resolves an amplitude vector to the product state it represents. The
input is rounded to three decimals and compared against every catalog entry
with an absolute per-component tolerance. It succeeds only when exactly one
entry qualifies, returning that entry's symbols and canonical vector.
*/
func Match(v Vector) (Symbols, Vector, bool) {
	rounded := v.Rounded()

	var (
		found Product
		hits  int
	)
	for _, p := range catalog {
		if p.Vector.ApproxEqual(rounded) {
			if hits == 0 {
				found = p
			}
			hits++
		}
	}

	switch hits {
	case 1:
		return found.Symbols, found.Vector, true
	case 0:
		return Sentinel, rounded, false
	default:
		errnie.Warn("Match - %d catalog entries within tolerance of %v", hits, rounded)
		return Sentinel, rounded, false
	}
}
