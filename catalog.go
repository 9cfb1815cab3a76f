package qreg

import "fmt"

/*
Product is one entry of the product catalog: a symbol pair and the rounded
outer product of its two amplitude pairs.
*/
type Product struct {
	Symbols Symbols
	Vector  Vector
}

var catalog = buildCatalog()

/*
buildCatalog enumerates all 16 ordered pairs over the alphabet and checks
that no two entries fall within Tolerance of each other. A violation would
make matching ambiguous, so it is treated as a programming error.
*/
func buildCatalog() []Product {
	entries := make([]Product, 0, len(Alphabet)*len(Alphabet))
	for _, s0 := range Alphabet {
		for _, s1 := range Alphabet {
			entries = append(entries, Product{
				Symbols: Symbols{s0, s1},
				Vector:  VectorOf(s0, s1),
			})
		}
	}

	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].Vector.ApproxEqual(entries[j].Vector) {
				panic(fmt.Sprintf(
					"qreg: catalog entries %v and %v are indistinguishable",
					entries[i].Symbols, entries[j].Symbols,
				))
			}
		}
	}

	return entries
}

// Entries returns a copy of the product catalog in alphabet order.
func Entries() []Product {
	out := make([]Product, len(catalog))
	copy(out, catalog)
	return out
}

/*
VectorOf returns the rounded amplitude vector of the product state (s0, s1).
Unknown symbols contribute a zero amplitude pair, so the sentinel maps to the
zero vector.
*/
func VectorOf(s0, s1 Symbol) Vector {
	a0, a1, _ := Amplitudes(s0)
	b0, b1, _ := Amplitudes(s1)
	return Vector{
		Round(a0 * b0),
		Round(a0 * b1),
		Round(a1 * b0),
		Round(a1 * b1),
	}
}
