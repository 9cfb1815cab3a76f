package qreg

// fixedSource replays a fixed sequence of draws, cycling when exhausted.
type fixedSource struct {
	values []float64
	i      int
}

func (f *fixedSource) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

type panicSource struct{}

func (panicSource) Float64() float64 {
	panic("source exhausted")
}

func symbolicEngine() *Engine {
	return NewEngine(Policy{Mode: ModeSymbolic}, NewSampler(NewSource(42)))
}

func pair(s0, s1 Symbol) Register {
	return FromSymbols(Symbols{s0, s1})
}
