// wavefunction.go
package qreg

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

/*
Source is the randomness a Sampler draws from. Float64 must return a value in
[0, 1). *rand.Rand from math/rand/v2 satisfies it.
*/
type Source interface {
	Float64() float64
}

/*
lockedSource serializes access to a generator that is not safe for
concurrent use.
*/
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (ls *lockedSource) Float64() float64 {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.rng.Float64()
}

/*
NewSource returns a goroutine-safe PCG source. A zero seed draws one from the
clock, matching the unseeded behaviour expected in production.
*/
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

/*
Sampler collapses a register into a basis-only product state. Registers that
hold a recognized product state collapse symbolically; anything else is
sampled from the per-element marginal probabilities of its vector.
*/
type Sampler struct {
	source Source
}

func NewSampler(source Source) *Sampler {
	if source == nil {
		source = NewSource(0)
	}
	return &Sampler{source: source}
}

// Measure returns the collapsed register. The input is not modified.
func (s *Sampler) Measure(reg Register) Register {
	if reg.Matched() {
		return s.collapseSymbols(reg.Symbols)
	}
	return s.collapseMarginals(reg.Vector)
}

/*
collapseSymbols leaves 0 and 1 in place and sends each + or - to 0 or 1 with
equal probability, independently per element.
*/
func (s *Sampler) collapseSymbols(in Symbols) Register {
	out := in
	for i, sym := range in {
		if sym.IsDiagonal() {
			out[i] = s.draw(0.5)
		}
	}
	errnie.Info("Measure - symbolic %v -> %v", in, out)
	return FromSymbols(out)
}

func (s *Sampler) collapseMarginals(v Vector) Register {
	p0, p1 := v.MarginalZero(0), v.MarginalZero(1)
	out := Symbols{s.draw(p0), s.draw(p1)}
	errnie.Info("Measure - marginal p0=(%.3f, %.3f) %v -> %v", p0, p1, v, out)
	return FromSymbols(out)
}

// draw returns Zero with probability pZero, else One.
func (s *Sampler) draw(pZero float64) Symbol {
	if s.source.Float64() < pZero {
		return Zero
	}
	return One
}
