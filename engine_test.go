package qreg

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIndex(t *testing.T) {
	Convey("Given operation indices", t, func() {
		q, ok := IndexOf(0).Element()
		So(ok, ShouldBeTrue)
		So(q, ShouldEqual, 0)

		q, ok = IndexOf(1).Element()
		So(ok, ShouldBeTrue)
		So(q, ShouldEqual, 1)

		for _, bad := range []float64{-1, 2, 0.5} {
			_, ok = IndexOf(bad).Element()
			So(ok, ShouldBeFalse)
		}

		_, ok = Index{}.Element()
		So(ok, ShouldBeFalse)
	})
}

func TestEngineScenarios(t *testing.T) {
	Convey("Given a symbolic engine and the initial register", t, func() {
		engine := symbolicEngine()
		reg := NewRegister()
		So(reg.Symbols, ShouldEqual, Symbols{Zero, Zero})
		So(reg.Vector, ShouldResemble, Vector{1, 0, 0, 0})

		Convey("When H is applied to element 0", func() {
			out := engine.Apply(reg, Op{Action: ActionH, Qubit: IndexOf(0)})

			Convey("Then the register should be (+,0)", func() {
				So(out.Cause, ShouldEqual, CauseApply)
				So(out.Register.Symbols, ShouldEqual, Symbols{Plus, Zero})
				So(out.Register.Vector, ShouldResemble, Vector{0.707, 0, 0.707, 0})
			})

			Convey("And CNOT(0,1) should leave it unchanged", func() {
				next := engine.Apply(out.Register, Op{Action: ActionCNOT, Control: IndexOf(0), Target: IndexOf(1)})
				So(next.Cause, ShouldEqual, CauseNoop)
				So(next.Register, ShouldResemble, out.Register)
			})
		})

		Convey("When X is applied to element 1", func() {
			out := engine.Apply(reg, Op{Action: ActionX, Qubit: IndexOf(1)})

			Convey("Then the register should be (0,1)", func() {
				So(out.Register.Symbols, ShouldEqual, Symbols{Zero, One})
				So(out.Register.Vector, ShouldResemble, Vector{0, 1, 0, 0})
			})

			Convey("And CNOT(1,0) should produce (1,1)", func() {
				next := engine.Apply(out.Register, Op{Action: ActionCNOT, Control: IndexOf(1), Target: IndexOf(0)})
				So(next.Register.Symbols, ShouldEqual, Symbols{One, One})
				So(next.Register.Vector, ShouldResemble, Vector{0, 0, 0, 1})
			})
		})
	})
}

func TestEngineSelfInverse(t *testing.T) {
	Convey("Given every product state", t, func() {
		engine := symbolicEngine()

		for _, p := range Entries() {
			start := FromSymbols(p.Symbols)

			for q := 0; q < 2; q++ {
				idx := IndexOf(float64(q))

				twice := func(action Action) Register {
					once := engine.Apply(start, Op{Action: action, Qubit: idx})
					return engine.Apply(once.Register, Op{Action: action, Qubit: idx}).Register
				}

				So(twice(ActionH), ShouldResemble, start)
				So(twice(ActionX), ShouldResemble, start)
				So(twice(ActionZ), ShouldResemble, start)
			}

			cnot := Op{Action: ActionCNOT, Control: IndexOf(0), Target: IndexOf(1)}
			once := engine.Apply(start, cnot)
			So(engine.Apply(once.Register, cnot).Register, ShouldResemble, start)
		}
	})
}

func TestEngineGateRules(t *testing.T) {
	Convey("Given a symbolic engine", t, func() {
		engine := symbolicEngine()

		Convey("H should map each symbol to its Hadamard partner", func() {
			So(engine.Apply(pair(One, Zero), Op{Action: ActionH, Qubit: IndexOf(0)}).Register.Symbols,
				ShouldEqual, Symbols{Minus, Zero})
			So(engine.Apply(pair(Zero, Minus), Op{Action: ActionH, Qubit: IndexOf(1)}).Register.Symbols,
				ShouldEqual, Symbols{Zero, One})
		})

		Convey("X should be a no-op on + and -", func() {
			for _, s := range []Symbol{Plus, Minus} {
				out := engine.Apply(pair(s, Zero), Op{Action: ActionX, Qubit: IndexOf(0)})
				So(out.Cause, ShouldEqual, CauseNoop)
				So(out.Register.Symbols, ShouldEqual, Symbols{s, Zero})
			}
		})

		Convey("Z should flip + and - and ignore 0 and 1", func() {
			So(engine.Apply(pair(Zero, Plus), Op{Action: ActionZ, Qubit: IndexOf(1)}).Register.Symbols,
				ShouldEqual, Symbols{Zero, Minus})

			out := engine.Apply(pair(One, Plus), Op{Action: ActionZ, Qubit: IndexOf(0)})
			So(out.Cause, ShouldEqual, CauseNoop)
			So(out.Register.Symbols, ShouldEqual, Symbols{One, Plus})
		})

		Convey("CNOT with control 0 should leave the target alone", func() {
			out := engine.Apply(pair(Zero, One), Op{Action: ActionCNOT, Control: IndexOf(0), Target: IndexOf(1)})
			So(out.Register.Symbols, ShouldEqual, Symbols{Zero, One})
		})

		Convey("CNOT should be skipped when the target is not a basis symbol", func() {
			out := engine.Apply(pair(One, Plus), Op{Action: ActionCNOT, Control: IndexOf(0), Target: IndexOf(1)})
			So(out.Cause, ShouldEqual, CauseNoop)
		})

		Convey("CNOT with control equal to target should be a no-op", func() {
			out := engine.Apply(pair(One, Zero), Op{Action: ActionCNOT, Control: IndexOf(0), Target: IndexOf(0)})
			So(out.Cause, ShouldEqual, CauseNoop)
			So(out.Register.Symbols, ShouldEqual, Symbols{One, Zero})
		})

		Convey("Missing or invalid indices should be no-ops", func() {
			reg := pair(Zero, Zero)
			for _, op := range []Op{
				{Action: ActionH},
				{Action: ActionX, Qubit: IndexOf(2)},
				{Action: ActionSetOne, Qubit: IndexOf(0.5)},
				{Action: ActionCNOT, Control: IndexOf(1)},
			} {
				out := engine.Apply(reg, op)
				So(out.Cause, ShouldEqual, CauseNoop)
				So(out.Register, ShouldResemble, reg)
			}
		})

		Convey("Unknown actions should be no-ops", func() {
			reg := pair(Plus, One)
			out := engine.Apply(reg, Op{Action: "TELEPORT", Qubit: IndexOf(0)})
			So(out.Cause, ShouldEqual, CauseNoop)
			So(out.Register, ShouldResemble, reg)
		})
	})
}

func TestEngineNonCanonical(t *testing.T) {
	Convey("Given a non-canonical register", t, func() {
		engine := symbolicEngine()
		bell := Reconcile(Vector{0.707, 0, 0, 0.707})
		So(bell.Symbols, ShouldEqual, Sentinel)

		Convey("Gates should preserve the register and the sentinel", func() {
			for _, op := range []Op{
				{Action: ActionH, Qubit: IndexOf(0)},
				{Action: ActionX, Qubit: IndexOf(1)},
				{Action: ActionZ, Qubit: IndexOf(0)},
				{Action: ActionCNOT, Control: IndexOf(0), Target: IndexOf(1)},
			} {
				out := engine.Apply(bell, op)
				So(out.Cause, ShouldEqual, CauseNoop)
				So(out.Register, ShouldResemble, bell)
			}
		})

		Convey("SET_ZERO should reset the whole register", func() {
			for q := 0; q < 2; q++ {
				out := engine.Apply(bell, Op{Action: ActionSetZero, Qubit: IndexOf(float64(q))})
				So(out.Cause, ShouldEqual, CauseFallback)
				So(out.Register.Symbols, ShouldEqual, Symbols{Zero, Zero})
				So(out.Register.Vector, ShouldResemble, Vector{1, 0, 0, 0})
			}
		})

		Convey("SET_ONE should set the target and zero the other element", func() {
			out := engine.Apply(bell, Op{Action: ActionSetOne, Qubit: IndexOf(0)})
			So(out.Register.Symbols, ShouldEqual, Symbols{One, Zero})
			So(out.Register.Vector, ShouldResemble, Vector{0, 0, 1, 0})

			out = engine.Apply(bell, Op{Action: ActionSetOne, Qubit: IndexOf(1)})
			So(out.Register.Symbols, ShouldEqual, Symbols{Zero, One})
			So(out.Register.Vector, ShouldResemble, Vector{0, 1, 0, 0})
		})

		Convey("With the symmetric policy SET should be a no-op too", func() {
			symmetric := NewEngine(Policy{Mode: ModeSymbolic, SymmetricSet: true}, nil)
			out := symmetric.Apply(bell, Op{Action: ActionSetOne, Qubit: IndexOf(0)})
			So(out.Cause, ShouldEqual, CauseNoop)
			So(out.Register, ShouldResemble, bell)
		})
	})

	Convey("Given a product register", t, func() {
		engine := symbolicEngine()

		Convey("SET should keep the other element's symbol", func() {
			out := engine.Apply(pair(Minus, Plus), Op{Action: ActionSetOne, Qubit: IndexOf(1)})
			So(out.Cause, ShouldEqual, CauseApply)
			So(out.Register.Symbols, ShouldEqual, Symbols{Minus, One})

			out = engine.Apply(pair(Minus, Plus), Op{Action: ActionSetZero, Qubit: IndexOf(0)})
			So(out.Register.Symbols, ShouldEqual, Symbols{Zero, Plus})
		})
	})
}

func TestEngineMatrixMode(t *testing.T) {
	Convey("Given engines in both modes", t, func() {
		symbolic := symbolicEngine()
		matrix := NewEngine(Policy{Mode: ModeMatrix}, NewSampler(NewSource(7)))

		Convey("They should agree wherever the symbolic preconditions hold", func() {
			for _, p := range Entries() {
				start := FromSymbols(p.Symbols)

				for q := 0; q < 2; q++ {
					idx := IndexOf(float64(q))
					target := p.Symbols[q]

					ops := []Op{{Action: ActionH, Qubit: idx}}
					if target.IsBasis() {
						ops = append(ops, Op{Action: ActionX, Qubit: idx})
					}
					if target.IsDiagonal() {
						ops = append(ops, Op{Action: ActionZ, Qubit: idx})
					}

					for _, op := range ops {
						So(matrix.Apply(start, op).Register, ShouldResemble, symbolic.Apply(start, op).Register)
					}
				}

				if p.Symbols.BasisOnly() {
					for _, op := range []Op{
						{Action: ActionCNOT, Control: IndexOf(0), Target: IndexOf(1)},
						{Action: ActionCNOT, Control: IndexOf(1), Target: IndexOf(0)},
					} {
						So(matrix.Apply(start, op).Register, ShouldResemble, symbolic.Apply(start, op).Register)
					}
				}
			}
		})

		Convey("Matrix mode should entangle and disentangle a Bell pair", func() {
			cnot := Op{Action: ActionCNOT, Control: IndexOf(0), Target: IndexOf(1)}
			h0 := Op{Action: ActionH, Qubit: IndexOf(0)}

			reg := matrix.Apply(NewRegister(), h0).Register
			So(reg.Symbols, ShouldEqual, Symbols{Plus, Zero})

			bell := matrix.Apply(reg, cnot).Register
			So(bell.Symbols, ShouldEqual, Sentinel)
			So(bell.Vector, ShouldResemble, Vector{0.707, 0, 0, 0.707})

			back := matrix.Apply(bell, cnot).Register
			So(back.Symbols, ShouldEqual, Symbols{Plus, Zero})

			So(matrix.Apply(back, h0).Register, ShouldResemble, NewRegister())
		})

		Convey("Matrix mode should leave a register alone when the product overflows", func() {
			huge := Reconcile(Vector{1.7e305, 0, 1.7e305, 0})
			So(huge.Vector.Finite(), ShouldBeTrue)

			out := matrix.Apply(huge, Op{Action: ActionH, Qubit: IndexOf(0)})
			So(out.Cause, ShouldEqual, CauseNoop)
			So(out.Register, ShouldResemble, huge)
		})

		Convey("The mode should parse from configuration strings", func() {
			mode, err := ParseMode("matrix")
			So(err, ShouldBeNil)
			So(mode, ShouldEqual, ModeMatrix)

			mode, err = ParseMode("")
			So(err, ShouldBeNil)
			So(mode, ShouldEqual, ModeSymbolic)

			_, err = ParseMode("quantum")
			So(err, ShouldNotBeNil)
		})
	})
}
