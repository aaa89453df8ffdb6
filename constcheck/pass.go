// Package constcheck implements the compile-time-constant verification pass:
// it checks that every value required to be known at compile time -- `const`
// global initializers, `const` local bindings, and arguments to `const`
// parameters -- can be reduced to a constant using only the MIR itself, and
// reports a diagnostic for each site where it cannot.
package constcheck

import (
	"sablec/consteval"
	"sablec/mir"
)

// Pass is one invocation of the verification pass over a single bundle.  The
// bundle is treated as an immutable snapshot: the pass only reads the MIR and
// writes diagnostics to its sink.  The evaluation arena and memoization cache
// are owned by the invocation and discarded when it completes.
type Pass struct {
	bundle *mir.Bundle
	arena  *consteval.Arena
	eval   *consteval.Evaluator
	sink   Sink
}

// NewPass creates a verification pass over the given bundle, reporting to the
// given sink.
func NewPass(bundle *mir.Bundle, sink Sink) *Pass {
	arena := consteval.NewArena()

	return &Pass{
		bundle: bundle,
		arena:  arena,
		eval:   consteval.NewEvaluator(arena),
		sink:   sink,
	}
}

// SetStepLimit overrides the evaluator's step ceiling for this invocation.
func (p *Pass) SetStepLimit(limit int) {
	p.eval.SetStepLimit(limit)
}

// Run executes the three verification checks over the whole bundle.  The pass
// never aborts: every check scans to completion and each failing site
// produces exactly one diagnostic.  Traversal follows bundle declaration
// order and block layout order, so repeated runs over the same bundle produce
// identical diagnostic output.
func (p *Pass) Run() {
	// Verify all `const` globals are initialized with compile-time known
	// values.
	p.verifyGlobals()

	// Verify `const` declarations appearing as local bindings.
	p.verifyLocals()

	// For each call, ensure arguments to `const` parameters are all
	// compile-time known values.
	p.verifyCallArguments()

	p.arena.Reset()
}
