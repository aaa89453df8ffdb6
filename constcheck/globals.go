package constcheck

import "sablec/mir"

// verifyGlobals checks every `const` global of the bundle for a compile-time
// known initializer.  Statically initialized globals are checked through
// their initializer instruction; globals without a static initializer are
// checked through the initialize-once idiom.
func (p *Pass) verifyGlobals() {
	for _, g := range p.bundle.Globals {
		if g.Sym == nil || !g.Sym.Constant {
			continue
		}

		if init := g.StaticInit(); init != nil {
			p.verifyStaticInitializedGlobal(g, init)
		} else {
			p.verifyInitializeOnceGlobal(g)
		}
	}
}

// verifyStaticInitializedGlobal checks a global whose initial value is
// produced by a static initializer instruction.  For an aggregate
// construction, each operand must itself resolve to a constant; the first
// operand that does not produces the global's one diagnostic and ends the
// check for that global.
func (p *Pass) verifyStaticInitializedGlobal(g *mir.Global, init *mir.Instruction) {
	if init.OpCode == mir.OpStructInit {
		for _, operand := range init.Operands {
			if !p.eval.Evaluate(operand).ContainsOnlyConstants() {
				p.diagnoseGlobal(g)
				return
			}
		}

		return
	}

	// A non-aggregate static initializer is evaluated directly.
	if !p.eval.Evaluate(init).IsConstant() {
		p.diagnoseGlobal(g)
	}
}

// verifyInitializeOnceGlobal checks a lazily initialized global by
// structurally matching the initialize-once idiom and evaluating the value
// stored by its sub-initializer.  If no structural match is found, or the
// stored value is not constant, the global's diagnostic is emitted.
func (p *Pass) verifyInitializeOnceGlobal(g *mir.Global) {
	if stored, ok := p.matchOnceInitializer(g); ok {
		if p.eval.Evaluate(stored).IsConstant() {
			return
		}
	}

	p.diagnoseGlobal(g)
}

// matchOnceInitializer locates the value stored into the global by its
// initialize-once sub-initializer: the bundle's addressor function for the
// global gates a `once` call to the sub-initializer, which takes the global's
// address and stores the initial value through it.  The match is
// conservative: if the global's address has more than one use, or its sole
// use is not the address operand of a store, or no addressor/once/store chain
// exists at all, the match fails and the caller treats the global as
// unverifiable.
func (p *Pass) matchOnceInitializer(g *mir.Global) (mir.Value, bool) {
	for _, fn := range p.bundle.Functions {
		if fn.GlobalInitFor != g {
			continue
		}

		initFn := findOnceCallee(fn)
		if initFn == nil {
			continue
		}

		// Find the store through the global's address inside the
		// sub-initializer.
		for _, block := range initFn.Blocks {
			for _, instr := range block.Instrs {
				if instr.OpCode != mir.OpGlobalAddr || instr.Global != g {
					continue
				}

				use, ok := initFn.SoleUse(instr)
				if !ok || use.OpCode != mir.OpStore || use.Operands[1] != mir.Value(instr) {
					return nil, false
				}

				return use.Operands[0], true
			}
		}
	}

	return nil, false
}

// findOnceCallee returns the sub-initializer function named by the one-time
// execution gate of the given addressor function, or nil if the addressor
// contains no such gate.
func findOnceCallee(addressor *mir.Function) *mir.Function {
	for _, block := range addressor.Blocks {
		for _, instr := range block.Instrs {
			if instr.OpCode == mir.OpOnce {
				return instr.Callee
			}
		}
	}

	return nil
}

// diagnoseGlobal emits the global's single "unverifiable initializer"
// diagnostic at its declaration.
func (p *Pass) diagnoseGlobal(g *mir.Global) {
	p.sink.Diagnose(g.Sym.DefSpan, RequireConstInitializerForConst, g.Sym.Name)
}
