package constcheck

import "sablec/mir"

// verifyLocals checks every debug binding across every function: if the bound
// declaration is marked `const`, the value it binds must be a compile-time
// known value.  Bindings of declarations without the `const` marking are
// ignored.
func (p *Pass) verifyLocals() {
	for _, fn := range p.bundle.Functions {
		for _, block := range fn.Blocks {
			for _, instr := range block.Instrs {
				if instr.OpCode == mir.OpBind {
					p.verifyLocal(instr)
				}
			}
		}
	}
}

// verifyLocal checks a single debug binding.
func (p *Pass) verifyLocal(bind *mir.Instruction) {
	sym := bind.Sym
	if sym == nil || !sym.Constant {
		return
	}

	if !p.eval.Evaluate(bind.Operands[0]).IsConstant() {
		p.sink.Diagnose(sym.DefSpan, RequireConstArgForParameter, sym.Name)
	}
}
