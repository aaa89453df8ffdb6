package constcheck

import "sablec/mir"

// verifyCallArguments checks every call across every function whose callee
// has at least one `const` parameter: each argument bound to a `const`
// parameter must be a compile-time known value.
func (p *Pass) verifyCallArguments() {
	for _, fn := range p.bundle.Functions {
		for _, block := range fn.Blocks {
			for _, instr := range block.Instrs {
				if instr.OpCode == mir.OpCall {
					p.verifyCall(instr)
				}
			}
		}
	}
}

// verifyCall checks the arguments of a single call.  Parameters are paired
// with arguments positionally: index i of the argument list corresponds to
// declared parameter i.  Defaulted, variadic, and labeled arguments are not
// matched; an argument list shorter than the parameter list skips the
// unmatched indices rather than failing.
func (p *Pass) verifyCall(call *mir.Instruction) {
	callee := call.Callee
	if callee == nil || callee.Sym == nil {
		return
	}

	hasConst := false
	for _, param := range callee.Params {
		if param.Sym != nil && param.Sym.Constant {
			hasConst = true
			break
		}
	}

	if !hasConst {
		return
	}

	for i, param := range callee.Params {
		if i >= len(call.Operands) || param.Sym == nil || !param.Sym.Constant {
			continue
		}

		if p.eval.Evaluate(call.Operands[i]).IsConstant() {
			continue
		}

		// Prefer the precise span of the offending argument when the call's
		// argument list is recoverable; fall back to the call itself.
		span := call.Span
		if i < len(call.ArgSpans) && call.ArgSpans[i] != nil {
			span = call.ArgSpans[i]
		}

		p.sink.Diagnose(span, RequireConstArgForParameter, param.Sym.Name)
	}
}
