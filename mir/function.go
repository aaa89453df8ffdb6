package mir

import "sablec/common"

// Function represents a function defined in a MIR bundle.  It is composed of
// an ordered list of basic blocks, the first of which is the entry block.
type Function struct {
	// Name is the name of the function.
	Name string

	// Sym is the source declaration this function corresponds to.  Synthesized
	// functions (eg. global initializers) have no declaration: Sym is nil.
	Sym *common.Symbol

	// Params is the list of function parameters in declaration order.
	Params []*Param

	// Blocks is the ordered list of basic blocks making up the function body.
	Blocks []*Block

	// GlobalInitFor marks this function as the once-guard addressor for the
	// given global: its body gates the one-time execution of that global's
	// lazy initializer.  It is nil for ordinary functions.
	GlobalInitFor *Global
}

// Block represents a basic block: a labeled sequence of instructions ending
// with a terminator.
type Block struct {
	// Label is the block's jump label.
	Label string

	// Instrs is the ordered list of instructions in the block.
	Instrs []*Instruction
}

// BlockByLabel returns the block of the function with the given label, if one
// exists.
func (f *Function) BlockByLabel(label string) (*Block, bool) {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b, true
		}
	}

	return nil, false
}

// SoleUse returns the single instruction within the function that uses the
// given value as an operand.  If the value has no uses or more than one use,
// the second return value is false.
func (f *Function) SoleUse(v Value) (*Instruction, bool) {
	var use *Instruction

	for _, b := range f.Blocks {
		for _, instr := range b.Instrs {
			for _, operand := range instr.Operands {
				if operand == v {
					if use != nil {
						return nil, false
					}

					use = instr
				}
			}
		}
	}

	return use, use != nil
}
