package mir

import "sablec/common"

// Global represents a global variable defined in a MIR bundle.  A global may
// carry a static initializer: a short list of instructions whose final
// instruction produces the global's initial value entirely at compile time.
// Globals without a static initializer are expected to be initialized lazily
// through the initialize-once idiom: an addressor function (marked with
// GlobalInitFor) gates a one-time call to a sub-initializer function which
// stores the initial value through the global's address.
type Global struct {
	// Name is the name of the global variable.
	Name string

	// Sym is the source declaration this global corresponds to.  Synthesized
	// globals (eg. interned string storage) have no declaration: Sym is nil.
	Sym *common.Symbol

	// InitInstrs is the static initializer instruction list.  It is empty for
	// lazily initialized globals.  The final instruction of the list produces
	// the global's initial value; the preceding instructions only exist to
	// define its operands.
	InitInstrs []*Instruction
}

// StaticInit returns the instruction producing the global's static initial
// value, or nil if the global has no static initializer.
func (g *Global) StaticInit() *Instruction {
	if len(g.InitInstrs) == 0 {
		return nil
	}

	return g.InitInstrs[len(g.InitInstrs)-1]
}
