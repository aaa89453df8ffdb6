package mir

import (
	"fmt"

	"sablec/common"
)

// Value is an interface representing a single SSA value: either the result of
// an instruction or a function parameter.  Values are compared by identity.
type Value interface {
	// Repr returns the string representation of the value as an operand.
	Repr() string

	// value restricts implementations of Value to this package.
	value()
}

// Param represents a function parameter as an SSA value.
type Param struct {
	// Name is the parameter's name without its `%` sigil.
	Name string

	// Index is the position of the parameter in the function's parameter list.
	Index int

	// Sym is the parameter's source declaration.  It carries the parameter's
	// const marking.
	Sym *common.Symbol
}

func (p *Param) Repr() string {
	return "%" + p.Name
}

func (p *Param) value() {}

// -----------------------------------------------------------------------------

func (instr *Instruction) Repr() string {
	return fmt.Sprintf("$%d", instr.ID)
}

func (instr *Instruction) value() {}
