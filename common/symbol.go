package common

import "sablec/report"

// Symbol represents a Sable source declaration as it is visible at the MIR
// level.  MIR instructions and globals reference symbols to correlate IR
// values back to the declarations that introduced them.
type Symbol struct {
	Name string

	// TypeRepr is the string representation of the declared type.  MIR does
	// not need the full source type system: the type is only ever displayed.
	TypeRepr string

	// DefSpan is the span of the identifier that defines the symbol.
	DefSpan *report.TextSpan

	// DefKind indicates what kind of declaration this symbol corresponds to.
	// Must be one of the enumerated def kinds.
	DefKind int

	// Constant indicates that the declaration is marked `const`: its value is
	// required to be known at compile time.
	Constant bool
}

// Enumeration of definition kinds.
const (
	DefGlobal = iota // Global variables
	DefLocal         // Local bindings
	DefFunc          // Functions
	DefParam         // Function parameters
)
