package mir

import (
	"math/big"

	"sablec/common"
	"sablec/report"
)

// Instruction represents a single operation within MIR.  Instructions are a
// closed set of opcodes with a uniform operand list: passes dispatch on OpCode
// with exhaustive switches rather than on concrete node types.
type Instruction struct {
	// ID is the SSA value number bound to this instruction's result within its
	// enclosing function or initializer block.  It is -1 for instructions that
	// produce no result.
	ID int

	// OpCode is the integer code designating the instruction.  It must be one
	// of the enumerated op codes.
	OpCode int

	// Operands are the values this instruction operates upon.
	Operands []Value

	// IntVal is the payload of an `int` literal instruction.
	IntVal *big.Int

	// FloatVal is the payload of a `flt` literal instruction.
	FloatVal *big.Float

	// StrVal is the payload of a `str` literal instruction.
	StrVal string

	// Global is the global referenced by a `global` address-of instruction.
	Global *Global

	// Callee is the statically resolved callee of a `call` instruction or the
	// sub-initializer function named by a `once` instruction.
	Callee *Function

	// Sym is the local declaration bound by a `bind` instruction.
	Sym *common.Symbol

	// Labels are the jump targets of a `br` or `condbr` instruction.
	Labels []string

	// Span is the source span of the instruction within its MIR file.
	Span *report.TextSpan

	// ArgSpans are the spans of the individual argument operands of a `call`
	// instruction, when the argument list is recoverable.  It may be nil or
	// shorter than the operand list.
	ArgSpans []*report.TextSpan
}

// Enumeration of instruction op codes.
const (
	// Literals
	OpIntLit = iota
	OpFloatLit
	OpStrLit

	// Aggregate construction
	OpStructInit

	// Intrinsic builtins
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpStrCat

	// Function calling
	OpCall

	// Memory operations
	OpGlobalAddr
	OpLoad
	OpStore

	// Debug information
	OpBind

	// One-time initialization gate
	OpOnce

	// Terminators
	OpRet
	OpBr
	OpCondBr
)

// opCodeNames is the table of op code mnemonics, indexed by op code.  The
// mnemonics match the textual MIR form read by the syntax package.
var opCodeNames = []string{
	"int",
	"flt",
	"str",

	"struct",

	"add",
	"sub",
	"mul",
	"div",
	"neg",
	"strcat",

	"call",

	"global",
	"load",
	"store",

	"bind",

	"once",

	"ret",
	"br",
	"condbr",
}

// BuiltinTable is a table of all valid intrinsic builtin mnemonics and their
// mappings to op codes.  These are the only operations the constant evaluator
// will fold beyond literals and aggregate construction.
var BuiltinTable = map[string]int{
	"add":    OpAdd,
	"sub":    OpSub,
	"mul":    OpMul,
	"div":    OpDiv,
	"neg":    OpNeg,
	"strcat": OpStrCat,
}

// HasResult returns whether instructions of the given op code bind an SSA
// result value.
func HasResult(opCode int) bool {
	switch opCode {
	case OpStore, OpBind, OpOnce, OpRet, OpBr, OpCondBr:
		return false
	default:
		return true
	}
}

// IsTerminator returns whether the given op code ends a basic block.
func IsTerminator(opCode int) bool {
	switch opCode {
	case OpRet, OpBr, OpCondBr:
		return true
	default:
		return false
	}
}
