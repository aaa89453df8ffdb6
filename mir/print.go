package mir

import (
	"fmt"
	"strconv"
	"strings"

	"sablec/common"
	"sablec/util"
)

// Repr returns the textual representation of the bundle.  The output is valid
// input for the syntax package's MIR reader.
func (b *Bundle) Repr() string {
	sb := strings.Builder{}

	sb.WriteString("bundle ")
	sb.WriteString(b.Name)
	sb.WriteString("\n\n")

	for _, g := range b.Globals {
		sb.WriteString(g.Repr())
		sb.WriteRune('\n')
	}

	if len(b.Globals) > 0 {
		sb.WriteRune('\n')
	}

	for _, fn := range b.Functions {
		sb.WriteString(fn.Repr())
		sb.WriteRune('\n')
	}

	return sb.String()
}

func (g *Global) Repr() string {
	sb := strings.Builder{}

	sb.WriteString("global @")
	sb.WriteString(g.Name)
	writeSymSuffix(&sb, g.Sym)

	if len(g.InitInstrs) > 0 {
		sb.WriteString(" {\n")

		for _, instr := range g.InitInstrs {
			sb.WriteString("  ")
			sb.WriteString(instr.FullRepr())
			sb.WriteRune('\n')
		}

		sb.WriteRune('}')
	}

	return sb.String()
}

func (f *Function) Repr() string {
	sb := strings.Builder{}

	sb.WriteString("func @")
	sb.WriteString(f.Name)
	sb.WriteRune('(')

	for i, param := range f.Params {
		sb.WriteString(param.Repr())
		writeSymSuffix(&sb, param.Sym)

		if i < len(f.Params)-1 {
			sb.WriteString(", ")
		}
	}

	sb.WriteRune(')')

	if f.GlobalInitFor != nil {
		sb.WriteString(" globalinit @")
		sb.WriteString(f.GlobalInitFor.Name)
	}

	sb.WriteString(" {\n")

	for _, block := range f.Blocks {
		sb.WriteString(block.Label)
		sb.WriteString(":\n")

		for _, instr := range block.Instrs {
			sb.WriteString("  ")
			sb.WriteString(instr.FullRepr())
			sb.WriteRune('\n')
		}
	}

	sb.WriteRune('}')
	return sb.String()
}

// FullRepr returns the full textual form of the instruction as it appears in
// a block, as opposed to Repr which renders the instruction's result value as
// an operand.
func (instr *Instruction) FullRepr() string {
	sb := strings.Builder{}

	if HasResult(instr.OpCode) {
		sb.WriteString(instr.Repr())
		sb.WriteString(" = ")
	}

	sb.WriteString(opCodeNames[instr.OpCode])

	switch instr.OpCode {
	case OpIntLit:
		sb.WriteRune(' ')
		sb.WriteString(instr.IntVal.String())
	case OpFloatLit:
		sb.WriteRune(' ')
		sb.WriteString(instr.FloatVal.Text('g', -1))
	case OpStrLit:
		sb.WriteRune(' ')
		sb.WriteString(strconv.Quote(instr.StrVal))
	case OpStructInit:
		sb.WriteString(" (")
		sb.WriteString(reprOperands(instr.Operands))
		sb.WriteRune(')')
	case OpCall:
		fmt.Fprintf(&sb, " @%s (%s)", instr.Callee.Name, reprOperands(instr.Operands))
	case OpGlobalAddr:
		sb.WriteString(" @")
		sb.WriteString(instr.Global.Name)
	case OpBind:
		sb.WriteRune(' ')
		sb.WriteString(instr.Operands[0].Repr())
		sb.WriteString(", %")
		sb.WriteString(instr.Sym.Name)
		writeSymSuffix(&sb, instr.Sym)
	case OpOnce:
		sb.WriteString(" @")
		sb.WriteString(instr.Callee.Name)
	case OpBr:
		sb.WriteRune(' ')
		sb.WriteString(instr.Labels[0])
	case OpCondBr:
		fmt.Fprintf(&sb, " %s, %s, %s", instr.Operands[0].Repr(), instr.Labels[0], instr.Labels[1])
	default:
		if len(instr.Operands) > 0 {
			sb.WriteRune(' ')
			sb.WriteString(reprOperands(instr.Operands))
		}
	}

	return sb.String()
}

func reprOperands(operands []Value) string {
	return strings.Join(util.Map(operands, func(v Value) string { return v.Repr() }), ", ")
}

// writeSymSuffix writes the `: Type` and `const` markers of a declaration
// symbol after its name.
func writeSymSuffix(sb *strings.Builder, sym *common.Symbol) {
	if sym == nil {
		return
	}

	if sym.TypeRepr != "" {
		sb.WriteString(": ")
		sb.WriteString(sym.TypeRepr)
	}

	if sym.Constant {
		sb.WriteString(" const")
	}
}
