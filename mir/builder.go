package mir

import (
	"math/big"

	"sablec/common"
	"sablec/report"
)

// Builder incrementally constructs a MIR bundle with sequential SSA value
// numbering.  It is used by the MIR reader and by tests that assemble bundles
// in memory.
type Builder struct {
	bundle *Bundle

	// The current instruction target: exactly one of block or globalTarget is
	// non-nil while instructions are being appended.
	block        *Block
	globalTarget *Global

	// fn is the function currently being built.
	fn *Function

	// nextID is the next SSA value number to assign within the current
	// function or global initializer.
	nextID int
}

// NewBuilder creates a builder for a new bundle with the given name.
func NewBuilder(bundleName string) *Builder {
	return &Builder{bundle: &Bundle{Name: bundleName}}
}

// Bundle returns the bundle under construction.
func (b *Builder) Bundle() *Bundle {
	return b.bundle
}

// AddGlobal appends a new global to the bundle and returns it.
func (b *Builder) AddGlobal(name string, sym *common.Symbol) *Global {
	g := &Global{Name: name, Sym: sym}
	b.bundle.Globals = append(b.bundle.Globals, g)
	return g
}

// BeginGlobalInit directs subsequent instructions into the static initializer
// list of the given global.  Value numbering restarts at zero.
func (b *Builder) BeginGlobalInit(g *Global) {
	b.globalTarget = g
	b.block = nil
	b.fn = nil
	b.nextID = 0
}

// BeginFunction appends a new function to the bundle and makes it the target
// for subsequent blocks.  Parameter values are created from the given
// parameter symbols.  Value numbering restarts at zero.
func (b *Builder) BeginFunction(name string, sym *common.Symbol, paramSyms ...*common.Symbol) *Function {
	fn := &Function{Name: name, Sym: sym}

	for i, psym := range paramSyms {
		fn.Params = append(fn.Params, &Param{Name: psym.Name, Index: i, Sym: psym})
	}

	b.bundle.Functions = append(b.bundle.Functions, fn)
	b.fn = fn
	b.block = nil
	b.globalTarget = nil
	b.nextID = 0
	return fn
}

// BeginBlock appends a new basic block with the given label to the current
// function and makes it the target for subsequent instructions.
func (b *Builder) BeginBlock(label string) *Block {
	block := &Block{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, block)
	b.block = block
	return block
}

// append assigns the instruction its SSA number (if it produces a result) and
// adds it to the current target.
func (b *Builder) append(instr *Instruction) *Instruction {
	if HasResult(instr.OpCode) {
		instr.ID = b.nextID
		b.nextID++
	} else {
		instr.ID = -1
	}

	if b.globalTarget != nil {
		b.globalTarget.InitInstrs = append(b.globalTarget.InitInstrs, instr)
	} else {
		b.block.Instrs = append(b.block.Instrs, instr)
	}

	return instr
}

// -----------------------------------------------------------------------------

// IntLit appends an integer literal instruction.
func (b *Builder) IntLit(x int64) *Instruction {
	return b.append(&Instruction{OpCode: OpIntLit, IntVal: big.NewInt(x)})
}

// FloatLit appends a floating-point literal instruction.
func (b *Builder) FloatLit(x float64) *Instruction {
	return b.append(&Instruction{OpCode: OpFloatLit, FloatVal: big.NewFloat(x)})
}

// StrLit appends a string literal instruction.
func (b *Builder) StrLit(s string) *Instruction {
	return b.append(&Instruction{OpCode: OpStrLit, StrVal: s})
}

// StructInit appends an aggregate construction instruction.
func (b *Builder) StructInit(members ...Value) *Instruction {
	return b.append(&Instruction{OpCode: OpStructInit, Operands: members})
}

// Builtin appends an intrinsic builtin instruction with the given op code.
func (b *Builder) Builtin(opCode int, operands ...Value) *Instruction {
	return b.append(&Instruction{OpCode: opCode, Operands: operands})
}

// Call appends a call instruction to the given callee.
func (b *Builder) Call(callee *Function, args ...Value) *Instruction {
	return b.append(&Instruction{OpCode: OpCall, Callee: callee, Operands: args})
}

// CallAt appends a call instruction carrying a call span and per-argument
// spans.
func (b *Builder) CallAt(callee *Function, span *report.TextSpan, argSpans []*report.TextSpan, args ...Value) *Instruction {
	return b.append(&Instruction{
		OpCode:   OpCall,
		Callee:   callee,
		Operands: args,
		Span:     span,
		ArgSpans: argSpans,
	})
}

// GlobalAddr appends an address-of-global instruction.
func (b *Builder) GlobalAddr(g *Global) *Instruction {
	return b.append(&Instruction{OpCode: OpGlobalAddr, Global: g})
}

// Load appends a load instruction from the given address value.
func (b *Builder) Load(addr Value) *Instruction {
	return b.append(&Instruction{OpCode: OpLoad, Operands: []Value{addr}})
}

// Store appends a store of val through the given address value.
func (b *Builder) Store(val, addr Value) *Instruction {
	return b.append(&Instruction{OpCode: OpStore, Operands: []Value{val, addr}})
}

// Bind appends a debug binding of a value to a local declaration symbol.
func (b *Builder) Bind(val Value, sym *common.Symbol) *Instruction {
	return b.append(&Instruction{OpCode: OpBind, Operands: []Value{val}, Sym: sym})
}

// Once appends a one-time initialization gate calling the given
// sub-initializer function.
func (b *Builder) Once(initFn *Function) *Instruction {
	return b.append(&Instruction{OpCode: OpOnce, Callee: initFn})
}

// Ret appends a return instruction with an optional operand.
func (b *Builder) Ret(vals ...Value) *Instruction {
	return b.append(&Instruction{OpCode: OpRet, Operands: vals})
}

// Br appends an unconditional branch to the given label.
func (b *Builder) Br(label string) *Instruction {
	return b.append(&Instruction{OpCode: OpBr, Labels: []string{label}})
}

// CondBr appends a conditional branch on cond to the given labels.
func (b *Builder) CondBr(cond Value, ifLabel, elseLabel string) *Instruction {
	return b.append(&Instruction{OpCode: OpCondBr, Operands: []Value{cond}, Labels: []string{ifLabel, elseLabel}})
}
