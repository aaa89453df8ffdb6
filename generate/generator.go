// Package generate converts checked MIR bundles into LLVM modules.
package generate

import (
	"fmt"

	"sablec/consteval"
	"sablec/mir"
	"sablec/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Generator is responsible for converting a MIR bundle into LLVM IR.  It
// converts each bundle into a single LLVM module.  Generation is assumed to
// always succeed: it runs only on bundles that passed checking, and any
// errors here are considered fatal.
type Generator struct {
	// bundle is the MIR bundle being converted.
	bundle *mir.Bundle

	// mod is the LLVM module being generated.
	mod *ir.Module

	// eval is the evaluator used to fold constant globals into LLVM constant
	// initializers.
	eval *consteval.Evaluator

	// globals maps MIR globals to their LLVM global variables.
	globals map[*mir.Global]*ir.Global

	// funcs maps MIR functions to their LLVM function declarations.
	funcs map[*mir.Function]*ir.Func

	// guards maps once-called initializer functions to their i1 guard flags.
	guards map[*mir.Function]*ir.Global

	// strcatFunc is the lazily declared runtime string concatenation
	// function.
	strcatFunc *ir.Func

	// globalCounter is a counter used to name anonymous globals such as
	// those for interned strings.
	globalCounter int

	// enclosingFunc is the function enclosing the block being compiled.
	enclosingFunc *ir.Func

	// block stores the current block being generated.
	block *ir.Block

	// values maps MIR values to their generated LLVM values within the
	// current function.
	values map[mir.Value]value.Value
}

// NewGenerator creates a new generator for the given bundle.
func NewGenerator(bundle *mir.Bundle) *Generator {
	return &Generator{
		bundle:  bundle,
		mod:     ir.NewModule(),
		eval:    consteval.NewEvaluator(consteval.NewArena()),
		globals: make(map[*mir.Global]*ir.Global),
		funcs:   make(map[*mir.Function]*ir.Func),
		guards:  make(map[*mir.Function]*ir.Global),
	}
}

// Generate runs the main generation algorithm for the bundle.
func (g *Generator) Generate() *ir.Module {
	g.mod.SourceFilename = g.bundle.Name

	for _, global := range g.bundle.Globals {
		g.genGlobal(global)
	}

	for _, fn := range g.bundle.Functions {
		g.declareFunc(fn)
	}

	for _, fn := range g.bundle.Functions {
		g.genFuncBody(fn)
	}

	return g.mod
}

// -----------------------------------------------------------------------------

// genGlobal generates the LLVM global variable for a MIR global.  Globals
// whose static initializers fold to compile-time constants become constant
// global definitions; all others become zero-initialized variables that are
// filled in at run time.
func (g *Generator) genGlobal(global *mir.Global) {
	if init := global.StaticInit(); init != nil {
		if sv := g.eval.Evaluate(init); sv.IsConstant() {
			llInit := g.genConstValue(sv)
			llGlobal := g.mod.NewGlobalDef(global.Name, llInit)
			llGlobal.Immutable = global.Sym != nil && global.Sym.Constant
			g.globals[global] = llGlobal
			return
		}
	}

	contentType := g.globalContentType(global)
	llGlobal := g.mod.NewGlobalDef(global.Name, constant.NewZeroInitializer(contentType))
	g.globals[global] = llGlobal
}

// globalContentType infers the LLVM content type of a run-time initialized
// global from the value its initializer stores into it.
func (g *Generator) globalContentType(global *mir.Global) types.Type {
	if init := global.StaticInit(); init != nil {
		return g.classifyType(init)
	}

	// Look for the store into the global inside its initializer function.
	for _, fn := range g.bundle.Functions {
		if fn.GlobalInitFor != global {
			continue
		}

		for _, block := range fn.Blocks {
			for _, instr := range block.Instrs {
				if instr.OpCode != mir.OpStore {
					continue
				}

				if addr, ok := instr.Operands[1].(*mir.Instruction); ok && addr.OpCode == mir.OpGlobalAddr && addr.Global == global {
					return g.classifyType(instr.Operands[0])
				}
			}
		}
	}

	return types.I64
}

// classifyType infers the LLVM type a MIR value lowers to.  Values without a
// syntactically evident class default to i64.
func (g *Generator) classifyType(v mir.Value) types.Type {
	instr, ok := v.(*mir.Instruction)
	if !ok {
		return types.I64
	}

	switch instr.OpCode {
	case mir.OpFloatLit:
		return types.Double
	case mir.OpStrLit, mir.OpStrCat:
		return types.I8Ptr
	case mir.OpStructInit:
		fieldTypes := make([]types.Type, len(instr.Operands))
		for i, operand := range instr.Operands {
			fieldTypes[i] = g.classifyType(operand)
		}

		return types.NewStruct(fieldTypes...)
	case mir.OpAdd, mir.OpSub, mir.OpMul, mir.OpDiv, mir.OpNeg:
		return g.classifyType(instr.Operands[0])
	case mir.OpLoad:
		if addr, isInstr := instr.Operands[0].(*mir.Instruction); isInstr && addr.OpCode == mir.OpGlobalAddr {
			return g.globalContentType(addr.Global)
		}

		return types.I64
	default:
		return types.I64
	}
}

// -----------------------------------------------------------------------------

// declareFunc declares the LLVM function for a MIR function.  All parameters
// lower to i64; the return type is i64 unless no return in the function
// carries a value.
func (g *Generator) declareFunc(fn *mir.Function) {
	params := make([]*ir.Param, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = ir.NewParam(param.Name, types.I64)
	}

	llFn := g.mod.NewFunc(fn.Name, g.funcReturnType(fn), params...)
	llFn.Linkage = enum.LinkageExternal
	g.funcs[fn] = llFn
}

// funcReturnType determines the LLVM return type of a MIR function.
func (g *Generator) funcReturnType(fn *mir.Function) types.Type {
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			if instr.OpCode == mir.OpRet && len(instr.Operands) > 0 {
				return g.classifyType(instr.Operands[0])
			}
		}
	}

	return types.Void
}

// onceGuard returns the i1 guard flag used to ensure the given initializer
// function runs exactly once, creating it on first use.
func (g *Generator) onceGuard(initFn *mir.Function) *ir.Global {
	if guard, ok := g.guards[initFn]; ok {
		return guard
	}

	guard := g.mod.NewGlobalDef(initFn.Name+".guard", constant.NewZeroInitializer(types.I1))
	guard.Linkage = enum.LinkageInternal
	g.guards[initFn] = guard
	return guard
}

// getStrcatFunc returns the runtime string concatenation function, declaring
// it on first use.
func (g *Generator) getStrcatFunc() *ir.Func {
	if g.strcatFunc == nil {
		g.strcatFunc = g.mod.NewFunc(
			"__sable_strcat",
			types.I8Ptr,
			ir.NewParam("a", types.I8Ptr),
			ir.NewParam("b", types.I8Ptr),
		)
	}

	return g.strcatFunc
}

// appendBlock adds a new basic block to the current function.  It does *not*
// set the current block to this new block.
func (g *Generator) appendBlock() *ir.Block {
	return g.enclosingFunc.NewBlock(fmt.Sprintf("bb%d", len(g.enclosingFunc.Blocks)))
}

// fatal reports an unrecoverable condition during generation.
func (g *Generator) fatal(msg string, args ...interface{}) {
	report.ReportICE(msg, args...)
}
