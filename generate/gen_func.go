package generate

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sablec/mir"
)

// genFuncBody generates the body of a MIR function into its declared LLVM
// function.
func (g *Generator) genFuncBody(fn *mir.Function) {
	if len(fn.Blocks) == 0 {
		return
	}

	llFn := g.funcs[fn]
	g.enclosingFunc = llFn
	g.values = make(map[mir.Value]value.Value)

	for i, param := range fn.Params {
		g.values[param] = llFn.Params[i]
	}

	// All blocks are created up front so branches can resolve their targets.
	llBlocks := make(map[string]*ir.Block)
	for _, block := range fn.Blocks {
		llBlocks[block.Label] = llFn.NewBlock(block.Label)
	}

	for _, block := range fn.Blocks {
		g.block = llBlocks[block.Label]

		for _, instr := range block.Instrs {
			g.genInstr(instr, llBlocks)
		}

		// Blocks that fall off the end return.
		if g.block.Term == nil {
			g.terminateWithRet(llFn)
		}
	}
}

// genInstr generates a single MIR instruction into the current block.
func (g *Generator) genInstr(instr *mir.Instruction, llBlocks map[string]*ir.Block) {
	switch instr.OpCode {
	case mir.OpIntLit:
		g.values[instr] = constant.NewInt(types.I64, instr.IntVal.Int64())
	case mir.OpFloatLit:
		f, _ := instr.FloatVal.Float64()
		g.values[instr] = constant.NewFloat(types.Double, f)
	case mir.OpStrLit:
		g.values[instr] = g.genStringLit(instr.StrVal)
	case mir.OpStructInit:
		g.values[instr] = g.genStructInit(instr)
	case mir.OpAdd, mir.OpSub, mir.OpMul, mir.OpDiv:
		g.values[instr] = g.genBinaryOp(instr)
	case mir.OpNeg:
		x := g.genOperand(instr.Operands[0])
		if types.IsFloat(x.Type()) {
			g.values[instr] = g.block.NewFNeg(x)
		} else {
			g.values[instr] = g.block.NewSub(constant.NewInt(types.I64, 0), x)
		}
	case mir.OpStrCat:
		a := g.genOperand(instr.Operands[0])
		b := g.genOperand(instr.Operands[1])
		g.values[instr] = g.block.NewCall(g.getStrcatFunc(), a, b)
	case mir.OpCall:
		callee, ok := g.funcs[instr.Callee]
		if !ok {
			g.fatal("call to unlowered function: `%s`", instr.Callee.Name)
		}

		args := make([]value.Value, len(instr.Operands))
		for i, operand := range instr.Operands {
			args[i] = g.genOperand(operand)
		}

		g.values[instr] = g.block.NewCall(callee, args...)
	case mir.OpGlobalAddr:
		llGlobal, ok := g.globals[instr.Global]
		if !ok {
			g.fatal("reference to unlowered global: `%s`", instr.Global.Name)
		}

		g.values[instr] = llGlobal
	case mir.OpLoad:
		addr := g.genOperand(instr.Operands[0])
		g.values[instr] = g.block.NewLoad(elemTypeOf(addr), addr)
	case mir.OpStore:
		val := g.genOperand(instr.Operands[0])
		addr := g.genOperand(instr.Operands[1])
		g.block.NewStore(val, addr)
	case mir.OpBind:
		g.genBind(instr)
	case mir.OpOnce:
		g.genOnce(instr)
	case mir.OpRet:
		if len(instr.Operands) > 0 {
			g.block.NewRet(g.genOperand(instr.Operands[0]))
		} else {
			g.block.NewRet(nil)
		}
	case mir.OpBr:
		g.block.NewBr(llBlocks[instr.Labels[0]])
	case mir.OpCondBr:
		cond := g.genOperand(instr.Operands[0])
		isTrue := g.block.NewICmp(enum.IPredNE, cond, constant.NewInt(types.I64, 0))
		g.block.NewCondBr(isTrue, llBlocks[instr.Labels[0]], llBlocks[instr.Labels[1]])
	default:
		g.fatal("cannot lower instruction: `%s`", instr.Repr())
	}
}

// genBinaryOp generates an arithmetic instruction, choosing the integer or
// floating point form based on the operand type.
func (g *Generator) genBinaryOp(instr *mir.Instruction) value.Value {
	x := g.genOperand(instr.Operands[0])
	y := g.genOperand(instr.Operands[1])

	if types.IsFloat(x.Type()) {
		switch instr.OpCode {
		case mir.OpAdd:
			return g.block.NewFAdd(x, y)
		case mir.OpSub:
			return g.block.NewFSub(x, y)
		case mir.OpMul:
			return g.block.NewFMul(x, y)
		default:
			return g.block.NewFDiv(x, y)
		}
	}

	switch instr.OpCode {
	case mir.OpAdd:
		return g.block.NewAdd(x, y)
	case mir.OpSub:
		return g.block.NewSub(x, y)
	case mir.OpMul:
		return g.block.NewMul(x, y)
	default:
		return g.block.NewSDiv(x, y)
	}
}

// genStructInit generates an aggregate value by inserting each member into an
// undef struct value.
func (g *Generator) genStructInit(instr *mir.Instruction) value.Value {
	members := make([]value.Value, len(instr.Operands))
	fieldTypes := make([]types.Type, len(instr.Operands))
	for i, operand := range instr.Operands {
		members[i] = g.genOperand(operand)
		fieldTypes[i] = members[i].Type()
	}

	var agg value.Value = constant.NewUndef(types.NewStruct(fieldTypes...))
	for i, member := range members {
		agg = g.block.NewInsertValue(agg, member, uint64(i))
	}

	return agg
}

// genBind generates a named local variable slot for a bound value.  The slot
// exists so bound locals survive into the output with their source names.
func (g *Generator) genBind(instr *mir.Instruction) {
	val := g.genOperand(instr.Operands[0])

	slot := g.block.NewAlloca(val.Type())
	if instr.Sym != nil {
		slot.SetName(instr.Sym.Name)
	}

	g.block.NewStore(val, slot)
}

// genOnce generates the guarded, run-exactly-once call to a global
// initializer function.  The current block is split around the conditional
// initialization.
func (g *Generator) genOnce(instr *mir.Instruction) {
	guard := g.onceGuard(instr.Callee)

	initFn, ok := g.funcs[instr.Callee]
	if !ok {
		g.fatal("once call to unlowered function: `%s`", instr.Callee.Name)
	}

	initBlock := g.appendBlock()
	contBlock := g.appendBlock()

	done := g.block.NewLoad(types.I1, guard)
	g.block.NewCondBr(done, contBlock, initBlock)

	initBlock.NewStore(constant.NewInt(types.I1, 1), guard)
	initBlock.NewCall(initFn)
	initBlock.NewBr(contBlock)

	g.block = contBlock
}

// genOperand returns the generated LLVM value for a MIR operand.
func (g *Generator) genOperand(v mir.Value) value.Value {
	llVal, ok := g.values[v]
	if !ok {
		g.fatal("operand generated out of order: `%s`", v.Repr())
	}

	return llVal
}

// terminateWithRet terminates the current block with a return matching the
// enclosing function's return type.
func (g *Generator) terminateWithRet(llFn *ir.Func) {
	retType := llFn.Sig.RetType
	switch {
	case retType.Equal(types.Void):
		g.block.NewRet(nil)
	case types.IsFloat(retType):
		g.block.NewRet(constant.NewFloat(types.Double, 0))
	default:
		g.block.NewRet(constant.NewZeroInitializer(retType))
	}
}

// elemTypeOf returns the pointed-to type of an address value.
func elemTypeOf(addr value.Value) types.Type {
	if llGlobal, ok := addr.(*ir.Global); ok {
		return llGlobal.ContentType
	}

	if pt, ok := addr.Type().(*types.PointerType); ok {
		return pt.ElemType
	}

	return types.I64
}
