package generate

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"sablec/consteval"
)

// genConstValue converts a folded symbolic value into an LLVM constant.
func (g *Generator) genConstValue(sv consteval.SymbolicValue) constant.Constant {
	switch sv.Kind() {
	case consteval.KindInteger:
		return constant.NewInt(types.I64, sv.Integer().Int64())
	case consteval.KindFloat:
		f, _ := sv.Float().Float64()
		return constant.NewFloat(types.Double, f)
	case consteval.KindString:
		return g.genStringLit(sv.StringVal())
	case consteval.KindAggregate:
		members := sv.Members()
		fields := make([]constant.Constant, len(members))
		fieldTypes := make([]types.Type, len(members))
		for i, member := range members {
			fields[i] = g.genConstValue(member)
			fieldTypes[i] = fields[i].Type()
		}

		return constant.NewStruct(types.NewStruct(fieldTypes...), fields...)
	default:
		g.fatal("cannot lower non-constant symbolic value")
		return nil
	}
}

// genStringLit generates an interned, null-terminated string global and
// returns an i8* constant pointing at its first character.
func (g *Generator) genStringLit(s string) constant.Constant {
	arr := constant.NewCharArrayFromString(s + "\x00")

	strGlobal := g.mod.NewGlobalDef(fmt.Sprintf("str.%d", g.globalCounter), arr)
	strGlobal.Linkage = enum.LinkageInternal
	strGlobal.Immutable = true
	g.globalCounter++

	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(arr.Typ, strGlobal, zero, zero)
}
