package llvm

import (
	"context"

	lir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/koopac/compiler/ir"
)

type (
	funContext struct {
		*ir.Function

		block *lir.Block
		vals  map[ir.Value]value.Value
	}
)

var preds = map[ir.BinaryOp]enum.IPred{
	ir.Eq:    enum.IPredEQ,
	ir.NotEq: enum.IPredNE,
	ir.Lt:    enum.IPredSLT,
	ir.Gt:    enum.IPredSGT,
	ir.Le:    enum.IPredSLE,
	ir.Ge:    enum.IPredSGE,
}

// Compile translates the program into an LLVM module.
// Every value is an i32; comparison results are zero extended.
func Compile(ctx context.Context, p *ir.Program) (m *lir.Module, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "llvm: compile program", "funcs", len(p.FuncLayout()))
	defer tr.Finish("err", &err)

	m = lir.NewModule()

	for _, fid := range p.FuncLayout() {
		f := p.Func(fid)

		err = compileFunc(m, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return m, nil
}

func compileFunc(m *lir.Module, fn *ir.Function) (err error) {
	if len(fn.Name) <= 1 {
		return errors.Wrap(ir.ErrMalformed, "invalid function name %q", fn.Name)
	}

	if fn.Ret != ir.I32 {
		return errors.Wrap(ir.ErrUnsupported, "return type %v", fn.Ret)
	}

	lf := m.NewFunc(fn.Name[1:], types.I32)

	f := &funContext{
		Function: fn,
		vals:     make(map[ir.Value]value.Value),
	}

	for _, n := range fn.Layout.Blocks() {
		name := fn.DFG.BasicBlock(n.BB).Name
		if len(name) > 1 {
			name = name[1:]
		}

		f.block = lf.NewBlock(name)

		for _, v := range n.Insts {
			_, err = f.value(v)
			if err != nil {
				return errors.Wrap(err, "value %d", v)
			}
		}
	}

	return nil
}

func (f *funContext) value(v ir.Value) (x value.Value, err error) {
	if x, ok := f.vals[v]; ok {
		return x, nil
	}

	switch k := f.DFG.Value(v).(type) {
	case ir.Integer:
		return constant.NewInt(types.I32, int64(k.Value)), nil
	case ir.Binary:
		l, err := f.value(k.LHS)
		if err != nil {
			return nil, errors.Wrap(err, "lhs")
		}

		r, err := f.value(k.RHS)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}

		x, err = f.binary(k.Op, l, r)
		if err != nil {
			return nil, err
		}
	case ir.Return:
		var rv value.Value = constant.NewInt(types.I32, 0)

		if k.Value != ir.NoValue {
			rv, err = f.value(k.Value)
			if err != nil {
				return nil, errors.Wrap(err, "return")
			}
		}

		f.block.NewRet(rv)

		return nil, nil
	default:
		return nil, errors.Wrap(ir.ErrUnsupported, "value kind %T", k)
	}

	f.vals[v] = x

	return x, nil
}

func (f *funContext) binary(op ir.BinaryOp, l, r value.Value) (value.Value, error) {
	if pred, ok := preds[op]; ok {
		c := f.block.NewICmp(pred, l, r)

		return f.block.NewZExt(c, types.I32), nil
	}

	switch op {
	case ir.Add:
		return f.block.NewAdd(l, r), nil
	case ir.Sub:
		return f.block.NewSub(l, r), nil
	case ir.Mul:
		return f.block.NewMul(l, r), nil
	case ir.Div:
		return f.block.NewSDiv(l, r), nil
	case ir.Mod:
		return f.block.NewSRem(l, r), nil
	case ir.And:
		return f.block.NewAnd(l, r), nil
	case ir.Or:
		return f.block.NewOr(l, r), nil
	default:
		return nil, errors.Wrap(ir.ErrUnsupported, "binary op %v", op)
	}
}
