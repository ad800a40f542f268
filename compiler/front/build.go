package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/koopac/compiler/ast"
	"github.com/slowlang/koopac/compiler/ir"
)

type (
	funContext struct {
		*ir.Function
	}
)

const (
	FuncSigil  = "@"
	EntryBlock = "%entry"
)

// Build lowers the compilation unit into a new program.
//
// Lowering recurses over the expression tree, so the call stack grows with
// the nesting depth of the input. No depth limit is enforced.
func Build(ctx context.Context, u *ast.CompUnit) (p *ir.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: build")
	defer tr.Finish("err", &err)

	p = ir.NewProgram()

	err = buildUnit(ctx, p, u)
	if err != nil {
		return nil, err
	}

	if tr.If("dump_ir") {
		tr.Printw("ir", "text", ir.Format(nil, p))
	}

	return p, nil
}

func buildUnit(ctx context.Context, p *ir.Program, u *ast.CompUnit) error {
	if u == nil || u.FuncDef == nil {
		return errors.Wrap(ir.ErrMalformed, "no function definition")
	}

	_, err := buildFunc(ctx, p, u.FuncDef)
	if err != nil {
		return errors.Wrap(err, "func %v", u.FuncDef.Ident)
	}

	return nil
}

func buildFunc(ctx context.Context, p *ir.Program, x *ast.FuncDef) (fid ir.Func, err error) {
	if x.Ident == "" {
		return 0, errors.Wrap(ir.ErrMalformed, "empty function name")
	}

	var ret ir.Type

	switch x.FuncType {
	case ast.Int:
		ret = ir.I32
	default:
		return 0, errors.Wrap(ir.ErrUnsupported, "return type %v", x.FuncType)
	}

	fid = p.NewFunc(FuncSigil+x.Ident, ret)

	fc := &funContext{Function: p.Func(fid)}

	entry, insts, err := fc.block(x.Block)
	if err != nil {
		return 0, errors.Wrap(err, "body")
	}

	n := fc.Layout.PushBlock(entry)
	n.Insts = append(n.Insts, insts...)

	tlog.SpanFromContext(ctx).V("front").Printw("func built", "name", fc.Name, "values", fc.DFG.Len(), "insts", len(insts))

	return fid, nil
}

func (fc *funContext) block(x *ast.Block) (bb ir.BasicBlock, insts []ir.Value, err error) {
	if x == nil {
		return 0, nil, errors.Wrap(ir.ErrMalformed, "no block")
	}

	bb = fc.DFG.NewBasicBlock(EntryBlock)

	insts, err = fc.stmt(x.Stmt)
	if err != nil {
		return 0, nil, err
	}

	return bb, insts, nil
}

// stmt lowers a return statement. The return is the last instruction.
func (fc *funContext) stmt(x *ast.Stmt) ([]ir.Value, error) {
	if x == nil {
		return nil, errors.Wrap(ir.ErrMalformed, "no statement")
	}

	v, insts, err := fc.exp(x.Exp)
	if err != nil {
		return nil, errors.Wrap(err, "return")
	}

	ret := fc.DFG.NewReturn(v)

	return append(insts, ret), nil
}

// exp returns the value of the expression and every instruction
// needed to compute it, in evaluation order.
func (fc *funContext) exp(x ast.Exp) (v ir.Value, insts []ir.Value, err error) {
	switch x := x.(type) {
	case ast.Number:
		return fc.DFG.NewInteger(x.Value), nil, nil
	case ast.UnaryExp:
		op, passthrough, err := UnaryOp(x.Op)
		if err != nil {
			return 0, nil, err
		}

		v, insts, err = fc.exp(x.Exp)
		if err != nil {
			return 0, nil, errors.Wrap(err, "unary %v", x.Op)
		}

		if passthrough {
			return v, insts, nil
		}

		zero := fc.DFG.NewInteger(0)
		v = fc.DFG.NewBinary(op, zero, v)

		return v, append(insts, v), nil
	case ast.BinaryExp:
		l, linsts, err := fc.exp(x.LHS)
		if err != nil {
			return 0, nil, errors.Wrap(err, "lhs")
		}

		r, rinsts, err := fc.exp(x.RHS)
		if err != nil {
			return 0, nil, errors.Wrap(err, "rhs")
		}

		op, err := BinaryOp(x.Op)
		if err != nil {
			return 0, nil, err
		}

		v = fc.DFG.NewBinary(op, l, r)

		insts = append(linsts, rinsts...)
		insts = append(insts, v)

		return v, insts, nil
	case nil:
		return 0, nil, errors.Wrap(ir.ErrMalformed, "missing expression")
	default:
		return 0, nil, errors.Wrap(ir.ErrUnsupported, "expression %T", x)
	}
}
