package back

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/koopac/compiler/ir"
)

type (
	Compiler struct {
		Target *Target
	}

	funContext struct {
		*ir.Function

		t    *Target
		regs *Regs
		uses []int
	}
)

func New(t *Target) *Compiler {
	if t == nil {
		t = DefaultTarget()
	}

	return &Compiler{Target: t}
}

// CompileProgram appends the assembly text of the program to b.
// On error no partial output is returned.
func (c *Compiler) CompileProgram(ctx context.Context, b []byte, p *ir.Program) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile program", "funcs", len(p.FuncLayout()))
	defer tr.Finish("err", &err)

	err = c.Target.Validate()
	if err != nil {
		return nil, err
	}

	st := len(b)

	b = fmt.Appendf(b, ".text\n.globl %s\n", c.Target.Entry)

	for _, fid := range p.FuncLayout() {
		f := p.Func(fid)

		b, err = c.compileFunc(ctx, b, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	b = append(b, '\n')

	if tr.If("dump_asm") {
		tr.Printw("asm", "text", b[st:])
	}

	return b, nil
}

func (c *Compiler) compileFunc(ctx context.Context, b []byte, fn *ir.Function) (_ []byte, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "back: compile func", "name", fn.Name)
	defer tr.Finish("err", &err)

	if len(fn.Name) <= 1 {
		return nil, errors.Wrap(ir.ErrMalformed, "invalid function name %q", fn.Name)
	}

	f := &funContext{
		Function: fn,
		t:        c.Target,
		regs:     NewRegs(c.Target),
		uses:     fn.Uses(),
	}

	b = fmt.Appendf(b, "%s:\n", fn.Name[1:])

	for _, n := range fn.Layout.Blocks() {
		for _, v := range n.Insts {
			b, _, err = f.value(b, v)
			if err != nil {
				return nil, errors.Wrap(err, "value %d", v)
			}
		}
	}

	return b, nil
}

// value generates v and its operands which were not generated yet.
// It returns the register holding the result, empty for instructions without one.
func (f *funContext) value(b []byte, v ir.Value) (_ []byte, r Reg, err error) {
	if r, ok := f.regs.Lookup(v); ok {
		return b, r, nil
	}

	switch k := f.DFG.Value(v).(type) {
	case ir.Integer:
		if k.Value == 0 {
			return b, f.t.Zero, nil
		}

		r, err = f.regs.Alloc(v, "")
		if err != nil {
			return nil, "", err
		}

		b = fmt.Appendf(b, "li %v, %d\n", r, k.Value)
	case ir.Binary:
		var lhs, rhs, hint Reg

		b, lhs, err = f.value(b, k.LHS)
		if err != nil {
			return nil, "", errors.Wrap(err, "lhs")
		}

		b, rhs, err = f.value(b, k.RHS)
		if err != nil {
			return nil, "", errors.Wrap(err, "rhs")
		}

		if f.uses[k.RHS] == 1 {
			hint = rhs
		}

		r, err = f.regs.Alloc(v, hint)
		if err != nil {
			return nil, "", err
		}

		if f.uses[k.LHS] == 1 && lhs != r {
			f.regs.Free(lhs)
		}

		tlog.V("codegen").Printw("binary", "value", v, "inst", k, "dst", r, "lhs", lhs, "rhs", rhs)

		b, err = f.binary(b, k.Op, r, lhs, rhs)
		if err != nil {
			return nil, "", err
		}
	case ir.Return:
		b, err = f.ret(b, k)
		if err != nil {
			return nil, "", errors.Wrap(err, "return")
		}
	default:
		return nil, "", errors.Wrap(ir.ErrUnsupported, "value kind %T", k)
	}

	return b, r, nil
}

func (f *funContext) binary(b []byte, op ir.BinaryOp, d, l, r Reg) ([]byte, error) {
	switch op {
	case ir.Eq:
		b = fmt.Appendf(b, "xor %v, %v, %v\n", d, l, r)
		b = fmt.Appendf(b, "seqz %v, %v\n", d, d)
	case ir.NotEq:
		b = fmt.Appendf(b, "xor %v, %v, %v\n", d, l, r)
		b = fmt.Appendf(b, "snez %v, %v\n", d, d)
	case ir.Le:
		b = fmt.Appendf(b, "sgt %v, %v, %v\n", d, l, r)
		b = fmt.Appendf(b, "seqz %v, %v\n", d, d)
	case ir.Ge:
		b = fmt.Appendf(b, "slt %v, %v, %v\n", d, l, r)
		b = fmt.Appendf(b, "seqz %v, %v\n", d, d)
	case ir.Sub, ir.Add, ir.Mul, ir.Div, ir.Mod, ir.Lt, ir.Gt, ir.And, ir.Or:
		b = fmt.Appendf(b, "%s %v, %v, %v\n", arith[op], d, l, r)
	default:
		return nil, errors.Wrap(ir.ErrUnsupported, "binary op %v", op)
	}

	return b, nil
}

var arith = map[ir.BinaryOp]string{
	ir.Sub: "sub",
	ir.Add: "add",
	ir.Mul: "mul",
	ir.Div: "div",
	ir.Mod: "rem",
	ir.Lt:  "slt",
	ir.Gt:  "sgt",
	ir.And: "and",
	ir.Or:  "or",
}

func (f *funContext) ret(b []byte, k ir.Return) (_ []byte, err error) {
	if k.Value == ir.NoValue {
		b = fmt.Appendf(b, "li %v, 0\n", f.t.Ret)
		b = append(b, "ret\n"...)

		return b, nil
	}

	if x, ok := f.DFG.Value(k.Value).(ir.Integer); ok {
		b = fmt.Appendf(b, "li %v, %d\n", f.t.Ret, x.Value)
		b = append(b, "ret\n"...)

		return b, nil
	}

	b, r, err := f.value(b, k.Value)
	if err != nil {
		return nil, err
	}

	b = fmt.Appendf(b, "mv %v, %v\n", f.t.Ret, r)
	b = append(b, "ret\n"...)

	return b, nil
}
