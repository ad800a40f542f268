package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/koopac/compiler/ast"
	"github.com/slowlang/koopac/compiler/back"
	"github.com/slowlang/koopac/compiler/format"
	"github.com/slowlang/koopac/compiler/front"
	"github.com/slowlang/koopac/compiler/ir"
	"github.com/slowlang/koopac/compiler/llvm"
)

type (
	Mode string

	Options struct {
		Mode   Mode
		Target *back.Target // RISCV only, nil for default
	}
)

const (
	Koopa  Mode = "koopa"
	RISCV  Mode = "riscv"
	LLVM   Mode = "llvm"
	Source Mode = "source"
)

func CompileFile(ctx context.Context, name string, opts Options) (obj []byte, err error) {
	u, err := ast.DecodeFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read ast")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "name", name, "mode", opts.Mode)

	return Compile(ctx, u, opts)
}

// Compile lowers the unit to the output selected by opts.Mode.
// Output is only returned if every stage succeeded.
func Compile(ctx context.Context, u *ast.CompUnit, opts Options) (obj []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "mode", opts.Mode)
	defer tr.Finish("err", &err)

	if opts.Mode == Source {
		return format.Format(ctx, nil, u)
	}

	p, err := front.Build(ctx, u)
	if err != nil {
		return nil, errors.Wrap(err, "build ir")
	}

	err = ir.Verify(p)
	if err != nil {
		return nil, errors.Wrap(err, "verify ir")
	}

	switch opts.Mode {
	case Koopa:
		return ir.Format(nil, p), nil
	case RISCV, "":
		obj, err = back.New(opts.Target).CompileProgram(ctx, nil, p)
		if err != nil {
			return nil, errors.Wrap(err, "codegen")
		}

		return obj, nil
	case LLVM:
		m, err := llvm.Compile(ctx, p)
		if err != nil {
			return nil, errors.Wrap(err, "codegen")
		}

		return []byte(m.String()), nil
	default:
		return nil, errors.Wrap(ir.ErrUnsupported, "output mode %q", opts.Mode)
	}
}
