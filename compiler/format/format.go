package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/koopac/compiler/ast"
)

// Format renders the tree as source text. Binary expressions are parenthesized.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x any, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.CompUnit:
		return formatUnit(ctx, b, x, d)
	case *ast.FuncDef:
		return formatFunc(ctx, b, x, d)
	case ast.Exp:
		return formatExp(ctx, b, x)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatUnit(ctx context.Context, b []byte, x *ast.CompUnit, d int) (_ []byte, err error) {
	if x == nil || x.FuncDef == nil {
		return nil, errors.New("no function")
	}

	b, err = formatFunc(ctx, b, x.FuncDef, d)
	if err != nil {
		return nil, errors.Wrap(err, "func %v", x.FuncDef.Ident)
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, x *ast.FuncDef, d int) (_ []byte, err error) {
	b = app(b, d, "%v %s() {\n", x.FuncType, x.Ident)

	if x.Block == nil {
		return nil, errors.New("no body")
	}

	b, err = formatBlock(ctx, b, x.Block, d+1)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatBlock(ctx context.Context, b []byte, x *ast.Block, d int) (_ []byte, err error) {
	s := x.Stmt
	if s == nil {
		return nil, errors.New("no statement")
	}

	b = app(b, d, "return ")

	b, err = formatExp(ctx, b, s.Exp)
	if err != nil {
		return nil, errors.Wrap(err, "return")
	}

	b = append(b, ";\n"...)

	return b, nil
}

func formatExp(ctx context.Context, b []byte, x ast.Exp) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Number:
		if x.Value < 0 {
			return hfmt.Appendf(b, "(%d)", x.Value), nil
		}

		b = hfmt.Appendf(b, "%d", x.Value)
	case ast.UnaryExp:
		b = append(b, x.Op.String()...)

		// "--x" and "++x" are different tokens
		_, nested := x.Exp.(ast.UnaryExp)
		if nested {
			b = append(b, '(')
		}

		b, err = formatExp(ctx, b, x.Exp)
		if err != nil {
			return nil, errors.Wrap(err, "unary %v", x.Op)
		}

		if nested {
			b = append(b, ')')
		}
	case ast.BinaryExp:
		b = append(b, '(')

		b, err = formatExp(ctx, b, x.LHS)
		if err != nil {
			return nil, errors.Wrap(err, "lhs")
		}

		b = hfmt.Appendf(b, " %v ", x.Op)

		b, err = formatExp(ctx, b, x.RHS)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}

		b = append(b, ')')
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
