package front

import (
	"tlog.app/go/errors"

	"github.com/slowlang/koopac/compiler/ast"
	"github.com/slowlang/koopac/compiler/ir"
)

var binaryOps = map[ast.BinaryOp]ir.BinaryOp{
	ast.Add:          ir.Add,
	ast.Sub:          ir.Sub,
	ast.Mul:          ir.Mul,
	ast.Div:          ir.Div,
	ast.Mod:          ir.Mod,
	ast.Less:         ir.Lt,
	ast.Greater:      ir.Gt,
	ast.LessEqual:    ir.Le,
	ast.GreaterEqual: ir.Ge,
	ast.Equal:        ir.Eq,
	ast.NotEqual:     ir.NotEq,
	ast.And:          ir.And,
	ast.Or:           ir.Or,
}

// UnaryOp returns the binary op applied as `0 op x`.
// Passthrough unary ops produce no instruction.
func UnaryOp(op ast.UnaryOp) (_ ir.BinaryOp, passthrough bool, err error) {
	switch op {
	case ast.Plus:
		return 0, true, nil
	case ast.Minus:
		return ir.Sub, false, nil
	case ast.Not:
		return ir.Eq, false, nil
	default:
		return 0, false, errors.Wrap(ir.ErrUnsupported, "unary op %v", op)
	}
}

func BinaryOp(op ast.BinaryOp) (ir.BinaryOp, error) {
	x, ok := binaryOps[op]
	if !ok {
		return 0, errors.Wrap(ir.ErrUnsupported, "binary op %v", op)
	}

	return x, nil
}
