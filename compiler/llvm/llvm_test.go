package llvm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/koopac/compiler/ir"
)

func program(name string, op ir.BinaryOp, l, r int32) *ir.Program {
	p := ir.NewProgram()
	f := p.Func(p.NewFunc(name, ir.I32))

	n := f.Layout.PushBlock(f.DFG.NewBasicBlock("%entry"))

	v := f.DFG.NewBinary(op, f.DFG.NewInteger(l), f.DFG.NewInteger(r))
	n.Insts = append(n.Insts, v, f.DFG.NewReturn(v))

	return p
}

func TestCompileNeg(t *testing.T) {
	m, err := Compile(context.Background(), program("@main", ir.Sub, 0, 5))
	require.NoError(t, err)

	text := m.String()

	assert.Contains(t, text, "define i32 @main()")
	assert.Contains(t, text, "entry:")
	assert.Contains(t, text, "sub i32 0, 5")
	assert.Contains(t, text, "ret i32 %")
}

func TestCompileCompare(t *testing.T) {
	m, err := Compile(context.Background(), program("@main", ir.Le, 1, 2))
	require.NoError(t, err)

	text := m.String()

	assert.Contains(t, text, "icmp sle i32 1, 2")
	assert.Contains(t, text, "zext i1 %")
}

func TestCompileReturnNothing(t *testing.T) {
	p := ir.NewProgram()
	f := p.Func(p.NewFunc("@main", ir.I32))

	n := f.Layout.PushBlock(f.DFG.NewBasicBlock("%entry"))
	n.Insts = append(n.Insts, f.DFG.NewReturn(ir.NoValue))

	m, err := Compile(context.Background(), p)
	require.NoError(t, err)

	assert.Contains(t, m.String(), "ret i32 0")
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(context.Background(), program("@main", ir.BinaryOp(99), 1, 2))
	require.ErrorIs(t, err, ir.ErrUnsupported)

	_, err = Compile(context.Background(), program("@", ir.Add, 1, 2))
	require.ErrorIs(t, err, ir.ErrMalformed)
}
