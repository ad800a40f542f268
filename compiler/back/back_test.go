package back

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/koopac/compiler/ir"
)

type builder struct {
	p *ir.Program
	f *ir.Function
	n *ir.BlockNode
}

func newBuilder(name string) *builder {
	b := &builder{p: ir.NewProgram()}
	b.fn(name)

	return b
}

func (b *builder) fn(name string) {
	b.f = b.p.Func(b.p.NewFunc(name, ir.I32))
	b.n = b.f.Layout.PushBlock(b.f.DFG.NewBasicBlock("%entry"))
}

func (b *builder) int(x int32) ir.Value { return b.f.DFG.NewInteger(x) }

func (b *builder) bin(op ir.BinaryOp, l, r ir.Value) ir.Value {
	v := b.f.DFG.NewBinary(op, l, r)
	b.n.Insts = append(b.n.Insts, v)

	return v
}

func (b *builder) ret(x ir.Value) {
	b.n.Insts = append(b.n.Insts, b.f.DFG.NewReturn(x))
}

func compile(t *testing.T, p *ir.Program) string {
	t.Helper()

	obj, err := New(nil).CompileProgram(context.Background(), nil, p)
	require.NoError(t, err)

	return string(obj)
}

func TestReturnZero(t *testing.T) {
	b := newBuilder("@main")
	b.ret(b.int(0))

	assert.Equal(t, ".text\n.globl main\nmain:\nli a0, 0\nret\n\n", compile(t, b.p))
}

func TestReturnNothing(t *testing.T) {
	b := newBuilder("@main")
	b.ret(ir.NoValue)

	assert.Equal(t, ".text\n.globl main\nmain:\nli a0, 0\nret\n\n", compile(t, b.p))
}

func TestReturnConst(t *testing.T) {
	b := newBuilder("@main")
	b.ret(b.int(42))

	assert.Equal(t, ".text\n.globl main\nmain:\nli a0, 42\nret\n\n", compile(t, b.p))
}

func TestNeg(t *testing.T) {
	b := newBuilder("@main")
	five := b.int(5)
	b.ret(b.bin(ir.Sub, b.int(0), five))

	assert.Equal(t, `.text
.globl main
main:
li t0, 5
sub t0, x0, t0
mv a0, t0
ret

`, compile(t, b.p))
}

func TestEq(t *testing.T) {
	b := newBuilder("@main")
	b.ret(b.bin(ir.Eq, b.int(1), b.int(2)))

	assert.Equal(t, `.text
.globl main
main:
li t0, 1
li t1, 2
xor t1, t0, t1
seqz t1, t1
mv a0, t1
ret

`, compile(t, b.p))
}

func TestNested(t *testing.T) {
	b := newBuilder("@main")

	sub := b.bin(ir.Sub, b.int(1), b.int(2))
	mul := b.bin(ir.Mul, b.int(3), b.int(4))
	neg := b.bin(ir.Sub, b.int(0), mul)
	b.ret(b.bin(ir.Eq, sub, neg))

	assert.Equal(t, `.text
.globl main
main:
li t0, 1
li t1, 2
sub t1, t0, t1
li t0, 3
li t2, 4
mul t2, t0, t2
sub t2, x0, t2
xor t2, t1, t2
seqz t2, t2
mv a0, t2
ret

`, compile(t, b.p))
}

func TestSharedOperandNoHint(t *testing.T) {
	b := newBuilder("@main")

	a := b.bin(ir.Add, b.int(1), b.int(2))
	b.ret(b.bin(ir.Sub, a, a))

	assert.Equal(t, `.text
.globl main
main:
li t0, 1
li t1, 2
add t1, t0, t1
sub t0, t1, t1
mv a0, t0
ret

`, compile(t, b.p))
}

func TestLongChain(t *testing.T) {
	b := newBuilder("@main")

	acc := b.int(1)
	want := ".text\n.globl main\nmain:\nli t0, 1\n"
	regs := [2]string{"t0", "t1"}

	for i := 1; i < 16; i++ {
		acc = b.bin(ir.Add, acc, b.int(1))

		p, q := regs[(i+1)%2], regs[i%2]
		want += "li " + q + ", 1\nadd " + q + ", " + p + ", " + q + "\n"
	}

	b.ret(acc)

	want += "mv a0, t1\nret\n\n"

	assert.Equal(t, want, compile(t, b.p))
}

func TestZeroOperands(t *testing.T) {
	b := newBuilder("@main")
	b.ret(b.bin(ir.Eq, b.int(0), b.int(0)))

	assert.Equal(t, `.text
.globl main
main:
xor t0, x0, x0
seqz t0, t0
mv a0, t0
ret

`, compile(t, b.p))
}

func TestBinaryOps(t *testing.T) {
	for op, want := range map[ir.BinaryOp]string{
		ir.Add:   "add t1, t0, t1\n",
		ir.Sub:   "sub t1, t0, t1\n",
		ir.Mul:   "mul t1, t0, t1\n",
		ir.Div:   "div t1, t0, t1\n",
		ir.Mod:   "rem t1, t0, t1\n",
		ir.Lt:    "slt t1, t0, t1\n",
		ir.Gt:    "sgt t1, t0, t1\n",
		ir.Le:    "sgt t1, t0, t1\nseqz t1, t1\n",
		ir.Ge:    "slt t1, t0, t1\nseqz t1, t1\n",
		ir.Eq:    "xor t1, t0, t1\nseqz t1, t1\n",
		ir.NotEq: "xor t1, t0, t1\nsnez t1, t1\n",
		ir.And:   "and t1, t0, t1\n",
		ir.Or:    "or t1, t0, t1\n",
	} {
		b := newBuilder("@main")
		b.ret(b.bin(op, b.int(1), b.int(2)))

		assert.Equal(t, ".text\n.globl main\nmain:\nli t0, 1\nli t1, 2\n"+want+"mv a0, t1\nret\n\n", compile(t, b.p), "op %v", op)
	}
}

func TestFuncsHaveOwnRegisters(t *testing.T) {
	b := newBuilder("@main")
	b.ret(b.bin(ir.Sub, b.int(0), b.int(1)))

	b.fn("@helper")
	b.ret(b.bin(ir.Sub, b.int(0), b.int(2)))

	assert.Equal(t, `.text
.globl main
main:
li t0, 1
sub t0, x0, t0
mv a0, t0
ret
helper:
li t0, 2
sub t0, x0, t0
mv a0, t0
ret

`, compile(t, b.p))
}

func TestIdempotent(t *testing.T) {
	b := newBuilder("@main")
	sub := b.bin(ir.Sub, b.int(7), b.int(2))
	b.ret(b.bin(ir.NotEq, sub, b.int(0)))

	assert.Equal(t, compile(t, b.p), compile(t, b.p))
}

func TestAppendsToBuffer(t *testing.T) {
	b := newBuilder("@main")
	b.ret(b.int(0))

	obj, err := New(nil).CompileProgram(context.Background(), []byte("# header\n"), b.p)
	require.NoError(t, err)

	assert.Equal(t, "# header\n.text\n.globl main\nmain:\nli a0, 0\nret\n\n", string(obj))
}

func TestUnsupportedOp(t *testing.T) {
	b := newBuilder("@main")
	b.ret(b.bin(ir.BinaryOp(99), b.int(1), b.int(2)))

	obj, err := New(nil).CompileProgram(context.Background(), nil, b.p)
	require.ErrorIs(t, err, ir.ErrUnsupported)
	assert.Nil(t, obj)
}

func TestInvalidFuncName(t *testing.T) {
	for _, name := range []string{"", "@"} {
		b := newBuilder(name)
		b.ret(b.int(0))

		obj, err := New(nil).CompileProgram(context.Background(), nil, b.p)
		require.ErrorIs(t, err, ir.ErrMalformed, "name %q", name)
		assert.Nil(t, obj)
	}
}

func TestOutOfRegisters(t *testing.T) {
	tg := DefaultTarget()
	tg.Scratch = []Reg{"t0"}

	b := newBuilder("@main")
	b.ret(b.bin(ir.Add, b.int(1), b.int(2)))

	obj, err := New(tg).CompileProgram(context.Background(), nil, b.p)
	require.ErrorIs(t, err, ir.ErrUnsupported)
	assert.Nil(t, obj)
}

func TestIntegerValue(t *testing.T) {
	for _, x := range []int32{0, 1, -1, 5, 1 << 20, -2147483648} {
		b := newBuilder("@main")
		v := b.int(x)

		f := &funContext{
			Function: b.f,
			t:        DefaultTarget(),
			regs:     NewRegs(DefaultTarget()),
			uses:     b.f.Uses(),
		}

		obj, r, err := f.value(nil, v)
		require.NoError(t, err)

		if x == 0 {
			assert.Equal(t, Reg("x0"), r)
			assert.Empty(t, obj)

			_, ok := f.regs.Lookup(v)
			assert.False(t, ok)

			continue
		}

		assert.Equal(t, Reg("t0"), r)
		assert.Equal(t, "li t0, "+strconv.Itoa(int(x))+"\n", string(obj))

		obj, r, err = f.value(nil, v)
		require.NoError(t, err)
		assert.Equal(t, Reg("t0"), r)
		assert.Empty(t, obj, "memoized")
	}
}
