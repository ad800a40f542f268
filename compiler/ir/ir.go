package ir

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"
)

type (
	// Value is a handle into the DataFlowGraph of the function it belongs to.
	Value int

	BasicBlock int
	Func       int

	Type int

	BinaryOp int

	// Kind is what a Value is. Kinds are immutable once inserted.
	Kind interface {
		kind()
	}

	Integer struct {
		Value int32
	}

	Binary struct {
		Op       BinaryOp
		LHS, RHS Value
	}

	Return struct {
		Value Value // NoValue if none
	}

	BasicBlockData struct {
		Name string
	}

	DataFlowGraph struct {
		values []Kind
		bbs    []BasicBlockData
	}

	BlockNode struct {
		BB    BasicBlock
		Insts []Value
	}

	Layout struct {
		blocks []*BlockNode
	}

	Function struct {
		Name string // with sigil
		Ret  Type

		DFG    DataFlowGraph
		Layout Layout
	}

	Program struct {
		funcs  []*Function
		layout []Func
	}
)

const (
	NoValue Value = -1
)

const (
	I32 Type = iota
)

const (
	NotEq BinaryOp = iota
	Eq
	Gt
	Lt
	Ge
	Le
	Add
	Sub
	Mul
	Div
	Mod
	And
	Or

	numBinaryOps
)

var (
	ErrUnsupported = errors.New("unsupported")
	ErrMalformed   = errors.New("malformed")
)

var binaryOpNames = [numBinaryOps]string{
	NotEq: "ne",
	Eq:    "eq",
	Gt:    "gt",
	Lt:    "lt",
	Ge:    "ge",
	Le:    "le",
	Add:   "add",
	Sub:   "sub",
	Mul:   "mul",
	Div:   "div",
	Mod:   "mod",
	And:   "and",
	Or:    "or",
}

func (Integer) kind() {}
func (Binary) kind()  {}
func (Return) kind()  {}

func NewProgram() *Program {
	return &Program{}
}

// NewFunc registers a function and appends it to the program layout.
func (p *Program) NewFunc(name string, ret Type) Func {
	id := Func(len(p.funcs))

	p.funcs = append(p.funcs, &Function{Name: name, Ret: ret})
	p.layout = append(p.layout, id)

	return id
}

func (p *Program) Func(f Func) *Function {
	return p.funcs[f]
}

func (p *Program) FuncLayout() []Func {
	return p.layout
}

func (g *DataFlowGraph) NewInteger(x int32) Value {
	return g.push(Integer{Value: x})
}

func (g *DataFlowGraph) NewBinary(op BinaryOp, l, r Value) Value {
	return g.push(Binary{Op: op, LHS: l, RHS: r})
}

func (g *DataFlowGraph) NewReturn(v Value) Value {
	return g.push(Return{Value: v})
}

func (g *DataFlowGraph) NewBasicBlock(name string) BasicBlock {
	id := BasicBlock(len(g.bbs))
	g.bbs = append(g.bbs, BasicBlockData{Name: name})

	return id
}

func (g *DataFlowGraph) Value(v Value) Kind {
	return g.values[v]
}

func (g *DataFlowGraph) BasicBlock(bb BasicBlock) BasicBlockData {
	return g.bbs[bb]
}

// Len is the number of values in the graph. Value ids are [0, Len).
func (g *DataFlowGraph) Len() int {
	return len(g.values)
}

func (g *DataFlowGraph) push(k Kind) Value {
	id := Value(len(g.values))
	g.values = append(g.values, k)

	return id
}

func (l *Layout) PushBlock(bb BasicBlock) *BlockNode {
	n := &BlockNode{BB: bb}
	l.blocks = append(l.blocks, n)

	return n
}

func (l *Layout) Blocks() []*BlockNode {
	return l.blocks
}

// Uses counts operand references of every value in the function.
func (f *Function) Uses() []int {
	uses := make([]int, f.DFG.Len())

	for _, k := range f.DFG.values {
		switch k := k.(type) {
		case Binary:
			uses[k.LHS]++
			uses[k.RHS]++
		case Return:
			if k.Value != NoValue {
				uses[k.Value]++
			}
		}
	}

	return uses
}

func (op BinaryOp) String() string {
	if op < 0 || op >= numBinaryOps {
		return "op?"
	}

	return binaryOpNames[op]
}

func (t Type) String() string {
	switch t {
	case I32:
		return "i32"
	default:
		return "type?"
	}
}

func (x Binary) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)
	b = e.AppendKeyString(b, "op", x.Op.String())
	b = e.AppendKeyInt64(b, "l", int64(x.LHS))
	b = e.AppendKeyInt64(b, "r", int64(x.RHS))

	return b
}
