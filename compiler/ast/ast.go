package ast

type (
	Node interface{}

	CompUnit struct {
		FuncDef *FuncDef `yaml:"func_def"`
	}

	FuncDef struct {
		FuncType FuncType `yaml:"func_type"`
		Ident    string   `yaml:"ident"`
		Block    *Block   `yaml:"block"`
	}

	FuncType int

	Block struct {
		Stmt *Stmt `yaml:"stmt"`
	}

	// Stmt is a return statement.
	Stmt struct {
		Exp Exp
	}

	Exp interface {
		exp()
	}

	Number struct {
		Value int32
	}

	UnaryExp struct {
		Op  UnaryOp
		Exp Exp
	}

	BinaryExp struct {
		Op  BinaryOp
		LHS Exp
		RHS Exp
	}

	UnaryOp  int
	BinaryOp int
)

const (
	Int FuncType = iota
)

const (
	Plus UnaryOp = iota
	Minus
	Not

	numUnaryOps
)

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Less
	Greater
	LessEqual
	GreaterEqual
	Equal
	NotEqual
	And
	Or
	Xor
	Shl
	Shr

	numBinaryOps
)

var unaryOps = [numUnaryOps]string{
	Plus:  "+",
	Minus: "-",
	Not:   "!",
}

var binaryOps = [numBinaryOps]string{
	Add:          "+",
	Sub:          "-",
	Mul:          "*",
	Div:          "/",
	Mod:          "%",
	Less:         "<",
	Greater:      ">",
	LessEqual:    "<=",
	GreaterEqual: ">=",
	Equal:        "==",
	NotEqual:     "!=",
	And:          "&&",
	Or:           "||",
	Xor:          "^",
	Shl:          "<<",
	Shr:          ">>",
}

func (Number) exp()    {}
func (UnaryExp) exp()  {}
func (BinaryExp) exp() {}

func (op UnaryOp) String() string {
	if op < 0 || op >= numUnaryOps {
		return "?"
	}

	return unaryOps[op]
}

func (op BinaryOp) String() string {
	if op < 0 || op >= numBinaryOps {
		return "?"
	}

	return binaryOps[op]
}

func (t FuncType) String() string {
	switch t {
	case Int:
		return "int"
	default:
		return "?"
	}
}

func ParseUnaryOp(s string) (UnaryOp, bool) {
	for op, tok := range unaryOps {
		if tok == s {
			return UnaryOp(op), true
		}
	}

	return 0, false
}

func ParseBinaryOp(s string) (BinaryOp, bool) {
	for op, tok := range binaryOps {
		if tok == s {
			return BinaryOp(op), true
		}
	}

	return 0, false
}
