package ast

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"

	"github.com/slowlang/koopac/compiler/ir"
)

// Decode reads a compilation unit serialized by the parser.
// Any malformed input, unknown keys included, is reported as ir.ErrMalformed.
//
// Expressions are one-key mappings:
//
//	number: 5
//	unary: {op: "-", exp: ...}
//	binary: {op: "==", lhs: ..., rhs: ...}
func Decode(data []byte) (*CompUnit, error) {
	d := yaml.NewDecoder(bytes.NewReader(data))
	d.KnownFields(true)

	var u CompUnit

	err := d.Decode(&u)
	if errors.Is(err, ir.ErrMalformed) {
		return nil, errors.Wrap(err, "decode")
	}
	if err != nil {
		return nil, errors.Wrap(ir.ErrMalformed, "decode: %v", err)
	}

	return &u, nil
}

func DecodeFile(name string) (*CompUnit, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return Decode(data)
}

func (s *Stmt) UnmarshalYAML(n *yaml.Node) (err error) {
	var raw struct {
		Exp yaml.Node `yaml:"exp"`
	}

	err = checkKeys(n, "exp")
	if err != nil {
		return errors.Wrap(err, "stmt")
	}

	err = n.Decode(&raw)
	if err != nil {
		return errors.Wrap(ir.ErrMalformed, "stmt: %v", err)
	}

	s.Exp, err = decodeExp(&raw.Exp)
	if err != nil {
		return errors.Wrap(err, "stmt")
	}

	return nil
}

func decodeExp(n *yaml.Node) (x Exp, err error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	if n.Kind == 0 {
		return nil, errors.Wrap(ir.ErrMalformed, "missing expression")
	}

	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, errors.Wrap(ir.ErrMalformed, "line %d: expression must be a one-key mapping", n.Line)
	}

	key, val := n.Content[0].Value, n.Content[1]

	switch key {
	case "number":
		var v int32

		err = val.Decode(&v)
		if err != nil {
			return nil, errors.Wrap(ir.ErrMalformed, "number: %v", err)
		}

		return Number{Value: v}, nil
	case "unary":
		var raw struct {
			Op  *UnaryOp  `yaml:"op"`
			Exp yaml.Node `yaml:"exp"`
		}

		err = checkKeys(val, "op", "exp")
		if err != nil {
			return nil, errors.Wrap(err, "unary")
		}

		err = val.Decode(&raw)
		if errors.Is(err, ir.ErrMalformed) {
			return nil, errors.Wrap(err, "unary")
		}
		if err != nil {
			return nil, errors.Wrap(ir.ErrMalformed, "unary: %v", err)
		}

		if raw.Op == nil {
			return nil, errors.Wrap(ir.ErrMalformed, "line %d: unary: missing op", val.Line)
		}

		sub, err := decodeExp(&raw.Exp)
		if err != nil {
			return nil, errors.Wrap(err, "unary %v", *raw.Op)
		}

		return UnaryExp{Op: *raw.Op, Exp: sub}, nil
	case "binary":
		var raw struct {
			Op  *BinaryOp `yaml:"op"`
			LHS yaml.Node `yaml:"lhs"`
			RHS yaml.Node `yaml:"rhs"`
		}

		err = checkKeys(val, "op", "lhs", "rhs")
		if err != nil {
			return nil, errors.Wrap(err, "binary")
		}

		err = val.Decode(&raw)
		if errors.Is(err, ir.ErrMalformed) {
			return nil, errors.Wrap(err, "binary")
		}
		if err != nil {
			return nil, errors.Wrap(ir.ErrMalformed, "binary: %v", err)
		}

		if raw.Op == nil {
			return nil, errors.Wrap(ir.ErrMalformed, "line %d: binary: missing op", val.Line)
		}

		l, err := decodeExp(&raw.LHS)
		if err != nil {
			return nil, errors.Wrap(err, "binary %v: lhs", *raw.Op)
		}

		r, err := decodeExp(&raw.RHS)
		if err != nil {
			return nil, errors.Wrap(err, "binary %v: rhs", *raw.Op)
		}

		return BinaryExp{Op: *raw.Op, LHS: l, RHS: r}, nil
	default:
		return nil, errors.Wrap(ir.ErrMalformed, "line %d: unknown expression: %q", n.Line, key)
	}
}

// checkKeys rejects mapping keys not listed.
// Nested nodes are decoded with yaml.Node.Decode, which does not honor Decoder.KnownFields.
func checkKeys(n *yaml.Node, keys ...string) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	if n.Kind != yaml.MappingNode {
		return errors.Wrap(ir.ErrMalformed, "line %d: expected mapping", n.Line)
	}

outer:
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]

		for _, want := range keys {
			if k.Value == want {
				continue outer
			}
		}

		return errors.Wrap(ir.ErrMalformed, "line %d: unknown key: %q", k.Line, k.Value)
	}

	return nil
}

func (op *UnaryOp) UnmarshalYAML(n *yaml.Node) error {
	x, ok := ParseUnaryOp(n.Value)
	if !ok || n.Kind != yaml.ScalarNode {
		return errors.Wrap(ir.ErrMalformed, "line %d: unknown unary op: %q", n.Line, n.Value)
	}

	*op = x

	return nil
}

func (op *BinaryOp) UnmarshalYAML(n *yaml.Node) error {
	x, ok := ParseBinaryOp(n.Value)
	if !ok || n.Kind != yaml.ScalarNode {
		return errors.Wrap(ir.ErrMalformed, "line %d: unknown binary op: %q", n.Line, n.Value)
	}

	*op = x

	return nil
}

func (t *FuncType) UnmarshalYAML(n *yaml.Node) error {
	switch n.Value {
	case "int":
		*t = Int
	default:
		return errors.Wrap(ir.ErrMalformed, "line %d: unknown func type: %q", n.Line, n.Value)
	}

	return nil
}
