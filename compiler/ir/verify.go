package ir

import (
	"tlog.app/go/errors"

	"github.com/slowlang/koopac/compiler/set"
)

// Verify checks the layout of every function:
// each block ends with a return, constants are operands only,
// and every instruction operand is placed before its user.
func Verify(p *Program) (err error) {
	for _, fid := range p.FuncLayout() {
		f := p.Func(fid)

		err = verifyFunc(f)
		if err != nil {
			return errors.Wrap(err, "func %v", f.Name)
		}
	}

	return nil
}

func verifyFunc(f *Function) error {
	blocks := f.Layout.Blocks()
	if len(blocks) == 0 {
		return errors.Wrap(ErrMalformed, "no basic blocks")
	}

	placed := set.MakeBitmap[Value](f.DFG.Len())

	ready := func(v Value) bool {
		if v < 0 || int(v) >= f.DFG.Len() {
			return false
		}

		if _, ok := f.DFG.Value(v).(Integer); ok {
			return true
		}

		return placed.IsSet(v)
	}

	for _, n := range blocks {
		name := f.DFG.BasicBlock(n.BB).Name

		if len(n.Insts) == 0 {
			return errors.Wrap(ErrMalformed, "block %v: empty", name)
		}

		for i, v := range n.Insts {
			if v < 0 || int(v) >= f.DFG.Len() {
				return errors.Wrap(ErrMalformed, "block %v: inst %d: no such value %d", name, i, v)
			}

			if placed.IsSet(v) {
				return errors.Wrap(ErrMalformed, "block %v: inst %d: value %d placed twice", name, i, v)
			}

			switch k := f.DFG.Value(v).(type) {
			case Integer:
				return errors.Wrap(ErrMalformed, "block %v: inst %d: integer constant in layout", name, i)
			case Binary:
				if !ready(k.LHS) || !ready(k.RHS) {
					return errors.Wrap(ErrMalformed, "block %v: inst %d: operand used before definition", name, i)
				}
			case Return:
				if k.Value != NoValue && !ready(k.Value) {
					return errors.Wrap(ErrMalformed, "block %v: inst %d: operand used before definition", name, i)
				}

				if i != len(n.Insts)-1 {
					return errors.Wrap(ErrMalformed, "block %v: inst %d: return is not the last instruction", name, i)
				}
			default:
				return errors.Wrap(ErrUnsupported, "block %v: inst %d: value kind %T", name, i, k)
			}

			placed.Set(v)
		}

		if _, ok := f.DFG.Value(n.Insts[len(n.Insts)-1]).(Return); !ok {
			return errors.Wrap(ErrMalformed, "block %v: does not end with return", name)
		}
	}

	return nil
}
