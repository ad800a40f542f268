package ir

import (
	"github.com/nikandfor/hacked/hfmt"
)

// Format appends the textual Koopa form of the program.
func Format(b []byte, p *Program) []byte {
	for i, fid := range p.FuncLayout() {
		if i != 0 {
			b = append(b, '\n')
		}

		b = formatFunc(b, p.Func(fid))
	}

	return b
}

func formatFunc(b []byte, f *Function) []byte {
	b = hfmt.Appendf(b, "fun %s(): %v {\n", f.Name, f.Ret)

	names := make(map[Value]int)

	for _, n := range f.Layout.Blocks() {
		b = hfmt.Appendf(b, "%s:\n", f.DFG.BasicBlock(n.BB).Name)

		for _, v := range n.Insts {
			switch k := f.DFG.Value(v).(type) {
			case Binary:
				id := len(names)
				names[v] = id

				b = hfmt.Appendf(b, "  %%%d = %v ", id, k.Op)
				b = formatOperand(b, f, names, k.LHS)
				b = append(b, ", "...)
				b = formatOperand(b, f, names, k.RHS)
			case Return:
				b = append(b, "  ret"...)

				if k.Value != NoValue {
					b = append(b, ' ')
					b = formatOperand(b, f, names, k.Value)
				}
			default:
				b = hfmt.Appendf(b, "  // %T", k)
			}

			b = append(b, '\n')
		}
	}

	b = append(b, "}\n"...)

	return b
}

func formatOperand(b []byte, f *Function, names map[Value]int, v Value) []byte {
	if k, ok := f.DFG.Value(v).(Integer); ok {
		return hfmt.Appendf(b, "%d", k.Value)
	}

	if id, ok := names[v]; ok {
		return hfmt.Appendf(b, "%%%d", id)
	}

	return hfmt.Appendf(b, "%%v%d", int(v))
}
