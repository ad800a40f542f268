package back

import (
	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/koopac/compiler/ir"
	"github.com/slowlang/koopac/compiler/set"
)

type (
	// Regs maps values of one function to registers.
	// A hint lets a result take over its operand's register.
	Regs struct {
		t *Target

		idx  map[Reg]int // scratch register -> index in Target.Scratch
		free heap.Heap[int]
		used set.Bitmap[int]

		regs map[ir.Value]Reg
	}
)

func NewRegs(t *Target) *Regs {
	r := &Regs{
		t:    t,
		idx:  make(map[Reg]int, len(t.Scratch)),
		free: heap.Heap[int]{Less: regLess},
		used: set.MakeBitmap[int](len(t.Scratch)),
		regs: make(map[ir.Value]Reg),
	}

	for i, reg := range t.Scratch {
		r.idx[reg] = i
		r.free.Push(i)
	}

	return r
}

func (r *Regs) Lookup(v ir.Value) (Reg, bool) {
	reg, ok := r.regs[v]
	return reg, ok
}

// Alloc assigns a register to v.
// A scratch register hint is reused as is, otherwise the lowest free register is taken.
func (r *Regs) Alloc(v ir.Value, hint Reg) (reg Reg, err error) {
	if reg, ok := r.regs[v]; ok {
		return reg, nil
	}

	defer func() {
		tlog.V("regalloc").Printw("alloc register", "value", v, "reg", reg, "hint", hint, "used", r.used, "err", err, "from", loc.Callers(1, 3))
	}()

	if i, ok := r.idx[hint]; ok {
		r.used.Set(i)
		r.regs[v] = hint

		return hint, nil
	}

	for r.free.Len() != 0 {
		i := r.free.Pop()

		if r.used.IsSet(i) {
			continue
		}

		r.used.Set(i)

		reg = r.t.Scratch[i]
		r.regs[v] = reg

		return reg, nil
	}

	return "", errors.Wrap(ir.ErrUnsupported, "out of registers: %d in use", r.used.Size())
}

// Free returns a scratch register to the pool.
// Values already mapped to it keep the mapping, so reg must not be needed by them anymore.
func (r *Regs) Free(reg Reg) {
	i, ok := r.idx[reg]
	if !ok || !r.used.IsSet(i) {
		return
	}

	tlog.V("regalloc").Printw("free register", "reg", reg, "used", r.used, "from", loc.Callers(1, 3))

	r.used.Clear(i)
	r.free.Push(i)
}

func regLess(d []int, i, j int) bool {
	return d[i] < d[j]
}
