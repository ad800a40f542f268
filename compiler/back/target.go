package back

import (
	"os"

	"github.com/pelletier/go-toml"
	"tlog.app/go/errors"

	"github.com/slowlang/koopac/compiler/ir"
)

type (
	Reg string

	// Target names the registers the generator may use.
	Target struct {
		Entry string

		Zero Reg // always reads as zero
		Ret  Reg // return value

		Scratch []Reg // allocation order
	}

	targetFile struct {
		Entry   string   `toml:"entry"`
		Zero    string   `toml:"zero"`
		Ret     string   `toml:"ret"`
		Scratch []string `toml:"scratch"`
	}
)

func DefaultTarget() *Target {
	return &Target{
		Entry: "main",
		Zero:  "x0",
		Ret:   "a0",
		Scratch: []Reg{
			"t0", "t1", "t2", "t3", "t4", "t5", "t6",
			"a1", "a2", "a3", "a4", "a5", "a6", "a7",
		},
	}
}

func LoadTarget(name string) (*Target, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return ParseTarget(data)
}

// ParseTarget decodes a TOML target description.
// Missing keys keep their DefaultTarget values.
func ParseTarget(data []byte) (*Target, error) {
	var f targetFile

	err := toml.Unmarshal(data, &f)
	if err != nil {
		return nil, errors.Wrap(err, "decode target")
	}

	t := DefaultTarget()

	if f.Entry != "" {
		t.Entry = f.Entry
	}

	if f.Zero != "" {
		t.Zero = Reg(f.Zero)
	}

	if f.Ret != "" {
		t.Ret = Reg(f.Ret)
	}

	if f.Scratch != nil {
		t.Scratch = t.Scratch[:0]

		for _, r := range f.Scratch {
			t.Scratch = append(t.Scratch, Reg(r))
		}
	}

	err = t.Validate()
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Target) Validate() error {
	switch {
	case t.Entry == "":
		return errors.Wrap(ir.ErrMalformed, "target: empty entry name")
	case t.Zero == "":
		return errors.Wrap(ir.ErrMalformed, "target: empty zero register")
	case t.Ret == "":
		return errors.Wrap(ir.ErrMalformed, "target: empty return register")
	case t.Zero == t.Ret:
		return errors.Wrap(ir.ErrMalformed, "target: zero and return registers are the same")
	case len(t.Scratch) == 0:
		return errors.Wrap(ir.ErrMalformed, "target: no scratch registers")
	}

	seen := make(map[Reg]struct{}, len(t.Scratch))

	for _, r := range t.Scratch {
		switch r {
		case "":
			return errors.Wrap(ir.ErrMalformed, "target: empty scratch register")
		case t.Zero, t.Ret:
			return errors.Wrap(ir.ErrMalformed, "target: reserved register %v in scratch list", r)
		}

		if _, ok := seen[r]; ok {
			return errors.Wrap(ir.ErrMalformed, "target: duplicate scratch register %v", r)
		}

		seen[r] = struct{}{}
	}

	return nil
}
