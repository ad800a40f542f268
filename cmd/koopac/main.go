package main

import (
	"context"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/koopac/compiler"
	"github.com/slowlang/koopac/compiler/back"
)

func main() {
	koopaCmd := &cli.Command{
		Name:        "koopa",
		Description: "print the intermediate representation",
		Action:      modeAct(compiler.Koopa),
		Args:        cli.Args{},
		Flags:       flags(),
	}

	riscvCmd := &cli.Command{
		Name:        "riscv",
		Description: "generate risc-v assembly",
		Action:      modeAct(compiler.RISCV),
		Args:        cli.Args{},
		Flags: append(flags(),
			cli.NewFlag("target", "", "target description file (toml)"),
		),
	}

	llvmCmd := &cli.Command{
		Name:        "llvm",
		Description: "generate llvm ir",
		Action:      modeAct(compiler.LLVM),
		Args:        cli.Args{},
		Flags:       flags(),
	}

	formatCmd := &cli.Command{
		Name:        "format",
		Description: "print the syntax tree as source text",
		Action:      modeAct(compiler.Source),
		Args:        cli.Args{},
		Flags:       flags(),
	}

	app := &cli.Command{
		Name:        "koopac",
		Description: "koopac compiles syntax trees (yaml) to koopa ir, risc-v assembly or llvm ir",
		Commands: []*cli.Command{
			koopaCmd,
			riscvCmd,
			llvmCmd,
			formatCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func flags() []*cli.Flag {
	return []*cli.Flag{
		cli.NewFlag("output,o", "-", "output file"),
		cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
	}
}

func modeAct(mode compiler.Mode) func(*cli.Command) error {
	return func(c *cli.Command) error {
		return compileAct(c, mode)
	}
}

func compileAct(c *cli.Command, mode compiler.Mode) (err error) {
	tlog.SetVerbosity(c.String("verbosity"))

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	opts := compiler.Options{Mode: mode}

	if mode == compiler.RISCV && c.String("target") != "" {
		opts.Target, err = back.LoadTarget(c.String("target"))
		if err != nil {
			return errors.Wrap(err, "load target")
		}
	}

	if len(c.Args) == 0 {
		return errors.New("no input files")
	}

	var out []byte

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, a, opts)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		out = append(out, obj...)
	}

	return writeOutput(c.String("output"), out)
}

func writeOutput(name string, data []byte) (err error) {
	if name == "" || name == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}

	err = os.WriteFile(name, data, 0o644)
	if err != nil {
		return errors.Wrap(err, "write output")
	}

	return nil
}
