// Command rfunc compiles a single Rfun source file to x86-64 GAS assembly.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rfunc/internal/compiler"
	"rfunc/internal/parser"
	"rfunc/internal/util"
)

var (
	outPath string
	verbose bool
	threads int
)

func run(opt util.Options) error {
	src, err := util.ReadSource(opt)
	if err != nil {
		return fmt.Errorf("could not read source file: %w", err)
	}

	prog, err := parser.Parse(src)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	asm, err := compiler.Compile(opt, prog)
	if err != nil {
		return fmt.Errorf("compile error: %w", err)
	}

	if err := util.WriteOutput(opt, asm); err != nil {
		return fmt.Errorf("could not write output file: %w", err)
	}
	return nil
}

func defaultOut(src string) string {
	if strings.HasSuffix(src, ".rfun") {
		return strings.TrimSuffix(src, ".rfun") + ".s"
	}
	return src + ".s"
}

func main() {
	cmd := &cobra.Command{
		Use:   "rfunc <source-file>",
		Short: "compile an Rfun source file to x86-64 assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := util.Options{
				Src:     args[0],
				Out:     outPath,
				Verbose: verbose,
				Threads: threads,
			}
			if opt.Out == "" {
				opt.Out = defaultOut(opt.Src)
			}
			return run(opt)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output assembly path (default <source-file>.s)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "dump every pass's IR to stderr")
	cmd.Flags().IntVarP(&threads, "threads", "t", util.DefaultThreads, "worker count for the per-function pipeline stages")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
