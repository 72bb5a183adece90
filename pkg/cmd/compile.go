package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/pkg/compiler"
	"github.com/lumen-lang/lumen/pkg/diagnostics"
	"github.com/lumen-lang/lumen/pkg/resolver"
)

// dumpLirCmd compiles one entry file and writes its lowered module to disk,
// either as §6.5's LIR binary format or (with --emit=wasm) a WASM module.
var dumpLirCmd = &cobra.Command{
	Use:   "dump-lir [flags] file",
	Short: "Compile a Lumen file and write its lowered module to disk.",
	Long:  "Compile a Lumen file and write its lowered LIR module (or, with --emit=wasm, its WASM module) to disk.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}

		configureLogging(cmd)

		cfg := compiler.Config{Optimize: GetFlag(cmd, "opt")}
		loader := resolver.FileLoader{}
		output := GetString(cmd, "output")

		var (
			data       []byte
			compileErr *diagnostics.CompileError
			err        error
		)

		if GetString(cmd, "emit") == "wasm" {
			data, compileErr, err = compiler.CompileWasm(args[0], loader, cfg)
		} else {
			data, compileErr, err = compiler.CompileLIR(args[0], loader, cfg)
		}

		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		if compileErr != nil {
			sources := readSources(args)

			if writeErr := diagnostics.WriteText(os.Stdout, compileErr.Diagnostics(args[0]), sources); writeErr != nil {
				fmt.Println(writeErr)
			}

			os.Exit(1)
		}

		if err := os.WriteFile(output, data, 0o644); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(dumpLirCmd)
	dumpLirCmd.Flags().StringP("output", "o", "a.lir", "specify output file")
	dumpLirCmd.Flags().String("emit", "lir", "output kind: lir or wasm")
}
