package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/pkg/compiler"
	"github.com/lumen-lang/lumen/pkg/diagnostics"
	"github.com/lumen-lang/lumen/pkg/resolver"
	"github.com/lumen-lang/lumen/pkg/toolprovider"
)

// runCmd compiles one entry file and executes a named cell against it, the
// expanded CLI's third subcommand alongside check and dump-lir.
var runCmd = &cobra.Command{
	Use:   "run [flags] file",
	Short: "Compile a Lumen file and execute one of its cells.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}

		configureLogging(cmd)

		cfg := compiler.Config{Optimize: GetFlag(cmd, "opt")}
		loader := resolver.FileLoader{}
		cell := GetString(cmd, "cell")

		val, compileErr, vmErr, err := compiler.Run(args[0], loader, cfg, toolprovider.NewRegistry(), cell, nil)
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

		if vmErr != nil {
			fmt.Println(vmErr)
			os.Exit(1)
		}

		fmt.Println(val.AsString())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("cell", "main", "name of the cell to execute")
}
