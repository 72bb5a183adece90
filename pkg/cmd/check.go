package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/pkg/compiler"
	"github.com/lumen-lang/lumen/pkg/diagnostics"
	"github.com/lumen-lang/lumen/pkg/resolver"
)

// checkCmd is the explicit "check" subcommand; the root command runs the
// same behavior when invoked directly with a file list, per spec.md §6.2's
// "one command... accepts a list of files".
var checkCmd = &cobra.Command{
	Use:   "check [flags] file...",
	Short: "Check Lumen files and report diagnostics.",
	Run: func(cmd *cobra.Command, args []string) {
		runCheck(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// runCheck checks every file in args and reports the result in the format
// --format selects, then exits with §6.2's code: 0 if everything passed, 1
// if any file produced an error diagnostic.
func runCheck(cmd *cobra.Command, args []string) {
	configureLogging(cmd)

	if len(args) == 0 {
		fmt.Println(cmd.UsageString())
		os.Exit(2)
	}

	cfg := compiler.Config{Optimize: GetFlag(cmd, "opt")}
	loader := resolver.FileLoader{}

	summary := compiler.CheckFiles(args, loader, cfg)

	if err := writeSummary(cmd, summary, args); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	if summary.Errors > 0 {
		os.Exit(1)
	}
}

// writeSummary renders summary in the format --format names, the same three
// writers pkg/diagnostics exposes for §6.2's CLI output contract.
func writeSummary(cmd *cobra.Command, summary diagnostics.Summary, paths []string) error {
	switch GetString(cmd, "format") {
	case "json":
		return diagnostics.WriteJSON(os.Stdout, summary)
	case "junit":
		return diagnostics.WriteJUnit(os.Stdout, summary)
	default:
		sources := readSources(paths)

		for _, r := range summary.Results {
			if err := diagnostics.WriteText(os.Stdout, r.Diagnostics, sources); err != nil {
				return err
			}
		}

		return nil
	}
}

// readSources loads every path's extracted source code for text-mode
// snippet rendering, skipping a path that can't be read — its diagnostic
// (an invocation error recorded by CheckFiles) renders without a snippet.
func readSources(paths []string) map[string][]byte {
	sources := make(map[string][]byte, len(paths))

	for _, p := range paths {
		extracted, err := compiler.ReadSource(p)
		if err != nil {
			continue
		}

		sources[p] = []byte(extracted.Code)
	}

	return sources
}
