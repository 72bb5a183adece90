package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lumen-check",
	Short: "A compiler and checker for the Lumen language.",
	Long:  "A compiler, checker, and toolbox for Lumen cells authored inside Markdown documents.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("lumen-check ")
			if Version != "" {
				// Built via "make"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				// Unknown, perhaps "go run"
				fmt.Printf("(unknown version)")
			}
			fmt.Println()

			return
		}

		if len(args) == 0 {
			fmt.Print(cmd.UsageString())
			return
		}

		runCheck(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().String("format", "text", "output format: text, junit, or json")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("opt", true, "run the peephole optimizer over lowered LIR")
	rootCmd.PersistentFlags().Bool("trace", false, "log one line per executed VM instruction")
}

// configureLogging applies --verbose and --trace to the shared logrus
// logger, the same call site shape as the teacher's pkg/cmd/test.go.
func configureLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "trace") {
		log.SetLevel(log.TraceLevel)
	} else if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}
