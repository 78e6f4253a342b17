package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "classgraph",
		Short:        "Import compiled Java classes into a linked class graph",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./classgraph.yaml)")
	flags.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity")
	flags.StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newDumpCmd(a))
	rootCmd.AddCommand(newDepsCmd(a))
	rootCmd.AddCommand(newLSPCmd(a))
	rootCmd.AddCommand(newExportCmd(a))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
