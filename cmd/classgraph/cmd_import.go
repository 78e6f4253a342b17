package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classgraph/importer"
)

func newImportCmd(a *app) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import class files and report how complete the graph is",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.importPaths(cmd.Context(), args)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), result, details)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "list every degraded site")

	return cmd
}

func printSummary(w io.Writer, result *importer.Result, details bool) {
	report := result.Classes.Report()

	fmt.Fprintf(w, "session:               %s\n", result.SessionID)
	fmt.Fprintf(w, "imported classes:      %d\n", len(result.Classes.Imported()))
	fmt.Fprintf(w, "skipped files:         %d\n", len(result.FileErrors))
	fmt.Fprintf(w, "stub classes:          %d\n", len(report.Stubs))
	fmt.Fprintf(w, "unresolved accesses:   %d\n", len(report.UnresolvedAccesses))
	fmt.Fprintf(w, "unknown type bounds:   %d\n", len(report.UnknownBoundVariables))
	fmt.Fprintf(w, "signature fallbacks:   %d\n", len(report.SignatureErrors))
	fmt.Fprintf(w, "unresolved enclosing:  %d\n", len(report.UnresolvedEnclosing))
	fmt.Fprintf(w, "duration:              %s\n", result.Duration)

	if !details {
		return
	}
	for _, fe := range result.FileErrors {
		fmt.Fprintf(w, "skipped\t%s\t%s\n", fe.URI, fe.Err)
	}
	for _, name := range report.Stubs {
		fmt.Fprintf(w, "stub\t%s\n", name)
	}
	for _, a := range report.UnresolvedAccesses {
		fmt.Fprintf(w, "unresolved\t%s\n", a)
	}
	for _, v := range report.UnknownBoundVariables {
		fmt.Fprintf(w, "unknown-bound\t%s\t%s\n", v.Name, v.Site)
	}
	for _, f := range report.SignatureErrors {
		fmt.Fprintf(w, "signature\t%s\t%s\n", f.Site, f.Err)
	}
	for _, name := range report.UnresolvedEnclosing {
		fmt.Fprintf(w, "enclosing\t%s\n", name)
	}
}
