package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDepsCmd(a *app) *cobra.Command {
	var transitive bool

	cmd := &cobra.Command{
		Use:   "deps <path> <class>",
		Short: "List the classes a class depends on",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.importPaths(cmd.Context(), args[:1])
			if err != nil {
				return err
			}
			class, ok := result.Classes.Get(args[1])
			if !ok {
				return fmt.Errorf("class %s not found", args[1])
			}

			w := cmd.OutOrStdout()
			if transitive {
				for _, c := range result.Classes.TransitiveDependencies(class) {
					fmt.Fprintln(w, c.Name())
				}
				return nil
			}
			for _, d := range class.DirectDependencies() {
				fmt.Fprintf(w, "%s\t%s\n", d.Kind, d.Target.Name())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&transitive, "transitive", "t", false, "follow dependencies transitively")

	return cmd
}
