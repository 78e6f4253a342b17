package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classgraph/format"
)

func newDumpCmd(a *app) *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <path> <class>",
		Short: "Dump one class of the imported graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, ok := format.New(dumpFormat, cmd.OutOrStdout())
			if !ok {
				return fmt.Errorf("unknown format: %s (expected json or line)", dumpFormat)
			}

			result, err := a.importPaths(cmd.Context(), args[:1])
			if err != nil {
				return err
			}
			class, ok := result.Classes.Get(args[1])
			if !ok {
				return fmt.Errorf("class %s not found", args[1])
			}
			if err := enc.Encode(class); err != nil {
				return fmt.Errorf("encode %s: %w", dumpFormat, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "line", "output format (json, line)")

	return cmd
}
