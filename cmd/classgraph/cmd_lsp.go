package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classgraph/java"
	"github.com/dhamidi/classgraph/lsp"
)

func newLSPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version, func(ctx context.Context, root string) (*java.Classes, error) {
				result, err := a.importPaths(ctx, []string{root})
				if err != nil {
					return nil, err
				}
				return result.Classes, nil
			})
			return server.RunStdio()
		},
	}
}
