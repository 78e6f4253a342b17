package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classgraph/export"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the imported graph to another store",
	}
	cmd.AddCommand(newExportNeo4jCmd(a))
	return cmd
}

func newExportNeo4jCmd(a *app) *cobra.Command {
	var (
		uri       string
		user      string
		password  string
		database  string
		clean     bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "neo4j <path>...",
		Short: "Load classes, members and their relationships into Neo4j",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("NEO4J_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("--password or NEO4J_PASSWORD is required")
			}

			ctx := cmd.Context()
			result, err := a.importPaths(ctx, args)
			if err != nil {
				return err
			}

			runner, err := export.NewNeo4jRunner(ctx, uri, user, password, database)
			if err != nil {
				return err
			}
			defer runner.Close(ctx)

			exporter := export.NewExporter(runner, batchSize)
			if clean {
				if err := exporter.Clean(ctx); err != nil {
					return err
				}
			}
			if err := exporter.CreateIndexes(ctx); err != nil {
				return err
			}
			stats, err := exporter.Export(ctx, result.Classes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d classes, %d members, %d dependencies, %d accesses\n",
				stats.Classes, stats.Members, stats.Dependencies, stats.MemberAccesses+stats.ClassAccesses)
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "bolt://localhost:7687", "Neo4j bolt URI")
	cmd.Flags().StringVar(&user, "user", "neo4j", "Neo4j username")
	cmd.Flags().StringVar(&password, "password", "", "Neo4j password (default $NEO4J_PASSWORD)")
	cmd.Flags().StringVar(&database, "database", "", "Neo4j database (default: server default)")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove previously exported classes first")
	cmd.Flags().IntVar(&batchSize, "batch-size", export.DefaultBatchSize, "rows per UNWIND statement")

	return cmd
}
