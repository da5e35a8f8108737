package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/palfa/commondb/pkg/commondb"
	"github.com/palfa/commondb/pkg/config"
)

func newInitDBCommand(ctx *commandContext) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the common DB tables and loader functions",
		Long: "Apply the common DB schema to a local SQLite or development PostgreSQL " +
			"database. Production common DB instances are managed separately.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := ctx.connect(cmd.Context(), target)
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := commondb.Migrate(cmd.Context(), conn.DB(), ctx.log().Named("migrate"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(out, "Applied %s\n", v)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", config.DefaultTarget, "Logical database target")
	return cmd
}
