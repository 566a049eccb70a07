package main

import (
	"github.com/spf13/cobra"

	"github.com/MartinPJB/BLOG-CMS/migrations"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			e, err := root.setup(ctx)
			if err != nil {
				return err
			}
			defer e.db.Close()

			if err := e.db.Migrate(ctx, migrations.FS, e.log); err != nil {
				return err
			}
			e.log.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}
