package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"mentor-booking/internal/infra/db"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/pkg/errs"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var (
		dir      string
		useAtlas bool
		devURL   string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Apply the SQL files under the migrations directory to DB_*.

By default every file is executed in name order; the files are re-runnable.
With --atlas the schema is applied declaratively by the atlas CLI, which
diffs the live database against the files and only runs what is missing.

Examples:
  bookingctl migrate
  bookingctl migrate --atlas --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			if useAtlas {
				return atlasApply(ctx, cmd, cfg.DB, dir, devURL, dryRun)
			}
			if dryRun {
				return errs.New("--dry-run needs --atlas")
			}

			pool, cleanup, err := db.Connect(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer cleanup()

			applied, err := db.ApplyMigrations(ctx, pool, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration file(s)\n", len(applied))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory holding the .sql schema files")
	cmd.Flags().BoolVar(&useAtlas, "atlas", false, "apply with the atlas CLI instead of executing files")
	cmd.Flags().StringVar(&devURL, "dev-url", "docker://postgres/17/dev", "atlas dev database used for diffing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the planned statements without applying (atlas only)")

	return cmd
}

func atlasApply(ctx context.Context, cmd *cobra.Command, dbCfg config.DBConfig, dir, devURL string, dryRun bool) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return errs.Wrapf(err, "failed to resolve migrations dir %s", dir)
	}
	client, err := atlasexec.NewClient(".", "atlas")
	if err != nil {
		return errs.Wrap(err, "failed to init atlas client")
	}

	res, err := client.SchemaApply(ctx, &atlasexec.SchemaApplyParams{
		URL:         dbCfg.BuildDSN(),
		To:          "file://" + absDir,
		DevURL:      devURL,
		DryRun:      dryRun,
		AutoApprove: true,
	})
	if err != nil {
		return errs.Wrap(err, "atlas schema apply failed")
	}

	out := cmd.OutOrStdout()
	if dryRun {
		for _, stmt := range res.Changes.Pending {
			fmt.Fprintln(out, stmt)
		}
		fmt.Fprintf(out, "%d statement(s) pending\n", len(res.Changes.Pending))
		return nil
	}
	fmt.Fprintf(out, "applied %d statement(s)\n", len(res.Changes.Applied))
	return nil
}
