package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xyproto/plonk/internal/build"
	"github.com/xyproto/plonk/internal/plonklog"
)

// newBuildCommand implements the supplemented `plonk build` subcommand
// (SPEC_FULL.md §10): produce the reload-library artifact and exit,
// mirroring plonk.rs's build() step, never spawning a target.
func newBuildCommand() *cobra.Command {
	var pkg string
	var release bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the reload shared library without spawning a target",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := plonklog.New(verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			gb := defaultGoBuilder()
			ctx := context.Background()

			if err := gb.Prepare(ctx); err != nil {
				return fmt.Errorf("preparing agent library: %w", err)
			}

			artifact, err := gb.BuildLibrary(ctx, pkg, release, verbose)
			if err != nil {
				return fmt.Errorf("building reload library: %w", err)
			}

			log.Infow("built reload library", "path", artifact.LibraryPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pkg, "package", "p", ".", "package to build as the reload library")
	cmd.Flags().BoolVarP(&release, "release", "r", false, "build with the release optimization profile")

	return cmd
}

func defaultGoBuilder() *build.GoBuilder {
	return &build.GoBuilder{
		WorkspaceRoot:  ".",
		AgentSourceDir: "./cmd/plonk-agent",
	}
}
