package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xyproto/plonk/internal/driver"
	"github.com/xyproto/plonk/internal/injector"
	"github.com/xyproto/plonk/internal/options"
	"github.com/xyproto/plonk/internal/plonklog"
	"github.com/xyproto/plonk/internal/watch"
	"github.com/xyproto/plonk/internal/workspace"
)

func newRunCommand() *cobra.Command {
	var opts options.Options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the reload library and run the target with it injected",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = verbose
			opts.Forward = forwardedArgs(cmd, args)

			if opts.Symbol == "" {
				return fmt.Errorf("--symbol is required for run")
			}

			log, err := plonklog.New(opts.Verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			gb := defaultGoBuilder()
			d := &driver.Driver{
				Builder:  gb,
				Loader:   &workspace.Loader{Root: gb.WorkspaceRoot},
				Injector: injector.New(),
				Logf:     log.Infof,
			}

			ctx := context.Background()
			if err := gb.Prepare(ctx); err != nil {
				return fmt.Errorf("preparing agent library: %w", err)
			}

			if !opts.Watch {
				return d.Run(ctx, opts)
			}

			loader := &workspace.Loader{Root: gb.WorkspaceRoot}
			dirs, err := loader.WatchDirs()
			if err != nil {
				return fmt.Errorf("discovering watch directories: %w", err)
			}

			loop := &watch.Loop{
				Dirs: dirs,
				Action: func(ctx context.Context) error {
					return d.Run(ctx, opts.WithoutWatch())
				},
				Logf: log.Infof,
			}
			return loop.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&opts.Package, "package", "p", ".", "package to build as the reload library")
	cmd.Flags().StringVarP(&opts.Bin, "bin", "b", "", "host binary to run, when the workspace has more than one")
	cmd.Flags().BoolVarP(&opts.Release, "release", "r", false, "build with the release optimization profile")
	cmd.Flags().StringVarP(&opts.Symbol, "symbol", "s", "", "logical function name to redirect (required)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "re-run on source changes")

	return cmd
}

// forwardedArgs uses cobra's ArgsLenAtDash to split arguments after a
// literal "--", pflag's native support for the sentinel SPEC_FULL.md §6
// names, replacing flapc's manual arg-scanning.
func forwardedArgs(cmd *cobra.Command, args []string) []string {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return nil
	}
	return args[dash:]
}
