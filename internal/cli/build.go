package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boycaught/eleventy/pkg/build"
	"github.com/boycaught/eleventy/pkg/errors"
	"github.com/boycaught/eleventy/pkg/events"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		changed string
		noCache bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site",
		Long: `Build the site from the configured input directory.

Documents are ordered so that any document reading a collection renders
after every document contributing to it. With --changed, only documents
affected by the given file are re-rendered, using the dependency graph
recorded by earlier builds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), changed, noCache, dryRun)
		},
	}

	cmd.Flags().StringVar(&changed, "changed", "", "rebuild incrementally for a single changed file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable persistent caching")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render without writing output files")

	return cmd
}

// runBuild executes one build pass and writes the rendered output.
func (c *CLI) runBuild(ctx context.Context, changed string, noCache, dryRun bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config %s: %w", c.ConfigPath, err)
	}

	bus := events.NewBus()
	st, err := newSite(cfg, bus)
	if err != nil {
		return fmt.Errorf("initialize site: %w", err)
	}

	runner, err := c.newRunner(ctx, cfg, bus, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Compiles = st.compiles

	if changed != "" {
		if _, err := runner.LoadUses(ctx, cfg.Title); err != nil {
			c.Logger.Warn("could not restore dependency graph", "err", err)
		}
	}

	docs, err := st.documents(cfg)
	if err != nil {
		return fmt.Errorf("discover documents: %w", err)
	}
	if len(docs) == 0 {
		printInfo("No documents under %s", cfg.InputDir)
		return nil
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building %d documents...", len(docs)))
	spinner.Start()

	tracker := newProgress(c.Logger)
	result, buildErr := runner.Execute(ctx, docs, build.Options{
		ChangedPath:        changed,
		IgnoreInitialBuild: cfg.IgnoreInitialBuild,
		Project:            cfg.Title,
		Logger:             c.Logger,
	})
	spinner.Stop()
	if result == nil {
		return buildErr
	}
	tracker.done(fmt.Sprintf("Rendered %d documents", result.Stats.RenderCount))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	written := 0
	if !dryRun {
		if written, err = st.writeOutputs(result.Outputs); err != nil {
			return err
		}
	}

	if err := runner.SaveUses(ctx, cfg.Title); err != nil {
		c.Logger.Warn("could not persist dependency graph", "err", err)
	}

	if buildErr != nil {
		var agg *errors.BuildError
		if errors.As(buildErr, &agg) {
			for _, path := range agg.Paths() {
				printError("%s: %s", path, errors.UserMessage(agg.Failures[path]))
			}
		}
		return buildErr
	}

	printSuccess("Build complete")
	printDetail("Output: %s", cfg.OutputDir)
	printBuildStats(written, result.Stats.RenderCount, result.Stats.SkippedCount)
	printNewline()
	printNextStep("Serve", "eleventy serve")

	return nil
}
