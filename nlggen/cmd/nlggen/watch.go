package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/casework/CASE-Utility-Verifier/config"
	"github.com/casework/CASE-Utility-Verifier/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever a watched ontology file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Ontology == "" {
				return errors.New("watch needs ontology set in nlggen.yaml")
			}
			if dir == "" {
				dir = filepath.Dir(cfg.Ontology)
			}

			ctx := cmd.Context()
			a.regenerate(ctx, cfg, nil)

			w, err := watch.New(dir, watch.Options{
				Patterns: cfg.Watch.Patterns,
				Debounce: cfg.Watch.Debounce,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			a.logger.Info("watching", slog.String("dir", dir), slog.Any("patterns", cfg.Watch.Patterns))
			return w.Run(ctx, func(ctx context.Context, paths []string) {
				a.regenerate(ctx, cfg, paths)
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to watch (default: the ontology's directory)")
	return cmd
}

// regenerate runs one generation, logging rather than returning failures so
// the watch loop keeps going.
func (a *app) regenerate(ctx context.Context, cfg *config.Config, changed []string) {
	if len(changed) > 0 {
		a.logger.Info("ontology changed", slog.Any("paths", changed))
	}
	res, err := a.generate(ctx, cfg)
	if err != nil {
		a.logger.Error("generation failed", slog.String("error", err.Error()))
		return
	}
	a.logger.Info("generated",
		slog.String("out", cfg.Output.Python),
		slog.Int("functions", len(res.Plan.Functions())),
		slog.Int("diagnostics", res.Diagnostics.Len()))
}
