package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/casework/CASE-Utility-Verifier/audit"
	"github.com/casework/CASE-Utility-Verifier/config"
	"github.com/casework/CASE-Utility-Verifier/nlggen"
	"github.com/casework/CASE-Utility-Verifier/pycheck"
)

type generateFlags struct {
	out         string
	goOut       string
	goPackage   string
	diagnostics string
	manifestDB  string
	planOut     string
	verify      bool
	versionTag  string
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate [ontology.ttl]",
		Short: "Generate the validator module from an ontology",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Ontology = args[0]
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Ontology == "" {
				return errors.New("no ontology given: pass a path or set ontology in nlggen.yaml")
			}

			res, err := a.generate(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if cfg.Output.Python != "-" {
				printSummary(a.stdout, cfg, res)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.out, "out", "o", "", `Python module path ("-" for stdout)`)
	cmd.Flags().StringVar(&f.goOut, "go-out", "", "also write the Go constructor package to this file")
	cmd.Flags().StringVar(&f.goPackage, "go-package", "", "package name of the Go output")
	cmd.Flags().StringVar(&f.diagnostics, "diagnostics", "", "write the diagnostics report to this file")
	cmd.Flags().StringVar(&f.manifestDB, "manifest-db", "", "record the run in this SQLite audit database")
	cmd.Flags().StringVar(&f.planOut, "plan-out", "", "write a MessagePack plan snapshot to this file")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "parse the generated module before writing it")
	cmd.Flags().StringVar(&f.versionTag, "version-tag", "", "ontology version written into the module header")
	return cmd
}

// apply merges the flags that were set on the command line into cfg.
func (f *generateFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.Python = f.out
	}
	if flags.Changed("go-out") {
		cfg.Output.Go = f.goOut
	}
	if flags.Changed("go-package") {
		cfg.Output.GoPackage = f.goPackage
	}
	if flags.Changed("diagnostics") {
		cfg.Output.Diagnostics = f.diagnostics
	}
	if flags.Changed("manifest-db") {
		cfg.Output.ManifestDB = f.manifestDB
	}
	if flags.Changed("plan-out") {
		cfg.Output.PlanSnapshot = f.planOut
	}
	if flags.Changed("verify") {
		cfg.VerifyPython = f.verify
	}
	if flags.Changed("version-tag") {
		cfg.Version = f.versionTag
	}
}

// generate runs the pipeline and writes every configured artifact.
func (a *app) generate(ctx context.Context, cfg *config.Config) (*nlggen.Result, error) {
	gen := cfg.GenerateConfig()
	gen.Logger = a.logger
	if cfg.VerifyPython {
		gen.Verifier = pycheck.New()
	}

	res, err := nlggen.Generate(ctx, cfg.Ontology, gen)
	if err != nil {
		return nil, err
	}
	res.Diagnostics.Log(a.logger)

	if err := a.writeOutput(cfg.Output.Python, res.Python); err != nil {
		return nil, err
	}
	if cfg.Output.Go != "" {
		if err := a.writeOutput(cfg.Output.Go, res.Go); err != nil {
			return nil, err
		}
	}
	if cfg.Output.Diagnostics != "" {
		if err := writeWith(cfg.Output.Diagnostics, func(w io.Writer) error {
			_, err := res.Diagnostics.WriteTo(w)
			return err
		}); err != nil {
			return nil, err
		}
	}
	if cfg.Output.PlanSnapshot != "" {
		snap := res.Snapshot(cfg.Version, cfg.Ontology)
		if err := writeWith(cfg.Output.PlanSnapshot, func(w io.Writer) error {
			return nlggen.EncodeSnapshot(w, snap)
		}); err != nil {
			return nil, err
		}
	}
	if cfg.Output.ManifestDB != "" {
		if err := a.record(ctx, cfg, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (a *app) record(ctx context.Context, cfg *config.Config, res *nlggen.Result) error {
	store, err := audit.Open(ctx, cfg.Output.ManifestDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.Record(ctx, cfg.Version, cfg.Ontology, res)
	if err != nil {
		return err
	}
	a.logger.Info("recorded run",
		slog.String("id", run.ID),
		slog.String("db", cfg.Output.ManifestDB),
		slog.Int("assertions", run.Assertions))
	return nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func (a *app) writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := a.stdout.Write(data)
		return err
	}
	return writeWith(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeWith(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
