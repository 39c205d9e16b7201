package nlggen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/casework/CASE-Utility-Verifier/ontology"
)

// Verifier checks a rendered Python module before it is handed back, and
// reports which of the expected functions it does not define.
type Verifier interface {
	Verify(ctx context.Context, source []byte, functions []string) error
}

// Config holds the settings for one generation run.
type Config struct {
	// Namespaces are the ontology namespaces the restriction scan keys on.
	Namespaces []string
	Plan       PlanConfig
	Python     RenderConfig
	// Go, when set, also renders the Go constructor package.
	Go *GoRenderConfig
	// Verifier, when set, must accept the rendered Python module.
	Verifier Verifier
	Logger   *slog.Logger
}

// DefaultGenerateConfig returns the settings used by the CLI.
func DefaultGenerateConfig() Config {
	return Config{
		Namespaces: DefaultNamespaces,
		Plan:       DefaultPlanConfig(),
		Python:     DefaultRenderConfig(),
	}
}

// Result is everything a generation run produces.
type Result struct {
	Python      []byte
	Go          []byte
	Hierarchy   *Hierarchy
	Cardinality *CardinalityTable
	Plan        *Plan
	Diagnostics *Diagnostics
}

// Snapshot packages the plan and diagnostics of a run.
func (r *Result) Snapshot(version, source string) *Snapshot {
	return &Snapshot{
		Version:     version,
		Source:      source,
		Plan:        r.Plan,
		Diagnostics: r.Diagnostics.Entries(),
	}
}

// Generate runs the full pipeline on an ontology file. Only a failure to
// load the ontology, read it for restrictions, or render is fatal; every
// other problem is recorded in the result's diagnostics.
func Generate(ctx context.Context, path string, cfg Config) (*Result, error) {
	h, err := ontology.Load(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read restrictions: %w", err)
	}
	defer func() { _ = f.Close() }()

	if cfg.Python.Source == "" {
		cfg.Python.Source = path
	}
	logLoaded(cfg.logger(), h)
	return run(ctx, h, f, cfg)
}

// GenerateSource runs the full pipeline on in-memory Turtle source.
func GenerateSource(ctx context.Context, name string, data []byte, cfg Config) (*Result, error) {
	h, err := ontology.Parse(name, data)
	if err != nil {
		return nil, err
	}
	if cfg.Python.Source == "" {
		cfg.Python.Source = name
	}
	logLoaded(cfg.logger(), h)
	return run(ctx, h, bytes.NewReader(data), cfg)
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

func logLoaded(logger *slog.Logger, h *ontology.Handle) {
	prefixes := h.Prefixes()
	labels := make([]string, 0, len(prefixes))
	for _, label := range prefixes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	logger.Debug("loaded ontology",
		slog.String("path", h.Path),
		slog.Int("triples", h.Len()),
		slog.Any("prefixes", labels))
}

func run(ctx context.Context, src Source, restrictions io.Reader, cfg Config) (*Result, error) {
	logger := cfg.logger()
	diags := NewDiagnostics()

	hierarchy := BuildHierarchy(src, cfg.Plan.Roots, diags)
	logger.Debug("resolved hierarchy",
		slog.Int("types", len(hierarchy.Types)),
		slog.Int("properties", len(hierarchy.Properties)))

	card, err := ParseRestrictions(restrictions, cfg.Namespaces)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed restrictions", slog.Int("types", len(card.Types())))

	named := ResolveNames(hierarchy, cfg.Plan.Roots, diags)
	plan := BuildPlan(named, card, cfg.Plan, diags)
	logger.Debug("built plan",
		slog.Int("functions", len(plan.Functions())),
		slog.Int("assertions", len(plan.Manifest)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Hierarchy:   named,
		Cardinality: card,
		Plan:        plan,
		Diagnostics: diags,
	}

	var py bytes.Buffer
	if err := Render(&py, plan, cfg.Python); err != nil {
		return nil, err
	}
	res.Python = py.Bytes()

	if cfg.Verifier != nil {
		names := make([]string, 0, len(plan.Functions()))
		for _, fn := range plan.Functions() {
			names = append(names, fn.Name)
		}
		if err := cfg.Verifier.Verify(ctx, res.Python, names); err != nil {
			return nil, &RenderError{Target: "python", Cause: err}
		}
	}

	if cfg.Go != nil {
		goCfg := *cfg.Go
		if goCfg.Source == "" {
			goCfg.Source = cfg.Python.Source
		}
		if goCfg.Version == "" {
			goCfg.Version = cfg.Python.Version
		}
		var out bytes.Buffer
		if err := RenderGo(&out, plan, goCfg); err != nil {
			return nil, err
		}
		res.Go = out.Bytes()
	}
	return res, nil
}
