// Package config provides configuration loading and management for nlggen.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/casework/CASE-Utility-Verifier/nlggen"
)

// Config represents the complete nlggen configuration
type Config struct {
	// Ontology is the Turtle file to generate from
	Ontology string `yaml:"ontology"`
	// Namespaces start a new type context in the restriction scan
	Namespaces []string     `yaml:"namespaces" validate:"required,min=1,dive,required"`
	Roots      RootsConfig  `yaml:"roots"`
	Output     OutputConfig `yaml:"output"`
	// Version is written into the generated module header
	Version string `yaml:"version" validate:"required"`
	// NativeTypes overrides the XSD to Python type table
	NativeTypes map[string]string `yaml:"native_types" validate:"dive,keys,required,endkeys,required"`
	// VerifyPython parses the generated module before writing it
	VerifyPython bool        `yaml:"verify_python"`
	XSD          XSDConfig   `yaml:"xsd"`
	Watch        WatchConfig `yaml:"watch"`
}

// RootsConfig names the classes anchoring the core and property-bundle categories
type RootsConfig struct {
	Core     string `yaml:"core" validate:"required,nefield=Property"`
	Property string `yaml:"property" validate:"required"`
}

// OutputConfig configures where generated artifacts are written
type OutputConfig struct {
	// Python is the generated module path ("-" for stdout)
	Python string `yaml:"python" validate:"required"`
	// Go is the generated Go package file (empty = skip)
	Go string `yaml:"go"`
	// GoPackage is the package name of the Go output
	GoPackage string `yaml:"go_package" validate:"required,goident"`
	// CaseAPIImport is the import path of the caseapi package
	CaseAPIImport string `yaml:"caseapi_import" validate:"required"`
	// Diagnostics is the diagnostics report path (empty = stderr log only)
	Diagnostics string `yaml:"diagnostics"`
	// ManifestDB is the SQLite audit database (empty = skip)
	ManifestDB string `yaml:"manifest_db"`
	// PlanSnapshot is the MessagePack plan snapshot (empty = skip)
	PlanSnapshot string `yaml:"plan_snapshot"`
}

// XSDConfig configures the external XSD helper
type XSDConfig struct {
	// Validator is the validator command; {schema} and {instance} are substituted
	Validator []string `yaml:"validator"`
	// File is the schema file written by `nlggen xsd`
	File string `yaml:"file"`
}

// WatchConfig configures `nlggen watch`
type WatchConfig struct {
	// Patterns are doublestar globs of files that trigger regeneration
	Patterns []string `yaml:"patterns" validate:"dive,required,globpattern"`
	// Debounce delays regeneration until changes settle
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

var configValidate *validator.Validate

var goIdentPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func init() {
	configValidate = validator.New()

	_ = configValidate.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return goIdentPattern.MatchString(fl.Field().String())
	})
	_ = configValidate.RegisterValidation("globpattern", func(fl validator.FieldLevel) bool {
		return doublestar.ValidatePattern(fl.Field().String())
	})
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	roots := nlggen.DefaultRoots()
	goDefaults := nlggen.DefaultGoRenderConfig()
	return &Config{
		Namespaces: append([]string(nil), nlggen.DefaultNamespaces...),
		Roots: RootsConfig{
			Core:     roots.Core,
			Property: roots.Property,
		},
		Output: OutputConfig{
			Python:        "nlg.py",
			GoPackage:     goDefaults.PackageName,
			CaseAPIImport: goDefaults.CaseAPIImport,
		},
		Version: nlggen.DefaultRenderConfig().Version,
		XSD: XSDConfig{
			File: "types.xsd",
		},
		Watch: WatchConfig{
			Patterns: []string{"**/*.ttl"},
			Debounce: 500 * time.Millisecond,
		},
	}
}

// ValidationError lists the configuration fields that failed validation
type ValidationError struct {
	Fields []string
	Cause  error
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Fields, "; ")
}

// Unwrap returns the underlying validator error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: []string{err.Error()}, Cause: err}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return &ValidationError{Fields: fields, Cause: err}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Ontology != "" && !filepath.IsAbs(config.Ontology) {
		config.Ontology = filepath.Join(filepath.Dir(path), config.Ontology)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Ontology != "" {
		c.Ontology = other.Ontology
	}
	if len(other.Namespaces) > 0 {
		c.Namespaces = other.Namespaces
	}
	if other.Version != "" {
		c.Version = other.Version
	}
	if other.VerifyPython {
		c.VerifyPython = true
	}

	// Roots
	if other.Roots.Core != "" {
		c.Roots.Core = other.Roots.Core
	}
	if other.Roots.Property != "" {
		c.Roots.Property = other.Roots.Property
	}

	// Output
	if other.Output.Python != "" {
		c.Output.Python = other.Output.Python
	}
	if other.Output.Go != "" {
		c.Output.Go = other.Output.Go
	}
	if other.Output.GoPackage != "" {
		c.Output.GoPackage = other.Output.GoPackage
	}
	if other.Output.CaseAPIImport != "" {
		c.Output.CaseAPIImport = other.Output.CaseAPIImport
	}
	if other.Output.Diagnostics != "" {
		c.Output.Diagnostics = other.Output.Diagnostics
	}
	if other.Output.ManifestDB != "" {
		c.Output.ManifestDB = other.Output.ManifestDB
	}
	if other.Output.PlanSnapshot != "" {
		c.Output.PlanSnapshot = other.Output.PlanSnapshot
	}

	// Native types merge key by key
	if len(other.NativeTypes) > 0 {
		if c.NativeTypes == nil {
			c.NativeTypes = make(map[string]string, len(other.NativeTypes))
		}
		for k, v := range other.NativeTypes {
			c.NativeTypes[k] = v
		}
	}

	// XSD
	if len(other.XSD.Validator) > 0 {
		c.XSD.Validator = other.XSD.Validator
	}
	if other.XSD.File != "" {
		c.XSD.File = other.XSD.File
	}

	// Watch
	if len(other.Watch.Patterns) > 0 {
		c.Watch.Patterns = other.Watch.Patterns
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}

// GenerateConfig converts the configuration into generator settings. The
// native type table is the default table with the configured overrides
// applied on top.
func (c *Config) GenerateConfig() nlggen.Config {
	native := make(map[string]string, len(nlggen.DefaultNativeTypes)+len(c.NativeTypes))
	for k, v := range nlggen.DefaultNativeTypes {
		native[k] = v
	}
	for k, v := range c.NativeTypes {
		native[k] = v
	}

	cfg := nlggen.DefaultGenerateConfig()
	cfg.Namespaces = c.Namespaces
	cfg.Plan = nlggen.PlanConfig{
		Roots:       nlggen.RootCategories{Core: c.Roots.Core, Property: c.Roots.Property},
		NativeTypes: native,
	}
	cfg.Python.Version = c.Version
	if c.Output.Go != "" {
		cfg.Go = &nlggen.GoRenderConfig{
			PackageName:   c.Output.GoPackage,
			CaseAPIImport: c.Output.CaseAPIImport,
			Version:       c.Version,
		}
	}
	return cfg
}
