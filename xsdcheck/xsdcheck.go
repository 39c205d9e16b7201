// Package xsdcheck builds an XSD schema from ontology property ranges and
// checks it, or single values against it, with an external XSD 1.1
// validator.
package xsdcheck

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/casework/CASE-Utility-Verifier/nlggen"
)

// Placeholders substituted into the validator command.
const (
	SchemaPlaceholder   = "{schema}"
	InstancePlaceholder = "{instance}"
)

// noInstance is passed as the instance file when only the schema is checked.
const noInstance = "n"

// DefaultCommand runs the XSD 1.1 validator jar.
var DefaultCommand = []string{"java", "-jar", "xsd11-validator.jar", "-sf", SchemaPlaceholder, "-if", InstancePlaceholder}

// ValidatorError reports a validator that could not be run or whose output
// could not be acted on.
type ValidatorError struct {
	Command string
	Output  string
	Cause   error
}

// Error returns the error message for ValidatorError.
func (e *ValidatorError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("xsd validator %q: %v", e.Command, e.Cause)
	}
	return fmt.Sprintf("xsd validator %q: %v\n%s", e.Command, e.Cause, e.Output)
}

// Unwrap returns the underlying cause of the ValidatorError.
func (e *ValidatorError) Unwrap() error {
	return e.Cause
}

// SchemaTypes returns the XSD type of every property with exactly one
// declared range. Multi-range and range-less properties are left out.
func SchemaTypes(h *nlggen.Hierarchy) map[string]string {
	out := make(map[string]string)
	for name, decl := range h.Properties {
		if len(decl.Ranges) == 1 {
			out[name] = decl.Ranges[0]
		}
	}
	return out
}

// GenerateSchema writes one xsd:element per property, sorted by name.
func GenerateSchema(w io.Writer, types map[string]string) error {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\" ?>\n")
	b.WriteString("<xsd:schema xmlns:xsd=\"http://www.w3.org/2001/XMLSchema\">\n")
	for _, name := range names {
		fmt.Fprintf(&b, "\t<xsd:element name=\"%s\" type=\"xsd:%s\"/>\n", escapeAttr(name), escapeAttr(types[name]))
	}
	b.WriteString("</xsd:schema>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSchemaFile writes the schema to path.
func WriteSchemaFile(path string, types map[string]string) error {
	var buf bytes.Buffer
	if err := GenerateSchema(&buf, types); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	return nil
}

func escapeAttr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Validator runs an external XSD validator against a schema file.
type Validator struct {
	// Schema is the XSD file under check.
	Schema string
	// Command is the validator invocation with placeholders.
	Command []string
	Logger  *slog.Logger
}

// New returns a Validator for schema. A nil command means DefaultCommand.
func New(schema string, command []string, logger *slog.Logger) *Validator {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Validator{Schema: schema, Command: command, Logger: logger}
}

// run executes the validator and returns its combined output. A non-zero
// exit status is not an error; validators report problems in their output.
func (v *Validator) run(ctx context.Context, instance string) (string, error) {
	args := make([]string, len(v.Command))
	for i, a := range v.Command {
		a = strings.ReplaceAll(a, SchemaPlaceholder, v.Schema)
		args[i] = strings.ReplaceAll(a, InstancePlaceholder, instance)
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", &ValidatorError{Command: strings.Join(args, " "), Output: string(out), Cause: err}
	}
	return string(out), nil
}

// FindError runs the validator on the schema alone and returns the line
// number of the first reported error, or 0 when the schema is valid.
func (v *Validator) FindError(ctx context.Context) (int, error) {
	out, err := v.run(ctx, noInstance)
	if err != nil {
		return 0, err
	}
	line, found := errorLine(out)
	if !found {
		return 0, nil
	}
	if line <= 0 {
		return 0, &ValidatorError{Command: strings.Join(v.Command, " "), Output: out, Cause: errors.New("error reported without a line number")}
	}
	return line, nil
}

// errorLine returns the first numeric ':'-separated field of the first
// "[Error]" line in the validator output.
func errorLine(out string) (int, bool) {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		text := sc.Text()
		if !strings.Contains(text, "[Error]") {
			continue
		}
		for _, field := range strings.Split(text, ":") {
			if n, err := strconv.Atoi(strings.TrimSpace(field)); err == nil {
				return n, true
			}
		}
		return 0, true
	}
	return 0, false
}

// StripInvalid repeatedly validates the schema and deletes the line the
// validator complains about, until the schema is accepted. It returns the
// removed lines in removal order. Each pass removes one line, so it stops
// after at most as many passes as the file has lines.
func (v *Validator) StripInvalid(ctx context.Context) ([]string, error) {
	var removed []string
	for {
		line, err := v.FindError(ctx)
		if err != nil {
			return removed, err
		}
		if line == 0 {
			return removed, nil
		}

		data, err := os.ReadFile(v.Schema)
		if err != nil {
			return removed, fmt.Errorf("read schema: %w", err)
		}
		lines := strings.SplitAfter(string(data), "\n")
		if line > len(lines) || strings.TrimSpace(lines[line-1]) == "" {
			return removed, &ValidatorError{
				Command: strings.Join(v.Command, " "),
				Cause:   fmt.Errorf("reported line %d is not a schema line", line),
			}
		}
		v.Logger.Info("removing invalid schema line",
			slog.Int("line", line),
			slog.String("text", strings.TrimSpace(lines[line-1])),
			slog.String("schema", v.Schema))
		removed = append(removed, strings.TrimSpace(lines[line-1]))
		lines = append(lines[:line-1], lines[line:]...)
		if err := os.WriteFile(v.Schema, []byte(strings.Join(lines, "")), 0o644); err != nil {
			return removed, fmt.Errorf("write schema: %w", err)
		}
	}
}

// Validate checks one value as an instance of the named schema element.
func (v *Validator) Validate(ctx context.Context, element, value string) (bool, error) {
	var doc bytes.Buffer
	enc := xml.NewEncoder(&doc)
	start := xml.StartElement{Name: xml.Name{Local: element}}
	if err := enc.EncodeElement(value, start); err != nil {
		return false, fmt.Errorf("encode instance: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(v.Schema), "instance-*.xml")
	if err != nil {
		return false, fmt.Errorf("create instance: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if _, err := f.Write(doc.Bytes()); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write instance: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("write instance: %w", err)
	}

	out, err := v.run(ctx, f.Name())
	if err != nil {
		return false, err
	}
	if strings.Contains(out, "[Error]") {
		v.Logger.Debug("value rejected", slog.String("element", element), slog.String("output", strings.TrimSpace(out)))
		return false, nil
	}
	return true, nil
}
