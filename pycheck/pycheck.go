// Package pycheck parses generated Python modules with tree-sitter and
// reports syntax errors and missing function definitions.
package pycheck

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// maxErrors bounds the errors collected from heavily malformed input.
const maxErrors = 50

// SyntaxError is one ERROR or MISSING node in the parse tree.
type SyntaxError struct {
	Line    int // 1-based
	Column  int // 0-based
	Message string
}

// String formats the error as "line:col: message".
func (e SyntaxError) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Report is the result of parsing one module.
type Report struct {
	Errors []SyntaxError
	// Functions are the names of top-level function definitions, in
	// source order.
	Functions []string
}

// Valid reports whether the module parsed without errors.
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// VerifyError is returned by Verify when a module has syntax errors or
// lacks expected functions.
type VerifyError struct {
	Errors  []SyntaxError
	Missing []string
}

// Error returns the error message for VerifyError.
func (e *VerifyError) Error() string {
	var parts []string
	if n := len(e.Errors); n > 0 {
		parts = append(parts, fmt.Sprintf("%d syntax error(s), first at %s", n, e.Errors[0]))
	}
	if n := len(e.Missing); n > 0 {
		parts = append(parts, fmt.Sprintf("%d function(s) not defined: %s", n, strings.Join(e.Missing, ", ")))
	}
	return "python module invalid: " + strings.Join(parts, "; ")
}

// Checker parses Python source. It is safe for concurrent use; every call
// gets its own parser.
type Checker struct{}

// New returns a Checker.
func New() *Checker {
	return &Checker{}
}

// Check parses src and collects its syntax errors and top-level functions.
func (c *Checker) Check(ctx context.Context, src []byte) (*Report, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse python: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	report := &Report{}
	collectErrors(root, src, &report.Errors, 0)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "function_definition" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil {
			report.Functions = append(report.Functions, name.Content(src))
		}
	}
	return report, nil
}

// Verify checks that src parses cleanly and defines every named function.
func (c *Checker) Verify(ctx context.Context, src []byte, functions []string) error {
	report, err := c.Check(ctx, src)
	if err != nil {
		return err
	}
	defined := make(map[string]bool, len(report.Functions))
	for _, name := range report.Functions {
		defined[name] = true
	}
	var missing []string
	for _, name := range functions {
		if !defined[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	if report.Valid() && len(missing) == 0 {
		return nil
	}
	return &VerifyError{Errors: report.Errors, Missing: missing}
}

func collectErrors(node *sitter.Node, src []byte, out *[]SyntaxError, depth int) {
	if depth > 1000 || len(*out) >= maxErrors {
		return
	}
	if node.IsError() || node.IsMissing() {
		p := node.StartPoint()
		msg := "syntax error"
		if node.IsMissing() {
			msg = "missing " + node.Type()
		} else if text := node.Content(src); text != "" && len(text) < 60 {
			msg = "unexpected " + strings.TrimSpace(text)
		}
		*out = append(*out, SyntaxError{Line: int(p.Row) + 1, Column: int(p.Column), Message: msg})
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectErrors(node.Child(i), src, out, depth+1)
	}
}
