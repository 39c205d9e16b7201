package nlggen

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// RenderConfig specifies the settings for generating the Python module.
type RenderConfig struct {
	// Version is the ontology version written into the module header.
	Version string
	// Source is the ontology path named in the header; only its base name is used.
	Source string
	// ModuleName is the Python module providing the graph API.
	ModuleName string
}

// DefaultRenderConfig returns the settings used by the CLI.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{Version: "0.1.0", ModuleName: "case"}
}

// Render writes the Python validator module for a plan.
func Render(w io.Writer, plan *Plan, cfg RenderConfig) error {
	if cfg.ModuleName == "" {
		cfg.ModuleName = "case"
	}
	data := &pyRenderData{
		Version:    cfg.Version,
		Source:     filepath.Base(cfg.Source),
		ModuleName: cfg.ModuleName,
	}
	if cfg.Source == "" {
		data.Source = "ontology"
	}
	for _, g := range plan.Groups {
		gctx := pyGroupCtx{Title: g.Title}
		for _, fn := range g.Functions {
			gctx.Functions = append(gctx.Functions, buildPyFunctionCtx(fn, cfg.ModuleName))
		}
		data.Groups = append(data.Groups, gctx)
	}
	if err := pyTemplate.Execute(w, data); err != nil {
		return &RenderError{Target: "python", Cause: err}
	}
	return nil
}

// --- Template context types ---

type pyRenderData struct {
	Version    string
	Source     string
	ModuleName string
	Groups     []pyGroupCtx
}

type pyGroupCtx struct {
	Title     string
	Functions []pyFunctionCtx
}

type pyFunctionCtx struct {
	Signature string
	Doc       []string
	Body      []string
	Return    string
}

// --- Context builders ---

const indent = "    "

func buildPyFunctionCtx(fn FunctionSpec, module string) pyFunctionCtx {
	ctx := pyFunctionCtx{}

	args := []string{"case_doc"}
	switch fn.Bucket {
	case BucketSub:
		args = append(args, "parent_object")
	case BucketProp:
		args = []string{"core_object"}
	}
	for _, p := range fn.Params {
		args = append(args, p.Name+"=MISSING")
	}
	ctx.Signature = fmt.Sprintf("def %s(%s):", fn.Name, strings.Join(args, ", "))

	for _, p := range fn.Params {
		line := fmt.Sprintf(":param %s: %s", p.Name, p.Phrase)
		if p.Check == CheckNone {
			line += " Not checked (" + p.Unchecked + ")."
		}
		ctx.Doc = append(ctx.Doc, line)
	}
	ctx.Doc = append(ctx.Doc, fmt.Sprintf(":return: A %s object.", fn.Returns))

	if fn.Bucket == BucketSub {
		ctx.Body = append(ctx.Body, assertLines(
			fmt.Sprintf("isinstance(parent_object, %s.%s) and parent_object.type == %s", module, fn.ParentWrapper, pyString(fn.Parent)),
			fmt.Sprintf("[%s] parent_object must be of type %s.", fn.Name, fn.Parent),
		)...)
	}

	for _, p := range fn.Params {
		if !p.Required || p.Check == CheckNone {
			continue
		}
		ctx.Body = append(ctx.Body, assertLines(
			fmt.Sprintf("not isinstance(%s, Missing)", p.Name),
			fmt.Sprintf("[%s] %s is required.", fn.Name, p.Property),
		)...)
		ctx.Body = append(ctx.Body, typeAssertions(fn.Name, p, module)...)
	}
	for _, p := range fn.Params {
		switch {
		case p.Check == CheckNone:
			ctx.Body = append(ctx.Body, "# NOCHECK:"+p.Name)
		case !p.Required:
			ctx.Body = append(ctx.Body, fmt.Sprintf("if not isinstance(%s, Missing):", p.Name))
			for _, line := range typeAssertions(fn.Name, p, module) {
				ctx.Body = append(ctx.Body, indent+line)
			}
		}
	}

	call := fmt.Sprintf("return %s.%s(%s", fn.Receiver, fn.Factory, pyString(fn.Type))
	if len(fn.Params) > 0 {
		kv := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			kv[i] = fmt.Sprintf("%s: %s", pyString(p.Property), p.Name)
		}
		call += fmt.Sprintf(", **_present({%s})", strings.Join(kv, ", "))
	}
	ctx.Return = call + ")"
	return ctx
}

// typeAssertions renders the type checks for one parameter, without the
// presence check.
func typeAssertions(fnName string, p ParamSpec, module string) []string {
	var single func(v string) string
	switch p.Check {
	case CheckCase:
		single = func(v string) string { return fmt.Sprintf("isinstance(%s, %s.%s)", v, module, p.Wrapper) }
	case CheckNLG:
		single = func(v string) string {
			return fmt.Sprintf("isinstance(%s, %s.%s) and %s.type == %s", v, module, p.Wrapper, v, pyString(p.RangeType))
		}
	default:
		single = func(v string) string { return fmt.Sprintf("isinstance(%s, %s)", v, p.NativeType) }
	}

	if !p.List {
		return assertLines(single(p.Name),
			fmt.Sprintf("[%s] %s must be of type %s.", fnName, p.Property, p.RangeType))
	}
	lines := assertLines(fmt.Sprintf("isinstance(%s, list)", p.Name),
		fmt.Sprintf("[%s] %s must be of type List of %s.", fnName, p.Property, p.RangeType))
	return append(lines, assertLines(
		fmt.Sprintf("all(%s for i in %s)", single("i"), p.Name),
		fmt.Sprintf("[%s] %s must be of type List of %s.", fnName, p.Property, p.RangeType),
	)...)
}

func assertLines(cond, message string) []string {
	return []string{
		"assert " + cond + ",\\",
		indent + pyString(message),
	}
}

// pyString quotes s as a Python string literal.
func pyString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			if r < 0x20 {
				b.WriteString(`\x`)
				b.WriteString(strconv.FormatInt(int64(r)+0x100, 16)[1:])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// --- Python template ---

var pyTemplate = template.Must(template.New("nlg").Parse(`# CASE NLG VERIFIER v{{.Version}}
# Code generated by nlggen from {{.Source}}. DO NOT EDIT.

"""
Ontology-checked constructors for CASE objects.

Each function creates one CASE object of the ontology type in its name and
asserts the cardinality and type of the properties it is given.

    Context argument:  case_doc for duck_ and core_ functions, parent_object
                       (plus case_doc) for _sub_ functions, core_object for
                       prop_ functions.
    Properties:        every ontology property defaults to MISSING and is
                       forwarded only when supplied.
    Docstrings:        'Exactly 1' is a required single value, 'At least N'
                       a required list, 'At most N' and 'Any number of' an
                       optional list.
    Asserts:           parent object first, then required properties, then
                       optional ones. '# NOCHECK:<name>' marks parameters
                       that are not checked.
"""

import datetime

import {{.ModuleName}}


class Missing(object):
    """Marks a property the caller did not supply."""

    def __repr__(self):
        return "MISSING"


MISSING = Missing()


def _present(properties):
    return dict((k, v) for k, v in properties.items() if not isinstance(v, Missing))
{{range .Groups}}

#=====================================================
#-- {{.Title}}
{{range .Functions}}

{{.Signature}}
    """
{{- range .Doc}}
    {{.}}
{{- end}}
    """
{{- range .Body}}
    {{.}}
{{- end}}
    {{.Return}}
{{end}}
{{- end}}`))
