package nlggen

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// GoRenderConfig specifies the settings for generating the Go constructor
// package.
type GoRenderConfig struct {
	// PackageName is the name of the generated Go package.
	PackageName string
	// CaseAPIImport is the import path of the caseapi package.
	CaseAPIImport string
	// Version is the ontology version recorded in the package.
	Version string
	// Source is the ontology path named in the header; only its base name is used.
	Source string
}

// DefaultGoRenderConfig returns the settings used by the CLI.
func DefaultGoRenderConfig() GoRenderConfig {
	return GoRenderConfig{
		PackageName:   "nlg",
		CaseAPIImport: "github.com/casework/CASE-Utility-Verifier/caseapi",
		Version:       "0.1.0",
	}
}

// goNativeTypes maps XSD datatype names to Go types. Unknown names fall back
// to string.
var goNativeTypes = map[string]string{
	"boolean":            "bool",
	"integer":            "int64",
	"int":                "int64",
	"long":               "int64",
	"short":              "int64",
	"nonNegativeInteger": "int64",
	"positiveInteger":    "int64",
	"nonPositiveInteger": "int64",
	"negativeInteger":    "int64",
	"unsignedInt":        "int64",
	"decimal":            "float64",
	"double":             "float64",
	"float":              "float64",
	"dateTime":           "time.Time",
	"Timestamp":          "time.Time",
	"date":               "time.Time",
}

// RenderGo writes a gofmt-formatted Go package with one constructor per
// planned function. Optional properties are caseapi.Opt values, so an
// omitted property is a distinct state rather than a sentinel value, and
// wrapper checks go through the closed caseapi.Category variant.
func RenderGo(w io.Writer, plan *Plan, cfg GoRenderConfig) error {
	def := DefaultGoRenderConfig()
	if cfg.PackageName == "" {
		cfg.PackageName = def.PackageName
	}
	if cfg.CaseAPIImport == "" {
		cfg.CaseAPIImport = def.CaseAPIImport
	}
	data := &goRenderData{
		PackageName:   cfg.PackageName,
		CaseAPIImport: cfg.CaseAPIImport,
		Version:       cfg.Version,
		Source:        filepath.Base(cfg.Source),
	}
	if cfg.Source == "" {
		data.Source = "ontology"
	}
	for _, fn := range plan.Functions() {
		ctx := buildGoFunctionCtx(fn)
		for _, f := range ctx.Fields {
			if strings.Contains(f.GoType, "time.Time") {
				data.NeedsTime = true
			}
		}
		data.Functions = append(data.Functions, ctx)
	}

	var buf bytes.Buffer
	if err := goTemplate.Execute(&buf, data); err != nil {
		return &RenderError{Target: "go", Cause: err}
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return &RenderError{Target: "go", Cause: fmt.Errorf("format generated source: %w", err)}
	}
	_, err = w.Write(formatted)
	return err
}

// --- Template context types ---

type goRenderData struct {
	PackageName   string
	CaseAPIImport string
	Version       string
	Source        string
	NeedsTime     bool
	Functions     []goFunctionCtx
}

type goFunctionCtx struct {
	Name          string
	GoName        string
	PropsName     string
	Type          string
	Returns       string
	Args          string
	Receiver      string
	Factory       string
	Parent        string
	ParentWrapper string
	Fields        []goFieldCtx
	Checks        []string
}

type goFieldCtx struct {
	GoName   string
	GoType   string
	Property string
	Doc      string
}

// --- Context builders ---

func buildGoFunctionCtx(fn FunctionSpec) goFunctionCtx {
	ctx := goFunctionCtx{
		Name:      fn.Name,
		GoName:    ToPascalCase(fn.Name),
		Type:      fn.Type,
		Returns:   fn.Returns,
		PropsName: ToPascalCase(fn.Name) + "Props",
	}
	switch fn.Bucket {
	case BucketSub:
		ctx.Args, ctx.Receiver, ctx.Factory = "parent *caseapi.Object", "parent", "CreateSubCategory"
		ctx.Parent, ctx.ParentWrapper = fn.Parent, fn.ParentWrapper
	case BucketDuck:
		ctx.Args, ctx.Receiver, ctx.Factory = "doc *caseapi.Document", "doc", "CreateDuckCategory"
	case BucketCore:
		ctx.Args, ctx.Receiver, ctx.Factory = "doc *caseapi.Document", "doc", "CreateCoreCategory"
	case BucketProp:
		ctx.Args, ctx.Receiver, ctx.Factory = "core *caseapi.Object", "core", "CreatePropertyBundle"
	}

	used := make(map[string]int)
	for _, p := range fn.Params {
		name := ToPascalCase(p.Property)
		used[name]++
		if n := used[name]; n > 1 {
			name += strconv.Itoa(n)
		}
		field := goFieldCtx{
			GoName:   name,
			GoType:   goFieldType(p),
			Property: p.Property,
			Doc:      p.Phrase,
		}
		if p.Check == CheckNone {
			field.Doc += " Not checked (" + p.Unchecked + ")."
		}
		ctx.Fields = append(ctx.Fields, field)
		ctx.Checks = append(ctx.Checks, goChecks(p, "props."+name)...)
	}
	return ctx
}

func goFieldType(p ParamSpec) string {
	var elem string
	switch p.Check {
	case CheckNone:
		return "any"
	case CheckCase, CheckNLG:
		elem = "*caseapi.Object"
	default:
		elem = "string"
		if t, ok := goNativeTypes[p.RangeType]; ok {
			elem = t
		}
	}
	if p.List {
		return "[]" + elem
	}
	return elem
}

// goChecks renders the statements validating one field. Native values are
// checked by the field type itself; lists also get their count checked
// against a numeric cardinality.
func goChecks(p ParamSpec, field string) []string {
	if p.Check == CheckNone {
		return nil
	}
	prop := strconv.Quote(p.Property)
	var out []string
	if p.Required {
		out = append(out, fmt.Sprintf("if !%s.Present() {\nreturn nil, caseapi.Missing(fn, %s)\n}", field, prop))
	}

	var inner []string
	if p.List {
		if lo, hi, ok := countBounds(p.Cardinality); ok {
			inner = append(inner, fmt.Sprintf("if err := caseapi.CheckCount(fn, %s, len(v), %d, %d); err != nil {\nreturn nil, err\n}", prop, lo, hi))
		}
	}
	if p.Check == CheckCase || p.Check == CheckNLG {
		tag := ""
		if p.Check == CheckNLG {
			tag = p.RangeType
		}
		check := "CheckObject"
		if p.List {
			check = "CheckObjects"
		}
		inner = append(inner, fmt.Sprintf("if err := caseapi.%s(fn, %s, v, caseapi.%s, %s); err != nil {\nreturn nil, err\n}",
			check, prop, p.Wrapper, strconv.Quote(tag)))
	}
	if len(inner) > 0 {
		out = append(out, fmt.Sprintf("if v, ok := %s.Get(); ok {\n%s\n}", field, strings.Join(inner, "\n")))
	}
	return out
}

// countBounds returns the element count bounds implied by a numeric
// cardinality, with -1 for no upper bound.
func countBounds(c Constraint) (lo, hi int, ok bool) {
	n, err := strconv.Atoi(c.Value)
	if err != nil {
		return 0, 0, false
	}
	switch c.Field {
	case FieldMinQualified:
		return n, -1, true
	case FieldQualified:
		return n, n, true
	case FieldMaxQualified:
		return 0, n, true
	}
	return 0, 0, false
}

// --- Go template ---

var goTemplate = template.Must(template.New("nlg-go").Funcs(template.FuncMap{"quote": strconv.Quote}).Parse(`// Code generated by nlggen from {{.Source}}. DO NOT EDIT.

// Package {{.PackageName}} provides ontology-checked constructors for CASE objects.
package {{.PackageName}}

import (
{{- if .NeedsTime}}
	"time"
{{end}}
	"{{.CaseAPIImport}}"
)

// OntologyVersion is the ontology version these constructors were generated from.
const OntologyVersion = {{quote .Version}}
{{range .Functions}}
// {{.PropsName}} holds the properties accepted by {{.GoName}}.
type {{.PropsName}} struct {
{{- range .Fields}}
	// {{.GoName}}: {{.Doc}}
	{{.GoName}} caseapi.Opt[{{.GoType}}]
{{- end}}
}

// {{.GoName}} creates a {{.Returns}} object of type {{.Type}}.
func {{.GoName}}({{.Args}}, props {{.PropsName}}) (*caseapi.Object, error) {
	const fn = {{quote .Name}}
{{- if .ParentWrapper}}
	if err := caseapi.CheckParent(fn, parent, caseapi.{{.ParentWrapper}}, {{quote .Parent}}); err != nil {
		return nil, err
	}
{{- end}}
{{- range .Checks}}
	{{.}}
{{- end}}
	values := caseapi.Properties{}
{{- range .Fields}}
	caseapi.Set(values, {{quote .Property}}, props.{{.GoName}})
{{- end}}
	return {{.Receiver}}.{{.Factory}}({{quote .Type}}, values)
}
{{end}}`))
