package nlggen

import (
	"fmt"
	"strconv"
	"strings"
)

// CheckKind is the kind of type assertion generated for a parameter.
type CheckKind string

// Check kinds. CheckNone marks a parameter that appears in the signature
// without any assertion.
const (
	CheckNone   CheckKind = ""
	CheckCase   CheckKind = "CASE"
	CheckNLG    CheckKind = "NLG"
	CheckNative CheckKind = "NATIVE"
)

// DefaultNativeTypes maps XSD datatype names to Python types.
var DefaultNativeTypes = map[string]string{
	"string":             "str",
	"normalizedString":   "str",
	"token":              "str",
	"anyURI":             "str",
	"boolean":            "bool",
	"integer":            "int",
	"int":                "int",
	"long":               "int",
	"short":              "int",
	"nonNegativeInteger": "int",
	"positiveInteger":    "int",
	"nonPositiveInteger": "int",
	"negativeInteger":    "int",
	"unsignedInt":        "int",
	"decimal":            "float",
	"double":             "float",
	"float":              "float",
	"dateTime":           "datetime.datetime",
	"Timestamp":          "datetime.datetime",
	"date":               "datetime.date",
}

// PlanConfig controls how the generation plan is derived.
type PlanConfig struct {
	// Roots names the core and property-bundle root classes.
	Roots RootCategories
	// NativeTypes maps range type names to Python types. Names missing from
	// the table are written as-is.
	NativeTypes map[string]string
}

// DefaultPlanConfig returns the UCO roots and the default native type table.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{Roots: DefaultRoots(), NativeTypes: DefaultNativeTypes}
}

// Plan is the sorted, categorized set of functions to emit.
type Plan struct {
	Groups   []PlanGroup
	Manifest []ManifestEntry
}

// Functions returns every planned function in emission order.
func (p *Plan) Functions() []FunctionSpec {
	var out []FunctionSpec
	for _, g := range p.Groups {
		out = append(out, g.Functions...)
	}
	return out
}

// Function returns the planned function with the given name.
func (p *Plan) Function(name string) (FunctionSpec, bool) {
	for _, g := range p.Groups {
		for _, f := range g.Functions {
			if f.Name == name {
				return f, true
			}
		}
	}
	return FunctionSpec{}, false
}

// PlanGroup holds the functions of one category.
type PlanGroup struct {
	Category  string
	Title     string
	Bucket    Bucket
	Functions []FunctionSpec
}

// FunctionSpec describes one generated constructor function.
type FunctionSpec struct {
	// Name is the function name, category prefix plus type name.
	Name string
	// Type is the ontology type the function creates.
	Type     string
	Category string
	Bucket   Bucket
	// Parent is the resolved parent type; checked for sub functions.
	Parent string
	// ParentWrapper is the wrapper the parent object must be (sub functions only).
	ParentWrapper string
	// Receiver is the argument the factory method is called on.
	Receiver string
	// Factory is the factory method creating the object.
	Factory string
	// Returns names the wrapper class of the created object.
	Returns string
	Params  []ParamSpec
}

// ParamSpec describes one keyword parameter of a generated function.
type ParamSpec struct {
	// Property is the ontology property name, used as the forwarded key.
	Property string
	// Name is the parameter identifier in the generated code.
	Name string
	// Ranges are the declared range types.
	Ranges []string
	// RangeType is the single range type when the property is checkable.
	RangeType   string
	Cardinality Constraint
	Required    bool
	List        bool
	Check       CheckKind
	// Wrapper is the object class checked for CASE and NLG parameters.
	Wrapper string
	// NativeType is the Python type checked for NATIVE parameters.
	NativeType string
	// Phrase is the docstring description of the cardinality.
	Phrase string
	// Unchecked explains why Check is CheckNone.
	Unchecked string
}

// Requirement derives whether a property is required and whether its value
// is a list from its cardinality constraint.
//
//	minQualifiedCardinality     required list
//	qualifiedCardinality 1      required single
//	qualifiedCardinality >1     required list
//	maxQualifiedCardinality     optional list
//	recorded noCardinality      optional list
//	no restriction at all       optional single
//
// qualifiedCardinality 0, non-numeric values and other fields are
// unsupported.
func Requirement(c Constraint) (required, list bool, err error) {
	switch c.Field {
	case FieldMinQualified:
		return true, true, nil
	case FieldQualified:
		n, convErr := strconv.Atoi(c.Value)
		if convErr != nil || n <= 0 {
			return false, false, &UnsupportedCardinalityError{Field: c.Field, Value: c.Value}
		}
		return true, n > 1, nil
	case FieldMaxQualified:
		return false, true, nil
	case FieldNoCardinality:
		return false, c.Recorded, nil
	}
	return false, false, &UnsupportedCardinalityError{Field: c.Field, Value: c.Value}
}

// CardinalityPhrase describes a constraint for documentation, e.g.
// "Exactly 1 of type string.".
func CardinalityPhrase(c Constraint, rangeType string) string {
	switch c.Field {
	case FieldMinQualified:
		return fmt.Sprintf("At least %s of type %s.", c.Value, rangeType)
	case FieldQualified:
		return fmt.Sprintf("Exactly %s of type %s.", c.Value, rangeType)
	case FieldMaxQualified:
		return fmt.Sprintf("At most %s of type %s.", c.Value, rangeType)
	case FieldNoCardinality:
		return fmt.Sprintf("Any number of type %s.", rangeType)
	}
	return fmt.Sprintf("%s %s of type %s.", c.Field, c.Value, rangeType)
}

// BuildPlan turns a named hierarchy and its cardinality table into the
// ordered list of functions to emit. Categories, types and properties are
// all sorted so the plan is stable across runs.
func BuildPlan(h *Hierarchy, card *CardinalityTable, cfg PlanConfig, diags *Diagnostics) *Plan {
	if cfg.NativeTypes == nil {
		cfg.NativeTypes = DefaultNativeTypes
	}
	if cfg.Roots == (RootCategories{}) {
		cfg.Roots = DefaultRoots()
	}

	categories := make(map[string]string, len(h.Types))
	for _, t := range h.Types {
		categories[t.Name] = t.Category
	}

	plan := &Plan{}
	for _, g := range GroupByCategory(h) {
		bucket := BucketOf(g.Category)
		if bucket == BucketUnknown {
			diags.Add(DiagCategory, g.Category, fmt.Sprintf("unknown category, %d types skipped", len(g.Types)))
			continue
		}
		group := PlanGroup{Category: g.Category, Title: CategoryTitle(g.Category), Bucket: bucket}
		for _, t := range g.Types {
			fn := buildFunction(t, bucket, h, card, categories, cfg, diags)
			group.Functions = append(group.Functions, fn)
			plan.Manifest = append(plan.Manifest, manifestEntries(fn)...)
		}
		plan.Groups = append(plan.Groups, group)
	}
	return plan
}

func buildFunction(t *OntologyType, bucket Bucket, h *Hierarchy, card *CardinalityTable,
	categories map[string]string, cfg PlanConfig, diags *Diagnostics) FunctionSpec {
	fn := FunctionSpec{
		Name:     t.Category + sanitize(t.Name, "_"),
		Type:     t.Name,
		Category: t.Category,
		Bucket:   bucket,
		Parent:   t.Parent,
	}
	switch bucket {
	case BucketSub:
		fn.Receiver, fn.Factory, fn.Returns = "parent_object", "create_sub_category", "SubCategory"
		fn.ParentWrapper = Wrapper(t.Category)
	case BucketDuck:
		fn.Receiver, fn.Factory, fn.Returns = "case_doc", "create_duck_category", "DuckCategory"
	case BucketCore:
		fn.Receiver, fn.Factory, fn.Returns = "case_doc", "create_core_category", "CoreCategory"
	case BucketProp:
		fn.Receiver, fn.Factory, fn.Returns = "core_object", "create_property_bundle", "PropertyBundle"
	}

	for _, prop := range t.Properties {
		decl, ok := h.Properties[prop]
		if !ok || len(decl.Ranges) == 0 {
			continue
		}
		fn.Params = append(fn.Params, buildParam(fn.Name, t.Name, decl, card, categories, cfg, diags))
	}
	return fn
}

func buildParam(fnName, typeName string, decl *PropertyDecl, card *CardinalityTable,
	categories map[string]string, cfg PlanConfig, diags *Diagnostics) ParamSpec {
	p := ParamSpec{
		Property:    decl.Name,
		Name:        PythonIdentifier(decl.Name),
		Ranges:      decl.Ranges,
		Cardinality: card.Lookup(typeName, decl.Name),
	}
	if err := ValidatePythonIdentifier(decl.Name); err != nil {
		diags.Add(DiagRenamed, fnName+"."+decl.Name, fmt.Sprintf("%v, emitted as %s", err, p.Name))
	}
	if decl.Ambiguous() {
		p.Unchecked = "multiple range types"
		p.Phrase = fmt.Sprintf("One of types %s.", strings.Join(decl.Ranges, ", "))
		return p
	}

	p.RangeType = decl.Ranges[0]
	p.Phrase = CardinalityPhrase(p.Cardinality, p.RangeType)
	required, list, err := Requirement(p.Cardinality)
	if err != nil {
		diags.Add(DiagCardinality, fnName+"."+decl.Name, err.Error())
		p.Unchecked = "unsupported cardinality"
		return p
	}
	p.Required, p.List = required, list

	switch {
	case p.RangeType == cfg.Roots.Core:
		p.Check = CheckCase
		p.Wrapper = "CoreCategory"
	case Wrapper(categories[p.RangeType]) != "":
		p.Check = CheckNLG
		p.Wrapper = Wrapper(categories[p.RangeType])
	default:
		p.Check = CheckNative
		p.NativeType = p.RangeType
		if native, ok := cfg.NativeTypes[p.RangeType]; ok {
			p.NativeType = native
		}
	}
	return p
}
