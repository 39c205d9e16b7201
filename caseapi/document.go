// Package caseapi builds CASE documents: RDF graphs of typed objects created
// through the core, duck, sub-category and property-bundle factories that
// generated constructors call.
package caseapi

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/deiu/rdf2go"
	"github.com/google/uuid"
)

// Namespace is the vocabulary that bare type and property names expand into.
const Namespace = "http://case.example.org/core#"

const xsdNamespace = "http://www.w3.org/2001/XMLSchema#"

var iriType = string(quad.IRI(rdf.Type).Full())

// Serialization formats accepted by Document.Serialize.
const (
	FormatJSONLD = "json-ld"
	FormatTurtle = "turtle"
)

// Document is a CASE graph under construction.
type Document struct {
	graph *rdf2go.Graph
	now   func() time.Time
	newID func() string
}

// Option configures a Document.
type Option func(*Document)

// WithClock sets the clock used for createdTime values.
func WithClock(now func() time.Time) Option {
	return func(d *Document) { d.now = now }
}

// WithIDs sets the generator for node identifiers.
func WithIDs(newID func() string) Option {
	return func(d *Document) { d.newID = newID }
}

// NewDocument returns an empty document backed by an in-memory graph.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		graph: rdf2go.NewGraph(Namespace),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Object is one node created by a factory.
type Object struct {
	// Category is the kind of object.
	Category Category
	// Root is the category a sub-category object descends from; for other
	// objects it equals Category.
	Root Category
	// Type is the ontology type name the object was created as.
	Type string
	// ID is the node identifier.
	ID string

	doc  *Document
	term rdf2go.Term
}

// Term returns the graph node of the object.
func (o *Object) Term() rdf2go.Term {
	return o.term
}

// CreateCoreCategory creates a core object with a createdTime stamp.
func (d *Document) CreateCoreCategory(typeName string, props Properties) (*Object, error) {
	o, err := d.create(CoreCategory, CoreCategory, typeName, "", false, props)
	if err != nil {
		return nil, err
	}
	if err := o.Add("createdTime", d.now().UTC()); err != nil {
		return nil, err
	}
	return o, nil
}

// CreateDuckCategory creates an object whose type has no recognized root.
func (d *Document) CreateDuckCategory(typeName string, props Properties) (*Object, error) {
	return d.create(DuckCategory, DuckCategory, typeName, "", false, props)
}

// CreateTrace creates a core Trace object.
func (d *Document) CreateTrace(props Properties) (*Object, error) {
	return d.CreateCoreCategory("Trace", props)
}

// CreateHash creates a blank-node Hash carrying both of its required
// properties.
func (d *Document) CreateHash(method, value string) (*Object, error) {
	return d.CreateNode(NodeSpec{Type: "Hash", Blank: true}, Properties{
		"hashMethod": method,
		"hashValue":  value,
	})
}

// NodeSpec identifies the node CreateNode adds.
type NodeSpec struct {
	// Type is the rdf:type, a bare name in Namespace or a full IRI.
	Type string
	// URI is used verbatim as the node IRI (or blank node label). A fresh
	// identifier is generated when empty.
	URI string
	// Blank makes the node a blank node.
	Blank bool
}

// CreateNode adds a typed node outside the category factories.
func (d *Document) CreateNode(spec NodeSpec, props Properties) (*Object, error) {
	if spec.Type == "" {
		return nil, ErrNodeType
	}
	return d.create(NodeCategory, NodeCategory, spec.Type, spec.URI, spec.Blank, props)
}

// CreateSubCategory creates an object of a subtype of o's type and links it
// from o through the subCategory property.
func (o *Object) CreateSubCategory(typeName string, props Properties) (*Object, error) {
	root := o.Category
	if root == SubCategory {
		root = o.Root
	}
	sub, err := o.doc.create(SubCategory, root, typeName, "", false, props)
	if err != nil {
		return nil, err
	}
	if err := o.Add("subCategory", sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// CreatePropertyBundle creates a blank-node property bundle attached to o
// through the propertyBundle property.
func (o *Object) CreatePropertyBundle(typeName string, props Properties) (*Object, error) {
	pb, err := o.doc.create(PropertyBundle, PropertyBundle, typeName, "", true, props)
	if err != nil {
		return nil, err
	}
	if err := o.Add("propertyBundle", pb); err != nil {
		return nil, err
	}
	return pb, nil
}

func (d *Document) create(cat, root Category, typeName, uri string, blank bool, props Properties) (*Object, error) {
	values, err := convertAll(props)
	if err != nil {
		return nil, err
	}
	id := uri
	if id == "" {
		id = d.newID()
	}
	o := &Object{Category: cat, Root: root, Type: typeName, ID: id, doc: d}
	switch {
	case blank:
		o.term = rdf2go.NewBlankNode(id)
	case uri != "":
		o.term = rdf2go.NewResource(uri)
	default:
		o.term = rdf2go.NewResource("urn:uuid:" + id)
	}
	d.graph.AddTriple(o.term, rdf2go.NewResource(iriType), rdf2go.NewResource(expand(typeName)))
	for _, v := range values {
		for _, term := range v.terms {
			d.graph.AddTriple(o.term, rdf2go.NewResource(expand(v.property)), term)
		}
	}
	return o, nil
}

// Add attaches a value to the object. Nil values are ignored and slices
// become one triple per element.
func (o *Object) Add(property string, value any) error {
	terms, err := convert(property, value)
	if err != nil {
		return err
	}
	for _, term := range terms {
		o.doc.graph.AddTriple(o.term, rdf2go.NewResource(expand(property)), term)
	}
	return nil
}

// Values returns the objects of o's triples for a property.
func (d *Document) Values(o *Object, property string) []rdf2go.Term {
	var out []rdf2go.Term
	for _, t := range d.graph.All(o.term, rdf2go.NewResource(expand(property)), nil) {
		out = append(out, t.Object)
	}
	return out
}

// Match returns the triples matching a pattern. A nil position matches
// anything. Subjects and predicates may be an *Object, an rdf2go.Term or a
// name expanded like a property; objects may also be any value Add accepts
// that converts to a single term.
func (d *Document) Match(s, p, o any) ([]*rdf2go.Triple, error) {
	st, pt, ot, err := pattern(s, p, o)
	if err != nil {
		return nil, err
	}
	if st == nil && pt == nil && ot == nil {
		return d.Triples(), nil
	}
	return d.graph.All(st, pt, ot), nil
}

// Contains reports whether any triple matches the pattern, as Match.
func (d *Document) Contains(s, p, o any) (bool, error) {
	st, pt, ot, err := pattern(s, p, o)
	if err != nil {
		return false, err
	}
	return d.graph.One(st, pt, ot) != nil, nil
}

func pattern(s, p, o any) (st, pt, ot rdf2go.Term, err error) {
	if st, err = nodeTerm("subject", s); err != nil {
		return nil, nil, nil, err
	}
	if pt, err = nodeTerm("predicate", p); err != nil {
		return nil, nil, nil, err
	}
	switch o.(type) {
	case nil, *Object, rdf2go.Term:
		ot, err = nodeTerm("object", o)
		return st, pt, ot, err
	}
	terms, err := convert("object", o)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(terms) != 1 {
		return nil, nil, nil, &ValueError{Property: "object", Value: o}
	}
	return st, pt, terms[0], nil
}

func nodeTerm(position string, v any) (rdf2go.Term, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case *Object:
		if v == nil {
			return nil, nil
		}
		return v.term, nil
	case rdf2go.Term:
		return v, nil
	case string:
		return rdf2go.NewResource(expand(v)), nil
	}
	return nil, &ValueError{Property: position, Value: v}
}

// Len returns the number of triples in the document.
func (d *Document) Len() int {
	return d.graph.Len()
}

// Triples returns every triple in the document.
func (d *Document) Triples() []*rdf2go.Triple {
	out := make([]*rdf2go.Triple, 0, d.graph.Len())
	for t := range d.graph.IterTriples() {
		out = append(out, t)
	}
	return out
}

// Serialize writes the document graph as JSON-LD (the default) or Turtle.
func (d *Document) Serialize(w io.Writer, format string) error {
	var mime string
	switch format {
	case "", FormatJSONLD:
		mime = "application/ld+json"
	case FormatTurtle:
		mime = "text/turtle"
	default:
		return fmt.Errorf("caseapi: unknown serialization format %q", format)
	}
	return d.graph.Serialize(w, mime)
}

func expand(name string) string {
	if strings.Contains(name, "://") || strings.HasPrefix(name, "urn:") {
		return name
	}
	return Namespace + name
}

type propertyTerms struct {
	property string
	terms    []rdf2go.Term
}

// convertAll converts every property before anything is written, so a bad
// value leaves the graph untouched.
func convertAll(props Properties) ([]propertyTerms, error) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]propertyTerms, 0, len(names))
	for _, name := range names {
		terms, err := convert(name, props[name])
		if err != nil {
			return nil, err
		}
		out = append(out, propertyTerms{property: name, terms: terms})
	}
	return out, nil
}

func convert(property string, value any) ([]rdf2go.Term, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *Object:
		if v == nil {
			return nil, nil
		}
		return []rdf2go.Term{v.term}, nil
	case string:
		return []rdf2go.Term{rdf2go.NewLiteral(v)}, nil
	case bool:
		return []rdf2go.Term{typed(strconv.FormatBool(v), "boolean")}, nil
	case time.Time:
		return []rdf2go.Term{typed(v.Format(time.RFC3339Nano), "dateTime")}, nil
	case []byte:
		return []rdf2go.Term{rdf2go.NewLiteral(string(v))}, nil
	case fmt.Stringer:
		return []rdf2go.Term{rdf2go.NewLiteral(v.String())}, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return []rdf2go.Term{typed(strconv.FormatInt(rv.Int(), 10), "integer")}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return []rdf2go.Term{typed(strconv.FormatUint(rv.Uint(), 10), "integer")}, nil
	case reflect.Float32, reflect.Float64:
		return []rdf2go.Term{typed(strconv.FormatFloat(rv.Float(), 'g', -1, 64), "double")}, nil
	case reflect.Slice, reflect.Array:
		var out []rdf2go.Term
		for i := 0; i < rv.Len(); i++ {
			terms, err := convert(property, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, terms...)
		}
		return out, nil
	}
	return nil, &ValueError{Property: property, Value: value}
}

func typed(lexical, datatype string) rdf2go.Term {
	return rdf2go.NewLiteralWithDatatype(lexical, rdf2go.NewResource(xsdNamespace+datatype))
}
