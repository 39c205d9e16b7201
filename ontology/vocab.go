package ontology

import (
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
)

// OWLNamespace is the OWL 2 vocabulary namespace.
const OWLNamespace = "http://www.w3.org/2002/07/owl#"

var (
	iriType          = full(rdf.Type)
	iriRDFProperty   = full(rdf.Property)
	iriRDFSClass     = full(rdfs.Class)
	iriSubClassOf    = full(rdfs.SubClassOf)
	iriSubPropertyOf = full(rdfs.SubPropertyOf)
	iriDomain        = full(rdfs.Domain)
	iriRange         = full(rdfs.Range)

	iriOWLClass            = OWLNamespace + "Class"
	iriOWLObjectProperty   = OWLNamespace + "ObjectProperty"
	iriOWLDatatypeProperty = OWLNamespace + "DatatypeProperty"
)

// full expands a prefixed vocabulary term ("rdfs:domain") into its IRI.
func full(short string) string {
	return string(quad.IRI(short).Full())
}

func isClassType(iri string) bool {
	return iri == iriOWLClass || iri == iriRDFSClass
}

func isPropertyType(iri string) bool {
	switch iri {
	case iriOWLObjectProperty, iriOWLDatatypeProperty, iriRDFProperty:
		return true
	}
	return false
}
