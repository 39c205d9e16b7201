// Package caseverifier generates natural-language-generation validator code
// from the UCO/CASE ontology.
//
// The module is organized into these packages:
//
//   - [github.com/casework/CASE-Utility-Verifier/ontology] loads Turtle ontologies and answers class and property queries
//   - [github.com/casework/CASE-Utility-Verifier/nlggen] resolves the class tree, restrictions and names, and renders the Python and Go validators
//   - [github.com/casework/CASE-Utility-Verifier/caseapi] is the graph API the generated Go constructors call
//   - [github.com/casework/CASE-Utility-Verifier/pycheck] parses the generated Python module with tree-sitter
//   - [github.com/casework/CASE-Utility-Verifier/xsdcheck] writes and prunes an XSD schema of property ranges
//   - [github.com/casework/CASE-Utility-Verifier/audit] keeps a SQLite history of generated manifests
//   - [github.com/casework/CASE-Utility-Verifier/config] loads nlggen.yaml
//   - [github.com/casework/CASE-Utility-Verifier/watch] debounces ontology file changes
//
// The nlggen command in nlggen/cmd/nlggen ties them together. Only pycheck
// needs CGo.
package caseverifier
