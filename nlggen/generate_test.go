package nlggen

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generateTTL = `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
@prefix core: <http://unifiedcyberontology.org/core#> .

###  http://unifiedcyberontology.org/core#Account
core:Account
	a owl:Class ;
	rdfs:subClassOf
		core:PropertyBundle ,
		[
			a owl:Restriction ;
			owl:onProperty core:accountIdentifier ;
			owl:qualifiedCardinality "1"^^xsd:nonNegativeInteger ;
			owl:onDataRange xsd:string
		] .

###  http://unifiedcyberontology.org/core#Action
core:Action
	a owl:Class .

###  http://unifiedcyberontology.org/core#Attorney
core:Attorney
	a owl:Class ;
	rdfs:subClassOf core:BenevolentRole .

###  http://unifiedcyberontology.org/core#BenevolentRole
core:BenevolentRole
	a owl:Class ;
	rdfs:subClassOf core:Role .

###  http://unifiedcyberontology.org/core#PropertyBundle
core:PropertyBundle
	a owl:Class .

###  http://unifiedcyberontology.org/core#Role
core:Role
	a owl:Class ;
	rdfs:subClassOf core:UcoObject .

###  http://unifiedcyberontology.org/core#UcoObject
core:UcoObject
	a owl:Class .

###  http://unifiedcyberontology.org/core#accountIdentifier
core:accountIdentifier
	a owl:DatatypeProperty ;
	rdfs:domain core:Account ;
	rdfs:range xsd:string .

###  http://unifiedcyberontology.org/core#actionStatus
core:actionStatus
	a owl:DatatypeProperty ;
	rdfs:domain core:Action ;
	rdfs:range xsd:string .

###  http://unifiedcyberontology.org/core#environment
core:environment
	a owl:ObjectProperty ;
	rdfs:domain core:Action ;
	rdfs:range core:UcoObject .
`

func generateFixture(t *testing.T, cfg Config) *Result {
	t.Helper()
	res, err := GenerateSource(context.Background(), "test.ttl", []byte(generateTTL), cfg)
	require.NoError(t, err)
	return res
}

func TestGenerate_Functions(t *testing.T) {
	res := generateFixture(t, DefaultGenerateConfig())

	var names []string
	for _, fn := range res.Plan.Functions() {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{
		"core_Role",
		"core_sub_BenevolentRole",
		"core_sub_sub_Attorney",
		"duck_Action",
		"duck_PropertyBundle",
		"duck_UcoObject",
		"prop_Account",
	}, names)
}

func TestGenerate_DuckScenario(t *testing.T) {
	out := string(generateFixture(t, DefaultGenerateConfig()).Python)

	assert.Contains(t, out, "def duck_Action(case_doc, actionStatus=MISSING, environment=MISSING):\n")
	assert.NotContains(t, out, "[duck_Action] actionStatus is required.")
	assert.NotContains(t, out, "[duck_Action] environment is required.")
}

func TestGenerate_PropertyBundleScenario(t *testing.T) {
	out := string(generateFixture(t, DefaultGenerateConfig()).Python)

	assert.Contains(t, out, "def prop_Account(core_object, accountIdentifier=MISSING):\n")
	assert.Contains(t, out, "    assert not isinstance(accountIdentifier, Missing),\\\n"+
		"        \"[prop_Account] accountIdentifier is required.\"\n"+
		"    assert isinstance(accountIdentifier, str),\\\n"+
		"        \"[prop_Account] accountIdentifier must be of type string.\"\n")
}

func TestGenerate_SubCategoryScenario(t *testing.T) {
	out := string(generateFixture(t, DefaultGenerateConfig()).Python)

	assert.Contains(t, out, "def core_sub_sub_Attorney(case_doc, parent_object):\n")
	assert.Contains(t, out,
		`assert isinstance(parent_object, case.CoreCategory) and parent_object.type == "BenevolentRole",\`)
}

func TestGenerate_ExternalSuperclassSkipped(t *testing.T) {
	const ttl = `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix core: <http://unifiedcyberontology.org/core#> .
@prefix ext: <http://example.org/ext#> .

###  http://unifiedcyberontology.org/core#Device
core:Device
	a owl:Class ;
	rdfs:subClassOf ext:Artifact , core:UcoObject .
`
	res, err := GenerateSource(context.Background(), "device.ttl", []byte(ttl), DefaultGenerateConfig())
	require.NoError(t, err)

	fn, ok := res.Plan.Function("core_Device")
	require.True(t, ok, "functions: %v", res.Plan.Functions())
	assert.Equal(t, "UcoObject", fn.Parent)
	assert.Contains(t, string(res.Python), "def core_Device(case_doc):\n")

	multi := res.Diagnostics.Of(DiagMultiParent)
	require.Len(t, multi, 1)
	assert.Equal(t, "superclasses Artifact, UcoObject, using UcoObject", multi[0].Detail)
	assert.Empty(t, res.Diagnostics.Of(DiagCategory))
}

func TestGenerate_Idempotent(t *testing.T) {
	cfg := DefaultGenerateConfig()
	goCfg := DefaultGoRenderConfig()
	cfg.Go = &goCfg

	first := generateFixture(t, cfg)
	second := generateFixture(t, cfg)
	assert.Equal(t, first.Python, second.Python)
	assert.Equal(t, first.Go, second.Go)
	assert.Equal(t, first.Diagnostics.Entries(), second.Diagnostics.Entries())
	assert.NotEmpty(t, first.Go)
}

func TestGenerate_Diagnostics(t *testing.T) {
	res := generateFixture(t, DefaultGenerateConfig())

	var gaps []string
	for _, d := range res.Diagnostics.Of(DiagGap) {
		gaps = append(gaps, d.Subject)
	}
	assert.Contains(t, gaps, "UcoObject")
	assert.Contains(t, gaps, "Attorney")
	assert.Empty(t, res.Diagnostics.Of(DiagUnknownNamespace))
}

func TestGenerate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onto.ttl")
	require.NoError(t, os.WriteFile(path, []byte(generateTTL), 0o644))

	res, err := Generate(context.Background(), path, DefaultGenerateConfig())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.Python,
		[]byte("# CASE NLG VERIFIER v0.1.0\n# Code generated by nlggen from onto.ttl. DO NOT EDIT.\n")))
	assert.True(t, res.Cardinality.Has("Account", "accountIdentifier"))
}

func TestGenerate_LogsLoadedOntology(t *testing.T) {
	var logs bytes.Buffer
	cfg := DefaultGenerateConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := GenerateSource(context.Background(), "test.ttl", []byte(generateTTL), cfg)
	require.NoError(t, err)

	line := ""
	for _, l := range strings.Split(logs.String(), "\n") {
		if strings.Contains(l, `msg="loaded ontology"`) {
			line = l
		}
	}
	require.NotEmpty(t, line, logs.String())
	assert.Contains(t, line, "path=test.ttl")
	assert.NotContains(t, line, "triples=0 ")
	assert.Contains(t, line, `prefixes="[core owl rdf rdfs xsd]"`)
}

func TestGenerate_MissingFile(t *testing.T) {
	_, err := Generate(context.Background(), filepath.Join(t.TempDir(), "nope.ttl"), DefaultGenerateConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateSource(ctx, "test.ttl", []byte(generateTTL), DefaultGenerateConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingVerifier struct {
	functions []string
	err       error
}

func (v *recordingVerifier) Verify(_ context.Context, _ []byte, functions []string) error {
	v.functions = functions
	return v.err
}

func TestGenerate_Verifier(t *testing.T) {
	v := &recordingVerifier{}
	cfg := DefaultGenerateConfig()
	cfg.Verifier = v
	generateFixture(t, cfg)
	assert.Len(t, v.functions, 7)

	cfg.Verifier = &recordingVerifier{err: errors.New("syntax error at line 3")}
	_, err := GenerateSource(context.Background(), "test.ttl", []byte(generateTTL), cfg)
	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "python", re.Target)
	assert.True(t, strings.Contains(err.Error(), "line 3"))
}

func TestSnapshotRoundTrip(t *testing.T) {
	res := generateFixture(t, DefaultGenerateConfig())

	var buf bytes.Buffer
	require.NoError(t, EncodeSnapshot(&buf, res.Snapshot("0.1.0", "test.ttl")))

	snap, err := DecodeSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", snap.Version)
	assert.Equal(t, "test.ttl", snap.Source)
	assert.Equal(t, res.Diagnostics.Entries(), snap.Diagnostics)
	assert.Equal(t, res.Plan.Manifest, snap.Plan.Manifest)

	// Re-rendering the decoded plan reproduces the module.
	var out bytes.Buffer
	cfg := DefaultRenderConfig()
	cfg.Source = "test.ttl"
	require.NoError(t, Render(&out, snap.Plan, cfg))
	assert.Equal(t, string(res.Python), out.String())
}

func TestDecodeSnapshot_Garbage(t *testing.T) {
	_, err := DecodeSnapshot(strings.NewReader("\xc1"))
	assert.Error(t, err)
}
