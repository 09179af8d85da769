package schemapack_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/packspec/schemapack"
)

const labSchema = `
schemapack: 0.3.0
description: Experiments and the samples they measure.
classes:
  Experiment:
    id: {propertyName: alias}
    content:
      type: object
      properties:
        title: {type: string}
      required: [title]
      additionalProperties: false
    relations:
      samples:
        targetClass: Sample
        mandatory: {origin: false, target: true}
        multiple: {origin: false, target: false}
  Sample:
    id: {propertyName: alias}
    content:
      type: object
      additionalProperties: true
`

const labData = `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {title: "first run"}
      relations:
        samples:
          targetClass: Sample
          targetResources: sample1
  Sample:
    sample1:
      content: {}
`

func mustSchema(t *testing.T, doc string) *schemapack.SchemaPack {
	t.Helper()
	sp, err := schemapack.ParseSchemaPack([]byte(doc))
	if err != nil {
		t.Fatalf("parse schemapack: %v", err)
	}
	return sp
}

func mustData(t *testing.T, doc string) *schemapack.DataPack {
	t.Helper()
	dp, err := schemapack.ParseDataPack([]byte(doc))
	if err != nil {
		t.Fatalf("parse datapack: %v", err)
	}
	return dp
}

func mustValidate(t *testing.T, sp *schemapack.SchemaPack, dp *schemapack.DataPack) schemapack.ValidationReport {
	t.Helper()
	report, err := schemapack.Validate(sp, dp)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return report
}

func codes(report schemapack.ValidationReport) []string {
	out := make([]string, len(report))
	for i, violation := range report {
		out[i] = violation.Code
	}
	return out
}

func TestValidate_ValidPair(t *testing.T) {
	report := mustValidate(t, mustSchema(t, labSchema), mustData(t, labData))
	if len(report) != 0 {
		t.Fatalf("expected an empty report, got %v", report)
	}
}

func TestValidate_MissingMandatoryTarget(t *testing.T) {
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {title: "first run"}
  Sample: {}
`)
	report := mustValidate(t, mustSchema(t, labSchema), dp)
	if len(report) != 1 {
		t.Fatalf("expected exactly one violation, got %v", report)
	}
	v := report[0]
	if v.Code != schemapack.CodeMissingMandatoryTarget || v.Class != "Experiment" || v.Resource != "exp1" || v.Relation != "samples" {
		t.Fatalf("unexpected violation: %+v", v)
	}
}

func TestValidate_DanglingTargetID(t *testing.T) {
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {title: "first run"}
      relations:
        samples:
          targetClass: Sample
          targetResources: ghost
  Sample: {}
`)
	report := mustValidate(t, mustSchema(t, labSchema), dp)
	if len(report) != 1 || report[0].Code != schemapack.CodeTargetNotFound {
		t.Fatalf("expected one target_not_found, got %v", report)
	}
	if !strings.Contains(report[0].Message, `"ghost"`) {
		t.Fatalf("violation should name the dangling id: %+v", report[0])
	}
}

func TestValidate_TargetClassMismatch(t *testing.T) {
	// exp1 exists as a resource, but under Experiment, not Sample: stating
	// the wrong class is a consistency violation, not a dangling reference.
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {title: "first run"}
      relations:
        samples:
          targetClass: Experiment
          targetResources: exp1
  Sample: {}
`)
	report := mustValidate(t, mustSchema(t, labSchema), dp)
	if len(report) != 1 || report[0].Code != schemapack.CodeTargetClassMismatch {
		t.Fatalf("expected one target_class_mismatch, got %v", report)
	}
}

func TestValidate_UnknownRelation(t *testing.T) {
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {title: "first run"}
      relations:
        samples:
          targetClass: Sample
          targetResources: sample1
        probes:
          targetClass: Sample
          targetResources: sample1
  Sample:
    sample1:
      content: {}
`)
	report := mustValidate(t, mustSchema(t, labSchema), dp)
	if len(report) != 1 || report[0].Code != schemapack.CodeUnknownRelation || report[0].Relation != "probes" {
		t.Fatalf("expected one unknown_relation for probes, got %v", report)
	}
}

func TestValidate_ClassSlots(t *testing.T) {
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Experiment: {}
  Imaginary: {}
`)
	report := mustValidate(t, mustSchema(t, labSchema), dp)
	got := codes(report)
	want := []string{schemapack.CodeUnknownClassSlot, schemapack.CodeMissingClassSlot}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, report)
	}
}

// cardinalitySchema builds the lab schema with the given target-side
// mandatory/multiple combination on the samples relation.
func cardinalitySchema(t *testing.T, mandatoryTarget, multipleTarget bool) *schemapack.SchemaPack {
	t.Helper()
	doc := fmt.Sprintf(`
schemapack: 0.3.0
classes:
  Experiment:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
    relations:
      samples:
        targetClass: Sample
        mandatory: {origin: false, target: %t}
        multiple: {origin: true, target: %t}
  Sample:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
`, mandatoryTarget, multipleTarget)
	return mustSchema(t, doc)
}

func cardinalityData(t *testing.T, targetResources string) *schemapack.DataPack {
	t.Helper()
	relations := ""
	if targetResources != "absent" {
		relations = fmt.Sprintf(`
      relations:
        samples:
          targetClass: Sample
          targetResources: %s`, targetResources)
	}
	doc := fmt.Sprintf(`
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {}%s
  Sample:
    sample1:
      content: {}
    sample2:
      content: {}
`, relations)
	return mustData(t, doc)
}

func TestValidate_TargetCardinalityTable(t *testing.T) {
	shapes := []string{"absent", "null", "sample1", "[]", "[sample1, sample2]"}

	cases := []struct {
		mandatory, multiple bool
		valid               map[string]bool
	}{
		{false, false, map[string]bool{"absent": true, "null": true, "sample1": true}},
		{true, false, map[string]bool{"sample1": true}},
		{false, true, map[string]bool{"absent": true, "[]": true, "[sample1, sample2]": true}},
		{true, true, map[string]bool{"[sample1, sample2]": true}},
	}

	for _, tc := range cases {
		sp := cardinalitySchema(t, tc.mandatory, tc.multiple)
		for _, shape := range shapes {
			name := fmt.Sprintf("mandatory=%t multiple=%t shape=%s", tc.mandatory, tc.multiple, shape)
			report := mustValidate(t, sp, cardinalityData(t, shape))
			if tc.valid[shape] && len(report) != 0 {
				t.Errorf("%s: expected valid, got %v", name, report)
			}
			if !tc.valid[shape] && len(report) == 0 {
				t.Errorf("%s: expected a violation, got none", name)
			}
		}
	}
}

func fanInSchema(t *testing.T, multipleOrigin bool) *schemapack.SchemaPack {
	t.Helper()
	doc := fmt.Sprintf(`
schemapack: 0.3.0
classes:
  Experiment:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
    relations:
      samples:
        targetClass: Sample
        mandatory: {origin: false, target: true}
        multiple: {origin: %t, target: false}
  Sample:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
`, multipleOrigin)
	return mustSchema(t, doc)
}

const fanInData = `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {}
      relations:
        samples:
          targetClass: Sample
          targetResources: sample1
    exp2:
      content: {}
      relations:
        samples:
          targetClass: Sample
          targetResources: sample1
  Sample:
    sample1:
      content: {}
`

func TestValidate_FanIn(t *testing.T) {
	report := mustValidate(t, fanInSchema(t, false), mustData(t, fanInData))
	if len(report) != 1 {
		t.Fatalf("expected exactly one violation, got %v", report)
	}
	v := report[0]
	if v.Code != schemapack.CodeFanInExceeded || v.Class != "Sample" || v.Resource != "sample1" || v.Relation != "samples" {
		t.Fatalf("unexpected violation: %+v", v)
	}

	report = mustValidate(t, fanInSchema(t, true), mustData(t, fanInData))
	if len(report) != 0 {
		t.Fatalf("expected the same configuration to pass with multiple.origin=true, got %v", report)
	}
}

func TestValidate_UnreferencedMandatoryTarget(t *testing.T) {
	sp := mustSchema(t, `
schemapack: 0.3.0
classes:
  Dataset:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
    relations:
      files:
        targetClass: File
        mandatory: {origin: true, target: false}
        multiple: {origin: false, target: true}
  File:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
`)
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Dataset:
    ds1:
      content: {}
      relations:
        files:
          targetClass: File
          targetResources: [f1]
  File:
    f1:
      content: {}
    orphan:
      content: {}
`)
	report := mustValidate(t, sp, dp)
	if len(report) != 1 {
		t.Fatalf("expected exactly one violation, got %v", report)
	}
	v := report[0]
	if v.Code != schemapack.CodeUnreferencedMandatoryTarget || v.Class != "File" || v.Resource != "orphan" {
		t.Fatalf("unexpected violation: %+v", v)
	}
}

func TestValidate_RootedScopingSkipsOutOfClosureTargets(t *testing.T) {
	rootedSchema := mustSchema(t, `
schemapack: 0.3.0
rootClass: Dataset
classes:
  Dataset:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
    relations:
      files:
        targetClass: File
        mandatory: {origin: true, target: false}
        multiple: {origin: false, target: true}
  File:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
`)
	// f2 is outside the closure of ds1: in a rooted datapack that is absent
	// inventory, not an unreferenced mandatory target.
	dp := mustData(t, `
datapack: 0.3.0
rootClass: Dataset
rootResource: ds1
resources:
  Dataset:
    ds1:
      content: {}
      relations:
        files:
          targetClass: File
          targetResources: [f1]
  File:
    f1:
      content: {}
    f2:
      content: {}
`)
	report := mustValidate(t, rootedSchema, dp)
	if len(report) != 0 {
		t.Fatalf("expected rooted scoping to accept out-of-closure targets, got %v", report)
	}
}

func TestValidate_RootMarkers(t *testing.T) {
	rootedSchema := mustSchema(t, `
schemapack: 0.3.0
rootClass: Experiment
classes:
  Experiment:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
`)
	plainSchema := mustSchema(t, `
schemapack: 0.3.0
classes:
  Experiment:
    id: {propertyName: alias}
    content: {type: object, additionalProperties: true}
`)

	unrooted := mustData(t, `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {}
`)
	rooted := mustData(t, `
datapack: 0.3.0
rootClass: Experiment
rootResource: exp1
resources:
  Experiment:
    exp1:
      content: {}
`)
	badRoot := mustData(t, `
datapack: 0.3.0
rootClass: Experiment
rootResource: ghost
resources:
  Experiment:
    exp1:
      content: {}
`)

	cases := []struct {
		name   string
		sp     *schemapack.SchemaPack
		dp     *schemapack.DataPack
		expect string
	}{
		{"rooted schema, unrooted data", rootedSchema, unrooted, schemapack.CodeMissingRoot},
		{"unrooted schema, rooted data", plainSchema, rooted, schemapack.CodeUnexpectedRoot},
		{"root resource missing", rootedSchema, badRoot, schemapack.CodeUnknownRootResource},
	}
	for _, tc := range cases {
		report := mustValidate(t, tc.sp, tc.dp)
		if len(report) != 1 || report[0].Code != tc.expect {
			t.Errorf("%s: expected one %s, got %v", tc.name, tc.expect, report)
		}
	}

	if report := mustValidate(t, rootedSchema, rooted); len(report) != 0 {
		t.Errorf("rooted pair should be valid, got %v", report)
	}
}

func TestValidate_ContentViolation(t *testing.T) {
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {title: 42}
      relations:
        samples:
          targetClass: Sample
          targetResources: sample1
  Sample:
    sample1:
      content: {}
`)
	report := mustValidate(t, mustSchema(t, labSchema), dp)
	if len(report) != 1 {
		t.Fatalf("expected exactly one violation, got %v", report)
	}
	v := report[0]
	if v.Code != schemapack.CodeContentViolation || v.Class != "Experiment" || v.Resource != "exp1" {
		t.Fatalf("unexpected violation: %+v", v)
	}
}

// stubContentValidator accepts everything; used to show the boundary is
// swappable.
type stubContentValidator struct{ calls int }

func (s *stubContentValidator) ValidateContent(_ map[string]any, _ map[string]any) ([]schemapack.ContentError, error) {
	s.calls++
	return nil, nil
}

func TestValidate_CustomContentValidator(t *testing.T) {
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {title: 42}
      relations:
        samples:
          targetClass: Sample
          targetResources: sample1
  Sample:
    sample1:
      content: {}
`)
	stub := &stubContentValidator{}
	report, err := schemapack.Validate(mustSchema(t, labSchema), dp, schemapack.WithContentValidator(stub))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("the stub accepts everything, got %v", report)
	}
	if stub.calls != 2 {
		t.Fatalf("expected one call per resource, got %d", stub.calls)
	}
}

func TestValidate_ReportIsSorted(t *testing.T) {
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Experiment:
    exp2:
      content: {title: "b"}
    exp1:
      content: {title: "a"}
  Sample: {}
`)
	report := mustValidate(t, mustSchema(t, labSchema), dp)
	if len(report) != 2 {
		t.Fatalf("expected two violations, got %v", report)
	}
	if report[0].Resource != "exp1" || report[1].Resource != "exp2" {
		t.Fatalf("expected deterministic resource order, got %v", report)
	}
}

func TestValidationReport_AsError(t *testing.T) {
	dp := mustData(t, `
datapack: 0.3.0
resources:
  Experiment:
    exp1:
      content: {title: "first run"}
  Sample: {}
`)
	report := mustValidate(t, mustSchema(t, labSchema), dp)
	if len(report) == 0 {
		t.Fatal("expected violations")
	}

	var err error = report
	extracted, ok := schemapack.AsReport(fmt.Errorf("checking dataset: %w", err))
	if !ok || len(extracted) != len(report) {
		t.Fatalf("expected the report back through the error chain, got %v, %t", extracted, ok)
	}
	if !strings.Contains(err.Error(), "missing_mandatory_target") {
		t.Fatalf("expected the summary to name the violation, got %q", err.Error())
	}
}

func TestValidate_UncondensedSchemaIsStructural(t *testing.T) {
	sp := mustSchema(t, `
schemapack: 0.3.0
classes:
  Experiment:
    id: {propertyName: alias}
    content: relative/path/to/schema.json
`)
	_, err := schemapack.Validate(sp, mustData(t, `
datapack: 0.3.0
resources:
  Experiment: {}
`))
	var structural *schemapack.StructuralError
	if err == nil || !errors.As(err, &structural) {
		t.Fatalf("expected a structural error for an uncondensed schemapack, got %v", err)
	}
}
