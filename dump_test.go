package schemapack_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/packspec/schemapack"
)

func TestDumpSchemaPack_RoundTrip(t *testing.T) {
	sp := mustSchema(t, labSchema)

	dumped, err := schemapack.DumpSchemaPack(sp, schemapack.FormatYAML)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	reparsed, err := schemapack.ParseSchemaPack(dumped)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	redumped, err := schemapack.DumpSchemaPack(reparsed, schemapack.FormatYAML)
	if err != nil {
		t.Fatalf("redump: %v", err)
	}
	if string(dumped) != string(redumped) {
		t.Fatalf("dump/parse/dump is not stable:\n%s\nvs\n%s", dumped, redumped)
	}
}

func TestDumpSchemaPack_KeyOrderIndependent(t *testing.T) {
	shuffled := mustSchema(t, `
schemapack: 0.3.0
description: Experiments and the samples they measure.
classes:
  Sample:
    content:
      additionalProperties: true
      type: object
    id: {propertyName: alias}
  Experiment:
    relations:
      samples:
        multiple: {target: false, origin: false}
        mandatory: {target: true, origin: false}
        targetClass: Sample
    content:
      additionalProperties: false
      required: [title]
      properties:
        title: {type: string}
      type: object
    id: {propertyName: alias}
`)
	a, err := schemapack.DumpSchemaPack(mustSchema(t, labSchema), schemapack.FormatYAML)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	b, err := schemapack.DumpSchemaPack(shuffled, schemapack.FormatYAML)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("equal documents must dump identically:\n%s\nvs\n%s", a, b)
	}
}

func TestDumpDataPack_RoundTrip(t *testing.T) {
	dp := mustData(t, labData)

	dumped, err := schemapack.DumpDataPack(dp, schemapack.FormatYAML)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	reparsed, err := schemapack.ParseDataPack(dumped)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	report := mustValidate(t, mustSchema(t, labSchema), reparsed)
	if len(report) != 0 {
		t.Fatalf("the reparsed datapack must still validate, got %v", report)
	}
}

func TestDumpDataPack_RelationShapes(t *testing.T) {
	dp := mustData(t, `
datapack: 0.3.0
resources:
  A:
    a1:
      content: {}
      relations:
        one:
          targetClass: B
          targetResources: b1
        none:
          targetClass: B
          targetResources: null
        many:
          targetClass: B
          targetResources: [b2, b1]
`)
	dumped, err := schemapack.DumpDataPack(dp, schemapack.FormatYAML)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := string(dumped)

	if !strings.Contains(out, "targetResources: b1\n") {
		t.Errorf("single targets must dump as a scalar:\n%s", out)
	}
	if !strings.Contains(out, "targetResources: null") {
		t.Errorf("absent single targets must dump as null:\n%s", out)
	}
	// List targets come back sorted.
	if !strings.Contains(out, "- b1\n") || strings.Index(out, "- b1") > strings.Index(out, "- b2") {
		t.Errorf("list targets must dump as a sorted sequence:\n%s", out)
	}
}

func TestDump_JSONFormat(t *testing.T) {
	dumped, err := schemapack.DumpSchemaPack(mustSchema(t, labSchema), schemapack.FormatJSON)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.HasSuffix(string(dumped), "\n") {
		t.Error("JSON dumps must end with a newline")
	}
	var tree map[string]any
	if err := json.Unmarshal(dumped, &tree); err != nil {
		t.Fatalf("JSON dump is not valid JSON: %v", err)
	}
	if tree["schemapack"] != "0.3.0" {
		t.Fatalf("expected the format version in the dump, got %v", tree["schemapack"])
	}

	// JSON is a YAML subset: the dump parses back through the regular path.
	if _, err := schemapack.ParseSchemaPack(dumped); err != nil {
		t.Fatalf("reparse JSON dump: %v", err)
	}
}
