// Package schemapack implements the schemapack data-modeling format:
//
//   - A schemapack document declares typed, linked classes. Each class carries
//     a JSON Schema for its resource content and a set of named relations with
//     mandatory/multiple constraints on both the origin and the target end.
//   - A datapack document holds resources conforming to a schemapack,
//     referencing each other by id along the declared relations.
//
// The package provides:
//
//   - Loading and dumping of both document kinds as YAML or JSON
//   - Validate, which checks a datapack against a schemapack and accumulates
//     all violations into a ValidationReport instead of stopping at the first
//   - IsolateResource/IsolateClass, which extract the rooted subgraph
//     reachable from a resource or class into a new, self-contained document
//   - Condense, which inlines file-referenced content schemas
//
// Design policy:
//   - Keep the public API in the root package; put supporting implementations
//     under internal/. The mermaid exporter lives under export/, the CLI under
//     cmd/schemapack.
//   - Documents are immutable value graphs once parsed; every operation is a
//     pure function returning a new document or a report.
//   - The library never prints or logs; results and typed failures are
//     returned to the caller.
//
// Typical usage:
//
//	sp, err := schemapack.LoadSchemaPack("model.schemapack.yaml")
//	dp, err := schemapack.LoadDataPack("data.datapack.yaml")
//	report, err := schemapack.Validate(sp, dp)
//	rooted, err := schemapack.IsolateResource(sp, dp, "Experiment", "exp1")

package schemapack
