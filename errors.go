package schemapack

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Violation codes (exported consts for IDE completion and type safety by
// convention).
const (
	// Structure of the datapack relative to the schemapack.
	CodeMissingClassSlot = "missing_class_slot"
	CodeUnknownClassSlot = "unknown_class_slot"
	CodeUnknownRelation  = "unknown_relation"

	// Per relation instance.
	CodeTargetClassMismatch = "target_class_mismatch"
	CodeTargetNotFound      = "target_not_found"

	// Target-side cardinality and obligation.
	CodeMissingMandatoryTarget = "missing_mandatory_target"
	CodePluralityMismatch      = "plurality_mismatch"

	// Origin-side cardinality and obligation (reverse-index checks).
	CodeUnreferencedMandatoryTarget = "unreferenced_mandatory_target"
	CodeFanInExceeded               = "fan_in_exceeded"

	// Resource content vs the class content schema.
	CodeContentViolation = "content_violation"

	// Root-marker consistency.
	CodeMissingRoot         = "missing_root"
	CodeUnexpectedRoot      = "unexpected_root"
	CodeUnknownRootResource = "unknown_root_resource"
)

// Violation records a single validation finding. The Class/Resource/Relation
// fields locate the subject; any of them may be empty when the finding is not
// tied to that level (e.g. a missing class slot has no resource).
type Violation struct {
	Code     string
	Class    string
	Resource string
	Relation string
	Message  string
}

func (v Violation) String() string {
	subject := "datapack"
	switch {
	case v.Class != "" && v.Resource != "":
		subject = fmt.Sprintf("resource %q.%q", v.Class, v.Resource)
	case v.Class != "":
		subject = fmt.Sprintf("class %q", v.Class)
	}
	if v.Relation != "" {
		subject += fmt.Sprintf(" relation %q", v.Relation)
	}
	return fmt.Sprintf("%s at %s: %s", v.Code, subject, v.Message)
}

// ValidationReport is an ordered collection of violations. An empty report
// means the datapack is valid. It implements error so callers may treat a
// non-empty report as a failure.
type ValidationReport []Violation

// Error summarizes the first few violations.
func (r ValidationReport) Error() string {
	if len(r) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	fmt.Fprintf(b, "validation failed with %d violation(s): ", len(r))
	lim := len(r)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(r[i].String())
	}
	if len(r) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(r))
	}
	return b.String()
}

// sorted returns the report ordered by class, resource, code, and relation so
// output is deterministic regardless of map iteration order during checks.
func (r ValidationReport) sorted() ValidationReport {
	out := append(ValidationReport(nil), r...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Resource != b.Resource {
			return a.Resource < b.Resource
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Relation < b.Relation
	})
	return out
}

// AsReport extracts a ValidationReport from an error using errors.As.
func AsReport(err error) (ValidationReport, bool) {
	if err == nil {
		return nil, false
	}
	var r ValidationReport
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// StructuralError indicates a document that violates the format itself, such
// as an unknown class reference or a malformed relation shape. It is fatal:
// validation never runs on structurally broken input.
type StructuralError struct {
	Msg string
	Err error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("structural error: %s: %v", e.Msg, e.Err)
	}
	return "structural error: " + e.Msg
}

func (e *StructuralError) Unwrap() error { return e.Err }

func structuralf(format string, args ...any) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// ParseError indicates input that could not be decoded as YAML or JSON at all.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("cannot parse %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("cannot parse document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RootNotFoundError is returned by the isolation operations when the requested
// root does not exist. Resource is empty when a class was requested.
type RootNotFoundError struct {
	Class    string
	Resource string
}

func (e *RootNotFoundError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("root class %q does not exist", e.Class)
	}
	return fmt.Sprintf("root resource %q of class %q does not exist", e.Resource, e.Class)
}

// SchemaFileNotFoundError is returned by Condense when a file-referenced
// content schema cannot be read.
type SchemaFileNotFoundError struct {
	Class string
	Path  string
	Err   error
}

func (e *SchemaFileNotFoundError) Error() string {
	return fmt.Sprintf("content schema of class %q not found at %q: %v", e.Class, e.Path, e.Err)
}

func (e *SchemaFileNotFoundError) Unwrap() error { return e.Err }

// SchemaParseError is returned by Condense when a file-referenced content
// schema exists but cannot be parsed into a JSON Schema object.
type SchemaParseError struct {
	Class string
	Path  string
	Err   error
}

func (e *SchemaParseError) Error() string {
	return fmt.Sprintf("content schema of class %q at %q is not a valid schema: %v", e.Class, e.Path, e.Err)
}

func (e *SchemaParseError) Unwrap() error { return e.Err }
