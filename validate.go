package schemapack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/packspec/schemapack/internal/graph"
)

// ValidateOption configures a Validate call.
type ValidateOption func(*validator)

// WithContentValidator swaps the JSON Schema based default for a custom
// content-validation implementation.
func WithContentValidator(cv ContentValidator) ValidateOption {
	return func(v *validator) { v.content = cv }
}

// Validate checks a datapack against a schemapack and returns every violation
// found, never stopping at the first: the report is meant for humans debugging
// a dataset. An empty report means the datapack is valid.
//
// Checks run in three stages. Document-level checks (class slots, root
// markers) run first; class- and resource-level checks only run when the
// document level is intact, since they assume resolvable class slots.
//
// When the schemapack declares a root class, origin-side mandatory/multiple
// checks are evaluated only over the closure reachable from the datapack's
// root resource: a rooted datapack is intentionally partial, and inventory
// outside the closure is absent by design, not a violation.
//
// The error return is reserved for structural malformation (nil or
// uncondensed documents, broken content schemas); well-formed-but-invalid
// input never produces an error, only a report.
func Validate(sp *SchemaPack, dp *DataPack, opts ...ValidateOption) (ValidationReport, error) {
	if sp == nil || dp == nil {
		return nil, structuralf("both a schemapack and a datapack are required")
	}
	for _, className := range sortedKeys(sp.Classes) {
		if !sp.Classes[className].Content.Inline() {
			return nil, structuralf("class %q has an unresolved content schema reference; condense the schemapack first", className)
		}
	}

	v := &validator{
		sp:      sp,
		dp:      dp,
		graph:   buildInstanceGraph(dp),
		content: newJSONSchemaValidator(),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.checkClassSlots()
	v.checkRootMarkers()
	if len(v.report) > 0 {
		return v.report.sorted(), nil
	}

	if sp.RootClass != "" {
		v.scope = v.graph.closure(dp.RootClass, dp.RootResource)
	}

	v.checkOriginSides()
	if err := v.checkResources(); err != nil {
		return nil, err
	}
	return v.report.sorted(), nil
}

type validator struct {
	sp      *SchemaPack
	dp      *DataPack
	graph   *instanceGraph
	content ContentValidator

	// scope restricts origin-side checks to the root closure of a rooted
	// document; nil means the whole document.
	scope map[graph.ResourceRef]bool

	report ValidationReport
}

func (v *validator) add(code, class, resource, relation, message string) {
	v.report = append(v.report, Violation{
		Code:     code,
		Class:    class,
		Resource: resource,
		Relation: relation,
		Message:  message,
	})
}

// checkClassSlots verifies that the datapack has a slot for every schemapack
// class and no slots for classes the schemapack does not define.
func (v *validator) checkClassSlots() {
	for _, className := range sortedKeys(v.sp.Classes) {
		if _, ok := v.dp.Resources[className]; !ok {
			v.add(CodeMissingClassSlot, className, "", "",
				fmt.Sprintf("the datapack has no resource slot for class %q", className))
		}
	}
	for _, className := range v.dp.ClassNames() {
		if _, ok := v.sp.Classes[className]; !ok {
			v.add(CodeUnknownClassSlot, className, "", "",
				fmt.Sprintf("the datapack has a resource slot for class %q which the schemapack does not define", className))
		}
	}
}

// checkRootMarkers verifies that the datapack is rooted exactly when the
// schemapack is, and that a declared root resource exists.
func (v *validator) checkRootMarkers() {
	switch {
	case v.sp.RootClass != "" && v.dp.RootResource == "":
		v.add(CodeMissingRoot, v.sp.RootClass, "", "",
			fmt.Sprintf("the schemapack declares root class %q but the datapack declares no root resource", v.sp.RootClass))
	case v.sp.RootClass == "" && v.dp.RootResource != "":
		v.add(CodeUnexpectedRoot, v.dp.RootClass, v.dp.RootResource, "",
			"the datapack declares a root resource but the schemapack declares no root class")
	case v.sp.RootClass != "":
		if v.dp.RootClass != v.sp.RootClass {
			v.add(CodeUnexpectedRoot, v.dp.RootClass, v.dp.RootResource, "",
				fmt.Sprintf("the datapack's root class %q does not match the schemapack's root class %q", v.dp.RootClass, v.sp.RootClass))
			return
		}
		if _, ok := v.dp.Resources[v.dp.RootClass][v.dp.RootResource]; !ok {
			v.add(CodeUnknownRootResource, v.dp.RootClass, v.dp.RootResource, "",
				fmt.Sprintf("the declared root resource %q does not exist in class %q", v.dp.RootResource, v.dp.RootClass))
		}
	}
}

// checkOriginSides runs the reverse-direction checks: for every relation that
// is mandatory or non-multiple on the origin end, every resource of the
// target class is inspected through the reverse index. This is the only place
// where the wire format's unidirectional edge storage has to be inverted.
func (v *validator) checkOriginSides() {
	for _, originClass := range sortedKeys(v.sp.Classes) {
		class := v.sp.Classes[originClass]
		for _, relationName := range sortedKeys(class.Relations) {
			relation := class.Relations[relationName]
			if !relation.Mandatory.Origin && relation.Multiple.Origin {
				continue
			}
			for _, targetID := range v.dp.ResourceIDs(relation.TargetClass) {
				if v.scope != nil && !v.scope[graph.ResourceRef{Class: relation.TargetClass, ID: targetID}] {
					continue
				}
				origins := v.graph.reverse.Origins(relation.TargetClass, targetID, originClass, relationName)
				if relation.Mandatory.Origin && len(origins) == 0 {
					v.add(CodeUnreferencedMandatoryTarget, relation.TargetClass, targetID, relationName,
						fmt.Sprintf("not referenced by any %q resource although the relation is mandatory on the origin end", originClass))
				}
				if !relation.Multiple.Origin && len(origins) > 1 {
					sorted := append([]string(nil), origins...)
					sort.Strings(sorted)
					v.add(CodeFanInExceeded, relation.TargetClass, targetID, relationName,
						fmt.Sprintf("referenced by multiple %q resources (%s) although the relation allows only a single origin", originClass, strings.Join(sorted, ", ")))
				}
			}
		}
	}
}

// checkResources runs all per-resource checks: relation instance shape,
// reference integrity, and content conformance.
func (v *validator) checkResources() error {
	for _, className := range v.dp.ClassNames() {
		class := v.sp.Classes[className]
		for _, resourceID := range v.dp.ResourceIDs(className) {
			resource := v.dp.Resources[className][resourceID]
			v.checkRelationInstances(className, resourceID, class, resource)
			v.checkMandatoryTargets(className, resourceID, class, resource)
			if err := v.checkContent(className, resourceID, class, resource); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) checkRelationInstances(className, resourceID string, class ClassDefinition, resource Resource) {
	for _, relationName := range sortedKeys(resource.Relations) {
		instance := resource.Relations[relationName]
		relation, ok := class.Relations[relationName]
		if !ok {
			v.add(CodeUnknownRelation, className, resourceID, relationName,
				fmt.Sprintf("class %q does not define a relation %q", className, relationName))
			continue
		}
		if instance.TargetClass != relation.TargetClass {
			v.add(CodeTargetClassMismatch, className, resourceID, relationName,
				fmt.Sprintf("states target class %q but the schemapack declares %q", instance.TargetClass, relation.TargetClass))
			continue
		}
		if instance.Multiple != relation.Multiple.Target {
			expected, got := "a single target id", "a list"
			if relation.Multiple.Target {
				expected, got = "a list of target ids", "a single id"
			}
			v.add(CodePluralityMismatch, className, resourceID, relationName,
				fmt.Sprintf("expected %s but got %s", expected, got))
		}
		ids := append([]string(nil), instance.TargetIDs...)
		sort.Strings(ids)
		for _, targetID := range ids {
			if !v.graph.exists(graph.ResourceRef{Class: relation.TargetClass, ID: targetID}) {
				v.add(CodeTargetNotFound, className, resourceID, relationName,
					fmt.Sprintf("references %q which does not exist in class %q", targetID, relation.TargetClass))
			}
		}
	}
}

func (v *validator) checkMandatoryTargets(className, resourceID string, class ClassDefinition, resource Resource) {
	for _, relationName := range sortedKeys(class.Relations) {
		if !class.Relations[relationName].Mandatory.Target {
			continue
		}
		if len(resource.Relations[relationName].TargetIDs) == 0 {
			v.add(CodeMissingMandatoryTarget, className, resourceID, relationName,
				"no target defined although the relation is mandatory on the target end")
		}
	}
}

func (v *validator) checkContent(className, resourceID string, class ClassDefinition, resource Resource) error {
	contentErrors, err := v.content.ValidateContent(class.Content.Schema, resource.Content)
	if err != nil {
		return &StructuralError{
			Msg: fmt.Sprintf("the content schema of class %q cannot be used for validation", className),
			Err: err,
		}
	}
	for _, contentError := range contentErrors {
		v.add(CodeContentViolation, className, resourceID, "", contentError.String())
	}
	return nil
}
