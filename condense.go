package schemapack

import (
	"os"
	"path/filepath"
)

// Condense resolves every file-referenced content schema of the given
// schemapack into inline form, leaving inline schemas untouched. Paths are
// resolved relative to baseDir. Condensing an already condensed document is a
// no-op. The input is never mutated.
func Condense(sp *SchemaPack, baseDir string) (*SchemaPack, error) {
	out := sp.clone()
	changed := false

	for _, className := range sortedKeys(out.Classes) {
		class := out.Classes[className]
		if class.Content.Inline() {
			continue
		}

		path := class.Content.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &SchemaFileNotFoundError{Class: className, Path: class.Content.Path, Err: err}
		}

		var schema map[string]any
		if err := decodeStrict(data, &schema); err != nil {
			return nil, &SchemaParseError{Class: className, Path: class.Content.Path, Err: err}
		}
		class.Content = ContentSchema{Schema: schema}
		out.Classes[className] = class
		changed = true
	}

	if !changed {
		return out, nil
	}
	// Re-run the structural checks that need inline content schemas, such as
	// property collisions with relation and id names.
	if err := out.check(); err != nil {
		return nil, err
	}
	return out, nil
}
