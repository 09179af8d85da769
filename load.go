package schemapack

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ParseSchemaPack decodes a schemapack definition from YAML or JSON bytes.
// File-referenced content schemas are left unresolved; use Condense to inline
// them. Malformed input yields a *ParseError, format violations a
// *StructuralError.
func ParseSchemaPack(data []byte) (*SchemaPack, error) {
	var sp SchemaPack
	if err := decodeStrict(data, &sp); err != nil {
		return nil, err
	}
	if err := sp.check(); err != nil {
		return nil, err
	}
	return &sp, nil
}

// ParseDataPack decodes a datapack definition from YAML or JSON bytes.
func ParseDataPack(data []byte) (*DataPack, error) {
	var dp DataPack
	if err := decodeStrict(data, &dp); err != nil {
		return nil, err
	}
	if err := dp.check(); err != nil {
		return nil, err
	}
	return &dp, nil
}

// LoadSchemaPack reads a schemapack definition from a file. Content schema
// file references are resolved relative to the file's directory, so a loaded
// schemapack is always condensed.
func LoadSchemaPack(path string) (*SchemaPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	sp, err := ParseSchemaPack(data)
	if err != nil {
		return nil, annotatePath(err, path)
	}
	sp, err = Condense(sp, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// LoadDataPack reads a datapack definition from a file.
func LoadDataPack(path string) (*DataPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	dp, err := ParseDataPack(data)
	if err != nil {
		return nil, annotatePath(err, path)
	}
	return dp, nil
}

// decodeStrict decodes YAML (and therefore JSON) with unknown keys rejected.
// Structural errors raised by custom unmarshalers pass through typed; anything
// else is reported as a parse failure.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return &ParseError{Err: errors.New("empty document")}
		}
		var structural *StructuralError
		if errors.As(err, &structural) {
			return structural
		}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return &StructuralError{Msg: "document does not match the expected shape", Err: typeErr}
		}
		return &ParseError{Err: err}
	}
	return nil
}

func annotatePath(err error, path string) error {
	var parseErr *ParseError
	if errors.As(err, &parseErr) && parseErr.Path == "" {
		return &ParseError{Path: path, Err: parseErr.Err}
	}
	return err
}
