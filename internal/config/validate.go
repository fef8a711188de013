package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var configSchema []byte

const schemaResourceName = "treedump-config.json"

var (
	schemaOnce sync.Once
	compiled   *jsonschema.Schema
	compileErr error
)

func getSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaResourceName, bytes.NewReader(configSchema)); err != nil {
			compileErr = fmt.Errorf("config: loading embedded schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaResourceName)
		if compileErr != nil {
			compileErr = fmt.Errorf("config: compiling embedded schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// ValidateRaw checks raw JSON config bytes against the embedded config
// schema, rejecting unknown fields and missing required ones before the
// data is ever unmarshaled into File.
func ValidateRaw(data []byte) error {
	sch, err := getSchema()
	if err != nil {
		return err
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("config: invalid JSON: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config: schema validation failed: %w", err)
	}
	return nil
}
