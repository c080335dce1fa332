// Package schema provides JSON schema validation for cruxcheck suite and
// scenario files. Both are written in YAML and validated after conversion to
// their JSON data model.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	schemafs "github.com/crux-toolkit/cruxcheck/schema"
)

var (
	suiteSchema    *jsonschema.Schema
	scenarioSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

// compileSchemas compiles all embedded schemas once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		for _, name := range []string{"suite.schema.json", "scenario.schema.json"} {
			data, err := schemafs.FS.ReadFile(name)
			if err != nil {
				compileErr = fmt.Errorf("read %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = fmt.Errorf("unmarshal %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("add %s resource: %w", name, err)
				return
			}
		}

		var err error
		suiteSchema, err = compiler.Compile("suite.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile suite schema: %w", err)
			return
		}

		scenarioSchema, err = compiler.Compile("scenario.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile scenario schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateSuite validates YAML data against the suite schema.
func ValidateSuite(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return suiteSchema }, "suite")
}

// ValidateScenario validates YAML data against the scenario schema.
func ValidateScenario(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return scenarioSchema }, "scenario")
}

func validate(data []byte, sch func() *jsonschema.Schema, what string) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	inst, err := toInstance(data)
	if err != nil {
		return err
	}

	if err := sch().Validate(inst); err != nil {
		return fmt.Errorf("%s validation failed: %w", what, err)
	}

	return nil
}

// toInstance converts YAML into the value model the validator expects.
// JSON is the intermediate form so numbers arrive as json.Number.
func toInstance(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	js, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("YAML is not representable as JSON: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(js))
}
