package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const itemsSchemaURL = "https://github.com/sandeepkv93/tasklist/schema/items.json"

const itemsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title"],
    "properties": {
      "title":      {"type": "string"},
      "cat":        {"type": ["string", "null"]},
      "prio":       {"type": ["integer", "null"]},
      "dl":         {"type": ["string", "null"]},
      "status":     {"type": ["string", "null"]},
      "created_at": {"type": ["string", "null"]}
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(itemsSchemaURL, strings.NewReader(itemsSchema)); err != nil {
		return nil, fmt.Errorf("add items schema: %w", err)
	}
	return compiler.Compile(itemsSchemaURL)
})

func validateDocument(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s", ErrInvalidFormat, firstLeaf(ve))
		}
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

// firstLeaf walks to the deepest cause, which carries the useful location.
func firstLeaf(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, ve.Message)
}
