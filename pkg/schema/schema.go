package schema

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.RWMutex
)

type Schema struct {
	RawSchema *jsonschema.Schema
	// Parameters represents the tool input definition:
	// an object schema with properties and required fields only.
	Parameters *jsonschema.Schema
}

// New creates a new schema from the given struct type
func New(t reflect.Type) (*Schema, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Errorf("schema: expected struct type, got %v", t)
	}

	cacheMu.RLock()
	s, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		return s, nil
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	raw := JSONSchema(t)
	s = &Schema{
		RawSchema:  raw,
		Parameters: ToFunctionSchema(raw),
	}
	cache[t] = s
	return s, nil
}

// MustNew creates a new schema from the given type and panics on error
func MustNew(t reflect.Type) *Schema {
	s, err := New(t)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) String() string {
	js, _ := json.MarshalIndent(s.Parameters, "", "\t")
	return string(js)
}

// PropertyNames returns the top level properties in declaration order
func (s *Schema) PropertyNames() []string {
	var names []string
	if s.Parameters.Properties == nil {
		return names
	}
	for pair := s.Parameters.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// ToFunctionSchema strips the meta fields from the root schema
func ToFunctionSchema(tSchema *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       tSchema.Type,
		Properties: tSchema.Properties,
		Required:   tSchema.Required,
	}
}

// JSONSchema return the json schema of the type
func JSONSchema(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.ExpandedStruct = true
	r.DoNotReference = true
	r.AllowAdditionalProperties = true

	return r.ReflectFromType(t)
}
