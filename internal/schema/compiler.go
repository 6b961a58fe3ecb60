package schema

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"

	"tmsintake/internal/model"
	"tmsintake/internal/registry"
)

// datePattern accepts YYYY-MM-DD, an RFC 3339 timestamp, or an empty string
const datePattern = `^(\d{4}-\d{2}-\d{2}([T ].*)?)?$`

// Compiler builds and caches the JSON Schema describing the field-update
// body of each form.
type Compiler struct {
	compiler *js.Compiler
	cache    *expirable.LRU[model.FormType, *js.Schema]
}

// NewCompilerWithCache creates a new compiler with cache
func NewCompilerWithCache(maxSize int) *Compiler {
	c := js.NewCompiler()
	c.Draft = js.Draft2020

	return &Compiler{
		compiler: c,
		cache:    expirable.NewLRU[model.FormType, *js.Schema](maxSize, nil, time.Hour),
	}
}

// ForForm returns the JSON Schema of a partial update of f: an object whose
// keys are declared field keys and whose values have the shape of the kind.
func ForForm(f *registry.Form) map[string]interface{} {
	props := make(map[string]interface{}, len(f.Fields))
	for _, spec := range f.Fields {
		props[spec.Key] = propertyFor(spec)
	}
	return map[string]interface{}{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                f.Title,
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

func propertyFor(spec model.FieldSpec) map[string]interface{} {
	p := map[string]interface{}{"title": spec.Label}
	switch spec.Kind {
	case model.KindDate:
		p["type"] = []string{"string", "null"}
		p["pattern"] = datePattern
	case model.KindNumeric:
		p["type"] = []string{"string", "number", "null"}
	case model.KindMultiCheckbox:
		p["type"] = []string{"array", "object", "null"}
		p["items"] = map[string]interface{}{"type": "string"}
		p["additionalProperties"] = map[string]interface{}{"type": "boolean"}
	default:
		p["type"] = []string{"string", "null"}
	}
	return p
}

// Prepare compiles and caches the schema of f
func (c *Compiler) Prepare(ctx context.Context, f *registry.Form) (*js.Schema, error) {
	if compiled, ok := c.cache.Get(f.Type); ok {
		return compiled, nil
	}

	schemaBytes, err := json.Marshal(ForForm(f))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	// Content-addressed URL so a changed declaration never reuses a stale resource
	hash := fmt.Sprintf("%x", sha256.Sum256(schemaBytes))
	resourceURL := fmt.Sprintf("mem://forms/%s-%s.json", f.Type, hash[:16])
	if err := c.compiler.AddResource(resourceURL, bytes.NewReader(schemaBytes)); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}

	compiled, err := c.compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	c.cache.Add(f.Type, compiled)
	return compiled, nil
}

// Validate checks a decoded JSON body against the schema of f
func (c *Compiler) Validate(ctx context.Context, f *registry.Form, body map[string]interface{}) error {
	compiled, err := c.Prepare(ctx, f)
	if err != nil {
		return err
	}

	// Round-trip so numbers and nested values have the types the validator expects
	valueBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	var valueRaw interface{}
	if err := json.Unmarshal(valueBytes, &valueRaw); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	if err := compiled.Validate(valueRaw); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}
