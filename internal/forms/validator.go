package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"buildcare/internal/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks lead-form submissions against the fixed per-form JSON
// Schemas before anything is persisted. Compiled schemas are cached.
type Validator struct {
	compiler *js.Compiler
	cache    *expirable.LRU[string, *js.Schema]
}

// ErrInvalidSubmission marks payloads that failed schema validation, as
// opposed to internal compile or marshal errors.
var ErrInvalidSubmission = errors.New("submission invalid")

// NewValidator creates a validator with a compile cache.
func NewValidator(maxSize int) *Validator {
	c := js.NewCompiler()
	c.ExtractAnnotations = true
	c.AssertFormat = true

	return &Validator{
		compiler: c,
		cache:    expirable.NewLRU[string, *js.Schema](maxSize, nil, time.Hour),
	}
}

// formSchemas are the submission contracts of the three capture forms.
// Unknown extra fields are rejected so typos surface at submit time.
var formSchemas = map[model.LeadKind]map[string]interface{}{
	model.LeadKindInquiry: {
		"type": "object",
		"properties": map[string]interface{}{
			"name":        map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 120},
			"phone":       map[string]interface{}{"type": "string", "pattern": `^[0-9+()\-\s]{7,20}$`},
			"email":       map[string]interface{}{"type": "string", "format": "email"},
			"serviceSlug": map[string]interface{}{"type": "string", "maxLength": 80},
			"message":     map[string]interface{}{"type": "string", "maxLength": 2000},
			"sourcePage":  map[string]interface{}{"type": "string", "maxLength": 200},
		},
		"required":             []string{"name", "phone"},
		"additionalProperties": false,
	},
	model.LeadKindContact: {
		"type": "object",
		"properties": map[string]interface{}{
			"name":    map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 120},
			"email":   map[string]interface{}{"type": "string", "format": "email"},
			"phone":   map[string]interface{}{"type": "string", "pattern": `^[0-9+()\-\s]{7,20}$`},
			"subject": map[string]interface{}{"type": "string", "maxLength": 200},
			"message": map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 2000},
		},
		"required":             []string{"name", "email", "message"},
		"additionalProperties": false,
	},
	model.LeadKindExitIntent: {
		"type": "object",
		"properties": map[string]interface{}{
			"email":      map[string]interface{}{"type": "string", "format": "email"},
			"phone":      map[string]interface{}{"type": "string", "pattern": `^[0-9+()\-\s]{7,20}$`},
			"offer":      map[string]interface{}{"type": "string", "maxLength": 200},
			"sourcePage": map[string]interface{}{"type": "string", "maxLength": 200},
		},
		"required":             []string{"email"},
		"additionalProperties": false,
	},
}

// Validate checks a submission payload for the given form kind.
func (v *Validator) Validate(kind model.LeadKind, payload map[string]interface{}) error {
	schema, ok := formSchemas[kind]
	if !ok {
		return fmt.Errorf("unknown form kind: %s", kind)
	}

	compiled, err := v.prepare(string(kind), schema)
	if err != nil {
		return fmt.Errorf("failed to compile form schema: %w", err)
	}

	// Round-trip through JSON so numbers and nested values take the shapes
	// the validator expects.
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	return nil
}

func (v *Validator) prepare(name string, schema map[string]interface{}) (*js.Schema, error) {
	if cached, ok := v.cache.Get(name); ok {
		return cached, nil
	}

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	resourceURL := fmt.Sprintf("mem://forms/%s.json", name)
	if err := v.compiler.AddResource(resourceURL, bytes.NewReader(schemaBytes)); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}

	compiled, err := v.compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	v.cache.Add(name, compiled)
	return compiled, nil
}
