package message

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema verifies that a message's fields satisfy a JSON-schema document.
// It backs the pursue-time check that all required fields are present
// and typed, and the same check run against untrusted analyse
// delegations before they're accepted.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// Compile builds a Schema from a raw JSON-schema document (as decoded
// JSON, e.g. map[string]any or a struct with matching json tags).
func Compile(name string, doc any) (*Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("message: marshal schema doc for %q: %w", name, err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("message: decode schema doc for %q: %w", name, err)
	}
	resourceID := "schema://" + name
	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceID, decoded); err != nil {
		return nil, fmt.Errorf("message: add schema resource %q: %w", name, err)
	}
	compiled, err := c.Compile(resourceID)
	if err != nil {
		return nil, fmt.Errorf("message: compile schema %q: %w", name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// Name returns the schema name this Schema validates.
func (s *Schema) Name() string { return s.name }

// Verify checks msg's fields against the compiled JSON schema, rejecting
// mismatches between msg's schema name and s.Name() outright.
func (s *Schema) Verify(msg Message) error {
	if s == nil {
		return nil
	}
	if msg == nil {
		return fmt.Errorf("message: nil message for schema %q", s.name)
	}
	if msg.SchemaName() != s.name {
		return fmt.Errorf("message: schema mismatch: got %q want %q", msg.SchemaName(), s.name)
	}
	rec, ok := msg.(*Record)
	if !ok {
		return fmt.Errorf("message: schema verification requires *Record, got %T", msg)
	}
	return s.compiled.Validate(map[string]any(rec.Fields()))
}

// VerifyFields validates a raw field map directly, without a Record and
// without the schema-name check Verify makes.
func (s *Schema) VerifyFields(fields map[string]any) error {
	if s == nil {
		return nil
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return s.compiled.Validate(fields)
}
