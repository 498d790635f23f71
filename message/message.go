// Package message implements typed belief records.
// Every schema-name is globally unique; messages are value-typed but
// retained by shared reference so a single message can be held by the
// belief context, a pending event, and a bus adapter without copying.
package message

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Message is a typed record identified by a schema name. Implementations
// support clone, equality, field get/set by name, and JSON round-trip.
type Message interface {
	// SchemaName returns the globally unique schema this message belongs to.
	SchemaName() string
	// Clone returns a deep copy so callers can mutate without aliasing the
	// shared reference held elsewhere (belief context, pending events...).
	Clone() Message
	// Equal reports deep value equality against another message of the
	// same schema. Messages of different schemas are never equal.
	Equal(other Message) bool
	// Get returns the named field's value and whether it was present.
	Get(field string) (any, bool)
	// Set assigns the named field's value, returning a ToolError-free
	// failure only when the underlying representation rejects the type.
	Set(field string, value any) error
	// MarshalJSON and UnmarshalJSON give every Message a stable wire form.
	json.Marshaler
	json.Unmarshaler
}

// Record is the default Message implementation: a schema name plus a set
// of fields backed by a map, which keeps no field order. It is the concrete
// type produced by the authoring API and returned by the belief context.
type Record struct {
	schema string
	fields map[string]any
}

// NewRecord constructs an empty Record for the given schema.
func NewRecord(schema string) *Record {
	return &Record{schema: schema, fields: map[string]any{}}
}

// NewRecordFromMap constructs a Record, copying the supplied fields.
func NewRecordFromMap(schema string, fields map[string]any) *Record {
	r := NewRecord(schema)
	for k, v := range fields {
		r.fields[k] = v
	}
	return r
}

func (r *Record) SchemaName() string { return r.schema }

func (r *Record) Clone() Message {
	cp := NewRecord(r.schema)
	for k, v := range r.fields {
		cp.fields[k] = deepCopyValue(v)
	}
	return cp
}

func (r *Record) Equal(other Message) bool {
	o, ok := other.(*Record)
	if !ok || o == nil {
		return false
	}
	if r.schema != o.schema || len(r.fields) != len(o.fields) {
		return false
	}
	for k, v := range r.fields {
		ov, present := o.fields[k]
		if !present {
			return false
		}
		aj, err1 := json.Marshal(v)
		bj, err2 := json.Marshal(ov)
		if err1 != nil || err2 != nil || string(aj) != string(bj) {
			return false
		}
	}
	return true
}

func (r *Record) Get(field string) (any, bool) {
	v, ok := r.fields[field]
	return v, ok
}

func (r *Record) Set(field string, value any) error {
	if field == "" {
		return fmt.Errorf("message: empty field name")
	}
	r.fields[field] = value
	return nil
}

// Fields returns a defensive copy of the underlying field map, used by
// schema verification and JSON encoding.
func (r *Record) Fields() map[string]any {
	cp := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		cp[k] = v
	}
	return cp
}

type wireRecord struct {
	Schema string         `json:"schema"`
	Fields map[string]any `json:"fields"`
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{Schema: r.schema, Fields: r.fields})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.schema = w.Schema
	if w.Fields == nil {
		w.Fields = map[string]any{}
	}
	r.fields = w.Fields
	return nil
}

func deepCopyValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// Registry tracks the set of globally-unique schema names that have been
// registered, independent of the validating Schema objects held by the
// model registry. It exists so message construction can reject an unknown
// schema name cheaply without importing the model package (which would
// create an import cycle: model depends on message, not vice versa).
type Registry struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewRegistry constructs an empty schema-name registry.
func NewRegistry() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

// Declare registers a schema name, returning an error if it was already
// declared. Schema names must be globally unique.
func (r *Registry) Declare(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.names[name]; dup {
		return fmt.Errorf("message: schema %q already registered", name)
	}
	r.names[name] = struct{}{}
	return nil
}

// Known reports whether name was previously declared.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}
