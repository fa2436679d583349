// Package profile loads the candidate's field mapping: the values an
// adapter may feed into an application form. The mapping is external
// configuration, loaded read-only.
package profile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Field is one candidate attribute keyed by the form-field key adapters
// understand (first_name, email, phone, resume_path, ...).
type Field struct {
	Key   string
	Value string
}

// Profile is an immutable candidate field mapping.
type Profile struct {
	values map[string]string
}

// Load reads a YAML file of key: value pairs.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing profile %q: %w", path, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("profile %q is empty", path)
	}

	return &Profile{values: values}, nil
}

// Empty returns a profile with no fields; the orchestrator then only
// opens the page without filling anything.
func Empty() *Profile {
	return &Profile{values: map[string]string{}}
}

// FromMap builds a profile from an in-memory mapping.
func FromMap(values map[string]string) *Profile {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Profile{values: copied}
}

// Fields returns the mapping in deterministic (key-sorted) order so fill
// sequences are reproducible across runs.
func (p *Profile) Fields() []Field {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: p.values[k]})
	}
	return fields
}

// Get looks up a single field value.
func (p *Profile) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Len returns the number of mapped fields.
func (p *Profile) Len() int {
	return len(p.values)
}
