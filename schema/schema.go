// Package schema models the structural constraints a template
// document is validated against, and resolves which schema applies to
// a given document.
package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

// Schema is one node of a structural-constraint tree: permitted type,
// required keys, per-key sub-schemas, enumerated values, pattern and
// alternatives. Schema documents are a JSON Schema subset, written in
// YAML or JSON. $ref pointers are resolved at decode time, so a Schema
// value may be cyclic; every traversal here is document-driven and
// terminates at document leaves.
type Schema struct {
	Type        string
	Description string
	Required    []string

	// Properties keeps schema-declaration order; completion results
	// depend on it.
	Properties           []Property
	PatternProperties    []*PatternProperty
	AdditionalProperties *Schema
	// Closed marks additionalProperties: false. Keys matched by
	// neither Properties nor PatternProperties are violations.
	Closed bool
	Items  *Schema

	Enum    []string
	Pattern string
	OneOf   []*Schema

	reOnce sync.Once
	re     *regexp.Regexp
	reErr  error
}

type Property struct {
	Name   string
	Schema *Schema
}

// PatternProperty constrains every key matching Pattern. Resource maps
// use it for their user-chosen logical names.
type PatternProperty struct {
	Pattern string
	Schema  *Schema

	reOnce sync.Once
	re     *regexp.Regexp
	reErr  error
}

func (p *PatternProperty) match(name string) bool {
	p.reOnce.Do(func() {
		p.re, p.reErr = regexp.Compile(p.Pattern)
	})
	return p.reErr == nil && p.re.MatchString(name)
}

// Property returns the declared sub-schema for name, or nil.
func (s *Schema) Property(name string) *Schema {
	for i := range s.Properties {
		if s.Properties[i].Name == name {
			return s.Properties[i].Schema
		}
	}
	return nil
}

// Sub returns the sub-schema governing the object key name: a declared
// property, a matching pattern property, or additionalProperties.
func (s *Schema) Sub(name string) *Schema {
	if p := s.Property(name); p != nil {
		return p
	}
	for _, pp := range s.PatternProperties {
		if pp.match(name) {
			return pp.Schema
		}
	}
	return s.AdditionalProperties
}

// MatchPattern reports whether text matches the schema's pattern. The
// pattern compiles lazily, once.
func (s *Schema) MatchPattern(text string) (bool, error) {
	s.reOnce.Do(func() {
		s.re, s.reErr = regexp.Compile(s.Pattern)
	})
	if s.reErr != nil {
		return false, fmt.Errorf("%w: bad pattern %q: %v", ErrSchema, s.Pattern, s.reErr)
	}
	return s.re.MatchString(text), nil
}

// FromBytes decodes a schema document. YAML is a JSON superset, so one
// decoder serves both encodings.
func FromBytes(d []byte) (*Schema, error) {
	var v any
	if err := yaml.UnmarshalWithOptions(d, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	dec := &decoder{root: v, refs: make(map[string]*Schema)}
	return dec.schema(v)
}

// decoder resolves $ref pointers against the document root while
// decoding. Referenced schemas are memoized by pointer before they are
// filled in, so recursive definitions decode to cyclic Schema values
// instead of recursing forever.
type decoder struct {
	root any
	refs map[string]*Schema
}

func (d *decoder) schema(v any) (*Schema, error) {
	if ref, ok := refOf(v); ok {
		return d.ref(ref)
	}
	s := &Schema{}
	return s, d.fill(v, s)
}

func (d *decoder) ref(ref string) (*Schema, error) {
	// a definition may itself be a bare $ref; follow the alias chain
	seen := make(map[string]bool)
	for {
		if s := d.refs[ref]; s != nil {
			return s, nil
		}
		if seen[ref] {
			return nil, fmt.Errorf("%w: $ref cycle at %q", ErrSchema, ref)
		}
		seen[ref] = true
		node, err := d.deref(ref)
		if err != nil {
			return nil, err
		}
		if next, ok := refOf(node); ok {
			ref = next
			continue
		}
		s := &Schema{}
		d.refs[ref] = s
		return s, d.fill(node, s)
	}
}

// deref walks a local JSON pointer such as "#/definitions/Name" from
// the document root.
func (d *decoder) deref(ref string) (any, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, fmt.Errorf("%w: unsupported $ref %q", ErrSchema, ref)
	}
	v := d.root
	for _, tok := range strings.Split(ref[2:], "/") {
		tok = strings.ReplaceAll(tok, "~1", "/")
		tok = strings.ReplaceAll(tok, "~0", "~")
		ms, ok := v.(yaml.MapSlice)
		if !ok {
			return nil, fmt.Errorf("%w: unresolved $ref %q", ErrSchema, ref)
		}
		v = nil
		for _, item := range ms {
			if k, ok := item.Key.(string); ok && k == tok {
				v = item.Value
				break
			}
		}
		if v == nil {
			return nil, fmt.Errorf("%w: unresolved $ref %q", ErrSchema, ref)
		}
	}
	return v, nil
}

func refOf(v any) (string, bool) {
	ms, ok := v.(yaml.MapSlice)
	if !ok {
		return "", false
	}
	for _, item := range ms {
		if k, ok := item.Key.(string); ok && k == "$ref" {
			r, ok := item.Value.(string)
			return r, ok && r != ""
		}
	}
	return "", false
}

func (d *decoder) fill(v any, s *Schema) error {
	ms, ok := v.(yaml.MapSlice)
	if !ok {
		return fmt.Errorf("%w: expected a mapping, got %T", ErrSchema, v)
	}
	for _, item := range ms {
		key, ok := item.Key.(string)
		if !ok {
			continue
		}
		switch key {
		case "type":
			// a type list constrains nothing here; leave it open
			s.Type, _ = item.Value.(string)
		case "description":
			s.Description, _ = item.Value.(string)
		case "required":
			for _, r := range listOf(item.Value) {
				if name, ok := r.(string); ok {
					s.Required = append(s.Required, name)
				}
			}
		case "properties":
			props, ok := item.Value.(yaml.MapSlice)
			if !ok {
				return fmt.Errorf("%w: properties must be a mapping", ErrSchema)
			}
			for _, p := range props {
				name, ok := p.Key.(string)
				if !ok {
					continue
				}
				sub, err := d.schema(p.Value)
				if err != nil {
					return err
				}
				s.Properties = append(s.Properties, Property{Name: name, Schema: sub})
			}
		case "patternProperties":
			props, ok := item.Value.(yaml.MapSlice)
			if !ok {
				return fmt.Errorf("%w: patternProperties must be a mapping", ErrSchema)
			}
			for _, p := range props {
				pat, ok := p.Key.(string)
				if !ok {
					continue
				}
				sub, err := d.schema(p.Value)
				if err != nil {
					return err
				}
				s.PatternProperties = append(s.PatternProperties, &PatternProperty{Pattern: pat, Schema: sub})
			}
		case "additionalProperties":
			switch av := item.Value.(type) {
			case bool:
				if av {
					s.AdditionalProperties = &Schema{}
				} else {
					s.Closed = true
				}
			default:
				sub, err := d.schema(item.Value)
				if err != nil {
					return err
				}
				s.AdditionalProperties = sub
			}
		case "items":
			sub, err := d.schema(item.Value)
			if err != nil {
				return err
			}
			s.Items = sub
		case "enum":
			for _, e := range listOf(item.Value) {
				s.Enum = append(s.Enum, scalarString(e))
			}
		case "const":
			s.Enum = append(s.Enum, scalarString(item.Value))
		case "pattern":
			s.Pattern, _ = item.Value.(string)
		case "oneOf", "anyOf":
			for _, alt := range listOf(item.Value) {
				sub, err := d.schema(alt)
				if err != nil {
					return err
				}
				s.OneOf = append(s.OneOf, sub)
			}
		}
	}
	return nil
}

func listOf(v any) []any {
	l, _ := v.([]any)
	return l
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", x)
	}
}
