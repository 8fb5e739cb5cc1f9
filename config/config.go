// Package config is a small declarative parameter registry backed by a YAML
// document: every component registers the parameters it reads (name,
// description, default, required) against a Registry at construction time,
// the same discipline the reference implementation's param<T>("name") chain
// enforces, translated into builder-style Go calls since Go has no template
// accessor to hang the type on.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Param describes one parameter a component has registered, for
// introspection (e.g. a --help listing of every tunable knob a simulation
// run accepts).
type Param struct {
	Path        string
	Description string
	Default     interface{}
	Required    bool
}

// Error is returned for every configuration problem: a missing required
// parameter, a value of the wrong type, or a file that could not be read or
// parsed. It carries enough of the parameter's path to let a caller report
// where the problem is without needing line numbers the YAML unmarshal
// already discards.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, e.Reason)
}

// Registry is a scoped view into a parsed configuration tree. Section
// descends into a nested map without losing the shared descriptor list, so
// Descriptors always reports every parameter registered anywhere in the
// tree, not just the ones read through this particular Registry value.
type Registry struct {
	node   map[string]interface{}
	path   string
	params *[]Param
}

// Load reads and parses a YAML document at path into a root Registry.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: err.Error()}
	}

	var root map[string]interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &Error{Path: path, Reason: err.Error()}
	}

	return New(root), nil
}

// New wraps an already-decoded map as a root Registry, for callers (tests,
// programmatic front-ends) that build their configuration in Go rather than
// from a file.
func New(root map[string]interface{}) *Registry {
	params := []Param{}

	return &Registry{node: root, path: "", params: &params}
}

// Section descends into the nested map named name, returning an empty
// (read-only-empty) Registry scoped to that path if name is absent or not a
// map, so that Required parameters below still report a meaningful path
// instead of panicking on a nil map.
func (r *Registry) Section(name string) *Registry {
	child, _ := r.node[name].(map[string]interface{})
	if child == nil {
		child = map[string]interface{}{}
	}

	childPath := name
	if r.path != "" {
		childPath = r.path + "." + name
	}

	return &Registry{node: child, path: childPath, params: r.params}
}

// Param begins registering (and, depending on the terminal method called,
// reading) the parameter name within this Registry's section.
func (r *Registry) Param(name string) *ParamBuilder {
	return &ParamBuilder{reg: r, name: name}
}

// Descriptors returns every parameter registered against this Registry or
// any Section derived from it, in registration order.
func (r *Registry) Descriptors() []Param {
	return *r.params
}

// ParamBuilder accumulates metadata about one parameter before a terminal
// type accessor (String, Int, ...) resolves its value.
type ParamBuilder struct {
	reg        *Registry
	name       string
	desc       string
	def        interface{}
	hasDefault bool
	required   bool
}

// Desc attaches a human-readable description, surfaced by Descriptors.
func (b *ParamBuilder) Desc(s string) *ParamBuilder {
	b.desc = s
	return b
}

// Default supplies the value used when the parameter is absent from the
// configuration tree and Required was not called.
func (b *ParamBuilder) Default(v interface{}) *ParamBuilder {
	b.def = v
	b.hasDefault = true
	return b
}

// Required marks the parameter as mandatory: a terminal accessor returns a
// *Error if the configuration tree does not supply it.
func (b *ParamBuilder) Required() *ParamBuilder {
	b.required = true
	return b
}

func (b *ParamBuilder) fullPath() string {
	if b.reg.path == "" {
		return b.name
	}

	return b.reg.path + "." + b.name
}

func (b *ParamBuilder) register() {
	*b.reg.params = append(*b.reg.params, Param{
		Path:        b.fullPath(),
		Description: b.desc,
		Default:     b.def,
		Required:    b.required,
	})
}

// resolve looks up the raw value, registering the parameter as a side
// effect so Descriptors sees it whether or not it was ever present.
func (b *ParamBuilder) resolve() (interface{}, error) {
	b.register()

	v, ok := b.reg.node[b.name]
	if !ok {
		if b.hasDefault {
			return b.def, nil
		}
		if b.required {
			return nil, &Error{Path: b.fullPath(), Reason: "required parameter not set"}
		}

		return nil, nil
	}

	return v, nil
}

func typeErr(path string, want string, got interface{}) *Error {
	return &Error{Path: path, Reason: fmt.Sprintf("expected %s, got %T", want, got)}
}

// String resolves the parameter as a string.
func (b *ParamBuilder) String() (string, error) {
	v, err := b.resolve()
	if err != nil || v == nil {
		return "", err
	}

	s, ok := v.(string)
	if !ok {
		return "", typeErr(b.fullPath(), "string", v)
	}

	return s, nil
}

// Int resolves the parameter as an int.
func (b *ParamBuilder) Int() (int, error) {
	v, err := b.resolve()
	if err != nil || v == nil {
		return 0, err
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	}

	return 0, typeErr(b.fullPath(), "int", v)
}

// Int64 resolves the parameter as an int64.
func (b *ParamBuilder) Int64() (int64, error) {
	n, err := b.Int()
	return int64(n), err
}

// Bool resolves the parameter as a bool.
func (b *ParamBuilder) Bool() (bool, error) {
	v, err := b.resolve()
	if err != nil || v == nil {
		return false, err
	}

	bv, ok := v.(bool)
	if !ok {
		return false, typeErr(b.fullPath(), "bool", v)
	}

	return bv, nil
}

// Float64 resolves the parameter as a float64.
func (b *ParamBuilder) Float64() (float64, error) {
	v, err := b.resolve()
	if err != nil || v == nil {
		return 0, err
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}

	return 0, typeErr(b.fullPath(), "float64", v)
}

// StringSlice resolves the parameter as a list of strings, e.g. a plugin
// name list.
func (b *ParamBuilder) StringSlice() ([]string, error) {
	v, err := b.resolve()
	if err != nil || v == nil {
		return nil, err
	}

	raw, ok := v.([]interface{})
	if !ok {
		return nil, typeErr(b.fullPath(), "list", v)
	}

	out := make([]string, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, typeErr(fmt.Sprintf("%s[%d]", b.fullPath(), i), "string", item)
		}
		out[i] = s
	}

	return out, nil
}
