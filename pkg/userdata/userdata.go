// Package userdata parses the global-parameter declaration node of a
// diagram.
//
// A diagram may contain one node with the flowchart "userMessage" shape
// whose payload declares named parameters, one per line:
//
//	[unsigned ref_width]
//	[int ref_height]
//
// Image attributes may then refer to these names (e.g. "[width ref_width/2]")
// instead of literal values. Generated code receives the parameters as
// arguments of the graph creation function.
package userdata

import (
	"strings"
	"unicode"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	"github.com/matzehuels/vxgraph/pkg/errors"
)

// Entry is one declared parameter.
type Entry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Registry holds the declared parameters in declaration order.
// It is immutable once populated.
type Registry struct {
	nodeID  string
	entries []Entry
	types   map[string]string
}

// Populate scans doc for the declaration node and parses it.
//
// Problems are recorded on ov as USERDATA_ERROR diagnostics and parsing
// continues: extra declaration nodes are flagged and ignored, malformed or
// duplicate lines are flagged and skipped. Blank lines are ignored.
func Populate(doc *document.Document, ov *diagnostics.Overlay) *Registry {
	r := &Registry{types: make(map[string]string)}

	var payload string
	for _, n := range doc.NodesWhere(document.Shape.IsUserData) {
		if r.nodeID != "" {
			ov.Error(n.ID, errors.ErrCodeUserData, true, "Userdata is not unique")
			continue
		}
		r.nodeID = n.ID
		payload = n.Payload
	}

	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(strings.TrimRight(strings.TrimLeft(line, "["), "]"))
		if len(fields) != 2 {
			ov.Error(r.nodeID, errors.ErrCodeUserData, true, "Userdata not formatted correctly")
			continue
		}
		typ, name := fields[0], fields[1]
		if _, ok := r.types[name]; ok {
			ov.Error(r.nodeID, errors.ErrCodeUserData, true, "Userdata has non-unique entries")
			continue
		}
		if err := errors.ValidateIdentifier(name); err != nil {
			ov.Error(r.nodeID, errors.ErrCodeUserData, true, "Userdata %s", errors.UserMessage(err))
			continue
		}
		r.types[name] = typ
		r.entries = append(r.entries, Entry{Name: name, Type: typ})
	}

	return r
}

// HasUserData reports whether the document has a declaration node.
func (r *Registry) HasUserData() bool { return r.nodeID != "" }

// NodeID returns the id of the declaration node, or "".
func (r *Registry) NodeID() string { return r.nodeID }

// Entries returns the declared parameters in declaration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Type returns the declared type of name.
func (r *Registry) Type(name string) (string, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Len returns the number of declared parameters.
func (r *Registry) Len() int { return len(r.entries) }

// Reference returns the declared name value starts with. A reference
// leads its value ("ref_width/2"); leading spaces and opening parentheses
// are skipped. The whole leading identifier must be declared, so "gain"
// does not match "gain2".
func (r *Registry) Reference(value string) (string, bool) {
	value = strings.TrimLeft(value, " \t(")
	end := strings.IndexFunc(value, func(c rune) bool {
		return c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
	if end < 0 {
		end = len(value)
	}
	name := value[:end]
	if _, ok := r.types[name]; !ok || name == "" {
		return "", false
	}
	return name, true
}

// IsReference reports whether value refers to a declared parameter.
func (r *Registry) IsReference(value string) bool {
	_, ok := r.Reference(value)
	return ok
}

// CheckExpression type-checks an attribute value that refers to declared
// parameters, such as "ref_width/2". The value must compile as a numeric
// expression over the declared names. C integer types are treated as int,
// float and double as double, anything else as dyn.
func (r *Registry) CheckExpression(value string) error {
	env, err := r.env()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "userdata expression environment")
	}

	ast, iss := env.Compile(value)
	if iss != nil && iss.Err() != nil {
		return errors.Wrap(errors.ErrCodeUserData, iss.Err(), "invalid expression %q", value)
	}

	switch ast.OutputType().Kind() {
	case types.IntKind, types.UintKind, types.DoubleKind, types.DynKind, types.AnyKind:
		return nil
	}
	return errors.New(errors.ErrCodeUserData, "expression %q is %s, want a number", value, ast.OutputType())
}

func (r *Registry) env() (*cel.Env, error) {
	decls := make([]cel.EnvOption, 0, len(r.entries))
	for _, e := range r.entries {
		decls = append(decls, cel.Variable(e.Name, celType(e.Type)))
	}
	return cel.NewEnv(decls...)
}

func celType(cType string) *cel.Type {
	switch cType {
	case "float", "double", "vx_float32", "vx_float64":
		return cel.DoubleType
	case "int", "unsigned", "long", "short", "char", "size_t",
		"int8_t", "int16_t", "int32_t", "int64_t",
		"uint8_t", "uint16_t", "uint32_t", "uint64_t",
		"vx_int8", "vx_int16", "vx_int32", "vx_int64",
		"vx_uint8", "vx_uint16", "vx_uint32", "vx_uint64", "vx_size":
		return cel.IntType
	}
	return cel.DynType
}
