package nodelib

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/vxgraph/pkg/errors"
)

//go:embed library.toml
var defaultData []byte

// VirtualPrefix marks an output format that applies when the output image is
// virtual. "VIRT->S16" means a virtual output resolves to S16.
const VirtualPrefix = "VIRT->"

// Param is a non-image parameter of an operator with its call-site slot.
type Param struct {
	Name string `toml:"name" json:"name"`
	Slot int    `toml:"slot" json:"slot"`
}

// FormatRule is one valid (input formats, output formats) pair.
type FormatRule struct {
	In  []string `toml:"in" json:"in"`
	Out []string `toml:"out" json:"out"`
}

// IsVirtualDerived reports whether the rule describes virtual outputs.
func (r FormatRule) IsVirtualDerived() bool {
	return len(r.Out) > 0 && IsVirtualFormat(r.Out[0])
}

// IsVirtualFormat reports whether f carries the [VirtualPrefix] marker.
func IsVirtualFormat(f string) bool {
	return strings.HasPrefix(f, VirtualPrefix)
}

// ResolveVirtual strips the [VirtualPrefix] marker from f.
func ResolveVirtual(f string) string {
	return strings.TrimPrefix(f, VirtualPrefix)
}

// TypeInfo holds the static tables for one operator type.
// Values returned by a [Library] are shared and must not be modified.
type TypeInfo struct {
	Type        OpType
	FirstInput  int
	FirstOutput int
	Params      []Param
	Formats     []FormatRule
}

// Name returns the operator name.
func (t *TypeInfo) Name() string { return t.Type.String() }

// InputArity is the number of image inputs the operator takes.
func (t *TypeInfo) InputArity() int {
	if len(t.Formats) == 0 {
		return 0
	}
	return len(t.Formats[0].In)
}

// OutputArity is the number of image outputs the operator produces.
func (t *TypeInfo) OutputArity() int {
	if len(t.Formats) == 0 {
		return 0
	}
	return len(t.Formats[0].Out)
}

// ParamSlot resolves a parameter type name to its call-site slot.
func (t *TypeInfo) ParamSlot(name string) (int, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p.Slot, true
		}
	}
	return 0, false
}

// ParamNames returns the parameter type names in declaration order.
func (t *TypeInfo) ParamNames() []string {
	names := make([]string, len(t.Params))
	for i, p := range t.Params {
		names[i] = p.Name
	}
	return names
}

// Library is the per-version table of operator types. It is immutable once
// loaded and safe for concurrent use.
type Library struct {
	version Version
	types   [opCount]*TypeInfo
}

// Version returns the OpenVX version the library was loaded for.
func (l *Library) Version() Version { return l.version }

// Lookup returns the tables for t.
func (l *Library) Lookup(t OpType) (*TypeInfo, bool) {
	if !t.Valid() {
		return nil, false
	}
	info := l.types[t]
	return info, info != nil
}

// LookupName returns the tables for an operator name.
func (l *Library) LookupName(name string) (*TypeInfo, bool) {
	t, ok := ParseOpType(name)
	if !ok {
		return nil, false
	}
	return l.Lookup(t)
}

// Types returns the tables of every operator type in [AllOpTypes] order.
func (l *Library) Types() []*TypeInfo {
	out := make([]*TypeInfo, 0, opCount-1)
	for _, t := range AllOpTypes() {
		out = append(out, l.types[t])
	}
	return out
}

// =============================================================================
// Loading
// =============================================================================

type libraryFile struct {
	Operators []operatorEntry `toml:"operator"`
	Overrides []overrideEntry `toml:"override"`
}

type operatorEntry struct {
	Name        string       `toml:"name"`
	FirstInput  int          `toml:"first_input"`
	FirstOutput int          `toml:"first_output"`
	Params      []Param      `toml:"params"`
	Formats     []FormatRule `toml:"formats"`
}

type overrideEntry struct {
	Version     string `toml:"version"`
	Name        string `toml:"name"`
	FirstInput  *int   `toml:"first_input"`
	FirstOutput *int   `toml:"first_output"`
}

// Default returns the built-in library for version v.
func Default(v Version) (*Library, error) {
	return Load(bytes.NewReader(defaultData), v)
}

// MustDefault is like [Default] but panics on error. The embedded data is
// covered by tests, so this only fails for unsupported versions.
func MustDefault(v Version) *Library {
	lib, err := Default(v)
	if err != nil {
		panic(err)
	}
	return lib
}

// LoadFile reads a library from a TOML file.
func LoadFile(path string, v Version) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "library %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return Load(f, v)
}

// Load decodes a library from TOML and applies the overrides for version v.
//
// The decoded data must cover every [OpType] exactly once, and each format
// table must have consistent arities; anything else is an INVALID_LIBRARY
// error.
func Load(r io.Reader, v Version) (*Library, error) {
	if _, err := ParseVersion(string(v)); err != nil {
		return nil, err
	}

	var file libraryFile
	if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, err, "decode library")
	}

	lib := &Library{version: v}
	for _, e := range file.Operators {
		t, ok := ParseOpType(e.Name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidLibrary, "unknown operator type %q", e.Name)
		}
		if lib.types[t] != nil {
			return nil, errors.New(errors.ErrCodeInvalidLibrary, "duplicate operator type %q", e.Name)
		}
		info := &TypeInfo{
			Type:        t,
			FirstInput:  e.FirstInput,
			FirstOutput: e.FirstOutput,
			Params:      e.Params,
			Formats:     e.Formats,
		}
		if err := validate(info); err != nil {
			return nil, err
		}
		lib.types[t] = info
	}

	for _, t := range AllOpTypes() {
		if lib.types[t] == nil {
			return nil, errors.New(errors.ErrCodeInvalidLibrary, "missing operator type %q", t)
		}
	}

	for _, o := range file.Overrides {
		if Version(o.Version) != v {
			continue
		}
		info, ok := lib.LookupName(o.Name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidLibrary, "override for unknown operator type %q", o.Name)
		}
		if o.FirstInput != nil {
			info.FirstInput = *o.FirstInput
		}
		if o.FirstOutput != nil {
			info.FirstOutput = *o.FirstOutput
		}
	}

	return lib, nil
}

func validate(info *TypeInfo) error {
	name := info.Name()
	if len(info.Formats) == 0 {
		return errors.New(errors.ErrCodeInvalidLibrary, "%s: no format rules", name)
	}
	in, out := info.InputArity(), info.OutputArity()
	if in == 0 || out == 0 {
		return errors.New(errors.ErrCodeInvalidLibrary, "%s: format rules need inputs and outputs", name)
	}
	for i, r := range info.Formats {
		if len(r.In) != in || len(r.Out) != out {
			return errors.New(errors.ErrCodeInvalidLibrary, "%s: format rule %d has arity %d->%d, want %d->%d",
				name, i, len(r.In), len(r.Out), in, out)
		}
		virtual := IsVirtualFormat(r.Out[0])
		for _, f := range r.Out[1:] {
			if IsVirtualFormat(f) != virtual {
				return errors.New(errors.ErrCodeInvalidLibrary, "%s: format rule %d mixes virtual and explicit outputs", name, i)
			}
		}
	}
	var slots []int
	for _, p := range info.Params {
		if slices.Contains(slots, p.Slot) {
			return errors.New(errors.ErrCodeInvalidLibrary, "%s: duplicate parameter slot %d", name, p.Slot)
		}
		slots = append(slots, p.Slot)
	}
	return nil
}

// String renders a format rule as "[U8 U8] -> [VIRT->S16]".
func (r FormatRule) String() string {
	return fmt.Sprintf("%v -> %v", r.In, r.Out)
}
