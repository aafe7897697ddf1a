package formats

import (
	"encoding/json"
	"errors"
	"fmt"

	vxerrors "github.com/matzehuels/vxgraph/pkg/errors"
)

var (
	// ErrFrozen is returned when adding to a frozen table.
	ErrFrozen = errors.New("format table is frozen")

	// ErrNotResolved is returned for images the table has no format for.
	ErrNotResolved = errors.New("image format not resolved")
)

// Entry is one resolved image.
type Entry struct {
	ImageID string `json:"image_id"`
	Format  string `json:"format"`
}

// PIN is the append-only table of resolved image formats. Entries keep
// insertion order. The zero value is an empty, usable table.
type PIN struct {
	entries []Entry
	index   map[string]int
	frozen  bool
}

// NewPIN returns an empty table.
func NewPIN() *PIN {
	return &PIN{index: make(map[string]int)}
}

// Add records the format of id. Adding an id twice is an internal
// consistency violation and panics.
func (p *PIN) Add(id, format string) error {
	if p.frozen {
		return fmt.Errorf("%w: cannot add %s", ErrFrozen, id)
	}
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if _, ok := p.index[id]; ok {
		vxerrors.Consistency("image %s resolved twice", id)
	}
	p.index[id] = len(p.entries)
	p.entries = append(p.entries, Entry{ImageID: id, Format: format})
	return nil
}

// Has reports whether id is resolved.
func (p *PIN) Has(id string) bool {
	_, ok := p.index[id]
	return ok
}

// HasAll reports whether every id is resolved.
func (p *PIN) HasAll(ids []string) bool {
	for _, id := range ids {
		if !p.Has(id) {
			return false
		}
	}
	return true
}

// Lookup returns the format of id.
func (p *PIN) Lookup(id string) (string, bool) {
	i, ok := p.index[id]
	if !ok {
		return "", false
	}
	return p.entries[i].Format, true
}

// Format is like [PIN.Lookup] but returns [ErrNotResolved] for unknown ids.
func (p *PIN) Format(id string) (string, error) {
	f, ok := p.Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotResolved, id)
	}
	return f, nil
}

// Entries returns the resolved images in insertion order.
func (p *PIN) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of resolved images.
func (p *PIN) Len() int { return len(p.entries) }

// Freeze makes the table read-only.
func (p *PIN) Freeze() { p.frozen = true }

// Frozen reports whether the table is read-only.
func (p *PIN) Frozen() bool { return p.frozen }

// MarshalJSON encodes the table as its ordered entry list.
func (p *PIN) MarshalJSON() ([]byte, error) {
	if p.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.entries)
}

// UnmarshalJSON decodes an entry list into a frozen table.
func (p *PIN) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*p = PIN{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if p.Has(e.ImageID) {
			return fmt.Errorf("duplicate image %s in format table", e.ImageID)
		}
		p.index[e.ImageID] = len(p.entries)
		p.entries = append(p.entries, e)
	}
	p.frozen = true
	return nil
}
