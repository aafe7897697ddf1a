package images

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	vxerrors "github.com/matzehuels/vxgraph/pkg/errors"
	"github.com/matzehuels/vxgraph/pkg/userdata"
)

var (
	// ErrNotPopulated is returned by lookups on a catalog that was not
	// created by [Populate].
	ErrNotPopulated = errors.New("image catalog not populated")

	// ErrUnknownImage is returned for node ids the catalog has no entry for.
	ErrUnknownImage = errors.New("unknown image node")

	// ErrUnknownAttribute is returned for attribute names outside
	// [Attributes].
	ErrUnknownAttribute = errors.New("unknown image attribute")

	// ErrInvalidValue is wrapped by the STRUCTURAL_ERROR [Catalog.GetAttribute]
	// returns for a literal that does not convert to the attribute's type.
	ErrInvalidValue = errors.New("invalid attribute value")
)

// formatMarker must accompany every input, output, debug and uniform image.
const formatMarker = "[" + string(AttrFormat)

const uniformMarker = "uniform_input_image"

// Uniform describes a uniform image.
type Uniform struct {
	ID     string `json:"id"`
	Value  string `json:"value"`
	Format string `json:"format"`
}

// Catalog holds the image nodes of a document by role, with their
// attributes. It is immutable once populated.
type Catalog struct {
	populated bool
	ids       [roleCount][]string
	index     [roleCount]map[string]int
	uniforms  []Uniform
	attrs     map[string]map[Attribute]string
	invalid   map[string]map[Attribute]string
	registry  *userdata.Registry
}

// Populate classifies the nodes of doc.
//
// Attribute values that refer to parameters of reg are accepted as is; a
// reference expression that does not type-check is a warning. Every problem
// is recorded on ov and population continues.
func Populate(doc *document.Document, reg *userdata.Registry, ov *diagnostics.Overlay) *Catalog {
	c := &Catalog{
		attrs:    make(map[string]map[Attribute]string),
		invalid:  make(map[string]map[Attribute]string),
		registry: reg,
	}
	for r := range c.index {
		c.index[r] = make(map[string]int)
	}

	nodes := doc.Nodes()
	c.populateAttributes(nodes, ov)
	c.populateUniforms(nodes, ov)
	c.populateVirtual(nodes)
	for _, r := range []Role{RoleInput, RoleOutput, RoleDebug} {
		c.populateNumbered(nodes, r, ov)
	}

	c.populated = true
	return c
}

func (c *Catalog) add(r Role, id string) {
	c.index[r][id] = len(c.ids[r])
	c.ids[r] = append(c.ids[r], id)
}

func (c *Catalog) populateAttributes(nodes []document.Node, ov *diagnostics.Overlay) {
	for _, n := range nodes {
		set := make(map[Attribute]string)
		for _, a := range Attributes() {
			values := document.AttributeValues(n.Payload, string(a))
			switch {
			case len(values) > 1:
				ov.Error(n.ID, vxerrors.ErrCodeStructural, false, "Image attribute not unique")
			case len(values) == 1:
				if msg, ok := c.validate(n.ID, a, values[0], ov); ok {
					set[a] = values[0]
				} else {
					ov.Error(n.ID, vxerrors.ErrCodeStructural, false, "%s", msg)
					if c.invalid[n.ID] == nil {
						c.invalid[n.ID] = make(map[Attribute]string)
					}
					c.invalid[n.ID][a] = values[0]
				}
			}
		}
		c.attrs[n.ID] = set
	}
}

// validate checks one declared value. References are valid when the name
// is declared; their expression is only checked for a warning.
func (c *Catalog) validate(nodeID string, a Attribute, value string, ov *diagnostics.Overlay) (string, bool) {
	if c.registry != nil && c.registry.IsReference(value) {
		if err := c.registry.CheckExpression(value); err != nil {
			ov.Warn(nodeID, vxerrors.ErrCodeUserData, "%s", vxerrors.UserMessage(err))
		}
		return "", true
	}
	if !a.checkLiteral(value) {
		return fmt.Sprintf("Invalid value for %s", a), false
	}
	return "", true
}

func (c *Catalog) populateUniforms(nodes []document.Node, ov *diagnostics.Overlay) {
	for _, n := range nodes {
		if !document.HasToken(n.Payload, uniformMarker) {
			continue
		}
		if hasNumberedRole(n.Payload) {
			ov.Error(n.ID, vxerrors.ErrCodeStructural, false, "Uniform input image cannot carry another image role")
			continue
		}
		if !document.HasToken(n.Payload, formatMarker) {
			ov.Error(n.ID, vxerrors.ErrCodeStructural, false, "Uniform input image format missing")
			continue
		}
		if !document.HasToken(n.Payload, "["+string(AttrUniformValue)) {
			ov.Error(n.ID, vxerrors.ErrCodeStructural, false, "Uniform input image value missing")
			continue
		}
		c.add(RoleUniform, n.ID)
		c.uniforms = append(c.uniforms, Uniform{
			ID:     n.ID,
			Value:  c.attrs[n.ID][AttrUniformValue],
			Format: c.attrs[n.ID][AttrFormat],
		})
	}
}

func (c *Catalog) populateVirtual(nodes []document.Node) {
	for _, n := range nodes {
		if !n.Shape.IsImage() {
			continue
		}
		if hasNumberedRole(n.Payload) || document.HasToken(n.Payload, uniformMarker) {
			continue
		}
		c.add(RoleVirtual, n.ID)
	}
}

func hasNumberedRole(payload string) bool {
	for _, r := range []Role{RoleInput, RoleOutput, RoleDebug} {
		if document.HasToken(payload, r.marker()) {
			return true
		}
	}
	return false
}

// populateNumbered scans for "<role>_image[i]" with i = 0, 1, ... until no
// node declares i. A node missing its format marker is reported and its
// number is still consumed.
func (c *Catalog) populateNumbered(nodes []document.Node, r Role, ov *diagnostics.Overlay) {
	for i := 0; ; i++ {
		token := r.marker() + strconv.Itoa(i) + "]"
		found := false
		for _, n := range nodes {
			if !document.HasToken(n.Payload, token) {
				continue
			}
			if found {
				ov.Error(n.ID, vxerrors.ErrCodeStructural, false, "%s image index %d not unique", r.title(), i)
				continue
			}
			found = true
			switch {
			case !document.HasToken(n.Payload, formatMarker):
				ov.Error(n.ID, vxerrors.ErrCodeStructural, false, "%s image format missing", r.title())
			case c.Has(r, n.ID):
				ov.Error(n.ID, vxerrors.ErrCodeStructural, false, "%s image declares more than one index", r.title())
			default:
				c.add(r, n.ID)
			}
		}
		if !found {
			return
		}
	}
}

// Populated reports whether the catalog was built by [Populate].
func (c *Catalog) Populated() bool { return c != nil && c.populated }

// IDs returns the node ids of role r ordered by role index.
func (c *Catalog) IDs(r Role) []string {
	if !c.Populated() || r < 0 || r >= roleCount {
		return nil
	}
	out := make([]string, len(c.ids[r]))
	copy(out, c.ids[r])
	return out
}

// Len returns the number of images with role r.
func (c *Catalog) Len(r Role) int {
	if !c.Populated() || r < 0 || r >= roleCount {
		return 0
	}
	return len(c.ids[r])
}

// Index returns the role index of id within role r.
func (c *Catalog) Index(r Role, id string) (int, bool) {
	if !c.Populated() || r < 0 || r >= roleCount {
		return 0, false
	}
	i, ok := c.index[r][id]
	return i, ok
}

// Has reports whether id has role r.
func (c *Catalog) Has(r Role, id string) bool {
	_, ok := c.Index(r, id)
	return ok
}

// HasAny reports whether any of ids has role r.
func (c *Catalog) HasAny(r Role, ids []string) bool {
	for _, id := range ids {
		if c.Has(r, id) {
			return true
		}
	}
	return false
}

// RolesOf returns every role id has, in [Roles] order.
func (c *Catalog) RolesOf(id string) []Role {
	var out []Role
	for _, r := range Roles() {
		if c.Has(r, id) {
			out = append(out, r)
		}
	}
	return out
}

// Uniforms returns the uniform images ordered by role index.
func (c *Catalog) Uniforms() []Uniform {
	if !c.Populated() {
		return nil
	}
	out := make([]Uniform, len(c.uniforms))
	copy(out, c.uniforms)
	return out
}

// Uniform returns the uniform image with the given id.
func (c *Catalog) Uniform(id string) (Uniform, error) {
	i, ok := c.Index(RoleUniform, id)
	if !ok {
		return Uniform{}, fmt.Errorf("%w: %s is not a uniform image", ErrUnknownImage, id)
	}
	return c.uniforms[i], nil
}

// DeclaredAttributes returns the valid attributes set explicitly on id.
func (c *Catalog) DeclaredAttributes(id string) map[Attribute]string {
	if !c.Populated() {
		return nil
	}
	out := make(map[Attribute]string, len(c.attrs[id]))
	for k, v := range c.attrs[id] {
		out[k] = v
	}
	return out
}

// GetAttribute returns the value of attribute a on node id.
//
// An unset attribute yields its default with isRef false. A value that
// refers to a user parameter yields isRef true and the raw expression.
// A literal yields isRef false and the literal; one that does not convert
// to the attribute's type is a STRUCTURAL_ERROR wrapping [ErrInvalidValue].
func (c *Catalog) GetAttribute(id string, a Attribute) (isRef bool, value string, err error) {
	if !c.Populated() {
		return false, "", ErrNotPopulated
	}
	if !a.Valid() {
		return false, "", fmt.Errorf("%w: %s", ErrUnknownAttribute, a)
	}
	set, ok := c.attrs[id]
	if !ok {
		return false, "", fmt.Errorf("%w: %s", ErrUnknownImage, id)
	}

	if raw, bad := c.invalid[id][a]; bad {
		return false, "", vxerrors.Wrap(vxerrors.ErrCodeStructural, ErrInvalidValue, "%s of %s: %q", a, id, raw)
	}

	v, ok := set[a]
	if !ok {
		def, _ := a.Default()
		return false, def, nil
	}
	if c.registry != nil && c.registry.IsReference(v) {
		return true, v, nil
	}
	return false, v, nil
}
