package images

import (
	"strconv"
	"strings"
)

// Attribute names an image attribute.
type Attribute string

// Supported attributes.
const (
	AttrWidth        Attribute = "width"
	AttrHeight       Attribute = "height"
	AttrNodeType     Attribute = "nodetype"
	AttrFormat       Attribute = "vx_df_image_e"
	AttrUniformValue Attribute = "uniform_value"
)

type valueKind int

const (
	kindInt valueKind = iota
	kindString
)

type attrSpec struct {
	kind valueKind
	def  string
}

var attrSpecs = map[Attribute]attrSpec{
	AttrWidth:        {kindInt, "0"},
	AttrHeight:       {kindInt, "0"},
	AttrNodeType:     {kindString, "virtual_image"},
	AttrFormat:       {kindString, "VX_DF_IMAGE_VIRT"},
	AttrUniformValue: {kindInt, "0"},
}

// Attributes returns the supported attributes in a fixed order.
func Attributes() []Attribute {
	return []Attribute{AttrWidth, AttrHeight, AttrNodeType, AttrFormat, AttrUniformValue}
}

// Default returns the value an unset attribute takes.
func (a Attribute) Default() (string, bool) {
	s, ok := attrSpecs[a]
	return s.def, ok
}

// Valid reports whether a is a supported attribute.
func (a Attribute) Valid() bool {
	_, ok := attrSpecs[a]
	return ok
}

// checkLiteral reports whether value converts to the attribute's type.
func (a Attribute) checkLiteral(value string) bool {
	if attrSpecs[a].kind != kindInt {
		return true
	}
	_, err := strconv.Atoi(strings.TrimSpace(value))
	return err == nil
}
