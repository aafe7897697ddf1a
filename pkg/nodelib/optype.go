package nodelib

// OpType identifies an operator type known to the library.
//
// The set is closed: every operator node in a document either maps to one of
// these variants through [ParseOpType] or is reported as unknown. Adding a
// variant requires a matching entry in the library data, which [Load]
// enforces.
type OpType int

const (
	OpUnknown OpType = iota
	OpHalfScaleGaussian
	OpSubtract
	OpThreshold
	OpSobel3x3
	OpAbsDiff
	OpConvertDepth
	OpDilate3x3
	OpErode3x3
	OpAdd
	OpMultiply
	OpScaleImage
	OpMagnitude
	OpTableLookup
	OpOr
	OpAnd
	OpWarpAffine
	OpDubbelIoTest
	OpDilate2x2
	OpErode2x2

	opCount
)

var opNames = [opCount]string{
	OpUnknown:           "Unknown",
	OpHalfScaleGaussian: "HalfScaleGaussian",
	OpSubtract:          "Subtract",
	OpThreshold:         "Threshold",
	OpSobel3x3:          "Sobel3x3",
	OpAbsDiff:           "AbsDiff",
	OpConvertDepth:      "ConvertDepth",
	OpDilate3x3:         "Dilate3x3",
	OpErode3x3:          "Erode3x3",
	OpAdd:               "Add",
	OpMultiply:          "Multiply",
	OpScaleImage:        "ScaleImage",
	OpMagnitude:         "Magnitude",
	OpTableLookup:       "TableLookup",
	OpOr:                "Or",
	OpAnd:               "And",
	OpWarpAffine:        "WarpAffine",
	OpDubbelIoTest:      "DubbelIoTest",
	OpDilate2x2:         "Dilate2x2",
	OpErode2x2:          "Erode2x2",
}

// registry maps the operator name used as node label to its variant.
var registry = func() map[string]OpType {
	m := make(map[string]OpType, opCount)
	for t := OpUnknown + 1; t < opCount; t++ {
		m[opNames[t]] = t
	}
	return m
}()

// String returns the operator name as it appears on diagram node labels.
func (t OpType) String() string {
	if t < 0 || t >= opCount {
		return opNames[OpUnknown]
	}
	return opNames[t]
}

// Valid reports whether t is a known operator type.
func (t OpType) Valid() bool {
	return t > OpUnknown && t < opCount
}

// ParseOpType looks up the operator type for a node label.
// Matching is exact; labels are case-sensitive.
func ParseOpType(name string) (OpType, bool) {
	t, ok := registry[name]
	return t, ok
}

// AllOpTypes returns every known operator type in declaration order.
func AllOpTypes() []OpType {
	types := make([]OpType, 0, opCount-1)
	for t := OpUnknown + 1; t < opCount; t++ {
		types = append(types, t)
	}
	return types
}
