// Package nodelib provides the Node Type Library: the static per-operator
// tables the analysis consults but does not define.
//
// # Overview
//
// For each operator type the library records:
//
//   - the call-site slot of the first image input and the first image output
//   - the ordered non-image parameters with their call-site slots
//   - the valid (input formats, output formats) pairs used by format inference
//
// Image arities are derived from the format tables: every rule of an operator
// has the same number of inputs and outputs.
//
// # Operator Types
//
// Operator types form a closed set ([OpType]). Diagram labels are mapped to a
// variant with [ParseOpType]; labels outside the set are reported by the
// analysis as unknown operators rather than silently falling back to a
// default.
//
// # Versions
//
// Tables differ slightly between OpenVX versions. [Default] loads the
// embedded tables for a [Version]; under 1.0.1 the 2x2 morphology operators
// use dedicated nodes with different image slots.
//
// # Custom Tables
//
// [Load] and [LoadFile] accept the same TOML schema as the embedded data:
//
//	[[operator]]
//	name = "Threshold"
//	first_input = 0
//	first_output = 2
//	params = [{ name = "vx_threshold", slot = 1 }]
//	formats = [
//	  { in = ["U8"], out = ["U8"] },
//	  { in = ["U8"], out = ["VIRT->U8"] },
//	]
package nodelib
