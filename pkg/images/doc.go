// Package images classifies the image-buffer nodes of a diagram.
//
// # Roles
//
// Every image node has one [Role]:
//
//   - Input and Output images are graph parameters. They are numbered by
//     "input_image[i]" / "output_image[i]" payload tokens.
//   - Debug images expose intermediate results; numbered by "debug_image[i]".
//   - Uniform images are constant images filled with a single value; marked
//     by "uniform_input_image".
//   - Virtual images are the remaining image-shaped nodes; the runtime may
//     keep them internal to the graph.
//
// Within a role each node has a dense, 0-based role index. For numbered
// roles the index is the declared number: scanning tries 0, 1, 2, ... and
// stops at the first number no node declares. Uniform and virtual images
// are numbered in document order. Generated code uses role indices as array
// positions, so they never change after population.
//
// # Attributes
//
// Nodes may declare attributes with "[name value]" tokens:
//
//	[width 640]
//	[height ref_height/2]
//	[vx_df_image_e VX_DF_IMAGE_U8]
//
// A value is either a literal of the attribute's type or an expression that
// refers to a declared user parameter (see package userdata).
// [Catalog.GetAttribute] returns the value together with that distinction.
//
// # Errors
//
// Population records STRUCTURAL_ERROR diagnostics (missing formats, duplicate
// or invalid attributes, duplicate role numbers) and keeps going, so one run
// reports every problem. Lookups return the sentinel errors of this package.
package images
