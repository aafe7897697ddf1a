// Package document provides the read-only model of an OpenVX dataflow
// diagram.
//
// # Overview
//
// A [Document] is an ordered set of nodes and edges. Every node carries a
// shape marker, a label and a free-text payload made of bracketed tokens:
//
//	[input_image[0]]
//	[vx_df_image_e VX_DF_IMAGE_U8]
//	[width 640]
//
// The shape decides what a node is: image buffers use the flowchart
// "process" shape, operators the "start1"/"start2" shapes and the optional
// global-parameter declaration the "userMessage" shape. The operator type
// is the node label.
//
// Documents are immutable once built. Node and edge order is the order of
// the source file and is preserved by every accessor; analysis results that
// depend on it (role indices, ledger order) are therefore deterministic.
//
// # Loading
//
// [ReadGraphML] decodes the yEd GraphML dialect. [ReadJSON] and [WriteJSON]
// handle a flat JSON form of the same model, used by the HTTP API and for
// tests. Both return errors wrapping the sentinel errors of this package.
//
// # Building
//
// [Builder] assembles documents programmatically:
//
//	b := document.NewBuilder("blur")
//	b.Image("in", "[input_image[0]] [vx_df_image_e VX_DF_IMAGE_U8]")
//	b.Operator("op", "Threshold", "")
//	b.Image("out", "")
//	b.Connect("in", "op", "")
//	b.Connect("op", "out", "")
//	doc, err := b.Build()
//
// # Payload Tokens
//
// [ParamValue], [ParamValues] and [HasToken] implement the token lookups the
// analysis needs. They operate on raw payload text and never fail; a token
// that is absent simply yields no value.
package document
