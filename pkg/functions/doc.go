// Package functions catalogs the operator nodes of a diagram and derives the
// index tables generated code uses to rewire images and parameters at run
// time.
//
// # Catalog Index
//
// Operators are numbered in document order. This catalog index is the
// position of the operator in the generated node array and is never
// recomputed elsewhere.
//
// # Neighbors
//
// [NodeInfo] lists the images connected to an operator: edges ending at the
// operator are inputs, edges starting at it outputs, each with its edge
// label. Operators with two inputs must label them "in1" and "in2" (two
// outputs "out1" and "out2"); the label decides the parameter order.
//
// # Index Tables
//
// [Catalog.IndexTriple] answers, for one [Role], which operator parameter
// slot holds which graph image:
//
//	Input        operator inputs fed by graph input images
//	Output       operator inputs and outputs connected to graph output images
//	DebugInput   operator outputs written to debug images
//	DebugOutput  operator inputs read from debug images
//
// The three sequences of an [IndexTriple] are synchronized by position.
// Operators with structural problems contribute no entries.
//
// # Dynamic Parameters
//
// Operators mark parameters that may change between graph executions with
// "[dynamic_type <param>[k]]" tokens. The ledger lists them by k; k must be
// 0, 1, 2, ... without gaps, and each entry is resolved to the parameter's
// call-site slot through the node type library.
package functions
