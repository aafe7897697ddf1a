// Package pkg provides the libraries behind vxgraph, the semantic analysis of
// OpenVX dataflow diagrams drawn in yEd.
//
// # Overview
//
// A diagram is a GraphML file whose nodes are operators, image buffers and
// at most one global-parameter (userdata) declaration. vxgraph turns it into
// a typed description a code generator can consume: every image gets a role
// and a dense index, every operator a catalog index and parameter slots, and
// every image a pixel format. The packages are organized into four areas:
//
//  1. Input: [document] (read-only diagram model, GraphML and JSON codecs)
//  2. Analysis: [userdata], [images], [functions], [formats], [nodelib]
//  3. Results: [diagnostics] (problems keyed by node), [report] (the artifact)
//  4. Infrastructure: [pipeline], [cache], [store], [server], [observability]
//
// # Architecture
//
// The data flow through vxgraph:
//
//	yEd GraphML
//	     ↓
//	[document] package (nodes, edges, payload text)
//	     ↓
//	[userdata] → [images] → [functions]   (structure; problems on the overlay)
//	     ↓
//	[formats] package (fixpoint over the node type library)
//	     ↓
//	[report] package (JSON for code generation)
//
// # Quick Start
//
//	doc, err := document.ImportGraphML("blur.graphml")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, doc, pipeline.Options{VXVersion: "1.2"})
//	if err != nil {
//	    return err
//	}
//	for _, d := range res.Report.Diagnostics {
//	    fmt.Println(d)
//	}
//
// # Error Handling
//
// Problems with the diagram never abort the analysis early: they are
// recorded on a [diagnostics.Overlay] with a code from [errors] and end up in
// the report. Returned errors are reserved for unusable input such as an
// unreadable file or an unsupported OpenVX version.
package pkg
