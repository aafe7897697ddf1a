// Package formats resolves the pixel format of every image in a document.
//
// Graph input and uniform images declare their format. Every other image
// gets its format from the operator that writes it: the [Engine] repeatedly
// picks the operators whose inputs are all resolved, matches the input
// formats against the operator's rules in the node type library and records
// the resulting output formats in the [PIN] table.
//
// # Resolution
//
// An output image that declares a format must agree with one of the
// explicit rules matching the inputs. A virtual output takes the format of
// the first matching "VIRT->X" rule:
//
//	lib := nodelib.MustDefault(nodelib.DefaultVersion)
//	engine := formats.NewEngine(lib)
//	res, err := engine.Run(doc, imgs, fns, ov)
//	if err != nil {
//	    // a FORMAT_ERROR, also recorded on ov
//	}
//	f, _ := res.PIN.Lookup("img1") // "U8"
//
// Format errors stop the run at the first occurrence. The table of a
// successful run is frozen.
//
// # Termination
//
// Each pass processes at least one operator or the run fails with
// "unreachable or cyclic operator set", so the number of passes never
// exceeds the operator count. [Engine.MaxPasses] adds a hard cap on top.
package formats
