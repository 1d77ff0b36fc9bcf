// Package dsl provides the construction functions for skillet schema graphs.
//
// Overview
//   - Builder: every constructor appends a node to the Builder's Graph and returns its NodeID.
//   - Primitives: String/Number/Integer/Boolean/Null/Literal/Enum.
//   - Containers: Object(desc, F(name, node)...), Array(desc, elem), AnyOf(options...).
//   - Streaming: b.Streaming.String/Array/Object mark nodes whose partial content is shown while it arrives.
//   - Recursion: Declare a node, reference it, then Define it.
//
// No validation happens at construction time; malformed shapes surface when the
// schema is emitted or materialized.
//
// Example (quickstart)
//
//	package main
//
//	import (
//	    g "github.com/reoring/skillet/dsl"
//	    "github.com/reoring/skillet/jsonschema"
//	)
//
//	func main() {
//	    b := g.New()
//	    light := b.Object("Light",
//	        g.F("name", b.String("Name")),
//	        g.F("brightness", b.Integer("Brightness", g.Minimum(0), g.Maximum(100))),
//	    )
//	    s := b.Build(b.Streaming.Array("Lights", light))
//	    doc, _ := jsonschema.EmitJSON(s)
//	    _ = doc
//	}
//
// Example (tagged union)
//
//	button := b.Object("Show button", g.F("$tag", b.Literal("app-button")), g.F("label", b.String("Label")))
//	text := b.Object("Show text", g.F("$tag", b.Literal("app-text")), g.F("body", b.Streaming.String("Body")))
//	ui := b.Streaming.Array("UI", b.AnyOf(button, text))
//	// Options travel as {"app-button": {"label": "..."}}; the $tag property is restored on read.
package dsl
