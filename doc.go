// Package skillet describes typed data shapes for LLM structured output and
// materializes values of those shapes from streamed, incomplete JSON text.
//
// - Schema graph: an arena of nodes (String, Literal, Number, Integer, Boolean,
//   Null, Enum, Object, Array, AnyOf) addressed by NodeID; shared ids express
//   repetition and cycles.
// - Validate: strict conformance check for complete values, reporting Issues.
// - Encode: converts a conforming value to its wire shape (discriminator
//   envelopes and the primitive wrapper).
// - Materialize / Session: tolerant re-parse of an accumulated buffer into the
//   best value that can be shown so far.
//
// Design policy:
// - Keep only public APIs in the root package; the tokenizer lives under internal/engine.
// - Build schemas with dsl/, emit and import wire documents with jsonschema/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	b := dsl.New()
//	s := b.Build(b.Streaming.Object("Reply", dsl.F("text", b.Streaming.String("Text"))))
//	doc, err := jsonschema.Emit(s)
//
//	sess := skillet.NewSession(s)
//	for chunk := range chunks {
//	    snap, err := sess.Feed(chunk, false)
//	    ...
//	}
//	snap, err := sess.Feed("", true)
package skillet
