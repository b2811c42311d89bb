package vm

// Fallback artifact synthesis: when full compilation is unavailable or
// rejects the source, the engine still needs an executable artifact that
// satisfies the entry-point contract. Synthesize builds one by raw chunk
// emission, with no compiler involvement, so the two production strategies
// can evolve independently.

// Fixed result values of the synthesized entry point.
const (
	FallbackMessage     = "executed via fallback"
	FallbackProcessedBy = "fallback-synthesizer"
)

// Synthesize constructs the canned fallback artifact. It is deterministic,
// takes no input, and always succeeds. The artifact exposes the identical
// entry-point contract as a compiled artifact but ignores its parameters
// and returns fixed, source-independent output values.
func Synthesize() *Artifact {
	chunk := NewChunk()
	chunk.ParamNames = []string{"params"}

	// r = {}; r["message"] = ...; r["processedBy"] = ...; return r
	chunk.Emit(OpMapNew)
	chunk.EmitString("message")
	chunk.EmitString(FallbackMessage)
	chunk.Emit(OpMapSet)
	chunk.EmitString("processedBy")
	chunk.EmitString(FallbackProcessedBy)
	chunk.Emit(OpMapSet)
	chunk.Emit(OpReturn)

	return &Artifact{
		Version:  ArtifactVersion,
		TypeName: EntryTypeName,
		Methods: []*Method{{
			Name:       EntryMethodName,
			Static:     true,
			ParamTypes: []string{ParamMapType},
			ReturnType: ResultMapType,
			Chunk:      chunk,
		}},
	}
}
