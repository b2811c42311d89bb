package vm

import (
	"reflect"
	"strings"
	"testing"
)

func TestArtifactRoundTrip(t *testing.T) {
	chunk := NewChunk()
	chunk.ParamNames = []string{"p"}
	chunk.Emit(OpMapNew)
	chunk.EmitString("answer")
	chunk.EmitInt(42)
	chunk.Emit(OpMapSet)
	chunk.Emit(OpReturn)
	chunk.LocalCount = 0

	original := &Artifact{
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

	data, err := MarshalArtifact(original)
	if err != nil {
		t.Fatalf("MarshalArtifact: %v", err)
	}
	decoded, err := UnmarshalArtifact(data)
	if err != nil {
		t.Fatalf("UnmarshalArtifact: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip changed artifact:\n  in:  %+v\n  out: %+v", original, decoded)
	}

	// The decoded artifact must still load and run
	entry, err := Load(decoded)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	result, err := entry.Invoke(nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result["answer"] != int64(42) {
		t.Errorf("result = %v", result)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalArtifact([]byte{0xFF, 0x00, 0x13}); err == nil {
		t.Error("UnmarshalArtifact succeeded on garbage")
	}
}

func TestUnmarshalRejectsWrongVersion(t *testing.T) {
	a := Synthesize()
	a.Version = 99
	data, err := cborEncMode.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, err = UnmarshalArtifact(data)
	if err == nil {
		t.Fatal("UnmarshalArtifact accepted wrong version")
	}
	if !strings.Contains(err.Error(), "version") {
		t.Errorf("error %q does not mention version", err)
	}
}

func TestDisassembleListing(t *testing.T) {
	chunk := Synthesize().Method(EntryMethodName).Chunk
	listing := chunk.DisassembleWithName("main")

	for _, want := range []string{"; === main ===", "MAP_NEW", "MAP_SET", "RETURN", "executed via fallback"} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}
}
