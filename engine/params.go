package engine

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Parameter and result maps cross the engine boundary as JSON documents.
// Decoding goes through structpb.Struct so values are normalized to the
// JSON value domain the VM operates on (null, bool, float64, string,
// []any, map[string]any) regardless of the transport that delivered them.

// ParamsFromJSON decodes a JSON object into a parameter map.
func ParamsFromJSON(data []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return s.AsMap(), nil
}

// ResultToJSON encodes a result map as a JSON object.
func ResultToJSON(result map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return protojson.Marshal(s)
}
