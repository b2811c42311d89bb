package vm

import (
	"fmt"
)

// Entry-point contract: a source unit defines exactly one type named Main
// exposing one static function main(ParameterMap) -> ResultMap. The
// contract is enforced structurally here, after loading, not by static
// analysis of the source.
const (
	EntryTypeName   = "Main"
	EntryMethodName = "main"
	ParamMapType    = "ParameterMap"
	ResultMapType   = "ResultMap"
)

// Invocable is the capability resolved from a loaded artifact: the fixed
// entry-point signature the engine dispatches through.
type Invocable interface {
	// Invoke runs the entry point with the given parameter map.
	Invoke(params map[string]any) (map[string]any, error)
}

// ExecContext is an isolated, single-artifact execution context. Each Load
// call creates a fresh context; contexts are never shared across artifacts,
// so two artifacts that both define a type named Main cannot observe each
// other's state. A context holds no OS resources and is reclaimed by the
// garbage collector once unreferenced.
type ExecContext struct {
	artifact *Artifact
	entry    *Method
}

// Load creates a brand-new execution context for the artifact and resolves
// its entry point. It fails if the artifact is malformed or the expected
// entry callable is absent or signature-mismatched.
func Load(a *Artifact) (Invocable, error) {
	if a == nil {
		return nil, fmt.Errorf("vm: nil artifact")
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("vm: unsupported artifact version %d (want %d)", a.Version, ArtifactVersion)
	}
	if a.TypeName != EntryTypeName {
		return nil, fmt.Errorf("vm: artifact defines type %q, want %q", a.TypeName, EntryTypeName)
	}

	m := a.Method(EntryMethodName)
	if m == nil {
		return nil, fmt.Errorf("vm: artifact has no %s function", EntryMethodName)
	}
	if m.Chunk == nil {
		return nil, fmt.Errorf("vm: %s function has no code", EntryMethodName)
	}
	if !m.Static {
		return nil, fmt.Errorf("vm: %s function must be static", EntryMethodName)
	}
	if len(m.ParamTypes) != 1 || m.ParamTypes[0] != ParamMapType || m.ReturnType != ResultMapType {
		return nil, fmt.Errorf("vm: %s function must have signature (%s) -> %s",
			EntryMethodName, ParamMapType, ResultMapType)
	}

	return &ExecContext{artifact: a, entry: m}, nil
}

// Invoke runs the entry point on a fresh VM. Parameter values are
// normalized into the VM value domain first, so a caller handing over
// Go ints gets the same arithmetic as one decoding JSON. Failures
// raised by the executed code propagate unchanged.
func (c *ExecContext) Invoke(params map[string]any) (map[string]any, error) {
	if params == nil {
		params = map[string]any{}
	}
	NormalizeValue(params)

	result, err := NewVM().Execute(c.entry.Chunk, []any{params})
	if err != nil {
		return nil, err
	}

	m, ok := result.(map[string]any)
	if !ok {
		return nil, runtimeErrorf("%s returned %s, want %s", EntryMethodName, TypeName(result), ResultMapType)
	}
	return m, nil
}
