package vm

import "fmt"

// ArtifactVersion is the current artifact format version.
// Increment when making incompatible changes to the format.
const ArtifactVersion uint16 = 1

// ConstKind identifies the type of a constant pool entry.
type ConstKind uint8

const (
	// ConstString is a string constant.
	ConstString ConstKind = 0

	// ConstInt is a 64-bit signed integer constant.
	ConstInt ConstKind = 1

	// ConstFloat is a 64-bit float constant.
	ConstFloat ConstKind = 2
)

// String returns a human-readable name for ConstKind.
func (k ConstKind) String() string {
	switch k {
	case ConstString:
		return "string"
	case ConstInt:
		return "int"
	case ConstFloat:
		return "float"
	default:
		return fmt.Sprintf("ConstKind(%d)", k)
	}
}

// Constant is a typed constant pool entry.
// Exactly one payload field is meaningful, selected by Kind.
type Constant struct {
	Kind  ConstKind
	Str   string  `cbor:",omitempty"`
	Int   int64   `cbor:",omitempty"`
	Float float64 `cbor:",omitempty"`
}

// Value returns the constant as a runtime value.
func (c Constant) Value() any {
	switch c.Kind {
	case ConstInt:
		return c.Int
	case ConstFloat:
		return c.Float
	default:
		return c.Str
	}
}

// Chunk represents compiled bytecode for a single method body.
// It is the fundamental unit of bytecode that can be serialized and executed.
type Chunk struct {
	// Code section
	Code []byte // Bytecode instructions

	// Constant pool - values referenced by OpConst
	Constants []Constant

	// Parameter information
	ParamNames []string // Parameter names, in declaration order

	// Local variables
	LocalCount uint8    // Number of local variable slots needed
	VarNames   []string // Local variable names for diagnostics
}

// NewChunk creates a new empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]Constant, 0, 8),
	}
}

// AddConstant adds a constant to the pool and returns its index.
// If an equal constant already exists, returns the existing index.
func (c *Chunk) AddConstant(value Constant) uint16 {
	for i, existing := range c.Constants {
		if existing == value {
			return uint16(i)
		}
	}
	idx := uint16(len(c.Constants))
	c.Constants = append(c.Constants, value)
	return idx
}

// Emit appends a single-byte opcode to the code section.
func (c *Chunk) Emit(op Opcode) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(op))
	return offset
}

// EmitWithOperand appends an opcode with operand bytes.
func (c *Chunk) EmitWithOperand(op Opcode, operands ...byte) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(op))
	c.Code = append(c.Code, operands...)
	return offset
}

// EmitConstant emits an OpConst instruction for the given value.
// Adds the constant to the pool if not already present.
func (c *Chunk) EmitConstant(value Constant) int {
	idx := c.AddConstant(value)
	return c.EmitWithOperand(OpConst, byte(idx>>8), byte(idx))
}

// EmitString emits an OpConst for a string constant.
func (c *Chunk) EmitString(s string) int {
	return c.EmitConstant(Constant{Kind: ConstString, Str: s})
}

// EmitInt emits an OpConst for an integer constant.
func (c *Chunk) EmitInt(n int64) int {
	return c.EmitConstant(Constant{Kind: ConstInt, Int: n})
}

// EmitFloat emits an OpConst for a float constant.
func (c *Chunk) EmitFloat(f float64) int {
	return c.EmitConstant(Constant{Kind: ConstFloat, Float: f})
}

// EmitJump emits a jump instruction with a placeholder offset.
// Returns the offset of the placeholder for later patching.
func (c *Chunk) EmitJump(op Opcode) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(op), 0xFF, 0xFF) // Placeholder
	return offset + 1                             // Offset of the placeholder bytes
}

// PatchJump patches a jump instruction's offset to jump to the current position.
func (c *Chunk) PatchJump(placeholderOffset int) {
	// Relative jump measured from after the 2-byte offset
	jumpFrom := placeholderOffset + 2
	jumpTo := len(c.Code)
	delta := jumpTo - jumpFrom

	c.Code[placeholderOffset] = byte(delta >> 8)
	c.Code[placeholderOffset+1] = byte(delta)
}

// EmitLoop emits a backward jump to the given loop start.
func (c *Chunk) EmitLoop(loopStart int) {
	jumpFrom := len(c.Code) + 3 // After this instruction
	delta := loopStart - jumpFrom

	c.Code = append(c.Code, byte(OpJump))
	c.Code = append(c.Code, byte(delta>>8), byte(delta))
}

// CurrentOffset returns the current offset in the code section.
func (c *Chunk) CurrentOffset() int {
	return len(c.Code)
}

// Method is a compiled method of an artifact's type.
type Method struct {
	Name       string
	Static     bool
	ParamTypes []string // Declared parameter type names, in order
	ReturnType string   // Declared return type name
	Chunk      *Chunk
}

// Artifact is the opaque executable representation of a source unit.
// It is immutable once produced and carries no mutable state; the same
// artifact may be loaded into any number of execution contexts.
type Artifact struct {
	Version  uint16
	TypeName string
	Methods  []*Method
}

// Method returns the named method, or nil if the artifact has none.
func (a *Artifact) Method(name string) *Method {
	for _, m := range a.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}
