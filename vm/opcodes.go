package vm

import "fmt"

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	OpNop Opcode = 0x00 // No operation
	OpPop Opcode = 0x01 // Pop top of stack
	OpDup Opcode = 0x02 // Duplicate top of stack

	// ========================================================================
	// Constants (0x10-0x1F)
	// ========================================================================

	OpConst      Opcode = 0x10 // Push constant from pool: OpConst <index:u16>
	OpConstNull  Opcode = 0x11 // Push null
	OpConstTrue  Opcode = 0x12 // Push true
	OpConstFalse Opcode = 0x13 // Push false

	// ========================================================================
	// Variables (0x20-0x2F)
	// ========================================================================

	OpLoadLocal  Opcode = 0x20 // Push local variable: OpLoadLocal <slot:u8>
	OpStoreLocal Opcode = 0x21 // Pop and store to local: OpStoreLocal <slot:u8>
	OpLoadParam  Opcode = 0x22 // Push parameter: OpLoadParam <index:u8>

	// ========================================================================
	// Arithmetic (0x50-0x5F)
	// ========================================================================

	OpAdd Opcode = 0x50 // Pop two, push sum (string + string concatenates)
	OpSub Opcode = 0x51 // Pop two, push difference (a - b where b is TOS)
	OpMul Opcode = 0x52 // Pop two, push product
	OpDiv Opcode = 0x53 // Pop two, push quotient
	OpMod Opcode = 0x54 // Pop two, push remainder
	OpNeg Opcode = 0x55 // Negate top of stack

	// ========================================================================
	// Comparison (0x60-0x67)
	// ========================================================================

	OpEq Opcode = 0x60 // Pop two, push true if equal
	OpNe Opcode = 0x61 // Pop two, push true if not equal
	OpLt Opcode = 0x62 // Pop two, push true if a < b
	OpLe Opcode = 0x63 // Pop two, push true if a <= b
	OpGt Opcode = 0x64 // Pop two, push true if a > b
	OpGe Opcode = 0x65 // Pop two, push true if a >= b

	// ========================================================================
	// Logical operations (0x68-0x6F)
	// ========================================================================

	OpNot Opcode = 0x68 // Pop one, push logical NOT
	OpAnd Opcode = 0x69 // Pop two, push logical AND
	OpOr  Opcode = 0x6A // Pop two, push logical OR

	// ========================================================================
	// Control flow (0x80-0x8F)
	// ========================================================================

	OpJump      Opcode = 0x80 // Unconditional jump: OpJump <offset:i16>
	OpJumpTrue  Opcode = 0x81 // Jump if top is truthy: OpJumpTrue <offset:i16>
	OpJumpFalse Opcode = 0x82 // Jump if top is falsy: OpJumpFalse <offset:i16>

	// ========================================================================
	// Map operations (0xB0-0xB7)
	// ========================================================================

	OpMapNew Opcode = 0xB0 // Create empty map, push it
	OpMapSet Opcode = 0xB1 // map key value -> map (map is pushed back)

	// ========================================================================
	// List operations (0xB8-0xBF)
	// ========================================================================

	OpListNew Opcode = 0xB8 // Build list from top N stack values: OpListNew <count:u16>

	// ========================================================================
	// Indexing (0xC0-0xC7)
	// ========================================================================

	OpIndexGet Opcode = 0xC0 // container key -> value
	OpIndexSet Opcode = 0xC1 // container key value -> container

	// ========================================================================
	// Builtin calls (0xD0-0xD7)
	// ========================================================================

	OpCallBuiltin Opcode = 0xD0 // Call builtin: OpCallBuiltin <id:u8> <argc:u8>

	// ========================================================================
	// Return (0xF0-0xFF)
	// ========================================================================

	OpReturn     Opcode = 0xF0 // Return top of stack
	OpReturnNull Opcode = 0xF1 // Return null
)

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Name       string // Human-readable name
	StackPop   int    // How many values popped from stack (-1 = variable)
	StackPush  int    // How many values pushed to stack
	OperandLen int    // Number of operand bytes following the opcode
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpNop: {"NOP", 0, 0, 0},
	OpPop: {"POP", 1, 0, 0},
	OpDup: {"DUP", 1, 2, 0},

	OpConst:      {"CONST", 0, 1, 2},
	OpConstNull:  {"CONST_NULL", 0, 1, 0},
	OpConstTrue:  {"CONST_TRUE", 0, 1, 0},
	OpConstFalse: {"CONST_FALSE", 0, 1, 0},

	OpLoadLocal:  {"LOAD_LOCAL", 0, 1, 1},
	OpStoreLocal: {"STORE_LOCAL", 1, 0, 1},
	OpLoadParam:  {"LOAD_PARAM", 0, 1, 1},

	OpAdd: {"ADD", 2, 1, 0},
	OpSub: {"SUB", 2, 1, 0},
	OpMul: {"MUL", 2, 1, 0},
	OpDiv: {"DIV", 2, 1, 0},
	OpMod: {"MOD", 2, 1, 0},
	OpNeg: {"NEG", 1, 1, 0},

	OpEq: {"EQ", 2, 1, 0},
	OpNe: {"NE", 2, 1, 0},
	OpLt: {"LT", 2, 1, 0},
	OpLe: {"LE", 2, 1, 0},
	OpGt: {"GT", 2, 1, 0},
	OpGe: {"GE", 2, 1, 0},

	OpNot: {"NOT", 1, 1, 0},
	OpAnd: {"AND", 2, 1, 0},
	OpOr:  {"OR", 2, 1, 0},

	OpJump:      {"JUMP", 0, 0, 2},
	OpJumpTrue:  {"JUMP_TRUE", 1, 0, 2},
	OpJumpFalse: {"JUMP_FALSE", 1, 0, 2},

	OpMapNew: {"MAP_NEW", 0, 1, 0},
	OpMapSet: {"MAP_SET", 3, 1, 0},

	OpListNew: {"LIST_NEW", -1, 1, 2},

	OpIndexGet: {"INDEX_GET", 2, 1, 0},
	OpIndexSet: {"INDEX_SET", 3, 1, 0},

	OpCallBuiltin: {"CALL_BUILTIN", -1, 1, 2},

	OpReturn:     {"RETURN", 1, 0, 0},
	OpReturnNull: {"RETURN_NULL", 0, 0, 0},
}

// GetOpcodeInfo returns metadata for an opcode.
// Unknown opcodes get a synthesized name and zero operands.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// IsReturn reports whether the opcode terminates execution of a chunk.
func (op Opcode) IsReturn() bool {
	return op == OpReturn || op == OpReturnNull
}

// String returns the human-readable opcode name.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Builtin identifies a builtin function callable from bytecode.
type Builtin uint8

const (
	BuiltinLen    Builtin = 0 // len(x): length of string, list, or map
	BuiltinStr    Builtin = 1 // str(x): string representation
	BuiltinKeys   Builtin = 2 // keys(m): sorted list of map keys
	BuiltinHas    Builtin = 3 // has(m, k): true if map contains key
	BuiltinAppend Builtin = 4 // append(xs, v): list with v appended
	BuiltinError  Builtin = 5 // error(msg): raise an execution failure
)

// builtinNames maps source-level names to builtin IDs.
var builtinNames = map[string]Builtin{
	"len":    BuiltinLen,
	"str":    BuiltinStr,
	"keys":   BuiltinKeys,
	"has":    BuiltinHas,
	"append": BuiltinAppend,
	"error":  BuiltinError,
}

// builtinArity maps builtin IDs to their required argument count.
var builtinArity = map[Builtin]int{
	BuiltinLen:    1,
	BuiltinStr:    1,
	BuiltinKeys:   1,
	BuiltinHas:    2,
	BuiltinAppend: 2,
	BuiltinError:  1,
}

// LookupBuiltin resolves a source-level function name to a builtin ID and
// its arity. Returns false if the name is not a builtin.
func LookupBuiltin(name string) (Builtin, int, bool) {
	id, ok := builtinNames[name]
	if !ok {
		return 0, 0, false
	}
	return id, builtinArity[id], true
}

// BuiltinName returns the source-level name of a builtin.
func BuiltinName(id Builtin) string {
	for name, b := range builtinNames {
		if b == id {
			return name
		}
	}
	return fmt.Sprintf("builtin(%d)", id)
}
