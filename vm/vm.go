package vm

import (
	"fmt"
)

// VM executes bytecode chunks. A VM holds the execution state for a single
// invocation; it is not safe for concurrent use, but separate VMs are fully
// independent of each other.
type VM struct {
	// Current execution state
	chunk *Chunk // Current bytecode chunk
	ip    int    // Instruction pointer
	stack []any  // Value stack

	// Variable storage
	locals []any // Local variable slots
	params []any // Parameter values

	// Trace enables instruction-level tracing to stdout.
	Trace bool
}

// NewVM creates a new VM instance.
func NewVM() *VM {
	return &VM{
		stack: make([]any, 0, 64),
	}
}

// Execute runs a bytecode chunk with the given arguments.
// Returns the result value and any error.
func (vm *VM) Execute(chunk *Chunk, args []any) (any, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.stack = vm.stack[:0]
	vm.params = args
	vm.locals = make([]any, chunk.LocalCount)

	return vm.run()
}

// run is the main execution loop.
func (vm *VM) run() (any, error) {
	code := vm.chunk.Code
	for vm.ip < len(code) {
		op := Opcode(code[vm.ip])
		vm.ip++

		if vm.Trace {
			info := GetOpcodeInfo(op)
			fmt.Printf("[%04x] %-14s sp=%d\n", vm.ip-1, info.Name, len(vm.stack))
		}

		switch op {
		case OpNop:
			// Do nothing

		case OpPop:
			if err := vm.need(1); err != nil {
				return nil, err
			}
			vm.pop()

		case OpDup:
			if err := vm.need(1); err != nil {
				return nil, err
			}
			vm.push(vm.stack[len(vm.stack)-1])

		case OpConst:
			idx, err := vm.readUint16()
			if err != nil {
				return nil, err
			}
			if int(idx) >= len(vm.chunk.Constants) {
				return nil, runtimeErrorf("constant index %d out of range", idx)
			}
			vm.push(vm.chunk.Constants[idx].Value())

		case OpConstNull:
			vm.push(nil)

		case OpConstTrue:
			vm.push(true)

		case OpConstFalse:
			vm.push(false)

		case OpLoadLocal:
			slot, err := vm.readUint8()
			if err != nil {
				return nil, err
			}
			if int(slot) >= len(vm.locals) {
				return nil, runtimeErrorf("local slot %d out of range", slot)
			}
			vm.push(vm.locals[slot])

		case OpStoreLocal:
			slot, err := vm.readUint8()
			if err != nil {
				return nil, err
			}
			if int(slot) >= len(vm.locals) {
				return nil, runtimeErrorf("local slot %d out of range", slot)
			}
			if err := vm.need(1); err != nil {
				return nil, err
			}
			vm.locals[slot] = vm.pop()

		case OpLoadParam:
			idx, err := vm.readUint8()
			if err != nil {
				return nil, err
			}
			if int(idx) < len(vm.params) {
				vm.push(vm.params[idx])
			} else {
				vm.push(nil) // Missing param
			}

		case OpAdd, OpSub, OpMul, OpDiv, OpMod:
			if err := vm.need(2); err != nil {
				return nil, err
			}
			b := vm.pop()
			a := vm.pop()
			// + concatenates when either side is a string
			if op == OpAdd {
				if _, ok := a.(string); ok {
					vm.push(ToString(a) + ToString(b))
					continue
				}
				if _, ok := b.(string); ok {
					vm.push(ToString(a) + ToString(b))
					continue
				}
			}
			result, err := numericOp(op, a, b)
			if err != nil {
				return nil, err
			}
			vm.push(result)

		case OpNeg:
			if err := vm.need(1); err != nil {
				return nil, err
			}
			switch x := vm.pop().(type) {
			case int64:
				vm.push(-x)
			case float64:
				vm.push(-x)
			default:
				return nil, runtimeErrorf("cannot negate %s", TypeName(x))
			}

		case OpEq, OpNe:
			if err := vm.need(2); err != nil {
				return nil, err
			}
			b := vm.pop()
			a := vm.pop()
			eq := ValuesEqual(a, b)
			vm.push(eq == (op == OpEq))

		case OpLt, OpLe, OpGt, OpGe:
			if err := vm.need(2); err != nil {
				return nil, err
			}
			b := vm.pop()
			a := vm.pop()
			result, err := compareOp(op, a, b)
			if err != nil {
				return nil, err
			}
			vm.push(result)

		case OpNot:
			if err := vm.need(1); err != nil {
				return nil, err
			}
			vm.push(!Truthy(vm.pop()))

		case OpAnd:
			if err := vm.need(2); err != nil {
				return nil, err
			}
			b := vm.pop()
			a := vm.pop()
			vm.push(Truthy(a) && Truthy(b))

		case OpOr:
			if err := vm.need(2); err != nil {
				return nil, err
			}
			b := vm.pop()
			a := vm.pop()
			vm.push(Truthy(a) || Truthy(b))

		case OpJump:
			delta, err := vm.readInt16()
			if err != nil {
				return nil, err
			}
			vm.ip += int(delta)

		case OpJumpTrue, OpJumpFalse:
			delta, err := vm.readInt16()
			if err != nil {
				return nil, err
			}
			if err := vm.need(1); err != nil {
				return nil, err
			}
			cond := Truthy(vm.pop())
			if cond == (op == OpJumpTrue) {
				vm.ip += int(delta)
			}

		case OpMapNew:
			vm.push(map[string]any{})

		case OpMapSet:
			if err := vm.need(3); err != nil {
				return nil, err
			}
			value := vm.pop()
			key := vm.pop()
			container := vm.pop()
			m, ok := container.(map[string]any)
			if !ok {
				return nil, runtimeErrorf("cannot set key on %s", TypeName(container))
			}
			ks, ok := key.(string)
			if !ok {
				return nil, runtimeErrorf("map key must be a string, got %s", TypeName(key))
			}
			m[ks] = value
			vm.push(m)

		case OpListNew:
			count, err := vm.readUint16()
			if err != nil {
				return nil, err
			}
			if err := vm.need(int(count)); err != nil {
				return nil, err
			}
			list := make([]any, count)
			for i := int(count) - 1; i >= 0; i-- {
				list[i] = vm.pop()
			}
			vm.push(list)

		case OpIndexGet:
			if err := vm.need(2); err != nil {
				return nil, err
			}
			key := vm.pop()
			container := vm.pop()
			value, err := indexGet(container, key)
			if err != nil {
				return nil, err
			}
			vm.push(value)

		case OpIndexSet:
			if err := vm.need(3); err != nil {
				return nil, err
			}
			value := vm.pop()
			key := vm.pop()
			container := vm.pop()
			if err := indexSet(container, key, value); err != nil {
				return nil, err
			}
			vm.push(container)

		case OpCallBuiltin:
			operands, err := vm.readUint16()
			if err != nil {
				return nil, err
			}
			id := Builtin(operands >> 8)
			argc := int(operands & 0xFF)
			if err := vm.need(argc); err != nil {
				return nil, err
			}
			args := make([]any, argc)
			for i := argc - 1; i >= 0; i-- {
				args[i] = vm.pop()
			}
			result, err := callBuiltin(id, args)
			if err != nil {
				return nil, err
			}
			vm.push(result)

		case OpReturn:
			if err := vm.need(1); err != nil {
				return nil, err
			}
			return vm.pop(), nil

		case OpReturnNull:
			return nil, nil

		default:
			return nil, runtimeErrorf("unknown opcode 0x%02X at offset %d", byte(op), vm.ip-1)
		}
	}

	// Falling off the end of the chunk returns null
	return nil, nil
}

// ---------------------------------------------------------------------------
// Stack and operand helpers
// ---------------------------------------------------------------------------

func (vm *VM) push(v any) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() any {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

// need verifies the stack holds at least n values.
func (vm *VM) need(n int) error {
	if len(vm.stack) < n {
		return runtimeErrorf("stack underflow at offset %d", vm.ip-1)
	}
	return nil
}

func (vm *VM) readUint8() (uint8, error) {
	if vm.ip >= len(vm.chunk.Code) {
		return 0, runtimeErrorf("truncated bytecode at offset %d", vm.ip)
	}
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b, nil
}

func (vm *VM) readUint16() (uint16, error) {
	if vm.ip+2 > len(vm.chunk.Code) {
		return 0, runtimeErrorf("truncated bytecode at offset %d", vm.ip)
	}
	v := uint16(vm.chunk.Code[vm.ip])<<8 | uint16(vm.chunk.Code[vm.ip+1])
	vm.ip += 2
	return v, nil
}

func (vm *VM) readInt16() (int16, error) {
	v, err := vm.readUint16()
	return int16(v), err
}

// ---------------------------------------------------------------------------
// Indexing
// ---------------------------------------------------------------------------

// indexGet reads container[key]. Missing map keys yield null; list indices
// must be integral and in range.
func indexGet(container, key any) (any, error) {
	switch c := container.(type) {
	case map[string]any:
		ks, ok := key.(string)
		if !ok {
			return nil, runtimeErrorf("map key must be a string, got %s", TypeName(key))
		}
		return c[ks], nil
	case []any:
		idx, err := listIndex(key, len(c))
		if err != nil {
			return nil, err
		}
		return c[idx], nil
	default:
		return nil, runtimeErrorf("cannot index %s", TypeName(container))
	}
}

// indexSet writes container[key] = value in place.
func indexSet(container, key, value any) error {
	switch c := container.(type) {
	case map[string]any:
		ks, ok := key.(string)
		if !ok {
			return runtimeErrorf("map key must be a string, got %s", TypeName(key))
		}
		c[ks] = value
		return nil
	case []any:
		idx, err := listIndex(key, len(c))
		if err != nil {
			return err
		}
		c[idx] = value
		return nil
	default:
		return runtimeErrorf("cannot index %s", TypeName(container))
	}
}

// listIndex validates a list index value against a list length.
func listIndex(key any, length int) (int, error) {
	var idx int
	switch k := key.(type) {
	case int64:
		idx = int(k)
	case float64:
		idx = int(k)
		if float64(idx) != k {
			return 0, runtimeErrorf("list index must be an integer, got %v", k)
		}
	default:
		return 0, runtimeErrorf("list index must be an integer, got %s", TypeName(key))
	}
	if idx < 0 || idx >= length {
		return 0, runtimeErrorf("list index %d out of range (len %d)", idx, length)
	}
	return idx, nil
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

// callBuiltin dispatches a builtin by ID. Arity was checked at compile time
// for compiled code; synthesized or hand-built chunks are validated here.
func callBuiltin(id Builtin, args []any) (any, error) {
	if want, ok := builtinArity[id]; !ok || want != len(args) {
		return nil, runtimeErrorf("builtin %s takes %d argument(s), got %d", BuiltinName(id), builtinArity[id], len(args))
	}

	switch id {
	case BuiltinLen:
		switch x := args[0].(type) {
		case string:
			return int64(len(x)), nil
		case []any:
			return int64(len(x)), nil
		case map[string]any:
			return int64(len(x)), nil
		default:
			return nil, runtimeErrorf("len: cannot take length of %s", TypeName(args[0]))
		}

	case BuiltinStr:
		return ToString(args[0]), nil

	case BuiltinKeys:
		m, ok := args[0].(map[string]any)
		if !ok {
			return nil, runtimeErrorf("keys: want map, got %s", TypeName(args[0]))
		}
		return sortedKeys(m), nil

	case BuiltinHas:
		m, ok := args[0].(map[string]any)
		if !ok {
			return nil, runtimeErrorf("has: want map, got %s", TypeName(args[0]))
		}
		k, ok := args[1].(string)
		if !ok {
			return nil, runtimeErrorf("has: key must be a string, got %s", TypeName(args[1]))
		}
		_, present := m[k]
		return present, nil

	case BuiltinAppend:
		xs, ok := args[0].([]any)
		if !ok {
			return nil, runtimeErrorf("append: want list, got %s", TypeName(args[0]))
		}
		out := make([]any, len(xs), len(xs)+1)
		copy(out, xs)
		return append(out, args[1]), nil

	case BuiltinError:
		return nil, &RuntimeError{Msg: ToString(args[0])}

	default:
		return nil, runtimeErrorf("unknown builtin %d", id)
	}
}
