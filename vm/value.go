package vm

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Runtime values are drawn from the JSON value domain:
//
//	nil, bool, int64, float64, string, []any, map[string]any
//
// ParameterMap and ResultMap are map[string]any at the calling convention
// boundary. Inputs decoded from JSON arrive with float64 numbers; literals
// compiled from source produce int64 or float64 depending on their form.

// RuntimeError is a failure raised while executing bytecode, including
// failures raised deliberately by user code via the error builtin.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string {
	return e.Msg
}

// runtimeErrorf creates a RuntimeError with a formatted message.
func runtimeErrorf(format string, args ...any) *RuntimeError {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// Truthy reports whether a value is considered true in a condition.
// Null, false, zero, the empty string, and empty containers are falsy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// TypeName returns the source-level name of a value's type for diagnostics.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ToString renders a value as a string, as the str builtin and string
// concatenation see it.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

// NormalizeValue coerces Go-native numeric types into the VM value
// domain (int64 for integers, float64 for floats). Lists and maps are
// normalized in place so the caller's containers keep their identity.
// Values already in the domain, and unrecognized types, pass through.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case []any:
		for i := range x {
			x[i] = NormalizeValue(x[i])
		}
		return x
	case map[string]any:
		for k, val := range x {
			x[k] = NormalizeValue(val)
		}
		return x
	default:
		return v
	}
}

// asFloat converts a numeric value to float64.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// numericOp applies an arithmetic operation to two values.
// Two ints produce an int; any float widens the result to float.
func numericOp(op Opcode, a, b any) (any, error) {
	ai, aIsInt := a.(int64)
	bi, bIsInt := b.(int64)
	if aIsInt && bIsInt {
		switch op {
		case OpAdd:
			return ai + bi, nil
		case OpSub:
			return ai - bi, nil
		case OpMul:
			return ai * bi, nil
		case OpDiv:
			if bi == 0 {
				return nil, runtimeErrorf("division by zero")
			}
			return ai / bi, nil
		case OpMod:
			if bi == 0 {
				return nil, runtimeErrorf("division by zero")
			}
			return ai % bi, nil
		}
	}

	af, aOK := asFloat(a)
	bf, bOK := asFloat(b)
	if !aOK || !bOK {
		return nil, runtimeErrorf("cannot apply %s to %s and %s", op, TypeName(a), TypeName(b))
	}
	switch op {
	case OpAdd:
		return af + bf, nil
	case OpSub:
		return af - bf, nil
	case OpMul:
		return af * bf, nil
	case OpDiv:
		if bf == 0 {
			return nil, runtimeErrorf("division by zero")
		}
		return af / bf, nil
	case OpMod:
		if bf == 0 {
			return nil, runtimeErrorf("division by zero")
		}
		return math.Mod(af, bf), nil
	}
	return nil, runtimeErrorf("not an arithmetic opcode: %s", op)
}

// compareOp applies an ordering comparison to two values.
// Numbers compare numerically, strings lexicographically.
func compareOp(op Opcode, a, b any) (bool, error) {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return false, runtimeErrorf("cannot compare string with %s", TypeName(b))
		}
		switch op {
		case OpLt:
			return as < bs, nil
		case OpLe:
			return as <= bs, nil
		case OpGt:
			return as > bs, nil
		case OpGe:
			return as >= bs, nil
		}
	}

	af, aOK := asFloat(a)
	bf, bOK := asFloat(b)
	if !aOK || !bOK {
		return false, runtimeErrorf("cannot compare %s with %s", TypeName(a), TypeName(b))
	}
	switch op {
	case OpLt:
		return af < bf, nil
	case OpLe:
		return af <= bf, nil
	case OpGt:
		return af > bf, nil
	case OpGe:
		return af >= bf, nil
	}
	return false, runtimeErrorf("not a comparison opcode: %s", op)
}

// ValuesEqual reports deep equality of two runtime values.
// Ints and floats compare numerically across representations.
func ValuesEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, present := bv[k]
			if !present || !ValuesEqual(v, bval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// sortedKeys returns a map's keys in sorted order, as the keys builtin
// promises deterministic output.
func sortedKeys(m map[string]any) []any {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	keys := make([]any, len(names))
	for i, k := range names {
		keys[i] = k
	}
	return keys
}
