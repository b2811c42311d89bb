package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stepflow/codestep/vm"
)

// ---------------------------------------------------------------------------
// Codegen: Compile AST to a bytecode artifact
// ---------------------------------------------------------------------------

// ErrBlankSource indicates the source text was empty or whitespace-only.
var ErrBlankSource = errors.New("source is empty")

// Compile compiles CodeStep source text to an executable artifact, entirely
// in memory. It fails when the source is blank, when the source does not
// parse, when code generation fails, or when the source does not define the
// expected entry type.
//
// Compile is safe to call concurrently for different (or identical)
// sources; it performs no de-duplication of its own.
func Compile(source string) (*vm.Artifact, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrBlankSource
	}

	p := NewParser(source)
	decl := p.ParseClass()
	if decl == nil {
		errs := p.Errors()
		if len(errs) == 0 {
			return nil, fmt.Errorf("parse failed")
		}
		return nil, fmt.Errorf("parse error at %s", errs[0])
	}

	if decl.Name != vm.EntryTypeName {
		return nil, fmt.Errorf("source defines class %q, want %q", decl.Name, vm.EntryTypeName)
	}

	artifact := &vm.Artifact{
		Version:  vm.ArtifactVersion,
		TypeName: decl.Name,
	}
	for _, m := range decl.Methods {
		compiled, err := compileMethod(m)
		if err != nil {
			return nil, err
		}
		artifact.Methods = append(artifact.Methods, compiled)
	}

	if artifact.Method(vm.EntryMethodName) == nil {
		return nil, fmt.Errorf("class %s does not define %s", decl.Name, vm.EntryMethodName)
	}

	return artifact, nil
}

// codegen compiles a single method body to a chunk.
type codegen struct {
	chunk *vm.Chunk

	// Variable slot allocation
	paramSlots map[string]uint8 // Parameter name -> index
	localSlots map[string]uint8 // Local var name -> slot
	varNames   []string         // Local names in slot order

	// Error collection
	errors []string
}

// compileMethod compiles one method declaration.
func compileMethod(m *MethodDecl) (*vm.Method, error) {
	if len(m.Params) > 255 {
		return nil, fmt.Errorf("method %s: too many parameters", m.Name)
	}

	c := &codegen{
		chunk:      vm.NewChunk(),
		paramSlots: make(map[string]uint8),
		localSlots: make(map[string]uint8),
	}

	paramTypes := make([]string, len(m.Params))
	for i, param := range m.Params {
		c.paramSlots[param.Name] = uint8(i)
		c.chunk.ParamNames = append(c.chunk.ParamNames, param.Name)
		paramTypes[i] = param.Type
	}

	for _, stmt := range m.Body {
		c.compileStatement(stmt)
	}

	// Ensure the method always returns something
	if !c.endsWithReturn() {
		c.chunk.Emit(vm.OpReturnNull)
	}

	c.chunk.LocalCount = uint8(len(c.localSlots))
	c.chunk.VarNames = c.varNames

	if len(c.errors) > 0 {
		return nil, fmt.Errorf("method %s: %s", m.Name, c.errors[0])
	}

	return &vm.Method{
		Name:       m.Name,
		Static:     m.Static,
		ParamTypes: paramTypes,
		ReturnType: m.ReturnType,
		Chunk:      c.chunk,
	}, nil
}

// errorf records a compilation error.
func (c *codegen) errorf(pos Position, format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf("line %d: %s", pos.Line, fmt.Sprintf(format, args...)))
}

// endsWithReturn checks if the code ends with a return instruction.
func (c *codegen) endsWithReturn() bool {
	code := c.chunk.Code
	if len(code) == 0 {
		return false
	}
	return vm.Opcode(code[len(code)-1]).IsReturn()
}

// ensureLocal returns the slot for a local variable, allocating one on
// first assignment.
func (c *codegen) ensureLocal(pos Position, name string) (uint8, bool) {
	if slot, ok := c.localSlots[name]; ok {
		return slot, true
	}
	if len(c.localSlots) >= 255 {
		c.errorf(pos, "too many local variables")
		return 0, false
	}
	slot := uint8(len(c.localSlots))
	c.localSlots[name] = slot
	c.varNames = append(c.varNames, name)
	return slot, true
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (c *codegen) compileStatement(stmt Stmt) {
	switch s := stmt.(type) {
	case *AssignStmt:
		if _, isParam := c.paramSlots[s.Name]; isParam {
			c.errorf(s.PosVal, "cannot assign to parameter %q", s.Name)
			return
		}
		c.compileExpr(s.Value)
		slot, ok := c.ensureLocal(s.PosVal, s.Name)
		if !ok {
			return
		}
		c.chunk.EmitWithOperand(vm.OpStoreLocal, slot)

	case *IndexAssignStmt:
		c.compileExpr(s.Container)
		c.compileExpr(s.Index)
		c.compileExpr(s.Value)
		c.chunk.Emit(vm.OpIndexSet)
		c.chunk.Emit(vm.OpPop)

	case *IfStmt:
		c.compileExpr(s.Cond)
		elseJump := c.chunk.EmitJump(vm.OpJumpFalse)
		for _, stmt := range s.Then {
			c.compileStatement(stmt)
		}
		if len(s.Else) > 0 {
			endJump := c.chunk.EmitJump(vm.OpJump)
			c.chunk.PatchJump(elseJump)
			for _, stmt := range s.Else {
				c.compileStatement(stmt)
			}
			c.chunk.PatchJump(endJump)
		} else {
			c.chunk.PatchJump(elseJump)
		}

	case *WhileStmt:
		loopStart := c.chunk.CurrentOffset()
		c.compileExpr(s.Cond)
		exitJump := c.chunk.EmitJump(vm.OpJumpFalse)
		for _, stmt := range s.Body {
			c.compileStatement(stmt)
		}
		c.chunk.EmitLoop(loopStart)
		c.chunk.PatchJump(exitJump)

	case *ReturnStmt:
		if s.Value == nil {
			c.chunk.Emit(vm.OpReturnNull)
			return
		}
		c.compileExpr(s.Value)
		c.chunk.Emit(vm.OpReturn)

	case *ExprStmt:
		c.compileExpr(s.X)
		c.chunk.Emit(vm.OpPop)

	default:
		c.errorf(stmt.Pos(), "cannot compile %T", stmt)
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

var binaryOpcodes = map[TokenType]vm.Opcode{
	TokenPlus:    vm.OpAdd,
	TokenMinus:   vm.OpSub,
	TokenStar:    vm.OpMul,
	TokenSlash:   vm.OpDiv,
	TokenPercent: vm.OpMod,
	TokenEq:      vm.OpEq,
	TokenNe:      vm.OpNe,
	TokenLt:      vm.OpLt,
	TokenLe:      vm.OpLe,
	TokenGt:      vm.OpGt,
	TokenGe:      vm.OpGe,
}

func (c *codegen) compileExpr(expr Expr) {
	switch e := expr.(type) {
	case *IntLit:
		c.chunk.EmitInt(e.Value)

	case *FloatLit:
		c.chunk.EmitFloat(e.Value)

	case *StringLit:
		c.chunk.EmitString(e.Value)

	case *BoolLit:
		if e.Value {
			c.chunk.Emit(vm.OpConstTrue)
		} else {
			c.chunk.Emit(vm.OpConstFalse)
		}

	case *NullLit:
		c.chunk.Emit(vm.OpConstNull)

	case *Ident:
		if idx, ok := c.paramSlots[e.Name]; ok {
			c.chunk.EmitWithOperand(vm.OpLoadParam, idx)
			return
		}
		if slot, ok := c.localSlots[e.Name]; ok {
			c.chunk.EmitWithOperand(vm.OpLoadLocal, slot)
			return
		}
		c.errorf(e.PosVal, "undefined variable %q", e.Name)

	case *IndexExpr:
		c.compileExpr(e.X)
		c.compileExpr(e.Index)
		c.chunk.Emit(vm.OpIndexGet)

	case *BinaryExpr:
		// && and || short-circuit: the right operand is only evaluated
		// when the left does not decide the result.
		if e.Op == TokenAndAnd || e.Op == TokenOrOr {
			jumpOp := vm.OpJumpFalse
			if e.Op == TokenOrOr {
				jumpOp = vm.OpJumpTrue
			}
			c.compileExpr(e.Left)
			c.chunk.Emit(vm.OpDup)
			end := c.chunk.EmitJump(jumpOp)
			c.chunk.Emit(vm.OpPop)
			c.compileExpr(e.Right)
			c.chunk.PatchJump(end)
			return
		}

		op, ok := binaryOpcodes[e.Op]
		if !ok {
			c.errorf(e.PosVal, "cannot compile operator %s", e.Op)
			return
		}
		c.compileExpr(e.Left)
		c.compileExpr(e.Right)
		c.chunk.Emit(op)

	case *UnaryExpr:
		c.compileExpr(e.X)
		switch e.Op {
		case TokenBang:
			c.chunk.Emit(vm.OpNot)
		case TokenMinus:
			c.chunk.Emit(vm.OpNeg)
		default:
			c.errorf(e.PosVal, "cannot compile unary operator %s", e.Op)
		}

	case *MapLit:
		c.chunk.Emit(vm.OpMapNew)
		for _, entry := range e.Entries {
			c.compileExpr(entry.Key)
			c.compileExpr(entry.Value)
			c.chunk.Emit(vm.OpMapSet)
		}

	case *ListLit:
		if len(e.Elems) > 65535 {
			c.errorf(e.PosVal, "list literal too large")
			return
		}
		for _, elem := range e.Elems {
			c.compileExpr(elem)
		}
		count := uint16(len(e.Elems))
		c.chunk.EmitWithOperand(vm.OpListNew, byte(count>>8), byte(count))

	case *CallExpr:
		id, arity, ok := vm.LookupBuiltin(e.Name)
		if !ok {
			c.errorf(e.PosVal, "unknown function %q", e.Name)
			return
		}
		if len(e.Args) != arity {
			c.errorf(e.PosVal, "%s takes %d argument(s), got %d", e.Name, arity, len(e.Args))
			return
		}
		for _, arg := range e.Args {
			c.compileExpr(arg)
		}
		c.chunk.EmitWithOperand(vm.OpCallBuiltin, byte(id), byte(len(e.Args)))

	default:
		c.errorf(expr.Pos(), "cannot compile %T", expr)
	}
}
