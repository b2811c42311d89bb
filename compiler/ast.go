package compiler

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for CodeStep
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	node() // marker method
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

// ClassDecl is a top-level class declaration. A source unit contains
// exactly one.
type ClassDecl struct {
	PosVal  Position
	Name    string
	Methods []*MethodDecl
}

func (n *ClassDecl) Pos() Position { return n.PosVal }
func (n *ClassDecl) node()         {}

// Param is a declared method parameter.
type Param struct {
	Type string
	Name string
}

// MethodDecl is a method declaration inside a class.
type MethodDecl struct {
	PosVal     Position
	Name       string
	Static     bool
	ReturnType string
	Params     []Param
	Body       []Stmt
}

func (n *MethodDecl) Pos() Position { return n.PosVal }
func (n *MethodDecl) node()         {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// AssignStmt assigns to a local variable, optionally with a type
// annotation (`int n = 3;`). The annotation is decorative: CodeStep locals
// are dynamically typed and the first assignment introduces the variable.
type AssignStmt struct {
	PosVal Position
	Type   string // Declared type name, or "" for a bare assignment
	Name   string
	Value  Expr
}

func (n *AssignStmt) Pos() Position { return n.PosVal }
func (n *AssignStmt) node()         {}
func (n *AssignStmt) stmt()         {}

// IndexAssignStmt assigns through an index expression (`r["x"] = v;`).
type IndexAssignStmt struct {
	PosVal    Position
	Container Expr
	Index     Expr
	Value     Expr
}

func (n *IndexAssignStmt) Pos() Position { return n.PosVal }
func (n *IndexAssignStmt) node()         {}
func (n *IndexAssignStmt) stmt()         {}

// IfStmt is a conditional with an optional else branch.
type IfStmt struct {
	PosVal Position
	Cond   Expr
	Then   []Stmt
	Else   []Stmt // nil when absent; a single IfStmt for `else if`
}

func (n *IfStmt) Pos() Position { return n.PosVal }
func (n *IfStmt) node()         {}
func (n *IfStmt) stmt()         {}

// WhileStmt is a while loop.
type WhileStmt struct {
	PosVal Position
	Cond   Expr
	Body   []Stmt
}

func (n *WhileStmt) Pos() Position { return n.PosVal }
func (n *WhileStmt) node()         {}
func (n *WhileStmt) stmt()         {}

// ReturnStmt returns from the enclosing method, with an optional value.
type ReturnStmt struct {
	PosVal Position
	Value  Expr // nil for a bare return
}

func (n *ReturnStmt) Pos() Position { return n.PosVal }
func (n *ReturnStmt) node()         {}
func (n *ReturnStmt) stmt()         {}

// ExprStmt evaluates an expression for effect and discards the result.
type ExprStmt struct {
	PosVal Position
	X      Expr
}

func (n *ExprStmt) Pos() Position { return n.PosVal }
func (n *ExprStmt) node()         {}
func (n *ExprStmt) stmt()         {}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// IntLit is an integer literal.
type IntLit struct {
	PosVal Position
	Value  int64
}

func (n *IntLit) Pos() Position { return n.PosVal }
func (n *IntLit) node()         {}
func (n *IntLit) expr()         {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	PosVal Position
	Value  float64
}

func (n *FloatLit) Pos() Position { return n.PosVal }
func (n *FloatLit) node()         {}
func (n *FloatLit) expr()         {}

// StringLit is a string literal.
type StringLit struct {
	PosVal Position
	Value  string
}

func (n *StringLit) Pos() Position { return n.PosVal }
func (n *StringLit) node()         {}
func (n *StringLit) expr()         {}

// BoolLit is true or false.
type BoolLit struct {
	PosVal Position
	Value  bool
}

func (n *BoolLit) Pos() Position { return n.PosVal }
func (n *BoolLit) node()         {}
func (n *BoolLit) expr()         {}

// NullLit is the null literal.
type NullLit struct {
	PosVal Position
}

func (n *NullLit) Pos() Position { return n.PosVal }
func (n *NullLit) node()         {}
func (n *NullLit) expr()         {}

// Ident is a variable or parameter reference.
type Ident struct {
	PosVal Position
	Name   string
}

func (n *Ident) Pos() Position { return n.PosVal }
func (n *Ident) node()         {}
func (n *Ident) expr()         {}

// IndexExpr reads a value through an index (`p["x"]`, `xs[0]`).
type IndexExpr struct {
	PosVal Position
	X      Expr
	Index  Expr
}

func (n *IndexExpr) Pos() Position { return n.PosVal }
func (n *IndexExpr) node()         {}
func (n *IndexExpr) expr()         {}

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	PosVal Position
	Op     TokenType
	Left   Expr
	Right  Expr
}

func (n *BinaryExpr) Pos() Position { return n.PosVal }
func (n *BinaryExpr) node()         {}
func (n *BinaryExpr) expr()         {}

// UnaryExpr is a prefix operation (`-x`, `!x`).
type UnaryExpr struct {
	PosVal Position
	Op     TokenType
	X      Expr
}

func (n *UnaryExpr) Pos() Position { return n.PosVal }
func (n *UnaryExpr) node()         {}
func (n *UnaryExpr) expr()         {}

// MapEntry is a single key/value pair in a map literal.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLit is a map literal (`{}`, `{"k": v}`).
type MapLit struct {
	PosVal  Position
	Entries []MapEntry
}

func (n *MapLit) Pos() Position { return n.PosVal }
func (n *MapLit) node()         {}
func (n *MapLit) expr()         {}

// ListLit is a list literal (`[1, 2, 3]`).
type ListLit struct {
	PosVal Position
	Elems  []Expr
}

func (n *ListLit) Pos() Position { return n.PosVal }
func (n *ListLit) node()         {}
func (n *ListLit) expr()         {}

// CallExpr is a builtin function call (`len(xs)`).
type CallExpr struct {
	PosVal Position
	Name   string
	Args   []Expr
}

func (n *CallExpr) Pos() Position { return n.PosVal }
func (n *CallExpr) node()         {}
func (n *CallExpr) expr()         {}
