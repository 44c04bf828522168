// Package codegen lowers a semantic tree — the narrow interface this
// module accepts in place of a full lexer/parser/analyser front end — to
// Zinc bytecode (package isa). It plays the role the teacher's
// zkcompile/petrigen package plays for Petri-net models: a symbol table
// plus an offset-tracking context that walks a higher-level tree once
// and emits a linear low-level instruction stream. The walk itself is
// grounded on zkcompile/guard.go's recursive type-switch over an
// expression AST (BinaryOp/UnaryOp/Identifier/...), generalized from
// guard expressions to full statements, functions, and contract methods.
package codegen

import "github.com/zinc-lang/zinc/isa"

// BinOp is a binary operator in a semantic-tree expression.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpBitAnd
	OpBitOr
	OpBitXor
	OpAnd
	OpOr
	OpLt
	OpLe
	OpEq
	OpNe
	OpGe
	OpGt
)

// UnOp is a unary operator.
type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
)

// Expr is a semantic-tree expression node. Exactly one field group is
// populated per Kind, mirroring isa.Instruction's own "one opcode, one
// operand shape" discipline.
type Expr struct {
	Kind ExprKind

	// Literal
	Const    int64
	ConstTyp isa.ScalarType

	// Var — a place expression: a local/parameter/storage-field name
	// resolved against the active Context's symbol table.
	Name string

	// Binary / Unary
	Op  BinOp
	UOp UnOp
	L   *Expr
	R   *Expr

	// Index — e[Index], for array and sequence element access. A constant
	// Index lowers to a static Load/Store; anything else is a
	// witness-computed address resolved at run time (see compileIndex).
	Base  *Expr
	Index *Expr

	// Field — e.Field, for struct/tuple member access by name
	Field string

	// Cast
	Target isa.ScalarType

	// Call — a library call (gadget.Call* family) or a user function call
	CallName    string
	Args        []*Expr
	LibCall     bool
	Lib         isa.LibraryID
	ResultCount int // how many values this call pushes (Call sets 1)
}

type ExprKind int

const (
	ExprConst ExprKind = iota
	ExprVar
	ExprBinary
	ExprUnary
	ExprIndex
	ExprFieldAccess
	ExprCast
	ExprCall
	ExprConditionalSelect
)

func Const(v int64, t isa.ScalarType) *Expr { return &Expr{Kind: ExprConst, Const: v, ConstTyp: t} }
func Var(name string) *Expr                 { return &Expr{Kind: ExprVar, Name: name} }
func Binary(op BinOp, l, r *Expr) *Expr      { return &Expr{Kind: ExprBinary, Op: op, L: l, R: r} }
func Unary(op UnOp, v *Expr) *Expr           { return &Expr{Kind: ExprUnary, UOp: op, L: v} }
func IndexOf(base, idx *Expr) *Expr          { return &Expr{Kind: ExprIndex, Base: base, Index: idx} }
func FieldOf(base *Expr, name string) *Expr {
	return &Expr{Kind: ExprFieldAccess, Base: base, Field: name}
}
func Cast(v *Expr, t isa.ScalarType) *Expr { return &Expr{Kind: ExprCast, L: v, Target: t} }
// Call invokes a user function declared elsewhere in the same Circuit or
// Contract, assuming a single scalar result; use CallN for a function
// with zero or more than one result.
func Call(name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, CallName: name, Args: args, ResultCount: 1}
}

func CallN(name string, resultCount int, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, CallName: name, Args: args, ResultCount: resultCount}
}

// LibCall invokes a native library gadget (isa.LibraryID). resultCount
// must match the library's declared output arity exactly (e.g. 0 for
// zksync::transfer, which returns nothing, or N for array::reverse on an
// N-element array) since CallLibrary validates it at dispatch time.
func LibCall(lib isa.LibraryID, resultCount int, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, LibCall: true, Lib: lib, Args: args, ResultCount: resultCount}
}
func Select(cond, a, b *Expr) *Expr {
	return &Expr{Kind: ExprConditionalSelect, L: a, R: b, Index: cond}
}

// MatchCase is one arm of a match statement: Body runs when the subject
// equals Value, or unconditionally when Value is nil (the wildcard/
// default arm — it should be the last case, since match lowering stops
// at the first arm that matches).
type MatchCase struct {
	Value *Expr
	Body  []Stmt
}

// Stmt is a semantic-tree statement node.
type Stmt struct {
	Kind StmtKind

	// Let / Assign
	Target string
	Value  *Expr

	// Assign into an array element: Target[TargetIndex] = Value. Left nil
	// for a plain-name Assign.
	TargetIndex *Expr

	// If / Match. StmtMatch reuses Cond as the match subject and
	// populates Cases instead of Then/Else.
	Cond  *Expr
	Then  []Stmt
	Else  []Stmt
	Cases []MatchCase

	// For — bounded, unrolled at codegen time (§4.5): Count is a
	// compile-time constant, never a witness value.
	LoopVar string
	Count   int
	Body    []Stmt

	// Call (statement form, results discarded) / Return
	Expr    *Expr
	Results []*Expr

	// Assert / Dbg
	Message string
	DbgArgs []*Expr
}

type StmtKind int

const (
	StmtLet StmtKind = iota
	StmtAssign
	StmtIf
	StmtFor
	StmtExprStmt
	StmtReturn
	StmtOutput
	StmtAssert
	StmtDbg
	StmtMatch
)

func Let(name string, v *Expr) Stmt    { return Stmt{Kind: StmtLet, Target: name, Value: v} }
func Assign(name string, v *Expr) Stmt { return Stmt{Kind: StmtAssign, Target: name, Value: v} }

// AssignIndex builds `name[idx] = v`.
func AssignIndex(name string, idx, v *Expr) Stmt {
	return Stmt{Kind: StmtAssign, Target: name, TargetIndex: idx, Value: v}
}
func If(cond *Expr, then, els []Stmt) Stmt {
	return Stmt{Kind: StmtIf, Cond: cond, Then: then, Else: els}
}

// Match builds a match statement over subject with the given cases,
// lowered to a tree of If/Else with equality checks (§4.5).
func Match(subject *Expr, cases []MatchCase) Stmt {
	return Stmt{Kind: StmtMatch, Cond: subject, Cases: cases}
}
func For(loopVar string, count int, body []Stmt) Stmt {
	return Stmt{Kind: StmtFor, LoopVar: loopVar, Count: count, Body: body}
}
func ExprStmt(e *Expr) Stmt { return Stmt{Kind: StmtExprStmt, Expr: e} }
func Return(results ...*Expr) Stmt {
	return Stmt{Kind: StmtReturn, Results: results}
}

// Output emits each result through the Output opcode rather than Return:
// a bare circuit (and a contract method, after its return values) has no
// call frame to unwind, so its results leave the program through the
// witness output vector instead of a Call/Return pair.
func Output(results ...*Expr) Stmt {
	return Stmt{Kind: StmtOutput, Results: results}
}
func Assert(cond *Expr, message string) Stmt {
	return Stmt{Kind: StmtAssert, Cond: cond, Message: message}
}
func Dbg(message string, args ...*Expr) Stmt {
	return Stmt{Kind: StmtDbg, Message: message, DbgArgs: args}
}

// Param is one function/method parameter: a name plus its type, used to
// size and order the memory cells the prologue copies arguments into.
type Param struct {
	Name string
	Type isa.TypeTree
}

// Function is a callable unit lowered to a Call/Return-bracketed label.
type Function struct {
	Name    string
	Params  []Param
	Results []isa.ScalarType
	Body    []Stmt
}

// Method is a contract entry point: like Function, but additionally
// reads/writes the storage tuple per spec.md §4.5's prologue/epilogue.
type Method struct {
	Function
	Mutable bool
}

// Circuit is the semantic tree for a bare circuit program: a sequence of
// input bindings (Generate emits an Input/Store pair per input cell),
// a body, and declared outputs.
type Circuit struct {
	Inputs  []Param
	Outputs []isa.ScalarType
	Body    []Stmt
	// Functions declared alongside main, reachable via Call.
	Functions []Function
}

// Contract is the semantic tree for a stateful contract program.
type Contract struct {
	StorageNames  []string
	StorageFields []isa.TypeTree
	Methods       []Method
	Functions     []Function
}
