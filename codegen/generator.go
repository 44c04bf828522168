package codegen

import (
	"github.com/google/uuid"

	"github.com/zinc-lang/zinc/isa"
)

// Generate lowers a bare circuit's semantic tree to a Zinc bytecode
// Program: the prologue reads each declared input through the witness
// vector (isa.OpInput) and stores it into its local cell, the body is
// walked statement by statement, and every value named in an Output
// statement leaves through isa.OpOutput. Sub-functions reachable via
// Call are appended after the entry body, each bracketed by its own
// FunctionMarker so vm.functionLabels can resolve Call(label) sites.
func Generate(c *Circuit) (*isa.Program, error) {
	ctx := newContext()
	ctx.emit(isa.Instruction{Op: isa.OpFunctionMarker, Str: "main"})

	for _, p := range c.Inputs {
		addr := ctx.declare(p.Name, p.Type)
		emitInputLoad(ctx, addr, p.Type.Size())
	}

	for _, s := range c.Body {
		compileStmt(ctx, s)
	}
	// A bare Return past main's last statement halts the invocation so
	// the pc never falls through into the function bodies appended below.
	ctx.emit(isa.Instruction{Op: isa.OpReturn})

	for _, fn := range c.Functions {
		compileFunctionInto(ctx, fn)
	}

	if err := ctx.err(); err != nil {
		return nil, err
	}

	inputType := tupleOf(c.Inputs)
	outputType := scalarTuple(c.Outputs)

	return &isa.Program{
		ID:     uuid.New(),
		Kind:   isa.KindCircuit,
		Input:  inputType,
		Output: outputType,
		Code:   ctx.code,
	}, nil
}

// GenerateContract lowers a stateful contract's semantic tree: every
// method shares one storage layout (the fields declared at addresses
// [0, StorageSize) in every method's Context, so RunMethod's prologue/
// epilogue and the generated Load/Store addresses always agree), gets
// its own FunctionMarker-bracketed body, and its own Method table entry
// recording the entry label, signature, and mutability.
func GenerateContract(c *Contract) (*isa.Program, error) {
	storageType := make([]isa.TypeTree, len(c.StorageFields))
	copy(storageType, c.StorageFields)

	prog := &isa.Program{
		ID: uuid.New(),
		// A contract has no single top-level signature of its own — each
		// method carries its own Input/Output in the Methods table — so
		// the program-level Input/Output are the empty tuple, present
		// only because Encode always serializes them.
		Input:         isa.Tuple(),
		Output:        isa.Tuple(),
		Kind:          isa.KindContract,
		StorageFields: storageType,
		StorageNames:  append([]string(nil), c.StorageNames...),
	}

	var allCode []isa.Instruction
	var errs []error

	for _, method := range c.Methods {
		ctx := newContext()
		ctx.emit(isa.Instruction{Op: isa.OpFunctionMarker, Str: method.Name})

		off := 0
		for i, name := range c.StorageNames {
			ctx.declareAt(name, c.StorageFields[i], off)
			off += c.StorageFields[i].Size()
		}

		for _, p := range method.Params {
			addr := ctx.declare(p.Name, p.Type)
			emitInputLoad(ctx, addr, p.Type.Size())
		}

		for _, s := range method.Body {
			compileStmt(ctx, s)
		}
		// Method bodies are concatenated into one instruction stream; the
		// trailing Return keeps one method's pc from running into the next.
		ctx.emit(isa.Instruction{Op: isa.OpReturn})

		if err := ctx.err(); err != nil {
			errs = append(errs, err)
			continue
		}

		allCode = append(allCode, ctx.code...)
		prog.Methods = append(prog.Methods, isa.Method{
			Name:    method.Name,
			Entry:   method.Name,
			Input:   tupleOf(method.Params),
			Output:  scalarTuple(method.Results),
			Mutable: method.Mutable,
		})
	}

	fnCtx := newContext()
	for _, fn := range c.Functions {
		compileFunctionInto(fnCtx, fn)
	}
	allCode = append(allCode, fnCtx.code...)

	if len(errs) > 0 {
		return nil, errs[0]
	}

	prog.Code = allCode
	return prog, nil
}

// compileFunctionInto appends fn's bracketed body to ctx.code, in a
// fresh frame-local Context of its own (parameters land at addresses
// [0, N) exactly where vm.execCall's storeSequence places Call's
// arguments, so no prologue instructions are needed beyond the bracket).
func compileFunctionInto(outer *Context, fn Function) {
	ctx := newContext()
	ctx.emit(isa.Instruction{Op: isa.OpFunctionMarker, Str: fn.Name})
	for _, p := range fn.Params {
		ctx.declare(p.Name, p.Type)
	}
	for _, s := range fn.Body {
		compileStmt(ctx, s)
	}
	// Backstop for a body whose last statement is not a Return: unwind
	// with zero results rather than running into the next function's code.
	ctx.emit(isa.Instruction{Op: isa.OpReturn})
	if err := ctx.err(); err != nil {
		outer.errs = append(outer.errs, err)
		return
	}
	outer.code = append(outer.code, ctx.code...)
}

func emitInputLoad(ctx *Context, addr, n int) {
	for i := 0; i < n; i++ {
		ctx.emit(isa.Instruction{Op: isa.OpInput})
		ctx.emit(isa.Instruction{Op: isa.OpStore, Addr: addr + i})
	}
}

func tupleOf(params []Param) isa.TypeTree {
	members := make([]isa.TypeTree, len(params))
	names := make([]string, len(params))
	for i, p := range params {
		members[i] = p.Type
		names[i] = p.Name
	}
	return isa.Struct(names, members)
}

func scalarTuple(ts []isa.ScalarType) isa.TypeTree {
	members := make([]isa.TypeTree, len(ts))
	for i, t := range ts {
		members[i] = isa.Leaf(t)
	}
	return isa.Tuple(members...)
}

// storeN emits n Store instructions that consume the n values most
// recently pushed (in push order base..base+n-1), addressing them
// base+n-1 down to base: popping the stack unwinds top-first, which is
// the reverse of push order, so the high address is stored first.
func storeN(ctx *Context, base, n int) {
	for i := n - 1; i >= 0; i-- {
		ctx.emit(isa.Instruction{Op: isa.OpStore, Addr: base + i})
	}
}

// loadN emits n Load instructions in ascending address order, leaving
// the cells on the stack in push order (base deepest, base+n-1 on top) —
// the order Call/Return and CallLibrary expect their operands in.
func loadN(ctx *Context, base, n int) {
	for i := 0; i < n; i++ {
		ctx.emit(isa.Instruction{Op: isa.OpLoad, Addr: base + i})
	}
}

var binOpcode = map[BinOp]isa.Opcode{
	OpAdd:    isa.OpAdd,
	OpSub:    isa.OpSub,
	OpMul:    isa.OpMul,
	OpDiv:    isa.OpDiv,
	OpRem:    isa.OpRem,
	OpBitAnd: isa.OpBitAnd,
	OpBitOr:  isa.OpBitOr,
	OpBitXor: isa.OpBitXor,
	OpAnd:    isa.OpAnd,
	OpOr:     isa.OpOr,
	OpLt:     isa.OpLt,
	OpLe:     isa.OpLe,
	OpEq:     isa.OpEq,
	OpNe:     isa.OpNe,
	OpGe:     isa.OpGe,
	OpGt:     isa.OpGt,
}

func isComparison(op BinOp) bool {
	switch op {
	case OpLt, OpLe, OpEq, OpNe, OpGe, OpGt, OpAnd, OpOr:
		return true
	default:
		return false
	}
}

// compileExpr walks e, appending the instructions that leave its value
// on the stack, and returns the TypeTree of what it pushed (a single
// leaf for every scalar expression; a compound type when e names or
// indexes into a declared array/struct/tuple local).
func compileExpr(ctx *Context, e *Expr) isa.TypeTree {
	switch e.Kind {
	case ExprConst:
		ctx.emit(isa.Instruction{Op: isa.OpPush, Value: isa.FieldFromInt64(e.Const), Type: e.ConstTyp})
		return isa.Leaf(e.ConstTyp)

	case ExprVar:
		addr, t, ok := ctx.lookup(e.Name)
		if !ok {
			ctx.fail("reference to undeclared name %q", e.Name)
			return isa.Leaf(isa.Field())
		}
		loadN(ctx, addr, t.Size())
		return t

	case ExprBinary:
		compileExpr(ctx, e.L)
		compileExpr(ctx, e.R)
		op, ok := binOpcode[e.Op]
		if !ok {
			ctx.fail("unknown binary operator %d", e.Op)
			return isa.Leaf(isa.Field())
		}
		ctx.emit(isa.Instruction{Op: op})
		if isComparison(e.Op) {
			return isa.Leaf(isa.Boolean())
		}
		return compileExprType(ctx, e.L)

	case ExprUnary:
		t := compileExpr(ctx, e.L)
		switch e.UOp {
		case OpNeg:
			ctx.emit(isa.Instruction{Op: isa.OpNeg})
		case OpNot:
			ctx.emit(isa.Instruction{Op: isa.OpNot})
		}
		return t

	case ExprIndex:
		return compileIndex(ctx, e)

	case ExprFieldAccess:
		return compileField(ctx, e)

	case ExprCast:
		compileExpr(ctx, e.L)
		ctx.emit(isa.Instruction{Op: isa.OpCast, Type: e.Target})
		return isa.Leaf(e.Target)

	case ExprCall:
		return compileCall(ctx, e)

	case ExprConditionalSelect:
		compileExpr(ctx, e.Index) // condition
		compileExpr(ctx, e.L)     // a
		t := compileExpr(ctx, e.R) // b
		ctx.emit(isa.Instruction{Op: isa.OpConditionalSelect})
		return t

	default:
		ctx.fail("unknown expression kind %d", e.Kind)
		return isa.Leaf(isa.Field())
	}
}

// compileExprType returns the TypeTree a previously-compiled expression
// produced, without re-emitting any instructions — used when an
// operator's result type should mirror one of its already-compiled
// operands (e.g. Add's result type matches its left operand's type).
func compileExprType(ctx *Context, e *Expr) isa.TypeTree {
	switch e.Kind {
	case ExprConst:
		return isa.Leaf(e.ConstTyp)
	case ExprVar:
		if _, t, ok := ctx.lookup(e.Name); ok {
			return t
		}
	case ExprCast:
		return isa.Leaf(e.Target)
	}
	return isa.Leaf(isa.Field())
}

// compileIndex resolves e[Index]. A constant index lowers to a single
// static Load at a compile-time-known address; anything else lowers to
// isa.OpLoadByIndex over a Field-typed address computed at run time
// (see emitDynamicAddr), which vm.resolveAddr reads off the stack.
func compileIndex(ctx *Context, e *Expr) isa.TypeTree {
	if e.Base.Kind != ExprVar {
		ctx.fail("index base must be a local name")
		return isa.Leaf(isa.Field())
	}
	base, t, ok := ctx.lookup(e.Base.Name)
	if !ok {
		ctx.fail("reference to undeclared name %q", e.Base.Name)
		return isa.Leaf(isa.Field())
	}
	elem, ok := elemType(t)
	if !ok {
		ctx.fail("%q is not an array", e.Base.Name)
		return isa.Leaf(isa.Field())
	}
	if e.Index.Kind == ExprConst {
		idx := int(e.Index.Const)
		addr := base + idx*elem.Size()
		loadN(ctx, addr, elem.Size())
		return elem
	}
	if !emitDynamicAddr(ctx, base, elem, e.Index, e.Base.Name) {
		return elem
	}
	ctx.emit(isa.Instruction{Op: isa.OpLoadByIndex})
	return elem
}

// emitDynamicAddr pushes the Field-typed absolute address of the cell at
// base+idx*elem.Size(): idx is cast to Field so gadget.Add's sameType
// check accepts it against the Field-typed base constant. OpLoadByIndex/
// OpStoreByIndex read a single scalar cell off the stack (vm.resolveAddr),
// so only a single-cell element type can be addressed this way; a
// multi-cell element (an array of structs, say) would need the VM to walk
// a sequence from a dynamic base, which it does not do.
func emitDynamicAddr(ctx *Context, base int, elem isa.TypeTree, idx *Expr, name string) bool {
	if elem.Size() != 1 {
		ctx.fail("dynamic index into %q requires a single-cell element type", name)
		return false
	}
	compileExpr(ctx, idx)
	ctx.emit(isa.Instruction{Op: isa.OpCast, Type: isa.Field()})
	ctx.emit(isa.Instruction{Op: isa.OpPush, Value: isa.FieldFromInt64(int64(base)), Type: isa.Field()})
	ctx.emit(isa.Instruction{Op: isa.OpAdd})
	return true
}

// compileIndexStore lowers `name[idx] = value`. The value is compiled and
// pushed before the address, matching execStoreByIndex's stack contract.
func compileIndexStore(ctx *Context, s Stmt) {
	base, t, ok := ctx.lookup(s.Target)
	if !ok {
		ctx.fail("assignment to undeclared name %q", s.Target)
		return
	}
	elem, ok := elemType(t)
	if !ok {
		ctx.fail("%q is not an array", s.Target)
		return
	}
	compileExpr(ctx, s.Value)
	if s.TargetIndex.Kind == ExprConst {
		idx := int(s.TargetIndex.Const)
		storeN(ctx, base+idx*elem.Size(), elem.Size())
		return
	}
	if !emitDynamicAddr(ctx, base, elem, s.TargetIndex, s.Target) {
		return
	}
	ctx.emit(isa.Instruction{Op: isa.OpStoreByIndex})
}

// compileField resolves e.Field on a declared struct local to a static
// Load of its member cells.
func compileField(ctx *Context, e *Expr) isa.TypeTree {
	if e.Base.Kind != ExprVar {
		ctx.fail("field access base must be a local name")
		return isa.Leaf(isa.Field())
	}
	base, t, ok := ctx.lookup(e.Base.Name)
	if !ok {
		ctx.fail("reference to undeclared name %q", e.Base.Name)
		return isa.Leaf(isa.Field())
	}
	off, ft, ok := fieldOffset(t, e.Field)
	if !ok {
		ctx.fail("%q has no field %q", e.Base.Name, e.Field)
		return isa.Leaf(isa.Field())
	}
	loadN(ctx, base+off, ft.Size())
	return ft
}

// compileCall lowers a native library call or a user function call.
// Every argument is compiled in order and its cells pushed flat, so the
// callee (CallLibrary's dispatcher, or a Call frame) sees exactly the
// concatenation of its arguments' cells, matching vm's N-counted pop.
func compileCall(ctx *Context, e *Expr) isa.TypeTree {
	total := 0
	for _, a := range e.Args {
		t := compileExpr(ctx, a)
		total += t.Size()
	}
	outCount := e.ResultCount
	if e.LibCall {
		ctx.emit(isa.Instruction{Op: isa.OpCallLibrary, Lib: e.Lib, N: total, ArgCount: outCount})
	} else {
		ctx.emit(isa.Instruction{Op: isa.OpCall, Label: e.CallName, N: total})
	}
	if outCount == 1 {
		return isa.Leaf(isa.Field())
	}
	members := make([]isa.TypeTree, outCount)
	for i := range members {
		members[i] = isa.Leaf(isa.Field())
	}
	return isa.Tuple(members...)
}

// compileStmt lowers one statement, appending its instructions to ctx.
func compileStmt(ctx *Context, s Stmt) {
	switch s.Kind {
	case StmtLet:
		t := compileExpr(ctx, s.Value)
		addr := ctx.declare(s.Target, t)
		storeN(ctx, addr, t.Size())

	case StmtAssign:
		addr, t, ok := ctx.lookup(s.Target)
		if !ok {
			ctx.fail("assignment to undeclared name %q", s.Target)
			return
		}
		compileExpr(ctx, s.Value)
		storeN(ctx, addr, t.Size())

	case StmtIf:
		compileExpr(ctx, s.Cond)
		ctx.emit(isa.Instruction{Op: isa.OpIf})
		for _, inner := range s.Then {
			compileStmt(ctx, inner)
		}
		if s.Else != nil {
			ctx.emit(isa.Instruction{Op: isa.OpElse})
			for _, inner := range s.Else {
				compileStmt(ctx, inner)
			}
		}
		ctx.emit(isa.Instruction{Op: isa.OpEndIf})

	case StmtFor:
		compileFor(ctx, s)

	case StmtMatch:
		compileMatch(ctx, s.Cond, s.Cases)

	case StmtExprStmt:
		t := compileExpr(ctx, s.Expr)
		if n := t.Size(); n > 0 {
			ctx.emit(isa.Instruction{Op: isa.OpPop, N: n})
		}

	case StmtReturn:
		total := 0
		for _, r := range s.Results {
			t := compileExpr(ctx, r)
			total += t.Size()
		}
		ctx.emit(isa.Instruction{Op: isa.OpReturn, N: total})

	case StmtOutput:
		for _, r := range s.Results {
			compileExpr(ctx, r)
			ctx.emit(isa.Instruction{Op: isa.OpOutput})
		}

	case StmtAssert:
		compileExpr(ctx, s.Cond)
		ctx.emit(isa.Instruction{Op: isa.OpAssert, Str: s.Message})

	case StmtDbg:
		for _, a := range s.DbgArgs {
			compileExpr(ctx, a)
		}
		ctx.emit(isa.Instruction{Op: isa.OpDbg, Str: s.Message, ArgCount: len(s.DbgArgs)})

	default:
		ctx.fail("unknown statement kind %d", s.Kind)
	}
}

// compileMatch lowers a match statement to a tree of If/Else with
// equality checks (§4.5): each arm compares the subject against its
// Value, runs its body under the resulting condition, and chains the
// remaining arms into the Else branch. A nil Value is the wildcard arm
// and compiles unconditionally, terminating the chain.
func compileMatch(ctx *Context, subject *Expr, cases []MatchCase) {
	if len(cases) == 0 {
		return
	}
	arm := cases[0]
	if arm.Value == nil {
		for _, inner := range arm.Body {
			compileStmt(ctx, inner)
		}
		return
	}
	compileExpr(ctx, subject)
	compileExpr(ctx, arm.Value)
	ctx.emit(isa.Instruction{Op: isa.OpEq})
	ctx.emit(isa.Instruction{Op: isa.OpIf})
	for _, inner := range arm.Body {
		compileStmt(ctx, inner)
	}
	if len(cases) > 1 {
		ctx.emit(isa.Instruction{Op: isa.OpElse})
		compileMatch(ctx, subject, cases[1:])
	}
	ctx.emit(isa.Instruction{Op: isa.OpEndIf})
}

// compileFor unrolls a bounded loop entirely at codegen time (§4.5): the
// loop variable becomes an ordinary local re-written with the literal
// iteration index before each copy of the body, so the resulting
// bytecode (and therefore the constraint count) grows by one copy of the
// body plus that Push/Store per iteration, with no witness-dependent
// branching.
func compileFor(ctx *Context, s Stmt) {
	if s.Count < 0 {
		ctx.fail("for-loop count must be non-negative, got %d", s.Count)
		return
	}
	addr := ctx.declare(s.LoopVar, isa.Leaf(isa.U(32)))
	ctx.emit(isa.Instruction{Op: isa.OpLoopBegin, N: s.Count})
	for i := 0; i < s.Count; i++ {
		ctx.emit(isa.Instruction{Op: isa.OpPush, Value: isa.FieldFromInt64(int64(i)), Type: isa.U(32)})
		ctx.emit(isa.Instruction{Op: isa.OpStore, Addr: addr})
		for _, inner := range s.Body {
			compileStmt(ctx, inner)
		}
	}
	ctx.emit(isa.Instruction{Op: isa.OpLoopEnd})
}
