package types

import (
	"fmt"

	"github.com/vela-lang/vela/internal/rast"
	"github.com/vela-lang/vela/internal/token"
)

// constraintRepository captures the fresh variables and equations
// generated inside a polymorphic scope (§4.3): when the scope closes,
// both are stored in the definition's Scheme instead of being pushed
// globally, so each call site re-checks the body against its own fresh
// instantiation.
type constraintRepository struct {
	variables   []Term
	constraints []Equation
}

// Generator walks a resolved AST and emits the constraint equations
// the Unifier will solve (§4.3). It owns the small amount of
// by-declaration bookkeeping a single compilation unit needs: each
// local variable/function/class handle's type, looked up first before
// falling back to the Library's built-ins. Grounded on the teacher's
// constraint-emitting walk in typechecker_functions.go /
// typechecker_operators.go, restructured around rast.Handle instead of
// AILANG's symbol-table scopes.
type Generator struct {
	store *Store
	lib   *Library
	sub   *Substitution

	variables map[rast.Handle]Term
	functions map[rast.Handle]Term
	classes   map[rast.Handle]*Class

	repos []*constraintRepository
	class *Class // enclosing class definition, when walking its methods
}

// NewGenerator creates a Generator over store/lib, pushing its equations
// into sub.
func NewGenerator(store *Store, lib *Library, sub *Substitution) *Generator {
	return &Generator{
		store:     store,
		lib:       lib,
		sub:       sub,
		variables: make(map[rast.Handle]Term),
		functions: make(map[rast.Handle]Term),
		classes:   make(map[rast.Handle]*Class),
	}
}

// emit routes an equation into the innermost open repository, or to the
// global worklist when no polymorphic scope is active.
func (g *Generator) emit(eq Equation) {
	if n := len(g.repos); n > 0 {
		r := g.repos[n-1]
		r.constraints = append(r.constraints, eq)
		return
	}
	g.sub.Push(eq)
}

// fresh allocates a Variable, recording it as a scheme parameter of the
// innermost open repository.
func (g *Generator) fresh() *Variable {
	v := g.store.MakeVariable()
	if n := len(g.repos); n > 0 {
		r := g.repos[n-1]
		r.variables = append(r.variables, v)
	}
	return v
}

// freshPack is fresh for Parameters pack variables (varargin/varargout).
func (g *Generator) freshPack() *Parameters {
	p := g.store.MakeParameters()
	if n := len(g.repos); n > 0 {
		r := g.repos[n-1]
		r.variables = append(r.variables, p)
	}
	return p
}

// bindVariable records a declaration handle's type both for this walk
// and in the library's local-variable table, so collaborators (the
// driver, a diagnostics host) can look bindings up after generation.
func (g *Generator) bindVariable(handle rast.Handle, t Term) {
	g.variables[handle] = t
	g.lib.LocalVariableTypes[handle] = t
}

func (g *Generator) pushRepo() *constraintRepository {
	r := &constraintRepository{}
	g.repos = append(g.repos, r)
	return r
}

func (g *Generator) popRepo() {
	g.repos = g.repos[:len(g.repos)-1]
}

// GenerateBlock walks every statement of block, in order.
func (g *Generator) GenerateBlock(block *rast.Block) error {
	for _, stmt := range block.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genStmt(stmt rast.Stmt) error {
	switch s := stmt.(type) {
	case *rast.ExprStmt:
		_, err := g.genExpr(s.Value)
		return err

	case *rast.AssignStmt:
		// The value is visited first (as an rvalue), then the target
		// (as an lvalue); the obligation itself is an Assignment term
		// so the unifier applies the rhs-subtype-of-lhs rule rather
		// than bare equivalence.
		rhs, err := g.genExpr(s.Value)
		if err != nil {
			return err
		}
		lhs, err := g.genLvalue(s.Target)
		if err != nil {
			return err
		}
		result := g.fresh()
		g.emit(Equation{LHS: result, RHS: g.store.MakeAssignment(lhs, rhs), Source: stmt.Pos()})
		return nil

	case *rast.IfStmt:
		if err := g.genCondition(s.Cond); err != nil {
			return err
		}
		if err := g.GenerateBlock(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return g.GenerateBlock(s.Else)
		}
		return nil

	case *rast.WhileStmt:
		if err := g.genCondition(s.Cond); err != nil {
			return err
		}
		return g.GenerateBlock(s.Body)

	case *rast.ForStmt:
		// The loop variable holds one element of the iterated
		// expression, so the iterated type must be a list of it.
		iter, err := g.genExpr(s.Iter)
		if err != nil {
			return err
		}
		elem := g.fresh()
		g.emit(Equation{LHS: iter, RHS: g.store.MakeList(elem), Source: s.Iter.Pos()})
		g.bindVariable(s.Var, elem)
		return g.GenerateBlock(s.Body)

	case *rast.SwitchStmt:
		subject, err := g.genExpr(s.Subject)
		if err != nil {
			return err
		}
		for _, c := range s.Cases {
			match, err := g.genExpr(c.Match)
			if err != nil {
				return err
			}
			g.emit(Equation{LHS: match, RHS: subject, Source: c.Match.Pos()})
			if err := g.GenerateBlock(c.Body); err != nil {
				return err
			}
		}
		if s.Default != nil {
			return g.GenerateBlock(s.Default)
		}
		return nil

	case *rast.FunctionDecl:
		return g.genFunctionDecl(s)

	case *rast.ClassDecl:
		return g.genClassDecl(s)

	default:
		return fmt.Errorf("types: generator: unhandled statement %T", stmt)
	}
}

func (g *Generator) genCondition(cond rast.Expr) error {
	t, err := g.genExpr(cond)
	if err != nil {
		return err
	}
	g.emit(Equation{LHS: t, RHS: g.lib.Logical, Source: cond.Pos()})
	return nil
}

// genLvalue produces the type an assignment's left side requires, with
// Lvalue usage on any destructured list so the unifier applies the
// lvalue-side flattening rules.
func (g *Generator) genLvalue(target rast.LvalueTarget) (Term, error) {
	switch t := target.(type) {
	case *rast.VariableTarget:
		if existing, ok := g.variables[t.Handle]; ok {
			return existing, nil
		}
		v := g.fresh()
		g.bindVariable(t.Handle, v)
		return v, nil

	case *rast.ListTarget:
		var members []Term
		for _, m := range t.Members {
			mt, err := g.genLvalue(m)
			if err != nil {
				return nil, err
			}
			members = append(members, mt)
		}
		return g.store.MakeDestructuredTuple(Lvalue, members...), nil

	case *rast.VariadicTarget:
		if existing, ok := g.variables[t.Handle]; ok {
			return existing, nil
		}
		pack := g.freshPack()
		g.bindVariable(t.Handle, pack)
		return pack, nil

	case *rast.SubscriptTarget:
		principal, err := g.genExpr(t.Principal)
		if err != nil {
			return nil, err
		}
		steps, err := g.genSteps(t.Steps)
		if err != nil {
			return nil, err
		}
		outputs := g.fresh()
		sub := g.store.MakeSubscript(principal, steps, outputs)
		g.emit(Equation{LHS: sub, RHS: outputs, Source: target.Pos()})
		return outputs, nil

	default:
		return nil, fmt.Errorf("types: generator: unhandled lvalue %T", target)
	}
}

func (g *Generator) genSteps(steps []rast.SubscriptStep) ([]SubscriptStep, error) {
	out := make([]SubscriptStep, len(steps))
	for i, s := range steps {
		var args []Term
		for _, a := range s.Args {
			// A `.` step's argument names a field; it is never evaluated
			// as an expression, so a bare char/string literal becomes
			// the ConstantValue the field-reference handler expects.
			if s.Method == rast.Period {
				switch lit := a.(type) {
				case *rast.CharLiteral:
					args = append(args, g.store.MakeConstantValueName(lit.Value))
					continue
				case *rast.StringLiteral:
					args = append(args, g.store.MakeConstantValueName(lit.Value))
					continue
				}
			}
			// A literal index (a(1), a{2}) carries its value so record
			// field keys built from it stay constant; the leaf relation
			// lets it stand wherever a double is expected.
			if s.Method == rast.Parens || s.Method == rast.Brace {
				if lit, ok := a.(*rast.IntLiteral); ok {
					args = append(args, g.store.MakeConstantValueInt(lit.Value))
					continue
				}
			}
			at, err := g.genExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, at)
		}
		out[i] = SubscriptStep{Method: SubscriptMethod(s.Method), Args: args}
	}
	return out, nil
}

func (g *Generator) genExpr(expr rast.Expr) (Term, error) {
	switch e := expr.(type) {
	case *rast.IntLiteral:
		return g.lib.Double, nil

	case *rast.FloatLiteral:
		return g.lib.Double, nil

	case *rast.CharLiteral:
		return g.lib.Char, nil

	case *rast.StringLiteral:
		return g.lib.String, nil

	case *rast.FieldConstant:
		return g.store.MakeConstantValueName(e.Name), nil

	case *rast.VariableRef:
		if t, ok := g.variables[e.Handle]; ok {
			return t, nil
		}
		if t, ok := g.functions[e.Handle]; ok {
			return instantiate(g.store, g.emit, t), nil
		}
		// A nil Handle names a free function referenced bare (e.g. `true`,
		// with no call parens): resolve it via search_function and, if it
		// turns out to be a zero-input function (a nullary constant like
		// true/false), auto-apply it so the reference's type is the
		// function's output rather than its own function type.
		if e.Handle == nil {
			header := Header{Kind: Function, Name: e.Name}
			if t, ok := g.lib.SearchFunction(header, nil, nil); ok {
				resolved := instantiate(g.store, g.emit, t)
				if abs, ok := resolved.(*Abstraction); ok {
					if dt, ok := abs.Inputs.(*DestructuredTuple); ok && len(dt.Members) == 0 {
						outputs := g.fresh()
						app := g.store.MakeApplication(abs, g.store.MakeRvalueDestructuredTuple(), outputs)
						g.emit(Equation{LHS: app, RHS: outputs, Source: e.At})
						return outputs, nil
					}
				}
				return resolved, nil
			}
		}
		v := g.fresh()
		g.bindVariable(e.Handle, v)
		return v, nil

	case *rast.UnaryExpr:
		return g.genOperator(Header{Kind: UnaryOp, Op: e.Op}, []rast.Expr{e.Operand}, e.At)

	case *rast.BinaryExpr:
		return g.genOperator(Header{Kind: BinaryOp, Op: e.Op}, []rast.Expr{e.Left, e.Right}, e.At)

	case *rast.GroupExpr:
		// Parens grouping in rvalue position is an rvalue DT of its
		// components; it flattens away against any peer tuple.
		var members []Term
		for _, el := range e.Elements {
			t, err := g.genExpr(el)
			if err != nil {
				return nil, err
			}
			members = append(members, t)
		}
		return g.store.MakeRvalueDestructuredTuple(members...), nil

	case *rast.TupleExpr:
		// Brace grouping builds a Tuple around a List of the grouped
		// components, so brace indexing later yields the element type.
		var members []Term
		for _, el := range e.Elements {
			t, err := g.genExpr(el)
			if err != nil {
				return nil, err
			}
			members = append(members, t)
		}
		return g.store.MakeTuple(g.store.MakeList(members...)), nil

	case *rast.ConcatExpr:
		// Brackets in rvalue position concatenate: the components flow
		// through a concatenation abstraction resolved like any call.
		var members []Term
		for _, el := range e.Elements {
			t, err := g.genExpr(el)
			if err != nil {
				return nil, err
			}
			members = append(members, t)
		}
		header := Header{Kind: Concatenation}
		abs := g.store.MakeCalleeAbstraction(header)
		outputs := g.fresh()
		app := g.store.MakeApplication(abs, g.store.MakeRvalueDestructuredTuple(members...), outputs)
		g.emit(Equation{LHS: app, RHS: outputs, Source: e.At})
		return outputs, nil

	case *rast.RecordExpr:
		var fields []RecordField
		for _, f := range e.Fields {
			t, err := g.genExpr(f.Value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, RecordField{Name: g.store.MakeConstantValueName(f.Name), Type: t})
		}
		return g.store.MakeRecord(fields...), nil

	case *rast.AnonymousFunction:
		return g.genAnonymousFunction(e)

	case *rast.SubscriptExpr:
		// A Parens step against an otherwise-unbound name is a function
		// call, not an indexing operation: the callee resolves by name
		// against the library/local functions (search_function), rather
		// than by the subscript handler's structural rules. A VariableRef
		// with a nil Handle is exactly that: a name the resolver left for
		// the checker to resolve as a free function.
		if ref, ok := e.Principal.(*rast.VariableRef); ok && ref.Handle == nil && len(e.Steps) >= 1 && e.Steps[0].Method == rast.Parens {
			return g.genFunctionCall(ref.Name, e.Steps[0], e.Steps[1:], e.At)
		}

		principal, err := g.genExpr(e.Principal)
		if err != nil {
			return nil, err
		}
		steps, err := g.genSteps(e.Steps)
		if err != nil {
			return nil, err
		}
		outputs := g.fresh()
		sub := g.store.MakeSubscript(principal, steps, outputs)
		g.emit(Equation{LHS: sub, RHS: outputs, Source: e.At})
		return outputs, nil

	default:
		return nil, fmt.Errorf("types: generator: unhandled expression %T", expr)
	}
}

// genOperator emits `L op R` as an Application against a header-only
// callee placeholder: the unifier dispatches it through the method
// store once an operand's class is known.
func (g *Generator) genOperator(header Header, operands []rast.Expr, at token.Token) (Term, error) {
	var args []Term
	for _, o := range operands {
		t, err := g.genExpr(o)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	outputs := g.fresh()
	abs := g.store.MakeCalleeAbstraction(header)
	app := g.store.MakeApplication(abs, g.store.MakeRvalueDestructuredTuple(args...), outputs)
	g.emit(Equation{LHS: app, RHS: outputs, Source: at})
	return outputs, nil
}

// genFunctionCall emits name(first.Args)[rest...] as an Application
// against a by-name callee placeholder, then threads any trailing
// subscript steps (e.g. `f(x).field`) off the call's result.
func (g *Generator) genFunctionCall(name string, first rast.SubscriptStep, rest []rast.SubscriptStep, at token.Token) (Term, error) {
	var args []Term
	for _, a := range first.Args {
		t, err := g.genExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	header := Header{Kind: Function, Name: name}
	abs := g.store.MakeCalleeAbstraction(header)
	outputs := g.fresh()
	app := g.store.MakeApplication(abs, g.store.MakeRvalueDestructuredTuple(args...), outputs)
	g.emit(Equation{LHS: app, RHS: outputs, Source: at})

	if len(rest) == 0 {
		return outputs, nil
	}
	steps, err := g.genSteps(rest)
	if err != nil {
		return nil, err
	}
	chained := g.fresh()
	sub := g.store.MakeSubscript(outputs, steps, chained)
	g.emit(Equation{LHS: sub, RHS: chained, Source: at})
	return chained, nil
}

// genAnonymousFunction wraps `@(params) body` in a Scheme: the body's
// equations and every variable introduced while walking it are captured
// into the scheme rather than the global worklist, so each application
// site re-checks the body with fresh variables (§4.3's repository
// mechanism).
func (g *Generator) genAnonymousFunction(e *rast.AnonymousFunction) (Term, error) {
	repo := g.pushRepo()
	inputs, bodyType, err := g.genFunctionShape(e.Params, false, e.Body)
	g.popRepo()
	if err != nil {
		return nil, err
	}
	header := Header{Kind: AnonymousFunction}
	abs := g.store.MakeAbstraction(header,
		g.store.MakeInputDestructuredTuple(inputs...),
		g.store.MakeOutputDestructuredTuple(bodyType))
	return g.store.MakeScheme(abs, repo.variables, repo.constraints), nil
}

// genFunctionShape binds params to fresh variables (the last one a
// Parameters pack when variadic), walks body, and returns the input
// member list and the body's type.
func (g *Generator) genFunctionShape(params []rast.Handle, variadic bool, body rast.Expr) ([]Term, Term, error) {
	var inputs []Term
	for i, p := range params {
		if variadic && i == len(params)-1 {
			pack := g.freshPack()
			g.bindVariable(p, pack)
			inputs = append(inputs, pack)
			continue
		}
		v := g.fresh()
		g.bindVariable(p, v)
		inputs = append(inputs, v)
	}
	bodyType, err := g.genExpr(body)
	if err != nil {
		return nil, nil, err
	}
	return inputs, bodyType, nil
}

func (g *Generator) genFunctionDecl(decl *rast.FunctionDecl) error {
	repo := g.pushRepo()
	inputs, bodyType, err := g.genFunctionShape(decl.Params, decl.Variadic, decl.Body)
	g.popRepo()
	if err != nil {
		return err
	}
	header := Header{Kind: Function, Name: decl.Name}
	abs := g.store.MakeAbstraction(header,
		g.store.MakeInputDestructuredTuple(inputs...),
		g.store.MakeOutputDestructuredTuple(bodyType))
	abs.Ref = decl.Handle
	scheme := g.store.MakeScheme(abs, repo.variables, repo.constraints)
	g.functions[decl.Handle] = scheme
	g.lib.LocalFunctionTypes[decl.Handle] = scheme
	g.lib.FunctionTypes[header] = scheme
	return nil
}

func (g *Generator) genClassDecl(decl *rast.ClassDecl) error {
	var fields []RecordField
	for _, f := range decl.Fields {
		fields = append(fields, RecordField{Name: g.store.MakeConstantValueName(f.Name), Type: g.fresh()})
	}
	record := g.store.MakeRecord(fields...)

	var supers []Term
	for _, s := range decl.Supertypes {
		if sup, ok := g.classes[s]; ok {
			supers = append(supers, sup)
		}
	}
	class := g.store.MakeClass(decl.Name, record, supers...)
	g.classes[decl.Handle] = class
	g.lib.LocalClassTypes[decl.Handle] = class
	g.lib.RegisterClassWrapper(record, class)

	prevClass := g.class
	g.class = class
	defer func() { g.class = prevClass }()

	for _, m := range decl.Methods {
		if err := g.genClassMethod(class, decl.Name, m); err != nil {
			return err
		}
	}
	return nil
}

// genClassMethod generates one method's Scheme and registers it in the
// method store; an operator overload with a function name is registered
// under both headers so calls via either surface resolve consistently.
func (g *Generator) genClassMethod(class *Class, className string, m rast.ClassMethodDecl) error {
	repo := g.pushRepo()
	inputs, bodyType, err := g.genFunctionShape(m.Params, false, m.Body)
	if err != nil {
		g.popRepo()
		return err
	}
	// The receiver slot is the enclosing class.
	if len(inputs) > 0 {
		g.emit(Equation{LHS: inputs[0], RHS: class, Source: m.At})
	}
	g.popRepo()

	header := Header{Name: m.Name, Op: m.Op}
	switch m.Kind {
	case "unary-op":
		header.Kind = UnaryOp
		header.Name = ""
	case "binary-op":
		header.Kind = BinaryOp
		header.Name = ""
	case "subscript-ref":
		header.Kind = SubscriptRef
		header.Direction = SubscriptMethod(m.Direction)
	default:
		header.Kind = Function
	}
	abs := g.store.MakeAbstraction(header,
		g.store.MakeInputDestructuredTuple(inputs...),
		g.store.MakeOutputDestructuredTuple(bodyType))
	scheme := g.store.MakeScheme(abs, repo.variables, repo.constraints)
	if err := g.lib.Methods.Add(className, header, scheme); err != nil {
		return fmt.Errorf("types: class %s: %w", className, err)
	}
	if (header.Kind == UnaryOp || header.Kind == BinaryOp) && m.Name != "" {
		named := Header{Kind: Function, Name: m.Name}
		if err := g.lib.Methods.Add(className, named, scheme); err != nil {
			return fmt.Errorf("types: class %s: %w", className, err)
		}
	}
	return nil
}
