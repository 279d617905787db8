package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vela-lang/vela/internal/rast"
	"github.com/vela-lang/vela/internal/token"
)

func at(row, col int, text string) token.Token {
	return token.Token{Text: text, File: &token.File{Path: "gen_test.vl"}, Row: row, Col: col}
}

// checkBlock runs generation and one unifier pass over block, failing
// the test on generation errors and returning the unifier for error
// inspection.
func checkBlock(t *testing.T, gen *Generator, lib *Library, sub *Substitution, block *rast.Block) *Unifier {
	t.Helper()
	require.NoError(t, gen.GenerateBlock(block))
	u := NewUnifier(lib, sub)
	u.Run()
	return u
}

func assign(target rast.LvalueTarget, value rast.Expr, src token.Token) *rast.AssignStmt {
	return &rast.AssignStmt{At: src, Target: target, Value: value}
}

func varTarget(name string, src token.Token) *rast.VariableTarget {
	return &rast.VariableTarget{At: src, Name: name, Handle: name}
}

func varRef(name string, src token.Token) *rast.VariableRef {
	return &rast.VariableRef{At: src, Name: name, Handle: name}
}

func freeRef(name string, src token.Token) *rast.VariableRef {
	return &rast.VariableRef{At: src, Name: name, Handle: nil}
}

func TestGeneratorBinaryOperatorResolvesToOperandType(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			assign(varTarget("x", at(1, 1, "x")), &rast.BinaryExpr{
				At:    at(1, 5, "+"),
				Op:    "+",
				Left:  &rast.IntLiteral{At: at(1, 5, "1"), Value: 1},
				Right: &rast.IntLiteral{At: at(1, 9, "2"), Value: 2},
			}, at(1, 1, "=")),
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Empty(t, u.Errors)

	xVar := gen.variables["x"]
	require.NotNil(t, xVar)
	assert.True(t, Equivalent(sub.Apply(xVar), lib.Double))
}

func TestGeneratorLiteralTypes(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			assign(varTarget("c", at(1, 1, "c")), &rast.CharLiteral{At: at(1, 5, "'hi'"), Value: "hi"}, at(1, 1, "=")),
			assign(varTarget("s", at(2, 1, "s")), &rast.StringLiteral{At: at(2, 5, `"hi"`), Value: "hi"}, at(2, 1, "=")),
			assign(varTarget("n", at(3, 1, "n")), &rast.FloatLiteral{At: at(3, 5, "1.5"), Value: 1.5}, at(3, 1, "=")),
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Empty(t, u.Errors)

	assert.True(t, Equivalent(sub.Apply(gen.variables["c"]), lib.Char))
	assert.True(t, Equivalent(sub.Apply(gen.variables["s"]), lib.String))
	assert.True(t, Equivalent(sub.Apply(gen.variables["n"]), lib.Double))
}

func TestGeneratorRecordFieldReferenceResolvesFieldType(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// p = struct('a', 1, 'b', 'hi'); fieldA = p.a; fieldB = p.b
	block := &rast.Block{
		At: at(3, 1, ""),
		Stmts: []rast.Stmt{
			assign(varTarget("p", at(3, 1, "p")), &rast.RecordExpr{
				At: at(3, 5, "struct"),
				Fields: []rast.RecordFieldExpr{
					{Name: "a", Value: &rast.IntLiteral{At: at(3, 15, "1"), Value: 1}},
					{Name: "b", Value: &rast.CharLiteral{At: at(3, 22, "'hi'"), Value: "hi"}},
				},
			}, at(3, 1, "=")),
			assign(varTarget("fieldA", at(4, 1, "fieldA")), &rast.SubscriptExpr{
				At:        at(4, 10, "p"),
				Principal: varRef("p", at(4, 10, "p")),
				Steps: []rast.SubscriptStep{
					{At: at(4, 11, "."), Method: rast.Period, Args: []rast.Expr{
						&rast.CharLiteral{At: at(4, 12, "a"), Value: "a"},
					}},
				},
			}, at(4, 1, "=")),
			assign(varTarget("fieldB", at(5, 1, "fieldB")), &rast.SubscriptExpr{
				At:        at(5, 10, "p"),
				Principal: varRef("p", at(5, 10, "p")),
				Steps: []rast.SubscriptStep{
					{At: at(5, 11, "."), Method: rast.Period, Args: []rast.Expr{
						&rast.CharLiteral{At: at(5, 12, "b"), Value: "b"},
					}},
				},
			}, at(5, 1, "=")),
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Empty(t, u.Errors)

	assert.True(t, Equivalent(sub.Apply(gen.variables["fieldA"]), lib.Double))
	assert.True(t, Equivalent(sub.Apply(gen.variables["fieldB"]), lib.Char))
}

func TestGeneratorMissingRecordFieldIsReported(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// p = struct('a', 1); p.c
	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			assign(varTarget("p", at(1, 1, "p")), &rast.RecordExpr{
				At: at(1, 5, "struct"),
				Fields: []rast.RecordFieldExpr{
					{Name: "a", Value: &rast.IntLiteral{At: at(1, 15, "1"), Value: 1}},
				},
			}, at(1, 1, "=")),
			&rast.ExprStmt{At: at(2, 1, ""), Value: &rast.SubscriptExpr{
				At:        at(2, 1, "p"),
				Principal: varRef("p", at(2, 1, "p")),
				Steps: []rast.SubscriptStep{
					{At: at(2, 2, "."), Method: rast.Period, Args: []rast.Expr{
						&rast.CharLiteral{At: at(2, 3, "c"), Value: "c"},
					}},
				},
			}},
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Len(t, u.Errors, 1)
	var notFound *NonexistentFieldReferenceError
	require.ErrorAs(t, u.Errors[0], &notFound)
	assert.Equal(t, "c", notFound.Field)
}

func TestGeneratorTupleBraceIndexYieldsElementUnion(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// t = {1, 'x'}; e = t{1}
	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			assign(varTarget("t", at(1, 1, "t")), &rast.TupleExpr{
				At: at(1, 5, "{"),
				Elements: []rast.Expr{
					&rast.IntLiteral{At: at(1, 6, "1"), Value: 1},
					&rast.CharLiteral{At: at(1, 9, "'x'"), Value: "x"},
				},
			}, at(1, 1, "=")),
			assign(varTarget("e", at(2, 1, "e")), &rast.SubscriptExpr{
				At:        at(2, 5, "t"),
				Principal: varRef("t", at(2, 5, "t")),
				Steps: []rast.SubscriptStep{
					{At: at(2, 6, "{"), Method: rast.Brace, Args: []rast.Expr{
						&rast.IntLiteral{At: at(2, 7, "1"), Value: 1},
					}},
				},
			}, at(2, 1, "=")),
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Empty(t, u.Errors)

	e := sub.Apply(gen.variables["e"])
	assert.True(t, Equivalent(e, s.MakeUnion(lib.Double, lib.Char)))
}

func TestGeneratorTupleParensIndexIsInvalidInvocation(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// t = {1, 'x'}; t(1)
	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			assign(varTarget("t", at(1, 1, "t")), &rast.TupleExpr{
				At: at(1, 5, "{"),
				Elements: []rast.Expr{
					&rast.IntLiteral{At: at(1, 6, "1"), Value: 1},
					&rast.CharLiteral{At: at(1, 9, "'x'"), Value: "x"},
				},
			}, at(1, 1, "=")),
			&rast.ExprStmt{At: at(2, 1, ""), Value: &rast.SubscriptExpr{
				At:        at(2, 1, "t"),
				Principal: varRef("t", at(2, 1, "t")),
				Steps: []rast.SubscriptStep{
					{At: at(2, 2, "("), Method: rast.Parens, Args: []rast.Expr{
						&rast.IntLiteral{At: at(2, 3, "1"), Value: 1},
					}},
				},
			}},
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Len(t, u.Errors, 1)
	var invalid *InvalidFunctionInvocationError
	require.ErrorAs(t, u.Errors[0], &invalid)
}

func TestGeneratorNamedFunctionCallResolvesToLocalDeclarationOutput(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// twice(x) = x + x
	decl := &rast.FunctionDecl{
		At:     at(1, 1, "twice"),
		Name:   "twice",
		Handle: "twice-fn",
		Params: []rast.Handle{"x"},
		Body: &rast.BinaryExpr{
			At:    at(1, 15, "+"),
			Op:    "+",
			Left:  varRef("x", at(1, 13, "x")),
			Right: varRef("x", at(1, 17, "x")),
		},
	}
	// y = twice(3)
	call := assign(varTarget("y", at(2, 1, "y")), &rast.SubscriptExpr{
		At:        at(2, 5, "twice"),
		Principal: freeRef("twice", at(2, 5, "twice")),
		Steps: []rast.SubscriptStep{
			{At: at(2, 10, "("), Method: rast.Parens, Args: []rast.Expr{
				&rast.IntLiteral{At: at(2, 11, "3"), Value: 3},
			}},
		},
	}, at(2, 1, "="))

	block := &rast.Block{At: at(1, 1, ""), Stmts: []rast.Stmt{decl, call}}
	u := checkBlock(t, gen, lib, sub, block)
	require.Empty(t, u.Errors)

	yVar := gen.variables["y"]
	require.NotNil(t, yVar)
	assert.True(t, Equivalent(sub.Apply(yVar), lib.Double))

	scheme, ok := gen.functions["twice-fn"].(*Scheme)
	require.True(t, ok, "a local declaration is generalised into a scheme")
	assert.NotEmpty(t, scheme.Constraints, "the body's obligations live in the scheme, not the global worklist")
}

// TestGeneratorAnonymousFunctionAppliedToFunctionArgument runs the §8
// higher-order scenario end to end: g = @(x) x(1); y = g(@sin) with
// sin: (double) -> double infers y: double.
func TestGeneratorAnonymousFunctionAppliedToFunctionArgument(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// sin(a) = a + 1.0  (concretely (double) -> double)
	sinDecl := &rast.FunctionDecl{
		At:     at(1, 1, "sin"),
		Name:   "sin",
		Handle: "sin-fn",
		Params: []rast.Handle{"a"},
		Body: &rast.BinaryExpr{
			At:    at(1, 13, "+"),
			Op:    "+",
			Left:  varRef("a", at(1, 11, "a")),
			Right: &rast.FloatLiteral{At: at(1, 15, "1.0"), Value: 1.0},
		},
	}
	// g = @(x) x(1)
	gDecl := assign(varTarget("g", at(2, 1, "g")), &rast.AnonymousFunction{
		At:     at(2, 5, "@"),
		Params: []rast.Handle{"x"},
		Body: &rast.SubscriptExpr{
			At:        at(2, 10, "x"),
			Principal: varRef("x", at(2, 10, "x")),
			Steps: []rast.SubscriptStep{
				{At: at(2, 11, "("), Method: rast.Parens, Args: []rast.Expr{
					&rast.IntLiteral{At: at(2, 12, "1"), Value: 1},
				}},
			},
		},
	}, at(2, 1, "="))
	// y = g(@sin)
	call := assign(varTarget("y", at(3, 1, "y")), &rast.SubscriptExpr{
		At:        at(3, 5, "g"),
		Principal: varRef("g", at(3, 5, "g")),
		Steps: []rast.SubscriptStep{
			{At: at(3, 6, "("), Method: rast.Parens, Args: []rast.Expr{
				freeRef("sin", at(3, 7, "sin")),
			}},
		},
	}, at(3, 1, "="))

	block := &rast.Block{At: at(1, 1, ""), Stmts: []rast.Stmt{sinDecl, gDecl, call}}
	u := checkBlock(t, gen, lib, sub, block)
	require.Empty(t, u.Errors)

	yVar := gen.variables["y"]
	require.NotNil(t, yVar)
	assert.True(t, Equivalent(sub.Apply(yVar), lib.Double))

	_, isScheme := sub.Apply(gen.variables["g"]).(*Scheme)
	assert.True(t, isScheme, "g stays polymorphic")
}

// TestGeneratorDealDestructuresParameterPack runs the §8 pack scenario:
// [a, b] = deal(1, 'x') infers a: double, b: char.
func TestGeneratorDealDestructuresParameterPack(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			assign(&rast.ListTarget{
				At: at(1, 1, "["),
				Members: []rast.LvalueTarget{
					varTarget("a", at(1, 2, "a")),
					varTarget("b", at(1, 5, "b")),
				},
			}, &rast.SubscriptExpr{
				At:        at(1, 10, "deal"),
				Principal: freeRef("deal", at(1, 10, "deal")),
				Steps: []rast.SubscriptStep{
					{At: at(1, 14, "("), Method: rast.Parens, Args: []rast.Expr{
						&rast.IntLiteral{At: at(1, 15, "1"), Value: 1},
						&rast.CharLiteral{At: at(1, 18, "'x'"), Value: "x"},
					}},
				},
			}, at(1, 1, "=")),
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Empty(t, u.Errors)

	assert.True(t, Equivalent(sub.Apply(gen.variables["a"]), lib.Double))
	assert.True(t, Equivalent(sub.Apply(gen.variables["b"]), lib.Char))
}

func TestGeneratorVariadicTargetAbsorbsRemainder(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// [a, rest...] = deal(1, 'x', 'y')
	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			assign(&rast.ListTarget{
				At: at(1, 1, "["),
				Members: []rast.LvalueTarget{
					varTarget("a", at(1, 2, "a")),
					&rast.VariadicTarget{At: at(1, 5, "rest"), Handle: "rest"},
				},
			}, &rast.SubscriptExpr{
				At:        at(1, 13, "deal"),
				Principal: freeRef("deal", at(1, 13, "deal")),
				Steps: []rast.SubscriptStep{
					{At: at(1, 17, "("), Method: rast.Parens, Args: []rast.Expr{
						&rast.IntLiteral{At: at(1, 18, "1"), Value: 1},
						&rast.CharLiteral{At: at(1, 21, "'x'"), Value: "x"},
						&rast.CharLiteral{At: at(1, 26, "'y'"), Value: "y"},
					}},
				},
			}, at(1, 1, "=")),
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Empty(t, u.Errors)

	assert.True(t, Equivalent(sub.Apply(gen.variables["a"]), lib.Double))
	rest, ok := sub.Apply(gen.variables["rest"]).(*DestructuredTuple)
	require.True(t, ok, "the pack expands to the remaining members")
	require.Len(t, rest.Members, 2)
	assert.True(t, Equivalent(rest.Members[0], lib.Char))
	assert.True(t, Equivalent(rest.Members[1], lib.Char))
}

func TestGeneratorIfConditionMustBeLogical(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// if 1 < 2; x = 1; else; x = 2; end
	good := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			&rast.IfStmt{
				At: at(1, 1, "if"),
				Cond: &rast.BinaryExpr{
					At:    at(1, 4, "<"),
					Op:    "<",
					Left:  &rast.IntLiteral{At: at(1, 4, "1"), Value: 1},
					Right: &rast.IntLiteral{At: at(1, 8, "2"), Value: 2},
				},
				Then: &rast.Block{At: at(2, 1, ""), Stmts: []rast.Stmt{
					assign(varTarget("x", at(2, 1, "x")), &rast.IntLiteral{At: at(2, 5, "1"), Value: 1}, at(2, 1, "=")),
				}},
				Else: &rast.Block{At: at(4, 1, ""), Stmts: []rast.Stmt{
					assign(varTarget("x", at(4, 1, "x")), &rast.IntLiteral{At: at(4, 5, "2"), Value: 2}, at(4, 1, "=")),
				}},
			},
		},
	}
	u := checkBlock(t, gen, lib, sub, good)
	require.Empty(t, u.Errors)
	assert.True(t, Equivalent(sub.Apply(gen.variables["x"]), lib.Double))
}

func TestGeneratorWhileConditionRejectsDouble(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			&rast.WhileStmt{
				At:   at(1, 1, "while"),
				Cond: &rast.IntLiteral{At: at(1, 7, "1"), Value: 1},
				Body: &rast.Block{At: at(2, 1, "")},
			},
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Len(t, u.Errors, 1)
	var failure *SimplificationFailure
	require.ErrorAs(t, u.Errors[0], &failure)
}

func TestGeneratorForLoopBindsElementType(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// for v = [1, 2, 3]; total = v; end
	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			&rast.ForStmt{
				At:      at(1, 1, "for"),
				Var:     "v",
				VarName: "v",
				Iter: &rast.ConcatExpr{
					At: at(1, 9, "["),
					Elements: []rast.Expr{
						&rast.IntLiteral{At: at(1, 10, "1"), Value: 1},
						&rast.IntLiteral{At: at(1, 13, "2"), Value: 2},
						&rast.IntLiteral{At: at(1, 16, "3"), Value: 3},
					},
				},
				Body: &rast.Block{At: at(2, 1, ""), Stmts: []rast.Stmt{
					assign(varTarget("total", at(2, 1, "total")), varRef("v", at(2, 9, "v")), at(2, 1, "=")),
				}},
			},
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Empty(t, u.Errors)
	assert.True(t, Equivalent(sub.Apply(gen.variables["total"]), lib.Double))
}

func TestGeneratorSwitchCasesMatchSubjectType(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// switch 1; case 'x': end — the case literal clashes with the
	// double subject.
	block := &rast.Block{
		At: at(1, 1, ""),
		Stmts: []rast.Stmt{
			&rast.SwitchStmt{
				At:      at(1, 1, "switch"),
				Subject: &rast.IntLiteral{At: at(1, 8, "1"), Value: 1},
				Cases: []rast.SwitchCase{
					{
						Match: &rast.CharLiteral{At: at(2, 6, "'x'"), Value: "x"},
						Body:  &rast.Block{At: at(3, 1, "")},
					},
				},
			},
		},
	}
	u := checkBlock(t, gen, lib, sub, block)
	require.Len(t, u.Errors, 1)
	var failure *SimplificationFailure
	require.ErrorAs(t, u.Errors[0], &failure)
}

func TestGeneratorClassMethodOperatorOverload(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	sub := NewSubstitution()
	gen := NewGenerator(s, lib, sub)

	// classdef Vec with a + overload, then Vec + Vec through the
	// operator surface.
	classDecl := &rast.ClassDecl{
		At:     at(1, 1, "classdef"),
		Name:   "Vec",
		Handle: "Vec-class",
		Fields: []rast.ClassFieldDecl{{Name: "len"}},
		Methods: []rast.ClassMethodDecl{
			{
				At:     at(2, 1, "plus"),
				Kind:   "binary-op",
				Op:     "+",
				Name:   "plus",
				Handle: "Vec-plus",
				Params: []rast.Handle{"self", "other"},
				Body:   varRef("self", at(2, 20, "self")),
			},
		},
	}
	block := &rast.Block{At: at(1, 1, ""), Stmts: []rast.Stmt{classDecl}}
	require.NoError(t, gen.GenerateBlock(block))

	class := gen.classes["Vec-class"]
	require.NotNil(t, class)

	outputs := s.MakeVariable()
	abs := s.MakeCalleeAbstraction(Header{Kind: BinaryOp, Op: "+"})
	app := s.MakeApplication(abs, s.MakeRvalueDestructuredTuple(class, class), outputs)
	sub.Push(Equation{LHS: app, RHS: outputs})

	u := NewUnifier(lib, sub)
	u.Run()
	require.Empty(t, u.Errors)
	assert.True(t, Equivalent(sub.Apply(outputs), class))

	_, ok := lib.Methods.Lookup("Vec", Header{Kind: Function, Name: "plus"})
	assert.True(t, ok, "the overload is also callable by its function name")
}
