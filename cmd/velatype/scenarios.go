package main

import (
	"github.com/vela-lang/vela/internal/rast"
	"github.com/vela-lang/vela/internal/token"
)

// scenarios returns the fixed demonstration set this command checks,
// covering the canonical cases a reader would want to see work: scalar
// arithmetic, a polymorphic anonymous function, record construction,
// brace indexing into a tuple, pack destructuring through deal, and two
// deliberate errors (a missing field, parens applied to a tuple). Each
// is a resolved AST built by hand, since this project checks resolved
// trees rather than parsing source text.
func scenarios() []scenario {
	file := &token.File{Path: "demo.vl"}
	at := func(row, col int, text string) token.Token {
		return token.Token{Text: text, File: file, Row: row, Col: col}
	}

	return []scenario{
		{
			name: "arithmetic",
			block: &rast.Block{
				At: at(1, 1, ""),
				Stmts: []rast.Stmt{
					&rast.AssignStmt{
						At:     at(1, 1, "="),
						Target: &rast.VariableTarget{At: at(1, 1, "x"), Name: "x", Handle: "x"},
						Value: &rast.BinaryExpr{
							At:    at(1, 5, "+"),
							Op:    "+",
							Left:  &rast.IntLiteral{At: at(1, 5, "1"), Value: 1},
							Right: &rast.IntLiteral{At: at(1, 9, "2"), Value: 2},
						},
					},
				},
			},
		},
		{
			name: "polymorphic-apply",
			block: &rast.Block{
				At: at(2, 1, ""),
				Stmts: []rast.Stmt{
					&rast.AssignStmt{
						At:     at(2, 1, "="),
						Target: &rast.VariableTarget{At: at(2, 1, "g"), Name: "g", Handle: "g"},
						Value: &rast.AnonymousFunction{
							At:     at(2, 5, "@"),
							Params: []rast.Handle{"x"},
							Body: &rast.SubscriptExpr{
								At:        at(2, 10, "x"),
								Principal: &rast.VariableRef{At: at(2, 10, "x"), Name: "x", Handle: "x"},
								Steps: []rast.SubscriptStep{
									{At: at(2, 11, "("), Method: rast.Parens, Args: []rast.Expr{
										&rast.IntLiteral{At: at(2, 12, "1"), Value: 1},
									}},
								},
							},
						},
					},
				},
			},
		},
		{
			name: "record-construction",
			block: &rast.Block{
				At: at(3, 1, ""),
				Stmts: []rast.Stmt{
					&rast.AssignStmt{
						At:     at(3, 1, "="),
						Target: &rast.VariableTarget{At: at(3, 1, "p"), Name: "p", Handle: "p"},
						Value: &rast.RecordExpr{
							At: at(3, 5, "struct"),
							Fields: []rast.RecordFieldExpr{
								{Name: "x", Value: &rast.IntLiteral{At: at(3, 15, "1"), Value: 1}},
								{Name: "y", Value: &rast.CharLiteral{At: at(3, 22, "'hi'"), Value: "hi"}},
							},
						},
					},
					&rast.ExprStmt{
						At: at(4, 1, ""),
						Value: &rast.SubscriptExpr{
							At:        at(4, 1, "p"),
							Principal: &rast.VariableRef{At: at(4, 1, "p"), Name: "p", Handle: "p"},
							Steps: []rast.SubscriptStep{
								{At: at(4, 2, "."), Method: rast.Period, Args: []rast.Expr{
									&rast.CharLiteral{At: at(4, 3, "x"), Value: "x"},
								}},
							},
						},
					},
				},
			},
		},
		{
			name: "missing-field",
			block: &rast.Block{
				At: at(5, 1, ""),
				Stmts: []rast.Stmt{
					&rast.AssignStmt{
						At:     at(5, 1, "="),
						Target: &rast.VariableTarget{At: at(5, 1, "p"), Name: "p", Handle: "p"},
						Value: &rast.RecordExpr{
							At: at(5, 5, "struct"),
							Fields: []rast.RecordFieldExpr{
								{Name: "a", Value: &rast.IntLiteral{At: at(5, 15, "1"), Value: 1}},
							},
						},
					},
					&rast.ExprStmt{
						At: at(6, 1, ""),
						Value: &rast.SubscriptExpr{
							At:        at(6, 1, "p"),
							Principal: &rast.VariableRef{At: at(6, 1, "p"), Name: "p", Handle: "p"},
							Steps: []rast.SubscriptStep{
								{At: at(6, 2, "."), Method: rast.Period, Args: []rast.Expr{
									&rast.CharLiteral{At: at(6, 3, "c"), Value: "c"},
								}},
							},
						},
					},
				},
			},
			wantErr: true,
		},
		{
			name: "tuple-brace-index",
			block: &rast.Block{
				At: at(7, 1, ""),
				Stmts: []rast.Stmt{
					&rast.AssignStmt{
						At:     at(7, 1, "="),
						Target: &rast.VariableTarget{At: at(7, 1, "items"), Name: "items", Handle: "items"},
						Value: &rast.TupleExpr{
							At: at(7, 9, "{"),
							Elements: []rast.Expr{
								&rast.IntLiteral{At: at(7, 10, "1"), Value: 1},
								&rast.IntLiteral{At: at(7, 13, "2"), Value: 2},
								&rast.IntLiteral{At: at(7, 16, "3"), Value: 3},
							},
						},
					},
					&rast.AssignStmt{
						At:     at(8, 1, "="),
						Target: &rast.VariableTarget{At: at(8, 1, "first"), Name: "first", Handle: "first"},
						Value: &rast.SubscriptExpr{
							At:        at(8, 9, "items"),
							Principal: &rast.VariableRef{At: at(8, 9, "items"), Name: "items", Handle: "items"},
							Steps: []rast.SubscriptStep{
								{At: at(8, 14, "{"), Method: rast.Brace, Args: []rast.Expr{
									&rast.IntLiteral{At: at(8, 15, "1"), Value: 1},
								}},
							},
						},
					},
				},
			},
		},
		{
			name: "tuple-parens-invalid",
			block: &rast.Block{
				At: at(9, 1, ""),
				Stmts: []rast.Stmt{
					&rast.AssignStmt{
						At:     at(9, 1, "="),
						Target: &rast.VariableTarget{At: at(9, 1, "t"), Name: "t", Handle: "t"},
						Value: &rast.TupleExpr{
							At: at(9, 5, "{"),
							Elements: []rast.Expr{
								&rast.IntLiteral{At: at(9, 6, "1"), Value: 1},
								&rast.CharLiteral{At: at(9, 9, "'x'"), Value: "x"},
							},
						},
					},
					&rast.ExprStmt{
						At: at(10, 1, ""),
						Value: &rast.SubscriptExpr{
							At:        at(10, 1, "t"),
							Principal: &rast.VariableRef{At: at(10, 1, "t"), Name: "t", Handle: "t"},
							Steps: []rast.SubscriptStep{
								{At: at(10, 2, "("), Method: rast.Parens, Args: []rast.Expr{
									&rast.IntLiteral{At: at(10, 3, "1"), Value: 1},
								}},
							},
						},
					},
				},
			},
			wantErr: true,
		},
		{
			name: "deal-destructuring",
			block: &rast.Block{
				At: at(11, 1, ""),
				Stmts: []rast.Stmt{
					&rast.AssignStmt{
						At: at(11, 1, "="),
						Target: &rast.ListTarget{
							At: at(11, 1, "["),
							Members: []rast.LvalueTarget{
								&rast.VariableTarget{At: at(11, 2, "a"), Name: "a", Handle: "a"},
								&rast.VariableTarget{At: at(11, 5, "b"), Name: "b", Handle: "b"},
							},
						},
						Value: &rast.SubscriptExpr{
							At:        at(11, 10, "deal"),
							Principal: &rast.VariableRef{At: at(11, 10, "deal"), Name: "deal", Handle: nil},
							Steps: []rast.SubscriptStep{
								{At: at(11, 14, "("), Method: rast.Parens, Args: []rast.Expr{
									&rast.IntLiteral{At: at(11, 15, "1"), Value: 1},
									&rast.CharLiteral{At: at(11, 18, "'x'"), Value: "x"},
								}},
							},
						},
					},
				},
			},
		},
	}
}
