package types

import (
	"fmt"

	"github.com/vela-lang/vela/internal/token"
)

// The checker reports exactly these error kinds (§7); each is its own
// struct implementing error so callers (internal/diag) can type-switch
// on the concrete kind rather than parse messages. Each also implements
// Position() so a renderer can locate it without that type switch.

// Positioned is implemented by every checker error.
type Positioned interface {
	Position() token.Token
}

// SimplificationFailure is raised when the Simplifier reduces an
// equation to two terms that no relation can reconcile: different tags
// (e.g. a Scalar against a Record) or same-tag terms that do not relate
// (e.g. double against char).
type SimplificationFailure struct {
	LHS, RHS Term
	At       token.Token
}

func (e *SimplificationFailure) Error() string {
	return fmt.Sprintf("%s: cannot unify %s with %s", e.At, e.LHS, e.RHS)
}
func (e *SimplificationFailure) Position() token.Token { return e.At }

// OccursCheckFailure is raised when a Variable would have to bind to a
// term containing itself.
type OccursCheckFailure struct {
	Var Term
	In  Term
	At  token.Token
}

func (e *OccursCheckFailure) Error() string {
	return fmt.Sprintf("%s: %s occurs in %s", e.At, e.Var, e.In)
}
func (e *OccursCheckFailure) Position() token.Token { return e.At }

// UnresolvedFunctionError is raised when search_function and the search
// path both miss: nothing defines the named function anywhere reachable.
type UnresolvedFunctionError struct {
	Header Header
	At     token.Token
}

func (e *UnresolvedFunctionError) Error() string {
	return fmt.Sprintf("%s: unresolved function %s", e.At, e.Header)
}
func (e *UnresolvedFunctionError) Position() token.Token { return e.At }

// InvalidFunctionInvocationError is raised when the principal of an
// Application is not, and cannot become, an Abstraction (e.g. calling a
// Scalar).
type InvalidFunctionInvocationError struct {
	Principal Term
	At        token.Token
}

func (e *InvalidFunctionInvocationError) Error() string {
	return fmt.Sprintf("%s: %s is not callable", e.At, e.Principal)
}
func (e *InvalidFunctionInvocationError) Position() token.Token { return e.At }

// NonConstantFieldReferenceExprError is raised when a `.` subscript's
// argument is not a ConstantValue (the field name must be known at
// check time, even though the checker never evaluates anything).
type NonConstantFieldReferenceExprError struct {
	Arg Term
	At  token.Token
}

func (e *NonConstantFieldReferenceExprError) Error() string {
	return fmt.Sprintf("%s: field reference %s is not a constant", e.At, e.Arg)
}
func (e *NonConstantFieldReferenceExprError) Position() token.Token { return e.At }

// NonexistentFieldReferenceError is raised when a `.` subscript names a
// field absent from the principal Record/Class.
type NonexistentFieldReferenceError struct {
	Field     string
	Principal Term
	At        token.Token
}

func (e *NonexistentFieldReferenceError) Error() string {
	return fmt.Sprintf("%s: %s has no field %q", e.At, e.Principal, e.Field)
}
func (e *NonexistentFieldReferenceError) Position() token.Token { return e.At }

// UnhandledCustomSubscriptsError is raised when a parens/brace
// subscript has no handling for its principal: a Class that declares
// its own subsref method, or a principal/method pairing with no
// built-in indexing rule (e.g. brace on a Scalar, or an empty List).
type UnhandledCustomSubscriptsError struct {
	Principal Term
	Method    SubscriptMethod
	At        token.Token
}

func (e *UnhandledCustomSubscriptsError) Error() string {
	return fmt.Sprintf("%s: %s has no %s subscript method", e.At, e.Principal, e.Method)
}
func (e *UnhandledCustomSubscriptsError) Position() token.Token { return e.At }
