// Package expression implements the boolean expressions accepted by @if and
// @elif.
//
//	expr    := xor { "||" xor }
//	xor     := and { "^^" and }
//	and     := clause { "&&" clause }
//	clause  := "!" "(" expr ")" | "(" expr ")" | "defined" "(" IDENT ")" | term ("==" | "!=") term
//	term    := IDENT | STRING
//
// An identifier used as a term evaluates to its definition and must be
// defined. Binary operators evaluate both operands.
package expression

import (
	"strconv"
)

type (
	// Expr is a parsed boolean expression.
	Expr interface {
		// Eval evaluates the expression against defs.
		Eval(defs map[string]string) (bool, error)
		String() string
	}
	Or      struct{ L, R Expr } // a || b
	Xor     struct{ L, R Expr } // a ^^ b
	And     struct{ L, R Expr } // a && b
	Not     struct{ X Expr }    // !(x)
	Defined struct{ Name string }
	Compare struct {
		Left  Term
		Equal bool // false for !=
		Right Term
	}
)

type (
	// Term is an operand of == and !=.
	Term interface {
		Resolve(defs map[string]string) (string, error)
		String() string
	}
	Ident   string
	Literal string
)

func (e Or) String() string      { return "(" + e.L.String() + " || " + e.R.String() + ")" }
func (e Xor) String() string     { return "(" + e.L.String() + " ^^ " + e.R.String() + ")" }
func (e And) String() string     { return "(" + e.L.String() + " && " + e.R.String() + ")" }
func (e Not) String() string     { return "!(" + e.X.String() + ")" }
func (e Defined) String() string { return "defined(" + e.Name + ")" }
func (e Compare) String() string {
	op := " != "
	if e.Equal {
		op = " == "
	}
	return e.Left.String() + op + e.Right.String()
}
func (t Ident) String() string   { return string(t) }
func (t Literal) String() string { return strconv.Quote(string(t)) }

func (e Or) Eval(defs map[string]string) (bool, error) {
	l, r, err := evalBoth(e.L, e.R, defs)
	return l || r, err
}

func (e Xor) Eval(defs map[string]string) (bool, error) {
	l, r, err := evalBoth(e.L, e.R, defs)
	return l != r, err
}

func (e And) Eval(defs map[string]string) (bool, error) {
	l, r, err := evalBoth(e.L, e.R, defs)
	return l && r, err
}

func (e Not) Eval(defs map[string]string) (bool, error) {
	v, err := e.X.Eval(defs)
	return !v, err
}

func (e Defined) Eval(defs map[string]string) (bool, error) {
	_, ok := defs[e.Name]
	return ok, nil
}

func (e Compare) Eval(defs map[string]string) (bool, error) {
	l, err := e.Left.Resolve(defs)
	if err != nil {
		return false, err
	}
	r, err := e.Right.Resolve(defs)
	if err != nil {
		return false, err
	}
	return (l == r) == e.Equal, nil
}

func (t Ident) Resolve(defs map[string]string) (string, error) {
	v, ok := defs[string(t)]
	if !ok {
		return "", notDefinedError(string(t))
	}
	return v, nil
}

func (t Literal) Resolve(map[string]string) (string, error) {
	return string(t), nil
}

func evalBoth(l, r Expr, defs map[string]string) (bool, bool, error) {
	lv, err := l.Eval(defs)
	if err != nil {
		return false, false, err
	}
	rv, err := r.Eval(defs)
	if err != nil {
		return false, false, err
	}
	return lv, rv, nil
}

// Evaluate parses input and evaluates it against defs.
func Evaluate(input string, defs map[string]string) (bool, error) {
	e, err := Parse(input)
	if err != nil {
		return false, err
	}
	return e.Eval(defs)
}
