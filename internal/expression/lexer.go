package expression

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokLParen
	tokRParen
	tokNot
	tokEq
	tokNe
	tokAnd
	tokOr
	tokXor
)

var tokenNames = map[tokenKind]string{
	tokEOF:    "end of expression",
	tokIdent:  "identifier",
	tokString: "string",
	tokLParen: "'('",
	tokRParen: "')'",
	tokNot:    "'!'",
	tokEq:     "'=='",
	tokNe:     "'!='",
	tokAnd:    "'&&'",
	tokOr:     "'||'",
	tokXor:    "'^^'",
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

type token struct {
	kind tokenKind
	text string // identifier name or string contents
	col  int    // 1-based
}

func (t token) describe() string {
	switch t.kind {
	case tokIdent:
		return fmt.Sprintf("identifier %q", t.text)
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	}
	return t.kind.String()
}

var operators = []struct {
	text string
	kind tokenKind
}{
	{"==", tokEq},
	{"!=", tokNe},
	{"&&", tokAnd},
	{"||", tokOr},
	{"^^", tokXor},
	{"!", tokNot},
	{"(", tokLParen},
	{")", tokRParen},
}

// lex splits the whole expression up front; the grammar is small enough that
// the parser works on a token slice.
func lex(input string) ([]token, error) {
	var toks []token
	for i := 0; i < len(input); {
		ch := input[i]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			i++
			continue
		}
		if isIdentChar(ch) {
			j := i + 1
			for j < len(input) && isIdentChar(input[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: input[i:j], col: i + 1})
			i = j
			continue
		}
		if ch == '"' {
			end := strings.IndexByte(input[i+1:], '"')
			if end < 0 {
				return nil, parseErrorf(i+1, "unterminated string")
			}
			toks = append(toks, token{kind: tokString, text: input[i+1 : i+1+end], col: i + 1})
			i += end + 2
			continue
		}
		matched := false
		for _, op := range operators {
			if strings.HasPrefix(input[i:], op.text) {
				toks = append(toks, token{kind: op.kind, text: op.text, col: i + 1})
				i += len(op.text)
				matched = true
				break
			}
		}
		if !matched {
			return nil, parseErrorf(i+1, "unexpected character %q", ch)
		}
	}
	return append(toks, token{kind: tokEOF, col: len(input) + 1}), nil
}

// isIdentChar reports whether b may appear in an identifier. Identifiers may
// start with a digit.
func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
