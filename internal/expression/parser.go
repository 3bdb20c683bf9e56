package expression

// Parse parses input into an Expr. The whole input must be consumed.
func Parse(input string) (Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, parseErrorf(t.col, "unexpected %s", t.describe())
	}
	return e, nil
}

type parser struct {
	toks []token
	idx  int
}

func (p *parser) peek() token {
	return p.toks[p.idx]
}

// peekAt looks n tokens ahead, clamping at EOF.
func (p *parser) peekAt(n int) token {
	if p.idx+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.idx+n]
}

func (p *parser) next() token {
	t := p.toks[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, parseErrorf(t.col, "expected %s, got %s", kind, t.describe())
	}
	return t, nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		left = Or{left, right}
	}
	return left, nil
}

func (p *parser) parseXor() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokXor {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Xor{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseClause()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		left = And{left, right}
	}
	return left, nil
}

func (p *parser) parseClause() (Expr, error) {
	t := p.peek()
	switch {
	case t.kind == tokNot:
		p.next()
		// the operand of ! must be parenthesized
		if _, err := p.expect(tokLParen); err != nil {
			return nil, err
		}
		x, err := p.parseParenTail()
		if err != nil {
			return nil, err
		}
		return Not{x}, nil

	case t.kind == tokLParen:
		p.next()
		return p.parseParenTail()

	case t.kind == tokIdent && t.text == "defined" && p.peekAt(1).kind == tokLParen:
		p.next()
		p.next()
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return Defined{Name: name.text}, nil
	}

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	op := p.next()
	if op.kind != tokEq && op.kind != tokNe {
		return nil, parseErrorf(op.col, "expected '==' or '!=', got %s", op.describe())
	}
	right, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return Compare{Left: left, Equal: op.kind == tokEq, Right: right}, nil
}

// parseParenTail parses "expr )" after an opening parenthesis.
func (p *parser) parseParenTail() (Expr, error) {
	x, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return x, nil
}

func (p *parser) parseTerm() (Term, error) {
	t := p.next()
	switch t.kind {
	case tokIdent:
		return Ident(t.text), nil
	case tokString:
		return Literal(t.text), nil
	}
	return nil, parseErrorf(t.col, "expected identifier or string, got %s", t.describe())
}
