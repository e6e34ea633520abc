// Package dub implements the small command language of the REPL. A command is
// a name followed by arguments: numbers, identifiers, quoted strings and
// rhythmic match expressions introduced by a single quote, e.g.
//
//	fill 1 '1,3/*
//	set env.attack 0.01; play
package dub

import (
	"strconv"
)

type Node interface {
	isNode()
}

func (Identifier) isNode() {}
func (Int) isNode()        {}
func (Float) isNode()      {}
func (String) isNode()     {}
func (MatchExpr) isNode()  {}

type Command struct {
	Name Identifier
	Args []Node
}

type Identifier string
type Int int
type Float float64
type String string

// MatchExpr selects notes on successively finer divisions of a bar. Each
// slash moves one division down; see EvalMatchExpr.
type MatchExpr struct {
	matchers []matchItem
}

// Parse parses a single command.
func Parse(input string) (Command, error) {
	p, err := newParser(input)
	if err != nil {
		return Command{}, err
	}
	cmd, err := p.command()
	if err != nil {
		return cmd, err
	}
	if t := p.peek(); t.typ != typeEOF {
		return cmd, unexpected(t)
	}
	return cmd, nil
}

// ParseScript parses commands separated by semicolons. Empty commands are
// skipped.
func ParseScript(input string) ([]Command, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	var cmds []Command
	for {
		for p.peek().typ == typeSemicolon {
			p.next()
		}
		if p.peek().typ == typeEOF {
			return cmds, nil
		}
		cmd, err := p.command()
		if err != nil {
			return cmds, err
		}
		cmds = append(cmds, cmd)
	}
}

type parser struct {
	pos    int
	tokens []token
}

func newParser(input string) (*parser, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	return &parser{tokens: tokens}, nil
}

// next never moves past the final EOF token.
func (p *parser) next() token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

// command reads a name and its arguments up to a semicolon or the end of
// the input.
func (p *parser) command() (Command, error) {
	var cmd Command
	name := p.next()
	if name.typ != typeIdentifier {
		return cmd, syntaxErrorf(name.pos, "expected a command name, got %s %q", name.typ, name.text)
	}
	cmd.Name = Identifier(name.text)
	for {
		t := p.next()
		var arg Node
		switch t.typ {
		case typeEOF:
			return cmd, nil
		case typeSemicolon:
			return cmd, nil
		case typeComma:
			continue
		case typeIdentifier:
			arg = Identifier(t.text)
		case typeString:
			arg = String(t.text[1 : len(t.text)-1])
		case typeFloat:
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return cmd, syntaxErrorf(t.pos, "bad number %q", t.text)
			}
			arg = Float(f)
		case typeInt:
			n, err := strconv.Atoi(t.text)
			if err != nil {
				return cmd, syntaxErrorf(t.pos, "bad number %q", t.text)
			}
			arg = Int(n)
		case typeQuote:
			expr, err := p.matchExpr()
			if err != nil {
				return cmd, err
			}
			arg = expr
		default:
			return cmd, unexpected(t)
		}
		cmd.Args = append(cmd.Args, arg)
	}
}

// matchExpr parses item ('/'+ item)*. Every extra slash skips a division.
func (p *parser) matchExpr() (MatchExpr, error) {
	var expr MatchExpr
	level := 0
	for {
		m, err := p.matchItem()
		if err != nil {
			return expr, err
		}
		expr.matchers = append(expr.matchers, matchItem{level: level, matcher: m})
		if p.peek().typ != typeSlash {
			return expr, nil
		}
		for p.peek().typ == typeSlash {
			p.next()
			level++
		}
	}
}

func (p *parser) matchItem() (matcher, error) {
	t := p.next()
	switch t.typ {
	case typeAsterisk:
		return matchAll, nil
	case typeInt:
	case typeEOF, typeSemicolon:
		return nil, syntaxErrorf(t.pos, "incomplete match expression")
	default:
		return nil, unexpected(t)
	}

	first, err := p.matchNumber(t)
	if err != nil {
		return nil, err
	}
	if p.peek().typ == typeColon {
		p.next()
		t := p.next()
		if t.typ != typeInt {
			return nil, syntaxErrorf(t.pos, "expected the end of the range, got %s %q", t.typ, t.text)
		}
		last, err := p.matchNumber(t)
		if err != nil {
			return nil, err
		}
		return rangeMatch{start: first, end: last}, nil
	}

	list := listMatch{first}
	for p.peek().typ == typeComma {
		p.next()
		t := p.next()
		if t.typ != typeInt {
			return nil, syntaxErrorf(t.pos, "expected a number after comma, got %s %q", t.typ, t.text)
		}
		n, err := p.matchNumber(t)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, nil
}

func (p *parser) matchNumber(t token) (int, error) {
	n, err := strconv.Atoi(t.text)
	if err != nil || n < 1 {
		return 0, syntaxErrorf(t.pos, "notes are numbered from 1: %q", t.text)
	}
	return n, nil
}

func unexpected(t token) error {
	return syntaxErrorf(t.pos, "unexpected %s %q", t.typ, t.text)
}
