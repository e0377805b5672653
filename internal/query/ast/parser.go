package ast

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
)

type parser struct {
	lx   *lexer
	cur  token
	prev token
}

// Parse parses one SELECT statement.
func Parse(query string) (*SelectStatement, error) {
	p := &parser{lx: newLexer(query)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseSelect()
}

func (p *parser) advance() error {
	p.prev = p.cur
	t, err := p.lx.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) atEOF() bool { return p.cur.kind == tokEOF }

func (p *parser) identUpper() string { return strings.ToUpper(p.cur.text) }

func (p *parser) isKeyword(kw string) bool {
	return p.cur.kind == tokIdent && !p.cur.quoted && p.identUpper() == kw
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return &errs.QuerySyntax{Position: p.cur.pos, Message: "expected " + kw}
	}
	return p.advance()
}

func (p *parser) expectPunct(s string) error {
	if p.cur.kind != tokPunct || p.cur.text != s {
		return &errs.QuerySyntax{Position: p.cur.pos, Message: "expected " + s}
	}
	return p.advance()
}

func foldIdent(t token) string {
	if t.quoted {
		return t.text
	}
	return strings.ToLower(t.text)
}

func (p *parser) parseIdent() (string, error) {
	if p.cur.kind != tokIdent {
		return "", &errs.QuerySyntax{Position: p.cur.pos, Message: "expected identifier"}
	}
	name := foldIdent(p.cur)
	if err := p.advance(); err != nil {
		return "", err
	}
	return name, nil
}

func (p *parser) parseSelect() (*SelectStatement, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}

	stmt := &SelectStatement{}
	if p.cur.kind == tokPunct && p.cur.text == "*" {
		stmt.Star = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		exprs, err := p.parseProjectionList()
		if err != nil {
			return nil, err
		}
		stmt.Projection = exprs
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	if p.isKeyword("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		cmps, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		stmt.Where = cmps
	}

	if p.isKeyword("GROUP") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = cols
	}

	if p.isKeyword("ORDER") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		terms, err := p.parseOrderByList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = terms
	}

	if p.isKeyword("LIMIT") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokNumber {
			return nil, &errs.QuerySyntax{Position: p.cur.pos, Message: "expected integer after LIMIT"}
		}
		n, err := strconv.ParseInt(p.cur.text, 10, 64)
		if err != nil {
			return nil, &errs.QuerySyntax{Position: p.cur.pos, Message: "invalid LIMIT integer"}
		}
		stmt.Limit = int(n)
		stmt.HasLimit = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.isKeyword("ALLOW") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("FILTERING"); err != nil {
			return nil, err
		}
		stmt.AllowFiltering = true
	}

	if !p.atEOF() {
		return nil, &errs.QuerySyntax{Position: p.cur.pos, Message: "unexpected trailing input"}
	}
	return stmt, nil
}

func (p *parser) parseIdentList() ([]string, error) {
	var out []string
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		out = append(out, name)
		if p.cur.kind == tokPunct && p.cur.text == "," {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseOrderByList() ([]OrderTerm, error) {
	var out []OrderTerm
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		dir := OrderAsc
		if p.isKeyword("ASC") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if p.isKeyword("DESC") {
			dir = OrderDesc
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		out = append(out, OrderTerm{Column: name, Direction: dir})
		if p.cur.kind == tokPunct && p.cur.text == "," {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return out, nil
}

var aggregateNames = map[string]AggregateFn{
	"COUNT": AggCount,
	"SUM":   AggSum,
	"AVG":   AggAvg,
	"MIN":   AggMin,
	"MAX":   AggMax,
}

func (p *parser) parseProjectionList() ([]Expr, error) {
	var out []Expr
	for {
		e, err := p.parseProjectionExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.cur.kind == tokPunct && p.cur.text == "," {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseProjectionExpr() (Expr, error) {
	base, err := p.parseBaseExpr()
	if err != nil {
		return Expr{}, err
	}
	if p.isKeyword("AS") {
		if err := p.advance(); err != nil {
			return Expr{}, err
		}
		alias, err := p.parseIdent()
		if err != nil {
			return Expr{}, err
		}
		inner := base
		return Expr{Kind: ExprAlias, Inner: &inner, Alias: alias}, nil
	}
	return base, nil
}

func (p *parser) parseBaseExpr() (Expr, error) {
	if p.cur.kind == tokIdent && !p.cur.quoted {
		if fn, ok := aggregateNames[p.identUpper()]; ok {
			return p.parseAggregate(fn)
		}
	}
	if p.cur.kind == tokIdent {
		return p.parseColumnOrLiteralIdent()
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return Expr{}, err
	}
	return Expr{Kind: ExprLiteral, Literal: lit}, nil
}

func (p *parser) parseColumnOrLiteralIdent() (Expr, error) {
	switch p.identUpper() {
	case "TRUE":
		if err := p.advance(); err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitBool, Bool: true}}, nil
	case "FALSE":
		if err := p.advance(); err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitBool, Bool: false}}, nil
	case "NULL":
		if err := p.advance(); err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitNull}}, nil
	}
	name, err := p.parseIdent()
	if err != nil {
		return Expr{}, err
	}
	return Expr{Kind: ExprColumn, Column: name}, nil
}

func (p *parser) parseAggregate(fn AggregateFn) (Expr, error) {
	if err := p.advance(); err != nil { // consume function name
		return Expr{}, err
	}
	if err := p.expectPunct("("); err != nil {
		return Expr{}, err
	}
	distinct := false
	if p.isKeyword("DISTINCT") {
		distinct = true
		if err := p.advance(); err != nil {
			return Expr{}, err
		}
	}
	var arg *Expr
	if !(p.cur.kind == tokPunct && p.cur.text == "*") {
		e, err := p.parseBaseExpr()
		if err != nil {
			return Expr{}, err
		}
		arg = &e
	} else {
		if err := p.advance(); err != nil {
			return Expr{}, err
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return Expr{}, err
	}
	return Expr{Kind: ExprAggregate, AggFn: fn, AggArg: arg, AggDistinct: distinct}, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	switch p.cur.kind {
	case tokString:
		s := p.cur.text
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Kind: LitString, Str: s}, nil
	case tokNumber:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		if strings.ContainsAny(text, ".eE") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return Literal{}, &errs.QuerySyntax{Position: p.prev.pos, Message: "invalid float literal"}
			}
			return Literal{Kind: LitFloat, Flt: f}, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Literal{}, &errs.QuerySyntax{Position: p.prev.pos, Message: "invalid integer literal"}
		}
		return Literal{Kind: LitInt, Int: n}, nil
	case tokUUID:
		text := p.cur.text
		pos := p.cur.pos
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		raw, err := hex.DecodeString(strings.ReplaceAll(text, "-", ""))
		if err != nil || len(raw) != 16 {
			return Literal{}, &errs.QuerySyntax{Position: pos, Message: "invalid uuid literal"}
		}
		var u [16]byte
		copy(u[:], raw)
		return Literal{Kind: LitUUID, UUID: u}, nil
	case tokIdent:
		if !p.cur.quoted {
			switch word := p.identUpper(); word {
			case "TRUE", "FALSE":
				if err := p.advance(); err != nil {
					return Literal{}, err
				}
				return Literal{Kind: LitBool, Bool: word == "TRUE"}, nil
			case "NULL":
				if err := p.advance(); err != nil {
					return Literal{}, err
				}
				return Literal{Kind: LitNull}, nil
			}
		}
		return Literal{}, &errs.QuerySyntax{Position: p.cur.pos, Message: "expected literal"}
	default:
		return Literal{}, &errs.QuerySyntax{Position: p.cur.pos, Message: "expected literal"}
	}
}

func (p *parser) parseWhere() ([]Cmp, error) {
	var out []Cmp
	for {
		c, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		if p.isKeyword("AND") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseCmp() (Cmp, error) {
	col, err := p.parseIdent()
	if err != nil {
		return Cmp{}, err
	}

	if p.isKeyword("IN") {
		if err := p.advance(); err != nil {
			return Cmp{}, err
		}
		if err := p.expectPunct("("); err != nil {
			return Cmp{}, err
		}
		var values []Literal
		for {
			v, err := p.parseLiteral()
			if err != nil {
				return Cmp{}, err
			}
			values = append(values, v)
			if p.cur.kind == tokPunct && p.cur.text == "," {
				if err := p.advance(); err != nil {
					return Cmp{}, err
				}
				continue
			}
			break
		}
		if err := p.expectPunct(")"); err != nil {
			return Cmp{}, err
		}
		return Cmp{Column: col, Op: OpIn, Values: values}, nil
	}

	if p.isKeyword("BETWEEN") {
		if err := p.advance(); err != nil {
			return Cmp{}, err
		}
		lo, err := p.parseLiteral()
		if err != nil {
			return Cmp{}, err
		}
		if err := p.expectKeyword("AND"); err != nil {
			return Cmp{}, err
		}
		hi, err := p.parseLiteral()
		if err != nil {
			return Cmp{}, err
		}
		return Cmp{Column: col, Op: OpBetween, Low: lo, High: hi}, nil
	}

	op, err := p.parseOp()
	if err != nil {
		return Cmp{}, err
	}
	val, err := p.parseLiteral()
	if err != nil {
		return Cmp{}, err
	}
	return Cmp{Column: col, Op: op, Value: val}, nil
}

func (p *parser) parseOp() (CmpOp, error) {
	if p.cur.kind != tokPunct {
		return 0, &errs.QuerySyntax{Position: p.cur.pos, Message: "expected comparison operator"}
	}
	op, ok := map[string]CmpOp{
		"=": OpEq, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe, "!=": OpNe, "<>": OpNe,
	}[p.cur.text]
	if !ok {
		return 0, &errs.QuerySyntax{Position: p.cur.pos, Message: "expected comparison operator"}
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	return op, nil
}
