package parser

import (
	"fmt"
	"strings"

	"github.com/lqviet/simpledb/internal/catalog"
)

// Parse parses a single SQL statement into a Command. Keywords are
// case-insensitive; a trailing ';' is optional.
func Parse(input string) (Command, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty statement")
	}

	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	var cmd Command
	switch {
	case p.matchKeyword("CREATE"):
		cmd, err = p.parseCreateTable()
	case p.matchKeyword("DROP"):
		cmd, err = p.parseDropTable()
	case p.matchKeyword("SHOW"):
		cmd, err = p.parseShowTables()
	case p.matchKeyword("INSERT"):
		cmd, err = p.parseInsert()
	case p.matchKeyword("SELECT"):
		cmd, err = p.parseSelect()
	default:
		return nil, fmt.Errorf("unsupported statement: %q", input)
	}
	if err != nil {
		return nil, err
	}

	// optional trailing ';', then nothing else
	p.matchSymbol(";")
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected trailing input near %q", p.peek().text)
	}
	return cmd, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// matchKeyword consumes the next token when it is the given unquoted
// keyword, case-insensitively.
func (p *parser) matchKeyword(kw string) bool {
	t := p.peek()
	if t.kind == tokIdent && strings.EqualFold(t.text, kw) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.matchKeyword(kw) {
		return fmt.Errorf("expected %s near %q", kw, p.peek().text)
	}
	return nil
}

func (p *parser) matchSymbol(s string) bool {
	t := p.peek()
	if t.kind == tokSymbol && t.text == s {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectSymbol(s string) error {
	if !p.matchSymbol(s) {
		return fmt.Errorf("expected %q near %q", s, p.peek().text)
	}
	return nil
}

// expectIdent accepts an unquoted or double-quoted identifier.
func (p *parser) expectIdent() (string, error) {
	t := p.peek()
	if t.kind == tokIdent || t.kind == tokQuotedIdent {
		p.pos++
		return t.text, nil
	}
	return "", fmt.Errorf("expected identifier near %q", t.text)
}

// expectLiteral accepts a single-quoted string or an integer literal,
// both carried onward as text.
func (p *parser) expectLiteral() (string, error) {
	t := p.peek()
	if t.kind == tokString || t.kind == tokNumber {
		p.pos++
		return t.text, nil
	}
	return "", fmt.Errorf("expected literal near %q", t.text)
}

// CREATE TABLE <ident> ( <ident> <INT|TEXT> [, ...] )
func (p *parser) parseCreateTable() (Command, error) {
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, fmt.Errorf("invalid CREATE TABLE syntax: %w", err)
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, fmt.Errorf("invalid CREATE TABLE syntax: %w", err)
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, fmt.Errorf("invalid CREATE TABLE syntax: %w", err)
	}

	var cols []catalog.ColumnDefinition
	for {
		colName, err := p.expectIdent()
		if err != nil {
			return nil, fmt.Errorf("invalid column definition: %w", err)
		}
		typeTok := p.peek()
		if typeTok.kind != tokIdent {
			return nil, fmt.Errorf("invalid column definition: expected type near %q", typeTok.text)
		}
		p.pos++
		colType, err := catalog.ParseDatatype(strings.ToUpper(typeTok.text))
		if err != nil {
			return nil, fmt.Errorf("invalid column definition: unsupported type %q", typeTok.text)
		}
		cols = append(cols, catalog.ColumnDefinition{ColumnName: colName, Type: colType})

		if p.matchSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, fmt.Errorf("invalid CREATE TABLE syntax: %w", err)
	}

	return &CreateTableCommand{TableName: name, ColumnDefinitions: cols}, nil
}

// DROP TABLE <ident>
func (p *parser) parseDropTable() (Command, error) {
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, fmt.Errorf("invalid DROP TABLE syntax: %w", err)
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, fmt.Errorf("invalid DROP TABLE syntax: %w", err)
	}
	return &DropTableCommand{TableName: name}, nil
}

// SHOW TABLES
func (p *parser) parseShowTables() (Command, error) {
	if err := p.expectKeyword("TABLES"); err != nil {
		return nil, fmt.Errorf("invalid SHOW TABLES syntax: %w", err)
	}
	return &ShowTablesCommand{}, nil
}

// INSERT INTO <ident> [( <ident> [, ...] )] VALUES ( <literal> [, ...] )
func (p *parser) parseInsert() (Command, error) {
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, fmt.Errorf("invalid INSERT syntax: %w", err)
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, fmt.Errorf("invalid INSERT syntax: %w", err)
	}

	var columns []string
	if p.matchSymbol("(") {
		seen := map[string]bool{}
		for {
			col, err := p.expectIdent()
			if err != nil {
				return nil, fmt.Errorf("invalid INSERT column list: %w", err)
			}
			if seen[col] {
				return nil, fmt.Errorf("duplicate column %q in INSERT column list", col)
			}
			seen[col] = true
			columns = append(columns, col)

			if p.matchSymbol(",") {
				continue
			}
			break
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, fmt.Errorf("invalid INSERT column list: %w", err)
		}
	}

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, fmt.Errorf("invalid INSERT syntax: %w", err)
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, fmt.Errorf("invalid INSERT values syntax: %w", err)
	}

	var values []string
	for {
		v, err := p.expectLiteral()
		if err != nil {
			return nil, fmt.Errorf("invalid INSERT values syntax: %w", err)
		}
		values = append(values, v)

		if p.matchSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, fmt.Errorf("invalid INSERT values syntax: %w", err)
	}

	return &InsertCommand{TableName: name, Columns: columns, Values: values}, nil
}

// SELECT (*|<ident> [, ...]) FROM <ident> [WHERE <ident> <op> <literal>]
func (p *parser) parseSelect() (Command, error) {
	var projection []string
	if !p.matchSymbol("*") {
		for {
			col, err := p.expectIdent()
			if err != nil {
				return nil, fmt.Errorf("invalid SELECT column list: %w", err)
			}
			projection = append(projection, col)

			if p.matchSymbol(",") {
				continue
			}
			break
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, fmt.Errorf("invalid SELECT syntax: %w", err)
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, fmt.Errorf("invalid SELECT syntax: %w", err)
	}

	var where *WhereClause
	if p.matchKeyword("WHERE") {
		col, err := p.expectIdent()
		if err != nil {
			return nil, fmt.Errorf("invalid WHERE clause: %w", err)
		}
		opTok := p.peek()
		op, ok := comparisonOps[opTok.text]
		if opTok.kind != tokSymbol || !ok {
			return nil, fmt.Errorf("invalid WHERE clause: expected comparison operator near %q", opTok.text)
		}
		p.pos++
		value, err := p.expectLiteral()
		if err != nil {
			return nil, fmt.Errorf("invalid WHERE clause: %w", err)
		}
		where = &WhereClause{ColumnName: col, Op: op, Value: value}
	}

	return &SelectCommand{TableName: name, Projection: projection, Where: where}, nil
}
