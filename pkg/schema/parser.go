package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/typeguard/pkg/descriptor"
)

// Parse converts a type expression into a descriptor. Names are resolved
// against scope first (type variables, then custom types) and then against
// the builtin vocabulary. scope may be nil.
//
//	list[int]
//	dict[str, union[int, none]]
//	tuple[int, ...]
//	record{name: str, tags?: set[str]}
//	callable[[int, str], bool]
//	literal["red", "green", 3]
//	int | str
func Parse(expr string, scope *Scope) (descriptor.Descriptor, error) {
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{expr: expr, tokens: tokens, scope: scope}
	d := p.parseUnion()
	if p.err == nil && !p.current().is(tokEOF) {
		p.errorf("unexpected %s", p.current())
	}
	if p.err != nil {
		return nil, p.err
	}
	return d, nil
}

// MustParse is like Parse but panics on error. It is meant for package-level
// declarations.
func MustParse(expr string, scope *Scope) descriptor.Descriptor {
	d, err := Parse(expr, scope)
	if err != nil {
		panic(err)
	}
	return d
}

type parser struct {
	expr   string
	tokens []token
	pos    int
	scope  *Scope
	err    *ParseError
}

func (p *parser) current() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) {
	if p.err == nil {
		p.err = &ParseError{Expr: p.expr, Pos: p.current().pos, Msg: fmt.Sprintf(format, args...)}
	}
}

func (p *parser) expect(values ...string) bool {
	if p.err != nil {
		return false
	}
	if !p.current().is(tokPunct, values...) {
		p.errorf("expected %s, got %s", strings.Join(values, " or "), p.current())
		return false
	}
	p.advance()
	return true
}

func (p *parser) accept(value string) bool {
	if p.err == nil && p.current().is(tokPunct, value) {
		p.advance()
		return true
	}
	return false
}

// parseUnion handles the infix form A | B.
func (p *parser) parseUnion() descriptor.Descriptor {
	alts := []descriptor.Descriptor{p.parseTerm()}
	for p.accept("|") {
		alts = append(alts, p.parseTerm())
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return descriptor.OneOf(alts...)
}

func (p *parser) parseList(closing string) []descriptor.Descriptor {
	var out []descriptor.Descriptor
	if p.accept(closing) {
		return out
	}
	for p.err == nil {
		out = append(out, p.parseUnion())
		if p.accept(closing) {
			return out
		}
		p.expect(",")
	}
	return out
}

func (p *parser) parseTerm() descriptor.Descriptor {
	if p.err != nil {
		return nil
	}
	t := p.current()
	if !t.is(tokIdent) {
		p.errorf("expected a type, got %s", t)
		return nil
	}
	p.advance()

	if tv, ok := p.scope.lookupVar(t.value); ok {
		return tv
	}

	switch t.value {
	case "any":
		return descriptor.Any
	case "none", "nil":
		return descriptor.None()
	case "list", "set", "frozenset", "iterable":
		return p.parseContainer(t.value)
	case "tuple":
		return p.parseTuple()
	case "dict", "map":
		return p.parseMapping()
	case "union":
		if !p.expect("[") {
			return nil
		}
		alts := p.parseList("]")
		if len(alts) == 0 {
			p.errorf("union needs at least one alternative")
			return nil
		}
		return descriptor.OneOf(alts...)
	case "optional":
		inner := p.parseSingleParam(t.value)
		if inner == nil {
			return nil
		}
		return descriptor.Optional(inner)
	case "type":
		if !p.current().is(tokPunct, "[") {
			return descriptor.TypeOfType(nil)
		}
		return descriptor.TypeOfType(p.parseSingleParam(t.value))
	case "literal":
		return p.parseLiteral()
	case "record":
		return p.parseRecord()
	case "callable":
		return p.parseCallable()
	}

	if rt, ok := p.scope.lookupType(t.value); ok {
		return descriptor.TypeFor(rt)
	}
	p.pos--
	p.errorf("unknown type %q", t.value)
	return nil
}

func (p *parser) parseSingleParam(name string) descriptor.Descriptor {
	if !p.expect("[") {
		return nil
	}
	params := p.parseList("]")
	if p.err == nil && len(params) != 1 {
		p.errorf("%s takes exactly one parameter, got %d", name, len(params))
		return nil
	}
	if p.err != nil {
		return nil
	}
	return params[0]
}

func (p *parser) parseContainer(kind string) descriptor.Descriptor {
	var elem descriptor.Descriptor
	if p.current().is(tokPunct, "[") {
		elem = p.parseSingleParam(kind)
	}
	switch kind {
	case "list":
		return descriptor.ListOf(elem)
	case "set":
		return descriptor.SetOf(elem)
	case "frozenset":
		return descriptor.FrozenSetOf(elem)
	}
	return descriptor.IterableOf(elem)
}

func (p *parser) parseTuple() descriptor.Descriptor {
	if !p.accept("[") {
		return descriptor.VariadicTuple(descriptor.Any)
	}
	var elems []descriptor.Descriptor
	if p.accept("]") {
		return descriptor.TupleOf()
	}
	for p.err == nil {
		elems = append(elems, p.parseUnion())
		if p.accept("]") {
			return descriptor.TupleOf(elems...)
		}
		p.expect(",")
		if p.accept("...") {
			if len(elems) != 1 {
				p.errorf("variadic tuple takes exactly one element type")
				return nil
			}
			p.expect("]")
			return descriptor.VariadicTuple(elems[0])
		}
	}
	return nil
}

func (p *parser) parseMapping() descriptor.Descriptor {
	if !p.accept("[") {
		return descriptor.MapOf(nil, nil)
	}
	params := p.parseList("]")
	if p.err != nil {
		return nil
	}
	if len(params) != 2 {
		p.errorf("dict takes a key and a value type, got %d parameters", len(params))
		return nil
	}
	return descriptor.MapOf(params[0], params[1])
}

func (p *parser) parseRecord() descriptor.Descriptor {
	if !p.expect("{") {
		return nil
	}
	var fields []descriptor.Field
	if p.accept("}") {
		return descriptor.RecordOf()
	}
	for p.err == nil {
		name := p.current()
		if !name.is(tokIdent) && !name.is(tokString) {
			p.errorf("expected a field name, got %s", name)
			return nil
		}
		p.advance()
		optional := p.accept("?")
		p.expect(":")
		d := p.parseUnion()
		if optional {
			fields = append(fields, descriptor.OptionalField(name.value, d))
		} else {
			fields = append(fields, descriptor.Required(name.value, d))
		}
		if p.accept("}") {
			return descriptor.RecordOf(fields...)
		}
		p.expect(",")
	}
	return nil
}

func (p *parser) parseCallable() descriptor.Descriptor {
	if !p.accept("[") {
		return descriptor.AnyCallable()
	}
	if !p.expect("[") {
		return nil
	}
	params := p.parseList("]")
	p.expect(",")
	ret := p.parseUnion()
	p.expect("]")
	if p.err != nil {
		return nil
	}
	if d, ok := ret.(*descriptor.Primitive); ok && d.Type == nil {
		ret = nil
	}
	return descriptor.CallableOf(params, ret)
}

func (p *parser) parseLiteral() descriptor.Descriptor {
	if !p.expect("[") {
		return nil
	}
	var values []any
	for p.err == nil {
		v, ok := p.parseLiteralValue()
		if !ok {
			return nil
		}
		values = append(values, v)
		if p.accept("]") {
			return descriptor.Literal(values...)
		}
		p.expect(",")
	}
	return nil
}

func (p *parser) parseLiteralValue() (any, bool) {
	t := p.current()
	switch {
	case t.is(tokString):
		p.advance()
		return t.value, true
	case t.is(tokNumber):
		v, ok := parseNumber(t.value)
		if !ok {
			p.errorf("bad number %q", t.value)
			return nil, false
		}
		p.advance()
		return v, true
	case t.is(tokIdent, "true", "false"):
		p.advance()
		return t.value == "true", true
	case t.is(tokIdent, "none", "nil"):
		p.advance()
		return nil, true
	case t.is(tokIdent, "literal"):
		// Nested literal sets are flattened.
		p.advance()
		return p.parseLiteral(), p.err == nil
	}
	p.errorf("expected a literal value, got %s", t)
	return nil, false
}

func parseNumber(s string) (any, bool) {
	clean := strings.ReplaceAll(s, "_", "")
	if i, err := strconv.ParseInt(clean, 0, 0); err == nil {
		return int(i), true
	}
	f, err := strconv.ParseFloat(clean, 64)
	return f, err == nil
}
