package repo

import (
	"fmt"
	"strings"
)

// Op is a search operator in the domain-filter language understood by the
// record repositories. The set mirrors the operators accepted by name
// search: exact, substring (case sensitive and not), set membership, and
// their negations.
type Op string

const (
	OpEq       Op = "="
	OpNotEq    Op = "!="
	OpLike     Op = "like"
	OpILike    Op = "ilike"
	OpNotLike  Op = "not like"
	OpNotILike Op = "not ilike"
	OpIn       Op = "in"
	OpNotIn    Op = "not in"
)

// Negative reports whether the operator belongs to the not-like/not-equal
// family.
func (o Op) Negative() bool {
	switch o {
	case OpNotEq, OpNotLike, OpNotILike, OpNotIn:
		return true
	default:
		return false
	}
}

// Expr is a record filter: a single condition or an AND/OR junction.
type Expr interface {
	expr()
}

type Cond struct {
	Field string
	Op    Op
	Value any
}

type AndExpr struct{ Exprs []Expr }

type OrExpr struct{ Exprs []Expr }

func (Cond) expr()    {}
func (AndExpr) expr() {}
func (OrExpr) expr()  {}

func Where(field string, op Op, value any) Expr {
	return Cond{Field: field, Op: op, Value: value}
}

func And(exprs ...Expr) Expr {
	out := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return AndExpr{Exprs: out}
}

func Or(exprs ...Expr) Expr {
	out := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return OrExpr{Exprs: out}
}

// ToSQL renders the filter as a Postgres WHERE fragment with positional
// placeholders continuing after the given args. Substring operators wrap
// the value in %...%; set membership on nullable columns treats NULL as
// "not in".
func ToSQL(e Expr, args []any) (string, []any) {
	if e == nil {
		return "TRUE", args
	}
	switch v := e.(type) {
	case Cond:
		return condToSQL(v, args)
	case AndExpr:
		return junctionToSQL(v.Exprs, " AND ", "TRUE", args)
	case OrExpr:
		return junctionToSQL(v.Exprs, " OR ", "FALSE", args)
	default:
		return "TRUE", args
	}
}

func junctionToSQL(exprs []Expr, sep, empty string, args []any) (string, []any) {
	if len(exprs) == 0 {
		return empty, args
	}
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		var part string
		part, args = ToSQL(e, args)
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], args
	}
	return "(" + strings.Join(parts, sep) + ")", args
}

func condToSQL(c Cond, args []any) (string, []any) {
	switch c.Op {
	case OpEq:
		args = append(args, c.Value)
		return fmt.Sprintf("%s = $%d", c.Field, len(args)), args
	case OpNotEq:
		args = append(args, c.Value)
		return fmt.Sprintf("%s <> $%d", c.Field, len(args)), args
	case OpLike:
		args = append(args, pattern(c.Value))
		return fmt.Sprintf("%s LIKE $%d", c.Field, len(args)), args
	case OpILike:
		args = append(args, pattern(c.Value))
		return fmt.Sprintf("%s ILIKE $%d", c.Field, len(args)), args
	case OpNotLike:
		args = append(args, pattern(c.Value))
		return fmt.Sprintf("%s NOT LIKE $%d", c.Field, len(args)), args
	case OpNotILike:
		args = append(args, pattern(c.Value))
		return fmt.Sprintf("%s NOT ILIKE $%d", c.Field, len(args)), args
	case OpIn:
		args = append(args, toInt64Slice(c.Value))
		return fmt.Sprintf("%s = ANY($%d)", c.Field, len(args)), args
	case OpNotIn:
		args = append(args, toInt64Slice(c.Value))
		n := len(args)
		return fmt.Sprintf("(%s <> ALL($%d) OR %s IS NULL)", c.Field, n, c.Field), args
	default:
		args = append(args, c.Value)
		return fmt.Sprintf("%s = $%d", c.Field, len(args)), args
	}
}

func pattern(v any) string {
	return "%" + fmt.Sprintf("%v", v) + "%"
}

func toInt64Slice(v any) []int64 {
	switch ids := v.(type) {
	case []int64:
		return ids
	case int64:
		return []int64{ids}
	default:
		return nil
	}
}

// Match evaluates the filter against a single record, with the same
// operator semantics as the SQL rendering. The getter returns the record's
// value for a field: string, int64, or *int64 (nil meaning SQL NULL).
func Match(e Expr, get func(field string) any) bool {
	if e == nil {
		return true
	}
	switch v := e.(type) {
	case Cond:
		return matchCond(v, get)
	case AndExpr:
		for _, sub := range v.Exprs {
			if !Match(sub, get) {
				return false
			}
		}
		return true
	case OrExpr:
		for _, sub := range v.Exprs {
			if Match(sub, get) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func matchCond(c Cond, get func(field string) any) bool {
	val := get(c.Field)
	switch c.Op {
	case OpEq, OpNotEq, OpLike, OpILike, OpNotLike, OpNotILike:
		s, ok := asString(val)
		if !ok {
			if n, numOK := asInt64(val); numOK {
				want, wantOK := asInt64(c.Value)
				eq := wantOK && n == want
				if c.Op == OpNotEq {
					return !eq
				}
				return eq
			}
			return c.Op.Negative()
		}
		want := fmt.Sprintf("%v", c.Value)
		var hit bool
		switch c.Op {
		case OpEq, OpNotEq:
			hit = s == want
		case OpLike, OpNotLike:
			hit = strings.Contains(s, want)
		case OpILike, OpNotILike:
			hit = strings.Contains(strings.ToLower(s), strings.ToLower(want))
		}
		if c.Op.Negative() {
			return !hit
		}
		return hit
	case OpIn, OpNotIn:
		n, ok := asInt64(val)
		hit := false
		if ok {
			for _, id := range toInt64Slice(c.Value) {
				if id == n {
					hit = true
					break
				}
			}
		}
		if c.Op == OpNotIn {
			return !hit
		}
		return hit
	default:
		return false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case *int64:
		if n == nil {
			return 0, false
		}
		return *n, true
	default:
		return 0, false
	}
}
