// Package filter compiles query-string style filters ("pages_gt=299") into
// SQL predicates. Every entity declares the fields it can be filtered on in
// a Set, so no filter key reaches the database without an explicit column,
// value kind and validation rule.
package filter

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

type Kind uint8

const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
)

type Op string

const (
	OpEq   Op = ""
	OpLt   Op = "lt"
	OpGt   Op = "gt"
	OpLike Op = "like"
)

const sep = "_"

var ErrUnknownFilter = errors.New("unknown filter")

// Filters maps "field" or "field_op" to a value. Nil values are ignored.
type Filters map[string]any

// Field describes one filterable column. The rule per operator is a
// validator tag applied to parsed query values.
type Field struct {
	Name   string
	Column string
	Kind   Kind
	rules  map[Op]string
}

func newField(name string, kind Kind, rule string) Field {
	return Field{
		Name:   name,
		Column: name,
		Kind:   kind,
		rules:  map[Op]string{OpEq: rule},
	}
}

func Int(name, rule string) Field    { return newField(name, KindInt, rule) }
func Float(name, rule string) Field  { return newField(name, KindFloat, rule) }
func String(name, rule string) Field { return newField(name, KindString, rule) }

// Range enables the lt and gt operators.
func (f Field) Range(rule string) Field {
	f.rules = f.with(OpLt, rule)
	f.rules[OpGt] = rule
	return f
}

// Like enables case-insensitive substring matching. String fields only.
func (f Field) Like(rule string) Field {
	if f.Kind != KindString {
		panic(fmt.Sprintf("filter: like on non-string field %q", f.Name))
	}
	f.rules = f.with(OpLike, rule)
	return f
}

// On maps the field to a differently named column.
func (f Field) On(column string) Field {
	f.Column = column
	return f
}

func (f Field) Supports(op Op) bool {
	_, ok := f.rules[op]
	return ok
}

// Key is the query parameter name for op.
func (f Field) Key(op Op) string {
	if op == OpEq {
		return f.Name
	}
	return f.Name + sep + string(op)
}

func (f Field) with(op Op, rule string) map[Op]string {
	rules := make(map[Op]string, len(f.rules)+1)
	for k, v := range f.rules {
		rules[k] = v
	}
	rules[op] = rule
	return rules
}

type Set []Field

// Lookup resolves a filter key into its field and operator.
func (s Set) Lookup(key string) (Field, Op, error) {
	for _, f := range s {
		if f.Name == key {
			return f, OpEq, nil
		}
	}
	if i := strings.LastIndex(key, sep); i > 0 {
		name, op := key[:i], Op(key[i+len(sep):])
		for _, f := range s {
			if f.Name == name && op != OpEq && f.Supports(op) {
				return f, op, nil
			}
		}
	}
	return Field{}, OpEq, errors.Wrapf(ErrUnknownFilter, "%q", key)
}

// Compile turns filters into AND-ed predicates. The result is empty when
// nothing is set; keys are visited in sorted order so the SQL is stable.
func (s Set) Compile(filters Filters) (sq.And, error) {
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if _, ok := deref(v); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	cond := make(sq.And, 0, len(keys))
	for _, k := range keys {
		f, op, err := s.Lookup(k)
		if err != nil {
			return nil, err
		}
		v, _ := deref(filters[k])
		switch op {
		case OpEq:
			cond = append(cond, sq.Eq{f.Column: v})
		case OpLt:
			cond = append(cond, sq.Lt{f.Column: v})
		case OpGt:
			cond = append(cond, sq.Gt{f.Column: v})
		case OpLike:
			cond = append(cond, sq.ILike{f.Column: "%" + escapeLike(fmt.Sprint(v)) + "%"})
		}
	}
	return cond, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// deref unwraps pointers; nil values and nil pointers report false.
func deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}
