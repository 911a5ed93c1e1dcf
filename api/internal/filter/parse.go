package filter

import (
	"fmt"
	"net/url"
	"strconv"
)

type Validator interface {
	Var(field interface{}, tag string) error
}

// Error reports a query value that failed to parse or validate.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var ops = []Op{OpEq, OpLt, OpGt, OpLike}

// Parse extracts the filters declared by the set from query values,
// converting each to its field kind and checking it against the field rule.
// Absent keys are left out of the result.
func (s Set) Parse(values url.Values, v Validator) (Filters, error) {
	filters := make(Filters)
	for _, f := range s {
		for _, op := range ops {
			rule, ok := f.rules[op]
			if !ok {
				continue
			}
			key := f.Key(op)
			if !values.Has(key) {
				continue
			}
			val, err := convert(f.Kind, values.Get(key))
			if err != nil {
				return nil, &Error{Key: key, Err: err}
			}
			if rule != "" && v != nil {
				if err = v.Var(val, rule); err != nil {
					return nil, &Error{Key: key, Err: err}
				}
			}
			filters[key] = val
		}
	}
	return filters, nil
}

func convert(kind Kind, raw string) (any, error) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	case KindFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return n, nil
	default:
		return raw, nil
	}
}
