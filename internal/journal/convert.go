package journal

import (
	"fmt"
	"strconv"

	"github.com/google/mangle/ast"
)

// atomize lifts a buffered fact into a Mangle atom.
func atomize(f Fact) ast.Atom {
	args := make([]ast.BaseTerm, len(f.Args))
	for i, arg := range f.Args {
		args[i] = constantOf(arg)
	}
	return ast.Atom{
		Predicate: ast.PredicateSym{Symbol: f.Predicate, Arity: len(f.Args)},
		Args:      args,
	}
}

// constantOf maps a Go value onto the closest Mangle constant. Unknown
// types fall back to their string form.
func constantOf(v interface{}) ast.Constant {
	switch val := v.(type) {
	case string:
		return ast.String(val)
	case bool:
		return ast.String(strconv.FormatBool(val))
	case int:
		return ast.Number(int64(val))
	case int64:
		return ast.Number(val)
	case float64:
		return ast.Float64(val)
	default:
		return ast.String(fmt.Sprintf("%v", v))
	}
}

// goValue lowers a Mangle term back to a plain Go value for query bindings.
func goValue(term ast.BaseTerm) interface{} {
	switch t := term.(type) {
	case nil:
		return nil
	case ast.Constant:
		switch t.Type {
		case ast.StringType:
			s, _ := t.StringValue()
			return s
		case ast.NumberType:
			return t.NumberValue
		case ast.Float64Type:
			if f, err := t.Float64Value(); err == nil {
				return f
			}
		}
		return t.String()
	case ast.Variable:
		return t.Symbol
	default:
		return fmt.Sprintf("%v", term)
	}
}
