package scan

import (
	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/model"
	"plainclass/internal/source"
)

var knownKeys = map[string]bool{
	model.KeyInit:        true,
	model.KeyRepr:        true,
	model.KeyEq:          true,
	model.KeyOrder:       true,
	model.KeyUnsafeHash:  true,
	model.KeyFrozen:      true,
	model.KeyMatchArgs:   true,
	model.KeyKwOnly:      true,
	model.KeySlots:       true,
	model.KeyWeakrefSlot: true,
}

// options reads '@dataclass(key=True, ...)'. Anything outside the recognised
// keys and literal booleans fails the class.
func (s *scanner) options(spec *model.ClassSpec, x ast.ExprID) {
	call, ok := s.b.Exprs.Call(x)
	if !ok {
		return
	}
	for _, arg := range call.Args {
		span := s.b.Exprs.Get(arg).Span
		if _, starred := s.b.Exprs.Starred(arg); starred {
			spec.Fail(diag.Errorf(diag.OptStarArgs, span, "unpacked arguments to the dataclass decorator are not supported"))
		} else {
			spec.Fail(diag.Errorf(diag.OptPositional, span, "the dataclass decorator takes keyword arguments only"))
		}
		return
	}

	seen := make(map[string]bool, len(call.Keywords))
	for _, kw := range call.Keywords {
		if kw.Name == source.NoStringID {
			spec.Fail(diag.Errorf(diag.OptStarArgs, kw.Span, "'**' arguments to the dataclass decorator are not supported"))
			return
		}
		key := s.b.Text(kw.Name)
		if !knownKeys[key] {
			spec.Fail(diag.Errorf(diag.OptUnknownKey, kw.NameSpan, "unsupported dataclass option '%s'", key))
			return
		}
		if seen[key] {
			spec.Fail(diag.Errorf(diag.OptBadValue, kw.NameSpan, "dataclass option '%s' given more than once", key))
			return
		}
		seen[key] = true

		value, isBool := boolValue(s.b, kw.Value)
		if !isBool {
			spec.Fail(diag.Errorf(diag.OptBadValue, s.b.Exprs.Get(kw.Value).Span,
				"dataclass option '%s' must be True or False", key))
			return
		}
		switch key {
		case model.KeySlots, model.KeyWeakrefSlot:
			if value {
				spec.Fail(diag.Errorf(diag.OptNotSupported, kw.Span, "dataclass option '%s=True' is not supported", key))
				return
			}
			spec.Options.Explicit = append(spec.Options.Explicit, key)
		default:
			spec.Options.Set(key, value)
		}
	}
}

// boolValue accepts only the literals True and False.
func boolValue(b *ast.Builder, x ast.ExprID) (value, ok bool) {
	c, ok := b.Exprs.Const(b.Exprs.Unparen(x))
	if !ok {
		return false, false
	}
	switch c.Kind {
	case ast.ConstTrue:
		return true, true
	case ast.ConstFalse:
		return false, true
	}
	return false, false
}
