// Package validate checks the ordering and configuration rules of marked classes
// before any code is generated for them.
package validate

import (
	"slices"
	"strings"

	"plainclass/internal/diag"
	"plainclass/internal/model"
	"plainclass/internal/source"
)

var orderingMethods = []string{"__lt__", "__le__", "__gt__", "__ge__"}

// Validate checks every marked class of the unit in source order. A failing class
// is marked on its ClassSpec; subclasses of a failed class fail with it.
func Validate(u *model.Unit, sentinel string) {
	for _, c := range u.Classes {
		if !c.CarriesFields() || c.Failed() {
			continue
		}
		if base := c.FailedBase(); base != nil {
			c.FailWithBase(base)
			continue
		}
		if !c.Marked {
			continue
		}
		c.Fail(Class(u, c, sentinel))
	}
}

// Class runs the checks on one class with resolved fields and returns the first failure.
func Class(u *model.Unit, c *model.ClassSpec, sentinel string) *diag.Diagnostic {
	if d := ordering(c); d != nil {
		return d
	}
	if d := reserved(c, sentinel); d != nil {
		return d
	}
	if d := configuration(u, c); d != nil {
		return d
	}
	return reachable(c)
}

// initParams is what the generated constructor takes, in effective order.
func initParams(c *model.ClassSpec) []*model.FieldSpec {
	return c.Select(func(f *model.FieldSpec) bool { return f.Init })
}

func generatesInit(c *model.ClassSpec) bool {
	return c.Options.Init && !c.Defines("__init__")
}

// ordering reports the first positional parameter without a default that follows one with a default.
func ordering(c *model.ClassSpec) *diag.Diagnostic {
	if !c.Options.Init {
		return nil
	}
	var seen *model.FieldSpec
	for _, f := range initParams(c) {
		if f.KwOnly {
			continue
		}
		if f.HasDefault() {
			if seen == nil {
				seen = f
			}
			continue
		}
		if seen != nil {
			d := diag.Errorf(diag.OrdNonDefaultAfterDefault, f.Span,
				"non-default argument '%s' follows default argument '%s'", f.Name, seen.Name)
			if seen.Owner == c {
				*d = d.WithNote(seen.Span, "default declared here")
			}
			return d
		}
	}
	return nil
}

// reserved rejects parameter names that would shadow identifiers the
// constructor body reads.
func reserved(c *model.ClassSpec, sentinel string) *diag.Diagnostic {
	if !generatesInit(c) {
		return nil
	}
	taken := map[string]string{"self": "the instance parameter"}
	if c.Options.Frozen {
		taken["object"] = "object.__setattr__ used by frozen construction"
	}
	for _, f := range c.Fields() {
		if f.Default != model.DefaultFactory {
			continue
		}
		if f.Init {
			taken[sentinel] = "the default factory sentinel"
		}
		for _, name := range f.Value.FreeNames {
			if _, ok := taken[name]; !ok {
				taken[name] = "the default factory of " + f.Name
			}
		}
	}
	for _, f := range initParams(c) {
		if why, ok := taken[f.Name]; ok {
			return diag.Errorf(diag.CfgReservedName, f.Span,
				"field name '%s' conflicts with %s in the generated __init__", f.Name, why)
		}
	}
	return nil
}

func configuration(u *model.Unit, c *model.ClassSpec) *diag.Diagnostic {
	o := c.Options
	if o.Order && !o.Eq {
		return diag.Errorf(diag.CfgOrderWithoutEq, c.Marker.Span, "eq must be true if order is true")
	}
	if c.HashAction() == model.HashConflict {
		return diag.Errorf(diag.CfgHashDefined, memberSpan(c, "__hash__"),
			"cannot overwrite attribute __hash__ in class %s", c.Name)
	}
	if o.Order {
		for _, name := range orderingMethods {
			if c.Defines(name) {
				return diag.Errorf(diag.CfgOrderDefined, memberSpan(c, name),
					"cannot overwrite attribute %s in class %s; consider using functools.total_ordering", name, c.Name)
			}
		}
	}
	if o.Frozen {
		for _, name := range []string{"__setattr__", "__delattr__"} {
			if c.Defines(name) {
				return diag.Errorf(diag.CfgFrozenSetattr, memberSpan(c, name),
					"cannot overwrite attribute %s in class %s", name, c.Name)
			}
		}
	}
	return frozenInheritance(u, c)
}

// frozenInheritance mirrors the interpreter: look at every ancestor carrying fields.
func frozenInheritance(u *model.Unit, c *model.ClassSpec) *diag.Diagnostic {
	hasBases, anyFrozen := false, false
	for _, name := range c.MRO[1:] {
		anc, ok := u.Lookup(name)
		if !ok || !anc.CarriesFields() {
			continue
		}
		hasBases = true
		if p, ok := anc.Params(); ok && p.Frozen {
			anyFrozen = true
		}
	}
	if !hasBases {
		return nil
	}
	switch {
	case anyFrozen && !c.Options.Frozen:
		return diag.Errorf(diag.CfgFrozenInheritance, c.Span, "cannot inherit non-frozen dataclass %s from a frozen one", c.Name)
	case !anyFrozen && c.Options.Frozen:
		return diag.Errorf(diag.CfgFrozenInheritance, c.Span, "cannot inherit frozen dataclass %s from a non-frozen one", c.Name)
	}
	return nil
}

// reachable checks that the class attribute holding an inherited non-constant
// default can be named from the constructor signature.
func reachable(c *model.ClassSpec) *diag.Diagnostic {
	if !generatesInit(c) {
		return nil
	}
	for _, f := range initParams(c) {
		if f.Origin != model.OriginInherited || f.Default != model.DefaultLiteral || f.Constant {
			continue
		}
		if !Reachable(c, f.Owner) {
			return diag.Errorf(diag.CfgUnreachableDefault, c.Span,
				"default of inherited field '%s' lives on %s, which cannot be named from %s",
				f.Name, f.Owner.QualName, c.Name)
		}
	}
	return nil
}

// Reachable reports whether owner can be named by Owner.Path while the body of c runs.
func Reachable(c, owner *model.ClassSpec) bool {
	if owner.Home != "" && !slices.Contains(c.LookupScopes, owner.Home) {
		return false
	}
	root, _, _ := strings.Cut(owner.Path, ".")
	// the enclosing class is bound only after its body completes
	return !strings.HasPrefix(c.QualName, owner.Home+root+".")
}

func memberSpan(c *model.ClassSpec, name string) source.Span {
	if m, ok := c.Members[name]; ok {
		return m.Span
	}
	return c.Span
}
