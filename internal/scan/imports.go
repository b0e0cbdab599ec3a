package scan

import (
	"regexp"
	"strings"

	"plainclass/internal/ast"
)

const (
	dataclassesModule = "dataclasses"
	typingModule      = "typing"

	NameDataclass = "dataclass"
	NameField     = "field"
	NameKwOnly    = "KW_ONLY"
	NameInitVar   = "InitVar"
	NameClassVar  = "ClassVar"
	NameFrozen    = "FrozenInstanceError"
)

// Imports records how the unit reaches the dataclasses and typing names.
type Imports struct {
	// bound name -> original name imported from dataclasses
	fromDataclasses map[string]string
	fromTyping      map[string]string
	// aliases of 'import dataclasses' / 'import typing'
	modules []string
	typing  []string
	star    bool
	// typingStar is 'from typing import *'
	typingStar bool

	// From and Plain are the top-level dataclasses imports the emitter may prune.
	From  []ast.StmtID
	Plain []ast.StmtID
}

func newImports() *Imports {
	return &Imports{
		fromDataclasses: make(map[string]string),
		fromTyping:      make(map[string]string),
	}
}

func (im *Imports) collect(b *ast.Builder, id ast.StmtID, topLevel bool) {
	if imp, ok := b.Stmts.Import(id); ok {
		for _, a := range imp.Names {
			bound := b.BoundName(a)
			switch {
			case a.Name == dataclassesModule:
				im.modules = append(im.modules, bound)
				if topLevel {
					im.Plain = append(im.Plain, id)
				}
			case a.Name == typingModule:
				im.typing = append(im.typing, bound)
			}
		}
		return
	}
	from, ok := b.Stmts.ImportFrom(id)
	if !ok || from.Level != 0 {
		return
	}
	var target map[string]string
	switch from.Module {
	case dataclassesModule:
		target = im.fromDataclasses
		if topLevel {
			im.From = append(im.From, id)
		}
	case typingModule, "typing_extensions":
		target = im.fromTyping
	default:
		return
	}
	if from.Star {
		if from.Module == dataclassesModule {
			im.star = true
		} else {
			im.typingStar = true
		}
		return
	}
	for _, a := range from.Names {
		target[b.BoundName(a)] = a.Name
	}
}

// Any reports whether the unit imports dataclasses in any form.
func (im *Imports) Any() bool {
	return im.star || len(im.fromDataclasses) > 0 || len(im.modules) > 0
}

// Module returns the first alias of 'import dataclasses', "" without one.
func (im *Imports) Module() string {
	if len(im.modules) == 0 {
		return ""
	}
	return im.modules[0]
}

// Bound returns the local name of a dataclasses member imported by name.
func (im *Imports) Bound(original string) (string, bool) {
	for bound, orig := range im.fromDataclasses {
		if orig == original {
			return bound, true
		}
	}
	return "", false
}

// refersTo reports whether a dotted name denotes dataclasses.<original>.
func (im *Imports) refersTo(dotted, original string) bool {
	if orig, ok := im.fromDataclasses[dotted]; ok {
		return orig == original
	}
	if dotted == original && (im.star || !im.Any() || original == NameDataclass) {
		// голое имя: '*'-импорт или файл без импорта dataclasses
		return true
	}
	mod, name, ok := strings.Cut(dotted, ".")
	if !ok || name != original {
		return false
	}
	for _, alias := range im.modules {
		if alias == mod {
			return true
		}
	}
	return false
}

// refersToTyping reports whether a dotted name denotes typing.<original>. Unlike
// the dataclasses names, an unbound ClassVar is an ordinary annotation.
func (im *Imports) refersToTyping(dotted, original string) bool {
	if orig, ok := im.fromTyping[dotted]; ok {
		return orig == original
	}
	if dotted == original {
		return im.typingStar
	}
	mod, name, ok := strings.Cut(dotted, ".")
	if !ok || name != original {
		return false
	}
	for _, alias := range im.typing {
		if alias == mod {
			return true
		}
	}
	return false
}

// AnnotationKind classifies a field annotation.
type AnnotationKind uint8

const (
	AnnotationPlain AnnotationKind = iota
	AnnotationClassVar
	AnnotationInitVar
	AnnotationKwOnly
)

var moduleIdentifier = regexp.MustCompile(`^(?:\s*(\w+)\s*\.)?\s*(\w+)`)

// Classify inspects an annotation the way dataclasses does: ClassVar and InitVar
// with or without a subscript, their qualified forms and string annotations.
func (im *Imports) Classify(b *ast.Builder, ann ast.ExprID, text string) AnnotationKind {
	head := b.Exprs.Unparen(ann)
	if sub, ok := b.Exprs.Subscript(head); ok {
		head = sub.Target
	}
	if dotted, ok := b.DottedName(head); ok {
		return im.classifyName(dotted)
	}
	if c, ok := b.Exprs.Const(head); ok && c.Kind == ast.ConstString && c.Parts == 1 {
		m := moduleIdentifier.FindStringSubmatch(unquote(text))
		if m == nil {
			return AnnotationPlain
		}
		dotted := m[2]
		if m[1] != "" {
			dotted = m[1] + "." + m[2]
		}
		return im.classifyName(dotted)
	}
	return AnnotationPlain
}

func (im *Imports) classifyName(dotted string) AnnotationKind {
	switch {
	case im.refersToTyping(dotted, NameClassVar):
		return AnnotationClassVar
	case im.refersTo(dotted, NameInitVar):
		return AnnotationInitVar
	case im.refersTo(dotted, NameKwOnly):
		return AnnotationKwOnly
	}
	return AnnotationPlain
}

// IsField reports whether callee denotes dataclasses.field.
func (im *Imports) IsField(b *ast.Builder, callee ast.ExprID) bool {
	dotted, ok := b.DottedName(callee)
	return ok && im.refersTo(dotted, NameField)
}

// unquote strips a string prefix and quotes; escapes are left alone.
func unquote(lit string) string {
	lit = strings.TrimLeft(lit, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) && len(lit) >= 2*len(q) {
			return lit[len(q) : len(lit)-len(q)]
		}
	}
	return lit
}
