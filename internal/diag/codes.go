package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexBadDedent          Code = 1004
	LexUnbalancedBracket  Code = 1005
	LexBadContinuation    Code = 1006

	// Синтаксические
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectIdentifier  Code = 2002
	SynExpectColon       Code = 2003
	SynExpectExpression  Code = 2004
	SynUnclosedDelimiter Code = 2005
	SynExpectIndent      Code = 2006
	SynExpectNewline     Code = 2007
	SynBadDecorator      Code = 2008
	SynTooManyErrors     Code = 2009

	// Опции маркера и field(...), которые мы не умеем переписывать
	OptInfo          Code = 3000
	OptUnknownKey    Code = 3001
	OptBadValue      Code = 3002
	OptPositional    Code = 3003
	OptStarArgs      Code = 3004
	OptFieldArgument Code = 3005
	OptInlineBody    Code = 3006
	OptNotSupported  Code = 3007
	OptNestedField   Code = 3008

	// Порядок полей с дефолтами
	OrdInfo                   Code = 4000
	OrdNonDefaultAfterDefault Code = 4001

	// Конфликты конфигурации
	CfgInfo               Code = 5000
	CfgOrderWithoutEq     Code = 5001
	CfgHashDefined        Code = 5002
	CfgOrderDefined       Code = 5003
	CfgFrozenSetattr      Code = 5004
	CfgFrozenInheritance  Code = 5005
	CfgDuplicateMarker    Code = 5006
	CfgReservedName       Code = 5007
	CfgMutableDefault     Code = 5008
	CfgDefaultAndFactory  Code = 5009
	CfgDuplicateKwOnly    Code = 5010
	CfgClassVarDefault    Code = 5011
	CfgFieldNoAnnotation  Code = 5012
	CfgInitVarFactory     Code = 5013
	CfgUnreachableDefault Code = 5014
	CfgInconsistentMRO    Code = 5015

	// Эмиттер: внутренние дефекты генерации
	EmtInfo             Code = 6000
	EmtOverlappingEdits Code = 6001
	EmtReparseFailed    Code = 6002
	EmtMalformedNode    Code = 6003
	EmtBadAnchor        Code = 6004
)

var (
	codeDescription = map[Code]string{
		UnknownCode:               "Unknown error",
		LexInfo:                   "Lexical information",
		LexUnknownChar:            "Unknown character",
		LexUnterminatedString:     "Unterminated string literal",
		LexBadNumber:              "Bad number literal",
		LexBadDedent:              "Unindent does not match any outer indentation level",
		LexUnbalancedBracket:      "Unbalanced bracket",
		LexBadContinuation:        "Unexpected character after line continuation",
		SynInfo:                   "Syntax information",
		SynUnexpectedToken:        "Unexpected token",
		SynExpectIdentifier:       "Expect identifier",
		SynExpectColon:            "Expect colon",
		SynExpectExpression:       "Expect expression",
		SynUnclosedDelimiter:      "Unclosed delimiter",
		SynExpectIndent:           "Expect an indented block",
		SynExpectNewline:          "Expect end of statement",
		SynBadDecorator:           "Malformed decorator",
		SynTooManyErrors:          "Too many syntax errors",
		OptInfo:                   "Marker option information",
		OptUnknownKey:             "Unsupported marker option",
		OptBadValue:               "Marker option must be True or False",
		OptPositional:             "Positional marker arguments are not supported",
		OptStarArgs:               "Unpacked marker arguments are not supported",
		OptFieldArgument:          "Unsupported field() argument",
		OptInlineBody:             "Class body on the header line is not supported",
		OptNotSupported:           "Marker option value is not supported",
		OptNestedField:            "Annotated field inside a compound statement",
		OrdInfo:                   "Field order information",
		OrdNonDefaultAfterDefault: "Non-default argument follows default argument",
		CfgInfo:                   "Configuration information",
		CfgOrderWithoutEq:         "order=True requires eq=True",
		CfgHashDefined:            "unsafe_hash=True conflicts with an explicit __hash__",
		CfgOrderDefined:           "order=True conflicts with a user-defined ordering method",
		CfgFrozenSetattr:          "frozen=True conflicts with a user-defined __setattr__ or __delattr__",
		CfgFrozenInheritance:      "Frozen and non-frozen dataclasses cannot inherit from each other",
		CfgDuplicateMarker:        "Class is marked more than once",
		CfgReservedName:           "Field name collides with a generated identifier",
		CfgMutableDefault:         "Mutable default value",
		CfgDefaultAndFactory:      "Cannot specify both default and default_factory",
		CfgDuplicateKwOnly:        "KW_ONLY declared more than once",
		CfgClassVarDefault:        "ClassVar cannot use field() options",
		CfgFieldNoAnnotation:      "field() used without a type annotation",
		CfgInitVarFactory:         "InitVar cannot have a default factory",
		CfgUnreachableDefault:     "Inherited default is not reachable from this class scope",
		CfgInconsistentMRO:        "Cannot create a consistent method resolution order",
		EmtInfo:                   "Emitter information",
		EmtOverlappingEdits:       "Overlapping rewrite edits",
		EmtReparseFailed:          "Rewritten source does not parse",
		EmtMalformedNode:          "Malformed generated node",
		EmtBadAnchor:              "Cannot locate insertion point",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("OPT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("ORD%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("EMT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
