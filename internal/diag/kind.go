package diag

// Kind classifies a failure for callers that only care about the category.
type Kind uint8

const (
	KindNone Kind = iota
	KindParse
	KindUnsupportedOption
	KindOrdering
	KindConfigConflict
	KindEmit
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindUnsupportedOption:
		return "UnsupportedOptionError"
	case KindOrdering:
		return "OrderingError"
	case KindConfigConflict:
		return "ConfigConflictError"
	case KindEmit:
		return "EmitError"
	}
	return "None"
}

// Kind maps the code range to its failure category.
func (c Code) Kind() Kind {
	switch ic := int(c); {
	case ic >= 1000 && ic < 3000:
		return KindParse
	case ic >= 3000 && ic < 4000:
		return KindUnsupportedOption
	case ic >= 4000 && ic < 5000:
		return KindOrdering
	case ic >= 5000 && ic < 6000:
		return KindConfigConflict
	case ic >= 6000 && ic < 7000:
		return KindEmit
	}
	return KindNone
}

// Internal reports whether the code signals a defect in the generator itself
// rather than a problem in the input.
func (c Code) Internal() bool {
	return c.Kind() == KindEmit
}
