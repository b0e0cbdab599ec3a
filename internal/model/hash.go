package model

// HashAction is what the marker does with __hash__.
type HashAction uint8

const (
	// HashKeep leaves the class attribute (or the inherited one) alone.
	HashKeep HashAction = iota
	// HashNone sets '__hash__ = None'.
	HashNone
	// HashAdd generates a field-tuple hash.
	HashAdd
	// HashConflict is unsafe_hash=True next to an explicit __hash__.
	HashConflict
)

func (a HashAction) String() string {
	switch a {
	case HashNone:
		return "none"
	case HashAdd:
		return "add"
	case HashConflict:
		return "conflict"
	}
	return "keep"
}

// ExplicitHash reports a __hash__ bound in the body. '__hash__ = None' next to a
// user __eq__ is what the interpreter writes for any class defining __eq__, so it
// does not count.
func (c *ClassSpec) ExplicitHash() bool {
	m, ok := c.Members["__hash__"]
	if !ok {
		return false
	}
	return !(m.NoneValue && c.Defines("__eq__"))
}

// HashAction applies the marker's table over unsafe_hash, eq, frozen and the
// presence of an explicit hash.
func (c *ClassSpec) HashAction() HashAction {
	o := c.Options
	explicit := c.ExplicitHash()
	switch {
	case o.UnsafeHash && explicit:
		return HashConflict
	case o.UnsafeHash:
		return HashAdd
	case explicit || !o.Eq:
		return HashKeep
	case o.Frozen:
		return HashAdd
	}
	return HashNone
}
