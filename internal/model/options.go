package model

import (
	"slices"
	"strings"
)

// Option keys accepted by the marker.
const (
	KeyInit       = "init"
	KeyRepr       = "repr"
	KeyEq         = "eq"
	KeyOrder      = "order"
	KeyUnsafeHash = "unsafe_hash"
	KeyFrozen     = "frozen"
	KeyMatchArgs  = "match_args"
	KeyKwOnly     = "kw_only"
	// accepted only as False
	KeySlots       = "slots"
	KeyWeakrefSlot = "weakref_slot"
)

// Options are the resolved marker arguments.
type Options struct {
	Init       bool
	Repr       bool
	Eq         bool
	Order      bool
	UnsafeHash bool
	Frozen     bool
	MatchArgs  bool
	KwOnly     bool

	// Explicit lists the keys written at the marker, in source order.
	Explicit []string
}

// DefaultOptions mirrors a bare '@dataclass'.
func DefaultOptions() Options {
	return Options{
		Init:      true,
		Repr:      true,
		Eq:        true,
		MatchArgs: true,
	}
}

// Set assigns a boolean option; ok is false for keys that are not boolean switches.
func (o *Options) Set(key string, value bool) bool {
	switch key {
	case KeyInit:
		o.Init = value
	case KeyRepr:
		o.Repr = value
	case KeyEq:
		o.Eq = value
	case KeyOrder:
		o.Order = value
	case KeyUnsafeHash:
		o.UnsafeHash = value
	case KeyFrozen:
		o.Frozen = value
	case KeyMatchArgs:
		o.MatchArgs = value
	case KeyKwOnly:
		o.KwOnly = value
	default:
		return false
	}
	o.Explicit = append(o.Explicit, key)
	return true
}

func (o Options) IsExplicit(key string) bool {
	return slices.Contains(o.Explicit, key)
}

func (o Options) String() string {
	var sb strings.Builder
	flag := func(name string, on bool) {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		if on {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	}
	flag(KeyInit, o.Init)
	flag(KeyRepr, o.Repr)
	flag(KeyEq, o.Eq)
	flag(KeyOrder, o.Order)
	flag(KeyUnsafeHash, o.UnsafeHash)
	flag(KeyFrozen, o.Frozen)
	flag(KeyMatchArgs, o.MatchArgs)
	flag(KeyKwOnly, o.KwOnly)
	return sb.String()
}
