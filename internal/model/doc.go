// Package model holds the per-unit semantic model of marked classes:
// resolved options, fields and the inheritance chain. Everything here is
// built for one unit and dropped after emission.
package model
