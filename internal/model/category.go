package model

import (
	"fmt"
	"strings"
)

// Category is one of the two feed groupings.
type Category string

const (
	CategoryIndian Category = "indian"
	CategoryGlobal Category = "global"
)

// Categories lists every category in tab order.
var Categories = []Category{CategoryIndian, CategoryGlobal}

// Label returns the display name used in tabs and messages.
func (c Category) Label() string {
	switch c {
	case CategoryIndian:
		return "Indian"
	case CategoryGlobal:
		return "Global"
	default:
		return string(c)
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryIndian || c == CategoryGlobal
}

// ParseCategory accepts "indian"/"global" in any case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q (want indian or global)", s)
	}
	return c, nil
}
