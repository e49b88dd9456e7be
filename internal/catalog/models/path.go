package models

import (
	"fmt"
	"strings"
)

// Level is one of the five nested levels of the hierarchy.
type Level int

const (
	LevelSector Level = iota
	LevelModel
	LevelTypeCode
	LevelType
	LevelBay
)

// Levels lists every level outermost first.
var Levels = []Level{LevelSector, LevelModel, LevelTypeCode, LevelType, LevelBay}

var levelNames = [...]string{"sector", "model", "typecode", "type", "bay"}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l names a real level.
func (l Level) Valid() bool { return l >= LevelSector && l <= LevelBay }

// ParseLevel accepts a level name as printed by String.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == s {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// Path is an explicit key chain into the catalog. Fields right of the first
// empty one are ignored by every lookup.
type Path struct {
	Sector   string
	Model    string
	TypeCode string
	Type     string
	Bay      string
}

// Get returns the key at level l.
func (p Path) Get(l Level) string {
	switch l {
	case LevelSector:
		return p.Sector
	case LevelModel:
		return p.Model
	case LevelTypeCode:
		return p.TypeCode
	case LevelType:
		return p.Type
	case LevelBay:
		return p.Bay
	}
	return ""
}

// With returns a copy of p with the key at level l replaced.
func (p Path) With(l Level, key string) Path {
	switch l {
	case LevelSector:
		p.Sector = key
	case LevelModel:
		p.Model = key
	case LevelTypeCode:
		p.TypeCode = key
	case LevelType:
		p.Type = key
	case LevelBay:
		p.Bay = key
	}
	return p
}

// Prefix keeps the keys strictly left of level l and clears the rest.
func (p Path) Prefix(l Level) Path {
	var out Path
	for _, lv := range Levels {
		if lv >= l {
			break
		}
		out = out.With(lv, p.Get(lv))
	}
	return out
}

// Depth is the number of leading non-empty keys.
func (p Path) Depth() int {
	for i, lv := range Levels {
		if p.Get(lv) == "" {
			return i
		}
	}
	return len(Levels)
}

// Complete reports whether all five keys are set.
func (p Path) Complete() bool { return p.Depth() == len(Levels) }

func (p Path) String() string {
	parts := make([]string, 0, len(Levels))
	for _, lv := range Levels[:p.Depth()] {
		parts = append(parts, p.Get(lv))
	}
	return strings.Join(parts, "/")
}
