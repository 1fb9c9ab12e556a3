package units

import (
	"sort"
	"strings"
)

// Selector picks which label of a unit definition applies to an order line.
type Selector string

const (
	// SelectorBase selects the definition's base unit label.
	SelectorBase Selector = "base"
	// SelectorSecondary selects the definition's secondary unit label.
	SelectorSecondary Selector = "secondary"
)

// Kind classifies a unit label for conversion purposes.
type Kind int

const (
	// KindGeneric covers every label priced one-to-one with quantity ("PCS").
	KindGeneric Kind = iota
	// KindTablet marks a loose tablet count priced per pack.
	KindTablet
	// KindStrip marks a strip (pack) count.
	KindStrip
)

// GenericLabel is used whenever a line has no resolvable unit.
const GenericLabel = "PCS"

func (k Kind) String() string {
	switch k {
	case KindTablet:
		return "tablet"
	case KindStrip:
		return "strip"
	default:
		return "generic"
	}
}

// Conversion describes a display-only conversion rule between two labels.
type Conversion struct {
	FromUnit string  `json:"fromUnit"`
	ToUnit   string  `json:"toUnit"`
	Factor   float64 `json:"factor"`
}

// Definition is the reference data for one unit id.
type Definition struct {
	UnitID        int64        `json:"unitId"`
	BaseUnit      string       `json:"baseUnit"`
	SecondaryUnit string       `json:"secondaryUnit"`
	Conversions   []Conversion `json:"conversions,omitempty"`
}

// Table indexes unit definitions by id. The zero value is an empty table.
type Table struct {
	byID map[int64]Definition
}

// NewTable builds a lookup table. Later duplicates win.
func NewTable(defs []Definition) Table {
	byID := make(map[int64]Definition, len(defs))
	for _, def := range defs {
		byID[def.UnitID] = def
	}
	return Table{byID: byID}
}

// Lookup returns the definition for id.
func (t Table) Lookup(id int64) (Definition, bool) {
	if t.byID == nil {
		return Definition{}, false
	}
	def, ok := t.byID[id]
	return def, ok
}

// Definitions returns the held definitions ordered by unit id.
func (t Table) Definitions() []Definition {
	out := make([]Definition, 0, len(t.byID))
	for _, def := range t.byID {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitID < out[j].UnitID })
	return out
}

// Len reports the number of definitions held.
func (t Table) Len() int { return len(t.byID) }

// ResolveLabel returns the base or secondary label of unitID. An unset (zero)
// or unknown id yields "", which callers price as a generic unit.
func ResolveLabel(unitID int64, selector Selector, table Table) string {
	if unitID == 0 {
		return ""
	}
	def, ok := table.Lookup(unitID)
	if !ok {
		return ""
	}
	if Selector(strings.ToLower(strings.TrimSpace(string(selector)))) == SelectorSecondary {
		return def.SecondaryUnit
	}
	return def.BaseUnit
}

// Classify maps a free-text label onto a conversion kind.
func Classify(label string) Kind {
	switch strings.ToLower(label) {
	case "tablet":
		return KindTablet
	case "strip":
		return KindStrip
	default:
		return KindGeneric
	}
}

// DisplayLabel returns label, or GenericLabel when it is blank.
func DisplayLabel(label string) string {
	if strings.TrimSpace(label) == "" {
		return GenericLabel
	}
	return label
}
