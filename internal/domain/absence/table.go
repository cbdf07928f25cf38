package absence

import (
	"sort"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/shopspring/decimal"
)

// Type describes how one absence code affects the ledger.
type Type struct {
	Code  string
	Label string
	// Counter is the counter the absence deducts from; empty when it deducts nothing.
	Counter               counter.Kind
	RequiresJustification bool
}

func (t Type) DeductsFromCounter() bool {
	return t.Counter != ""
}

// Table is the absence-type lookup consulted by the consolidation engine.
type Table struct {
	types map[string]Type
}

func NewTable(types ...Type) *Table {
	t := &Table{types: make(map[string]Type, len(types))}
	for _, typ := range types {
		t.types[typ.Code] = typ
	}
	return t
}

func (t *Table) Lookup(code string) (Type, bool) {
	typ, ok := t.types[code]
	return typ, ok
}

// All returns the known types ordered by code.
func (t *Table) All() []Type {
	out := make([]Type, 0, len(t.types))
	for _, typ := range t.types {
		out = append(out, typ)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Deductions splits absence days per counter kind. Codes missing from the
// table are returned separately and deduct nothing.
func (t *Table) Deductions(days map[string]decimal.Decimal) (map[counter.Kind]decimal.Decimal, []string) {
	out := make(map[counter.Kind]decimal.Decimal)
	var unknown []string

	codes := make([]string, 0, len(days))
	for code := range days {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		typ, ok := t.Lookup(code)
		if !ok {
			unknown = append(unknown, code)
			continue
		}
		if !typ.DeductsFromCounter() {
			continue
		}
		out[typ.Counter] = out[typ.Counter].Add(days[code])
	}
	return out, unknown
}
