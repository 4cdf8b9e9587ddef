package persist

import (
	"fmt"
	"math"
	"sort"

	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/store"
)

const floatTolerance = 1e-9

// Equal reports whether two registries hold the same components with the
// same property values.
func Equal(a, b store.ModelStore) bool {
	return len(Diff(a, b)) == 0
}

// Diff lists the differences between two registries. Instance identity, the
// Changed flag, property order and presentation-only properties are ignored;
// numbers compare with unit conversion and a small tolerance.
func Diff(a, b store.ModelStore) []string {
	var diffs []string
	if a.Name() != b.Name() {
		diffs = append(diffs, fmt.Sprintf("model name %q != %q", a.Name(), b.Name()))
	}
	if a.Layout().Name != b.Layout().Name {
		diffs = append(diffs, fmt.Sprintf("layout name %q != %q", a.Layout().Name, b.Layout().Name))
	}
	diffs = append(diffs, diffProperties("layout", a.Layout(), b.Layout())...)

	seen := make(map[string]bool)
	for _, ea := range a.Components() {
		if ea.Kind == models.KindLayout {
			continue
		}
		seen[ea.Name] = true
		eb, ok := b.Lookup(ea.Name)
		if !ok {
			diffs = append(diffs, fmt.Sprintf("%q only in first model", ea.Name))
			continue
		}
		if ea.Kind != eb.Kind {
			diffs = append(diffs, fmt.Sprintf("%q is %s vs %s", ea.Name, ea.Kind, eb.Kind))
			continue
		}
		diffs = append(diffs, diffProperties(ea.Name, ea, eb)...)
	}
	for _, eb := range b.Components() {
		if eb.Kind != models.KindLayout && !seen[eb.Name] {
			diffs = append(diffs, fmt.Sprintf("%q only in second model", eb.Name))
		}
	}
	return diffs
}

func diffProperties(name string, a, b *models.Entity) []string {
	var diffs []string
	keys := make(map[string]bool)
	for _, k := range a.Keys() {
		keys[k] = true
	}
	for _, k := range b.Keys() {
		keys[k] = true
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		if !models.IsPresentationKey(k) {
			sorted = append(sorted, k)
		}
	}
	sort.Strings(sorted)

	for _, k := range sorted {
		pa, pb := a.Property(k), b.Property(k)
		switch {
		case pa == nil:
			diffs = append(diffs, fmt.Sprintf("%q: property %q only in second model", name, k))
		case pb == nil:
			diffs = append(diffs, fmt.Sprintf("%q: property %q only in first model", name, k))
		case !sameValue(pa, pb):
			diffs = append(diffs, fmt.Sprintf("%q: property %q is %q vs %q", name, k, pa.String(), pb.String()))
		}
	}
	return diffs
}

func sameValue(a, b *models.Property) bool {
	if a.Type != b.Type {
		return false
	}
	switch {
	case a.Type.Numeric():
		vb := b.Number
		if a.Unit != b.Unit && a.Unit != models.UnitNone && b.Unit != models.UnitNone {
			converted, err := models.ConvertUnit(b.Number, b.Unit, a.Unit)
			if err != nil {
				return false
			}
			vb = converted
		}
		return sameFloat(a.Number, vb)
	case a.Type == models.PropertyTriple:
		if a.Triple == nil || b.Triple == nil {
			return a.Triple == b.Triple
		}
		return *a.Triple == *b.Triple
	case a.Type == models.PropertyColor:
		return a.Color == b.Color
	case a.Type == models.PropertyBoolean:
		return a.Flag == b.Flag
	case a.Type == models.PropertyStringSet:
		return sameStrings(a.Items, b.Items)
	case a.Type == models.PropertyKeyValueSet:
		if len(a.Pairs) != len(b.Pairs) {
			return false
		}
		for i := range a.Pairs {
			if a.Pairs[i] != b.Pairs[i] {
				return false
			}
		}
		return true
	default:
		return a.Text == b.Text
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if a == b {
		return true
	}
	return math.Abs(a-b) <= floatTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
