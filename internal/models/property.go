package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type PropertyType string

const (
	PropertyLength      PropertyType = "length"
	PropertyCoordinate  PropertyType = "coordinate"
	PropertyAngle       PropertyType = "angle"
	PropertyPercent     PropertyType = "percent"
	PropertySpeed       PropertyType = "speed"
	PropertyInteger     PropertyType = "integer"
	PropertyBoolean     PropertyType = "boolean"
	PropertyString      PropertyType = "string"
	PropertyStringSet   PropertyType = "string_set"
	PropertySelection   PropertyType = "selection"
	PropertyColor       PropertyType = "color"
	PropertyTriple      PropertyType = "triple"
	PropertyKeyValueSet PropertyType = "key_value_set"
)

// Numeric reports whether values of this type live in Property.Number.
func (t PropertyType) Numeric() bool {
	switch t {
	case PropertyLength, PropertyCoordinate, PropertyAngle, PropertyPercent, PropertySpeed, PropertyInteger:
		return true
	}
	return false
}

// KeyValue is one entry of an ordered key/value property bag.
type KeyValue struct {
	Key   string
	Value string
}

// Triple is an integer x/y/z position in millimetres.
type Triple struct {
	X int64
	Y int64
	Z int64
}

func (t Triple) String() string {
	return fmt.Sprintf("(%d,%d,%d)", t.X, t.Y, t.Z)
}

// Property is a typed, unit-aware value attached to an entity.
// Only the field matching Type is meaningful.
type Property struct {
	Type   PropertyType
	Unit   Unit
	Number float64
	Text   string
	Flag   bool
	Items  []string
	Pairs  []KeyValue
	Color  Color
	Triple *Triple

	// Changed is set whenever the value is modified after construction,
	// including repairs applied by validation.
	Changed bool
}

func NewLength(v float64, unit Unit) *Property {
	return &Property{Type: PropertyLength, Number: v, Unit: unit}
}

func NewCoordinate(v float64, unit Unit) *Property {
	return &Property{Type: PropertyCoordinate, Number: v, Unit: unit}
}

func NewAngle(deg float64) *Property {
	return &Property{Type: PropertyAngle, Number: deg, Unit: UnitDegree}
}

func NewPercent(v int) *Property {
	return &Property{Type: PropertyPercent, Number: float64(v), Unit: UnitPercent}
}

func NewSpeed(v float64, unit Unit) *Property {
	return &Property{Type: PropertySpeed, Number: v, Unit: unit}
}

func NewInteger(v int64) *Property {
	return &Property{Type: PropertyInteger, Number: float64(v)}
}

func NewBoolean(v bool) *Property {
	return &Property{Type: PropertyBoolean, Flag: v}
}

func NewString(s string) *Property {
	return &Property{Type: PropertyString, Text: s}
}

// NewStringSet builds an ordered set; duplicates are kept so validation can report them.
func NewStringSet(items ...string) *Property {
	return &Property{Type: PropertyStringSet, Items: append([]string(nil), items...)}
}

func NewSelection(variant string) *Property {
	return &Property{Type: PropertySelection, Text: variant}
}

func NewColor(c Color) *Property {
	return &Property{Type: PropertyColor, Color: c}
}

func NewTriple(x, y, z int64) *Property {
	return &Property{Type: PropertyTriple, Triple: &Triple{X: x, Y: y, Z: z}, Unit: UnitMM}
}

func NewKeyValueSet(pairs ...KeyValue) *Property {
	return &Property{Type: PropertyKeyValueSet, Pairs: append([]KeyValue(nil), pairs...)}
}

// Float returns the numeric value of the property. String properties are parsed,
// so text holding a number is accepted; anything else reports false.
func (p *Property) Float() (float64, bool) {
	if p == nil {
		return 0, false
	}
	if p.Type.Numeric() {
		return p.Number, true
	}
	if p.Type == PropertyString {
		v, err := strconv.ParseFloat(strings.TrimSpace(p.Text), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// Int returns the value rounded to the nearest integer.
func (p *Property) Int() (int64, bool) {
	if p != nil && p.Type == PropertyString {
		v, err := strconv.ParseInt(strings.TrimSpace(p.Text), 10, 64)
		return v, err == nil
	}
	v, ok := p.Float()
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int64(math.Round(v)), true
}

// ValueIn returns the numeric value converted to unit.
func (p *Property) ValueIn(unit Unit) (float64, error) {
	if p == nil {
		return 0, fmt.Errorf("property is missing")
	}
	v, ok := p.Float()
	if !ok {
		return 0, fmt.Errorf("property of type %s is not numeric", p.Type)
	}
	from := p.Unit
	if from == UnitNone {
		from = unit
	}
	return ConvertUnit(v, from, unit)
}

// String renders the value as plain text, the way it appears in key/value bags.
func (p *Property) String() string {
	if p == nil {
		return ""
	}
	switch p.Type {
	case PropertyBoolean:
		return strconv.FormatBool(p.Flag)
	case PropertyString, PropertySelection:
		return p.Text
	case PropertyStringSet:
		return strings.Join(p.Items, ",")
	case PropertyColor:
		return p.Color.String()
	case PropertyTriple:
		if p.Triple == nil {
			return ""
		}
		return p.Triple.String()
	case PropertyKeyValueSet:
		parts := make([]string, 0, len(p.Pairs))
		for _, kv := range p.Pairs {
			parts = append(parts, kv.Key+"="+kv.Value)
		}
		return strings.Join(parts, ",")
	default:
		return FormatNumber(p.Number)
	}
}

func (p *Property) SetNumber(v float64) {
	p.Number = v
	p.Changed = true
}

func (p *Property) SetText(s string) {
	p.Text = s
	p.Changed = true
}

func (p *Property) SetFlag(v bool) {
	p.Flag = v
	p.Changed = true
}

func (p *Property) SetItems(items []string) {
	p.Items = append([]string(nil), items...)
	p.Changed = true
}

// Lookup returns the value stored under key in a key/value set.
func (p *Property) Lookup(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, kv := range p.Pairs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Put sets key in a key/value set, keeping the position of an existing entry.
func (p *Property) Put(key, value string) {
	for i := range p.Pairs {
		if p.Pairs[i].Key == key {
			p.Pairs[i].Value = value
			p.Changed = true
			return
		}
	}
	p.Pairs = append(p.Pairs, KeyValue{Key: key, Value: value})
	p.Changed = true
}

// Delete removes key from a key/value set.
func (p *Property) Delete(key string) {
	for i := range p.Pairs {
		if p.Pairs[i].Key == key {
			p.Pairs = append(p.Pairs[:i], p.Pairs[i+1:]...)
			p.Changed = true
			return
		}
	}
}

// Clone returns a deep copy with the Changed flag preserved.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	c := *p
	c.Items = append([]string(nil), p.Items...)
	c.Pairs = append([]KeyValue(nil), p.Pairs...)
	if p.Triple != nil {
		t := *p.Triple
		c.Triple = &t
	}
	return &c
}

// FormatNumber renders v without a trailing ".0" for whole numbers.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
