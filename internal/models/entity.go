package models

import (
	"github.com/google/uuid"
)

// Entity is one named component of a plant model. Properties are kept in
// insertion order so that exports are stable.
type Entity struct {
	ID   uuid.UUID
	Kind Kind
	Name string

	properties map[string]*Property
	order      []string
}

// NewEntity creates a bare entity carrying only its name.
func NewEntity(kind Kind, name string) *Entity {
	return &Entity{
		ID:         uuid.New(),
		Kind:       kind,
		Name:       name,
		properties: make(map[string]*Property),
	}
}

func (e *Entity) GetProperty(key string) (*Property, bool) {
	p, ok := e.properties[key]
	return p, ok
}

// Property returns the property stored under key, or nil.
func (e *Entity) Property(key string) *Property {
	return e.properties[key]
}

func (e *Entity) Has(key string) bool {
	_, ok := e.properties[key]
	return ok
}

func (e *Entity) SetProperty(key string, p *Property) {
	if e.properties == nil {
		e.properties = make(map[string]*Property)
	}
	if _, exists := e.properties[key]; !exists {
		e.order = append(e.order, key)
	}
	e.properties[key] = p
}

func (e *Entity) RemoveProperty(key string) {
	if _, exists := e.properties[key]; !exists {
		return
	}
	delete(e.properties, key)
	for i, k := range e.order {
		if k == key {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Keys returns property keys in insertion order.
func (e *Entity) Keys() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Text returns the text of a string or selection property, or "" when absent.
func (e *Entity) Text(key string) string {
	if p := e.properties[key]; p != nil {
		return p.Text
	}
	return ""
}

// Items returns the members of a string-set property.
func (e *Entity) Items(key string) []string {
	if p := e.properties[key]; p != nil {
		return p.Items
	}
	return nil
}

// Misc returns the miscellaneous key/value bag, creating it when missing.
func (e *Entity) Misc() *Property {
	p := e.properties[KeyMiscellaneous]
	if p == nil {
		p = NewKeyValueSet()
		e.SetProperty(KeyMiscellaneous, p)
	}
	return p
}

// Clone returns a deep copy sharing the instance identity of e.
func (e *Entity) Clone() *Entity {
	c := &Entity{
		ID:         e.ID,
		Kind:       e.Kind,
		Name:       e.Name,
		properties: make(map[string]*Property, len(e.properties)),
		order:      make([]string, len(e.order)),
	}
	copy(c.order, e.order)
	for k, p := range e.properties {
		c.properties[k] = p.Clone()
	}
	return c
}

// SameInstance reports whether e and other are the same component instance.
func (e *Entity) SameInstance(other *Entity) bool {
	return e != nil && other != nil && e.ID == other.ID
}
