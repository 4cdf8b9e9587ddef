// Package memory holds the in-memory registry of a plant model.
package memory

import (
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/store"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

// DefaultLayoutName is the name of the layout a fresh model starts with.
const DefaultLayoutName = "VLayout-01"

var _ store.ModelStore = (*SystemModel)(nil)

// SystemModel is the registry of all components of one plant model.
// Names are unique across all kinds and exactly one layout exists at any time.
// It is not safe for concurrent mutation.
type SystemModel struct {
	name   string
	byName map[string]*models.Entity
	order  []*models.Entity
	layout *models.Entity
}

// NewSystemModel returns an empty model holding only a default layout.
func NewSystemModel(name string) *SystemModel {
	m := &SystemModel{
		name:   name,
		byName: make(map[string]*models.Entity),
	}
	layout := models.NewComponent(models.KindLayout, DefaultLayoutName)
	m.layout = layout
	m.byName[layout.Name] = layout
	m.order = append(m.order, layout)
	return m
}

func (m *SystemModel) Name() string {
	return m.name
}

func (m *SystemModel) SetName(name string) {
	m.name = name
}

func (m *SystemModel) Lookup(name string) (*models.Entity, bool) {
	e, ok := m.byName[name]
	return e, ok
}

func (m *SystemModel) Layout() *models.Entity {
	return m.layout
}

// Add inserts entity. A layout is merged into the existing singleton: its
// properties overwrite those of the current layout and the singleton takes
// on its name.
func (m *SystemModel) Add(entity *models.Entity) error {
	if entity == nil {
		return utils.NewAppError(utils.CodePrecondition, "cannot add a nil component", nil)
	}
	if entity.Name == "" {
		return utils.NewAppError(utils.CodePrecondition, "cannot add an unnamed component", nil).
			WithDetail("kind", string(entity.Kind))
	}
	if !entity.Kind.Valid() {
		return utils.NewAppError(utils.CodeInvalidInput, "unsupported component kind", nil).
			WithDetail("kind", string(entity.Kind))
	}

	if entity.Kind == models.KindLayout {
		return m.mergeLayout(entity)
	}

	if existing, ok := m.byName[entity.Name]; ok {
		if existing.SameInstance(entity) {
			return nil
		}
		return utils.NewAppError(utils.CodeAlreadyExists, "component name already in use", nil).
			WithDetail("name", entity.Name).
			WithDetail("kind", string(existing.Kind))
	}

	m.byName[entity.Name] = entity
	m.order = append(m.order, entity)
	return nil
}

func (m *SystemModel) mergeLayout(layout *models.Entity) error {
	if layout.SameInstance(m.layout) {
		return nil
	}
	if existing, ok := m.byName[layout.Name]; ok && existing != m.layout {
		return utils.NewAppError(utils.CodeAlreadyExists, "component name already in use", nil).
			WithDetail("name", layout.Name).
			WithDetail("kind", string(existing.Kind))
	}
	for _, key := range layout.Keys() {
		m.layout.SetProperty(key, layout.Property(key).Clone())
	}
	delete(m.byName, m.layout.Name)
	m.layout.Name = layout.Name
	m.byName[m.layout.Name] = m.layout
	return nil
}

// Remove deletes the named component. The layout cannot be removed.
func (m *SystemModel) Remove(name string) (*models.Entity, bool) {
	e, ok := m.byName[name]
	if !ok || e == m.layout {
		return nil, false
	}
	delete(m.byName, name)
	for i, candidate := range m.order {
		if candidate == e {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return e, true
}

// Rename changes a component's name, keeping names unique.
func (m *SystemModel) Rename(oldName, newName string) error {
	if newName == "" {
		return utils.NewAppError(utils.CodePrecondition, "cannot rename to an empty name", nil)
	}
	e, ok := m.byName[oldName]
	if !ok {
		return utils.NewAppError(utils.CodeNotFound, "component not found", nil).
			WithDetail("name", oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := m.byName[newName]; taken {
		return utils.NewAppError(utils.CodeAlreadyExists, "component name already in use", nil).
			WithDetail("name", newName)
	}
	delete(m.byName, oldName)
	e.Name = newName
	m.byName[newName] = e
	return nil
}

func (m *SystemModel) Components() []*models.Entity {
	out := make([]*models.Entity, len(m.order))
	copy(out, m.order)
	return out
}

func (m *SystemModel) ComponentsOfKind(kind models.Kind) []*models.Entity {
	var out []*models.Entity
	for _, e := range m.order {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (m *SystemModel) Len() int {
	return len(m.order)
}

// Clone returns a deep copy of the model. Components keep their identity.
func (m *SystemModel) Clone() *SystemModel {
	c := &SystemModel{
		name:   m.name,
		byName: make(map[string]*models.Entity, len(m.byName)),
		order:  make([]*models.Entity, 0, len(m.order)),
	}
	for _, e := range m.order {
		ec := e.Clone()
		if e == m.layout {
			c.layout = ec
		}
		c.byName[ec.Name] = ec
		c.order = append(c.order, ec)
	}
	return c
}
