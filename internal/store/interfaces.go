package store

import (
	"github.com/sumandas0/plantmodel/internal/models"
)

// ComponentLookup is the read side of a plant model used for name resolution.
type ComponentLookup interface {
	Lookup(name string) (*models.Entity, bool)
	ComponentsOfKind(kind models.Kind) []*models.Entity
	Layout() *models.Entity
}

// ModelStore owns every component of one plant model, indexed by unique name.
type ModelStore interface {
	ComponentLookup

	Name() string
	SetName(name string)

	Add(entity *models.Entity) error
	Remove(name string) (*models.Entity, bool)
	Rename(oldName, newName string) error

	// Components returns all components in insertion order, the layout first.
	Components() []*models.Entity
	Len() int
}
