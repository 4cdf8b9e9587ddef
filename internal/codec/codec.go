// Package codec defines the contracts shared by the plant model converters.
package codec

import (
	"io"
	"sort"

	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/store"
)

const (
	FormatLegacy  = "opentcs"
	FormatUnified = "xml"
)

// Importer converts a serialized model into raw, unvalidated components.
type Importer interface {
	Parse(r io.Reader) (*Fragment, error)
	Format() string
}

// Exporter serializes every component of a model.
type Exporter interface {
	Export(model store.ModelStore, w io.Writer) error
	Format() string
}

// Fragment is the result of a conversion: components in dependency order
// plus problems that kept individual records from being converted.
type Fragment struct {
	ModelName  string
	Components []*models.Entity
	Problems   []string
}

func NewFragment(name string) *Fragment {
	return &Fragment{ModelName: name}
}

func (f *Fragment) Add(e *models.Entity) {
	f.Components = append(f.Components, e)
}

func (f *Fragment) Problem(msg string) {
	f.Problems = append(f.Problems, msg)
}

// SortByKind orders components so that referenced kinds come first.
// Components of the same kind keep their relative order.
func (f *Fragment) SortByKind() {
	sort.SliceStable(f.Components, func(i, j int) bool {
		return f.Components[i].Kind.Rank() < f.Components[j].Kind.Rank()
	})
}
