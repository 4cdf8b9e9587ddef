// Package legacy reads and writes the legacy .opentcs document tree. Every
// component is one YAML mapping tagged with its kind, e.g. !point, and
// carries all of its properties generically with type and unit.
package legacy

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sumandas0/plantmodel/internal/codec"
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/store"
	"github.com/sumandas0/plantmodel/pkg/utils"
	"gopkg.in/yaml.v3"
)

var (
	_ codec.Importer = (*Converter)(nil)
	_ codec.Exporter = (*Converter)(nil)
)

type Converter struct {
	logger zerolog.Logger
}

func NewConverter(logger zerolog.Logger) *Converter {
	return &Converter{logger: logger}
}

func (c *Converter) Format() string {
	return codec.FormatLegacy
}

// Parse reads a legacy document. Components come back sorted by kind so
// that references can be validated regardless of file order.
func (c *Converter) Parse(r io.Reader) (*codec.Fragment, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, utils.NewAppError(utils.CodeInvalidInput, "empty legacy plant model", err)
		}
		return nil, utils.NewAppError(utils.CodeInvalidInput, "malformed legacy plant model", err)
	}
	if doc.Version != Version {
		c.logger.Debug().Str("version", doc.Version).Msg("reading legacy document of another version")
	}

	f := codec.NewFragment(doc.Name)
	if doc.Components.Kind != 0 && doc.Components.Kind != yaml.SequenceNode {
		return nil, utils.NewAppError(utils.CodeInvalidInput, "legacy components must be a sequence", nil).
			WithDetail("line", doc.Components.Line)
	}
	for i, node := range doc.Components.Content {
		e, problems := c.decodeComponent(i, node)
		for _, p := range problems {
			f.Problem(p)
		}
		if e != nil {
			f.Add(e)
		}
	}
	f.SortByKind()

	c.logger.Debug().
		Str("model", doc.Name).
		Int("components", len(f.Components)).
		Int("problems", len(f.Problems)).
		Msg("legacy model imported")
	return f, nil
}

func (c *Converter) decodeComponent(index int, node *yaml.Node) (*models.Entity, []string) {
	kind := models.Kind(strings.TrimPrefix(node.Tag, "!"))
	if !kind.Valid() {
		return nil, []string{fmt.Sprintf("component #%d (line %d): unknown tag %q", index+1, node.Line, node.Tag)}
	}

	plain := *node
	plain.Tag = ""
	var comp component
	if err := plain.Decode(&comp); err != nil {
		return nil, []string{fmt.Sprintf("component #%d (line %d): %v", index+1, node.Line, err)}
	}
	if comp.Name == "" {
		return nil, []string{fmt.Sprintf("%s #%d (line %d): name is required", kind.Label(), index+1, node.Line)}
	}

	var problems []string
	e := models.NewEntity(kind, comp.Name)
	for _, in := range comp.Properties {
		p, err := decodeProperty(in)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s %q: %v", kind.Label(), comp.Name, err))
			continue
		}
		e.SetProperty(in.Key, p)
	}
	return e, problems
}

// Export writes every component of model. Presentation-only properties are
// derived data and are not written.
func (c *Converter) Export(model store.ModelStore, w io.Writer) error {
	if model == nil {
		return utils.NewAppError(utils.CodePrecondition, "export requires a model", nil)
	}

	seq := yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, e := range model.Components() {
		if !e.Kind.Valid() {
			return utils.NewAppError(utils.CodeInvalidInput, "unsupported component kind", nil).
				WithDetail("name", e.Name).
				WithDetail("kind", string(e.Kind))
		}
		comp := component{Name: e.Name}
		for _, key := range e.Keys() {
			if models.IsPresentationKey(key) {
				continue
			}
			comp.Properties = append(comp.Properties, encodeProperty(key, e.Property(key)))
		}
		var node yaml.Node
		if err := node.Encode(comp); err != nil {
			return utils.NewAppError(utils.CodeInternal, "failed to encode component", err).
				WithDetail("name", e.Name)
		}
		node.Tag = "!" + string(e.Kind)
		seq.Content = append(seq.Content, &node)
	}

	doc := document{Version: Version, Name: model.Name(), Components: seq}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to write legacy plant model", err)
	}
	if err := enc.Close(); err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to write legacy plant model", err)
	}
	return nil
}
