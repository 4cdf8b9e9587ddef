// Package unified converts plant models to and from the unified transfer
// object format shared with the plant-control kernel.
package unified

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/sumandas0/plantmodel/internal/codec"
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/store"
	"github.com/sumandas0/plantmodel/pkg/plantmodel"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

var (
	_ codec.Importer = (*Converter)(nil)
	_ codec.Exporter = (*Converter)(nil)
)

// Converter maps between entities and plantmodel transfer objects.
type Converter struct {
	logger   zerolog.Logger
	validate *validator.Validate
}

func NewConverter(logger zerolog.Logger) *Converter {
	return &Converter{
		logger:   logger,
		validate: validator.New(),
	}
}

func (c *Converter) Format() string {
	return codec.FormatUnified
}

// Parse decodes a unified XML document and imports it.
func (c *Converter) Parse(r io.Reader) (*codec.Fragment, error) {
	m, err := plantmodel.Decode(r)
	if err != nil {
		return nil, utils.NewAppError(utils.CodeInvalidInput, "malformed unified plant model", err)
	}
	return c.Import(m), nil
}

// Import converts a transfer object graph into raw components in dependency
// order. Records failing the structural checks are reported and skipped.
func (c *Converter) Import(m *plantmodel.Model) *codec.Fragment {
	f := codec.NewFragment(m.Name)
	ov := NewOverlay(m.VisualLayouts)
	if n := ov.Ignored(); n > 0 {
		c.logger.Debug().Int("ignored", n).Msg("only the first visual layout is used")
	}

	if len(m.VisualLayouts) > 0 && c.checkTransfer(f, models.KindLayout, 0, &m.VisualLayouts[0]) {
		f.Add(ImportLayout(m.VisualLayouts[0]))
	}
	for i := range m.Points {
		if c.checkTransfer(f, models.KindPoint, i, &m.Points[i]) {
			f.Add(ImportPoint(m.Points[i], ov))
		}
	}
	for i := range m.LocationTypes {
		if c.checkTransfer(f, models.KindLocationType, i, &m.LocationTypes[i]) {
			f.Add(ImportLocationType(m.LocationTypes[i]))
		}
	}
	var links []*models.Entity
	for i := range m.Locations {
		loc := m.Locations[i]
		if !c.checkTransfer(f, models.KindLocation, i, &loc) {
			continue
		}
		f.Add(ImportLocation(loc, ov))
		kept := loc.Links[:0:0]
		for j := range loc.Links {
			if c.checkTransfer(f, models.KindLink, j, &loc.Links[j]) {
				kept = append(kept, loc.Links[j])
			}
		}
		loc.Links = kept
		links = append(links, ImportLinks(loc)...)
	}
	for _, l := range links {
		f.Add(l)
	}
	for i := range m.Paths {
		if c.checkTransfer(f, models.KindPath, i, &m.Paths[i]) {
			f.Add(ImportPath(m.Paths[i], ov))
		}
	}
	for i := range m.Blocks {
		if c.checkTransfer(f, models.KindBlock, i, &m.Blocks[i]) {
			f.Add(ImportBlock(m.Blocks[i], ov))
		}
	}
	for i := range m.Groups {
		if c.checkTransfer(f, models.KindGroup, i, &m.Groups[i]) {
			f.Add(ImportGroup(m.Groups[i]))
		}
	}
	for i := range m.StaticRoutes {
		if c.checkTransfer(f, models.KindStaticRoute, i, &m.StaticRoutes[i]) {
			f.Add(ImportStaticRoute(m.StaticRoutes[i], ov))
		}
	}
	for i := range m.Vehicles {
		if c.checkTransfer(f, models.KindVehicle, i, &m.Vehicles[i]) {
			f.Add(ImportVehicle(m.Vehicles[i], ov))
		}
	}

	c.logger.Debug().
		Str("model", m.Name).
		Int("components", len(f.Components)).
		Int("problems", len(f.Problems)).
		Msg("unified model imported")
	return f
}

// checkTransfer runs the struct tag checks of a transfer object.
func (c *Converter) checkTransfer(f *codec.Fragment, kind models.Kind, index int, to interface{}) bool {
	err := c.validate.Struct(to)
	if err == nil {
		return true
	}
	label := fmt.Sprintf("%s #%d", kind.Label(), index+1)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		f.Problem(fmt.Sprintf("%s: %v", label, err))
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			f.Problem(fmt.Sprintf("%s: %s is required", label, fe.Namespace()))
			continue
		}
		f.Problem(fmt.Sprintf("%s: %s failed the %q check", label, fe.Namespace(), fe.Tag()))
	}
	return false
}

// Export encodes model as a unified XML document.
func (c *Converter) Export(model store.ModelStore, w io.Writer) error {
	m, err := c.ExportModel(model)
	if err != nil {
		return err
	}
	if err := plantmodel.Encode(m, w); err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to write unified plant model", err)
	}
	return nil
}

// ExportModel builds the transfer object graph of model. The result is what
// a kernel accepts for model creation.
func (c *Converter) ExportModel(model store.ModelStore) (*plantmodel.Model, error) {
	if model == nil {
		return nil, utils.NewAppError(utils.CodePrecondition, "export requires a model", nil)
	}
	components := model.Components()

	linksByLocation := make(map[string][]*models.Entity)
	outgoing := make(map[string][]string)
	for _, e := range components {
		switch e.Kind {
		case models.KindLink:
			end := e.Text(models.KeyEndComponent)
			linksByLocation[end] = append(linksByLocation[end], e)
		case models.KindPath:
			start := e.Text(models.KeyStartComponent)
			outgoing[start] = append(outgoing[start], e.Name)
		}
	}

	m := &plantmodel.Model{Version: plantmodel.Version, Name: model.Name()}
	layout := ExportLayout(model.Layout())
	exported := make(map[string]bool)

	for _, e := range components {
		var el *plantmodel.ModelLayoutElement
		switch e.Kind {
		case models.KindLayout:
			continue
		case models.KindPoint:
			to, elem := ExportPoint(e, outgoing[e.Name])
			m.Points = append(m.Points, to)
			el = &elem
		case models.KindPath:
			to, elem := ExportPath(e)
			m.Paths = append(m.Paths, to)
			el = &elem
		case models.KindVehicle:
			to, elem := ExportVehicle(e)
			m.Vehicles = append(m.Vehicles, to)
			el = &elem
		case models.KindLocationType:
			m.LocationTypes = append(m.LocationTypes, ExportLocationType(e))
		case models.KindLocation:
			to, elem := ExportLocation(e, linksByLocation[e.Name])
			m.Locations = append(m.Locations, to)
			exported[e.Name] = true
			el = &elem
		case models.KindLink:
			// Written as part of the location it ends at.
		case models.KindBlock:
			to, elem := ExportBlock(e)
			m.Blocks = append(m.Blocks, to)
			el = &elem
		case models.KindGroup:
			m.Groups = append(m.Groups, ExportGroup(e))
		case models.KindStaticRoute:
			to, elem := ExportStaticRoute(e)
			m.StaticRoutes = append(m.StaticRoutes, to)
			el = &elem
		default:
			return nil, utils.NewAppError(utils.CodeInvalidInput, "unsupported component kind", nil).
				WithDetail("name", e.Name).
				WithDetail("kind", string(e.Kind))
		}
		if el != nil {
			layout.ModelLayoutElements = append(layout.ModelLayoutElements, *el)
		}
	}

	for location, links := range linksByLocation {
		if exported[location] {
			continue
		}
		for _, l := range links {
			c.logger.Warn().
				Str("component", l.Name).
				Str("location", location).
				Msg("link dropped from export, its location does not exist")
		}
	}

	m.VisualLayouts = []plantmodel.VisualLayout{layout}
	return m, nil
}
