package unified

import (
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/pkg/plantmodel"
)

func ExportLayout(e *models.Entity) plantmodel.VisualLayout {
	return plantmodel.VisualLayout{
		Name:       e.Name,
		ScaleX:     valueIn(e, models.KeyScaleX, models.UnitMM),
		ScaleY:     valueIn(e, models.KeyScaleY, models.UnitMM),
		Properties: exportMisc(e, "", ""),
	}
}

func ExportPoint(e *models.Entity, outgoing []string) (plantmodel.Point, plantmodel.ModelLayoutElement) {
	to := plantmodel.Point{
		Name:                    e.Name,
		XPosition:               valueIn(e, models.KeyModelXPosition, models.UnitMM),
		YPosition:               valueIn(e, models.KeyModelYPosition, models.UnitMM),
		VehicleOrientationAngle: valueIn(e, models.KeyVehicleOrientationAngle, models.UnitDegree),
		Type:                    e.Text(models.KeyPointType),
		OutgoingPaths:           plantmodel.Refs(outgoing),
		Properties:              exportMisc(e, "", ""),
	}
	return to, positionElement(e)
}

func ExportPath(e *models.Entity) (plantmodel.Path, plantmodel.ModelLayoutElement) {
	routingCost, _ := e.Property(models.KeyRoutingCost).Int()
	to := plantmodel.Path{
		Name:               e.Name,
		SourcePoint:        e.Text(models.KeyStartComponent),
		DestinationPoint:   e.Text(models.KeyEndComponent),
		Length:             valueIn(e, models.KeyLength, models.UnitMM),
		RoutingCost:        routingCost,
		MaxVelocity:        valueIn(e, models.KeyMaxVelocity, models.UnitMMPerSecond),
		MaxReverseVelocity: valueIn(e, models.KeyMaxReverseVelocity, models.UnitMMPerSecond),
		Locked:             flag(e, models.KeyLocked),
		Properties:         exportMisc(e, "", ""),
	}
	el := element(e.Name,
		KeyConnectionType, e.Text(models.KeyConnectionType),
		KeyControlPoints, e.Text(models.KeyControlPoints),
	)
	return to, el
}

func ExportVehicle(e *models.Entity) (plantmodel.Vehicle, plantmodel.ModelLayoutElement) {
	to := plantmodel.Vehicle{
		Name:                e.Name,
		Length:              valueIn(e, models.KeyLength, models.UnitMM),
		MaxVelocity:         valueIn(e, models.KeyMaxVelocity, models.UnitMMPerSecond),
		MaxReverseVelocity:  valueIn(e, models.KeyMaxReverseVelocity, models.UnitMMPerSecond),
		EnergyLevelCritical: percent(e, models.KeyEnergyLevelCritical),
		EnergyLevelGood:     percent(e, models.KeyEnergyLevelGood),
		EnergyLevel:         percent(e, models.KeyEnergyLevel),
		EnergyState:         e.Text(models.KeyEnergyState),
		Loaded:              flag(e, models.KeyLoaded),
		State:               e.Text(models.KeyVehicleState),
		ProcState:           e.Text(models.KeyProcState),
		IntegrationLevel:    e.Text(models.KeyIntegrationLevel),
		CurrentPoint:        e.Text(models.KeyCurrentPoint),
		NextPoint:           e.Text(models.KeyNextPoint),
		OrientationAngle:    valueIn(e, models.KeyOrientationAngle, models.UnitDegree),
		Properties:          exportMisc(e, "", ""),
	}
	if p := e.Property(models.KeyPrecisePosition); p != nil && p.Triple != nil {
		to.PrecisePosition = &plantmodel.PrecisePosition{X: p.Triple.X, Y: p.Triple.Y, Z: p.Triple.Z}
	}
	el := element(e.Name, KeyRouteColor, colorOf(e, models.KeyRouteColor, models.DefaultVehicleRouteColor))
	return to, el
}

func ExportLocationType(e *models.Entity) plantmodel.LocationType {
	return plantmodel.LocationType{
		Name:              e.Name,
		AllowedOperations: plantmodel.Refs(e.Items(models.KeyAllowedOperations)),
		Properties:        exportMisc(e, MiscLocationTypeSymbol, e.Text(models.KeySymbol)),
	}
}

// ExportLocation writes a location together with the links that end at it.
func ExportLocation(e *models.Entity, links []*models.Entity) (plantmodel.Location, plantmodel.ModelLayoutElement) {
	to := plantmodel.Location{
		Name:       e.Name,
		XPosition:  valueIn(e, models.KeyModelXPosition, models.UnitMM),
		YPosition:  valueIn(e, models.KeyModelYPosition, models.UnitMM),
		Type:       e.Text(models.KeyLocationType),
		Locked:     flag(e, models.KeyLocked),
		Properties: exportMisc(e, MiscLocationSymbol, e.Text(models.KeySymbol)),
	}
	for _, l := range links {
		to.Links = append(to.Links, plantmodel.Link{
			Point:             l.Text(models.KeyStartComponent),
			AllowedOperations: plantmodel.Refs(l.Items(models.KeyAllowedOperations)),
			Properties:        exportMisc(l, "", ""),
		})
	}
	return to, positionElement(e)
}

func ExportBlock(e *models.Entity) (plantmodel.Block, plantmodel.ModelLayoutElement) {
	to := plantmodel.Block{
		Name:       e.Name,
		Type:       e.Text(models.KeyBlockType),
		Members:    plantmodel.Refs(e.Items(models.KeyElements)),
		Properties: exportMisc(e, "", ""),
	}
	return to, element(e.Name, KeyColor, colorOf(e, models.KeyColor, models.DefaultBlockColor))
}

func ExportGroup(e *models.Entity) plantmodel.Group {
	return plantmodel.Group{
		Name:       e.Name,
		Members:    plantmodel.Refs(e.Items(models.KeyElements)),
		Properties: exportMisc(e, "", ""),
	}
}

func ExportStaticRoute(e *models.Entity) (plantmodel.StaticRoute, plantmodel.ModelLayoutElement) {
	to := plantmodel.StaticRoute{
		Name:       e.Name,
		Hops:       plantmodel.Refs(e.Items(models.KeyElements)),
		Properties: exportMisc(e, "", ""),
	}
	return to, element(e.Name, KeyColor, colorOf(e, models.KeyColor, models.DefaultStaticRouteColor))
}

func positionElement(e *models.Entity) plantmodel.ModelLayoutElement {
	return element(e.Name,
		KeyPositionX, e.Text(models.KeyXPosition),
		KeyPositionY, e.Text(models.KeyYPosition),
		KeyLabelOffsetX, e.Text(models.KeyLabelOffsetX),
		KeyLabelOffsetY, e.Text(models.KeyLabelOffsetY),
		KeyLabelOrientationAngle, e.Text(models.KeyLabelOrientationAngle),
	)
}

// element builds a layout element from alternating keys and values.
func element(name string, kv ...string) plantmodel.ModelLayoutElement {
	el := plantmodel.ModelLayoutElement{VisualizedObjectName: name}
	for i := 0; i+1 < len(kv); i += 2 {
		el.Properties = append(el.Properties, plantmodel.Property{Name: kv[i], Value: kv[i+1]})
	}
	return el
}

// exportMisc writes the bag in order. A non-empty symbol is written back
// under symbolKey, replacing any stale entry.
func exportMisc(e *models.Entity, symbolKey, symbol string) []plantmodel.Property {
	var out []plantmodel.Property
	if bag := e.Property(models.KeyMiscellaneous); bag != nil {
		for _, kv := range bag.Pairs {
			if symbolKey != "" && kv.Key == symbolKey {
				continue
			}
			out = append(out, plantmodel.Property{Name: kv.Key, Value: kv.Value})
		}
	}
	if symbolKey != "" && symbol != "" {
		out = append(out, plantmodel.Property{Name: symbolKey, Value: symbol})
	}
	return out
}

func valueIn(e *models.Entity, key string, unit models.Unit) float64 {
	p := e.Property(key)
	if p == nil {
		return 0
	}
	v, err := p.ValueIn(unit)
	if err != nil {
		return 0
	}
	return v
}

func percent(e *models.Entity, key string) int {
	v, ok := e.Property(key).Int()
	if !ok {
		return 0
	}
	return int(v)
}

func flag(e *models.Entity, key string) bool {
	p := e.Property(key)
	return p != nil && p.Flag
}

func colorOf(e *models.Entity, key string, fallback models.Color) string {
	p := e.Property(key)
	if p == nil || p.Type != models.PropertyColor {
		return fallback.String()
	}
	return p.Color.String()
}
