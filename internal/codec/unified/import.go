package unified

import (
	"math"
	"strconv"

	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/pkg/plantmodel"
)

// Keys of the miscellaneous bag that mirror the canonical symbol property.
const (
	MiscLocationTypeSymbol = "tcs:defaultLocationTypeSymbol"
	MiscLocationSymbol     = "tcs:defaultLocationSymbol"
)

// LinkSeparator joins the point and location names of a link.
const LinkSeparator = " --- "

// LinkName returns the name of the link between point and location.
func LinkName(point, location string) string {
	return point + LinkSeparator + location
}

func ImportLayout(to plantmodel.VisualLayout) *models.Entity {
	e := models.NewEntity(models.KindLayout, to.Name)
	e.SetProperty(models.KeyScaleX, models.NewLength(scaleOrDefault(to.ScaleX), models.UnitMM))
	e.SetProperty(models.KeyScaleY, models.NewLength(scaleOrDefault(to.ScaleY), models.UnitMM))
	e.SetProperty(models.KeyMiscellaneous, importMisc(to.Properties, ""))
	return e
}

// scaleOrDefault treats an absent scale attribute as the default scale.
func scaleOrDefault(v float64) float64 {
	if v == 0 {
		return models.DefaultScale
	}
	return v
}

func ImportPoint(to plantmodel.Point, ov *Overlay) *models.Entity {
	e := models.NewEntity(models.KindPoint, to.Name)
	importPosition(e, to.XPosition, to.YPosition, ov,
		models.DefaultPointLabelOffsetX, models.DefaultPointLabelOffsetY)
	e.SetProperty(models.KeyVehicleOrientationAngle, models.NewAngle(to.VehicleOrientationAngle))
	e.SetProperty(models.KeyPointType, models.NewSelection(orDefault(to.Type, models.PointTypeHalt)))
	e.SetProperty(models.KeyMiscellaneous, importMisc(to.Properties, ""))
	return e
}

func ImportPath(to plantmodel.Path, ov *Overlay) *models.Entity {
	e := models.NewEntity(models.KindPath, to.Name)
	e.SetProperty(models.KeyStartComponent, models.NewString(to.SourcePoint))
	e.SetProperty(models.KeyEndComponent, models.NewString(to.DestinationPoint))
	e.SetProperty(models.KeyLength, models.NewLength(to.Length, models.UnitMM))
	e.SetProperty(models.KeyRoutingCost, models.NewInteger(to.RoutingCost))
	e.SetProperty(models.KeyMaxVelocity, models.NewSpeed(to.MaxVelocity, models.UnitMMPerSecond))
	e.SetProperty(models.KeyMaxReverseVelocity, models.NewSpeed(to.MaxReverseVelocity, models.UnitMMPerSecond))
	e.SetProperty(models.KeyLocked, models.NewBoolean(to.Locked))
	e.SetProperty(models.KeyConnectionType,
		models.NewSelection(ov.ValueOr(to.Name, KeyConnectionType, models.ConnectionDirect)))
	e.SetProperty(models.KeyControlPoints, models.NewString(ov.ValueOr(to.Name, KeyControlPoints, "")))
	e.SetProperty(models.KeyMiscellaneous, importMisc(to.Properties, ""))
	return e
}

func ImportVehicle(to plantmodel.Vehicle, ov *Overlay) *models.Entity {
	e := models.NewEntity(models.KindVehicle, to.Name)
	e.SetProperty(models.KeyLength, models.NewLength(to.Length, models.UnitMM))
	e.SetProperty(models.KeyMaxVelocity, models.NewSpeed(to.MaxVelocity, models.UnitMMPerSecond))
	e.SetProperty(models.KeyMaxReverseVelocity, models.NewSpeed(to.MaxReverseVelocity, models.UnitMMPerSecond))
	e.SetProperty(models.KeyEnergyLevelCritical, models.NewPercent(to.EnergyLevelCritical))
	e.SetProperty(models.KeyEnergyLevelGood, models.NewPercent(to.EnergyLevelGood))
	e.SetProperty(models.KeyEnergyLevel, models.NewPercent(to.EnergyLevel))
	e.SetProperty(models.KeyEnergyState, models.NewSelection(orDefault(to.EnergyState, models.EnergyGood)))
	e.SetProperty(models.KeyLoaded, models.NewBoolean(to.Loaded))
	e.SetProperty(models.KeyVehicleState, models.NewSelection(orDefault(to.State, models.VehicleStateUnknown)))
	e.SetProperty(models.KeyProcState, models.NewSelection(orDefault(to.ProcState, models.ProcIdle)))
	e.SetProperty(models.KeyIntegrationLevel,
		models.NewSelection(orDefault(to.IntegrationLevel, models.IntegrationRespected)))
	// Point references are kept verbatim, the "null" sentinel included.
	e.SetProperty(models.KeyCurrentPoint, models.NewString(to.CurrentPoint))
	e.SetProperty(models.KeyNextPoint, models.NewString(to.NextPoint))
	if pp := to.PrecisePosition; pp != nil {
		e.SetProperty(models.KeyPrecisePosition, models.NewTriple(pp.X, pp.Y, pp.Z))
	} else {
		e.SetProperty(models.KeyPrecisePosition, models.NewTriple(0, 0, 0))
	}
	e.SetProperty(models.KeyOrientationAngle, models.NewAngle(to.OrientationAngle))
	e.SetProperty(models.KeyRouteColor,
		models.NewColor(overlayColor(ov, to.Name, KeyRouteColor, models.DefaultVehicleRouteColor)))
	e.SetProperty(models.KeyMiscellaneous, importMisc(to.Properties, ""))
	return e
}

func ImportLocationType(to plantmodel.LocationType) *models.Entity {
	e := models.NewEntity(models.KindLocationType, to.Name)
	e.SetProperty(models.KeyAllowedOperations, models.NewStringSet(plantmodel.Names(to.AllowedOperations)...))
	misc := importMisc(to.Properties, MiscLocationTypeSymbol)
	e.SetProperty(models.KeySymbol, models.NewSelection(symbolOf(to.Properties, MiscLocationTypeSymbol)))
	e.SetProperty(models.KeyMiscellaneous, misc)
	return e
}

func ImportLocation(to plantmodel.Location, ov *Overlay) *models.Entity {
	e := models.NewEntity(models.KindLocation, to.Name)
	importPosition(e, to.XPosition, to.YPosition, ov,
		models.DefaultLocationLabelOffsetX, models.DefaultLocationLabelOffsetY)
	e.SetProperty(models.KeyLocationType, models.NewString(to.Type))
	e.SetProperty(models.KeyLocked, models.NewBoolean(to.Locked))
	misc := importMisc(to.Properties, MiscLocationSymbol)
	e.SetProperty(models.KeySymbol, models.NewSelection(symbolOf(to.Properties, MiscLocationSymbol)))
	e.SetProperty(models.KeyMiscellaneous, misc)
	return e
}

// ImportLinks expands the links of a location into one Link entity each.
func ImportLinks(to plantmodel.Location) []*models.Entity {
	out := make([]*models.Entity, 0, len(to.Links))
	for _, l := range to.Links {
		e := models.NewEntity(models.KindLink, LinkName(l.Point, to.Name))
		e.SetProperty(models.KeyStartComponent, models.NewString(l.Point))
		e.SetProperty(models.KeyEndComponent, models.NewString(to.Name))
		e.SetProperty(models.KeyAllowedOperations, models.NewStringSet(plantmodel.Names(l.AllowedOperations)...))
		e.SetProperty(models.KeyMiscellaneous, importMisc(l.Properties, ""))
		out = append(out, e)
	}
	return out
}

func ImportBlock(to plantmodel.Block, ov *Overlay) *models.Entity {
	e := models.NewEntity(models.KindBlock, to.Name)
	e.SetProperty(models.KeyElements, models.NewStringSet(plantmodel.Names(to.Members)...))
	e.SetProperty(models.KeyBlockType, models.NewSelection(orDefault(to.Type, models.BlockSingleVehicle)))
	e.SetProperty(models.KeyColor, models.NewColor(overlayColor(ov, to.Name, KeyColor, models.DefaultBlockColor)))
	e.SetProperty(models.KeyMiscellaneous, importMisc(to.Properties, ""))
	return e
}

func ImportGroup(to plantmodel.Group) *models.Entity {
	e := models.NewEntity(models.KindGroup, to.Name)
	e.SetProperty(models.KeyElements, models.NewStringSet(plantmodel.Names(to.Members)...))
	e.SetProperty(models.KeyMiscellaneous, importMisc(to.Properties, ""))
	return e
}

func ImportStaticRoute(to plantmodel.StaticRoute, ov *Overlay) *models.Entity {
	e := models.NewEntity(models.KindStaticRoute, to.Name)
	e.SetProperty(models.KeyElements, models.NewStringSet(plantmodel.Names(to.Hops)...))
	e.SetProperty(models.KeyColor,
		models.NewColor(overlayColor(ov, to.Name, KeyColor, models.DefaultStaticRouteColor)))
	e.SetProperty(models.KeyMiscellaneous, importMisc(to.Properties, ""))
	return e
}

// importPosition sets model coordinates and the layout position strings.
// Without an overlay entry the layout position falls back to the model position.
func importPosition(e *models.Entity, x, y float64, ov *Overlay, labelX, labelY string) {
	e.SetProperty(models.KeyModelXPosition, models.NewCoordinate(x, models.UnitMM))
	e.SetProperty(models.KeyModelYPosition, models.NewCoordinate(y, models.UnitMM))
	e.SetProperty(models.KeyXPosition, models.NewString(ov.ValueOr(e.Name, KeyPositionX, roundedText(x))))
	e.SetProperty(models.KeyYPosition, models.NewString(ov.ValueOr(e.Name, KeyPositionY, roundedText(y))))
	e.SetProperty(models.KeyLabelOffsetX, models.NewString(ov.ValueOr(e.Name, KeyLabelOffsetX, labelX)))
	e.SetProperty(models.KeyLabelOffsetY, models.NewString(ov.ValueOr(e.Name, KeyLabelOffsetY, labelY)))
	e.SetProperty(models.KeyLabelOrientationAngle, models.NewString(ov.ValueOr(e.Name, KeyLabelOrientationAngle, "")))
}

// importMisc copies the property bag in order, leaving out the key lifted
// into a canonical property.
func importMisc(props []plantmodel.Property, lifted string) *models.Property {
	bag := models.NewKeyValueSet()
	for _, p := range props {
		if lifted != "" && p.Name == lifted {
			continue
		}
		bag.Pairs = append(bag.Pairs, models.KeyValue{Key: p.Name, Value: p.Value})
	}
	return bag
}

func symbolOf(props []plantmodel.Property, key string) string {
	for _, p := range props {
		if p.Name == key {
			return p.Value
		}
	}
	return ""
}

func overlayColor(ov *Overlay, name, key string, fallback models.Color) models.Color {
	v, ok := ov.Value(name, key)
	if !ok {
		return fallback
	}
	c, err := models.ParseColor(v)
	if err != nil {
		return fallback
	}
	return c
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func roundedText(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}
