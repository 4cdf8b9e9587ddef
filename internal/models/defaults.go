package models

import "math"

const (
	DefaultScale = 50.0

	DefaultPointLabelOffsetX    = "-10"
	DefaultPointLabelOffsetY    = "-20"
	DefaultLocationLabelOffsetX = "-30"
	DefaultLocationLabelOffsetY = "-30"
)

var (
	DefaultBlockColor        = ColorRed
	DefaultStaticRouteColor  = ColorGreen
	DefaultVehicleRouteColor = ColorRed
)

// NewComponent creates an entity of the given kind carrying the full default
// property set of that kind.
func NewComponent(kind Kind, name string) *Entity {
	e := NewEntity(kind, name)
	switch kind {
	case KindLayout:
		e.SetProperty(KeyScaleX, NewLength(DefaultScale, UnitMM))
		e.SetProperty(KeyScaleY, NewLength(DefaultScale, UnitMM))
	case KindPoint:
		setPosition(e, DefaultPointLabelOffsetX, DefaultPointLabelOffsetY)
		e.SetProperty(KeyVehicleOrientationAngle, NewAngle(math.NaN()))
		e.SetProperty(KeyPointType, NewSelection(PointTypeHalt))
	case KindLocationType:
		e.SetProperty(KeyAllowedOperations, NewStringSet())
		e.SetProperty(KeySymbol, NewSelection(""))
	case KindLocation:
		setPosition(e, DefaultLocationLabelOffsetX, DefaultLocationLabelOffsetY)
		e.SetProperty(KeyLocationType, NewString(""))
		e.SetProperty(KeyLocked, NewBoolean(false))
		e.SetProperty(KeySymbol, NewSelection(""))
	case KindLink:
		e.SetProperty(KeyStartComponent, NewString(""))
		e.SetProperty(KeyEndComponent, NewString(""))
		e.SetProperty(KeyAllowedOperations, NewStringSet())
	case KindPath:
		e.SetProperty(KeyStartComponent, NewString(""))
		e.SetProperty(KeyEndComponent, NewString(""))
		e.SetProperty(KeyLength, NewLength(1, UnitMM))
		e.SetProperty(KeyRoutingCost, NewInteger(1))
		e.SetProperty(KeyMaxVelocity, NewSpeed(1000, UnitMMPerSecond))
		e.SetProperty(KeyMaxReverseVelocity, NewSpeed(1000, UnitMMPerSecond))
		e.SetProperty(KeyLocked, NewBoolean(false))
		e.SetProperty(KeyConnectionType, NewSelection(ConnectionDirect))
		e.SetProperty(KeyControlPoints, NewString(""))
	case KindBlock:
		e.SetProperty(KeyElements, NewStringSet())
		e.SetProperty(KeyBlockType, NewSelection(BlockSingleVehicle))
		e.SetProperty(KeyColor, NewColor(DefaultBlockColor))
	case KindGroup:
		e.SetProperty(KeyElements, NewStringSet())
	case KindStaticRoute:
		e.SetProperty(KeyElements, NewStringSet())
		e.SetProperty(KeyColor, NewColor(DefaultStaticRouteColor))
	case KindVehicle:
		e.SetProperty(KeyLength, NewLength(1000, UnitMM))
		e.SetProperty(KeyMaxVelocity, NewSpeed(1000, UnitMMPerSecond))
		e.SetProperty(KeyMaxReverseVelocity, NewSpeed(1000, UnitMMPerSecond))
		e.SetProperty(KeyEnergyLevelCritical, NewPercent(30))
		e.SetProperty(KeyEnergyLevelGood, NewPercent(90))
		e.SetProperty(KeyEnergyLevel, NewPercent(100))
		e.SetProperty(KeyEnergyState, NewSelection(EnergyGood))
		e.SetProperty(KeyLoaded, NewBoolean(false))
		e.SetProperty(KeyVehicleState, NewSelection(VehicleStateUnknown))
		e.SetProperty(KeyProcState, NewSelection(ProcIdle))
		e.SetProperty(KeyIntegrationLevel, NewSelection(IntegrationRespected))
		e.SetProperty(KeyCurrentPoint, NewString(""))
		e.SetProperty(KeyNextPoint, NewString(""))
		e.SetProperty(KeyPrecisePosition, NewTriple(0, 0, 0))
		e.SetProperty(KeyOrientationAngle, NewAngle(math.NaN()))
		e.SetProperty(KeyRouteColor, NewColor(DefaultVehicleRouteColor))
	}
	e.SetProperty(KeyMiscellaneous, NewKeyValueSet())
	return e
}

func setPosition(e *Entity, labelX, labelY string) {
	e.SetProperty(KeyModelXPosition, NewCoordinate(0, UnitMM))
	e.SetProperty(KeyModelYPosition, NewCoordinate(0, UnitMM))
	e.SetProperty(KeyXPosition, NewString("0"))
	e.SetProperty(KeyYPosition, NewString("0"))
	e.SetProperty(KeyLabelOffsetX, NewString(labelX))
	e.SetProperty(KeyLabelOffsetY, NewString(labelY))
	e.SetProperty(KeyLabelOrientationAngle, NewString(""))
}
