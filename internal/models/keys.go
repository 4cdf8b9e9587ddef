package models

// Property keys. A key identifies a property within one entity; the same key may
// appear on several kinds with the same meaning.
const (
	KeyMiscellaneous = "miscellaneous"

	KeyModelXPosition        = "modelXPosition"
	KeyModelYPosition        = "modelYPosition"
	KeyXPosition             = "xPosition"
	KeyYPosition             = "yPosition"
	KeyLabelOffsetX          = "labelOffsetX"
	KeyLabelOffsetY          = "labelOffsetY"
	KeyLabelOrientationAngle = "labelOrientationAngle"
	KeyFigureX               = "figureX"
	KeyFigureY               = "figureY"

	KeyPointType               = "type"
	KeyVehicleOrientationAngle = "vehicleOrientationAngle"

	KeyStartComponent     = "startComponent"
	KeyEndComponent       = "endComponent"
	KeyLength             = "length"
	KeyRoutingCost        = "routingCost"
	KeyMaxVelocity        = "maxVelocity"
	KeyMaxReverseVelocity = "maxReverseVelocity"
	KeyLocked             = "locked"
	KeyConnectionType     = "connectionType"
	KeyControlPoints      = "controlPoints"

	KeyAllowedOperations = "allowedOperations"
	KeySymbol            = "symbol"
	KeyLocationType      = "locationType"

	KeyElements  = "elements"
	KeyColor     = "color"
	KeyBlockType = "blockType"

	KeyEnergyLevelCritical = "energyLevelCritical"
	KeyEnergyLevelGood     = "energyLevelGood"
	KeyEnergyLevel         = "energyLevel"
	KeyEnergyState         = "energyState"
	KeyLoaded              = "loaded"
	KeyProcState           = "procState"
	KeyVehicleState        = "state"
	KeyIntegrationLevel    = "integrationLevel"
	KeyCurrentPoint        = "currentPoint"
	KeyNextPoint           = "nextPoint"
	KeyPrecisePosition     = "precisePosition"
	KeyOrientationAngle    = "orientationAngle"
	KeyRouteColor          = "routeColor"

	KeyScaleX = "scaleX"
	KeyScaleY = "scaleY"
)

// presentationKeys are derived from other properties and never serialized.
var presentationKeys = map[string]bool{
	KeyFigureX: true,
	KeyFigureY: true,
}

// IsPresentationKey reports whether key holds derived, presentation-only state.
func IsPresentationKey(key string) bool {
	return presentationKeys[key]
}
