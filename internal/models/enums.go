package models

// Selection is the closed set of variants an enumerated property may take.
type Selection []string

// Contains reports whether variant is a member of s.
func (s Selection) Contains(variant string) bool {
	for _, v := range s {
		if v == variant {
			return true
		}
	}
	return false
}

const (
	PointTypeHalt   = "HALT_POSITION"
	PointTypePark   = "PARK_POSITION"
	PointTypeReport = "REPORT_POSITION"

	ConnectionDirect   = "DIRECT"
	ConnectionElbow    = "ELBOW"
	ConnectionSlanted  = "SLANTED"
	ConnectionPolyPath = "POLYPATH"
	ConnectionBezier   = "BEZIER"
	ConnectionBezier3  = "BEZIER_3"

	EnergyCritical = "CRITICAL"
	EnergyDegraded = "DEGRADED"
	EnergyGood     = "GOOD"

	ProcUnavailable     = "UNAVAILABLE"
	ProcIdle            = "IDLE"
	ProcAwaitingOrder   = "AWAITING_ORDER"
	ProcProcessingOrder = "PROCESSING_ORDER"

	IntegrationIgnored   = "TO_BE_IGNORED"
	IntegrationNoticed   = "TO_BE_NOTICED"
	IntegrationRespected = "TO_BE_RESPECTED"
	IntegrationUtilized  = "TO_BE_UTILIZED"

	VehicleStateUnknown     = "UNKNOWN"
	VehicleStateUnavailable = "UNAVAILABLE"
	VehicleStateError       = "ERROR"
	VehicleStateIdle        = "IDLE"
	VehicleStateExecuting   = "EXECUTING"
	VehicleStateCharging    = "CHARGING"

	BlockSingleVehicle = "SINGLE_VEHICLE_ONLY"
	BlockSameDirection = "SAME_DIRECTION_ONLY"

	SymbolNone    = "NONE"
	SymbolDefault = "DEFAULT"
)

var (
	PointTypes = Selection{PointTypeHalt, PointTypePark, PointTypeReport}

	ConnectionTypes = Selection{
		ConnectionDirect, ConnectionElbow, ConnectionSlanted,
		ConnectionPolyPath, ConnectionBezier, ConnectionBezier3,
	}

	EnergyStates = Selection{EnergyCritical, EnergyDegraded, EnergyGood}

	ProcStates = Selection{ProcUnavailable, ProcIdle, ProcAwaitingOrder, ProcProcessingOrder}

	IntegrationLevels = Selection{
		IntegrationIgnored, IntegrationNoticed, IntegrationRespected, IntegrationUtilized,
	}

	VehicleStates = Selection{
		VehicleStateUnknown, VehicleStateUnavailable, VehicleStateError,
		VehicleStateIdle, VehicleStateExecuting, VehicleStateCharging,
	}

	BlockTypes = Selection{BlockSingleVehicle, BlockSameDirection}

	LocationSymbols = Selection{
		SymbolNone,
		SymbolDefault,
		"LOAD_TRANSFER_GENERIC",
		"LOAD_TRANSFER_ALT_1",
		"LOAD_TRANSFER_ALT_2",
		"LOAD_TRANSFER_ALT_3",
		"LOAD_TRANSFER_ALT_4",
		"LOAD_TRANSFER_ALT_5",
		"WORKING_GENERIC",
		"WORKING_ALT_1",
		"WORKING_ALT_2",
		"RECHARGE_GENERIC",
		"RECHARGE_ALT_1",
		"RECHARGE_ALT_2",
	}
)

// IsBezier reports whether the connection type needs control points.
func IsBezier(connectionType string) bool {
	return connectionType == ConnectionBezier || connectionType == ConnectionBezier3
}

// NoReference is the literal text some producers write for an unset point reference.
const NoReference = "null"

// IsNoReference reports whether a point reference is unset. Both the empty string
// and the literal "null" mean "no reference".
func IsNoReference(name string) bool {
	return name == "" || name == NoReference
}
