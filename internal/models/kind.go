package models

// Kind identifies the closed set of component kinds a plant model is built from.
type Kind string

const (
	KindLayout       Kind = "layout"
	KindPoint        Kind = "point"
	KindLocationType Kind = "location_type"
	KindLocation     Kind = "location"
	KindLink         Kind = "link"
	KindPath         Kind = "path"
	KindBlock        Kind = "block"
	KindGroup        Kind = "group"
	KindStaticRoute  Kind = "static_route"
	KindVehicle      Kind = "vehicle"
)

// allKinds is ordered so that every kind only references kinds listed before it.
var allKinds = []Kind{
	KindLayout,
	KindPoint,
	KindLocationType,
	KindLocation,
	KindLink,
	KindPath,
	KindBlock,
	KindGroup,
	KindStaticRoute,
	KindVehicle,
}

// AllKinds returns every component kind in dependency order.
func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Rank returns the position of k in dependency order, or -1 for unknown kinds.
func (k Kind) Rank() int {
	for i, known := range allKinds {
		if known == k {
			return i
		}
	}
	return -1
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k.Rank() >= 0
}

// Label returns a human readable name used in validation messages.
func (k Kind) Label() string {
	switch k {
	case KindLayout:
		return "Layout"
	case KindPoint:
		return "Point"
	case KindLocationType:
		return "Location type"
	case KindLocation:
		return "Location"
	case KindLink:
		return "Link"
	case KindPath:
		return "Path"
	case KindBlock:
		return "Block"
	case KindGroup:
		return "Group"
	case KindStaticRoute:
		return "Static route"
	case KindVehicle:
		return "Vehicle"
	default:
		return string(k)
	}
}
