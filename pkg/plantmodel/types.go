// Package plantmodel defines the transfer objects of the unified plant model
// format. The same object graph is what a plant-control kernel accepts when a
// model is uploaded, so the types are public.
//
// Lengths and coordinates are millimetres, velocities millimetres per second,
// angles degrees. Presentation data lives in VisualLayout elements keyed by
// the name of the component they decorate.
package plantmodel

import "encoding/xml"

// Version is the schema version written by Encode.
const Version = "0.0.4"

// Model is the root of a unified plant model document.
type Model struct {
	XMLName       xml.Name       `xml:"model"`
	Version       string         `xml:"version,attr"`
	Name          string         `xml:"name,attr"`
	Points        []Point        `xml:"point"`
	Paths         []Path         `xml:"path"`
	Vehicles      []Vehicle      `xml:"vehicle"`
	LocationTypes []LocationType `xml:"locationType"`
	Locations     []Location     `xml:"location"`
	Blocks        []Block        `xml:"block"`
	StaticRoutes  []StaticRoute  `xml:"staticRoute"`
	Groups        []Group        `xml:"group"`
	VisualLayouts []VisualLayout `xml:"visualLayout"`
	Properties    []Property     `xml:"property"`
}

// Property is one entry of a component's free-form key/value bag.
type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// NameRef references another component by name.
type NameRef struct {
	Name string `xml:"name,attr" validate:"required"`
}

type Point struct {
	Name                    string     `xml:"name,attr" validate:"required"`
	XPosition               float64    `xml:"xPosition,attr"`
	YPosition               float64    `xml:"yPosition,attr"`
	ZPosition               float64    `xml:"zPosition,attr"`
	VehicleOrientationAngle float64    `xml:"vehicleOrientationAngle,attr"`
	Type                    string     `xml:"type,attr"`
	OutgoingPaths           []NameRef  `xml:"outgoingPath"`
	Properties              []Property `xml:"property"`
}

type Path struct {
	Name               string     `xml:"name,attr" validate:"required"`
	SourcePoint        string     `xml:"sourcePoint,attr"`
	DestinationPoint   string     `xml:"destinationPoint,attr"`
	Length             float64    `xml:"length,attr"`
	RoutingCost        int64      `xml:"routingCost,attr"`
	MaxVelocity        float64    `xml:"maxVelocity,attr"`
	MaxReverseVelocity float64    `xml:"maxReverseVelocity,attr"`
	Locked             bool       `xml:"locked,attr"`
	Properties         []Property `xml:"property"`
}

type Vehicle struct {
	Name                string           `xml:"name,attr" validate:"required"`
	Length              float64          `xml:"length,attr"`
	MaxVelocity         float64          `xml:"maxVelocity,attr"`
	MaxReverseVelocity  float64          `xml:"maxReverseVelocity,attr"`
	EnergyLevelCritical int              `xml:"energyLevelCritical,attr"`
	EnergyLevelGood     int              `xml:"energyLevelGood,attr"`
	EnergyLevel         int              `xml:"energyLevel,attr"`
	EnergyState         string           `xml:"energyState,attr"`
	Loaded              bool             `xml:"loaded,attr"`
	State               string           `xml:"state,attr"`
	ProcState           string           `xml:"procState,attr"`
	IntegrationLevel    string           `xml:"integrationLevel,attr"`
	CurrentPoint        string           `xml:"currentPoint,attr"`
	NextPoint           string           `xml:"nextPoint,attr"`
	OrientationAngle    float64          `xml:"orientationAngle,attr"`
	PrecisePosition     *PrecisePosition `xml:"precisePosition"`
	Properties          []Property       `xml:"property"`
}

type PrecisePosition struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
	Z int64 `xml:"z,attr"`
}

type LocationType struct {
	Name              string     `xml:"name,attr" validate:"required"`
	AllowedOperations []NameRef  `xml:"allowedOperation"`
	Properties        []Property `xml:"property"`
}

type Location struct {
	Name       string     `xml:"name,attr" validate:"required"`
	XPosition  float64    `xml:"xPosition,attr"`
	YPosition  float64    `xml:"yPosition,attr"`
	ZPosition  float64    `xml:"zPosition,attr"`
	Type       string     `xml:"type,attr"`
	Locked     bool       `xml:"locked,attr"`
	Links      []Link     `xml:"link"`
	Properties []Property `xml:"property"`
}

// Link attaches a location to a point with the operations allowed there.
type Link struct {
	Point             string     `xml:"point,attr" validate:"required"`
	AllowedOperations []NameRef  `xml:"allowedOperation"`
	Properties        []Property `xml:"property"`
}

type Block struct {
	Name       string     `xml:"name,attr" validate:"required"`
	Type       string     `xml:"type,attr"`
	Members    []NameRef  `xml:"member"`
	Properties []Property `xml:"property"`
}

type StaticRoute struct {
	Name       string     `xml:"name,attr" validate:"required"`
	Hops       []NameRef  `xml:"hop"`
	Properties []Property `xml:"property"`
}

type Group struct {
	Name       string     `xml:"name,attr" validate:"required"`
	Members    []NameRef  `xml:"member"`
	Properties []Property `xml:"property"`
}

type VisualLayout struct {
	Name                string               `xml:"name,attr" validate:"required"`
	ScaleX              float64              `xml:"scaleX,attr"`
	ScaleY              float64              `xml:"scaleY,attr"`
	ModelLayoutElements []ModelLayoutElement `xml:"modelLayoutElement"`
	Properties          []Property           `xml:"property"`
}

// ModelLayoutElement carries the presentation properties of one component.
type ModelLayoutElement struct {
	VisualizedObjectName string     `xml:"visualizedObjectName,attr"`
	Layer                int        `xml:"layer,attr"`
	Properties           []Property `xml:"property"`
}

// Names flattens a list of name references.
func Names(refs []NameRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}

// Refs builds name references from names.
func Refs(names []string) []NameRef {
	out := make([]NameRef, 0, len(names))
	for _, n := range names {
		out = append(out, NameRef{Name: n})
	}
	return out
}
