package models

import (
	"fmt"
	"math"
)

type Unit string

const (
	UnitNone Unit = ""

	UnitMM    Unit = "mm"
	UnitCM    Unit = "cm"
	UnitM     Unit = "m"
	UnitKM    Unit = "km"
	UnitPixel Unit = "px"

	UnitDegree Unit = "deg"
	UnitRadian Unit = "rad"

	UnitPercent Unit = "%"

	UnitMMPerSecond Unit = "mm/s"
	UnitMPerSecond  Unit = "m/s"
	UnitKMPerHour   Unit = "km/h"
)

// Factors relative to the base unit of each dimension (mm, deg, mm/s).
var (
	lengthFactors = map[Unit]float64{
		UnitMM: 1,
		UnitCM: 10,
		UnitM:  1000,
		UnitKM: 1000000,
	}
	angleFactors = map[Unit]float64{
		UnitDegree: 1,
		UnitRadian: 180 / math.Pi,
	}
	speedFactors = map[Unit]float64{
		UnitMMPerSecond: 1,
		UnitMPerSecond:  1000,
		UnitKMPerHour:   1000000.0 / 3600.0,
	}
)

func factorsFor(u Unit) map[Unit]float64 {
	switch {
	case lengthFactors[u] != 0:
		return lengthFactors
	case angleFactors[u] != 0:
		return angleFactors
	case speedFactors[u] != 0:
		return speedFactors
	default:
		return nil
	}
}

// ConvertUnit converts value from one unit to another of the same dimension.
func ConvertUnit(value float64, from, to Unit) (float64, error) {
	if from == to {
		return value, nil
	}
	factors := factorsFor(from)
	if factors == nil || factors[to] == 0 {
		return 0, fmt.Errorf("cannot convert %q to %q", from, to)
	}
	return value * factors[from] / factors[to], nil
}

// NormalizeAngle maps a finite angle in degrees into [0, 360).
// NaN is returned unchanged; it means "no orientation".
func NormalizeAngle(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return deg
	}
	if deg >= 0 && deg < 360 {
		return deg
	}
	if deg < 0 {
		deg = 360 + math.Mod(deg, 360)
	}
	return math.Mod(deg, 360)
}
