// Package testutils provides model fixtures and fakes shared by package tests.
package testutils

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/store/memory"
)

// Point creates a halt position at x/y millimetres.
func Point(name string, x, y float64) *models.Entity {
	e := models.NewComponent(models.KindPoint, name)
	setPosition(e, x, y)
	return e
}

// Path creates a path between two points.
func Path(name, start, end string) *models.Entity {
	e := models.NewComponent(models.KindPath, name)
	e.Property(models.KeyStartComponent).Text = start
	e.Property(models.KeyEndComponent).Text = end
	return e
}

func LocationType(name string, operations ...string) *models.Entity {
	e := models.NewComponent(models.KindLocationType, name)
	e.Property(models.KeyAllowedOperations).Items = append([]string(nil), operations...)
	return e
}

func Location(name, locationType string, x, y float64) *models.Entity {
	e := models.NewComponent(models.KindLocation, name)
	setPosition(e, x, y)
	e.Property(models.KeyLocationType).Text = locationType
	return e
}

// Link connects point to location, named the way both model formats name it.
func Link(point, location string, operations ...string) *models.Entity {
	e := models.NewComponent(models.KindLink, point+" --- "+location)
	e.Property(models.KeyStartComponent).Text = point
	e.Property(models.KeyEndComponent).Text = location
	e.Property(models.KeyAllowedOperations).Items = append([]string(nil), operations...)
	return e
}

func Block(name string, members ...string) *models.Entity {
	e := models.NewComponent(models.KindBlock, name)
	e.Property(models.KeyElements).Items = append([]string(nil), members...)
	return e
}

func Group(name string, members ...string) *models.Entity {
	e := models.NewComponent(models.KindGroup, name)
	e.Property(models.KeyElements).Items = append([]string(nil), members...)
	return e
}

func StaticRoute(name string, hops ...string) *models.Entity {
	e := models.NewComponent(models.KindStaticRoute, name)
	e.Property(models.KeyElements).Items = append([]string(nil), hops...)
	return e
}

// Vehicle creates a vehicle standing nowhere.
func Vehicle(name string) *models.Entity {
	return models.NewComponent(models.KindVehicle, name)
}

func setPosition(e *models.Entity, x, y float64) {
	e.Property(models.KeyModelXPosition).Number = x
	e.Property(models.KeyModelYPosition).Number = y
	e.Property(models.KeyXPosition).Text = strconv.FormatInt(int64(math.Round(x)), 10)
	e.Property(models.KeyYPosition).Text = strconv.FormatInt(int64(math.Round(y)), 10)
}

// TwoPointModel holds points P1 at the origin and P2 one metre east, joined
// by path "P1 --- P2" of length 1000 mm and routing cost 5.
func TwoPointModel(t testing.TB) *memory.SystemModel {
	t.Helper()
	path := Path("P1 --- P2", "P1", "P2")
	path.Property(models.KeyLength).Number = 1000
	path.Property(models.KeyRoutingCost).Number = 5
	return Build(t, "two-points",
		Point("P1", 0, 0),
		Point("P2", 1000, 0),
		path,
	)
}

// PlantModel holds one component of every kind, all valid.
func PlantModel(t testing.TB) *memory.SystemModel {
	t.Helper()
	vehicle := Vehicle("Vehicle-01")
	vehicle.Property(models.KeyCurrentPoint).Text = "P1"
	vehicle.Property(models.KeyNextPoint).Text = "null"

	return Build(t, "plant",
		Point("P1", 0, 0),
		Point("P2", 5000, 0),
		Point("P3", 5000, -3000),
		LocationType("LType-01", "Load cargo", "Unload cargo"),
		Location("Loc-01", "LType-01", 6000, 1000),
		Link("P2", "Loc-01", "Load cargo"),
		Path("P1 --- P2", "P1", "P2"),
		Path("P2 --- P3", "P2", "P3"),
		Block("Block-01", "P1", "P1 --- P2"),
		Group("Group-01", "P1", "Loc-01"),
		StaticRoute("Route-01", "P1", "P2", "P3"),
		vehicle,
	)
}

// Build adds components to a fresh model and fails the test on any error.
func Build(t testing.TB, name string, components ...*models.Entity) *memory.SystemModel {
	t.Helper()
	model := memory.NewSystemModel(name)
	for _, c := range components {
		require.NoError(t, model.Add(c), "adding %s", c.Name)
	}
	return model
}
