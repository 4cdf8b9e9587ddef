package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntity_PropertyOrder(t *testing.T) {
	e := NewEntity(KindPoint, "P1")
	e.SetProperty("b", NewString("1"))
	e.SetProperty("a", NewString("2"))
	e.SetProperty("b", NewString("3"))

	assert.Equal(t, []string{"b", "a"}, e.Keys())
	assert.Equal(t, "3", e.Text("b"))

	e.RemoveProperty("b")
	assert.Equal(t, []string{"a"}, e.Keys())
	assert.False(t, e.Has("b"))
	assert.Nil(t, e.Property("b"))
}

func TestEntity_CloneKeepsIdentity(t *testing.T) {
	e := NewComponent(KindPath, "P1 --- P2")
	c := e.Clone()

	assert.True(t, e.SameInstance(c))
	assert.Equal(t, e.Keys(), c.Keys())

	c.Property(KeyLength).Number = 42
	assert.Equal(t, 1.0, e.Property(KeyLength).Number)

	other := NewComponent(KindPath, "P1 --- P2")
	assert.False(t, e.SameInstance(other), "equal names are not the same instance")
}

func TestEntity_Misc(t *testing.T) {
	e := NewEntity(KindLocation, "Loc")
	assert.False(t, e.Has(KeyMiscellaneous))

	e.Misc().Put("k", "v")
	v, ok := e.Property(KeyMiscellaneous).Lookup("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestNewComponent_Defaults(t *testing.T) {
	point := NewComponent(KindPoint, "P1")
	assert.Equal(t, PointTypeHalt, point.Text(KeyPointType))
	assert.Equal(t, DefaultPointLabelOffsetX, point.Text(KeyLabelOffsetX))
	assert.Equal(t, DefaultPointLabelOffsetY, point.Text(KeyLabelOffsetY))
	assert.True(t, math.IsNaN(point.Property(KeyVehicleOrientationAngle).Number))

	location := NewComponent(KindLocation, "Loc")
	assert.Equal(t, DefaultLocationLabelOffsetX, location.Text(KeyLabelOffsetX))

	vehicle := NewComponent(KindVehicle, "V")
	assert.Equal(t, 30.0, vehicle.Property(KeyEnergyLevelCritical).Number)
	assert.Equal(t, 90.0, vehicle.Property(KeyEnergyLevelGood).Number)
	assert.Equal(t, DefaultVehicleRouteColor, vehicle.Property(KeyRouteColor).Color)

	layout := NewComponent(KindLayout, "VLayout-01")
	v, err := layout.Property(KeyScaleX).ValueIn(UnitMM)
	require.NoError(t, err)
	assert.Equal(t, DefaultScale, v)

	for _, kind := range AllKinds() {
		assert.True(t, NewComponent(kind, "x").Has(KeyMiscellaneous), kind)
	}
}

func TestKind_Rank(t *testing.T) {
	kinds := AllKinds()
	for i, k := range kinds {
		assert.Equal(t, i, k.Rank())
		assert.True(t, k.Valid())
	}
	assert.Less(t, KindPoint.Rank(), KindPath.Rank())
	assert.Less(t, KindLocation.Rank(), KindLink.Rank())
	assert.Equal(t, -1, Kind("teleporter").Rank())
	assert.False(t, Kind("teleporter").Valid())
	assert.Equal(t, "Static route", KindStaticRoute.Label())
}

func TestIsPresentationKey(t *testing.T) {
	assert.True(t, IsPresentationKey(KeyFigureX))
	assert.True(t, IsPresentationKey(KeyFigureY))
	assert.False(t, IsPresentationKey(KeyModelXPosition))
}
