package core

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/store/memory"
	"github.com/sumandas0/plantmodel/internal/store/testutils"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

func newTestValidator() *Validator {
	return NewValidator(zerolog.Nop())
}

func TestValidator_Preconditions(t *testing.T) {
	v := newTestValidator()

	_, err := v.Validate(nil, testutils.Point("P1", 0, 0))
	assert.True(t, utils.IsPrecondition(err))

	_, err = v.Validate(memory.NewSystemModel("m"), nil)
	assert.True(t, utils.IsPrecondition(err))

	_, err = v.ValidateModel(nil)
	assert.True(t, utils.IsPrecondition(err))
}

func TestValidator_EmptyName(t *testing.T) {
	v := newTestValidator()
	model := memory.NewSystemModel("m")

	for _, kind := range models.AllKinds() {
		t.Run(string(kind), func(t *testing.T) {
			res, err := v.Validate(model, models.NewComponent(kind, ""))
			require.NoError(t, err)
			assert.False(t, res.Valid)
			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0], "name is empty")
		})
	}
}

func TestValidator_DuplicateName(t *testing.T) {
	v := newTestValidator()
	a := testutils.Point("P1", 0, 0)
	model := testutils.Build(t, "m", a)

	res, err := v.Validate(model, a)
	require.NoError(t, err)
	assert.True(t, res.Valid, "validating the registered instance again must pass: %v", res.Errors)

	b := testutils.Point("P1", 10, 10)
	res, err = v.Validate(model, b)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, `Point "P1": name is already used by Point`, res.Errors[0])

	loc := testutils.Location("P1", "LType", 0, 0)
	res, err = v.Validate(model, loc)
	require.NoError(t, err)
	assert.False(t, res.Valid, "names are unique across kinds")
}

func TestValidator_LayoutNameIsMergeCandidate(t *testing.T) {
	v := newTestValidator()
	model := memory.NewSystemModel("m")

	res, err := v.Validate(model, models.NewComponent(models.KindLayout, memory.DefaultLayoutName))
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Errors)
}

func TestValidator_Layout(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *models.Entity)
		valid   bool
		message string
	}{
		{name: "defaults", mutate: func(e *models.Entity) {}, valid: true},
		{name: "zero scale", mutate: func(e *models.Entity) { e.Property(models.KeyScaleX).Number = 0 }, valid: true},
		{
			name:    "negative scale",
			mutate:  func(e *models.Entity) { e.Property(models.KeyScaleY).Number = -1 },
			message: `property "scaleY" must not be negative`,
		},
		{
			name:    "unparsable scale",
			mutate:  func(e *models.Entity) { e.SetProperty(models.KeyScaleX, models.NewString("wide")) },
			message: `property "scaleX" is not a number`,
		},
		{
			name:    "missing scale",
			mutate:  func(e *models.Entity) { e.RemoveProperty(models.KeyScaleX) },
			message: `required property "scaleX" is missing`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := models.NewComponent(models.KindLayout, "Other")
			tt.mutate(e)
			res, err := newTestValidator().Validate(memory.NewSystemModel("m"), e)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.Errors)
			if tt.message != "" {
				require.NotEmpty(t, res.Errors)
				assert.Contains(t, res.Errors[0], tt.message)
			}
		})
	}
}

func TestValidator_Point(t *testing.T) {
	v := newTestValidator()
	model := memory.NewSystemModel("m")

	p := testutils.Point("P1", 0, 0)
	p.Property(models.KeyVehicleOrientationAngle).Number = -90
	res, err := v.Validate(model, p)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Errors)
	angle := p.Property(models.KeyVehicleOrientationAngle)
	assert.Equal(t, 270.0, angle.Number)
	assert.True(t, angle.Changed)

	p = testutils.Point("P2", 0, 0)
	p.Property(models.KeyPointType).Text = "CHARGE_POSITION"
	res, err = v.Validate(model, p)
	require.NoError(t, err)
	assert.False(t, res.Valid)

	p = testutils.Point("P3", 0, 0)
	p.Property(models.KeyXPosition).Text = ""
	res, err = v.Validate(model, p)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], `property "xPosition" is empty`)

	p = testutils.Point("P4", 0, 0)
	p.RemoveProperty(models.KeyPointType)
	p.RemoveProperty(models.KeyModelXPosition)
	res, err = v.Validate(model, p)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2, "every missing property is reported before giving up")
}

func TestValidator_PathReferences(t *testing.T) {
	v := newTestValidator()
	model := testutils.Build(t, "m", testutils.Point("P1", 0, 0), testutils.Point("P2", 1000, 0))

	path := testutils.Path("Path-1", "P9", "P2")
	res, err := v.Validate(model, path)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], `Path "Path-1"`)
	assert.Contains(t, res.Errors[0], `"P9"`)

	path.Property(models.KeyStartComponent).Text = "P1"
	res, err = v.Validate(model, path)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Errors)
}

func TestValidator_PathReferenceKinds(t *testing.T) {
	v := newTestValidator()
	model := testutils.Build(t, "m",
		testutils.Point("P1", 0, 0),
		testutils.LocationType("LType", "op"),
		testutils.Location("Loc", "LType", 0, 0),
	)

	res, err := v.Validate(model, testutils.Path("Path-1", "P1", "Loc"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{`Path "Path-1": end component "Loc" is a Location, expected Point`}, res.Errors)
}

func TestValidator_PathRepairs(t *testing.T) {
	v := newTestValidator()
	model := testutils.Build(t, "m", testutils.Point("P1", 0, 0), testutils.Point("P2", 1000, 0))

	path := testutils.Path("Path-1", "P1", "P2")
	path.Property(models.KeyLength).Number = 0.25
	path.Property(models.KeyMaxVelocity).Number = -5
	res, err := v.Validate(model, path)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Errors)
	assert.Equal(t, 1.0, path.Property(models.KeyLength).Number)
	assert.Equal(t, 0.0, path.Property(models.KeyMaxVelocity).Number)
	assert.True(t, path.Property(models.KeyLength).Changed)

	path = testutils.Path("Path-2", "P1", "P2")
	path.Property(models.KeyLength).Unit = models.UnitM
	path.Property(models.KeyLength).Number = 0.5
	res, err = v.Validate(model, path)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 0.5, path.Property(models.KeyLength).Number, "half a metre is long enough")
}

func TestValidator_PathConnectionType(t *testing.T) {
	v := newTestValidator()
	model := testutils.Build(t, "m", testutils.Point("P1", 0, 0), testutils.Point("P2", 1000, 0))

	bezier := testutils.Path("Path-1", "P1", "P2")
	bezier.Property(models.KeyConnectionType).Text = models.ConnectionBezier
	res, err := v.Validate(model, bezier)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "requires control points")

	bezier.Property(models.KeyControlPoints).Text = "10,10"
	res, err = v.Validate(model, bezier)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Errors)

	unknown := testutils.Path("Path-2", "P1", "P2")
	unknown.Property(models.KeyConnectionType).Text = "CURVY"
	res, err = v.Validate(model, unknown)
	require.NoError(t, err)
	assert.False(t, res.Valid)

	missing := testutils.Path("Path-3", "P1", "P2")
	missing.RemoveProperty(models.KeyLocked)
	res, err = v.Validate(model, missing)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{`Path "Path-3": required property "locked" is missing`}, res.Errors)
}

func TestValidator_LocationAndLink(t *testing.T) {
	v := newTestValidator()
	model := testutils.Build(t, "m",
		testutils.Point("P1", 0, 0),
		testutils.LocationType("LType", "op"),
	)

	loc := testutils.Location("Loc", "LType", 0, 0)
	res, err := v.Validate(model, loc)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Errors)
	require.NoError(t, model.Add(loc))

	bad := testutils.Location("Loc-2", "P1", 0, 0)
	bad.Property(models.KeyXPosition).Text = "1.5"
	res, err = v.Validate(model, bad)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)

	res, err = v.Validate(model, testutils.Link("P1", "Loc"))
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Errors)

	res, err = v.Validate(model, testutils.Link("P7", "Loc"))
	require.NoError(t, err)
	assert.False(t, res.Valid)

	link := testutils.Link("P1", "Loc")
	link.Property(models.KeyEndComponent).Text = ""
	res, err = v.Validate(model, link)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "end component is not set")
}

func TestValidator_Members(t *testing.T) {
	v := newTestValidator()
	model := testutils.Build(t, "m",
		testutils.Point("P1", 0, 0),
		testutils.Point("P2", 1000, 0),
		testutils.Path("Path-1", "P1", "P2"),
	)

	tests := []struct {
		name   string
		entity *models.Entity
		errors int
	}{
		{name: "block of point and path", entity: testutils.Block("B1", "P1", "Path-1")},
		{name: "block with duplicate member", entity: testutils.Block("B2", "P1", "P1"), errors: 1},
		{name: "group with missing members", entity: testutils.Group("G1", "X", "Y"), errors: 2},
		{name: "route of points", entity: testutils.StaticRoute("R1", "P1", "P2")},
		{name: "route through a path", entity: testutils.StaticRoute("R2", "P1", "Path-1"), errors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Validate(model, tt.entity)
			require.NoError(t, err)
			assert.Equal(t, tt.errors == 0, res.Valid)
			assert.Len(t, res.Errors, tt.errors, res.Errors)
		})
	}
}

func TestValidator_BlockTypeFallsBack(t *testing.T) {
	block := testutils.Block("B1")
	block.Property(models.KeyBlockType).Text = "ANY"

	res, err := newTestValidator().Validate(memory.NewSystemModel("m"), block)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, models.BlockSingleVehicle, block.Text(models.KeyBlockType))
}

func TestValidator_VehicleEnergyRepair(t *testing.T) {
	vehicle := testutils.Vehicle("V1")
	vehicle.Property(models.KeyEnergyLevelCritical).Number = 80
	vehicle.Property(models.KeyEnergyLevelGood).Number = 50

	res, err := newTestValidator().Validate(memory.NewSystemModel("m"), vehicle)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Errors)
	assert.Equal(t, 80.0, vehicle.Property(models.KeyEnergyLevelGood).Number)
	assert.True(t, vehicle.Property(models.KeyEnergyLevelGood).Changed)
}

func TestValidator_VehicleClamps(t *testing.T) {
	vehicle := testutils.Vehicle("V1")
	vehicle.Property(models.KeyLength).Number = 0
	vehicle.Property(models.KeyEnergyLevelCritical).Number = -5
	vehicle.Property(models.KeyEnergyLevelGood).Number = 150
	vehicle.Property(models.KeyEnergyLevel).Number = 101
	vehicle.Property(models.KeyOrientationAngle).Number = -45

	res, err := newTestValidator().Validate(memory.NewSystemModel("m"), vehicle)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Errors)
	assert.Equal(t, 1.0, vehicle.Property(models.KeyLength).Number)
	assert.Equal(t, 0.0, vehicle.Property(models.KeyEnergyLevelCritical).Number)
	assert.Equal(t, 100.0, vehicle.Property(models.KeyEnergyLevelGood).Number)
	assert.Equal(t, 100.0, vehicle.Property(models.KeyEnergyLevel).Number)
	assert.Equal(t, 0.0, vehicle.Property(models.KeyOrientationAngle).Number)
}

func TestValidator_VehicleStates(t *testing.T) {
	vehicle := testutils.Vehicle("V1")
	vehicle.Property(models.KeyEnergyState).Text = "FULL"
	vehicle.Property(models.KeyProcState).Text = "SLEEPING"

	res, err := newTestValidator().Validate(memory.NewSystemModel("m"), vehicle)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
}

func TestValidator_VehiclePointReferences(t *testing.T) {
	v := newTestValidator()
	model := testutils.Build(t, "m", testutils.Point("P1", 0, 0))

	tests := []struct {
		name    string
		current string
		next    string
		valid   bool
	}{
		{name: "no references", current: "", next: ""},
		{name: "null sentinel", current: "null", next: "null", valid: true},
		{name: "existing point", current: "P1", next: "null", valid: true},
		{name: "missing point", current: "P1", next: "P9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vehicle := testutils.Vehicle("V1")
			vehicle.Property(models.KeyCurrentPoint).Text = tt.current
			vehicle.Property(models.KeyNextPoint).Text = tt.next

			res, err := v.Validate(model, vehicle)
			require.NoError(t, err)
			if tt.name == "no references" {
				assert.True(t, res.Valid)
			} else {
				assert.Equal(t, tt.valid, res.Valid, res.Errors)
			}
			assert.Equal(t, tt.next, vehicle.Text(models.KeyNextPoint), "references are kept verbatim")
		})
	}
}

func TestValidator_ValidateModel(t *testing.T) {
	v := newTestValidator()
	model := testutils.PlantModel(t)

	report, err := v.ValidateModel(model)
	require.NoError(t, err)
	assert.True(t, report.OK(), report.Errors)

	_, removed := model.Remove("P3")
	require.True(t, removed)

	report, err = v.ValidateModel(model)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.ElementsMatch(t, []string{"P2 --- P3", "Route-01"}, report.Rejected)
	assert.Len(t, report.Errors, 2)
}

func TestValidator_IsStateless(t *testing.T) {
	v := newTestValidator()
	model := memory.NewSystemModel("m")

	res, err := v.Validate(model, testutils.Path("Path-1", "A", "B"))
	require.NoError(t, err)
	assert.Len(t, res.Errors, 2)

	res, err = v.Validate(model, testutils.Point("P1", 0, 0))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors, "errors of earlier calls must not leak")
}

func TestReport_Deduplicates(t *testing.T) {
	r := NewReport()
	assert.True(t, r.OK())

	r.Add("a", "b")
	r.Reject("X", "a", "c")

	assert.Equal(t, []string{"a", "b", "c"}, r.Errors)
	assert.Equal(t, []string{"X"}, r.Rejected)
	assert.False(t, r.OK())

	var nilReport *Report
	assert.True(t, nilReport.OK())
}
