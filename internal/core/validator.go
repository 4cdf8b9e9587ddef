package core

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/store"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

// Validator decides whether a component keeps a plant model consistent.
// It holds no per-run state: every call returns its own messages, so one
// instance may be shared freely.
type Validator struct {
	logger zerolog.Logger
}

// NewValidator creates a validator that reports value repairs to logger.
func NewValidator(logger zerolog.Logger) *Validator {
	return &Validator{logger: logger}
}

// Result is the outcome of validating one component.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks entity against model. Out-of-range numbers are repaired in
// place and logged; missing properties and unresolved references make the
// result invalid. A nil model or entity is a caller bug and returns an error.
func (v *Validator) Validate(model store.ComponentLookup, entity *models.Entity) (Result, error) {
	if model == nil {
		return Result{}, utils.NewAppError(utils.CodePrecondition, "validation requires a model", nil)
	}
	if entity == nil {
		return Result{}, utils.NewAppError(utils.CodePrecondition, "validation requires a component", nil)
	}

	c := &check{v: v, model: model, entity: entity, valid: true}
	c.run()
	return Result{Valid: c.valid, Errors: c.errors}, nil
}

// ValidateModel validates every component of model and aggregates the
// messages. One invalid component does not stop the pass.
func (v *Validator) ValidateModel(model store.ModelStore) (*Report, error) {
	if model == nil {
		return nil, utils.NewAppError(utils.CodePrecondition, "validation requires a model", nil)
	}
	report := NewReport()
	for _, e := range model.Components() {
		res, err := v.Validate(model, e)
		if err != nil {
			return nil, err
		}
		if !res.Valid {
			report.Reject(e.Name, res.Errors...)
		}
	}
	return report, nil
}

// check carries the state of a single Validate call.
type check struct {
	v      *Validator
	model  store.ComponentLookup
	entity *models.Entity
	errors []string
	valid  bool
}

func (c *check) subject() string {
	return fmt.Sprintf("%s %q", c.entity.Kind.Label(), c.entity.Name)
}

func (c *check) fail(format string, args ...interface{}) {
	c.valid = false
	c.errors = append(c.errors, c.subject()+": "+fmt.Sprintf(format, args...))
}

func (c *check) run() {
	e := c.entity
	if e.Name == "" {
		c.fail("name is empty")
		return
	}
	if existing, ok := c.model.Lookup(e.Name); ok && !existing.SameInstance(e) {
		// A second layout is merged into the model's layout, so sharing its name is fine.
		if !(e.Kind == models.KindLayout && existing.Kind == models.KindLayout) {
			c.fail("name is already used by %s", existing.Kind.Label())
			return
		}
	}

	switch e.Kind {
	case models.KindLayout:
		c.layout()
	case models.KindPoint:
		c.point()
	case models.KindPath:
		c.path()
	case models.KindLocationType:
		c.locationType()
	case models.KindLocation:
		c.location()
	case models.KindLink:
		c.link()
	case models.KindBlock:
		c.members(models.KindPoint, models.KindPath, models.KindLocation, models.KindLink)
		c.selection(models.KeyBlockType, models.BlockTypes, models.BlockSingleVehicle)
	case models.KindGroup:
		c.members(models.KindPoint, models.KindPath, models.KindLocation)
	case models.KindStaticRoute:
		c.members(models.KindPoint)
	case models.KindVehicle:
		c.vehicle()
	default:
		c.fail("unsupported component kind %q", e.Kind)
	}
}

// require reports every missing key and returns false if any is missing.
func (c *check) require(keys ...string) bool {
	ok := true
	for _, key := range keys {
		if !c.entity.Has(key) || c.entity.Property(key) == nil {
			c.fail("required property %q is missing", key)
			ok = false
		}
	}
	return ok
}

// resolve checks that name refers to an existing component of one of kinds.
func (c *check) resolve(role, name string, kinds ...models.Kind) bool {
	target, ok := c.model.Lookup(name)
	if !ok {
		c.fail("%s %q does not exist", role, name)
		return false
	}
	for _, k := range kinds {
		if target.Kind == k {
			return true
		}
	}
	c.fail("%s %q is a %s, expected %s", role, name, target.Kind.Label(), kindList(kinds))
	return false
}

func kindList(kinds []models.Kind) string {
	out := ""
	for i, k := range kinds {
		switch {
		case i == 0:
		case i == len(kinds)-1:
			out += " or "
		default:
			out += ", "
		}
		out += k.Label()
	}
	return out
}

// number returns the numeric value of key, failing when it does not parse.
func (c *check) number(key string) (float64, bool) {
	p := c.entity.Property(key)
	v, ok := p.Float()
	if !ok {
		c.fail("property %q is not a number: %q", key, p.String())
		return 0, false
	}
	return v, true
}

// repair overwrites a numeric property and logs the correction.
func (c *check) repair(key string, to float64, reason string) {
	p := c.entity.Property(key)
	from, _ := p.Float()
	if p.Type == models.PropertyString {
		p.SetText(models.FormatNumber(to))
	} else {
		p.SetNumber(to)
	}
	c.v.logger.Warn().
		Str("component", c.entity.Name).
		Str("kind", string(c.entity.Kind)).
		Str("property", key).
		Float64("from", from).
		Float64("to", to).
		Msg(reason)
}

// selection resets an unknown variant to fallback with a warning.
func (c *check) selection(key string, allowed models.Selection, fallback string) {
	p := c.entity.Property(key)
	if p == nil || p.Text == "" || allowed.Contains(p.Text) {
		return
	}
	c.v.logger.Warn().
		Str("component", c.entity.Name).
		Str("kind", string(c.entity.Kind)).
		Str("property", key).
		Str("from", p.Text).
		Str("to", fallback).
		Msg("unknown variant replaced")
	p.SetText(fallback)
}

// enum fails when the property value is not a member of allowed.
func (c *check) enum(key, label string, allowed models.Selection) {
	if value := c.entity.Text(key); !allowed.Contains(value) {
		c.fail("%s %q is not one of %v", label, value, []string(allowed))
	}
}

func (c *check) layout() {
	if !c.require(models.KeyScaleX, models.KeyScaleY) {
		return
	}
	for _, key := range []string{models.KeyScaleX, models.KeyScaleY} {
		v, ok := c.number(key)
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.fail("property %q is not a number: %q", key, c.entity.Property(key).String())
			continue
		}
		if v < 0 {
			c.fail("property %q must not be negative, got %s", key, models.FormatNumber(v))
		}
	}
}

func (c *check) point() {
	if !c.require(
		models.KeyVehicleOrientationAngle,
		models.KeyPointType,
		models.KeyModelXPosition,
		models.KeyModelYPosition,
		models.KeyXPosition,
		models.KeyYPosition,
	) {
		return
	}

	if angle, ok := c.number(models.KeyVehicleOrientationAngle); ok && angle < 0 {
		c.repair(models.KeyVehicleOrientationAngle, models.NormalizeAngle(angle), "negative orientation angle normalized")
	}

	c.enum(models.KeyPointType, "point type", models.PointTypes)

	c.number(models.KeyModelXPosition)
	c.number(models.KeyModelYPosition)
	for _, key := range []string{models.KeyXPosition, models.KeyYPosition} {
		if c.entity.Text(key) == "" {
			c.fail("property %q is empty", key)
		}
	}
}

func (c *check) path() {
	if !c.require(
		models.KeyLength,
		models.KeyRoutingCost,
		models.KeyMaxVelocity,
		models.KeyMaxReverseVelocity,
		models.KeyConnectionType,
		models.KeyControlPoints,
		models.KeyStartComponent,
		models.KeyEndComponent,
		models.KeyLocked,
	) {
		return
	}

	length := c.entity.Property(models.KeyLength)
	if mm, err := length.ValueIn(models.UnitMM); err != nil {
		c.fail("property %q is not a length: %v", models.KeyLength, err)
	} else if mm < 1 {
		length.Unit = models.UnitMM
		c.repair(models.KeyLength, 1, "path length below 1 mm raised to 1 mm")
	}

	for _, key := range []string{models.KeyMaxVelocity, models.KeyMaxReverseVelocity} {
		if v, ok := c.number(key); ok && v < 0 {
			c.repair(key, 0, "negative velocity set to 0")
		}
	}

	for _, ref := range []struct{ key, role string }{
		{models.KeyStartComponent, "start component"},
		{models.KeyEndComponent, "end component"},
	} {
		name := c.entity.Text(ref.key)
		if name == "" {
			c.fail("%s is not set", ref.role)
			continue
		}
		c.resolve(ref.role, name, models.KindPoint)
	}

	connType := c.entity.Text(models.KeyConnectionType)
	if !models.ConnectionTypes.Contains(connType) {
		c.fail("connection type %q is not one of %v", connType, []string(models.ConnectionTypes))
	} else if models.IsBezier(connType) && c.entity.Text(models.KeyControlPoints) == "" {
		c.fail("connection type %s requires control points", connType)
	}
}

func (c *check) locationType() {
	if !c.require(models.KeyAllowedOperations) {
		return
	}
	c.selection(models.KeySymbol, models.LocationSymbols, "")
}

func (c *check) location() {
	if !c.require(
		models.KeyModelXPosition,
		models.KeyModelYPosition,
		models.KeyXPosition,
		models.KeyYPosition,
		models.KeyLocationType,
		models.KeyLabelOffsetX,
		models.KeyLabelOffsetY,
		models.KeyLabelOrientationAngle,
	) {
		return
	}

	c.number(models.KeyModelXPosition)
	c.number(models.KeyModelYPosition)
	for _, key := range []string{models.KeyXPosition, models.KeyYPosition} {
		if _, ok := c.entity.Property(key).Int(); !ok {
			c.fail("property %q is not an integer: %q", key, c.entity.Text(key))
		}
	}

	typeName := c.entity.Text(models.KeyLocationType)
	if typeName == "" {
		c.fail("location type is not set")
	} else {
		c.resolve("location type", typeName, models.KindLocationType)
	}

	c.selection(models.KeySymbol, models.LocationSymbols, "")
}

func (c *check) link() {
	if !c.require(models.KeyStartComponent, models.KeyEndComponent) {
		return
	}
	start := c.entity.Text(models.KeyStartComponent)
	end := c.entity.Text(models.KeyEndComponent)
	if start == "" {
		c.fail("start component is not set")
	} else {
		c.resolve("start component", start, models.KindPoint)
	}
	if end == "" {
		c.fail("end component is not set")
	} else {
		c.resolve("end component", end, models.KindLocation)
	}
}

func (c *check) members(allowed ...models.Kind) {
	if !c.require(models.KeyElements) {
		return
	}
	seen := make(map[string]bool)
	for _, name := range c.entity.Items(models.KeyElements) {
		if seen[name] {
			c.fail("member %q is listed more than once", name)
			continue
		}
		seen[name] = true
		c.resolve("member", name, allowed...)
	}
}

func (c *check) vehicle() {
	if !c.require(
		models.KeyLength,
		models.KeyEnergyLevelCritical,
		models.KeyEnergyLevelGood,
		models.KeyEnergyLevel,
		models.KeyEnergyState,
		models.KeyLoaded,
		models.KeyProcState,
		models.KeyIntegrationLevel,
		models.KeyCurrentPoint,
		models.KeyNextPoint,
		models.KeyPrecisePosition,
		models.KeyOrientationAngle,
	) {
		return
	}

	length := c.entity.Property(models.KeyLength)
	if mm, err := length.ValueIn(models.UnitMM); err != nil {
		c.fail("property %q is not a length: %v", models.KeyLength, err)
	} else if mm < 1 {
		length.Unit = models.UnitMM
		c.repair(models.KeyLength, 1, "vehicle length below 1 mm raised to 1 mm")
	}

	critical, critOK := c.percent(models.KeyEnergyLevelCritical)
	good, goodOK := c.percent(models.KeyEnergyLevelGood)
	if critOK && goodOK && good < critical {
		c.repair(models.KeyEnergyLevelGood, critical, "good energy level raised to critical energy level")
	}
	c.percent(models.KeyEnergyLevel)

	c.enum(models.KeyEnergyState, "energy state", models.EnergyStates)
	c.enum(models.KeyProcState, "processing state", models.ProcStates)
	c.enum(models.KeyIntegrationLevel, "integration level", models.IntegrationLevels)
	if c.entity.Has(models.KeyVehicleState) {
		c.enum(models.KeyVehicleState, "vehicle state", models.VehicleStates)
	}

	if angle, ok := c.number(models.KeyOrientationAngle); ok && angle < 0 {
		c.repair(models.KeyOrientationAngle, 0, "negative orientation angle set to 0")
	}

	for _, ref := range []struct{ key, role string }{
		{models.KeyCurrentPoint, "current point"},
		{models.KeyNextPoint, "next point"},
	} {
		name := c.entity.Text(ref.key)
		if models.IsNoReference(name) {
			continue
		}
		c.resolve(ref.role, name, models.KindPoint)
	}
}

// percent clamps key into [0, 100] and returns the resulting value.
func (c *check) percent(key string) (float64, bool) {
	v, ok := c.number(key)
	if !ok {
		return 0, false
	}
	switch {
	case v < 0:
		c.repair(key, 0, "percentage below 0 clamped")
		return 0, true
	case v > 100:
		c.repair(key, 100, "percentage above 100 clamped")
		return 100, true
	}
	return v, true
}
