package manager

import (
	"math"

	"github.com/sumandas0/plantmodel/internal/models"
)

// Scale is the model length in millimetres covered by one pixel, per axis.
// Screen Y grows downwards and model Y upwards, so each conversion negates Y
// exactly once.
type Scale struct {
	X float64
	Y float64
}

func DefaultScale() Scale {
	return Scale{X: models.DefaultScale, Y: models.DefaultScale}
}

func (s Scale) ToPixel(x, y float64) (float64, float64) {
	return x / s.X, -y / s.Y
}

func (s Scale) ToModel(px, py float64) (float64, float64) {
	return px * s.X, -py * s.Y
}

// Valid reports whether both factors are positive and finite.
func (s Scale) Valid() bool {
	return validFactor(s.X) && validFactor(s.Y)
}

func validFactor(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ScaleOf reads the scale stored on a layout. Unusable factors fall back to
// the default scale.
func ScaleOf(layout *models.Entity) Scale {
	s := DefaultScale()
	if layout == nil {
		return s
	}
	if v, err := layout.Property(models.KeyScaleX).ValueIn(models.UnitMM); err == nil && validFactor(v) {
		s.X = v
	}
	if v, err := layout.Property(models.KeyScaleY).ValueIn(models.UnitMM); err == nil && validFactor(v) {
		s.Y = v
	}
	return s
}
