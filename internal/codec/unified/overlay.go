package unified

import "github.com/sumandas0/plantmodel/pkg/plantmodel"

// Layout element property keys.
const (
	KeyPositionX             = "POSITION_X"
	KeyPositionY             = "POSITION_Y"
	KeyLabelOffsetX          = "LABEL_OFFSET_X"
	KeyLabelOffsetY          = "LABEL_OFFSET_Y"
	KeyLabelOrientationAngle = "LABEL_ORIENTATION_ANGLE"
	KeyConnectionType        = "CONN_TYPE"
	KeyControlPoints         = "CONTROL_POINTS"
	KeyColor                 = "COLOR"
	KeyRouteColor            = "ROUTE_COLOR"
)

// Overlay indexes the presentation properties of the first visual layout by
// component name. The first element carrying a name wins.
type Overlay struct {
	elements map[string]map[string]string
	ignored  int
}

// NewOverlay indexes layouts[0]. Further layouts are counted but not read.
func NewOverlay(layouts []plantmodel.VisualLayout) *Overlay {
	o := &Overlay{elements: make(map[string]map[string]string)}
	if len(layouts) == 0 {
		return o
	}
	o.ignored = len(layouts) - 1
	for _, el := range layouts[0].ModelLayoutElements {
		if _, seen := o.elements[el.VisualizedObjectName]; seen {
			continue
		}
		props := make(map[string]string, len(el.Properties))
		for _, p := range el.Properties {
			if _, dup := props[p.Name]; !dup {
				props[p.Name] = p.Value
			}
		}
		o.elements[el.VisualizedObjectName] = props
	}
	return o
}

// Value returns the overlay property key of the named component.
func (o *Overlay) Value(name, key string) (string, bool) {
	if o == nil {
		return "", false
	}
	props, ok := o.elements[name]
	if !ok {
		return "", false
	}
	v, ok := props[key]
	return v, ok
}

// ValueOr is Value with a fallback for a missing element or key.
func (o *Overlay) ValueOr(name, key, fallback string) string {
	if v, ok := o.Value(name, key); ok {
		return v
	}
	return fallback
}

// Ignored is the number of visual layouts that were not read.
func (o *Overlay) Ignored() int {
	if o == nil {
		return 0
	}
	return o.ignored
}

func (o *Overlay) Len() int {
	if o == nil {
		return 0
	}
	return len(o.elements)
}
