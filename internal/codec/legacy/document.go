package legacy

import (
	"fmt"

	"github.com/sumandas0/plantmodel/internal/models"
	"gopkg.in/yaml.v3"
)

// Version is written into every legacy document.
const Version = "1.0"

// document is the root of a legacy model file. Components is kept as a raw
// node so that each entry can carry its kind as a YAML tag.
type document struct {
	Version    string    `yaml:"version"`
	Name       string    `yaml:"name"`
	Components yaml.Node `yaml:"components"`
}

type component struct {
	Name       string     `yaml:"name"`
	Properties []property `yaml:"properties,omitempty"`
}

type property struct {
	Key    string   `yaml:"key"`
	Type   string   `yaml:"type"`
	Unit   string   `yaml:"unit,omitempty"`
	Number *float64 `yaml:"number,omitempty"`
	Text   *string  `yaml:"text,omitempty"`
	Flag   *bool    `yaml:"flag,omitempty"`
	Items  []string `yaml:"items,omitempty"`
	Pairs  []pair   `yaml:"pairs,omitempty"`
	Color  string   `yaml:"color,omitempty"`
	Triple *triple  `yaml:"triple,omitempty"`
}

type pair struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type triple struct {
	X int64 `yaml:"x"`
	Y int64 `yaml:"y"`
	Z int64 `yaml:"z"`
}

func encodeProperty(key string, p *models.Property) property {
	out := property{Key: key, Type: string(p.Type), Unit: string(p.Unit)}
	switch p.Type {
	case models.PropertyBoolean:
		v := p.Flag
		out.Flag = &v
	case models.PropertyString, models.PropertySelection:
		v := p.Text
		out.Text = &v
	case models.PropertyStringSet:
		out.Items = append([]string(nil), p.Items...)
	case models.PropertyColor:
		out.Color = p.Color.String()
	case models.PropertyTriple:
		if p.Triple != nil {
			out.Triple = &triple{X: p.Triple.X, Y: p.Triple.Y, Z: p.Triple.Z}
		}
	case models.PropertyKeyValueSet:
		for _, kv := range p.Pairs {
			out.Pairs = append(out.Pairs, pair{Key: kv.Key, Value: kv.Value})
		}
	default:
		v := p.Number
		out.Number = &v
	}
	return out
}

func decodeProperty(in property) (*models.Property, error) {
	t := models.PropertyType(in.Type)
	p := &models.Property{Type: t, Unit: models.Unit(in.Unit)}
	switch {
	case t.Numeric():
		if in.Number == nil {
			return nil, fmt.Errorf("property %q has no number", in.Key)
		}
		p.Number = *in.Number
	case t == models.PropertyBoolean:
		if in.Flag != nil {
			p.Flag = *in.Flag
		}
	case t == models.PropertyString || t == models.PropertySelection:
		if in.Text != nil {
			p.Text = *in.Text
		}
	case t == models.PropertyStringSet:
		p.Items = append([]string(nil), in.Items...)
	case t == models.PropertyColor:
		c, err := models.ParseColor(in.Color)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", in.Key, err)
		}
		p.Color = c
	case t == models.PropertyTriple:
		p.Triple = &models.Triple{}
		if in.Triple != nil {
			p.Triple = &models.Triple{X: in.Triple.X, Y: in.Triple.Y, Z: in.Triple.Z}
		}
	case t == models.PropertyKeyValueSet:
		for _, kv := range in.Pairs {
			p.Pairs = append(p.Pairs, models.KeyValue{Key: kv.Key, Value: kv.Value})
		}
	default:
		return nil, fmt.Errorf("property %q has unknown type %q", in.Key, in.Type)
	}
	return p, nil
}
