// Package persist moves plant models between registries and files.
package persist

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sumandas0/plantmodel/internal/codec"
	"github.com/sumandas0/plantmodel/internal/codec/legacy"
	"github.com/sumandas0/plantmodel/internal/codec/unified"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

const (
	ExtLegacy  = ".opentcs"
	ExtUnified = ".xml"
)

// Codec reads and writes one file format.
type Codec interface {
	codec.Importer
	codec.Exporter
}

// Formats maps format names to codecs.
type Formats struct {
	byName map[string]Codec
}

func NewFormats(codecs ...Codec) *Formats {
	f := &Formats{byName: make(map[string]Codec, len(codecs))}
	for _, c := range codecs {
		f.byName[c.Format()] = c
	}
	return f
}

// DefaultFormats registers the legacy and unified converters.
func DefaultFormats(logger zerolog.Logger) *Formats {
	return NewFormats(
		legacy.NewConverter(logger.With().Str("codec", codec.FormatLegacy).Logger()),
		unified.NewConverter(logger.With().Str("codec", codec.FormatUnified).Logger()),
	)
}

func (f *Formats) Get(format string) (Codec, error) {
	c, ok := f.byName[format]
	if !ok {
		return nil, utils.NewAppError(utils.CodeUnsupportedFormat, "no converter for format", nil).
			WithDetail("format", format)
	}
	return c, nil
}

// FormatFor picks the file format from the extension of path.
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtLegacy:
		return codec.FormatLegacy, nil
	case ExtUnified:
		return codec.FormatUnified, nil
	}
	return "", utils.NewAppError(utils.CodeUnsupportedFormat, "unsupported plant model file extension", nil).
		WithDetail("path", path)
}

// ExtensionFor is the inverse of FormatFor.
func ExtensionFor(format string) (string, error) {
	switch format {
	case codec.FormatLegacy:
		return ExtLegacy, nil
	case codec.FormatUnified:
		return ExtUnified, nil
	}
	return "", utils.NewAppError(utils.CodeUnsupportedFormat, "unknown plant model format", nil).
		WithDetail("format", format)
}
