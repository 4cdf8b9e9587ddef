package persist

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sumandas0/plantmodel/internal/codec"
	"github.com/sumandas0/plantmodel/internal/core"
	"github.com/sumandas0/plantmodel/internal/store/memory"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

// Reader loads a model, keeping every component that validates against
// what was loaded before it and reporting the rest.
type Reader struct {
	validator *core.Validator
	formats   *Formats
	logger    zerolog.Logger
}

func NewReader(validator *core.Validator, formats *Formats, logger zerolog.Logger) *Reader {
	return &Reader{
		validator: validator,
		formats:   formats,
		logger:    logger,
	}
}

// Deserialize reads the model file at path. Without a model name in the
// file, the file name without extension is used.
func (r *Reader) Deserialize(path string) (*memory.SystemModel, *core.Report, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, utils.NewAppError(utils.CodeIO, "failed to open model file", err).
			WithDetail("path", path)
	}
	defer f.Close()

	model, report, err := r.Read(f, format)
	if err != nil {
		return nil, nil, err
	}
	if model.Name() == "" {
		model.SetName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	return model, report, nil
}

// Read parses in with the converter registered for format.
func (r *Reader) Read(in io.Reader, format string) (*memory.SystemModel, *core.Report, error) {
	importer, err := r.formats.Get(format)
	if err != nil {
		return nil, nil, err
	}
	fragment, err := importer.Parse(in)
	if err != nil {
		return nil, nil, err
	}
	return r.Load(fragment)
}

// Load validates the components of fragment in order and inserts the valid
// ones into a fresh registry. Invalid components are recorded in the report.
func (r *Reader) Load(fragment *codec.Fragment) (*memory.SystemModel, *core.Report, error) {
	if fragment == nil {
		return nil, nil, utils.NewAppError(utils.CodePrecondition, "load requires converted components", nil)
	}
	model := memory.NewSystemModel(fragment.ModelName)
	report := core.NewReport()
	report.Add(fragment.Problems...)

	for _, e := range fragment.Components {
		res, err := r.validator.Validate(model, e)
		if err != nil {
			return nil, nil, err
		}
		if !res.Valid {
			report.Reject(e.Name, res.Errors...)
			r.logger.Warn().
				Str("component", e.Name).
				Str("kind", string(e.Kind)).
				Strs("errors", res.Errors).
				Msg("component rejected")
			continue
		}
		if err := model.Add(e); err != nil {
			report.Reject(e.Name, err.Error())
			continue
		}
	}

	r.logger.Info().
		Str("model", model.Name()).
		Int("components", model.Len()).
		Int("rejected", len(report.Rejected)).
		Int("errors", len(report.Errors)).
		Msg("model loaded")
	return model, report, nil
}
