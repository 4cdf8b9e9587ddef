package persist

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/sumandas0/plantmodel/internal/core"
	"github.com/sumandas0/plantmodel/internal/store"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

// Persistor validates a model and writes it to a file.
type Persistor struct {
	validator *core.Validator
	formats   *Formats
	logger    zerolog.Logger
}

func NewPersistor(validator *core.Validator, formats *Formats, logger zerolog.Logger) *Persistor {
	return &Persistor{
		validator: validator,
		formats:   formats,
		logger:    logger,
	}
}

// Check validates every component of model. With errors present and
// ignoreErrors unset it returns a VALIDATION_ERROR carrying the batch.
func (p *Persistor) Check(model store.ModelStore, ignoreErrors bool) (*core.Report, error) {
	report, err := p.validator.ValidateModel(model)
	if err != nil {
		return nil, err
	}
	if report.OK() {
		return report, nil
	}
	if !ignoreErrors {
		return report, utils.NewAppError(utils.CodeValidation, "model contains invalid components", nil).
			WithDetail("errors", report.Errors).
			WithDetail("rejected", report.Rejected)
	}
	p.logger.Warn().
		Int("errors", len(report.Errors)).
		Strs("rejected", report.Rejected).
		Msg("writing model despite validation errors")
	return report, nil
}

// Serialize validates model and writes it to path in the format implied by
// the extension. A non-empty name renames the model first. Nothing is
// written when validation fails and ignoreErrors is unset.
func (p *Persistor) Serialize(model store.ModelStore, name, path string, ignoreErrors bool) (*core.Report, error) {
	if model == nil {
		return nil, utils.NewAppError(utils.CodePrecondition, "serialize requires a model", nil)
	}
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	exporter, err := p.formats.Get(format)
	if err != nil {
		return nil, err
	}
	report, err := p.Check(model, ignoreErrors)
	if err != nil {
		return report, err
	}
	if name != "" {
		model.SetName(name)
	}

	err = writeAtomic(path, func(w io.Writer) error {
		return exporter.Export(model, w)
	})
	if err != nil {
		return report, err
	}

	p.logger.Info().
		Str("path", path).
		Str("format", format).
		Int("components", model.Len()).
		Msg("model written")
	return report, nil
}

// writeAtomic writes through a temporary file in the destination directory
// and renames it into place, so path never holds a partial document.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to create temporary file", err).
			WithDetail("path", path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return utils.NewAppError(utils.CodeIO, "failed to write model", err).WithDetail("path", path)
	}
	if err = bw.Flush(); err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to write model", err).WithDetail("path", path)
	}
	if err = tmp.Sync(); err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to sync model file", err).WithDetail("path", path)
	}
	if err = tmp.Close(); err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to close model file", err).WithDetail("path", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to move model file into place", err).
			WithDetail("path", path)
	}
	return nil
}
