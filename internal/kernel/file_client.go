package kernel

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sumandas0/plantmodel/internal/lock"
	"github.com/sumandas0/plantmodel/pkg/plantmodel"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

// SpoolFileName is the file a FileClient keeps the kernel's model in.
const SpoolFileName = "kernel-model.xml"

// FileClient stands in for a kernel by keeping the uploaded transfer object
// graph in a spool directory. Kernel adapters drop their import files there.
// Clients sharing a spool directory within one process take turns.
type FileClient struct {
	dir   string
	locks *lock.Manager
}

func NewFileClient(dir string) *FileClient {
	return &FileClient{dir: dir, locks: lock.Default()}
}

func (c *FileClient) path() string {
	return filepath.Join(c.dir, SpoolFileName)
}

func (c *FileClient) CreatePlantModel(ctx context.Context, model *plantmodel.Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	guard, err := c.locks.Lock(ctx, c.path())
	if err != nil {
		return err
	}
	defer guard.Release()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to create kernel spool directory", err).
			WithDetail("dir", c.dir)
	}
	tmp, err := os.CreateTemp(c.dir, "."+SpoolFileName+".tmp-*")
	if err != nil {
		return utils.NewAppError(utils.CodeIO, "failed to create kernel spool file", err)
	}
	if err := plantmodel.Encode(model, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return utils.NewAppError(utils.CodeIO, "failed to write kernel spool file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return utils.NewAppError(utils.CodeIO, "failed to write kernel spool file", err)
	}
	if err := os.Rename(tmp.Name(), c.path()); err != nil {
		os.Remove(tmp.Name())
		return utils.NewAppError(utils.CodeIO, "failed to publish kernel spool file", err)
	}
	return nil
}

func (c *FileClient) GetPlantModel(ctx context.Context) (*plantmodel.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	guard, err := c.locks.Lock(ctx, c.path())
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	f, err := os.Open(c.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, utils.NewAppError(utils.CodeNotFound, "kernel holds no plant model", err).
				WithDetail("dir", c.dir)
		}
		return nil, utils.NewAppError(utils.CodeIO, "failed to read kernel spool file", err)
	}
	defer f.Close()

	m, err := plantmodel.Decode(f)
	if err != nil {
		return nil, utils.NewAppError(utils.CodeInvalidInput, "kernel spool file is malformed", err)
	}
	return m, nil
}
