package storage

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/logger"
)

// New builds the file store selected by cfg.Driver.
func New(cfg config.StorageConfig, log *logger.Logger) (ports.FileStore, error) {
	switch cfg.Driver {
	case "", config.StorageLocal:
		return NewLocalStore(afero.NewOsFs(), cfg.LocalDir)
	case config.StorageSFTP:
		return NewSFTPStore(cfg.SFTP, log.Named("sftp")), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
