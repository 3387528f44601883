package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/adapters/store"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/config"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

// StoreFactory creates result stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResultStore creates a result store based on the configuration. The
// "none" type returns nil, which disables dedup and persistence.
func (f *StoreFactory) CreateResultStore() (core.ResultStore, error) {
	storeType := f.cfg.GetString("store.type")
	retention, err := f.cfg.GetDuration("store.retention")
	if err != nil {
		return nil, fmt.Errorf("invalid store retention: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("store.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid store cleanup frequency: %w", err)
	}

	switch storeType {
	case "none":
		return nil, nil
	case "memory":
		return store.NewMemoryStore(f.logger, retention, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("store.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSqliteStore(f.logger, sqlitePath, retention, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("store.mysql_dsn")
		return store.NewMysqlStore(f.logger, mysqlDSN, retention, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
