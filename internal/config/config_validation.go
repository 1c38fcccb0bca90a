// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}
	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: empty DSN", ErrInvalidStorageConfigs)
	}

	if cfg.App.PersonalRepositoryID <= 0 || cfg.App.PersonalRepositoryPath == "" {
		return fmt.Errorf("%w: personal repository is not configured", ErrInvalidAppConfigs)
	}
	if cfg.App.LockTimeout <= 0 {
		return fmt.Errorf("%w: lock timeout must be positive", ErrInvalidAppConfigs)
	}
	if _, err := zerolog.ParseLevel(cfg.App.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAppConfigs, err)
	}

	w := cfg.Workers
	if w.PoolSize <= 0 || w.RefreshQuickBatch <= 0 ||
		w.RefreshByTimestampInterval <= 0 || w.RefreshQuickInterval <= 0 ||
		w.RefreshFullInterval <= 0 || w.DiscoveryInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Backup.Endpoint != "" && cfg.Backup.Bucket == "" {
		return fmt.Errorf("%w: bucket is required when endpoint is set", ErrInvalidBackupConfigs)
	}

	return nil
}
