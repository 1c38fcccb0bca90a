// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable the config reads,
// e.g. PSAFECACHE_STORAGE_DB_DATABASE_URI.
const EnvPrefix = "PSAFECACHE_"

// parseEnv reads the environment layer. A nil environ reads the process
// environment; tests pass their own map instead of mutating it.
func parseEnv(environ map[string]string) (*StructuredConfig, error) {
	cfg := new(StructuredConfig)
	opts := env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("error reading %s* environment: %w", EnvPrefix, err)
	}
	return cfg, nil
}
