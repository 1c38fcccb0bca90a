// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"dario.cat/mergo"
)

// layer is one configuration source. load sees the layers read before it
// and may return nil when the source has nothing to contribute.
type layer struct {
	name string
	load func(earlier []*StructuredConfig) (*StructuredConfig, error)
}

// load reads the layers in priority order, merges them so that the first
// non-zero value of every field wins, and validates the result.
func load(layers ...layer) (*StructuredConfig, error) {
	read := make([]*StructuredConfig, 0, len(layers))
	for _, l := range layers {
		cfg, err := l.load(read)
		if err != nil {
			return nil, fmt.Errorf("error loading %s config: %w", l.name, err)
		}
		if cfg != nil {
			read = append(read, cfg)
		}
	}

	merged := new(StructuredConfig)
	for _, cfg := range read {
		if err := mergo.Merge(merged, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return merged, merged.validate()
}

func flagsLayer(flags *Flags) layer {
	return layer{name: "flags", load: func([]*StructuredConfig) (*StructuredConfig, error) {
		if flags == nil {
			return nil, nil
		}
		return flags.Config(), nil
	}}
}

func envLayer(environ map[string]string) layer {
	return layer{name: "env", load: func([]*StructuredConfig) (*StructuredConfig, error) {
		return parseEnv(environ)
	}}
}

// jsonLayer reads the file named by the first earlier layer that names one.
func jsonLayer() layer {
	return layer{name: "json", load: func(earlier []*StructuredConfig) (*StructuredConfig, error) {
		for _, cfg := range earlier {
			if cfg.JSONFilePath != "" {
				return parseJSON(cfg.JSONFilePath)
			}
		}
		return nil, nil
	}}
}

func defaultsLayer() layer {
	return layer{name: "default", load: func([]*StructuredConfig) (*StructuredConfig, error) {
		return Defaults(), nil
	}}
}
