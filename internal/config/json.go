package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		Name                   string   `json:"name"`
		PersonalRepositoryID   int64    `json:"personal_repository_id"`
		PersonalRepositoryPath string   `json:"personal_repository_path"`
		LockTimeout            Duration `json:"lock_timeout"`
		LogLevel               string   `json:"log_level"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Backup struct {
		Endpoint        string `json:"endpoint"`
		AccessKeyID     string `json:"access_key_id"`
		SecretAccessKey string `json:"secret_access_key"`
		Bucket          string `json:"bucket"`
		Region          string `json:"region"`
		UseSSL          bool   `json:"use_ssl"`
	} `json:"backup,omitempty"`

	Workers struct {
		PoolSize                   int      `json:"pool_size"`
		RefreshByTimestampInterval Duration `json:"refresh_by_timestamp_interval"`
		RefreshQuickInterval       Duration `json:"refresh_quick_interval"`
		RefreshQuickBatch          int      `json:"refresh_quick_batch"`
		RefreshFullInterval        Duration `json:"refresh_full_interval"`
		DiscoveryInterval          Duration `json:"discovery_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Name:                   jsonCfg.App.Name,
			PersonalRepositoryID:   jsonCfg.App.PersonalRepositoryID,
			PersonalRepositoryPath: jsonCfg.App.PersonalRepositoryPath,
			LockTimeout:            time.Duration(jsonCfg.App.LockTimeout),
			LogLevel:               jsonCfg.App.LogLevel,
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
		},
		Backup: Backup{
			Endpoint:        jsonCfg.Backup.Endpoint,
			AccessKeyID:     jsonCfg.Backup.AccessKeyID,
			SecretAccessKey: jsonCfg.Backup.SecretAccessKey,
			Bucket:          jsonCfg.Backup.Bucket,
			Region:          jsonCfg.Backup.Region,
			UseSSL:          jsonCfg.Backup.UseSSL,
		},
		Workers: Workers{
			PoolSize:                   jsonCfg.Workers.PoolSize,
			RefreshByTimestampInterval: time.Duration(jsonCfg.Workers.RefreshByTimestampInterval),
			RefreshQuickInterval:       time.Duration(jsonCfg.Workers.RefreshQuickInterval),
			RefreshQuickBatch:          jsonCfg.Workers.RefreshQuickBatch,
			RefreshFullInterval:        time.Duration(jsonCfg.Workers.RefreshFullInterval),
			DiscoveryInterval:          time.Duration(jsonCfg.Workers.DiscoveryInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
