// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"io"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want *StructuredConfig
	}{
		{
			name: "no flags",
			args: []string{},
			want: &StructuredConfig{},
		},
		{
			name: "short names",
			args: []string{"-c", "/etc/psafecache.json", "-d", "cache.db"},
			want: &StructuredConfig{
				JSONFilePath: "/etc/psafecache.json",
				Storage:      Storage{DB: DB{DSN: "cache.db"}},
			},
		},
		{
			name: "everything",
			args: []string{
				"--config", "/etc/psafecache.json",
				"--db-driver", DriverPostgres,
				"--dsn", "postgres://cache@db/psafe",
				"--personal-repo-id", "7",
				"--personal-repo-path", "/srv/personal",
				"--lock-timeout", "3s",
				"--log-level", "warn",
				"--backup-endpoint", "minio.internal:9000",
				"--backup-bucket", "psafes",
				"--workers", "8",
			},
			want: &StructuredConfig{
				JSONFilePath: "/etc/psafecache.json",
				App: App{
					PersonalRepositoryID:   7,
					PersonalRepositoryPath: "/srv/personal",
					LockTimeout:            3 * time.Second,
					LogLevel:               "warn",
				},
				Storage: Storage{DB: DB{Driver: DriverPostgres, DSN: "postgres://cache@db/psafe"}},
				Backup:  Backup{Endpoint: "minio.internal:9000", Bucket: "psafes"},
				Workers: Workers{PoolSize: 8},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("psafecache", pflag.ContinueOnError)
			flags := RegisterFlags(fs)
			require.NoError(t, fs.Parse(tt.args))
			assert.Equal(t, tt.want, flags.Config())
		})
	}
}

func TestRegisterFlags_ConfigIsACopy(t *testing.T) {
	fs := pflag.NewFlagSet("psafecache", pflag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-d", "cache.db"}))

	flags.Config().Storage.DB.DSN = "changed.db"
	assert.Equal(t, "cache.db", flags.Config().Storage.DB.DSN)
}

func TestEndpoint_Set(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "localhost:9000", want: "localhost:9000"},
		{input: "minio.internal:443", want: "minio.internal:443"},
		{input: "10.0.0.5:9000", want: "10.0.0.5:9000"},
		{input: "[::1]:9000", want: "[::1]:9000"},
		{input: "minio", wantErr: true},
		{input: ":9000", wantErr: true},
		{input: "minio:http", wantErr: true},
		{input: "minio:0", wantErr: true},
		{input: "minio:70000", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var e endpoint
			err := e.Set(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, e.String())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestRegisterFlags_RejectsBadBackupEndpoint(t *testing.T) {
	fs := pflag.NewFlagSet("psafecache", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	RegisterFlags(fs)
	assert.Error(t, fs.Parse([]string{"--backup-endpoint", "minio"}))
}
