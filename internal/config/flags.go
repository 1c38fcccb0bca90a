package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/pflag"
)

// Flags holds the values of the configuration flags registered on a flag
// set. Values are read after the command line has been parsed.
type Flags struct {
	cfg            StructuredConfig
	backupEndpoint endpoint
}

// RegisterFlags binds all configuration flags to fs and returns the holder
// the parsed values are read from.
//
// Flags:
//
//	-c/--config                JSON config file path
//	--db-driver                database driver (postgres, sqlite3)
//	-d/--dsn                   database DSN
//	--personal-repo-id         personal vault repository id
//	--personal-repo-path       personal vault repository root
//	--lock-timeout             container lock timeout (e.g., "10s")
//	--log-level                log level (debug, info, warn, error)
//	--backup-endpoint          backup object storage host:port
//	--backup-bucket            backup bucket name
//	--workers                  job pool size
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}

	fs.StringVarP(&f.cfg.JSONFilePath, "config", "c", "", "JSON config file path")
	fs.StringVar(&f.cfg.Storage.DB.Driver, "db-driver", "", "Database driver (postgres, sqlite3)")
	fs.StringVarP(&f.cfg.Storage.DB.DSN, "dsn", "d", "", "Database DSN")
	fs.Int64Var(&f.cfg.App.PersonalRepositoryID, "personal-repo-id", 0, "Personal vault repository id")
	fs.StringVar(&f.cfg.App.PersonalRepositoryPath, "personal-repo-path", "", "Personal vault repository root")
	fs.DurationVar(&f.cfg.App.LockTimeout, "lock-timeout", 0, "Container lock timeout (e.g., 10s)")
	fs.StringVar(&f.cfg.App.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.Var(&f.backupEndpoint, "backup-endpoint", "Backup object storage host:port")
	fs.StringVar(&f.cfg.Backup.Bucket, "backup-bucket", "", "Backup bucket name")
	fs.IntVar(&f.cfg.Workers.PoolSize, "workers", 0, "Job pool size")

	return f
}

// Config returns a copy of the parsed flag values.
func (f *Flags) Config() *StructuredConfig {
	cfg := f.cfg
	cfg.Backup.Endpoint = f.backupEndpoint.String()
	return &cfg
}

// endpoint is a host:port flag value. Hosts may be names or IP literals;
// IPv6 literals need brackets.
type endpoint struct {
	host string
	port int
}

func (e *endpoint) String() string {
	if e.host == "" {
		return ""
	}
	return net.JoinHostPort(e.host, strconv.Itoa(e.port))
}

func (e *endpoint) Set(s string) error {
	host, rawPort, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("need host:port: %w", err)
	}
	if host == "" {
		return errors.New("empty host")
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("bad port %q", rawPort)
	}

	e.host, e.port = host, port
	return nil
}

func (e *endpoint) Type() string {
	return "host:port"
}
