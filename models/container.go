package models

import (
	"path/filepath"
	"time"
)

// Container identifies one on-disk container file by repository and relative
// path. An empty Filename marks a container whose file went missing.
type Container struct {
	ID           int64  `json:"id"`
	RepositoryID int64  `json:"repository_id"`
	Filename     string `json:"filename"`

	// UUID is the container's internal identifier, known after the first
	// successful synchronization.
	UUID string `json:"uuid"`

	// OwnerID is set for personal containers.
	OwnerID *int64 `json:"owner_id,omitempty"`
}

// Missing reports whether the backing file was not found on the last scan.
func (c Container) Missing() bool {
	return c.Filename == ""
}

// FullPath joins the container filename with the repository root.
func (c Container) FullPath(repo Repository) string {
	return filepath.Join(repo.Path, c.Filename)
}

// Snapshot is the cached mirror of a container's header plus change-tracking
// and usage counters.
type Snapshot struct {
	ID          int64 `json:"id"`
	ContainerID int64 `json:"container_id"`

	UUID          string    `json:"uuid"`
	DBName        string    `json:"db_name"`
	DBDescription string    `json:"db_description"`
	DBPassword    string    `json:"-"`
	LastSaveTime  time.Time `json:"last_save_time"`
	LastSaveApp   string    `json:"last_save_app"`
	LastSaveHost  string    `json:"last_save_host"`
	LastSaveUser  string    `json:"last_save_user"`

	FileLastModified time.Time `json:"file_last_modified"`
	FileLastSize     int64     `json:"file_last_size"`

	UseCount      int64     `json:"use_count"`
	LastRefreshed time.Time `json:"last_refreshed"`
}

// Header holds the container-level descriptive fields read from and written
// to the container file.
type Header struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	LastSaveTime time.Time `json:"last_save_time"`
	LastSaveApp  string    `json:"last_save_app"`
	LastSaveHost string    `json:"last_save_host"`
	LastSaveUser string    `json:"last_save_user"`
}

// NewContainer describes a container to provision.
type NewContainer struct {
	RepositoryID int64  `json:"repository_id"`
	Filename     string `json:"filename"`
	Password     string `json:"-"`
	OwnerID      *int64 `json:"owner_id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

// DiscoveryResult counts what one repository scan changed.
type DiscoveryResult struct {
	RepositoryID int64 `json:"repository_id"`
	Added        int   `json:"added"`
	Missing      int   `json:"missing"`
}
