package store

import "github.com/MKhiriev/go-psafe-cache/internal/logger"

// Repositories groups every store interface built over one connection.
type Repositories struct {
	UserRepository       UserRepository
	RepositoryRepository RepositoryRepository
	ContainerRepository  ContainerRepository
	CacheRepository      CacheRepository
	EntryFinder          EntryFinder
}

func NewRepositories(db *DB, logger *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db, logger),
		RepositoryRepository: NewRepositoryRepository(db, logger),
		ContainerRepository:  NewContainerRepository(db, logger),
		CacheRepository:      NewCacheRepository(db, logger),
		EntryFinder:          NewEntryFinder(db, logger),
	}
}
