package service

import (
	"github.com/MKhiriev/go-psafe-cache/internal/access"
	"github.com/MKhiriev/go-psafe-cache/internal/backup"
	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/internal/workers"
)

// Services is built once at start-up and handed to every caller.
type Services struct {
	UserService       UserService
	RepositoryService RepositoryService
	Synchronizer      Synchronizer
	MutationEngine    MutationEngine
	VaultService      VaultService
	ContainerService  ContainerService
	ReadService       ReadService
	RefreshService    RefreshService
}

func NewServices(
	repos *store.Repositories,
	c codec.Codec,
	backuper backup.Backuper,
	pool *workers.Pool,
	cfg config.App,
	logger *logger.Logger,
) *Services {
	evaluator := access.NewEvaluator(cfg.PersonalRepositoryID)

	users := NewUserService(repos.UserRepository, logger)
	repositories := NewRepositoryService(repos, cfg, logger)
	synchronizer := NewSynchronizer(repos, c, logger)
	engine := NewMutationEngine(repos, c, backuper, synchronizer, logger)
	containers := newContainerService(repos, c, synchronizer, evaluator, logger)
	vault := NewVaultService(repos, users, repositories, containers, synchronizer, engine, evaluator, pool, logger)
	read := NewReadService(repos, vault, synchronizer, evaluator, logger)

	return &Services{
		UserService:       users,
		RepositoryService: repositories,
		Synchronizer:      synchronizer,
		MutationEngine:    engine,
		VaultService:      vault,
		ContainerService:  containers,
		ReadService:       read,
		RefreshService:    NewRefreshService(repos, read, vault, synchronizer, pool, logger),
	}
}
