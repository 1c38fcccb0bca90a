package service

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/internal/workers"
	"github.com/MKhiriev/go-psafe-cache/models"
)

type refreshService struct {
	read         ReadService
	vault        VaultService
	cache        store.CacheRepository
	synchronizer Synchronizer
	pool         *workers.Pool
	logger       *logger.Logger
}

func NewRefreshService(repos *store.Repositories, read ReadService, vault VaultService, synchronizer Synchronizer, pool *workers.Pool, logger *logger.Logger) RefreshService {
	return &refreshService{
		read:         read,
		vault:        vault,
		cache:        repos.CacheRepository,
		synchronizer: synchronizer,
		pool:         pool,
		logger:       logger,
	}
}

// RefreshContainers checks every container first: one unknown or unreadable
// id fails the whole call before anything is dispatched. Containers whose
// password is not in the user's vault are skipped.
func (r *refreshService) RefreshContainers(ctx context.Context, user models.User, userPassword string, containerIDs []int64, wait bool) (int, error) {
	containers := make([]models.Container, 0, len(containerIDs))
	for _, id := range containerIDs {
		c, err := r.read.GetContainer(ctx, user, id)
		if err != nil {
			return 0, err
		}
		containers = append(containers, c)
	}
	return r.dispatch(ctx, user, userPassword, containers, wait)
}

// RefreshContainersByUUID resolves each uuid to exactly one readable
// container before dispatching.
func (r *refreshService) RefreshContainersByUUID(ctx context.Context, user models.User, userPassword string, uuids []string, wait bool) (int, error) {
	containers := make([]models.Container, 0, len(uuids))
	for _, uuid := range uuids {
		c, err := r.read.GetContainerByUUID(ctx, user, uuid)
		if err != nil {
			return 0, err
		}
		containers = append(containers, c)
	}
	return r.dispatch(ctx, user, userPassword, containers, wait)
}

func (r *refreshService) dispatch(ctx context.Context, user models.User, userPassword string, containers []models.Container, wait bool) (int, error) {
	log := logger.FromContext(ctx)

	futures := make([]*workers.Future, 0, len(containers))
	for _, c := range containers {
		password, err := r.vault.GetStoredPassword(ctx, user, userPassword, c)
		if err != nil {
			log.Warn().Err(err).Int64("container_id", c.ID).Msg("no usable stored password, skipping refresh")
			continue
		}
		containerID := c.ID
		futures = append(futures, r.pool.Submit(ctx, "refresh-"+strconv.FormatInt(containerID, 10), func(jobCtx context.Context) error {
			_, err := r.synchronizer.Synchronize(jobCtx, containerID, password, false)
			return err
		}))
	}

	if !wait {
		return len(futures), nil
	}
	done := 0
	for _, f := range futures {
		if err := f.Wait(ctx); err == nil {
			done++
		}
	}
	return done, nil
}

func (r *refreshService) RefreshByTimestamp(ctx context.Context) (int, error) {
	snapshots, err := r.cache.ListSnapshots(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	return r.refresh(ctx, "refresh-by-timestamp", snapshots, false)
}

func (r *refreshService) RefreshQuick(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		return 0, fmt.Errorf("%w: limit must be positive", ErrInvalidDataProvided)
	}
	snapshots, err := r.cache.LeastRecentlyRefreshed(ctx, limit)
	if err != nil {
		return 0, storeError(err)
	}
	return r.refresh(ctx, "refresh-quick", snapshots, true)
}

func (r *refreshService) RefreshFull(ctx context.Context) (int, error) {
	snapshots, err := r.cache.ListSnapshots(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	return r.refresh(ctx, "refresh-full", snapshots, true)
}

// refresh synchronizes every snapshot with its stored password on the pool
// and waits. Failures are joined; the others still run.
func (r *refreshService) refresh(ctx context.Context, name string, snapshots []models.Snapshot, force bool) (int, error) {
	var changed atomic.Int64

	jobs := make([]workers.Job, 0, len(snapshots))
	for _, s := range snapshots {
		jobs = append(jobs, func(jobCtx context.Context) error {
			ok, err := r.synchronizer.Synchronize(jobCtx, s.ContainerID, s.DBPassword, force)
			if err != nil {
				return fmt.Errorf("container %d: %w", s.ContainerID, err)
			}
			if ok {
				changed.Add(1)
			}
			return nil
		})
	}

	err := r.pool.Run(ctx, name, jobs...)
	logger.FromContext(ctx).Info().Str("task", name).Int("containers", len(snapshots)).
		Int64("changed", changed.Load()).Msg("refresh finished")
	return int(changed.Load()), err
}
