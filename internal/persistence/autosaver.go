package persistence

import (
	"fmt"
	"os"
	"postit/internal/persistence/interfaces"
	"postit/internal/providers"
	"postit/internal/services"
	"postit/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"
)

type Autosaver struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.SocialServiceInterface
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
	lastSaved   atomic.Time
	now         func() time.Time
}

func (s *Autosaver) Init() {
	s.cron = gron.New()
	interval := s.config.Persistence.SaveInterval

	s.cron.AddFunc(gron.Every(interval), func() {
		_ = s.Persist()
	})

	s.cron.Start()
	s.logger.Infof(providers.TypePersistence, "Autosave every %s to %s", interval, s.config.Persistence.FilePath)
}

func (s *Autosaver) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore loads the snapshot file into the service. A malformed file is
// moved aside and the service keeps its default state, so Restore only
// fails when the file could not be moved out of the way.
func (s *Autosaver) Restore() error {
	path := s.config.Persistence.FilePath

	snapshot, err := s.fileManager.LoadFromFile(path)
	if err != nil {
		warning := &PersistenceWarning{Op: "load", Path: path, Err: err}
		s.logger.Warnf(providers.TypePersistence, "Starting with empty state: %s", warning)

		aside := fmt.Sprintf("%s.corrupt-%d", path, s.now().Unix())
		if rerr := os.Rename(path, aside); rerr != nil {
			return &PersistenceWarning{Op: "move aside", Path: path, Err: rerr}
		}
		s.logger.Warnf(providers.TypePersistence, "Unreadable snapshot moved to %s", aside)
		return nil
	}
	if snapshot == nil {
		s.logger.Infof(providers.TypePersistence, "No snapshot at %s, starting with empty state", path)
		return nil
	}

	s.service.Restore(snapshot)
	stats := s.service.Stats()
	s.logger.Infof(providers.TypePersistence, "Restored %d users, %d posts, %d comments from %s",
		stats.Users, stats.Posts, stats.Comments, path)
	return nil
}

// Persist captures and writes a snapshot. Calls are serialized so a later
// snapshot is never overwritten by an earlier one.
func (s *Autosaver) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	path := s.config.Persistence.FilePath
	start := time.Now()
	err := s.fileManager.SaveToFile(path)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		s.metrics.IncPersistenceFailures()
		warning := &PersistenceWarning{Op: "save", Path: path, Err: err}
		s.logger.Warnf(providers.TypePersistence, "Error while persisting data: %s", warning)
		return warning
	}

	s.lastSaved.Store(s.now())
	s.logger.Debugf(providers.TypePersistence, "Persisted data to file %s", path)
	return nil
}

func (s *Autosaver) LastSaved() time.Time {
	return s.lastSaved.Load()
}

// NewAutosaver also attaches itself to service, so every successful
// mutation is followed by a save.
func NewAutosaver(config *structures.Config, logger providers.Logger, service services.SocialServiceInterface, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.AutosaverInterface {
	s := &Autosaver{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
		metrics:     metrics,
		now:         time.Now,
	}
	service.SetPersister(s)
	return s
}
