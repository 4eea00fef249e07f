package states

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/engine/mesh"
	"github.com/Faultbox/spin/internal/logger"
)

// DefaultLoadTimeout bounds how long the loading state waits for meshes.
const DefaultLoadTimeout = 60 * time.Second

// LoadingStateConfig contains configuration for the loading state.
type LoadingStateConfig struct {
	Meshes      []string
	Concurrency int
	Timeout     time.Duration

	// Next builds the state to switch to once every mesh has loaded.
	Next func(*mesh.Batch) (State, error)
}

// LoadingState preloads meshes without blocking the tick, then hands the
// batch to the next state.
type LoadingState struct {
	config  LoadingStateConfig
	loader  *mesh.Loader
	manager *Manager

	batch     *mesh.Batch
	cancel    context.CancelFunc
	startTime time.Time
	reported  int

	// Progress is 0.0 to 1.0.
	Progress   float32
	IsComplete bool
}

// NewLoadingState creates a new loading state.
func NewLoadingState(cfg LoadingStateConfig, loader *mesh.Loader, manager *Manager) *LoadingState {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLoadTimeout
	}
	return &LoadingState{
		config:  cfg,
		loader:  loader,
		manager: manager,
	}
}

func (s *LoadingState) Name() string { return "loading" }

// Enter starts the batch load.
func (s *LoadingState) Enter() error {
	s.startTime = time.Now()
	s.Progress = 0
	s.IsComplete = false
	s.reported = -1

	logger.Info("entering LoadingState", zap.Strings("meshes", s.config.Meshes))

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	s.cancel = cancel
	s.batch = s.loader.LoadBatch(ctx, s.config.Meshes, s.config.Concurrency)
	return nil
}

// Exit is called when leaving this state.
func (s *LoadingState) Exit() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// Update polls the batch once.
func (s *LoadingState) Update() error {
	if s.IsComplete {
		return nil
	}

	loaded, total := s.batch.Progress()
	if total > 0 {
		s.Progress = float32(loaded) / float32(total)
	} else {
		s.Progress = 1
	}
	if loaded != s.reported {
		s.reported = loaded
		logger.Debug("loading meshes", zap.Int("loaded", loaded), zap.Int("total", total))
	}

	done, err := s.batch.Poll()
	if !done {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading meshes: %w", err)
	}

	s.IsComplete = true
	s.Progress = 1
	logger.Info("meshes loaded",
		zap.Int("count", total),
		zap.Duration("elapsed", time.Since(s.startTime)))

	next, err := s.config.Next(s.batch)
	if err != nil {
		return fmt.Errorf("building scene: %w", err)
	}
	s.manager.Change(next)
	return nil
}
