package states

import (
	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/engine/loop"
	"github.com/Faultbox/spin/internal/logger"
)

// RunningState starts the game loop on entry and steps it once per tick.
type RunningState struct {
	loop *loop.GameLoop
}

// NewRunningState wraps a loop whose behaviors are already registered.
func NewRunningState(gl *loop.GameLoop) *RunningState {
	return &RunningState{loop: gl}
}

func (s *RunningState) Name() string { return "running" }

// Loop returns the wrapped scheduler.
func (s *RunningState) Loop() *loop.GameLoop { return s.loop }

func (s *RunningState) Enter() error {
	logger.Info("entering RunningState", zap.Int("behaviors", s.loop.Active()))
	return s.loop.Start()
}

func (s *RunningState) Exit() error {
	logger.Info("leaving RunningState", zap.Uint64("frames", s.loop.Frame()))
	return nil
}

func (s *RunningState) Update() error {
	return s.loop.Step()
}
